package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// sendJSON posts a JSON body and decodes a JSON response. One retry on
// transport failure or 5xx, keeping round latency bounded. Non-2xx after the
// retry is an error carrying a response body prefix for diagnosis.
func sendJSON(ctx context.Context, client *http.Client, method string, url string,
	headers map[string]string, reqBody any, respDst any,
) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal provider request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build provider request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("provider request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read provider response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("provider returned status %d: %s",
				resp.StatusCode, prefix(body, 200))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("provider returned status %d: %s",
				resp.StatusCode, prefix(body, 200))
		}

		if err := json.Unmarshal(body, respDst); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
		return nil
	}
	return lastErr
}

func prefix(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
