package councilsrvc

import (
	"encoding/json"
	"regexp"
	"strings"
)

// maximum reasoning carried over from an unparseable response
const failClosedReasoningCap = 200

type parsedVerdict struct {
	Approve   bool
	Reasoning string
}

// the parse pipeline, in order of decreasing strictness. each strategy is a
// pure function; the first one that succeeds wins.
var parseStrategies = []func(string) (parsedVerdict, bool){
	parseStrictJSON,
	parseFencedJSON,
	parseRegexFallback,
}

// normalizeRaw turns a judge's raw textual response into a verdict. A
// response none of the strategies can interpret becomes a rejection carrying
// a prefix of the raw text: a misbehaving judge never crashes the round and
// never silently becomes an approval.
func normalizeRaw(raw string) parsedVerdict {
	for _, parse := range parseStrategies {
		if verdict, ok := parse(raw); ok {
			return verdict
		}
	}
	return parsedVerdict{
		Approve:   false,
		Reasoning: truncate(strings.TrimSpace(raw), failClosedReasoningCap),
	}
}

type verdictJSON struct {
	Vote      *bool  `json:"vote"`
	Approve   *bool  `json:"approve"` // some models answer with this key
	Reasoning string `json:"reasoning"`
}

func parseStrictJSON(raw string) (parsedVerdict, bool) {
	return parseVerdictJSON(strings.TrimSpace(raw))
}

func parseVerdictJSON(text string) (parsedVerdict, bool) {
	var v verdictJSON
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return parsedVerdict{}, false
	}
	approve := v.Vote
	if approve == nil {
		approve = v.Approve
	}
	if approve == nil {
		return parsedVerdict{}, false
	}
	return parsedVerdict{Approve: *approve, Reasoning: v.Reasoning}, true
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

func parseFencedJSON(raw string) (parsedVerdict, bool) {
	match := fencedBlockRe.FindStringSubmatch(raw)
	if match == nil {
		return parsedVerdict{}, false
	}
	return parseVerdictJSON(match[1])
}

var (
	voteRe      = regexp.MustCompile(`"vote"\s*:\s*(true|false)`)
	reasoningRe = regexp.MustCompile(`"reasoning"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

func parseRegexFallback(raw string) (parsedVerdict, bool) {
	voteMatch := voteRe.FindStringSubmatch(raw)
	if voteMatch == nil {
		return parsedVerdict{}, false
	}
	verdict := parsedVerdict{Approve: voteMatch[1] == "true"}
	if reasoningMatch := reasoningRe.FindStringSubmatch(raw); reasoningMatch != nil {
		verdict.Reasoning = unescapeJSONString(reasoningMatch[1])
	}
	return verdict, true
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
