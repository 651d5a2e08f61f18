package judge

import (
	"fmt"
	"net/http"

	"github.com/veriwork/backend/srvcerror"
)

const ErrCodeMissingCredential = "missing_provider_credential"

func ErrMissingCredential(provider string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeMissingCredential,
		fmt.Sprintf("no credential configured for provider %s", provider),
	).SetHttpStatusCode(http.StatusInternalServerError)
}

// NewResponders constructs one responder per provider that has a credential
// configured. Providers without credentials are skipped; seats bound to them
// degrade to absent judges instead of failing the whole council.
func NewResponders() (map[Provider]Responder, []error) {
	responders := map[Provider]Responder{}
	var errs []error

	if r, err := NewOpenAIResponder(); err != nil {
		errs = append(errs, err)
	} else {
		responders[ProviderOpenAI] = r
	}
	if r, err := NewAnthropicResponder(); err != nil {
		errs = append(errs, err)
	} else {
		responders[ProviderAnthropic] = r
	}
	if r, err := NewGeminiResponder(); err != nil {
		errs = append(errs, err)
	} else {
		responders[ProviderGemini] = r
	}

	return responders, errs
}
