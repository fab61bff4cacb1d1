package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shadowlurkers-backend/internal/logger"
)

// httpEmailValidator asks an external service whether an address is
// deliverable. Validation is advisory: any upstream failure, timeout or
// ambiguous answer counts as valid so submission is never blocked on it.
type httpEmailValidator struct {
	verifyURL string
	client    *http.Client
}

// NoopEmailValidator accepts everything; used when no validator is configured.
type NoopEmailValidator struct{}

func (NoopEmailValidator) Validate(ctx context.Context, email string) (bool, string) {
	return true, ""
}

func NewEmailValidator(verifyURL string) EmailValidator {
	if strings.TrimSpace(verifyURL) == "" {
		return NoopEmailValidator{}
	}
	return &httpEmailValidator{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 8 * time.Second},
	}
}

type validateResponse struct {
	Deliverable *bool  `json:"deliverable"`
	Reason      string `json:"reason"`
}

func (v *httpEmailValidator) Validate(ctx context.Context, email string) (bool, string) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return false, "address is not well-formed"
	}

	endpoint := v.verifyURL + "?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return true, ""
	}

	logger.ExternalServiceCall("email-validator", "validate", "email", email)
	resp, err := v.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("email-validator", "validate", err)
		return true, ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Warn("Email validator unavailable, defaulting to valid", "status", resp.StatusCode)
		return true, ""
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Deliverable == nil {
		return true, ""
	}
	if !*out.Deliverable {
		return false, out.Reason
	}
	return true, ""
}
