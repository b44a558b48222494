package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	resendAPIURL       = "https://api.resend.com"
	resendPathEmails   = "/emails"
	providerNameResend = "resend"
)

type ResendProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewResendProvider(apiKey string) *ResendProvider {
	return &ResendProvider{
		apiKey: apiKey,
		apiURL: resendAPIURL,
		client: &http.Client{},
	}
}

func (p *ResendProvider) Name() string {
	return providerNameResend
}

func (p *ResendProvider) Send(email *Email) (*Result, error) {
	if p.apiKey == "" {
		return failedResult(p.Name(), ErrAPIKeyRequired.Error()), ErrAPIKeyRequired
	}

	payload := map[string]any{
		"from":    email.From,
		"to":      email.To,
		"subject": email.Subject,
		"html":    email.HTML,
	}
	if email.Text != "" {
		payload["text"] = email.Text
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return failedResult(p.Name(), err.Error()), err
	}

	req, err := http.NewRequest(http.MethodPost, p.apiURL+resendPathEmails, bytes.NewBuffer(jsonData))
	if err != nil {
		return failedResult(p.Name(), err.Error()), err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return failedResult(p.Name(), err.Error()), err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if !isHTTPSuccess(resp.StatusCode) {
		apiErr := fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, string(body))
		return failedResult(p.Name(), apiErr.Error()), apiErr
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return failedResult(p.Name(), err.Error()), err
	}

	return &Result{
		Success:   true,
		MessageID: result.ID,
		Provider:  p.Name(),
	}, nil
}

func failedResult(provider, message string) *Result {
	return &Result{
		Success:  false,
		Error:    message,
		Provider: provider,
	}
}
