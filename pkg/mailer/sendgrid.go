package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	sendGridAPIURL       = "https://api.sendgrid.com/v3"
	sendGridPathMailSend = "/mail/send"
	providerNameSendGrid = "sendgrid"
	headerMessageID      = "X-Message-Id"
)

type SendGridProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewSendGridProvider(apiKey string) *SendGridProvider {
	return &SendGridProvider{
		apiKey: apiKey,
		apiURL: sendGridAPIURL,
		client: &http.Client{},
	}
}

func (p *SendGridProvider) Name() string {
	return providerNameSendGrid
}

func (p *SendGridProvider) Send(email *Email) (*Result, error) {
	if p.apiKey == "" {
		return failedResult(p.Name(), ErrAPIKeyRequired.Error()), ErrAPIKeyRequired
	}

	toList := make([]map[string]string, len(email.To))
	for i, address := range email.To {
		toList[i] = map[string]string{"email": address}
	}

	content := []map[string]string{}
	if email.Text != "" {
		content = append(content, map[string]string{"type": "text/plain", "value": email.Text})
	}
	content = append(content, map[string]string{"type": "text/html", "value": email.HTML})

	payload := map[string]any{
		"personalizations": []map[string]any{{"to": toList}},
		"from":             map[string]string{"email": email.From},
		"subject":          email.Subject,
		"content":          content,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return failedResult(p.Name(), err.Error()), err
	}

	req, err := http.NewRequest(http.MethodPost, p.apiURL+sendGridPathMailSend, bytes.NewBuffer(jsonData))
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
		apiErr := fmt.Errorf("sendgrid API returned status %d: %s", resp.StatusCode, string(body))
		return failedResult(p.Name(), apiErr.Error()), apiErr
	}

	return &Result{
		Success:   true,
		MessageID: resp.Header.Get(headerMessageID),
		Provider:  p.Name(),
	}, nil
}
