package mailer

import (
	"errors"
	"net/mail"
)

var (
	ErrNoProvidersConfigured = errors.New("no email providers configured")
	ErrAllProvidersFailed    = errors.New("all email providers failed")
	ErrAPIKeyRequired        = errors.New("API key is required")
)

type Email struct {
	To      []string
	From    string
	Subject string
	HTML    string
	Text    string
}

type Result struct {
	Success   bool
	MessageID string
	Error     string
	Provider  string
}

type Provider interface {
	Send(email *Email) (*Result, error)
	Name() string
}

func ValidateEmail(address string) error {
	_, err := mail.ParseAddress(address)
	return err
}

func isHTTPSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
