// Package mailer sends transactional email through pluggable HTTP
// providers with failover. With no providers configured the mailer is
// disabled and logs instead of sending, so local development never needs
// API keys.
package mailer

import (
	"fmt"
	"log"
	"strings"
	"time"
)

type Mailer struct {
	from      string
	fromName  string
	providers []Provider
}

func New(from, fromName string, providers ...Provider) *Mailer {
	return &Mailer{
		from:      from,
		fromName:  fromName,
		providers: providers,
	}
}

func (m *Mailer) Enabled() bool {
	return m.from != "" && len(m.providers) > 0
}

// Send tries each provider in order and returns the first success.
func (m *Mailer) Send(email *Email) (*Result, error) {
	if !m.Enabled() {
		log.Printf("mailer disabled, dropping email to %s: %s", strings.Join(email.To, ", "), email.Subject)
		return &Result{Success: true, Provider: "none"}, nil
	}

	if email.From == "" {
		email.From = m.sender()
	}

	var failures []string
	for _, provider := range m.providers {
		result, err := provider.Send(email)
		if result != nil && result.Success {
			return result, nil
		}

		errorText := "send failed"
		if result != nil && result.Error != "" {
			errorText = result.Error
		} else if err != nil {
			errorText = err.Error()
		}
		failures = append(failures, fmt.Sprintf("%s: %s", provider.Name(), errorText))
	}

	return &Result{
		Success:  false,
		Error:    strings.Join(failures, "; "),
		Provider: "failover",
	}, ErrAllProvidersFailed
}

func (m *Mailer) sender() string {
	if m.fromName != "" {
		return fmt.Sprintf("%s <%s>", m.fromName, m.from)
	}
	return m.from
}

func (m *Mailer) SendPasswordReset(to, name, resetLink string, expiry time.Duration) error {
	context := passwordResetContext{
		Name:       name,
		ResetLink:  resetLink,
		ExpiryText: formatExpiry(expiry),
	}

	html, err := renderHTML(passwordResetHTMLTmpl, context)
	if err != nil {
		return err
	}
	text, err := renderText(passwordResetTextTmpl, context)
	if err != nil {
		return err
	}

	_, err = m.Send(&Email{
		To:      []string{to},
		Subject: "Reset your password",
		HTML:    html,
		Text:    text,
	})
	return err
}

func (m *Mailer) SendWelcome(to, name, loginLink string) error {
	context := welcomeContext{Name: name, LoginLink: loginLink}

	html, err := renderHTML(welcomeHTMLTmpl, context)
	if err != nil {
		return err
	}
	text, err := renderText(welcomeTextTmpl, context)
	if err != nil {
		return err
	}

	_, err = m.Send(&Email{
		To:      []string{to},
		Subject: "Welcome to Task Service",
		HTML:    html,
		Text:    text,
	})
	return err
}

func formatExpiry(expiry time.Duration) string {
	if expiry >= time.Hour {
		hours := int(expiry.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	minutes := int(expiry.Minutes())
	return fmt.Sprintf("%d minutes", minutes)
}
