// Package alert delivers operator notifications for conditions that need
// human attention, such as a document stuck in a partial-failure state.
package alert

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Alerter defines an interface for sending alerts.
type Alerter interface {
	Alert(subject, message string) error
}

// Config holds SMTP settings for the email alerter.
type Config struct {
	Enabled  bool
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       []string
}

// EmailAlerter implements Alerter using SMTP.
type EmailAlerter struct {
	cfg Config
}

// NewEmailAlerter creates a new email alerter.
func NewEmailAlerter(cfg Config) *EmailAlerter {
	return &EmailAlerter{cfg: cfg}
}

// Alert sends an email with the given subject and message.
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)

	to := a.cfg.To
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", strings.Join(to, ","), subject, message))

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, a.cfg.From, to, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// NoOpAlerter is a dummy alerter for when alerting is disabled.
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}
