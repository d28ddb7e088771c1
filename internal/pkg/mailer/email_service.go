// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"errors"
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("email service not configured")

type IEmailService interface {
	SendEscalation(toEmail, sessionID, transcriptSummary string) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	var d sender
	if host != "" && username != "" {
		d = gomail.NewDialer(host, port, username, password)
	}

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendEscalation(toEmail, sessionID, transcriptSummary string) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	if toEmail == "" {
		return fmt.Errorf("%w: no support inbox", ErrNotConfigured)
	}

	m := BuildEscalationMessage(s.senderEmail, s.senderName, toEmail, sessionID, transcriptSummary, time.Now())
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send escalation for %s: %w", sessionID, err)
	}
	return nil
}

// BuildEscalationMessage renders the hand-off email.
func BuildEscalationMessage(fromEmail, fromName, toEmail, sessionID, transcriptSummary string, at time.Time) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", fromEmail, fromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Escalation Required - %s", sessionID))

	m.SetBody("text/html", escalationBody(sessionID, transcriptSummary, at))
	m.AddAlternative("text/plain", transcriptSummary)
	return m
}

func escalationBody(sessionID, transcriptSummary string, at time.Time) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 640px; margin: 0 auto; padding: 20px; color: #333; border: 1px solid #ddd; border-radius: 8px;">
			<h2 style="color: #d9534f;">Customer needs a human agent</h2>
			<div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<p><strong>Session:</strong> %s</p>
				<p><strong>Escalated at:</strong> %s</p>
			</div>
			<h3 style="color: #195de6;">Transcript</h3>
			<pre style="white-space: pre-wrap; font-family: Menlo, Consolas, monospace; font-size: 13px;">%s</pre>
			<hr style="margin-top: 30px; border: none; border-top: 1px solid #ddd;">
			<p style="font-size: 12px; color: #777;">Sent automatically by AURA Support.</p>
		</div>
	`, html.EscapeString(sessionID), at.UTC().Format("January 02, 2006 15:04 MST"), html.EscapeString(transcriptSummary))
}
