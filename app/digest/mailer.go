package digest

import (
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// Mailer delivers digest emails over SMTP with STARTTLS. It is disabled
// until every connection field is configured.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

func NewMailer(host string, port int, username, password, sender string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sender:   sender,
	}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.host != "" && m.username != "" && m.password != "" && m.sender != ""
}

// Send delivers a multipart/alternative message with plain-text and HTML
// bodies.
func (m *Mailer) Send(recipient, subject, textBody, htmlBody string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer is not configured")
	}
	if recipient == "" {
		return fmt.Errorf("no recipient configured")
	}

	msg, err := buildMessage(m.sender, recipient, subject, textBody, htmlBody)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if err := smtp.SendMail(addr, auth, m.sender, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func buildMessage(sender, recipient, subject, textBody, htmlBody string) ([]byte, error) {
	var body strings.Builder
	writer := multipart.NewWriter(&body)

	var headers strings.Builder
	fmt.Fprintf(&headers, "From: %s\r\n", sender)
	fmt.Fprintf(&headers, "To: %s\r\n", recipient)
	fmt.Fprintf(&headers, "Subject: %s\r\n", subject)
	headers.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&headers, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(textBody)); err != nil {
		return nil, err
	}

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return []byte(headers.String() + body.String()), nil
}
