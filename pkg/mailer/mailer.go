package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/agape-academy/academy-api/pkg/config"
)

// Mailer sends plain-text mail through the configured SMTP relay.
type Mailer struct {
	host string
	port int
	auth smtp.Auth
	from string

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New builds a Mailer from SMTP config.
func New(cfg config.SMTPConfig) *Mailer {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &Mailer{
		host: cfg.Host,
		port: cfg.Port,
		auth: auth,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient required")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := m.send(addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
