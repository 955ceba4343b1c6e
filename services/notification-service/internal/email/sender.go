package email

import (
	"net"
	"net/smtp"
	"strings"
)

type Sender interface {
	Send(to string, subject string, body string) error
}

// SMTPSender delivers plain-text notices over unauthenticated SMTP
// (Mailpit in development, the municipal relay in production).
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(host string, port string, from string) *SMTPSender {
	if from = strings.TrimSpace(from); from == "" {
		from = "no-reply@lupon.local"
	}
	return &SMTPSender{
		addr: net.JoinHostPort(strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
	}
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, message(s.from, to, subject, body))
}

// message builds a minimal RFC 5322 text/plain message.
func message(from, to, subject, body string) []byte {
	lines := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
		"",
	}
	return []byte(strings.Join(lines, "\r\n"))
}
