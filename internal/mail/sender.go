package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/ankitsaini000/rwew-sub007/internal/logger"
)

// Sender delivers transactional email. Implementations report transport
// failures through the returned error; callers decide how to surface them.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail over plain SMTP with optional auth.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.host == "" {
		return fmt.Errorf("mail: SMTP host is not configured")
	}

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + htmlBody + "\r\n")

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogSender logs mail instead of sending it (development).
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	logger.Log.WithField("to", to).WithField("subject", subject).Info("mail: mock send")
	_ = htmlBody
	return nil
}
