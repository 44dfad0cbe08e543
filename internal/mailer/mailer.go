package mailer

import (
	"bytes"
	"commerceq/internal/config"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/rs/zerolog/log"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one rendered email. The SMTP implementation is the
// only real one; tests swap in a fake.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTP struct {
	cfg config.SMTP
}

func NewSMTP(cfg config.SMTP) *SMTP { return &SMTP{cfg: cfg} }

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, b.Bytes()); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	log.Ctx(ctx).Info().Str("to", msg.To).Msg("email sent")
	return nil
}

// Render substitutes {{.var}} references in an email template with
// values from the context map.
func Render(tmpl string, data map[string]any) (string, error) {
	t, err := template.New("email").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return b.String(), nil
}
