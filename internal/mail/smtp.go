package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"devtrack.app/api/core/config"
	"devtrack.app/api/internal/model"
)

// Sender delivers a rendered notification.
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	cfg      config.SMTPConfig
	renderer *Renderer
	send     sendFunc
	now      func() time.Time
}

func NewSMTPSender(cfg config.SMTPConfig, renderer *Renderer) *SMTPSender {
	return &SMTPSender{
		cfg:      cfg,
		renderer: renderer,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

func (s *SMTPSender) Send(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rendered, err := s.renderer.Render(n)
	if err != nil {
		return err
	}

	to, err := mail.ParseAddress(n.To)
	if err != nil {
		return fmt.Errorf("%w: invalid recipient: %v", ErrPermanent, err)
	}
	from, err := mail.ParseAddress(s.cfg.From)
	if err != nil {
		return fmt.Errorf("%w: invalid sender %q: %v", ErrPermanent, s.cfg.From, err)
	}

	msg := buildMessage(from, to, rendered, s.now())

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, from.Address, []string{to.Address}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to *mail.Address, r Rendered, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", r.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(r.HTML)
	return []byte(b.String())
}
