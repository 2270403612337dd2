package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"devconnector/internal/config"
	"devconnector/internal/logger"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

var errSMTPNotConfigured = errors.New("smtp is not configured")

type EmailService struct {
	auth smtp.Auth
	from mail.Address
	host string
	port string
}

func NewEmailService(cfg *config.Config) *EmailService {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	from := cfg.FromEmail
	if from == "" {
		from = cfg.SMTPUser
	}
	return &EmailService{
		auth: auth,
		from: mail.Address{Name: cfg.FromName, Address: from},
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
	}
}

// Send отправляет HTML-письмо одному адресату. Соединение живёт не дольше ctx.
func (s *EmailService) Send(ctx context.Context, to, subject, body string) error {
	if s.host == "" {
		return errSMTPNotConfigured
	}

	d := net.Dialer{Timeout: 10 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(s.auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(s.from.Address); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(s.buildMessage(to, subject, body, time.Now())); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	logger.WithCtx(ctx).Info("Письмо отправлено", zap.String("to", to), zap.String("subject", subject))
	return c.Quit()
}

func (s *EmailService) buildMessage(to, subject, body string, now time.Time) []byte {
	var b bytes.Buffer
	b.WriteString("From: " + s.from.String() + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return b.Bytes()
}
