// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/playerfinder/playerfinder/internal/config"
	"github.com/playerfinder/playerfinder/internal/settings"
	log "github.com/sirupsen/logrus"
	simplemail "github.com/xhit/go-simple-mail/v2"
)

const defaultSMTPTimeout = 10 * time.Second

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// PasswordReset is the data needed to send a reset link.
type PasswordReset struct {
	To       string
	Username string
	ResetURL string
	ValidFor time.Duration
}

// Mailer delivers email through the configured SMTP server.
type Mailer struct {
	config config.MailConfig
}

// New creates a Mailer.
func New(cfg config.MailConfig) *Mailer {
	return &Mailer{config: cfg}
}

// SendPasswordReset emails a password reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	if strings.TrimSpace(msg.To) == "" {
		log.WithField("user", msg.Username).Warn("mail: recipient is empty, skipping password reset")
		return nil
	}

	subject := fmt.Sprintf("[%s] Password reset", settings.SiteName)
	body, err := RenderPasswordReset(msg)
	if err != nil {
		return fmt.Errorf("render password reset: %w", err)
	}

	if !m.config.Enabled {
		log.WithFields(log.Fields{"to": msg.To, "subject": subject}).Debug("mail: delivery disabled, skipping")
		return nil
	}
	if errCtx := ctx.Err(); errCtx != nil {
		return errCtx
	}
	return m.send(ctx, msg.To, subject, body)
}

// RenderPasswordReset renders the HTML body of the password reset email.
func RenderPasswordReset(msg PasswordReset) (string, error) {
	data := struct {
		SiteName string
		Username string
		ResetURL string
		ValidFor string
	}{
		SiteName: settings.SiteName,
		Username: msg.Username,
		ResetURL: msg.ResetURL,
		ValidFor: humanDuration(msg.ValidFor),
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "forgot_password.html", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// smtpTimeout caps the per-phase SMTP timeout so delivery never outlives ctx.
func smtpTimeout(ctx context.Context, now time.Time) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultSMTPTimeout
	}
	return min(defaultSMTPTimeout, max(deadline.Sub(now), 0))
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	timeout := smtpTimeout(ctx, time.Now())
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	server := simplemail.NewSMTPClient()
	server.Host = m.config.SMTPHost
	server.Port = m.config.SMTPPort
	server.Username = m.config.Username
	server.Password = m.config.Password

	switch {
	case m.config.UseSSL:
		server.Encryption = simplemail.EncryptionSSLTLS
	case m.config.UseTLS:
		server.Encryption = simplemail.EncryptionSTARTTLS
	default:
		server.Encryption = simplemail.EncryptionNone
	}
	if m.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = timeout
	server.SendTimeout = timeout

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("connect smtp: %w", err)
	}
	defer func() {
		if errClose := smtpClient.Close(); errClose != nil {
			log.WithError(errClose).Warn("mail: close smtp client failed")
		}
	}()

	email := simplemail.NewMSG()
	email.SetFrom(fmt.Sprintf("%s <%s>", m.config.FromName, m.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(simplemail.TextHTML, body)
	if email.Error != nil {
		return fmt.Errorf("build email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("mail: sent")
	return nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
