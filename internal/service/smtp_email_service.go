package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/config"
	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

var _ EmailService = (*SMTPEmailService)(nil)

var passwordResetTemplate = template.Must(template.New("password-reset").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #1f2937;">
    <h2>Reset your {{.AppName}} password</h2>
    <p>Use the code below to reset your password:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
    <p>This code expires in {{.ValidFor}}.</p>
    <p>If you did not request a password reset, you can ignore this email.</p>
  </body>
</html>`))

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPEmailService implements EmailService on top of smtp.SendMail.
type SMTPEmailService struct {
	cfg      *config.SmtpConfig
	appName  string
	sendMail sendMailFunc
}

// unencryptedAuth lets PLAIN auth run against relays without STARTTLS.
type unencryptedAuth struct {
	smtp.Auth
}

func (a unencryptedAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	s := *server
	s.TLS = true
	return a.Auth.Start(&s)
}

// NewSMTPEmailService creates a new SMTPEmailService.
func NewSMTPEmailService(smtpCfg *config.SmtpConfig, appName string) *SMTPEmailService {
	if smtpCfg == nil {
		log.Warn().Msg("SMTP configuration is nil. Email sending will likely fail.")
		// Return a service that will log errors but not panic
		smtpCfg = &config.SmtpConfig{}
	}
	return &SMTPEmailService{cfg: smtpCfg, appName: appName, sendMail: smtp.SendMail}
}

// BuildPasswordResetEmail renders the reset message for a code.
func BuildPasswordResetEmail(appName, toEmail, code string, validFor time.Duration) (*models.EmailMessage, error) {
	var body bytes.Buffer
	err := passwordResetTemplate.Execute(&body, struct {
		AppName  string
		Code     string
		ValidFor string
	}{
		AppName:  appName,
		Code:     code,
		ValidFor: humanizeDuration(validFor),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render password reset email: %w", err)
	}
	return &models.EmailMessage{
		To:      toEmail,
		Subject: fmt.Sprintf("Your %s password reset code", appName),
		HTML:    body.String(),
	}, nil
}

func humanizeDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case minutes <= 1:
		return "1 minute"
	case minutes < 60 || minutes%60 != 0:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 60:
		return "1 hour"
	default:
		return fmt.Sprintf("%d hours", minutes/60)
	}
}

func (s *SMTPEmailService) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

func (s *SMTPEmailService) auth() smtp.Auth {
	if s.cfg.User == "" {
		return nil
	}
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if s.cfg.NOTLS {
		return unencryptedAuth{auth}
	}
	return auth
}

// envelopeAddress strips a display name, "ZenGuide <no-reply@x.io>" becomes "no-reply@x.io".
func envelopeAddress(addr string) string {
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		if j := strings.LastIndex(addr, ">"); j > i {
			return addr[i+1 : j]
		}
	}
	return addr
}

// Send delivers an already rendered message.
func (s *SMTPEmailService) Send(ctx context.Context, msg *models.EmailMessage) error {
	if s.cfg.Host == "" || s.cfg.Port == "" || s.from() == "" {
		log.Error().Str("toEmail", msg.To).Msg("SMTP host, port, or sender not configured. Cannot send email.")
		return fmt.Errorf("SMTP service not fully configured (host, port, or sender missing)")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := []string{
		"To: " + msg.To,
		"From: " + s.from(),
		"Subject: " + msg.Subject,
		"Date: " + time.Now().UTC().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	raw := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.HTML)

	smtpAddr := s.cfg.Host + ":" + s.cfg.Port
	if err := s.sendMail(smtpAddr, s.auth(), envelopeAddress(s.from()), []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendPasswordResetEmail mails the reset code. The code itself is never logged.
func (s *SMTPEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, code string, validFor time.Duration) error {
	msg, err := BuildPasswordResetEmail(s.appName, toEmail, code, validFor)
	if err != nil {
		return err
	}

	if err := s.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send password reset email")
		return err
	}

	log.Info().Str("toEmail", toEmail).Msg("Password reset email sent")
	return nil
}
