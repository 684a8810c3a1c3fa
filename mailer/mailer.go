// Package mailer sends the password-reset OTP mails.
package mailer

import (
	"fmt"

	"riseup/config"
	"riseup/logger"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP. When no SMTP credentials are
// configured it runs in dev mode: codes are logged instead of sent, so the
// reset flow stays usable on a laptop.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a Mailer from the SMTP settings.
func New(cfg *config.Config) *Mailer {
	m := &Mailer{from: cfg.MailFrom}
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		logger.Info("Mailer configured", logger.String("host", cfg.SMTPHost))
	} else {
		logger.Warn("SMTP credentials not set. Mail delivery disabled; OTP codes will be logged.")
	}
	return m
}

// SendOTP mails the one-time passcode to the given address.
func (m *Mailer) SendOTP(to, otp string) error {
	if m.dialer == nil {
		logger.Info("[DEV MODE] OTP generated", logger.String("to", to), logger.String("otp", otp))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your OTP Code")
	msg.SetBody("text/plain", fmt.Sprintf("Your OTP is: %s. It will expire in 10 minutes.", otp))
	msg.AddAlternative("text/html", fmt.Sprintf("<p>Your OTP is: <b>%s</b></p><p>It will expire in 10 minutes.</p>", otp))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}

	logger.Info("OTP email sent", logger.String("to", to))
	return nil
}
