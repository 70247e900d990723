// Package notification delivers one-time codes to users.
package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	identityapp "github.com/jneralrex/stratos-backend/internal/application/identity"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/config"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const otpSubject = "Your OTP Code"

// sender is the part of gomail.Dialer used to deliver messages
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends OTP emails through an SMTP relay
type SMTPNotifier struct {
	sender sender
	from   string
	ttl    time.Duration
	logger *zap.Logger
}

var _ identityapp.Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates a notifier from mail configuration. ttl is quoted in
// the message body.
func NewSMTPNotifier(cfg config.MailConfig, ttl time.Duration, logger *zap.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail sender address is required")
	}
	return &SMTPNotifier{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// SendOTP emails the code to the user
func (n *SMTPNotifier) SendOTP(ctx context.Context, email, otp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", otpSubject)
	m.SetBody("text/plain", otpText(otp, n.ttl))
	m.AddAlternative("text/html", otpHTML(otp, n.ttl))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	logger.Enrich(ctx, n.logger).Debug("OTP email sent", zap.String("email", MaskEmail(email)))
	return nil
}

func otpText(otp string, ttl time.Duration) string {
	return fmt.Sprintf("Your OTP is: %s. It expires in %d minutes.", otp, int(ttl.Minutes()))
}

func otpHTML(otp string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Your verification code is</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p>
<p>It expires in %d minutes. If you did not request it, ignore this email.</p>`,
		html.EscapeString(otp), int(ttl.Minutes()))
}
