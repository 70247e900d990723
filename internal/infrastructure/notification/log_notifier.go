package notification

import (
	"context"
	"strings"

	identityapp "github.com/jneralrex/stratos-backend/internal/application/identity"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogNotifier writes codes to the log instead of sending mail.
// Development only: the code is logged in clear.
type LogNotifier struct {
	logger *zap.Logger
}

var _ identityapp.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// SendOTP logs the code
func (n *LogNotifier) SendOTP(ctx context.Context, email, otp string) error {
	logger.Enrich(ctx, n.logger).Info("OTP issued (mail disabled)",
		zap.String("email", MaskEmail(email)),
		zap.String("otp", otp),
	)
	return nil
}

// MaskEmail hides most of the local part of an address: ada@example.com
// becomes a**@example.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	local := email[:at]
	return local[:1] + strings.Repeat("*", len(local)-1) + email[at:]
}
