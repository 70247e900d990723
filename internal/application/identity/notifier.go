package identity

import "context"

// Notifier delivers one-time codes to users
type Notifier interface {
	SendOTP(ctx context.Context, email, otp string) error
}
