package identity

import (
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated     = "UserCreated"
	EventTypeUserVerified    = "UserVerified"
	EventTypeUserRoleChanged = "UserRoleChanged"
)

// UserCreatedEvent is published when a user registers or is created by an admin
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	ReferredBy *uuid.UUID `json:"referred_by,omitempty"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role,
		ReferredBy:      user.ReferredBy,
	}
}

// UserVerifiedEvent is published when a user confirms their email with an OTP
type UserVerifiedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserVerifiedEvent creates a new UserVerifiedEvent
func NewUserVerifiedEvent(user *User) *UserVerifiedEvent {
	return &UserVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserVerified, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}

// UserRoleChangedEvent is published when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	OldRole Role `json:"old_role"`
	NewRole Role `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole Role) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID),
		OldRole:         oldRole,
		NewRole:         user.Role,
	}
}
