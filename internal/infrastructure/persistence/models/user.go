package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// UserModel is the persistence model for the User aggregate.
// ReferralCode is NULL for non-affiliates so the unique index ignores them.
type UserModel struct {
	AggregateModel
	FullName           string        `gorm:"type:varchar(200);not null"`
	PhoneNumber        string        `gorm:"type:varchar(50)"`
	CountryOfResidence string        `gorm:"type:varchar(100)"`
	Username           string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email              string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash       string        `gorm:"type:varchar(255);not null"`
	Course             string        `gorm:"type:varchar(200)"`
	Role               identity.Role `gorm:"type:varchar(20);not null;default:'student';index"`
	IsVerified         bool          `gorm:"not null;default:false"`
	IsBlocked          bool          `gorm:"not null;default:false"`
	ReferralCode       *string       `gorm:"type:varchar(32);uniqueIndex"`
	ReferredBy         *uuid.UUID    `gorm:"type:uuid;index"`
	OTPHash            string        `gorm:"column:otp_hash;type:varchar(255)"`
	OTPExpiresAt       *time.Time    `gorm:"column:otp_expires_at"`

	CommissionsTotalEarned decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CommissionsPending     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CommissionsPaidOut     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		FullName:           m.FullName,
		PhoneNumber:        m.PhoneNumber,
		CountryOfResidence: m.CountryOfResidence,
		Username:           m.Username,
		Email:              m.Email,
		PasswordHash:       m.PasswordHash,
		Course:             m.Course,
		Role:               m.Role,
		IsVerified:         m.IsVerified,
		IsBlocked:          m.IsBlocked,
		ReferredBy:         m.ReferredBy,
		OTPHash:            m.OTPHash,
		OTPExpiresAt:       m.OTPExpiresAt,
		Commissions: identity.CommissionsSummary{
			TotalEarned: m.CommissionsTotalEarned,
			Pending:     m.CommissionsPending,
			PaidOut:     m.CommissionsPaidOut,
		},
	}
	if m.ReferralCode != nil {
		u.ReferralCode = *m.ReferralCode
	}
	return u
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.FullName = u.FullName
	m.PhoneNumber = u.PhoneNumber
	m.CountryOfResidence = u.CountryOfResidence
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Course = u.Course
	m.Role = u.Role
	m.IsVerified = u.IsVerified
	m.IsBlocked = u.IsBlocked
	m.ReferralCode = nil
	if u.ReferralCode != "" {
		code := u.ReferralCode
		m.ReferralCode = &code
	}
	m.ReferredBy = u.ReferredBy
	m.OTPHash = u.OTPHash
	m.OTPExpiresAt = u.OTPExpiresAt
	m.CommissionsTotalEarned = u.Commissions.TotalEarned
	m.CommissionsPending = u.Commissions.Pending
	m.CommissionsPaidOut = u.Commissions.PaidOut
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
