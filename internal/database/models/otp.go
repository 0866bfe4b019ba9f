package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPType scopes a code to the purpose it was issued for. A code only
// matches a lookup of the same type.
type OTPType string

const (
	OTPTypeVerification  OTPType = "VERIFICATION"
	OTPTypePasswordReset OTPType = "PASSWORD_RESET"
)

// OTP is a short-lived one-time code proving possession of an email inbox.
// Consumed rows are deleted; expired rows persist until overwritten.
type OTP struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Code      string    `gorm:"not null" json:"-"`
	Type      OTPType   `gorm:"not null" json:"type"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
