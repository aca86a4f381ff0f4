package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the sole domain entity: one row per started checkout. A row is
// created unpaid at checkout start and transitions to paid exactly once, via
// the payment webhook, which also mints the auth token.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentCustomerID string    `gorm:"column:payment_customer_id;type:text;not null;uniqueIndex"`
	Paid              bool      `gorm:"column:paid;not null;default:false"`
	Email             *string   `gorm:"column:email;type:text"`
	AuthToken         *string   `gorm:"column:auth_token;type:text;uniqueIndex"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the dialect has no server-side default.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
