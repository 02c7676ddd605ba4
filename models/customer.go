package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	Base
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_salon_phone,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	Name        string `gorm:"not null"`
	Phone       string `gorm:"not null;uniqueIndex:idx_salon_phone,priority:2"`
	Email       string
	Birthday    *time.Time
	Anniversary *time.Time
	Notes       string

	MembershipID *uuid.UUID `gorm:"type:uuid;index"`
	Membership   *Membership

	// Changed only through atomic SQL increments; see services/loyalty.
	LoyaltyPoints int64           `gorm:"not null;default:0"`
	TotalVisits   int             `gorm:"not null;default:0"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastVisit     *time.Time
	IsActive      bool
}

type Membership struct {
	Base
	SalonID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name               string          `gorm:"not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	IsActive           bool
}
