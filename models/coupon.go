package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CouponDiscountType string

const (
	CouponFlat       CouponDiscountType = "flat"
	CouponPercentage CouponDiscountType = "percentage"
)

type Coupon struct {
	Base
	SalonID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_salon_coupon_code,priority:1"`
	Code        string    `gorm:"not null;uniqueIndex:idx_salon_coupon_code,priority:2"` // upper-case
	Description string

	DiscountType      CouponDiscountType  `gorm:"type:varchar(12);not null"`
	DiscountValue     decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	MinOrderAmount    decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	MaxDiscountAmount decimal.NullDecimal `gorm:"type:decimal(10,2)"`

	ValidFrom  time.Time
	ValidUntil *time.Time

	MaxUsageCount     *int
	CurrentUsageCount int `gorm:"not null;default:0"`
	IsActive          bool
}
