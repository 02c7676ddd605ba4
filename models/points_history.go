package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PointsType string

const (
	PointsEarned   PointsType = "earned"
	PointsDeducted PointsType = "deducted"
	PointsAdjusted PointsType = "adjusted"
)

// PointsHistory is one immutable row of a customer's loyalty ledger. The sum
// of Net over a customer's rows equals Customer.LoyaltyPoints.
type PointsHistory struct {
	Base
	SalonID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	Type       PointsType `gorm:"type:varchar(10);not null"`

	PointsEarned   int64 `gorm:"not null;default:0"`
	PointsDeducted int64 `gorm:"not null;default:0"`
	Net            int64 `gorm:"not null"`
	BalanceAfter   int64 `gorm:"not null"`
	Description    string

	VisitID       *uuid.UUID `gorm:"type:uuid;index"`
	InvoiceNumber string

	// Bill snapshot.
	AmountSpent   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMode   string
	DiscountGiven decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ItemCount     int
}

func (*PointsHistory) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }
