package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrImmutable = errors.New("record is immutable")

type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoicePartial InvoiceStatus = "partial"
)

type Invoice struct {
	Base
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	InvoiceNumber string    `gorm:"uniqueIndex;not null"`
	VisitID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	InvoiceDate   time.Time `gorm:"index"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID"`

	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountType        string          `gorm:"type:varchar(20)"`
	DiscountDescription string
	DiscountAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CouponCode             string
	CouponIsCapped         bool
	CouponOriginalDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CouponAppliedDiscount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	PointsUsed           int64
	PointsDiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LoyaltyPointsEarned  int64

	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceDue  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMode string
	Status      InvoiceStatus `gorm:"type:varchar(10);not null"`
	Notes       string
}

func (*Invoice) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

type InvoiceItem struct {
	Base
	InvoiceID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position   int             `gorm:"not null"`
	Kind       ItemKind        `gorm:"type:varchar(10);not null"`
	CatalogID  *uuid.UUID      `gorm:"type:uuid"`
	Name       string          `gorm:"not null"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StaffName  string
}
