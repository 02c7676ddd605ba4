package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VisitStatus string

const (
	VisitCheckedIn       VisitStatus = "CHECKED_IN"
	VisitInService       VisitStatus = "IN_SERVICE"
	VisitReadyForBilling VisitStatus = "READY_FOR_BILLING"
	VisitCompleted       VisitStatus = "COMPLETED"
)

// Rank orders the lifecycle; unknown statuses rank below CHECKED_IN.
func (s VisitStatus) Rank() int {
	switch s {
	case VisitCheckedIn:
		return 1
	case VisitInService:
		return 2
	case VisitReadyForBilling:
		return 3
	case VisitCompleted:
		return 4
	default:
		return 0
	}
}

type ItemKind string

const (
	KindService ItemKind = "service"
	KindProduct ItemKind = "product"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemCompleted ItemStatus = "completed"
	ItemAdded     ItemStatus = "added"
)

type Visit struct {
	Base
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID      uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	// Snapshot at check-in.
	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Status VisitStatus `gorm:"type:varchar(20);index;not null"`
	Items  []VisitItem `gorm:"foreignKey:VisitID"`

	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountType        string          `gorm:"type:varchar(20)"`
	DiscountDescription string
	DiscountAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CouponCode          string
	PointsUsed          int64
	PointsEarned        int64

	// Set once, when the visit is completed by checkout.
	InvoiceID     *uuid.UUID `gorm:"type:uuid"`
	InvoiceNumber string

	CheckedInAt time.Time
	CompletedAt *time.Time
}

type VisitItem struct {
	Base
	VisitID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null"`
	Kind      ItemKind        `gorm:"type:varchar(10);not null"`
	CatalogID *uuid.UUID      `gorm:"type:uuid"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int             `gorm:"not null;default:1"`
	StaffID   *uuid.UUID      `gorm:"type:uuid"`
	StaffName string
	Status    ItemStatus `gorm:"type:varchar(10);not null"`
}

// LineTotal is unit price times quantity.
func (i VisitItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
