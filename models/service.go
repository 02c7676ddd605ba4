package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a catalog entry; Kind distinguishes salon services from
// retail products sold at the desk.
type Service struct {
	Base
	SalonID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind        ItemKind  `gorm:"type:varchar(10);not null;default:'service'"`
	Name        string    `gorm:"not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Duration    int             // in minutes
	Category    string          `gorm:"default:'General'"`
	IsActive    bool
}
