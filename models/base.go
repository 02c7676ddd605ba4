package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid key and timestamps shared by every table. Ids are
// assigned in Go so the same models migrate on postgres and sqlite.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Salon{},
		&User{},
		&Membership{},
		&Customer{},
		&Service{},
		&Coupon{},
		&Visit{},
		&VisitItem{},
		&Invoice{},
		&InvoiceItem{},
		&PointsHistory{},
		&NotificationLog{},
	}
}
