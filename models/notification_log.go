package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationLog struct {
	Base
	SalonID      uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;index"`
	Channel      string    `gorm:"type:varchar(20)"` // whatsapp, sms
	Recipient    string
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time
}
