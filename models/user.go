package models

import (
	"salonpro-checkout/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
	Name     string `gorm:"not null"`
	Phone    string

	Role    string    `gorm:"type:varchar(20);not null"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	LastLogin *time.Time
	IsActive  bool
}

// BeforeCreate assigns the id and replaces the plain password with its hash.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}
