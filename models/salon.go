package models

type Salon struct {
	Base
	Name                  string `gorm:"not null"`
	Address               string
	Phone                 string
	CurrencySymbol        string `gorm:"default:'Rs.'"`
	WhatsAppNotifications bool
	SMSNotifications      bool

	Users     []User     `gorm:"foreignKey:SalonID"`
	Customers []Customer `gorm:"foreignKey:SalonID"`
}
