package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"salonpro-checkout/models"
	"salonpro-checkout/services/events"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoChannel = errors.New("no notification channel for customer")

// Dispatcher sends a receipt for every committed invoice and records the
// attempt. Failures are logged and never reach checkout.
type Dispatcher struct {
	db      *gorm.DB
	sender  Sender
	timeout time.Duration
}

func NewDispatcher(db *gorm.DB, sender Sender) *Dispatcher {
	return &Dispatcher{db: db, sender: sender, timeout: 30 * time.Second}
}

// Attach subscribes the dispatcher to committed invoices.
func (d *Dispatcher) Attach(bus *events.Bus) (func(), error) {
	return bus.OnInvoiceCommitted(d.handle)
}

func (d *Dispatcher) handle(e events.InvoiceCommitted) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.Notify(ctx, e.Invoice)
	if err != nil && !errors.Is(err, ErrNoChannel) {
		zap.L().Warn("receipt notification failed",
			zap.String("invoice_number", e.Invoice.InvoiceNumber),
			zap.Error(err))
	}
}

// Notify sends the receipt for inv over the salon's preferred channel.
func (d *Dispatcher) Notify(ctx context.Context, inv *models.Invoice) error {
	db := d.db.WithContext(ctx)

	var salon models.Salon
	if err := db.First(&salon, "id = ?", inv.SalonID).Error; err != nil {
		return err
	}
	var customer models.Customer
	if err := db.First(&customer, "id = ?", inv.CustomerID).Error; err != nil {
		return err
	}

	channel, ok := pickChannel(&salon, customer.Phone)
	if !ok {
		return ErrNoChannel
	}

	message := FormatReceipt(&salon, customer.Name, inv)
	entry := models.NotificationLog{
		SalonID:    salon.ID,
		CustomerID: customer.ID,
		InvoiceID:  inv.ID,
		Channel:    string(channel),
		Recipient:  customer.Phone,
		Message:    message,
		Status:     "sent",
		SentAt:     time.Now(),
	}

	sid, sendErr := d.sender.Send(ctx, channel, customer.Phone, message)
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	} else {
		zap.L().Info("receipt sent",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.String("channel", string(channel)),
			zap.String("sid", sid))
	}

	if err := db.Create(&entry).Error; err != nil {
		zap.L().Error("failed to log notification", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
	}
	return sendErr
}

// pickChannel prefers WhatsApp for E.164 numbers.
func pickChannel(salon *models.Salon, phone string) (Channel, bool) {
	switch {
	case phone == "":
		return "", false
	case salon.WhatsAppNotifications && strings.HasPrefix(phone, "+"):
		return ChannelWhatsApp, true
	case salon.SMSNotifications:
		return ChannelSMS, true
	}
	return "", false
}
