package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salonpro-checkout/models"
	"salonpro-checkout/services/events"
	"salonpro-checkout/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type sent struct {
	channel Channel
	to      string
	body    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, channel Channel, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sent{channel, to, body})
	return "SM123", nil
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		InvoiceNumber:       "INV-00000042",
		InvoiceDate:         time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
		Subtotal:            dec("1000"),
		DiscountDescription: "Coupon PCT20 (20% off), capped at 150.00",
		DiscountAmount:      dec("150"),
		TotalAmount:         dec("850"),
		PaidAmount:          dec("500"),
		BalanceDue:          dec("350"),
		PaymentMode:         "upi",
		LoyaltyPointsEarned: 500,
		Items: []models.InvoiceItem{
			{Name: "Haircut", Quantity: 1, TotalPrice: dec("800")},
			{Name: "Gel", Quantity: 2, TotalPrice: dec("200")},
		},
	}
}

func TestFormatReceipt(t *testing.T) {
	salon := &models.Salon{Name: "Glow Studio", CurrencySymbol: "Rs."}

	got := FormatReceipt(salon, "Meera", sampleInvoice())
	require.Equal(t, "Hi Meera, thank you for visiting Glow Studio.\n"+
		"Invoice INV-00000042 (16 Oct 2026)\n"+
		"Haircut x1  Rs.800.00\n"+
		"Gel x2  Rs.200.00\n"+
		"Subtotal: Rs.1000.00\n"+
		"Discount (Coupon PCT20 (20% off), capped at 150.00): -Rs.150.00\n"+
		"Total: Rs.850.00\n"+
		"Paid: Rs.500.00 (upi)\n"+
		"Balance due: Rs.350.00\n"+
		"Points earned: 500", got)
}

func setup(t *testing.T, salon models.Salon, phone string) (*gorm.DB, *models.Invoice) {
	t.Helper()
	db := testutil.NewTestDB(t, &models.Salon{}, &models.Membership{}, &models.Customer{}, &models.NotificationLog{})
	require.NoError(t, db.Create(&salon).Error)
	customer := models.Customer{SalonID: salon.ID, Name: "Meera", Phone: phone, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)

	inv := sampleInvoice()
	inv.SalonID = salon.ID
	inv.CustomerID = customer.ID
	return db, inv
}

func TestNotifyPrefersWhatsApp(t *testing.T) {
	db, inv := setup(t, models.Salon{Name: "Glow", CurrencySymbol: "Rs.", WhatsAppNotifications: true, SMSNotifications: true}, "+919811111111")
	sender := &fakeSender{}

	require.NoError(t, NewDispatcher(db, sender).Notify(context.Background(), inv))
	require.Len(t, sender.sent, 1)
	require.Equal(t, ChannelWhatsApp, sender.sent[0].channel)
	require.Equal(t, "+919811111111", sender.sent[0].to)

	var logs []models.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "sent", logs[0].Status)
}

func TestNotifyFallsBackToSMS(t *testing.T) {
	db, inv := setup(t, models.Salon{Name: "Glow", WhatsAppNotifications: true, SMSNotifications: true}, "9811111111")
	sender := &fakeSender{}

	require.NoError(t, NewDispatcher(db, sender).Notify(context.Background(), inv))
	require.Equal(t, ChannelSMS, sender.sent[0].channel)
}

func TestNotifySkipsWhenDisabled(t *testing.T) {
	db, inv := setup(t, models.Salon{Name: "Glow"}, "+919811111111")
	sender := &fakeSender{}

	err := NewDispatcher(db, sender).Notify(context.Background(), inv)
	require.ErrorIs(t, err, ErrNoChannel)
	require.Empty(t, sender.sent)
}

func TestNotifyRecordsFailure(t *testing.T) {
	db, inv := setup(t, models.Salon{Name: "Glow", SMSNotifications: true}, "+919811111111")
	sender := &fakeSender{err: errors.New("queue full")}

	err := NewDispatcher(db, sender).Notify(context.Background(), inv)
	require.ErrorContains(t, err, "queue full")

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry).Error)
	require.Equal(t, "failed", entry.Status)
	require.Equal(t, "queue full", entry.ErrorMessage)
	require.Equal(t, string(ChannelSMS), entry.Channel)
}

func TestDispatcherHandlesCommittedInvoices(t *testing.T) {
	db, inv := setup(t, models.Salon{Name: "Glow", SMSNotifications: true}, "+919811111111")
	sender := &fakeSender{}
	bus := events.NewBus()

	unsubscribe, err := NewDispatcher(db, sender).Attach(bus)
	require.NoError(t, err)
	defer unsubscribe()

	bus.PublishInvoiceCommitted(events.InvoiceCommitted{SalonID: inv.SalonID, Invoice: inv})
	bus.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	require.Contains(t, sender.sent[0].body, "INV-00000042")
}
