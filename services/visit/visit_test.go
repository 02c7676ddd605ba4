package visit

import (
	"context"
	"testing"
	"time"

	"salonpro-checkout/errutil"
	"salonpro-checkout/models"
	"salonpro-checkout/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func service(name, price string, qty int) models.VisitItem {
	return models.VisitItem{Kind: models.KindService, Name: name, UnitPrice: dec(price), Quantity: qty}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.VisitStatus
		apply   func(v *models.Visit) error
		want    models.VisitStatus
		wantErr error
	}{
		{"start from checked in", models.VisitCheckedIn, StartService, models.VisitInService, nil},
		{"start from in service", models.VisitInService, StartService, models.VisitInService, ErrInvalidTransition},
		{"start from ready", models.VisitReadyForBilling, StartService, models.VisitReadyForBilling, ErrInvalidTransition},
		{"ready from checked in", models.VisitCheckedIn, MarkReadyForBilling, models.VisitReadyForBilling, nil},
		{"ready from in service", models.VisitInService, MarkReadyForBilling, models.VisitReadyForBilling, nil},
		{"ready twice", models.VisitReadyForBilling, MarkReadyForBilling, models.VisitReadyForBilling, ErrInvalidTransition},
		{"complete from ready", models.VisitReadyForBilling, completeNow, models.VisitCompleted, nil},
		{"complete from checked in", models.VisitCheckedIn, completeNow, models.VisitCheckedIn, ErrInvalidTransition},
		{"complete from in service", models.VisitInService, completeNow, models.VisitInService, ErrInvalidTransition},
		{"nothing leaves completed", models.VisitCompleted, MarkReadyForBilling, models.VisitCompleted, ErrVisitCompleted},
		{"complete twice", models.VisitCompleted, completeNow, models.VisitCompleted, ErrVisitCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &models.Visit{Status: tt.from}
			err := tt.apply(v)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, v.Status)
		})
	}
}

func completeNow(v *models.Visit) error {
	return Complete(v, time.Now())
}

func TestAddItemRatchetsStatus(t *testing.T) {
	for _, from := range []models.VisitStatus{models.VisitCheckedIn, models.VisitInService, models.VisitReadyForBilling} {
		v := &models.Visit{Status: from}
		require.NoError(t, AddItem(v, service("Haircut", "500", 1)))
		require.Equal(t, models.VisitReadyForBilling, v.Status, from)
	}

	v := &models.Visit{Status: models.VisitCompleted}
	require.ErrorIs(t, AddItem(v, service("Haircut", "500", 1)), ErrVisitCompleted)
	require.Empty(t, v.Items)
}

func TestAddItemValidation(t *testing.T) {
	v := &models.Visit{Status: models.VisitCheckedIn}

	require.ErrorIs(t, AddItem(v, service(" ", "10", 1)), ErrInvalidItem)
	require.ErrorIs(t, AddItem(v, service("Trim", "-1", 1)), ErrInvalidItem)
	require.ErrorIs(t, AddItem(v, service("Trim", "10", 0)), ErrInvalidItem)
	require.ErrorIs(t, AddItem(v, models.VisitItem{Kind: "voucher", Name: "x", UnitPrice: dec("1"), Quantity: 1}), ErrInvalidItem)
	require.Empty(t, v.Items)
	require.Equal(t, models.VisitCheckedIn, v.Status)

	staff := uuid.New()
	require.NoError(t, AddItem(v, models.VisitItem{Kind: models.KindProduct, Name: "Shampoo", UnitPrice: dec("250"), Quantity: 2, StaffID: &staff}))
	require.Equal(t, models.ItemAdded, v.Items[0].Status)
	require.Nil(t, v.Items[0].StaffID)

	require.NoError(t, AddItem(v, service("Facial", "800", 1)))
	require.Equal(t, models.ItemPending, v.Items[1].Status)
	require.Equal(t, 1, v.Items[1].Position)
}

func TestSubtotalAndRemove(t *testing.T) {
	v := &models.Visit{Status: models.VisitReadyForBilling}
	require.NoError(t, AddItem(v, service("Haircut", "500", 1)))
	require.NoError(t, AddItem(v, models.VisitItem{Kind: models.KindProduct, Name: "Serum", UnitPrice: dec("125.50"), Quantity: 2}))
	require.NoError(t, AddItem(v, service("Beard", "249.00", 1)))
	require.Equal(t, "1000.00", Subtotal(v).StringFixed(2))
	require.True(t, v.Subtotal.Equal(dec("1000")))

	removed, err := RemoveItem(v, 1)
	require.NoError(t, err)
	require.Equal(t, "Serum", removed.Name)
	require.Len(t, v.Items, 2)
	require.Equal(t, "Beard", v.Items[1].Name)
	require.Equal(t, 1, v.Items[1].Position)
	require.Equal(t, "749.00", v.Subtotal.StringFixed(2))

	_, err = RemoveItem(v, 2)
	require.ErrorIs(t, err, ErrItemIndex)
	_, err = RemoveItem(v, -1)
	require.ErrorIs(t, err, ErrItemIndex)

	v.Status = models.VisitCompleted
	_, err = RemoveItem(v, 0)
	require.ErrorIs(t, err, ErrVisitCompleted)
	require.Len(t, v.Items, 2)
}

func TestCompleteService(t *testing.T) {
	v := &models.Visit{Status: models.VisitInService}
	require.NoError(t, appendItem(v, service("Color", "1500", 1)))
	require.NoError(t, appendItem(v, models.VisitItem{Kind: models.KindProduct, Name: "Mask", UnitPrice: dec("300"), Quantity: 1}))

	require.NoError(t, CompleteService(v, 0))
	require.Equal(t, models.ItemCompleted, v.Items[0].Status)
	require.ErrorIs(t, CompleteService(v, 1), ErrNotService)
	require.ErrorIs(t, CompleteService(v, 5), ErrItemIndex)
	require.Equal(t, models.VisitInService, v.Status)
}

type fixture struct {
	svc      *Service
	salonID  uuid.UUID
	customer models.Customer
	haircut  models.Service
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewTestDB(t, &models.Customer{}, &models.Membership{}, &models.Service{}, &models.Visit{}, &models.VisitItem{})

	salonID := uuid.New()
	customer := models.Customer{SalonID: salonID, Name: "Asha", Phone: "+919876543210", Email: "asha@example.com", IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	haircut := models.Service{SalonID: salonID, Kind: models.KindService, Name: "Haircut", Price: dec("500"), IsActive: true}
	require.NoError(t, db.Create(&haircut).Error)

	return fixture{svc: NewService(db), salonID: salonID, customer: customer, haircut: haircut}
}

func TestServiceCheckInAndLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.svc.CheckIn(ctx, f.salonID, uuid.New(), f.customer.ID, []ItemInput{{CatalogID: &f.haircut.ID}})
	require.NoError(t, err)
	require.Equal(t, models.VisitCheckedIn, v.Status)
	require.Equal(t, "Asha", v.CustomerName)
	require.Len(t, v.Items, 1)
	require.Equal(t, "Haircut", v.Items[0].Name)
	require.Equal(t, "500.00", v.Subtotal.StringFixed(2))

	v, err = f.svc.StartService(ctx, f.salonID, v.ID)
	require.NoError(t, err)
	require.Equal(t, models.VisitInService, v.Status)

	_, err = f.svc.StartService(ctx, f.salonID, v.ID)
	require.Equal(t, errutil.StatusConflict, errutil.CodeOf(err))

	price := dec("250")
	v, err = f.svc.AddItem(ctx, f.salonID, v.ID, ItemInput{Kind: models.KindProduct, Name: "Wax", UnitPrice: &price, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, models.VisitReadyForBilling, v.Status)

	v, err = f.svc.CompleteService(ctx, f.salonID, v.ID, 0)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.salonID, v.ID)
	require.NoError(t, err)
	require.Equal(t, models.VisitReadyForBilling, got.Status)
	require.Equal(t, "1000.00", got.Subtotal.StringFixed(2))
	require.Len(t, got.Items, 2)
	require.Equal(t, models.ItemCompleted, got.Items[0].Status)
	require.Equal(t, models.ItemAdded, got.Items[1].Status)

	v, err = f.svc.RemoveItem(ctx, f.salonID, v.ID, 0)
	require.NoError(t, err)
	got, err = f.svc.Get(ctx, f.salonID, v.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Wax", got.Items[0].Name)
	require.Equal(t, 0, got.Items[0].Position)
	require.Equal(t, "500.00", got.Subtotal.StringFixed(2))

	list, err := f.svc.List(ctx, f.salonID, models.VisitReadyForBilling, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestServiceRejectsChangesToCompletedVisit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.svc.CheckIn(ctx, f.salonID, uuid.Nil, f.customer.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.db.Model(&models.Visit{}).Where("id = ?", v.ID).Update("status", models.VisitCompleted).Error)

	price := dec("100")
	_, err = f.svc.AddItem(ctx, f.salonID, v.ID, ItemInput{Name: "Trim", UnitPrice: &price})
	require.ErrorIs(t, err, ErrVisitCompleted)
	require.Equal(t, errutil.StatusConflict, errutil.CodeOf(err))

	got, err := f.svc.Get(ctx, f.salonID, v.ID)
	require.NoError(t, err)
	require.Empty(t, got.Items)
}

func TestServiceNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.salonID, uuid.Nil, uuid.New(), nil)
	require.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))

	_, err = f.svc.Get(ctx, uuid.New(), uuid.New())
	require.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))

	missing := uuid.New()
	v, err := f.svc.CheckIn(ctx, f.salonID, uuid.Nil, f.customer.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.salonID, v.ID, ItemInput{CatalogID: &missing})
	require.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))
}
