package loyalty

import (
	"context"
	"sync"
	"testing"

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

func TestApplyCheckout(t *testing.T) {
	tests := []struct {
		name      string
		balance   int64
		used      int64
		paid      string
		earned    int64
		deducted  int64
		newBal    int64
		entryType models.PointsType
	}{
		{"redeem and earn", 300, 100, "995", 995, 100, 1195, models.PointsAdjusted},
		{"earn only, fraction floored", 0, 0, "899.99", 899, 0, 899, models.PointsEarned},
		{"redeem only", 300, 100, "0", 0, 100, 200, models.PointsDeducted},
		{"nothing", 40, 0, "0.75", 0, 0, 40, ""},
		{"balance may go negative", 50, 100, "0", 0, 100, -50, models.PointsDeducted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := ApplyCheckout(tt.balance, tt.used, decimal.RequireFromString(tt.paid))
			require.Equal(t, tt.earned, o.PointsEarned)
			require.Equal(t, tt.deducted, o.PointsDeducted)
			require.Equal(t, tt.earned-tt.deducted, o.Net)
			require.Equal(t, tt.newBal, o.NewBalance)
			require.Equal(t, tt.entryType, o.Type)
			require.Equal(t, tt.entryType != "", o.HasEntry())
		})
	}
}

func TestApplyCheckoutDescriptions(t *testing.T) {
	require.Equal(t, "Used 100 points as discount, earned 995 points from purchase",
		ApplyCheckout(300, 100, decimal.NewFromInt(995)).Description)
	require.Equal(t, "Earned 10 points from purchase", ApplyCheckout(0, 0, decimal.NewFromInt(10)).Description)
	require.Equal(t, "Used 20 points as discount", ApplyCheckout(20, 20, decimal.Zero).Description)
}

func newLedger(t *testing.T, balance int64) (*Ledger, models.Customer) {
	t.Helper()
	db := testutil.NewTestDB(t, &models.Membership{}, &models.Customer{}, &models.PointsHistory{})
	c := models.Customer{SalonID: uuid.New(), Name: "Ravi", Phone: "+919800000001", IsActive: true}
	require.NoError(t, db.Create(&c).Error)

	l := NewLedger(db)
	if balance != 0 {
		_, err := l.Adjust(context.Background(), c.SalonID, c.ID, balance, 0, "opening balance")
		require.NoError(t, err)
	}
	return l, c
}

func balanceOf(t *testing.T, l *Ledger, id uuid.UUID) int64 {
	t.Helper()
	var c models.Customer
	require.NoError(t, l.db.First(&c, "id = ?", id).Error)
	return c.LoyaltyPoints
}

func TestLedgerAppendMovesBalance(t *testing.T) {
	l, c := newLedger(t, 300)
	ctx := context.Background()

	o := ApplyCheckout(300, 100, decimal.NewFromInt(995))
	entry := &models.PointsHistory{
		SalonID: c.SalonID, CustomerID: c.ID, Type: o.Type,
		PointsEarned: o.PointsEarned, PointsDeducted: o.PointsDeducted, Description: o.Description,
	}
	require.NoError(t, l.Append(ctx, entry))
	require.Equal(t, int64(895), entry.Net)
	require.Equal(t, int64(1195), entry.BalanceAfter)
	require.Equal(t, int64(1195), balanceOf(t, l, c.ID))

	sum, err := l.Replay(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1195), sum)

	history, err := l.History(ctx, c.SalonID, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestLedgerAppendUnknownCustomer(t *testing.T) {
	l, c := newLedger(t, 0)

	err := l.Append(context.Background(), &models.PointsHistory{SalonID: c.SalonID, CustomerID: uuid.New(), PointsEarned: 5})
	require.ErrorIs(t, err, ErrCustomerNotFound)

	var count int64
	require.NoError(t, l.db.Model(&models.PointsHistory{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestLedgerEntriesAreImmutable(t *testing.T) {
	l, c := newLedger(t, 10)

	history, err := l.History(context.Background(), c.SalonID, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	entry := history[0]
	entry.PointsEarned = 1000
	require.ErrorIs(t, l.db.Save(&entry).Error, models.ErrImmutable)
}

func TestAdjustValidation(t *testing.T) {
	l, c := newLedger(t, 0)
	ctx := context.Background()

	_, err := l.Adjust(ctx, c.SalonID, c.ID, 0, 0, "noop")
	require.Equal(t, errutil.StatusBadRequest, errutil.CodeOf(err))
	_, err = l.Adjust(ctx, c.SalonID, c.ID, -5, 0, "negative")
	require.Equal(t, errutil.StatusBadRequest, errutil.CodeOf(err))
	_, err = l.Adjust(ctx, c.SalonID, c.ID, 5, 0, " ")
	require.Equal(t, errutil.StatusBadRequest, errutil.CodeOf(err))
	_, err = l.Adjust(ctx, c.SalonID, uuid.New(), 5, 0, "goodwill")
	require.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))

	entry, err := l.Adjust(ctx, c.SalonID, c.ID, 20, 5, "goodwill")
	require.NoError(t, err)
	require.Equal(t, models.PointsAdjusted, entry.Type)
	require.Equal(t, int64(15), entry.BalanceAfter)
}

func TestConcurrentAppendsKeepLedgerAndBalanceInStep(t *testing.T) {
	l, c := newLedger(t, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := &models.PointsHistory{SalonID: c.SalonID, CustomerID: c.ID, Type: models.PointsEarned, PointsEarned: int64(i + 1)}
			require.NoError(t, l.Append(ctx, entry))
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(210), balanceOf(t, l, c.ID))
	sum, err := l.Replay(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(210), sum)
}

func TestReconcilerReportsDrift(t *testing.T) {
	l, c := newLedger(t, 50)
	ctx := context.Background()

	r := NewReconciler(l.db, "")
	drifts, err := r.Run(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)

	require.NoError(t, l.db.Model(&models.Customer{}).Where("id = ?", c.ID).Update("loyalty_points", 70).Error)

	drifts, err = r.Run(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, c.ID, drifts[0].CustomerID)
	require.Equal(t, int64(70), drifts[0].Balance)
	require.Equal(t, int64(50), drifts[0].Ledger)
}

func TestReconcilerSchedule(t *testing.T) {
	l, _ := newLedger(t, 0)

	r := NewReconciler(l.db, "not a schedule")
	require.Error(t, r.Start())

	r = NewReconciler(l.db, "@every 1h")
	require.NoError(t, r.Start())
	r.Stop()
}
