package coupon

import (
	"context"
	"sync"
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

func intPtr(i int) *int { return &i }

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newValidator(t *testing.T, coupons ...models.Coupon) (*Validator, *Store, uuid.UUID) {
	t.Helper()
	db := testutil.NewTestDB(t, &models.Coupon{})
	salonID := uuid.New()
	for i := range coupons {
		coupons[i].SalonID = salonID
		require.NoError(t, db.Create(&coupons[i]).Error)
	}
	store := NewStore(db)
	v := NewValidator(store)
	v.now = func() time.Time { return now }
	return v, store, salonID
}

func TestValidateFlatCoupon(t *testing.T) {
	v, _, salonID := newValidator(t, models.Coupon{
		Code: "FLAT200", DiscountType: models.CouponFlat, DiscountValue: dec("200"),
		MinOrderAmount: dec("500"), ValidFrom: now.Add(-time.Hour), IsActive: true,
	})

	res, err := v.Validate(context.Background(), salonID, "flat200", dec("1000"))
	require.NoError(t, err)
	require.Equal(t, "200.00", res.DiscountAmount.StringFixed(2))
	require.False(t, res.IsCapped)
	require.Equal(t, 0, res.Coupon.CurrentUsageCount)
}

func TestValidatePercentageCouponCapped(t *testing.T) {
	v, _, salonID := newValidator(t, models.Coupon{
		Code: "PCT20", DiscountType: models.CouponPercentage, DiscountValue: dec("20"),
		MaxDiscountAmount: decimal.NewNullDecimal(dec("150")), ValidFrom: now.Add(-time.Hour), IsActive: true,
	})

	res, err := v.Validate(context.Background(), salonID, " pct20", dec("1000"))
	require.NoError(t, err)
	require.Equal(t, "150.00", res.DiscountAmount.StringFixed(2))
	require.Equal(t, "200.00", res.OriginalDiscountAmount.StringFixed(2))
	require.True(t, res.IsCapped)
	require.Contains(t, res.Description, "capped at 150.00")
}

func TestValidateNotFound(t *testing.T) {
	v, _, salonID := newValidator(t)

	_, err := v.Validate(context.Background(), salonID, "NOPE", dec("1000"))
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))
}

func TestCheckRules(t *testing.T) {
	valid := func() models.Coupon {
		return models.Coupon{
			Code: "OK", DiscountType: models.CouponFlat, DiscountValue: dec("50"),
			MinOrderAmount: dec("500"), ValidFrom: now.Add(-time.Hour), IsActive: true,
		}
	}
	until := now.Add(-time.Minute)

	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		total  string
		want   error
	}{
		{name: "valid", mutate: func(c *models.Coupon) {}, total: "500"},
		{name: "inactive", mutate: func(c *models.Coupon) { c.IsActive = false }, total: "1000", want: ErrInactive},
		{name: "not yet valid", mutate: func(c *models.Coupon) { c.ValidFrom = now.Add(time.Hour) }, total: "1000", want: ErrNotYetValid},
		{name: "expired", mutate: func(c *models.Coupon) { c.ValidUntil = &until }, total: "1000", want: ErrExpired},
		{name: "below minimum", mutate: func(c *models.Coupon) {}, total: "499.99", want: ErrMinOrderNotMet},
		{name: "usage cap reached", mutate: func(c *models.Coupon) { c.MaxUsageCount = intPtr(3); c.CurrentUsageCount = 3 }, total: "1000", want: ErrUsageLimitReached},
		{name: "usage under cap", mutate: func(c *models.Coupon) { c.MaxUsageCount = intPtr(3); c.CurrentUsageCount = 2 }, total: "1000"},
		{name: "inactive wins over expired", mutate: func(c *models.Coupon) { c.IsActive = false; c.ValidUntil = &until }, total: "1000", want: ErrInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := Check(&c, dec(tt.total), now)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComputeCapping(t *testing.T) {
	tests := []struct {
		name     string
		typ      models.CouponDiscountType
		value    string
		cap      decimal.NullDecimal
		subtotal string
		applied  string
		original string
		isCapped bool
	}{
		{"flat no cap", models.CouponFlat, "200", decimal.NullDecimal{}, "1000", "200.00", "200.00", false},
		{"flat over cap", models.CouponFlat, "200", decimal.NewNullDecimal(dec("120")), "1000", "120.00", "200.00", true},
		{"percentage under cap", models.CouponPercentage, "10", decimal.NewNullDecimal(dec("150")), "1000", "100.00", "100.00", false},
		{"percentage equal to cap", models.CouponPercentage, "15", decimal.NewNullDecimal(dec("150")), "1000", "150.00", "150.00", false},
		{"percentage over cap", models.CouponPercentage, "20", decimal.NewNullDecimal(dec("150")), "1000", "150.00", "200.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Coupon{DiscountType: tt.typ, DiscountValue: dec(tt.value), MaxDiscountAmount: tt.cap}
			applied, original, capped := Compute(c, dec(tt.subtotal))
			require.Equal(t, tt.applied, applied.StringFixed(2))
			require.Equal(t, tt.original, original.StringFixed(2))
			require.Equal(t, tt.isCapped, capped)
		})
	}
}

func TestValidateDoesNotConsumeUsage(t *testing.T) {
	v, store, salonID := newValidator(t, models.Coupon{
		Code: "ONCE", DiscountType: models.CouponFlat, DiscountValue: dec("10"),
		ValidFrom: now.Add(-time.Hour), MaxUsageCount: intPtr(1), IsActive: true,
	})

	for i := 0; i < 3; i++ {
		_, err := v.Validate(context.Background(), salonID, "ONCE", dec("100"))
		require.NoError(t, err)
	}

	c, err := store.FindByCode(context.Background(), salonID, "once")
	require.NoError(t, err)
	require.Equal(t, 0, c.CurrentUsageCount)
}

func TestIncrementUsageRespectsCap(t *testing.T) {
	_, store, salonID := newValidator(t, models.Coupon{
		Code: "LIMITED", DiscountType: models.CouponFlat, DiscountValue: dec("10"),
		ValidFrom: now.Add(-time.Hour), MaxUsageCount: intPtr(5), IsActive: true,
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.IncrementUsage(ctx, salonID, "limited")
		}()
	}
	wg.Wait()
	close(errs)

	var ok, limited int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrUsageLimitReached)
		limited++
	}
	require.Equal(t, 5, ok)
	require.Equal(t, 3, limited)

	c, err := store.FindByCode(ctx, salonID, "LIMITED")
	require.NoError(t, err)
	require.Equal(t, 5, c.CurrentUsageCount)

	require.ErrorIs(t, store.IncrementUsage(ctx, salonID, "MISSING"), ErrNotFound)
}

func TestStoreCreateAndDeactivate(t *testing.T) {
	_, store, salonID := newValidator(t)
	ctx := context.Background()

	c, err := store.Create(ctx, salonID, CreateInput{
		Code: " welcome10 ", DiscountType: models.CouponPercentage, DiscountValue: dec("10"),
	})
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", c.Code)
	require.True(t, c.IsActive)

	_, err = store.Create(ctx, salonID, CreateInput{Code: "WELCOME10", DiscountType: models.CouponFlat, DiscountValue: dec("5")})
	require.Equal(t, errutil.StatusConflict, errutil.CodeOf(err))

	_, err = store.Create(ctx, salonID, CreateInput{Code: "ZERO", DiscountType: models.CouponFlat})
	require.Equal(t, errutil.StatusBadRequest, errutil.CodeOf(err))

	require.NoError(t, store.Deactivate(ctx, salonID, "welcome10"))
	got, err := store.FindByCode(ctx, salonID, "WELCOME10")
	require.NoError(t, err)
	require.False(t, got.IsActive)

	err = store.Deactivate(ctx, salonID, "nothing")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(ctx, salonID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
