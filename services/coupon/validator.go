// Package coupon validates coupon codes against a subtotal and tracks usage.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpro-checkout/errutil"
	"salonpro-checkout/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("coupon not found")
	ErrInactive          = errors.New("coupon is not active")
	ErrNotYetValid       = errors.New("coupon is not valid yet")
	ErrExpired           = errors.New("coupon has expired")
	ErrMinOrderNotMet    = errors.New("order amount is below the coupon minimum")
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)

// NormalizeCode is the canonical form codes are stored and looked up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type Repository interface {
	FindByCode(ctx context.Context, salonID uuid.UUID, code string) (*models.Coupon, error)
	IncrementUsage(ctx context.Context, salonID uuid.UUID, code string) error
}

// Validation is a resolved coupon discount plus its audit fields.
type Validation struct {
	Coupon                 *models.Coupon
	DiscountAmount         decimal.Decimal
	OriginalDiscountAmount decimal.Decimal
	IsCapped               bool
	Description            string
}

type Validator struct {
	repo Repository
	now  func() time.Time
}

func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate looks the code up and checks it against subtotal. It never changes
// the coupon's usage count.
func (v *Validator) Validate(ctx context.Context, salonID uuid.UUID, code string, subtotal decimal.Decimal) (*Validation, error) {
	c, err := v.repo.FindByCode(ctx, salonID, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errutil.NotFound("Coupon not found", err)
		}
		return nil, errutil.Internal("failed to load coupon", err)
	}

	if err := Check(c, subtotal, v.now()); err != nil {
		return nil, errutil.ValidationFailed(err.Error(), err)
	}

	discount, original, capped := Compute(c, subtotal)
	return &Validation{
		Coupon:                 c,
		DiscountAmount:         discount,
		OriginalDiscountAmount: original,
		IsCapped:               capped,
		Description:            describe(c, discount, capped),
	}, nil
}

// Check applies the eligibility rules in order and returns the first failure.
func Check(c *models.Coupon, subtotal decimal.Decimal, now time.Time) error {
	if !c.IsActive {
		return ErrInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrExpired
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return fmt.Errorf("%w (minimum %s)", ErrMinOrderNotMet, c.MinOrderAmount.StringFixed(2))
	}
	if c.MaxUsageCount != nil && c.CurrentUsageCount >= *c.MaxUsageCount {
		return ErrUsageLimitReached
	}
	return nil
}

// Compute returns the applied discount, the uncapped discount and whether
// the cap was hit.
func Compute(c *models.Coupon, subtotal decimal.Decimal) (applied, original decimal.Decimal, capped bool) {
	switch c.DiscountType {
	case models.CouponPercentage:
		original = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	default:
		original = c.DiscountValue.Round(2)
	}

	if c.MaxDiscountAmount.Valid && original.GreaterThan(c.MaxDiscountAmount.Decimal) {
		return c.MaxDiscountAmount.Decimal.Round(2), original, true
	}
	return original, original, false
}

func describe(c *models.Coupon, applied decimal.Decimal, capped bool) string {
	var d string
	if c.DiscountType == models.CouponPercentage {
		d = fmt.Sprintf("Coupon %s (%s%% off)", c.Code, c.DiscountValue.String())
	} else {
		d = fmt.Sprintf("Coupon %s (%s off)", c.Code, c.DiscountValue.StringFixed(2))
	}
	if capped {
		d += fmt.Sprintf(", capped at %s", applied.StringFixed(2))
	}
	return d
}
