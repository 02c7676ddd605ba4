// Package discount maps a checkout's discount mode to an amount.
package discount

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PointsPerCurrencyUnit is the fixed loyalty exchange rate.
const PointsPerCurrencyUnit = 20

type Type string

const (
	TypeNone          Type = "none"
	TypePercentage    Type = "percentage"
	TypeFlat          Type = "flat"
	TypeLoyaltyPoints Type = "loyalty_points"
	TypeMembership    Type = "membership"
	TypeCoupon        Type = "coupon"
)

var (
	ErrCouponNotResolved = errors.New("coupon discounts are resolved by the coupon validator")
	ErrUnknownMode       = errors.New("unknown discount mode")
)

// Mode is one of None, Percentage, Flat, LoyaltyPoints, Membership or Coupon.
// Modes are mutually exclusive per checkout.
type Mode interface {
	Type() Type
	isMode()
}

type None struct{}

type Percentage struct {
	Value decimal.Decimal
}

// Flat is not clamped to the subtotal.
type Flat struct {
	Value decimal.Decimal
}

type LoyaltyPoints struct {
	Points int64
}

// Membership carries the tier percentage once it has been looked up.
type Membership struct {
	TierID     uuid.UUID
	Name       string
	Percentage decimal.Decimal
}

type Coupon struct {
	Code string
}

func (None) Type() Type          { return TypeNone }
func (Percentage) Type() Type    { return TypePercentage }
func (Flat) Type() Type          { return TypeFlat }
func (LoyaltyPoints) Type() Type { return TypeLoyaltyPoints }
func (Membership) Type() Type    { return TypeMembership }
func (Coupon) Type() Type        { return TypeCoupon }

func (None) isMode()          {}
func (Percentage) isMode()    {}
func (Flat) isMode()          {}
func (LoyaltyPoints) isMode() {}
func (Membership) isMode()    {}
func (Coupon) isMode()        {}

type Result struct {
	Amount      decimal.Decimal
	Description string
}

var hundred = decimal.NewFromInt(100)

// Resolve computes the discount for every mode except Coupon, whose amount
// depends on coupon state and comes from the coupon validator. A nil mode is
// treated as None.
func Resolve(mode Mode, subtotal decimal.Decimal) (Result, error) {
	switch m := mode.(type) {
	case nil, None:
		return Result{Amount: decimal.Zero, Description: "No discount"}, nil
	case Percentage:
		return Result{
			Amount:      Money(subtotal.Mul(m.Value).Div(hundred)),
			Description: fmt.Sprintf("%s%% discount", m.Value.String()),
		}, nil
	case Flat:
		return Result{
			Amount:      Money(m.Value),
			Description: fmt.Sprintf("Flat discount of %s", m.Value.StringFixed(2)),
		}, nil
	case LoyaltyPoints:
		return Result{
			Amount:      PointsValue(m.Points),
			Description: fmt.Sprintf("%d loyalty points redeemed", m.Points),
		}, nil
	case Membership:
		return Result{
			Amount:      Money(subtotal.Mul(m.Percentage).Div(hundred)),
			Description: fmt.Sprintf("%s membership (%s%%)", m.Name, m.Percentage.String()),
		}, nil
	case Coupon:
		return Result{}, ErrCouponNotResolved
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownMode, mode)
	}
}

// PointsValue converts loyalty points to currency.
func PointsValue(points int64) decimal.Decimal {
	return Money(decimal.NewFromInt(points).Div(decimal.NewFromInt(PointsPerCurrencyUnit)))
}

// Money rounds to currency precision.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
