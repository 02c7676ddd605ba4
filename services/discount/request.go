package discount

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidDiscount = errors.New("invalid discount")

// Request is the wire form of a discount selection.
type Request struct {
	Type   Type            `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Points int64           `json:"points"`
	Code   string          `json:"code"`
}

// Mode validates the request and returns the matching variant. Membership
// is returned without a percentage; the caller fills it from the customer's
// tier.
func (r Request) Mode() (Mode, error) {
	switch r.Type {
	case "", TypeNone:
		return None{}, nil
	case TypePercentage:
		if r.Value.IsNegative() || r.Value.GreaterThan(hundred) {
			return nil, errors.Join(ErrInvalidDiscount, errors.New("percentage must be between 0 and 100"))
		}
		return Percentage{Value: r.Value}, nil
	case TypeFlat:
		if r.Value.IsNegative() {
			return nil, errors.Join(ErrInvalidDiscount, errors.New("flat discount must not be negative"))
		}
		return Flat{Value: r.Value}, nil
	case TypeLoyaltyPoints:
		if r.Points <= 0 {
			return nil, errors.Join(ErrInvalidDiscount, errors.New("points must be positive"))
		}
		return LoyaltyPoints{Points: r.Points}, nil
	case TypeMembership:
		return Membership{}, nil
	case TypeCoupon:
		code := strings.TrimSpace(r.Code)
		if code == "" {
			return nil, errors.Join(ErrInvalidDiscount, errors.New("coupon code is required"))
		}
		return Coupon{Code: code}, nil
	default:
		return nil, errors.Join(ErrInvalidDiscount, ErrUnknownMode)
	}
}
