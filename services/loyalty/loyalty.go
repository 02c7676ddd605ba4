// Package loyalty computes point movements and keeps the append-only
// points ledger in step with each customer's balance.
package loyalty

import (
	"fmt"

	"salonpro-checkout/models"

	"github.com/shopspring/decimal"
)

// Outcome is the point movement of one checkout.
type Outcome struct {
	PointsEarned   int64
	PointsDeducted int64
	Net            int64
	NewBalance     int64
	Type           models.PointsType
	Description    string
}

// HasEntry reports whether the checkout moves any points.
func (o Outcome) HasEntry() bool {
	return o.PointsEarned != 0 || o.PointsDeducted != 0
}

// ApplyCheckout earns one point per whole currency unit paid and deducts the
// points redeemed as a discount. The balance is allowed to go negative.
func ApplyCheckout(balance, coinsUsed int64, amountPaid decimal.Decimal) Outcome {
	earned := amountPaid.Floor().IntPart()
	if earned < 0 {
		earned = 0
	}
	if coinsUsed < 0 {
		coinsUsed = 0
	}

	o := Outcome{
		PointsEarned:   earned,
		PointsDeducted: coinsUsed,
		Net:            earned - coinsUsed,
	}
	o.NewBalance = balance + o.Net

	switch {
	case earned > 0 && coinsUsed > 0:
		o.Type = models.PointsAdjusted
		o.Description = fmt.Sprintf("Used %d points as discount, earned %d points from purchase", coinsUsed, earned)
	case coinsUsed > 0:
		o.Type = models.PointsDeducted
		o.Description = fmt.Sprintf("Used %d points as discount", coinsUsed)
	case earned > 0:
		o.Type = models.PointsEarned
		o.Description = fmt.Sprintf("Earned %d points from purchase", earned)
	}
	return o
}
