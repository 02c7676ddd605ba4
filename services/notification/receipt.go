package notification

import (
	"fmt"
	"strings"

	"salonpro-checkout/models"

	"github.com/shopspring/decimal"
)

// FormatReceipt renders the plain-text receipt sent after checkout.
func FormatReceipt(salon *models.Salon, customerName string, inv *models.Invoice) string {
	cur := salon.CurrencySymbol
	money := func(d decimal.Decimal) string { return cur + d.StringFixed(2) }

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, thank you for visiting %s.\n", customerName, salon.Name)
	fmt.Fprintf(&b, "Invoice %s (%s)\n", inv.InvoiceNumber, inv.InvoiceDate.Format("02 Jan 2006"))
	for _, item := range inv.Items {
		fmt.Fprintf(&b, "%s x%d  %s\n", item.Name, item.Quantity, money(item.TotalPrice))
	}
	fmt.Fprintf(&b, "Subtotal: %s\n", money(inv.Subtotal))
	if !inv.DiscountAmount.IsZero() {
		fmt.Fprintf(&b, "Discount (%s): -%s\n", inv.DiscountDescription, money(inv.DiscountAmount))
	}
	fmt.Fprintf(&b, "Total: %s\n", money(inv.TotalAmount))
	if inv.PaymentMode != "" {
		fmt.Fprintf(&b, "Paid: %s (%s)\n", money(inv.PaidAmount), inv.PaymentMode)
	} else {
		fmt.Fprintf(&b, "Paid: %s\n", money(inv.PaidAmount))
	}
	if inv.BalanceDue.IsPositive() {
		fmt.Fprintf(&b, "Balance due: %s\n", money(inv.BalanceDue))
	}
	if inv.LoyaltyPointsEarned > 0 {
		fmt.Fprintf(&b, "Points earned: %d\n", inv.LoyaltyPointsEarned)
	}
	return strings.TrimRight(b.String(), "\n")
}
