// Package visit owns the visit lifecycle and its item ledger.
package visit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpro-checkout/models"

	"github.com/shopspring/decimal"
)

var (
	ErrVisitCompleted    = errors.New("visit is already completed")
	ErrInvalidTransition = errors.New("invalid visit status transition")
	ErrItemIndex         = errors.New("item index out of range")
	ErrInvalidItem       = errors.New("invalid item")
	ErrNotService        = errors.New("item is not a service")
)

// StartService moves a checked-in visit into service.
func StartService(v *models.Visit) error {
	return transition(v, models.VisitInService, models.VisitCheckedIn)
}

// MarkReadyForBilling is legal from CHECKED_IN and IN_SERVICE.
func MarkReadyForBilling(v *models.Visit) error {
	return transition(v, models.VisitReadyForBilling, models.VisitCheckedIn, models.VisitInService)
}

// Complete is the terminal transition, reached only through checkout.
func Complete(v *models.Visit, at time.Time) error {
	if err := transition(v, models.VisitCompleted, models.VisitReadyForBilling); err != nil {
		return err
	}
	v.CompletedAt = &at
	return nil
}

func transition(v *models.Visit, to models.VisitStatus, from ...models.VisitStatus) error {
	if v.Status == models.VisitCompleted {
		return ErrVisitCompleted
	}
	for _, s := range from {
		if v.Status == s {
			v.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, to)
}

// AddItem appends a line and ratchets the visit up to READY_FOR_BILLING.
// A visit already past that status is never moved back.
func AddItem(v *models.Visit, item models.VisitItem) error {
	if err := appendItem(v, item); err != nil {
		return err
	}
	if v.Status.Rank() < models.VisitReadyForBilling.Rank() {
		v.Status = models.VisitReadyForBilling
	}
	return nil
}

func appendItem(v *models.Visit, item models.VisitItem) error {
	if v.Status == models.VisitCompleted {
		return ErrVisitCompleted
	}
	if err := validateItem(&item); err != nil {
		return err
	}
	item.VisitID = v.ID
	item.Position = len(v.Items)
	v.Items = append(v.Items, item)
	v.Subtotal = Subtotal(v)
	return nil
}

func validateItem(item *models.VisitItem) error {
	item.Name = strings.TrimSpace(item.Name)
	switch {
	case item.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case item.UnitPrice.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	case item.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidItem)
	}

	switch item.Kind {
	case models.KindService:
		if item.Status != models.ItemCompleted {
			item.Status = models.ItemPending
		}
	case models.KindProduct:
		item.Status = models.ItemAdded
		item.StaffID = nil
		item.StaffName = ""
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, item.Kind)
	}
	return nil
}

// RemoveItem drops the line at index and renumbers the rest.
func RemoveItem(v *models.Visit, index int) (models.VisitItem, error) {
	if v.Status == models.VisitCompleted {
		return models.VisitItem{}, ErrVisitCompleted
	}
	if index < 0 || index >= len(v.Items) {
		return models.VisitItem{}, ErrItemIndex
	}

	removed := v.Items[index]
	v.Items = append(v.Items[:index:index], v.Items[index+1:]...)
	for i := range v.Items {
		v.Items[i].Position = i
	}
	v.Subtotal = Subtotal(v)
	return removed, nil
}

// CompleteService marks a service line as done.
func CompleteService(v *models.Visit, index int) error {
	if v.Status == models.VisitCompleted {
		return ErrVisitCompleted
	}
	if index < 0 || index >= len(v.Items) {
		return ErrItemIndex
	}
	if v.Items[index].Kind != models.KindService {
		return ErrNotService
	}
	v.Items[index].Status = models.ItemCompleted
	return nil
}

// Subtotal is the sum of price times quantity over every line.
func Subtotal(v *models.Visit) decimal.Decimal {
	total := decimal.Zero
	for _, item := range v.Items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}
