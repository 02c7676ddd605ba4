// Package invoice turns a billing-ready visit into a committed invoice.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonpro-checkout/errutil"
	"salonpro-checkout/models"
	"salonpro-checkout/services/coupon"
	"salonpro-checkout/services/discount"
	"salonpro-checkout/services/loyalty"
	"salonpro-checkout/services/visit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotReadyForBilling = errors.New("visit is not ready for billing")
	ErrNoItems            = errors.New("visit has no items")
	ErrItemsChanged       = errors.New("visit items changed during checkout")

	errAlreadyCompleted = errors.New("visit completed concurrently")
)

type CouponValidator interface {
	Validate(ctx context.Context, salonID uuid.UUID, code string, subtotal decimal.Decimal) (*coupon.Validation, error)
}

type CouponUsage interface {
	IncrementUsage(ctx context.Context, salonID uuid.UUID, code string) error
}

type CheckoutRequest struct {
	SalonID     uuid.UUID
	UserID      uuid.UUID
	VisitID     uuid.UUID
	Discount    discount.Mode
	AmountPaid  decimal.Decimal
	PaymentMode string
	Notes       string
}

// Result is the committed invoice. Replayed is set when the visit had
// already been checked out and the existing invoice is returned unchanged.
type Result struct {
	Invoice  *models.Invoice
	Visit    *models.Visit
	Replayed bool
}

type Builder struct {
	db          *gorm.DB
	coupons     CouponValidator
	usage       CouponUsage
	memberships discount.MembershipLookup
	ids         Allocator
	now         func() time.Time
}

func NewBuilder(db *gorm.DB, coupons CouponValidator, usage CouponUsage, memberships discount.MembershipLookup, ids Allocator) *Builder {
	return &Builder{
		db:          db,
		coupons:     coupons,
		usage:       usage,
		memberships: memberships,
		ids:         ids,
		now:         time.Now,
	}
}

// resolved is the discount applied to a checkout plus coupon audit fields.
type resolved struct {
	mode       discount.Mode
	amount     decimal.Decimal
	desc       string
	validation *coupon.Validation
}

// Checkout commits a visit. Validation happens before any write; the invoice,
// visit, customer aggregate and points ledger are written in one
// transaction. The visit id makes the call idempotent.
func (b *Builder) Checkout(ctx context.Context, req CheckoutRequest) (*Result, error) {
	if req.AmountPaid.IsNegative() {
		return nil, errutil.BadRequest("Amount paid must not be negative", nil)
	}

	var v models.Visit
	err := b.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("id = ? AND salon_id = ?", req.VisitID, req.SalonID).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("Visit not found", err)
		}
		return nil, errutil.Internal("failed to load visit", err)
	}

	if v.Status == models.VisitCompleted {
		return b.existing(ctx, &v)
	}
	if v.Status != models.VisitReadyForBilling {
		return nil, errutil.Conflict(fmt.Sprintf("Visit is %s, not ready for billing", v.Status), ErrNotReadyForBilling)
	}
	if len(v.Items) == 0 {
		return nil, errutil.ValidationFailed("Visit has no items", ErrNoItems)
	}

	var customer models.Customer
	err = b.db.WithContext(ctx).Where("id = ? AND salon_id = ?", v.CustomerID, req.SalonID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.ValidationFailed("Customer not found", loyalty.ErrCustomerNotFound)
		}
		return nil, errutil.Internal("failed to load customer", err)
	}

	subtotal := visit.Subtotal(&v)
	d, err := b.resolve(ctx, req, &customer, subtotal)
	if err != nil {
		return nil, err
	}

	total := discount.Money(subtotal.Sub(d.amount))
	paid := discount.Money(req.AmountPaid)
	balanceDue := total.Sub(paid)
	status := models.InvoicePartial
	if !balanceDue.IsPositive() {
		status = models.InvoicePaid
	}

	var coinsUsed int64
	if lp, ok := d.mode.(discount.LoyaltyPoints); ok {
		coinsUsed = lp.Points
	}
	points := loyalty.ApplyCheckout(customer.LoyaltyPoints, coinsUsed, paid)

	number, err := b.ids.NextInvoiceID(ctx)
	if err != nil {
		return nil, errutil.Internal("failed to allocate invoice number", err)
	}

	now := b.now()
	inv := &models.Invoice{
		Base:                models.Base{ID: uuid.New()},
		SalonID:             req.SalonID,
		CreatedByUserID:     req.UserID,
		InvoiceNumber:       number,
		VisitID:             v.ID,
		CustomerID:          v.CustomerID,
		InvoiceDate:         now,
		Subtotal:            subtotal,
		DiscountType:        string(d.mode.Type()),
		DiscountDescription: d.desc,
		DiscountAmount:      d.amount,
		LoyaltyPointsEarned: points.PointsEarned,
		TotalAmount:         total,
		PaidAmount:          paid,
		BalanceDue:          balanceDue,
		PaymentMode:         req.PaymentMode,
		Status:              status,
		Notes:               req.Notes,
	}
	if coinsUsed > 0 {
		inv.PointsUsed = coinsUsed
		inv.PointsDiscountAmount = d.amount
	}
	if d.validation != nil {
		inv.CouponCode = d.validation.Coupon.Code
		inv.CouponIsCapped = d.validation.IsCapped
		inv.CouponOriginalDiscount = d.validation.OriginalDiscountAmount
		inv.CouponAppliedDiscount = d.validation.DiscountAmount
	}
	for i, item := range v.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			InvoiceID:  inv.ID,
			Position:   i,
			Kind:       item.Kind,
			CatalogID:  item.CatalogID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.LineTotal().Round(2),
			StaffName:  item.StaffName,
		})
	}

	if err := visit.Complete(&v, now); err != nil {
		return nil, errutil.Conflict(err.Error(), err)
	}
	v.Subtotal = subtotal
	v.DiscountType = inv.DiscountType
	v.DiscountDescription = d.desc
	v.DiscountAmount = d.amount
	v.TotalAmount = total
	v.PaidAmount = paid
	v.CouponCode = inv.CouponCode
	v.PointsUsed = inv.PointsUsed
	v.PointsEarned = points.PointsEarned
	v.InvoiceID = &inv.ID
	v.InvoiceNumber = number

	err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The bill was priced from an unlocked read; the locked row must
		// still carry the same lines.
		locked, err := visit.Load(tx, req.SalonID, v.ID)
		if err != nil {
			return err
		}
		switch {
		case locked.Status == models.VisitCompleted:
			return errAlreadyCompleted
		case locked.Status != models.VisitReadyForBilling:
			return ErrNotReadyForBilling
		case !sameItems(v.Items, locked.Items):
			return ErrItemsChanged
		}
		return commit(tx, &v, inv, points)
	})
	switch {
	case errors.Is(err, errAlreadyCompleted):
		return b.existing(ctx, &v)
	case errors.Is(err, ErrItemsChanged):
		return nil, errutil.Conflict("Visit items changed during checkout, review the bill and retry", err)
	case errors.Is(err, ErrNotReadyForBilling):
		return nil, errutil.Conflict("Visit is no longer ready for billing", err)
	case err != nil:
		var be errutil.BaseError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, errutil.Internal("failed to commit checkout", err)
	}

	zap.L().Info("visit checked out",
		zap.String("visit_id", v.ID.String()),
		zap.String("invoice_number", number),
		zap.String("discount_type", inv.DiscountType),
		zap.String("total", total.StringFixed(2)),
		zap.Int64("points_net", points.Net))

	if d.validation != nil {
		// Usage is counted after commit. A failure leaves the count low; a
		// cap reached by a concurrent checkout means this invoice redeemed
		// the coupon once more than allowed.
		fields := []zap.Field{
			zap.String("coupon", d.validation.Coupon.Code),
			zap.String("invoice_number", number),
		}
		if err := b.usage.IncrementUsage(ctx, req.SalonID, d.validation.Coupon.Code); err != nil {
			if errors.Is(err, coupon.ErrUsageLimitReached) {
				zap.L().Error("coupon redeemed beyond usage cap", fields...)
			} else {
				zap.L().Warn("coupon usage increment failed", append(fields, zap.Error(err))...)
			}
		}
	}

	return &Result{Invoice: inv, Visit: &v}, nil
}

func (b *Builder) resolve(ctx context.Context, req CheckoutRequest, customer *models.Customer, subtotal decimal.Decimal) (resolved, error) {
	mode := req.Discount
	if mode == nil {
		mode = discount.None{}
	}

	switch m := mode.(type) {
	case discount.Coupon:
		val, err := b.coupons.Validate(ctx, req.SalonID, m.Code, subtotal)
		if err != nil {
			return resolved{}, err
		}
		return resolved{mode: m, amount: val.DiscountAmount, desc: val.Description, validation: val}, nil
	case discount.Membership:
		if customer.MembershipID == nil {
			return resolved{}, errutil.ValidationFailed("Customer has no membership", discount.ErrMembershipNotFound)
		}
		tier, err := b.memberships.GetMembership(ctx, *customer.MembershipID)
		if err != nil {
			if errors.Is(err, discount.ErrMembershipNotFound) {
				return resolved{}, errutil.ValidationFailed("Membership tier not found", err)
			}
			return resolved{}, errutil.Internal("failed to load membership", err)
		}
		mode = discount.Membership{TierID: tier.ID, Name: tier.Name, Percentage: tier.DiscountPercentage}
	}

	res, err := discount.Resolve(mode, subtotal)
	if err != nil {
		return resolved{}, errutil.BadRequest(err.Error(), err)
	}
	return resolved{mode: mode, amount: res.Amount, desc: res.Description}, nil
}

// sameItems reports whether two position-ordered item lists bill the same.
func sameItems(a, b []models.VisitItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Kind != y.Kind || x.Name != y.Name ||
			x.Quantity != y.Quantity || !x.UnitPrice.Equal(y.UnitPrice) {
			return false
		}
	}
	return true
}

func commit(tx *gorm.DB, v *models.Visit, inv *models.Invoice, points loyalty.Outcome) error {
	res := tx.Model(&models.Visit{}).
		Where("id = ? AND status = ?", v.ID, models.VisitReadyForBilling).
		Updates(map[string]any{
			"status":               v.Status,
			"subtotal":             v.Subtotal,
			"discount_type":        v.DiscountType,
			"discount_description": v.DiscountDescription,
			"discount_amount":      v.DiscountAmount,
			"total_amount":         v.TotalAmount,
			"paid_amount":          v.PaidAmount,
			"coupon_code":          v.CouponCode,
			"points_used":          v.PointsUsed,
			"points_earned":        v.PointsEarned,
			"invoice_id":           v.InvoiceID,
			"invoice_number":       v.InvoiceNumber,
			"completed_at":         v.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errAlreadyCompleted
	}

	if err := tx.Create(inv).Error; err != nil {
		return err
	}

	res = tx.Model(&models.Customer{}).
		Where("id = ? AND salon_id = ?", inv.CustomerID, inv.SalonID).
		Updates(map[string]any{
			"total_spent":  gorm.Expr("total_spent + ?", inv.PaidAmount),
			"total_visits": gorm.Expr("total_visits + ?", 1),
			"last_visit":   inv.InvoiceDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loyalty.ErrCustomerNotFound
	}

	if !points.HasEntry() {
		return nil
	}
	return loyalty.AppendTx(tx, &models.PointsHistory{
		SalonID:        inv.SalonID,
		CustomerID:     inv.CustomerID,
		Type:           points.Type,
		PointsEarned:   points.PointsEarned,
		PointsDeducted: points.PointsDeducted,
		Description:    points.Description,
		VisitID:        &v.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		AmountSpent:    inv.PaidAmount,
		PaymentMode:    inv.PaymentMode,
		DiscountGiven:  inv.DiscountAmount,
		ItemCount:      len(inv.Items),
	})
}

// existing returns the invoice already attached to a completed visit.
func (b *Builder) existing(ctx context.Context, v *models.Visit) (*Result, error) {
	var inv models.Invoice
	err := b.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("visit_id = ?", v.ID).First(&inv).Error
	if err != nil {
		return nil, errutil.Internal("completed visit has no invoice", err)
	}

	var fresh models.Visit
	if err := b.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&fresh, "id = ?", v.ID).Error; err != nil {
		return nil, errutil.Internal("failed to load visit", err)
	}

	zap.L().Info("checkout replayed for completed visit",
		zap.String("visit_id", v.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))
	return &Result{Invoice: &inv, Visit: &fresh, Replayed: true}, nil
}
