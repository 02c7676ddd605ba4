package coupon

import (
	"context"
	"errors"
	"time"

	"salonpro-checkout/errutil"
	"salonpro-checkout/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the gorm-backed coupon repository.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByCode(ctx context.Context, salonID uuid.UUID, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := s.db.WithContext(ctx).
		Where("salon_id = ? AND code = ?", salonID, NormalizeCode(code)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// IncrementUsage bumps the usage count in a single conditional UPDATE so
// concurrent redemptions neither lose increments nor overshoot the cap.
func (s *Store) IncrementUsage(ctx context.Context, salonID uuid.UUID, code string) error {
	res := s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("salon_id = ? AND code = ?", salonID, NormalizeCode(code)).
		Where("max_usage_count IS NULL OR current_usage_count < max_usage_count").
		Update("current_usage_count", gorm.Expr("current_usage_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.FindByCode(ctx, salonID, code); err != nil {
			return err
		}
		return ErrUsageLimitReached
	}
	return nil
}

type CreateInput struct {
	Code              string                    `json:"code" binding:"required"`
	Description       string                    `json:"description"`
	DiscountType      models.CouponDiscountType `json:"discountType" binding:"required,oneof=flat percentage"`
	DiscountValue     decimal.Decimal           `json:"discountValue"`
	MinOrderAmount    decimal.Decimal           `json:"minOrderAmount"`
	MaxDiscountAmount decimal.NullDecimal       `json:"maxDiscountAmount"`
	ValidFrom         *time.Time                `json:"validFrom"`
	ValidUntil        *time.Time                `json:"validUntil"`
	MaxUsageCount     *int                      `json:"maxUsageCount"`
}

func (s *Store) Create(ctx context.Context, salonID uuid.UUID, in CreateInput) (*models.Coupon, error) {
	code := NormalizeCode(in.Code)
	switch {
	case code == "":
		return nil, errutil.BadRequest("Coupon code is required", nil)
	case !in.DiscountValue.IsPositive():
		return nil, errutil.BadRequest("Discount value must be greater than zero", nil)
	case in.MinOrderAmount.IsNegative():
		return nil, errutil.BadRequest("Minimum order amount must not be negative", nil)
	case in.MaxDiscountAmount.Valid && !in.MaxDiscountAmount.Decimal.IsPositive():
		return nil, errutil.BadRequest("Maximum discount must be greater than zero", nil)
	case in.MaxUsageCount != nil && *in.MaxUsageCount < 1:
		return nil, errutil.BadRequest("Maximum usage count must be at least 1", nil)
	}

	if _, err := s.FindByCode(ctx, salonID, code); err == nil {
		return nil, errutil.Conflict("Coupon code already exists", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errutil.Internal("failed to check coupon code", err)
	}

	validFrom := time.Now()
	if in.ValidFrom != nil {
		validFrom = *in.ValidFrom
	}
	if in.ValidUntil != nil && in.ValidUntil.Before(validFrom) {
		return nil, errutil.BadRequest("Coupon validity ends before it starts", nil)
	}

	c := &models.Coupon{
		SalonID:           salonID,
		Code:              code,
		Description:       in.Description,
		DiscountType:      in.DiscountType,
		DiscountValue:     in.DiscountValue,
		MinOrderAmount:    in.MinOrderAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		ValidFrom:         validFrom,
		ValidUntil:        in.ValidUntil,
		MaxUsageCount:     in.MaxUsageCount,
		IsActive:          true,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, errutil.Internal("failed to create coupon", err)
	}
	return c, nil
}

func (s *Store) List(ctx context.Context, salonID uuid.UUID) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.WithContext(ctx).Where("salon_id = ?", salonID).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (s *Store) Deactivate(ctx context.Context, salonID uuid.UUID, code string) error {
	res := s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("salon_id = ? AND code = ?", salonID, NormalizeCode(code)).
		Update("is_active", false)
	if res.Error != nil {
		return errutil.Internal("failed to deactivate coupon", res.Error)
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("Coupon not found", ErrNotFound)
	}
	return nil
}
