package visit

import (
	"context"
	"errors"
	"time"

	"salonpro-checkout/errutil"
	"salonpro-checkout/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemInput describes a line to add. When CatalogID is set, missing name,
// price and kind are taken from the catalog entry.
type ItemInput struct {
	Kind      models.ItemKind  `json:"kind"`
	CatalogID *uuid.UUID       `json:"catalogId"`
	Name      string           `json:"name"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Quantity  int              `json:"quantity"`
	StaffID   *uuid.UUID       `json:"staffId"`
	StaffName string           `json:"staffName"`
}

// Service persists visits and applies the state machine to them.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// CheckIn opens a visit for a customer with its initial lines.
func (s *Service) CheckIn(ctx context.Context, salonID, userID, customerID uuid.UUID, items []ItemInput) (*models.Visit, error) {
	var v *models.Visit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("id = ? AND salon_id = ?", customerID, salonID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("Customer not found", err)
			}
			return err
		}
		if !customer.IsActive {
			return errutil.ValidationFailed("Customer is inactive", nil)
		}

		v = &models.Visit{
			Base:            models.Base{ID: uuid.New()},
			SalonID:         salonID,
			CustomerID:      customer.ID,
			CreatedByUserID: userID,
			CustomerName:    customer.Name,
			CustomerPhone:   customer.Phone,
			CustomerEmail:   customer.Email,
			Status:          models.VisitCheckedIn,
			CheckedInAt:     s.now(),
		}
		for _, in := range items {
			item, err := resolveItem(tx, salonID, in)
			if err != nil {
				return err
			}
			if err := appendItem(v, item); err != nil {
				return mapError(err)
			}
		}
		return tx.Create(v).Error
	})
	if err != nil {
		return nil, asAppError("failed to check in customer", err)
	}

	zap.L().Info("customer checked in",
		zap.String("visit_id", v.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Int("items", len(v.Items)))
	return v, nil
}

func (s *Service) Get(ctx context.Context, salonID, visitID uuid.UUID) (*models.Visit, error) {
	v, err := load(s.db.WithContext(ctx), salonID, visitID, false)
	if err != nil {
		return nil, asAppError("failed to load visit", err)
	}
	return v, nil
}

// List returns the salon's visits, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, salonID uuid.UUID, status models.VisitStatus, limit int) ([]models.Visit, error) {
	q := s.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("salon_id = ?", salonID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var visits []models.Visit
	if err := q.Order("checked_in_at DESC").Limit(limit).Find(&visits).Error; err != nil {
		return nil, errutil.Internal("failed to list visits", err)
	}
	return visits, nil
}

func (s *Service) AddItem(ctx context.Context, salonID, visitID uuid.UUID, in ItemInput) (*models.Visit, error) {
	return s.mutate(ctx, salonID, visitID, func(tx *gorm.DB, v *models.Visit) error {
		item, err := resolveItem(tx, salonID, in)
		if err != nil {
			return err
		}
		if err := AddItem(v, item); err != nil {
			return err
		}
		return tx.Create(&v.Items[len(v.Items)-1]).Error
	})
}

func (s *Service) RemoveItem(ctx context.Context, salonID, visitID uuid.UUID, index int) (*models.Visit, error) {
	return s.mutate(ctx, salonID, visitID, func(tx *gorm.DB, v *models.Visit) error {
		removed, err := RemoveItem(v, index)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.VisitItem{}, "id = ?", removed.ID).Error; err != nil {
			return err
		}
		for _, item := range v.Items[index:] {
			if err := tx.Model(&models.VisitItem{}).Where("id = ?", item.ID).Update("position", item.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) CompleteService(ctx context.Context, salonID, visitID uuid.UUID, index int) (*models.Visit, error) {
	return s.mutate(ctx, salonID, visitID, func(tx *gorm.DB, v *models.Visit) error {
		if err := CompleteService(v, index); err != nil {
			return err
		}
		return tx.Model(&models.VisitItem{}).
			Where("id = ?", v.Items[index].ID).
			Update("status", models.ItemCompleted).Error
	})
}

func (s *Service) StartService(ctx context.Context, salonID, visitID uuid.UUID) (*models.Visit, error) {
	return s.mutate(ctx, salonID, visitID, func(_ *gorm.DB, v *models.Visit) error {
		return StartService(v)
	})
}

func (s *Service) MarkReadyForBilling(ctx context.Context, salonID, visitID uuid.UUID) (*models.Visit, error) {
	return s.mutate(ctx, salonID, visitID, func(_ *gorm.DB, v *models.Visit) error {
		return MarkReadyForBilling(v)
	})
}

// mutate loads the visit under a row lock, applies fn and writes back the
// status and subtotal.
func (s *Service) mutate(ctx context.Context, salonID, visitID uuid.UUID, fn func(tx *gorm.DB, v *models.Visit) error) (*models.Visit, error) {
	var v *models.Visit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if v, err = load(tx, salonID, visitID, true); err != nil {
			return err
		}
		if err := fn(tx, v); err != nil {
			return mapError(err)
		}
		return tx.Model(&models.Visit{}).
			Where("id = ? AND status <> ?", v.ID, models.VisitCompleted).
			Updates(map[string]any{"status": v.Status, "subtotal": v.Subtotal}).Error
	})
	if err != nil {
		return nil, asAppError("failed to update visit", err)
	}
	return v, nil
}

// Load reads a visit with its items inside tx and locks the visit row until
// tx ends. Checkout uses it to confirm the lines it priced are still current.
func Load(tx *gorm.DB, salonID, visitID uuid.UUID) (*models.Visit, error) {
	return load(tx, salonID, visitID, true)
}

func load(db *gorm.DB, salonID, visitID uuid.UUID, lock bool) (*models.Visit, error) {
	q := db.Preload("Items", orderItems)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var v models.Visit
	if err := q.Where("id = ? AND salon_id = ?", visitID, salonID).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("Visit not found", err)
		}
		return nil, err
	}
	return &v, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func resolveItem(tx *gorm.DB, salonID uuid.UUID, in ItemInput) (models.VisitItem, error) {
	item := models.VisitItem{
		Kind:      in.Kind,
		CatalogID: in.CatalogID,
		Name:      in.Name,
		Quantity:  in.Quantity,
		StaffID:   in.StaffID,
		StaffName: in.StaffName,
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if in.CatalogID != nil {
		var entry models.Service
		err := tx.Where("id = ? AND salon_id = ? AND is_active = ?", *in.CatalogID, salonID, true).First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return item, errutil.NotFound("Catalog item not found", err)
			}
			return item, err
		}
		if item.Name == "" {
			item.Name = entry.Name
		}
		if in.UnitPrice == nil {
			item.UnitPrice = entry.Price
		}
		if item.Kind == "" {
			item.Kind = entry.Kind
		}
	}
	if item.Kind == "" {
		item.Kind = models.KindService
	}
	return item, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrVisitCompleted):
		return errutil.Conflict("Visit is already completed", err)
	case errors.Is(err, ErrInvalidTransition):
		return errutil.Conflict(err.Error(), err)
	case errors.Is(err, ErrItemIndex):
		return errutil.BadRequest("Item index out of range", err)
	case errors.Is(err, ErrNotService):
		return errutil.BadRequest("Only services can be marked completed", err)
	case errors.Is(err, ErrInvalidItem):
		return errutil.BadRequest(err.Error(), err)
	}
	return err
}

func asAppError(msg string, err error) error {
	var be errutil.BaseError
	if errors.As(err, &be) {
		return err
	}
	return errutil.Internal(msg, err)
}
