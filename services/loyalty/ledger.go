package loyalty

import (
	"context"
	"errors"
	"strings"

	"salonpro-checkout/errutil"
	"salonpro-checkout/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrCustomerNotFound = errors.New("customer not found")

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Append records entry and moves the customer's balance by its net in one
// transaction.
func (l *Ledger) Append(ctx context.Context, entry *models.PointsHistory) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return AppendTx(tx, entry)
	})
}

// AppendTx is Append inside the caller's transaction. The balance is
// changed with an atomic increment and BalanceAfter is read back from the
// locked row.
func AppendTx(tx *gorm.DB, entry *models.PointsHistory) error {
	entry.Net = entry.PointsEarned - entry.PointsDeducted

	res := tx.Model(&models.Customer{}).
		Where("id = ? AND salon_id = ?", entry.CustomerID, entry.SalonID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", entry.Net))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCustomerNotFound
	}

	var balance int64
	if err := tx.Model(&models.Customer{}).
		Where("id = ?", entry.CustomerID).
		Pluck("loyalty_points", &balance).Error; err != nil {
		return err
	}
	entry.BalanceAfter = balance

	return tx.Create(entry).Error
}

// Adjust is a manual correction by staff.
func (l *Ledger) Adjust(ctx context.Context, salonID, customerID uuid.UUID, earned, deducted int64, reason string) (*models.PointsHistory, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case earned < 0 || deducted < 0:
		return nil, errutil.BadRequest("Points must not be negative", nil)
	case earned == 0 && deducted == 0:
		return nil, errutil.BadRequest("Adjustment must add or remove points", nil)
	case reason == "":
		return nil, errutil.BadRequest("Reason is required", nil)
	}

	entry := &models.PointsHistory{
		SalonID:        salonID,
		CustomerID:     customerID,
		Type:           models.PointsAdjusted,
		PointsEarned:   earned,
		PointsDeducted: deducted,
		Description:    reason,
	}
	if err := l.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, errutil.NotFound("Customer not found", err)
		}
		return nil, errutil.Internal("failed to adjust points", err)
	}

	zap.L().Info("loyalty points adjusted",
		zap.String("customer_id", customerID.String()),
		zap.Int64("net", entry.Net),
		zap.Int64("balance", entry.BalanceAfter))
	return entry, nil
}

// History lists a customer's ledger, newest first.
func (l *Ledger) History(ctx context.Context, salonID, customerID uuid.UUID) ([]models.PointsHistory, error) {
	var entries []models.PointsHistory
	err := l.db.WithContext(ctx).
		Where("salon_id = ? AND customer_id = ?", salonID, customerID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, errutil.Internal("failed to load points history", err)
	}
	return entries, nil
}

// Replay sums the ledger from zero. It equals the customer's balance when
// the ledger is consistent.
func (l *Ledger) Replay(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var sum int64
	err := l.db.WithContext(ctx).Model(&models.PointsHistory{}).
		Select("COALESCE(SUM(net), 0)").
		Where("customer_id = ?", customerID).
		Scan(&sum).Error
	return sum, err
}
