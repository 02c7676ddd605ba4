package discount

import (
	"context"
	"errors"

	"salonpro-checkout/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMembershipNotFound = errors.New("membership tier not found")

type MembershipLookup interface {
	GetMembership(ctx context.Context, tierID uuid.UUID) (*models.Membership, error)
}

type GormMembershipLookup struct {
	db *gorm.DB
}

func NewGormMembershipLookup(db *gorm.DB) *GormMembershipLookup {
	return &GormMembershipLookup{db: db}
}

func (l *GormMembershipLookup) GetMembership(ctx context.Context, tierID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	if err := l.db.WithContext(ctx).Where("id = ? AND is_active = ?", tierID, true).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}
