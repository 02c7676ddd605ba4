package loyalty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultSchedule = "0 3 * * *"

// Drift is a customer whose balance disagrees with the ledger.
type Drift struct {
	CustomerID uuid.UUID
	SalonID    uuid.UUID
	Balance    int64
	Ledger     int64
}

// Reconciler periodically replays every ledger against its balance.
type Reconciler struct {
	db       *gorm.DB
	schedule string
	cron     *cron.Cron
}

func NewReconciler(db *gorm.DB, schedule string) *Reconciler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Reconciler{db: db, schedule: schedule}
}

func (r *Reconciler) Start() error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			zap.L().Error("loyalty reconciliation failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	zap.L().Info("loyalty reconciler started", zap.String("schedule", r.schedule))
	return nil
}

// Stop waits for a running reconciliation to finish.
func (r *Reconciler) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// Run returns every customer whose replayed ledger differs from the stored
// balance. Drift is logged, never corrected.
func (r *Reconciler) Run(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS customer_id, c.salon_id AS salon_id,
		       c.loyalty_points AS balance, COALESCE(SUM(p.net), 0) AS ledger
		FROM customers c
		LEFT JOIN points_histories p ON p.customer_id = c.id
		GROUP BY c.id, c.salon_id, c.loyalty_points
		HAVING c.loyalty_points <> COALESCE(SUM(p.net), 0)
	`).Scan(&drifts).Error
	if err != nil {
		return nil, err
	}

	for _, d := range drifts {
		zap.L().Warn("loyalty balance drift",
			zap.String("customer_id", d.CustomerID.String()),
			zap.String("salon_id", d.SalonID.String()),
			zap.Int64("balance", d.Balance),
			zap.Int64("ledger", d.Ledger))
	}
	zap.L().Info("loyalty reconciliation finished", zap.Int("drifted", len(drifts)))
	return drifts, nil
}
