package controllers

import (
	"fmt"
	"net/http"
	"time"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RecentCheckout struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Customer      string          `json:"customer"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	When          string          `json:"when"` // e.g. "Today", "Yesterday"
}

// GetDashboardOverview is the front desk's view of the day: open visits by
// status, takings, outstanding balances and loyalty movement.
func GetDashboardOverview(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Open visits by status
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := config.DB.Model(&models.Visit{}).
		Select("status, COUNT(*) AS count").
		Where("salon_id = ? AND status <> ?", salonUUID, models.VisitCompleted).
		Group("status").
		Scan(&counts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load visits")
		return
	}
	openVisits := map[string]int64{
		string(models.VisitCheckedIn):       0,
		string(models.VisitInService):       0,
		string(models.VisitReadyForBilling): 0,
	}
	for _, sc := range counts {
		openVisits[sc.Status] = sc.Count
	}

	// Today's takings
	var today struct {
		Invoices  int64
		Collected decimal.Decimal
		Discounts decimal.Decimal
	}
	if err := config.DB.Model(&models.Invoice{}).
		Select("COUNT(*) AS invoices, COALESCE(SUM(paid_amount), 0) AS collected, COALESCE(SUM(discount_amount), 0) AS discounts").
		Where("salon_id = ? AND invoice_date >= ?", salonUUID, startOfDay).
		Scan(&today).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load invoices")
		return
	}

	// Outstanding balances
	var outstanding decimal.Decimal
	config.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(balance_due), 0)").
		Where("salon_id = ? AND status = ?", salonUUID, models.InvoicePartial).
		Scan(&outstanding)

	// Loyalty movement today
	var points struct {
		Earned   int64
		Redeemed int64
	}
	config.DB.Model(&models.PointsHistory{}).
		Select("COALESCE(SUM(points_earned), 0) AS earned, COALESCE(SUM(points_deducted), 0) AS redeemed").
		Where("salon_id = ? AND created_at >= ?", salonUUID, startOfDay).
		Scan(&points)

	recent, err := recentCheckouts(salonUUID, now, 5)
	if err != nil {
		zap.L().Warn("failed to load recent checkouts", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"openVisits":          openVisits,
		"todayInvoices":       today.Invoices,
		"todayCollected":      today.Collected.StringFixed(2),
		"todayDiscounts":      today.Discounts.StringFixed(2),
		"outstandingBalance":  outstanding.StringFixed(2),
		"pointsEarnedToday":   points.Earned,
		"pointsRedeemedToday": points.Redeemed,
		"recentCheckouts":     recent,
	})
}

func recentCheckouts(salonID uuid.UUID, now time.Time, limit int) ([]RecentCheckout, error) {
	type row struct {
		InvoiceNumber string
		Name          string
		TotalAmount   decimal.Decimal
		Status        string
		InvoiceDate   time.Time
	}
	var rows []row
	err := config.DB.Table("invoices").
		Select("invoices.invoice_number, customers.name, invoices.total_amount, invoices.status, invoices.invoice_date").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.salon_id = ?", salonID).
		Order("invoices.invoice_date DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	recent := make([]RecentCheckout, 0, len(rows))
	for _, r := range rows {
		recent = append(recent, RecentCheckout{
			InvoiceNumber: r.InvoiceNumber,
			Customer:      r.Name,
			Total:         r.TotalAmount,
			Status:        r.Status,
			When:          relativeDay(now, r.InvoiceDate),
		})
	}
	return recent, nil
}

func relativeDay(now, t time.Time) string {
	daysAgo := int(now.Sub(t).Hours() / 24)
	switch daysAgo {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", daysAgo)
	}
}
