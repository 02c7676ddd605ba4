package controllers

import (
	"net/http"
	"time"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportController summarizes committed invoices.
type ReportController struct{}

type AnalyticsSummary struct {
	CurrentMonthRevenue   decimal.Decimal   `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue decimal.Decimal   `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    decimal.Decimal   `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	TopServices           []ServiceSummary  `json:"topServices"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	Discounts             []DiscountSummary `json:"discounts"`
	Loyalty               LoyaltySummary    `json:"loyalty"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type CustomerSummary struct {
	Name   string          `json:"name"`
	Visits int             `json:"visits"`
	Spent  decimal.Decimal `json:"spent"`
}

// DiscountSummary groups the month's invoices by discount mode.
type DiscountSummary struct {
	DiscountType string          `json:"discountType"`
	Count        int             `json:"count"`
	Amount       decimal.Decimal `json:"amount"`
}

type LoyaltySummary struct {
	PointsEarned   int64 `json:"pointsEarned"`
	PointsRedeemed int64 `json:"pointsRedeemed"`
}

type QuickStatistics struct {
	TotalCustomers int             `json:"totalCustomers"`
	TotalInvoices  int             `json:"totalInvoices"`
	AvgOrderValue  decimal.Decimal `json:"avgOrderValue"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	loc := now.Location()

	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, loc)
	firstOfQuarter := rc.getQuarterStart(now)
	firstOfYear := time.Date(currentYear, 1, 1, 0, 0, 0, 0, loc)

	periods := []struct {
		start time.Time
		span  func(time.Time) time.Time
	}{
		{firstOfMonth, func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
		{firstOfQuarter, func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }},
		{firstOfYear, func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
	}
	var current [3]decimal.Decimal
	var growth [3]float64
	for i, p := range periods {
		cur, err := rc.getRevenue(salonUUID, p.start, p.span(p.start))
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get revenue")
			return
		}
		prevStart := previousStart(p.start, i)
		prev, err := rc.getRevenue(salonUUID, prevStart, p.start)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get revenue")
			return
		}
		current[i] = cur
		growth[i] = rc.calculateGrowthPercentage(cur, prev)
	}

	endOfMonth := firstOfMonth.AddDate(0, 1, 0)
	topServices, err := rc.getTopServices(salonUUID, firstOfMonth, endOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top services")
		return
	}
	topCustomers, err := rc.getTopCustomers(salonUUID, firstOfMonth, endOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top customers")
		return
	}
	discounts, err := rc.getDiscounts(salonUUID, firstOfMonth, endOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get discounts")
		return
	}
	loyalty, err := rc.getLoyalty(salonUUID, firstOfMonth, endOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get loyalty summary")
		return
	}
	quickStats, err := rc.getQuickStatistics(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	c.JSON(http.StatusOK, AnalyticsSummary{
		CurrentMonthRevenue:   current[0],
		MonthGrowth:           growth[0],
		CurrentQuarterRevenue: current[1],
		QuarterGrowth:         growth[1],
		CurrentYearRevenue:    current[2],
		YearGrowth:            growth[2],
		TopServices:           topServices,
		TopCustomers:          topCustomers,
		Discounts:             discounts,
		Loyalty:               loyalty,
		QuickStats:            quickStats,
	})
}

func previousStart(start time.Time, period int) time.Time {
	switch period {
	case 0:
		return start.AddDate(0, -1, 0)
	case 1:
		return start.AddDate(0, -3, 0)
	default:
		return start.AddDate(-1, 0, 0)
	}
}

// getRevenue sums invoice totals in [start, end).
func (rc *ReportController) getRevenue(salonID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := config.DB.Model(&models.Invoice{}).
		Where("salon_id = ? AND invoice_date >= ? AND invoice_date < ?", salonID, start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) calculateGrowthPercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func (rc *ReportController) getTopServices(salonID uuid.UUID, start, end time.Time, limit int) ([]ServiceSummary, error) {
	var services []ServiceSummary
	err := config.DB.Table("invoice_items").
		Select("invoice_items.name, SUM(invoice_items.quantity) AS count, SUM(invoice_items.total_price) AS revenue").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.salon_id = ? AND invoices.invoice_date >= ? AND invoices.invoice_date < ? AND invoice_items.kind = ?",
			salonID, start, end, models.KindService).
		Group("invoice_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error
	return services, err
}

func (rc *ReportController) getTopCustomers(salonID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	var customers []CustomerSummary
	err := config.DB.Table("invoices").
		Select("customers.name, COUNT(invoices.id) AS visits, SUM(invoices.total_amount) AS spent").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.salon_id = ? AND invoices.invoice_date >= ? AND invoices.invoice_date < ?", salonID, start, end).
		Group("customers.id, customers.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&customers).Error
	return customers, err
}

func (rc *ReportController) getDiscounts(salonID uuid.UUID, start, end time.Time) ([]DiscountSummary, error) {
	var discounts []DiscountSummary
	err := config.DB.Model(&models.Invoice{}).
		Select("discount_type, COUNT(*) AS count, COALESCE(SUM(discount_amount), 0) AS amount").
		Where("salon_id = ? AND invoice_date >= ? AND invoice_date < ?", salonID, start, end).
		Group("discount_type").
		Order("amount DESC").
		Scan(&discounts).Error
	return discounts, err
}

func (rc *ReportController) getLoyalty(salonID uuid.UUID, start, end time.Time) (LoyaltySummary, error) {
	var summary LoyaltySummary
	err := config.DB.Model(&models.PointsHistory{}).
		Select("COALESCE(SUM(points_earned), 0) AS points_earned, COALESCE(SUM(points_deducted), 0) AS points_redeemed").
		Where("salon_id = ? AND created_at >= ? AND created_at < ?", salonID, start, end).
		Scan(&summary).Error
	return summary, err
}

func (rc *ReportController) getQuickStatistics(salonID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	var totalCustomers int64
	if err := config.DB.Model(&models.Customer{}).
		Where("salon_id = ? AND is_active = ?", salonID, true).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	var totals struct {
		Invoices    int64
		Revenue     decimal.Decimal
		Outstanding decimal.Decimal
	}
	if err := config.DB.Model(&models.Invoice{}).
		Select("COUNT(*) AS invoices, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(CASE WHEN balance_due > 0 THEN balance_due ELSE 0 END), 0) AS outstanding").
		Where("salon_id = ?", salonID).
		Scan(&totals).Error; err != nil {
		return stats, err
	}
	stats.TotalInvoices = int(totals.Invoices)
	stats.Outstanding = totals.Outstanding
	if totals.Invoices > 0 {
		stats.AvgOrderValue = totals.Revenue.Div(decimal.NewFromInt(totals.Invoices)).Round(2)
	}

	return stats, nil
}
