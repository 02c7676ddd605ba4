package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetInvoices lists committed invoices, newest first. Optional filters:
// customerId, status, from and to (YYYY-MM-DD), limit.
func GetInvoices(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("salon_id = ?", salonUUID)

	if v := c.Query("customerId"); v != "" {
		customerID, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customerId format")
			return
		}
		query = query.Where("customer_id = ?", customerID)
	}
	if v := c.Query("status"); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := c.Query("from"); v != "" {
		from, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date")
			return
		}
		query = query.Where("invoice_date >= ?", from)
	}
	if v := c.Query("to"); v != "" {
		to, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date")
			return
		}
		query = query.Where("invoice_date < ?", to.AddDate(0, 0, 1))
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var invoices []models.Invoice
	if err := query.Order("invoice_date DESC").Limit(limit).Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func GetInvoice(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	invoiceUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := config.DB.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("salon_id = ? AND id = ?", salonUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}
