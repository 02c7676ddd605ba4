package controllers

import (
	"net/http"
	"strings"

	"salonpro-checkout/services/discount"
	"salonpro-checkout/services/events"
	"salonpro-checkout/services/invoice"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CheckoutInput struct {
	Discount    discount.Request `json:"discount"`
	AmountPaid  decimal.Decimal  `json:"amountPaid"`
	PaymentMode string           `json:"paymentMode" binding:"required"`
	Notes       string           `json:"notes"`
}

type CheckoutController struct {
	Builder *invoice.Builder
	Bus     *events.Bus
}

// Checkout commits a billing-ready visit. Repeating it for a completed visit
// returns the original invoice with 200 instead of 201.
func (cc *CheckoutController) Checkout(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	visitUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	mode, err := input.Discount.Mode()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := cc.Builder.Checkout(c.Request.Context(), invoice.CheckoutRequest{
		SalonID:     salonUUID,
		UserID:      utils.UserID(c),
		VisitID:     visitUUID,
		Discount:    mode,
		AmountPaid:  input.AmountPaid,
		PaymentMode: strings.ToLower(strings.TrimSpace(input.PaymentMode)),
		Notes:       input.Notes,
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	if res.Replayed {
		c.JSON(http.StatusOK, gin.H{"invoice": res.Invoice, "visit": res.Visit, "replayed": true})
		return
	}

	cc.Bus.PublishInvoiceCommitted(events.InvoiceCommitted{SalonID: salonUUID, Invoice: res.Invoice, Visit: res.Visit})
	cc.Bus.PublishVisitChanged(events.VisitChanged{SalonID: salonUUID, Visit: res.Visit})
	c.JSON(http.StatusCreated, gin.H{"invoice": res.Invoice, "visit": res.Visit, "replayed": false})
}
