package controllers

import (
	"errors"
	"net/http"

	"salonpro-checkout/errutil"
	"salonpro-checkout/services/coupon"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ValidateCouponInput struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CouponController struct {
	Store     *coupon.Store
	Validator *coupon.Validator
}

func (cc *CouponController) Create(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input coupon.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	created, err := cc.Store.Create(c.Request.Context(), salonUUID, input)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (cc *CouponController) List(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	coupons, err := cc.Store.List(c.Request.Context(), salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve coupons")
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (cc *CouponController) Get(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	found, err := cc.Store.FindByCode(c.Request.Context(), salonUUID, c.Param("code"))
	if err != nil {
		utils.RespondWithAppError(c, lookupError(err))
		return
	}
	c.JSON(http.StatusOK, found)
}

// Validate previews a coupon against a subtotal without redeeming it.
func (cc *CouponController) Validate(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input ValidateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	res, err := cc.Validator.Validate(c.Request.Context(), salonUUID, input.Code, input.Subtotal)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":                   res.Coupon.Code,
		"discountAmount":         res.DiscountAmount.StringFixed(2),
		"originalDiscountAmount": res.OriginalDiscountAmount.StringFixed(2),
		"isCapped":               res.IsCapped,
		"description":            res.Description,
		"total":                  input.Subtotal.Sub(res.DiscountAmount).StringFixed(2),
	})
}

func (cc *CouponController) Deactivate(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	if err := cc.Store.Deactivate(c.Request.Context(), salonUUID, c.Param("code")); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
}

func lookupError(err error) error {
	if errors.Is(err, coupon.ErrNotFound) {
		return errutil.NotFound("Coupon not found", err)
	}
	return errutil.Internal("failed to load coupon", err)
}
