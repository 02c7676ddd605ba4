package controllers

import (
	"net/http"
	"strings"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreateMembershipInput struct {
	Name               string          `json:"name" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

func CreateMembership(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input CreateMembershipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.DiscountPercentage.IsNegative() || input.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		utils.RespondWithError(c, http.StatusBadRequest, "Discount percentage must be between 0 and 100")
		return
	}

	tier := models.Membership{
		SalonID:            salonUUID,
		Name:               strings.TrimSpace(input.Name),
		DiscountPercentage: input.DiscountPercentage,
		IsActive:           true,
	}
	if err := config.DB.Create(&tier).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create membership")
		return
	}

	c.JSON(http.StatusCreated, tier)
}

func GetMemberships(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var tiers []models.Membership
	if err := config.DB.Where("salon_id = ?", salonUUID).Order("discount_percentage").Find(&tiers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve memberships")
		return
	}

	c.JSON(http.StatusOK, tiers)
}
