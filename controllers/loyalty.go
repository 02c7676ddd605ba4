package controllers

import (
	"net/http"

	"salonpro-checkout/services/loyalty"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
)

type AdjustPointsInput struct {
	Add    int64  `json:"add" binding:"min=0"`
	Remove int64  `json:"remove" binding:"min=0"`
	Reason string `json:"reason" binding:"required"`
}

type LoyaltyController struct {
	Ledger *loyalty.Ledger
}

func (lc *LoyaltyController) History(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	customerUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	entries, err := lc.Ledger.History(c.Request.Context(), salonUUID, customerUUID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (lc *LoyaltyController) Adjust(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	customerUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input AdjustPointsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	entry, err := lc.Ledger.Adjust(c.Request.Context(), salonUUID, customerUUID, input.Add, input.Remove, input.Reason)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
