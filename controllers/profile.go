package controllers

import (
	"net/http"
	"strings"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	SalonName      *string `json:"salonName"`
	SalonAddress   *string `json:"salonAddress"`
	Phone          *string `json:"phone"`
	CurrencySymbol *string `json:"currencySymbol"`
}

type NotificationSettingsInput struct {
	WhatsAppNotifications bool `json:"whatsAppNotifications"`
	SMSNotifications      bool `json:"smsNotifications"`
}

func GetProfile(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"salonName":             salon.Name,
		"salonAddress":          salon.Address,
		"phone":                 salon.Phone,
		"currencySymbol":        salon.CurrencySymbol,
		"whatsAppNotifications": salon.WhatsAppNotifications,
		"smsNotifications":      salon.SMSNotifications,
	})
}

func UpdateProfile(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	updates := map[string]interface{}{}
	if input.SalonName != nil {
		name := strings.TrimSpace(*input.SalonName)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Salon name cannot be empty")
			return
		}
		updates["name"] = name
	}
	if input.SalonAddress != nil {
		updates["address"] = *input.SalonAddress
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		updates["phone"] = utils.NormalizePhone(*input.Phone)
	}
	if input.CurrencySymbol != nil {
		updates["currency_symbol"] = *input.CurrencySymbol
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	res := config.DB.Model(&models.Salon{}).Where("id = ?", salonUUID).Updates(updates)
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UpdateNotificationSettings toggles the channels receipts are sent on.
func UpdateNotificationSettings(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input NotificationSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	res := config.DB.Model(&models.Salon{}).Where("id = ?", salonUUID).
		Select("WhatsAppNotifications", "SMSNotifications").
		Updates(models.Salon{
			WhatsAppNotifications: input.WhatsAppNotifications,
			SMSNotifications:      input.SMSNotifications,
		})
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated"})
}
