package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCustomerInput struct {
	Name         string     `json:"name" binding:"required"`
	Phone        string     `json:"phone" binding:"required"`
	Email        *string    `json:"email"`
	Birthday     *time.Time `json:"birthday"`
	Anniversary  *time.Time `json:"anniversary"`
	Notes        string     `json:"notes"`
	MembershipID *uuid.UUID `json:"membershipId"`
}

type UpdateCustomerInput struct {
	Name            *string    `json:"name"`
	Phone           *string    `json:"phone"`
	Email           *string    `json:"email"`
	Birthday        *time.Time `json:"birthday"`
	Anniversary     *time.Time `json:"anniversary"`
	Notes           *string    `json:"notes"`
	IsActive        *bool      `json:"isActive"`
	MembershipID    *uuid.UUID `json:"membershipId"`
	ClearMembership bool       `json:"clearMembership"`
}

func CreateCustomer(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	phone := utils.NormalizePhone(input.Phone)

	var existingCustomer models.Customer
	if err := config.DB.Where("salon_id = ? AND phone = ?", salonUUID, phone).
		First(&existingCustomer).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if input.MembershipID != nil && !membershipExists(salonUUID, *input.MembershipID) {
		utils.RespondWithError(c, http.StatusBadRequest, "Membership tier not found")
		return
	}

	customer := models.Customer{
		SalonID:         salonUUID,
		CreatedByUserID: utils.UserID(c),
		Name:            strings.TrimSpace(input.Name),
		Phone:           phone,
		Birthday:        input.Birthday,
		Anniversary:     input.Anniversary,
		Notes:           input.Notes,
		MembershipID:    input.MembershipID,
		IsActive:        true,
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists the salon's customers. ?q= matches name or phone.
func GetCustomers(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	query := config.DB.Where("salon_id = ?", salonUUID)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}

	var customers []models.Customer
	if err := query.Preload("Membership").Order("name").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

func GetCustomer(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	customerUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.Preload("Membership").Where("salon_id = ? AND id = ?", salonUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer changes profile fields only. Loyalty points and visit
// aggregates move through checkout and the points ledger.
func UpdateCustomer(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	customerUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		phone := utils.NormalizePhone(*input.Phone)
		if customer.Phone != phone {
			var existingCustomer models.Customer
			if err := config.DB.Where("salon_id = ? AND phone = ?", salonUUID, phone).
				First(&existingCustomer).Error; err == nil {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
		}
		updates["phone"] = phone
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Birthday != nil {
		updates["birthday"] = input.Birthday
	}
	if input.Anniversary != nil {
		updates["anniversary"] = input.Anniversary
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ClearMembership {
		updates["membership_id"] = nil
	} else if input.MembershipID != nil {
		if !membershipExists(salonUUID, *input.MembershipID) {
			utils.RespondWithError(c, http.StatusBadRequest, "Membership tier not found")
			return
		}
		updates["membership_id"] = *input.MembershipID
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&models.Customer{}).Where("id = ?", customer.ID).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
			return
		}
	}

	if err := config.DB.Preload("Membership").First(&customer, "id = ?", customer.ID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer deactivates a customer; the points ledger and invoices
// keep referring to it.
func DeleteCustomer(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	customerUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Customer{}).
		Where("salon_id = ? AND id = ?", salonUUID, customerUUID).
		Update("is_active", false)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

func membershipExists(salonID, id uuid.UUID) bool {
	var count int64
	config.DB.Model(&models.Membership{}).Where("salon_id = ? AND id = ? AND is_active = ?", salonID, id, true).Count(&count)
	return count > 0
}
