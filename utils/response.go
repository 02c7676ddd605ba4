package utils

import (
	"errors"
	"net/http"

	"salonpro-checkout/errutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithAppError maps an error returned by the service layer to a
// response. Errors without an errutil code are logged and hidden.
func RespondWithAppError(c *gin.Context, err error) {
	var be errutil.BaseError
	if errors.As(err, &be) {
		if be.Code == errutil.StatusInternal {
			zap.L().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		RespondWithError(c, be.Code.HTTPStatus(), be.Message)
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondWithError(c, http.StatusNotFound, "Record not found")
		return
	}
	zap.L().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	RespondWithError(c, http.StatusInternalServerError, "Internal server error")
}

// SalonID reads the salon claim set by AuthMiddleware.
func SalonID(c *gin.Context) (uuid.UUID, bool) {
	salonID, exists := c.Get("salonId")
	if !exists {
		RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return uuid.Nil, false
	}
	s, _ := salonID.(string)
	salonUUID, err := uuid.Parse(s)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "Invalid salon ID format")
		return uuid.Nil, false
	}
	return salonUUID, true
}

// UserID reads the subject claim set by AuthMiddleware. It is optional.
func UserID(c *gin.Context) uuid.UUID {
	userID, _ := c.Get("userId")
	s, _ := userID.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// ParamUUID parses a path parameter, responding 400 when it is malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
