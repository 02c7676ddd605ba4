package controllers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"salonpro-checkout/models"
	"salonpro-checkout/services/events"
	"salonpro-checkout/services/visit"
	"salonpro-checkout/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckInInput struct {
	CustomerID uuid.UUID         `json:"customerId" binding:"required"`
	Items      []visit.ItemInput `json:"items"`
}

type VisitController struct {
	Visits *visit.Service
	Bus    *events.Bus
}

func (vc *VisitController) CheckIn(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	var input CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	v, err := vc.Visits.CheckIn(c.Request.Context(), salonUUID, utils.UserID(c), input.CustomerID, input.Items)
	vc.respond(c, salonUUID, v, err, http.StatusCreated)
}

// List returns visits, optionally filtered by ?status=.
func (vc *VisitController) List(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	visits, err := vc.Visits.List(c.Request.Context(), salonUUID, models.VisitStatus(c.Query("status")), limit)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, visits)
}

func (vc *VisitController) Get(c *gin.Context) {
	salonUUID, visitUUID, ok := visitParams(c)
	if !ok {
		return
	}

	v, err := vc.Visits.Get(c.Request.Context(), salonUUID, visitUUID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (vc *VisitController) AddItem(c *gin.Context) {
	salonUUID, visitUUID, ok := visitParams(c)
	if !ok {
		return
	}

	var input visit.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	v, err := vc.Visits.AddItem(c.Request.Context(), salonUUID, visitUUID, input)
	vc.respond(c, salonUUID, v, err, http.StatusOK)
}

func (vc *VisitController) RemoveItem(c *gin.Context) {
	salonUUID, visitUUID, ok := visitParams(c)
	if !ok {
		return
	}
	index, ok := itemIndex(c)
	if !ok {
		return
	}

	v, err := vc.Visits.RemoveItem(c.Request.Context(), salonUUID, visitUUID, index)
	vc.respond(c, salonUUID, v, err, http.StatusOK)
}

func (vc *VisitController) CompleteItem(c *gin.Context) {
	salonUUID, visitUUID, ok := visitParams(c)
	if !ok {
		return
	}
	index, ok := itemIndex(c)
	if !ok {
		return
	}

	v, err := vc.Visits.CompleteService(c.Request.Context(), salonUUID, visitUUID, index)
	vc.respond(c, salonUUID, v, err, http.StatusOK)
}

func (vc *VisitController) Start(c *gin.Context) {
	salonUUID, visitUUID, ok := visitParams(c)
	if !ok {
		return
	}

	v, err := vc.Visits.StartService(c.Request.Context(), salonUUID, visitUUID)
	vc.respond(c, salonUUID, v, err, http.StatusOK)
}

func (vc *VisitController) Ready(c *gin.Context) {
	salonUUID, visitUUID, ok := visitParams(c)
	if !ok {
		return
	}

	v, err := vc.Visits.MarkReadyForBilling(c.Request.Context(), salonUUID, visitUUID)
	vc.respond(c, salonUUID, v, err, http.StatusOK)
}

// Stream pushes visit changes for the caller's salon as server-sent events
// so front-desk screens refresh without polling.
func (vc *VisitController) Stream(c *gin.Context) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return
	}

	changes, cancel := vc.Bus.Watch(salonUUID, 16)
	defer cancel()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, open := <-changes:
			if !open {
				return false
			}
			c.SSEvent("visit", e.Visit)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

func (vc *VisitController) respond(c *gin.Context, salonID uuid.UUID, v *models.Visit, err error, status int) {
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	vc.Bus.PublishVisitChanged(events.VisitChanged{SalonID: salonID, Visit: v})
	c.JSON(status, v)
}

func visitParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	salonUUID, ok := utils.SalonID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	visitUUID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return salonUUID, visitUUID, true
}

func itemIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item index")
		return 0, false
	}
	return index, true
}
