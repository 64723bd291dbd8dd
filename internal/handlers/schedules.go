package handlers

import (
	"errors"
	"net/http"

	"heating_control/internal/models"
	"heating_control/internal/repository"

	"github.com/gin-gonic/gin"
)

// @Summary      List schedules
// @Tags         schedules
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/schedules [get]
// @Security     BearerAuth
func (h *Handler) listSchedules(c *gin.Context) {
	schedules, err := h.services.Schedules.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load schedules", "schedules_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(schedules), "schedules": schedules})
}

// @Summary      Create schedule
// @Description  Week must cover all seven days with known day type references.
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        body  body   models.Schedule  true  "Schedule"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/schedules [post]
// @Security     BearerAuth
func (h *Handler) createSchedule(c *gin.Context) {
	var sched models.Schedule
	if err := c.ShouldBindJSON(&sched); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Schedules.Create(c.Request.Context(), sched); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sched.ID})
}

// @Summary      Get schedule
// @Tags         schedules
// @Produce      json
// @Param        id   path    string  true  "Schedule id"
// @Success      200  {object}  models.Schedule
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/schedules/{id} [get]
// @Security     BearerAuth
func (h *Handler) getSchedule(c *gin.Context) {
	sched, err := h.services.Schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// @Summary      Update schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        id    path   string           true  "Schedule id"
// @Param        body  body   models.Schedule  true  "Schedule"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/schedules/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateSchedule(c *gin.Context) {
	var sched models.Schedule
	if err := c.ShouldBindJSON(&sched); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	sched.ID = c.Param("id")
	if err := h.services.Schedules.Update(c.Request.Context(), sched); err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// @Summary      Delete schedule
// @Tags         schedules
// @Produce      json
// @Param        id   path    string  true  "Schedule id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/schedules/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteSchedule(c *gin.Context) {
	if err := h.services.Schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      List day types
// @Tags         schedules
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/schedules/daytypes [get]
// @Security     BearerAuth
func (h *Handler) listDayTypes(c *gin.Context) {
	dayTypes, err := h.services.Schedules.DayTypes(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load day types", "daytypes_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(dayTypes), "day_types": dayTypes})
}

func (h *Handler) scheduleError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}
	// Remaining failures are validation-shaped (dangling day types, missing
	// days); storage errors surface through the same path as bad requests.
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
