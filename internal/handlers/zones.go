package handlers

import (
	"errors"
	"net/http"

	"heating_control/internal/models"
	"heating_control/internal/repository"

	"github.com/gin-gonic/gin"
)

// @Summary      List zones
// @Tags         zones
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/zones [get]
// @Security     BearerAuth
func (h *Handler) listZones(c *gin.Context) {
	zones, err := h.services.Zones.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load zones", "zones_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(zones), "zones": zones})
}

// @Summary      Create zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Param        body  body   models.Zone  true  "Zone"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/zones [post]
// @Security     BearerAuth
func (h *Handler) createZone(c *gin.Context) {
	var zone models.Zone
	if err := c.ShouldBindJSON(&zone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Zones.Create(c.Request.Context(), zone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": zone.ID})
}

// @Summary      Get zone
// @Tags         zones
// @Produce      json
// @Param        id   path    string  true  "Zone id"
// @Success      200  {object}  models.Zone
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/zones/{id} [get]
// @Security     BearerAuth
func (h *Handler) getZone(c *gin.Context) {
	zone, err := h.services.Zones.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.zoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// @Summary      Update zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Param        id    path   string       true  "Zone id"
// @Param        body  body   models.Zone  true  "Zone"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/zones/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateZone(c *gin.Context) {
	var zone models.Zone
	if err := c.ShouldBindJSON(&zone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	zone.ID = c.Param("id")
	if err := h.services.Zones.Update(c.Request.Context(), zone); err != nil {
		h.zoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// @Summary      Delete zone
// @Tags         zones
// @Produce      json
// @Param        id   path    string  true  "Zone id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/zones/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteZone(c *gin.Context) {
	if err := h.services.Zones.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.zoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Zone live status
// @Description  Thermostat readings plus averaged sensor values from the entity cache.
// @Tags         zones
// @Produce      json
// @Param        id   path    string  true  "Zone id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/zones/{id}/status [get]
// @Security     BearerAuth
func (h *Handler) getZoneStatus(c *gin.Context) {
	status, err := h.services.Zones.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.zoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type assignScheduleRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
}

// @Summary      Assign schedule to zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Param        id    path   string                 true  "Zone id"
// @Param        body  body   assignScheduleRequest  true  "Schedule assignment"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/zones/{id}/schedule [put]
// @Security     BearerAuth
func (h *Handler) assignZoneSchedule(c *gin.Context) {
	var req assignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Zones.AssignSchedule(c.Request.Context(), c.Param("id"), req.ScheduleID); err != nil {
		h.zoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "assigned", "schedule_id": req.ScheduleID})
}

func (h *Handler) zoneError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "zone not found"})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "zone operation failed", "zone_op_failed", err)
}
