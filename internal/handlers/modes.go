package handlers

import (
	"errors"
	"net/http"
	"time"

	"heating_control/internal/models"
	"heating_control/internal/service"

	"github.com/gin-gonic/gin"
)

// Request DTO for setting the system mode.
type setModeRequest struct {
	Mode               string   `json:"mode" binding:"required"`
	Force              bool     `json:"force,omitempty"`
	ActiveZones        []string `json:"active_zones,omitempty"`
	RestoreAt          string   `json:"restore_at,omitempty"` // RFC3339, timer mode only
	VentilationMinutes int      `json:"ventilation_minutes,omitempty"`
}

// SetSystemModeRequest is an exported model for Swagger docs of the setMode payload.
type SetSystemModeRequest struct {
	// Mode to set. Allowed: default, stay_home, eco, timer, ventilation, manual, off
	Mode string `json:"mode" example:"stay_home"`
	// Force re-applies the mode even when already current
	Force bool `json:"force,omitempty" example:"false"`
	// Zone ids for stay_home; omitted means all enabled zones
	ActiveZones []string `json:"active_zones,omitempty"`
	// Absolute restore instant, RFC3339 (required when mode=timer)
	RestoreAt string `json:"restore_at,omitempty" example:"2025-11-01T18:00:00Z"`
	// Off duration in minutes (ventilation only, default 5)
	VentilationMinutes int `json:"ventilation_minutes,omitempty" example:"10"`
}

// @Summary      List available modes
// @Tags         modes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/modes [get]
// @Security     BearerAuth
func (h *Handler) listModes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modes": modeDescriptions})
}

type modeDescription struct {
	ID          models.SystemMode `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
}

var modeDescriptions = []modeDescription{
	{models.ModeDefault, "Default", "Weekly schedule, thermostats in auto"},
	{models.ModeStayHome, "Stay home", "Today heated like a weekend day, restores at midnight"},
	{models.ModeEco, "Eco", "Reduced eco schedule"},
	{models.ModeTimer, "Timer", "Heating off until an absolute restore time"},
	{models.ModeVentilation, "Ventilation", "Heating off briefly, previous mode restored"},
	{models.ModeManual, "Manual", "Thermostats in heat, no schedule control"},
	{models.ModeOff, "Off", "All heating off"},
}

// @Summary      Current mode
// @Description  Returns the active regime plus any pending restore.
// @Tags         modes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/modes/current [get]
// @Security     BearerAuth
func (h *Handler) getMode(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Modes.Info())
}

// @Summary      Set mode
// @Description  timer requires restore_at; stay_home accepts active_zones
// @Tags         modes
// @Accept       json
// @Produce      json
// @Param        body  body   SetSystemModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/modes [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req setModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	mode, ok := models.ParseSystemMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode: " + req.Mode})
		return
	}

	var restoreAt time.Time
	if req.RestoreAt != "" {
		var err error
		restoreAt, err = time.Parse(time.RFC3339, req.RestoreAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restore_at; use RFC3339"})
			return
		}
	}

	err := h.services.Modes.SetMode(c.Request.Context(), service.ModeRequest{
		Mode:               mode,
		Force:              req.Force,
		ActiveZones:        req.ActiveZones,
		RestoreAt:          restoreAt,
		VentilationMinutes: req.VentilationMinutes,
	})
	if err != nil {
		h.modeError(c, mode, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "mode_set", "mode": mode})
}

// @Summary      Cancel timer
// @Description  Aborts the pending restore of timer/ventilation and returns to default.
// @Tags         modes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/modes/timer [delete]
// @Security     BearerAuth
func (h *Handler) cancelTimer(c *gin.Context) {
	if err := h.services.Modes.CancelTimer(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrNoTimerActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to cancel timer", "timer_cancel_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "timer_cancelled", "mode": h.services.Modes.Current()})
}

// modeError maps mode transition errors onto HTTP statuses: no-op repeats
// and missing parameters are client errors, applier failures are upstream.
func (h *Handler) modeError(c *gin.Context, mode models.SystemMode, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadySet):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "mode": mode})
	case errors.Is(err, service.ErrMissingRestoreTime), errors.Is(err, service.ErrUnknownMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrApplyFailed):
		h.logAndJSONError(c, http.StatusBadGateway, "mode application failed", "mode_apply_failed", err, "mode", mode)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to set mode", "mode_set_failed", err, "mode", mode)
	}
}
