package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"heating_control/internal/logger"
	"heating_control/internal/models"
	"heating_control/internal/repository"
	"heating_control/internal/schedule"
)

const defaultVentilationMinutes = 5

// Domain errors for mode transitions. Handlers map these to precise HTTP
// responses: "already set" vs "application failed" vs "invalid request".
var (
	ErrAlreadySet         = errors.New("mode is already set")
	ErrApplyFailed        = errors.New("mode application failed")
	ErrUnknownMode        = errors.New("unknown mode")
	ErrMissingRestoreTime = errors.New("timer mode requires a restore time")
	ErrNoTimerActive      = errors.New("no timer-driven mode active")
)

// pendingRestore is the single outstanding deferred mode transition.
// Cancellation is check-then-act on the flag: a stopped timer may already be
// past its Stop call, so the fire path re-checks before acting.
type pendingRestore struct {
	target  models.SystemMode
	fireAt  time.Time
	armedBy models.SystemMode

	mu        sync.Mutex
	cancelled bool
	timer     *time.Timer
}

func (p *pendingRestore) cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
}

func (p *pendingRestore) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// ModeService owns the current operating mode. Every transition is total:
// it fully succeeds and commits, or rolls the mode pointer back. All state
// mutation runs under one mutex, making the at-most-one-transition-in-flight
// assumption explicit rather than relying on cooperative scheduling.
type ModeService struct {
	mu       sync.Mutex
	current  models.SystemMode
	previous models.SystemMode
	pending  *pendingRestore

	dispatcher Dispatcher
	zones      Zones
	schedules  Schedules
	events     repository.EventRepo
	hub        HubClient

	modeEntityID string
	now          func() time.Time
	log          *logger.Logger
}

func NewModeService(
	dispatcher Dispatcher,
	zones Zones,
	schedules Schedules,
	events repository.EventRepo,
	hub HubClient,
	modeEntityID string,
	log *logger.Logger,
) *ModeService {
	return &ModeService{
		current:      models.ModeManual,
		previous:     models.ModeManual,
		dispatcher:   dispatcher,
		zones:        zones,
		schedules:    schedules,
		events:       events,
		hub:          hub,
		modeEntityID: modeEntityID,
		now:          time.Now,
		log:          log,
	}
}

var _ Modes = (*ModeService)(nil)

// Current returns the active system mode.
func (s *ModeService) Current() models.SystemMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Info returns the current regime plus any pending restore details.
func (s *ModeService) Info() ModeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := ModeInfo{Current: s.current, Previous: s.previous}
	if s.pending != nil {
		fireAt := s.pending.fireAt
		info.RestoreTarget = s.pending.target
		info.RestoreAt = &fireAt
		if remaining := fireAt.Sub(s.now()); remaining > 0 {
			info.RemainingSeconds = int(remaining.Seconds())
		}
	}
	return info
}

// SetMode applies a mode transition across all enabled zones.
func (s *ModeService) SetMode(ctx context.Context, req ModeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setModeLocked(ctx, req, true)
}

// setModeLocked runs with s.mu held. persist controls whether the resulting
// mode is written back to the hub selector; restores originating from the
// hub skip it to avoid a write-after-read echo.
func (s *ModeService) setModeLocked(ctx context.Context, req ModeRequest, persist bool) error {
	if req.Mode == s.current && !req.Force {
		s.log.Infow("mode_already_set", "mode", req.Mode)
		return fmt.Errorf("%q: %w", req.Mode, ErrAlreadySet)
	}

	s.log.Infow("mode_switch", "from", s.current, "to", req.Mode)
	previous := s.current
	s.previous = previous
	s.current = req.Mode // optimistic; rolled back on applier failure

	if err := s.apply(ctx, req, previous); err != nil {
		s.current = previous
		s.log.Errorw("mode_switch_failed", "mode", req.Mode, "err", err)
		return err
	}

	s.appendEvent(ctx, models.EventModeChange, fmt.Sprintf("Mode changed to %s", req.Mode), map[string]any{
		"from": previous,
		"to":   req.Mode,
	})

	if persist {
		// Best-effort UI reflection; a failed persist never rolls back.
		if !s.dispatcher.SelectOption(s.modeEntityID, string(req.Mode)) {
			s.log.Errorw("mode_persist_failed", "mode", req.Mode, "entity_id", s.modeEntityID)
		}
	}
	return nil
}

func (s *ModeService) apply(ctx context.Context, req ModeRequest, previous models.SystemMode) error {
	switch req.Mode {
	case models.ModeDefault:
		return s.applyScheduleMode(ctx, "default")
	case models.ModeEco:
		return s.applyScheduleMode(ctx, "eco")
	case models.ModeStayHome:
		return s.applyStayHome(ctx, req.ActiveZones)
	case models.ModeVentilation:
		minutes := req.VentilationMinutes
		if minutes <= 0 {
			minutes = defaultVentilationMinutes
		}
		return s.applyVentilation(ctx, minutes, previous)
	case models.ModeTimer:
		return s.applyTimer(ctx, req.RestoreAt)
	case models.ModeManual:
		return s.applyAllThermostats(ctx, models.HVACModeHeat)
	case models.ModeOff:
		return s.applyAllThermostats(ctx, models.HVACModeOff)
	default:
		return fmt.Errorf("%q: %w", req.Mode, ErrUnknownMode)
	}
}

// applyScheduleMode sets every thermostat of every enabled zone to auto and
// pushes the named schedule. Per-thermostat failures are collected, never
// short-circuited; the result is the logical AND.
func (s *ModeService) applyScheduleMode(ctx context.Context, scheduleID string) error {
	week, err := s.schedules.WeekSchedule(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("resolve %q schedule: %w", scheduleID, err)
	}

	zones, err := s.zones.ListEnabled(ctx)
	if err != nil {
		return err
	}

	allOK := true
	for _, zone := range zones {
		if s.applyWeekToZone(ctx, zone, week, scheduleID) {
			continue
		}
		allOK = false
	}
	if !allOK {
		return ErrApplyFailed
	}
	return nil
}

// applyWeekToZone pushes one week plan to every thermostat of a zone.
// The mode-set always precedes the schedule-push per thermostat. A fully
// successful zone records the schedule assignment.
func (s *ModeService) applyWeekToZone(ctx context.Context, zone models.Zone, week map[string]string, scheduleID string) bool {
	zoneOK := true
	for _, thermostatID := range zone.Thermostats {
		ok := s.dispatcher.SetHVACMode(thermostatID, models.HVACModeAuto)
		ok = s.dispatcher.PublishWeeklySchedule(thermostatID, week) && ok
		if !ok {
			zoneOK = false
		}
	}
	if zoneOK && scheduleID != "" {
		if err := s.zones.AssignSchedule(ctx, zone.ID, scheduleID); err != nil {
			s.log.Errorw("schedule_assignment_failed", "zone", zone.ID, "schedule", scheduleID, "err", err)
		}
	}
	return zoneOK
}

// applyStayHome swaps the current weekday to the weekend pattern for the
// active zones; the other enabled zones keep the untouched default plan.
// On success a restore-to-default is armed for the next local midnight:
// stay-home is only valid for the remainder of the calendar day.
func (s *ModeService) applyStayHome(ctx context.Context, activeZones []string) error {
	swapDay := schedule.DayName(s.now())
	s.log.Infow("stay_home_apply", "swap_day", swapDay, "active_zones", activeZones)

	swappedWeek, err := s.schedules.StayHomeWeek(ctx, "default", swapDay)
	if err != nil {
		return fmt.Errorf("resolve stay-home schedule: %w", err)
	}
	defaultWeek, err := s.schedules.WeekSchedule(ctx, "default")
	if err != nil {
		return fmt.Errorf("resolve %q schedule: %w", "default", err)
	}

	var active map[string]struct{}
	if activeZones != nil {
		active = make(map[string]struct{}, len(activeZones))
		for _, id := range activeZones {
			active[id] = struct{}{}
		}
	}

	zones, err := s.zones.ListEnabled(ctx)
	if err != nil {
		return err
	}

	allOK := true
	for _, zone := range zones {
		week := swappedWeek
		if active != nil {
			if _, isActive := active[zone.ID]; !isActive {
				week = defaultWeek
			}
		}
		// Stay-home leaves zone schedule assignments untouched; it is a
		// one-day overlay, not a new persistent schedule.
		if !s.applyWeekToZone(ctx, zone, week, "") {
			allOK = false
		}
	}
	if !allOK {
		return ErrApplyFailed
	}

	s.armRestoreLocked(models.ModeDefault, schedule.NextMidnight(s.now()), models.ModeStayHome)
	return nil
}

// applyVentilation turns everything off for the given minutes, then
// restores the mode that was current before ventilation was entered — not
// simply default: ventilation returns the system to whatever regime it
// interrupted.
func (s *ModeService) applyVentilation(ctx context.Context, minutes int, previous models.SystemMode) error {
	s.log.Infow("ventilation_apply", "minutes", minutes, "restore_to", previous)
	if err := s.applyAllThermostats(ctx, models.HVACModeOff); err != nil {
		return err
	}
	s.armRestoreLocked(previous, s.now().Add(time.Duration(minutes)*time.Minute), models.ModeVentilation)
	return nil
}

// applyTimer is the legacy alias of ventilation taking an absolute instant
// and always restoring to default.
func (s *ModeService) applyTimer(ctx context.Context, restoreAt time.Time) error {
	if restoreAt.IsZero() {
		return ErrMissingRestoreTime
	}
	s.log.Infow("timer_apply", "restore_at", restoreAt)
	if err := s.applyAllThermostats(ctx, models.HVACModeOff); err != nil {
		return err
	}
	s.armRestoreLocked(models.ModeDefault, restoreAt, models.ModeTimer)
	return nil
}

// applyAllThermostats sets one HVAC mode on every thermostat of every
// enabled zone, collecting per-thermostat results.
func (s *ModeService) applyAllThermostats(ctx context.Context, hvacMode string) error {
	zones, err := s.zones.ListEnabled(ctx)
	if err != nil {
		return err
	}

	allOK := true
	for _, zone := range zones {
		for _, thermostatID := range zone.Thermostats {
			if !s.dispatcher.SetHVACMode(thermostatID, hvacMode) {
				allOK = false
			}
		}
	}
	if !allOK {
		return ErrApplyFailed
	}
	return nil
}

// armRestoreLocked schedules the single deferred restore, with s.mu held.
// Arming replaces any existing restore, except that a pending ventilation
// restore is authoritative over a stay-home midnight arm: ventilation is a
// short interruption whose own restore re-enters the interrupted regime,
// which re-arms midnight if stay-home still applies.
func (s *ModeService) armRestoreLocked(target models.SystemMode, fireAt time.Time, armedBy models.SystemMode) {
	if s.pending != nil && s.pending.armedBy == models.ModeVentilation && armedBy == models.ModeStayHome {
		s.log.Infow("midnight_restore_skipped", "reason", "ventilation restore pending")
		return
	}
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}

	delay := fireAt.Sub(s.now())
	if delay <= 0 {
		s.log.Warnw("restore_time_in_past", "fire_at", fireAt, "target", target)
		return
	}

	p := &pendingRestore{target: target, fireAt: fireAt, armedBy: armedBy}
	p.timer = time.AfterFunc(delay, func() { s.fireRestore(p) })
	s.pending = p
	s.log.Infow("restore_armed", "target", target, "fire_at", fireAt, "armed_by", armedBy)
}

// fireRestore runs when a deferred restore elapses. The fire is a no-op if
// the restore was cancelled or the mode changed since it was armed.
func (s *ModeService) fireRestore(p *pendingRestore) {
	if p.isCancelled() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != p {
		return // superseded by a newer arm
	}
	s.pending = nil

	if s.current != p.armedBy {
		s.log.Infow("restore_skipped", "armed_by", p.armedBy, "current", s.current)
		return
	}

	ctx := context.Background()
	s.log.Infow("restore_firing", "target", p.target, "armed_by", p.armedBy)
	s.appendEvent(ctx, models.EventRestore, fmt.Sprintf("Restoring to %s after %s", p.target, p.armedBy), map[string]any{
		"target":   p.target,
		"armed_by": p.armedBy,
	})
	if err := s.setModeLocked(ctx, ModeRequest{Mode: p.target}, true); err != nil {
		s.log.Errorw("restore_failed", "target", p.target, "err", err)
	}
}

// CancelTimer aborts the pending restore of a timer-driven mode and returns
// the system to default. Invalid outside timer/ventilation.
func (s *ModeService) CancelTimer(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != models.ModeTimer && s.current != models.ModeVentilation {
		return fmt.Errorf("current mode %q: %w", s.current, ErrNoTimerActive)
	}
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
	return s.setModeLocked(ctx, ModeRequest{Mode: models.ModeDefault}, true)
}

// RestoreFromHub reconciles the in-memory mode with the hub's selector
// entity, once, after the cache is warmed. A recognized value is applied
// without persisting back (no write-after-read echo); an unrecognized or
// missing value pushes the in-memory default to the hub instead. The sync
// is deliberately unidirectional after startup.
func (s *ModeService) RestoreFromHub(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.hub.SelectValue(s.modeEntityID)
	if !ok {
		s.log.Infow("mode_entity_missing", "entity_id", s.modeEntityID, "pushing", s.current)
		s.dispatcher.SelectOption(s.modeEntityID, string(s.current))
		return nil
	}

	mode, recognized := models.ParseSystemMode(value)
	if !recognized {
		s.log.Warnw("mode_entity_unrecognized", "entity_id", s.modeEntityID, "value", value, "pushing", s.current)
		s.dispatcher.SelectOption(s.modeEntityID, string(s.current))
		return nil
	}

	if mode == models.ModeTimer {
		// A persisted timer carries no restore instant; all that can be
		// honored is the off half of its contract.
		s.log.Warnw("persisted_timer_without_restore_time", "applying", models.ModeOff)
		mode = models.ModeOff
	}

	if mode == s.current {
		s.log.Infow("mode_already_current", "mode", mode)
		return nil
	}

	s.log.Infow("mode_restored_from_hub", "mode", mode)
	return s.setModeLocked(ctx, ModeRequest{Mode: mode}, false)
}

// appendEvent records an audit entry, best-effort.
func (s *ModeService) appendEvent(ctx context.Context, typ, description string, meta map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, models.ModeEvent{
		Type:        typ,
		Description: description,
		Metadata:    meta,
	}); err != nil {
		s.log.Errorw("audit_append_failed", "type", typ, "err", err)
	}
}
