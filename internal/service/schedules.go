package service

import (
	"context"
	"fmt"

	"heating_control/internal/models"
	"heating_control/internal/repository"
	"heating_control/internal/schedule"
)

// ScheduleService manages named week schedules and their expansion into
// the thermostat wire format.
type ScheduleService struct {
	repo     repository.ScheduleRepo
	dayTypes repository.DayTypeRepo
}

func NewScheduleService(repo repository.ScheduleRepo, dayTypes repository.DayTypeRepo) *ScheduleService {
	return &ScheduleService{repo: repo, dayTypes: dayTypes}
}

var _ Schedules = (*ScheduleService)(nil)

func (s *ScheduleService) List(ctx context.Context) ([]models.Schedule, error) {
	return s.repo.List(ctx)
}

func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	return s.repo.Get(ctx, id)
}

func (s *ScheduleService) Create(ctx context.Context, sched models.Schedule) error {
	if err := s.validate(ctx, sched); err != nil {
		return err
	}
	return s.repo.Create(ctx, sched)
}

func (s *ScheduleService) Update(ctx context.Context, sched models.Schedule) error {
	if err := s.validate(ctx, sched); err != nil {
		return err
	}
	return s.repo.Update(ctx, sched)
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DayTypes lists the reusable day templates schedules are composed of.
func (s *ScheduleService) DayTypes(ctx context.Context) ([]models.DayType, error) {
	return s.dayTypes.List(ctx)
}

// validate checks a schedule before it is stored: every weekday must be
// present and reference an existing day type. Catching a dangling
// reference here keeps expansion failures out of mode transitions.
func (s *ScheduleService) validate(ctx context.Context, sched models.Schedule) error {
	if sched.ID == "" {
		return fmt.Errorf("schedule id is required")
	}
	if sched.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	dayTypes, err := s.dayTypeWires(ctx)
	if err != nil {
		return err
	}
	for _, day := range models.Weekdays {
		dayTypeID, ok := sched.Week[day]
		if !ok {
			return fmt.Errorf("schedule %q missing %s", sched.ID, day)
		}
		if _, ok := dayTypes[dayTypeID]; !ok {
			return fmt.Errorf("schedule %q references unknown day type %q for %s", sched.ID, dayTypeID, day)
		}
	}
	return nil
}

// WeekSchedule expands a stored schedule into day -> wire string.
func (s *ScheduleService) WeekSchedule(ctx context.Context, scheduleID string) (map[string]string, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	dayTypes, err := s.dayTypeWires(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.ExpandWeek(sched.Week, dayTypes)
}

// StayHomeWeek expands a schedule with swapDay replaced by the weekend
// pattern.
func (s *ScheduleService) StayHomeWeek(ctx context.Context, scheduleID, swapDay string) (map[string]string, error) {
	sched, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	dayTypes, err := s.dayTypeWires(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.ExpandWeek(schedule.StayHomePlan(sched.Week, swapDay), dayTypes)
}

func (s *ScheduleService) dayTypeWires(ctx context.Context) (map[string]string, error) {
	list, err := s.dayTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load day types: %w", err)
	}
	wires := make(map[string]string, len(list))
	for _, dt := range list {
		wires[dt.ID] = dt.Schedule
	}
	return wires, nil
}
