package schedule

import (
	"testing"
	"time"

	"heating_control/internal/models"
)

func TestValidateDaySchedule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "valid six tokens", in: "00:00/17 06:00/21 08:30/17 15:00/21 22:00/17 23:59/17"},
		{name: "valid fractional temps", in: "00:00/17.5 06:00/21.5 08:30/17 15:00/21 22:00/17 23:59/17"},
		{name: "too few tokens", in: "00:00/17 06:00/21", wantErr: true},
		{name: "too many tokens", in: "00:00/17 01:00/17 02:00/17 03:00/17 04:00/17 05:00/17 06:00/17", wantErr: true},
		{name: "must start at midnight", in: "01:00/17 06:00/21 08:30/17 15:00/21 22:00/17 23:59/17", wantErr: true},
		{name: "hour out of range", in: "00:00/17 24:00/21 08:30/17 15:00/21 22:00/17 23:59/17", wantErr: true},
		{name: "minute out of range", in: "00:00/17 06:61/21 08:30/17 15:00/21 22:00/17 23:59/17", wantErr: true},
		{name: "missing temperature", in: "00:00/ 06:00/21 08:30/17 15:00/21 22:00/17 23:59/17", wantErr: true},
		{name: "negative temperature", in: "00:00/-5 06:00/21 08:30/17 15:00/21 22:00/17 23:59/17", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateDaySchedule(tc.in)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.in, err)
			}
		})
	}
}

func TestExpandWeek(t *testing.T) {
	dayTypes := map[string]string{
		"workday":     "WORK",
		"weekend_day": "WEEKEND",
	}
	week := models.WeekPlan{
		"monday": "workday", "tuesday": "workday", "wednesday": "workday",
		"thursday": "workday", "friday": "workday",
		"saturday": "weekend_day", "sunday": "weekend_day",
	}

	out, err := ExpandWeek(week, dayTypes)
	if err != nil {
		t.Fatalf("ExpandWeek: %v", err)
	}
	if out["friday"] != "WORK" || out["sunday"] != "WEEKEND" {
		t.Fatalf("expanded: %v", out)
	}
}

func TestExpandWeek_MissingDayFails(t *testing.T) {
	week := models.WeekPlan{"monday": "workday"}
	if _, err := ExpandWeek(week, map[string]string{"workday": "WORK"}); err == nil {
		t.Fatal("expected error for incomplete week")
	}
}

func TestExpandWeek_UnknownDayTypeFails(t *testing.T) {
	week := models.WeekPlan{}
	for _, day := range models.Weekdays {
		week[day] = "tropical_day"
	}
	if _, err := ExpandWeek(week, map[string]string{"workday": "WORK"}); err == nil {
		t.Fatal("expected error for unknown day type")
	}
}

func TestStayHomePlan_DoesNotMutateBase(t *testing.T) {
	base := models.WeekPlan{}
	for _, day := range models.Weekdays {
		base[day] = "workday"
	}

	swapped := StayHomePlan(base, "tuesday")
	if swapped["tuesday"] != WeekendDayType {
		t.Fatalf("tuesday=%q", swapped["tuesday"])
	}
	if swapped["monday"] != "workday" {
		t.Fatalf("monday=%q", swapped["monday"])
	}
	if base["tuesday"] != "workday" {
		t.Fatal("base plan mutated")
	}
}

func TestDayName(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC), "monday"},
		{time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC), "wednesday"},
		{time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC), "sunday"},
	}
	for _, tc := range cases {
		if got := DayName(tc.date); got != tc.want {
			t.Fatalf("DayName(%v)=%q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestNextMidnight(t *testing.T) {
	in := time.Date(2025, 11, 5, 23, 59, 59, 0, time.UTC)
	want := time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)
	if got := NextMidnight(in); !got.Equal(want) {
		t.Fatalf("NextMidnight=%v, want %v", got, want)
	}

	// exactly at midnight rolls to the following day
	at := time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	if got := NextMidnight(at); !got.Equal(next) {
		t.Fatalf("NextMidnight(midnight)=%v, want %v", got, next)
	}
}
