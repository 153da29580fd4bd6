package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
)

func TestCalendarGridRange(t *testing.T) {
	from, to := CalendarGridRange(NewDay(2026, time.February, 14))

	if from.String() != "2026-02-01" {
		t.Fatalf("expected grid start 2026-02-01, got %s", from)
	}
	if to.String() != "2026-02-28" {
		t.Fatalf("expected grid end 2026-02-28, got %s", to)
	}

	from, to = CalendarGridRange(NewDay(2026, time.March, 1))
	if from.String() != "2026-03-01" || to.String() != "2026-04-04" {
		t.Fatalf("unexpected march grid %s..%s", from, to)
	}
}

func TestBuildCalendarDayStatesPlacesGoalsOnDueDays(t *testing.T) {
	target := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	mondays := `[1]`

	goals := []models.Goal{
		{
			ID:         1,
			Title:      "dentist",
			Type:       models.GoalTypeDaily,
			Status:     models.GoalStatusPending,
			TargetDate: &target,
			Completions: []models.GoalCompletion{
				{GoalID: 1, Date: target, Completed: true},
			},
		},
		{
			ID:            2,
			Title:         "gym",
			Type:          models.GoalTypeShortTerm,
			Status:        models.GoalStatusPending,
			StartDate:     &start,
			EndDate:       &end,
			RecurringDays: &mondays,
		},
	}

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	days := BuildCalendarDayStates(NewDay(2026, time.March, 1), goals, now, time.UTC)
	if len(days) != 35 {
		t.Fatalf("expected 35 grid days, got %d", len(days))
	}

	day10 := findCalendarDayState(t, days, "2026-03-10")
	if !day10.IsToday {
		t.Fatal("expected 2026-03-10 to be today")
	}
	if len(day10.Goals) != 1 || day10.Goals[0].GoalID != 1 || !day10.Goals[0].Completed {
		t.Fatalf("expected completed dentist goal on 2026-03-10, got %+v", day10.Goals)
	}

	for _, key := range []string{"2026-03-02", "2026-03-09"} {
		day := findCalendarDayState(t, days, key)
		if len(day.Goals) != 1 || day.Goals[0].GoalID != 2 {
			t.Fatalf("expected gym goal on %s, got %+v", key, day.Goals)
		}
	}

	if day16 := findCalendarDayState(t, days, "2026-03-16"); len(day16.Goals) != 0 {
		t.Fatalf("expected no goals after the window ends, got %+v", day16.Goals)
	}
}

func TestBuildCalendarDayStatesShowsGoalsWithMalformedRecurrence(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	broken := `mon,wed`
	goals := []models.Goal{{
		ID:            7,
		Title:         "broken",
		Status:        models.GoalStatusPending,
		StartDate:     &start,
		RecurringDays: &broken,
	}}

	days := BuildCalendarDayStates(NewDay(2026, time.March, 1), goals, start, time.UTC)
	day := findCalendarDayState(t, days, "2026-03-04")
	if len(day.Goals) != 1 {
		t.Fatalf("expected malformed recurrence goal to be displayed, got %+v", day.Goals)
	}
}

func findCalendarDayState(t *testing.T, days []CalendarDayState, key string) CalendarDayState {
	t.Helper()

	for _, day := range days {
		if day.Date.String() == key {
			return day
		}
	}
	t.Fatalf("calendar day %s not found", key)
	return CalendarDayState{}
}
