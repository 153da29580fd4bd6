package services

import (
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
)

type CalendarGoalState struct {
	GoalID    uint   `json:"goal_id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
	Satisfied bool   `json:"satisfied"`
}

type CalendarDayState struct {
	Date    Day                 `json:"date"`
	Day     int                 `json:"day"`
	InMonth bool                `json:"in_month"`
	IsToday bool                `json:"is_today"`
	Goals   []CalendarGoalState `json:"goals"`
}

// CalendarGridRange returns the first and last day of the Sunday-aligned grid
// covering the month that contains monthDay.
func CalendarGridRange(monthDay Day) (Day, Day) {
	monthStart := NewDay(monthDay.Year(), monthDay.Month(), 1)
	monthEnd := monthStart.Time().AddDate(0, 1, -1)
	gridStart := monthStart.AddDays(-int(monthStart.Weekday()))
	gridEnd := DayOf(monthEnd).AddDays(6 - int(monthEnd.Weekday()))
	return gridStart, gridEnd
}

// BuildCalendarDayStates lists, for each grid day, the goals due on it with the
// per-day completion flag. Recurrence parse failures are shown as due.
func BuildCalendarDayStates(monthDay Day, goals []models.Goal, now time.Time, location *time.Location) []CalendarDayState {
	gridStart, gridEnd := CalendarGridRange(monthDay)
	today := DayIn(now, location)

	completedByGoalDay := make(map[uint]map[Day]bool, len(goals))
	for _, goal := range goals {
		for _, completion := range goal.Completions {
			if completedByGoalDay[goal.ID] == nil {
				completedByGoalDay[goal.ID] = make(map[Day]bool)
			}
			completedByGoalDay[goal.ID][DayOf(completion.Date)] = completion.Completed
		}
	}

	days := make([]CalendarDayState, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDays(1) {
		dueGoals := CalendarResolver.GoalsDueOnDay(goals, day)
		goalStates := make([]CalendarGoalState, 0, len(dueGoals))
		for _, goal := range dueGoals {
			goalStates = append(goalStates, CalendarGoalState{
				GoalID:    goal.ID,
				Title:     goal.Title,
				Type:      goal.Type,
				Status:    goal.Status,
				Completed: completedByGoalDay[goal.ID][day],
				Satisfied: IsGoalSatisfiedOn(goal, day),
			})
		}

		days = append(days, CalendarDayState{
			Date:    day,
			Day:     day.DayOfMonth(),
			InMonth: day.Month() == monthDay.Month(),
			IsToday: day.Equal(today),
			Goals:   goalStates,
		})
	}

	return days
}
