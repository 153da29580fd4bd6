package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
)

var ErrInvalidRecurringDays = errors.New("invalid recurring days")

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// RecurrencePolicy decides whether a goal whose recurring days cannot be
// parsed counts as due.
type RecurrencePolicy int

const (
	RecurrenceFailOpen RecurrencePolicy = iota
	RecurrenceFailClosed
)

func (policy RecurrencePolicy) String() string {
	if policy == RecurrenceFailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// Resolver answers which goals are due and satisfied on a calendar day.
type Resolver struct {
	Policy RecurrencePolicy
}

var (
	// CalendarResolver backs calendar and per-date goal listings.
	CalendarResolver = Resolver{Policy: RecurrenceFailOpen}
	// NotificationResolver backs reminder and reward decisions.
	NotificationResolver = Resolver{Policy: RecurrenceFailClosed}
)

// ParseRecurringDays decodes a JSON array of weekday numbers (0 is Sunday) or
// English weekday names. An absent, blank, null or empty value yields an
// empty set, meaning every day.
func ParseRecurringDays(raw *string) ([]time.Weekday, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurringDays, err)
	}

	weekdays := make([]time.Weekday, 0, len(items))
	seen := make(map[time.Weekday]bool, len(items))
	for _, item := range items {
		weekday, err := parseRecurringDay(item)
		if err != nil {
			return nil, err
		}
		if seen[weekday] {
			continue
		}
		seen[weekday] = true
		weekdays = append(weekdays, weekday)
	}
	return weekdays, nil
}

func parseRecurringDay(item json.RawMessage) (time.Weekday, error) {
	var number int
	if err := json.Unmarshal(item, &number); err == nil {
		return weekdayFromNumber(number)
	}

	var name string
	if err := json.Unmarshal(item, &name); err != nil {
		return 0, fmt.Errorf("%w: unsupported entry %s", ErrInvalidRecurringDays, string(item))
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if weekday, ok := weekdayNames[name]; ok {
		return weekday, nil
	}
	if number, err := strconv.Atoi(name); err == nil {
		return weekdayFromNumber(number)
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRecurringDays, name)
}

func weekdayFromNumber(number int) (time.Weekday, error) {
	if number < 0 || number > 6 {
		return 0, fmt.Errorf("%w: weekday %d out of range", ErrInvalidRecurringDays, number)
	}
	return time.Weekday(number), nil
}

// EncodeRecurringDays stores weekdays as a JSON array of numbers. An empty
// set is stored as NULL.
func EncodeRecurringDays(weekdays []time.Weekday) *string {
	if len(weekdays) == 0 {
		return nil
	}
	numbers := make([]int, 0, len(weekdays))
	for _, weekday := range weekdays {
		numbers = append(numbers, int(weekday))
	}
	encoded, _ := json.Marshal(numbers)
	value := string(encoded)
	return &value
}

// IsGoalDueOn converts the instant date to its calendar day in location and
// reports whether goal is due on it.
func (resolver Resolver) IsGoalDueOn(goal models.Goal, date time.Time, location *time.Location) bool {
	return resolver.IsGoalDueOnDay(goal, DayIn(date, location))
}

func (resolver Resolver) IsGoalDueOnDay(goal models.Goal, day Day) bool {
	if goal.Status == models.GoalStatusArchived {
		return false
	}

	if target, ok := DayPointer(goal.TargetDate); ok {
		return target.Equal(day)
	}

	start, ok := DayPointer(goal.StartDate)
	if !ok {
		return false
	}
	if day.Before(start) {
		return false
	}
	if end, ok := DayPointer(goal.EndDate); ok && day.After(end) {
		return false
	}

	weekdays, err := ParseRecurringDays(goal.RecurringDays)
	if err != nil {
		return resolver.Policy == RecurrenceFailOpen
	}
	if len(weekdays) == 0 {
		return true
	}
	weekday := day.Weekday()
	for _, candidate := range weekdays {
		if candidate == weekday {
			return true
		}
	}
	return false
}

// IsGoalSatisfiedOn is true when the goal is globally completed or one of its
// loaded completions marks day as done.
func IsGoalSatisfiedOn(goal models.Goal, day Day) bool {
	if goal.Status == models.GoalStatusCompleted {
		return true
	}
	for _, completion := range goal.Completions {
		if completion.Completed && DayOf(completion.Date).Equal(day) {
			return true
		}
	}
	return false
}

func (resolver Resolver) GoalsDueOn(goals []models.Goal, date time.Time, location *time.Location) []models.Goal {
	return resolver.GoalsDueOnDay(goals, DayIn(date, location))
}

func (resolver Resolver) GoalsDueOnDay(goals []models.Goal, day Day) []models.Goal {
	due := make([]models.Goal, 0, len(goals))
	for _, goal := range goals {
		if resolver.IsGoalDueOnDay(goal, day) {
			due = append(due, goal)
		}
	}
	return due
}

func (resolver Resolver) GoalsDueAndUnsatisfied(goals []models.Goal, date time.Time, location *time.Location) []models.Goal {
	return resolver.GoalsDueAndUnsatisfiedOnDay(goals, DayIn(date, location))
}

func (resolver Resolver) GoalsDueAndUnsatisfiedOnDay(goals []models.Goal, day Day) []models.Goal {
	pending := make([]models.Goal, 0, len(goals))
	for _, goal := range goals {
		if resolver.IsGoalDueOnDay(goal, day) && !IsGoalSatisfiedOn(goal, day) {
			pending = append(pending, goal)
		}
	}
	return pending
}
