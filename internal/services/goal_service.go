package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/goaltrack/internal/models"
	"gorm.io/gorm"
)

const maxGoalTitleLength = 200

var (
	ErrGoalNotFound          = errors.New("goal not found")
	ErrGoalTitleRequired     = errors.New("goal title required")
	ErrGoalTitleTooLong      = errors.New("goal title too long")
	ErrGoalTypeInvalid       = errors.New("goal type invalid")
	ErrGoalStatusInvalid     = errors.New("goal status invalid")
	ErrGoalScheduleConflict  = errors.New("goal target date conflicts with recurrence window")
	ErrGoalWindowInvalid     = errors.New("goal end date before start date")
	ErrGoalRecurrenceInvalid = errors.New("goal recurring days invalid")
)

type GoalRepository interface {
	ListByUser(userID uint, goalType string) ([]models.Goal, error)
	ListByUserWithCompletionsInRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.Goal, error)
	FindByIDForUser(goalID uint, userID uint) (models.Goal, error)
	Create(goal *models.Goal) error
	UpdateStatus(goalID uint, status string) error
	DeleteForUser(goalID uint, userID uint) (bool, error)
}

type CompletionRepository interface {
	Upsert(goalID uint, day time.Time, completed bool) (models.GoalCompletion, error)
	Toggle(goalID uint, day time.Time) (models.GoalCompletion, error)
}

type GoalInput struct {
	Title      string
	Type       string
	TargetDate *Day
	StartDate  *Day
	EndDate    *Day
	// RecurringDays is the raw JSON array of weekdays.
	RecurringDays *string
}

type GoalService struct {
	goals       GoalRepository
	completions CompletionRepository
}

func NewGoalService(goals GoalRepository, completions CompletionRepository) *GoalService {
	return &GoalService{goals: goals, completions: completions}
}

func (service *GoalService) List(userID uint, goalType string) ([]models.Goal, error) {
	goalType = strings.TrimSpace(goalType)
	if goalType != "" && !models.IsValidGoalType(goalType) {
		return nil, ErrGoalTypeInvalid
	}
	return service.goals.ListByUser(userID, goalType)
}

// ListDueOn returns the goals shown for day, with that day's completions.
// Goals whose recurrence cannot be parsed are included.
func (service *GoalService) ListDueOn(userID uint, day Day, goalType string) ([]models.Goal, error) {
	goalType = strings.TrimSpace(goalType)
	if goalType != "" && !models.IsValidGoalType(goalType) {
		return nil, ErrGoalTypeInvalid
	}

	dayStart, dayEnd := day.Range()
	goals, err := service.goals.ListByUserWithCompletionsInRange(userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	due := CalendarResolver.GoalsDueOnDay(goals, day)
	if goalType == "" {
		return due, nil
	}
	filtered := make([]models.Goal, 0, len(due))
	for _, goal := range due {
		if goal.Type == goalType {
			filtered = append(filtered, goal)
		}
	}
	return filtered, nil
}

func (service *GoalService) Calendar(userID uint, month Day, now time.Time, location *time.Location) ([]CalendarDayState, error) {
	gridStart, gridEnd := CalendarGridRange(month)
	goals, err := service.goals.ListByUserWithCompletionsInRange(userID, gridStart.Time(), gridEnd.AddDays(1).Time())
	if err != nil {
		return nil, err
	}
	return BuildCalendarDayStates(month, goals, now, location), nil
}

// Create validates input and stores a pending goal. Without any date a daily
// goal targets today and other types start today.
func (service *GoalService) Create(userID uint, input GoalInput, today Day) (models.Goal, error) {
	goal, err := service.buildGoal(userID, input, today)
	if err != nil {
		return models.Goal{}, err
	}
	if err := service.goals.Create(&goal); err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (service *GoalService) buildGoal(userID uint, input GoalInput, today Day) (models.Goal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Goal{}, ErrGoalTitleRequired
	}
	if utf8.RuneCountInString(title) > maxGoalTitleLength {
		return models.Goal{}, ErrGoalTitleTooLong
	}

	goalType := strings.TrimSpace(input.Type)
	if goalType == "" {
		goalType = models.GoalTypeDaily
	}
	if !models.IsValidGoalType(goalType) {
		return models.Goal{}, ErrGoalTypeInvalid
	}

	weekdays, err := ParseRecurringDays(input.RecurringDays)
	if err != nil {
		return models.Goal{}, fmt.Errorf("%w: %v", ErrGoalRecurrenceInvalid, err)
	}

	goal := models.Goal{
		UserID: userID,
		Title:  title,
		Type:   goalType,
		Status: models.GoalStatusPending,
	}

	hasWindow := input.StartDate != nil || input.EndDate != nil || len(weekdays) > 0
	switch {
	case input.TargetDate != nil && hasWindow:
		return models.Goal{}, ErrGoalScheduleConflict
	case input.TargetDate != nil:
		goal.TargetDate = dayTimePointer(*input.TargetDate)
		return goal, nil
	case !hasWindow && goalType == models.GoalTypeDaily:
		goal.TargetDate = dayTimePointer(today)
		return goal, nil
	}

	start := today
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if input.EndDate != nil && input.EndDate.Before(start) {
		return models.Goal{}, ErrGoalWindowInvalid
	}

	goal.StartDate = dayTimePointer(start)
	if input.EndDate != nil {
		goal.EndDate = dayTimePointer(*input.EndDate)
	}
	goal.RecurringDays = EncodeRecurringDays(weekdays)
	return goal, nil
}

func (service *GoalService) Find(userID uint, goalID uint) (models.Goal, error) {
	goal, err := service.goals.FindByIDForUser(goalID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Goal{}, ErrGoalNotFound
	}
	return goal, err
}

func (service *GoalService) SetStatus(userID uint, goalID uint, status string) (models.Goal, error) {
	status = strings.TrimSpace(status)
	if !models.IsValidGoalStatus(status) {
		return models.Goal{}, ErrGoalStatusInvalid
	}

	goal, err := service.Find(userID, goalID)
	if err != nil {
		return models.Goal{}, err
	}
	if err := service.goals.UpdateStatus(goal.ID, status); err != nil {
		return models.Goal{}, err
	}
	goal.Status = status
	return goal, nil
}

func (service *GoalService) SetCompletion(userID uint, goalID uint, day Day, completed bool) (models.GoalCompletion, error) {
	goal, err := service.Find(userID, goalID)
	if err != nil {
		return models.GoalCompletion{}, err
	}
	return service.completions.Upsert(goal.ID, day.Time(), completed)
}

// ToggleCompletion flips the completion of goalID on day; the first toggle
// marks it completed.
func (service *GoalService) ToggleCompletion(userID uint, goalID uint, day Day) (models.GoalCompletion, error) {
	goal, err := service.Find(userID, goalID)
	if err != nil {
		return models.GoalCompletion{}, err
	}
	return service.completions.Toggle(goal.ID, day.Time())
}

func (service *GoalService) Delete(userID uint, goalID uint) error {
	deleted, err := service.goals.DeleteForUser(goalID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGoalNotFound
	}
	return nil
}

func dayTimePointer(day Day) *time.Time {
	value := day.Time()
	return &value
}
