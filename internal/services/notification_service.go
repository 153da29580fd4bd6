package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/goaltrack/internal/mail"
	"github.com/terraincognita07/goaltrack/internal/models"
)

type ScheduleMode string

const (
	// SchedulePerUserLocalHour ticks hourly and reminds each user when their
	// local clock reaches the reminder hour.
	SchedulePerUserLocalHour ScheduleMode = "per-user-local-hour"
	// ScheduleFixedUTCHour ticks once a day at the reminder hour in UTC.
	ScheduleFixedUTCHour ScheduleMode = "fixed-utc-hour"
)

const (
	DefaultReminderHour     = 22
	DefaultRewardDailyLimit = 2

	emailKindReminder = "reminder"
	emailKindReward   = "reward"
)

func ParseScheduleMode(raw string) (ScheduleMode, error) {
	switch ScheduleMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SchedulePerUserLocalHour:
		return SchedulePerUserLocalHour, nil
	case ScheduleFixedUTCHour:
		return ScheduleFixedUTCHour, nil
	default:
		return "", fmt.Errorf("unsupported schedule mode %q", raw)
	}
}

type NotificationUserRepository interface {
	ListWithGoals(ctx context.Context) ([]models.User, error)
	FindByID(userID uint) (models.User, error)
	ClaimRewardSlot(ctx context.Context, userID uint, dayStart time.Time, dayEnd time.Time, limit int) (bool, error)
}

type NotificationGoalRepository interface {
	ListByUserWithCompletionsInRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.Goal, error)
}

type NotificationCompletionRepository interface {
	ListForGoalsInRange(ctx context.Context, goalIDs []uint, dayStart time.Time, dayEnd time.Time) ([]models.GoalCompletion, error)
}

type NotificationRenderer interface {
	Reminder(to string, content mail.DigestContent) (mail.Message, error)
	Reward(to string, content mail.DigestContent) (mail.Message, error)
}

type NotificationRecorder interface {
	TickFinished(mode string, evaluated int, failed int, duration time.Duration)
	EmailSent(kind string)
	EmailFailed(kind string)
	RewardThrottled()
}

type NotificationDependencies struct {
	Users       NotificationUserRepository
	Goals       NotificationGoalRepository
	Completions NotificationCompletionRepository
	Sender      mail.Sender
	Renderer    NotificationRenderer
	Links       *DeleteLinkSigner
	Recorder    NotificationRecorder
}

// NotificationOptions zero value: per-user local hour mode, reminders at
// DefaultReminderHour, DefaultRewardDailyLimit rewards a day. ReminderHour is
// a pointer so hour 0 stays configurable.
type NotificationOptions struct {
	Mode             ScheduleMode
	ReminderHour     *int
	RewardDailyLimit int
}

// ReminderHourOption returns hour as a NotificationOptions.ReminderHour.
func ReminderHourOption(hour int) *int {
	return &hour
}

type TickOptions struct {
	// Force evaluates every user with an email regardless of the hour gate.
	Force bool
}

type TickReport struct {
	RunID     string       `json:"run_id"`
	Mode      ScheduleMode `json:"mode"`
	StartedAt time.Time    `json:"started_at"`
	Users     int          `json:"users"`
	Skipped   int          `json:"skipped"`
	Deferred  int          `json:"deferred"`
	Evaluated int          `json:"evaluated"`
	Reminded  int          `json:"reminded"`
	Failed    int          `json:"failed"`
}

type reminderOutcome int

const (
	reminderSkipped reminderOutcome = iota
	reminderDeferred
	reminderNoAction
	reminderSent
)

// NotificationService sends goal reminders on a schedule and reward emails
// when a user finishes every goal due on a day.
type NotificationService struct {
	users       NotificationUserRepository
	goals       NotificationGoalRepository
	completions NotificationCompletionRepository
	sender      mail.Sender
	renderer    NotificationRenderer
	links       *DeleteLinkSigner
	recorder    NotificationRecorder
	options     NotificationOptions
	hour        int
	logger      zerolog.Logger
	now         func() time.Time
}

func NewNotificationService(dependencies NotificationDependencies, options NotificationOptions, logger zerolog.Logger) *NotificationService {
	if options.Mode == "" {
		options.Mode = SchedulePerUserLocalHour
	}
	reminderHour := DefaultReminderHour
	if options.ReminderHour != nil && *options.ReminderHour >= 0 && *options.ReminderHour <= 23 {
		reminderHour = *options.ReminderHour
	}
	options.ReminderHour = ReminderHourOption(reminderHour)
	if options.RewardDailyLimit <= 0 {
		options.RewardDailyLimit = DefaultRewardDailyLimit
	}

	return &NotificationService{
		users:       dependencies.Users,
		goals:       dependencies.Goals,
		completions: dependencies.Completions,
		sender:      dependencies.Sender,
		renderer:    dependencies.Renderer,
		links:       dependencies.Links,
		recorder:    dependencies.Recorder,
		options:     options,
		hour:        reminderHour,
		logger:      logger.With().Str("component", "notifications").Logger(),
		now:         time.Now,
	}
}

// SetClock replaces the time source.
func (service *NotificationService) SetClock(now func() time.Time) {
	if now != nil {
		service.now = now
	}
}

func (service *NotificationService) Options() NotificationOptions {
	return service.options
}

// CronSpec returns the UTC cron expression for the configured mode.
func (service *NotificationService) CronSpec() string {
	if service.options.Mode == ScheduleFixedUTCHour {
		return fmt.Sprintf("0 %d * * *", service.hour)
	}
	return "0 * * * *"
}

// Start schedules ticks until ctx is done. A tick already running when ctx is
// cancelled runs to completion.
func (service *NotificationService) Start(ctx context.Context) error {
	cronLog := cronLogger{logger: service.logger}
	scheduler := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	tickContext := context.WithoutCancel(ctx)
	if _, err := scheduler.AddFunc(service.CronSpec(), func() {
		if _, err := service.Tick(tickContext, TickOptions{}); err != nil {
			service.logger.Error().Stack().Err(err).Msg("scheduled tick failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule notifications: %w", err)
	}

	scheduler.Start()
	service.logger.Info().
		Str("mode", string(service.options.Mode)).
		Str("cron", service.CronSpec()).
		Int("reminder_hour", service.hour).
		Msg("notification scheduler started")

	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
		service.logger.Info().Msg("notification scheduler stopped")
	}()
	return nil
}

// Tick evaluates every user once. It only fails when the user snapshot cannot
// be loaded; per-user failures are logged and counted.
func (service *NotificationService) Tick(ctx context.Context, options TickOptions) (TickReport, error) {
	startedAt := service.now()
	report := TickReport{
		RunID:     uuid.NewString(),
		Mode:      service.options.Mode,
		StartedAt: startedAt.UTC(),
	}
	log := service.logger.With().Str("run_id", report.RunID).Logger()

	users, err := service.users.ListWithGoals(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("load users for tick failed")
		return report, fmt.Errorf("load users: %w", err)
	}
	report.Users = len(users)

	for _, user := range users {
		outcome, err := service.remindUser(ctx, user, startedAt, options.Force)
		if err != nil {
			report.Failed++
			report.Evaluated++
			log.Error().Err(err).Uint("user_id", user.ID).Msg("reminder failed")
			continue
		}
		switch outcome {
		case reminderSkipped:
			report.Skipped++
		case reminderDeferred:
			report.Deferred++
		case reminderNoAction:
			report.Evaluated++
		case reminderSent:
			report.Evaluated++
			report.Reminded++
		}
	}

	duration := service.now().Sub(startedAt)
	if service.recorder != nil {
		service.recorder.TickFinished(string(report.Mode), report.Evaluated, report.Failed, duration)
	}
	log.Info().
		Bool("force", options.Force).
		Int("users", report.Users).
		Int("skipped", report.Skipped).
		Int("deferred", report.Deferred).
		Int("evaluated", report.Evaluated).
		Int("reminded", report.Reminded).
		Int("failed", report.Failed).
		Dur("duration", duration).
		Msg("notification tick finished")
	return report, nil
}

func (service *NotificationService) remindUser(ctx context.Context, user models.User, now time.Time, force bool) (reminderOutcome, error) {
	if !user.HasEmail() {
		return reminderSkipped, nil
	}

	location := user.Location()
	if !force && !service.inReminderHour(now, location) {
		return reminderDeferred, nil
	}

	today := DayIn(now, location)
	due := NotificationResolver.GoalsDueOnDay(user.Goals, today)
	if len(due) == 0 {
		return reminderNoAction, nil
	}

	due, err := service.attachCompletions(ctx, due, today)
	if err != nil {
		return reminderNoAction, err
	}

	pending := NotificationResolver.GoalsDueAndUnsatisfiedOnDay(due, today)
	if len(pending) == 0 {
		return reminderNoAction, nil
	}

	message, err := service.renderer.Reminder(user.EmailAddress(), service.digestContent(user, today, pending))
	if err != nil {
		return reminderNoAction, fmt.Errorf("render reminder: %w", err)
	}
	if err := service.sender.Send(ctx, message); err != nil {
		service.recordEmail(emailKindReminder, false)
		return reminderNoAction, fmt.Errorf("send reminder: %w", err)
	}
	service.recordEmail(emailKindReminder, true)
	return reminderSent, nil
}

func (service *NotificationService) inReminderHour(now time.Time, location *time.Location) bool {
	if service.options.Mode == ScheduleFixedUTCHour {
		return now.UTC().Hour() == service.hour
	}
	return now.In(location).Hour() == service.hour
}

func (service *NotificationService) attachCompletions(ctx context.Context, goals []models.Goal, day Day) ([]models.Goal, error) {
	goalIDs := make([]uint, 0, len(goals))
	for _, goal := range goals {
		goalIDs = append(goalIDs, goal.ID)
	}

	dayStart, dayEnd := day.Range()
	completions, err := service.completions.ListForGoalsInRange(ctx, goalIDs, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}

	byGoal := make(map[uint][]models.GoalCompletion, len(goals))
	for _, completion := range completions {
		byGoal[completion.GoalID] = append(byGoal[completion.GoalID], completion)
	}

	attached := make([]models.Goal, len(goals))
	for index, goal := range goals {
		goal.Completions = byGoal[goal.ID]
		attached[index] = goal
	}
	return attached, nil
}

// CheckReward sends a reward email when every goal due on day is satisfied.
// The daily cap is counted against the user's local today. A slot claimed
// before a failed send stays consumed.
func (service *NotificationService) CheckReward(ctx context.Context, userID uint, day Day) (bool, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if !user.HasEmail() {
		return false, nil
	}

	dayStart, dayEnd := day.Range()
	goals, err := service.goals.ListByUserWithCompletionsInRange(userID, dayStart, dayEnd)
	if err != nil {
		return false, fmt.Errorf("load goals: %w", err)
	}

	due := NotificationResolver.GoalsDueOnDay(goals, day)
	if len(due) == 0 {
		return false, nil
	}
	for _, goal := range due {
		if !IsGoalSatisfiedOn(goal, day) {
			return false, nil
		}
	}

	slotStart, slotEnd := DayIn(service.now(), user.Location()).Range()
	claimed, err := service.users.ClaimRewardSlot(ctx, userID, slotStart, slotEnd, service.options.RewardDailyLimit)
	if err != nil {
		return false, fmt.Errorf("claim reward slot: %w", err)
	}
	if !claimed {
		if service.recorder != nil {
			service.recorder.RewardThrottled()
		}
		service.logger.Debug().Uint("user_id", userID).Str("day", day.String()).Msg("reward limit reached")
		return false, nil
	}

	message, err := service.renderer.Reward(user.EmailAddress(), service.digestContent(user, day, due))
	if err != nil {
		return false, fmt.Errorf("render reward: %w", err)
	}
	if err := service.sender.Send(ctx, message); err != nil {
		service.recordEmail(emailKindReward, false)
		service.logger.Warn().Err(err).Uint("user_id", userID).Msg("reward slot consumed without delivery")
		return false, fmt.Errorf("send reward: %w", err)
	}
	service.recordEmail(emailKindReward, true)
	service.logger.Info().Uint("user_id", userID).Str("day", day.String()).Msg("reward email sent")
	return true, nil
}

func (service *NotificationService) digestContent(user models.User, day Day, goals []models.Goal) mail.DigestContent {
	titles := make([]string, 0, len(goals))
	for _, goal := range goals {
		titles = append(titles, goal.Title)
	}
	content := mail.DigestContent{
		Username: user.Username,
		Language: user.Language,
		Date:     day.String(),
		Titles:   titles,
	}
	if service.links != nil {
		content.DashboardURL = service.links.DashboardURL()
		content.DeleteURL = service.links.URL(user.ID)
	}
	return content
}

func (service *NotificationService) recordEmail(kind string, sent bool) {
	if service.recorder == nil {
		return
	}
	if sent {
		service.recorder.EmailSent(kind)
		return
	}
	service.recorder.EmailFailed(kind)
}

type cronLogger struct {
	logger zerolog.Logger
}

func (adapter cronLogger) Info(msg string, keysAndValues ...interface{}) {
	adapter.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (adapter cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	adapter.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
