package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/goaltrack/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNoteNotFound        = errors.New("note not found")
	ErrNoteContentRequired = errors.New("note content required")
	ErrNoteGoalNotFound    = errors.New("note goal not found")
)

type NoteRepository interface {
	ListByUser(userID uint, goalID *uint, fromStart *time.Time, toEnd *time.Time) ([]models.Note, error)
	FindByIDForUser(noteID uint, userID uint) (models.Note, error)
	Create(note *models.Note) error
	Save(note *models.Note) error
	DeleteForUser(noteID uint, userID uint) (bool, error)
}

type NoteGoalLookup interface {
	ExistsForUser(goalID uint, userID uint) (bool, error)
}

type NoteInput struct {
	Title    *string
	Content  string
	GoalID   *uint
	NoteDate *Day
}

// NoteUpdate carries a partial update; a field applies only when its Set
// flag is true, and a nil value clears it.
type NoteUpdate struct {
	TitleSet    bool
	Title       *string
	ContentSet  bool
	Content     string
	GoalIDSet   bool
	GoalID      *uint
	NoteDateSet bool
	NoteDate    *Day
}

type NoteService struct {
	notes NoteRepository
	goals NoteGoalLookup
}

func NewNoteService(notes NoteRepository, goals NoteGoalLookup) *NoteService {
	return &NoteService{notes: notes, goals: goals}
}

func (service *NoteService) List(userID uint, goalID *uint, noteDate *Day) ([]models.Note, error) {
	var fromStart, toEnd *time.Time
	if noteDate != nil {
		start, end := noteDate.Range()
		fromStart, toEnd = &start, &end
	}
	return service.notes.ListByUser(userID, goalID, fromStart, toEnd)
}

func (service *NoteService) Create(userID uint, input NoteInput) (models.Note, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return models.Note{}, ErrNoteContentRequired
	}
	if err := service.ensureGoalOwned(userID, input.GoalID); err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		UserID:  userID,
		Title:   normalizeOptionalText(input.Title),
		Content: content,
		GoalID:  input.GoalID,
	}
	if input.NoteDate != nil {
		note.NoteDate = dayTimePointer(*input.NoteDate)
	}
	if err := service.notes.Create(&note); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (service *NoteService) Update(userID uint, noteID uint, update NoteUpdate) (models.Note, error) {
	note, err := service.notes.FindByIDForUser(noteID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Note{}, ErrNoteNotFound
	}
	if err != nil {
		return models.Note{}, err
	}

	if update.TitleSet {
		note.Title = normalizeOptionalText(update.Title)
	}
	if update.ContentSet {
		content := strings.TrimSpace(update.Content)
		if content == "" {
			return models.Note{}, ErrNoteContentRequired
		}
		note.Content = content
	}
	if update.GoalIDSet {
		if err := service.ensureGoalOwned(userID, update.GoalID); err != nil {
			return models.Note{}, err
		}
		note.GoalID = update.GoalID
	}
	if update.NoteDateSet {
		note.NoteDate = nil
		if update.NoteDate != nil {
			note.NoteDate = dayTimePointer(*update.NoteDate)
		}
	}

	if err := service.notes.Save(&note); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (service *NoteService) Delete(userID uint, noteID uint) error {
	deleted, err := service.notes.DeleteForUser(noteID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoteNotFound
	}
	return nil
}

func (service *NoteService) ensureGoalOwned(userID uint, goalID *uint) error {
	if goalID == nil {
		return nil
	}
	exists, err := service.goals.ExistsForUser(*goalID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNoteGoalNotFound
	}
	return nil
}

func normalizeOptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
