package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/services"
)

func (handler *Handler) ListNotes(c *fiber.Ctx) error {
	user := currentUser(c)

	var goalID *uint
	if raw := c.Query("goal_id"); raw != "" {
		parsed, err := parseID(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid goal id")
		}
		goalID = &parsed
	}
	noteDate, err := parseOptionalDay(c.Query("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	notes, err := handler.noteService.List(user.ID, goalID, noteDate)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load notes")
	}
	return c.JSON(notes)
}

func (handler *Handler) CreateNote(c *fiber.Ctx) error {
	user := currentUser(c)
	input := noteInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	noteDate, err := parseOptionalDay(input.NoteDate)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid note date")
	}

	note, err := handler.noteService.Create(user.ID, services.NoteInput{
		Title:    input.Title,
		Content:  input.Content,
		GoalID:   input.GoalID,
		NoteDate: noteDate,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create note")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (handler *Handler) UpdateNote(c *fiber.Ctx) error {
	user := currentUser(c)
	noteID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid note id")
	}

	update, err := parseNoteUpdate(c.Body())
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	note, err := handler.noteService.Update(user.ID, noteID, update)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update note")
	}
	return c.JSON(note)
}

func (handler *Handler) DeleteNote(c *fiber.Ctx) error {
	user := currentUser(c)
	noteID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid note id")
	}
	if err := handler.noteService.Delete(user.ID, noteID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete note")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// parseNoteUpdate maps present JSON keys to set flags; an explicit null
// clears the field.
func parseNoteUpdate(body []byte) (services.NoteUpdate, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return services.NoteUpdate{}, errors.New("invalid input")
	}

	update := services.NoteUpdate{}
	if raw, ok := fields["title"]; ok {
		update.TitleSet = true
		if err := json.Unmarshal(raw, &update.Title); err != nil {
			return services.NoteUpdate{}, errors.New("invalid title")
		}
	}
	if raw, ok := fields["content"]; ok {
		update.ContentSet = true
		if err := json.Unmarshal(raw, &update.Content); err != nil {
			return services.NoteUpdate{}, errors.New("invalid content")
		}
	}
	if raw, ok := fields["goal_id"]; ok {
		update.GoalIDSet = true
		if err := json.Unmarshal(raw, &update.GoalID); err != nil {
			return services.NoteUpdate{}, errors.New("invalid goal id")
		}
	}
	if raw, ok := fields["note_date"]; ok {
		update.NoteDateSet = true
		var text *string
		if err := json.Unmarshal(raw, &text); err != nil {
			return services.NoteUpdate{}, errors.New("invalid note date")
		}
		if text != nil {
			day, err := parseOptionalDay(*text)
			if err != nil {
				return services.NoteUpdate{}, errors.New("invalid note date")
			}
			update.NoteDate = day
		}
	}
	return update, nil
}
