package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/terraincognita07/goaltrack/internal/models"
)

type goalResponse struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	TargetDate    *string `json:"target_date"`
	StartDate     *string `json:"start_date"`
	RecurringDays *string `json:"recurring_days"`
}

type completionResponse struct {
	Success    bool `json:"success"`
	RewardSent bool `json:"reward_sent"`
	Completion struct {
		GoalID    uint `json:"goal_id"`
		Completed bool `json:"completed"`
	} `json:"completion"`
}

func createGoal(t *testing.T, env *testEnv, cookie string, body map[string]any) goalResponse {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/goals", body, cookie)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d (%s)", response.StatusCode, readAPIError(t, response.Body))
	}
	goal := goalResponse{}
	decodeJSON(t, response.Body, &goal)
	return goal
}

func TestCreateAndListGoals(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.registerAndLogin(t, "maya")

	daily := createGoal(t, env, cookie, map[string]any{"title": "Read"})
	if daily.Type != models.GoalTypeDaily || daily.Status != models.GoalStatusPending || daily.TargetDate == nil {
		t.Fatalf("unexpected daily goal: %#v", daily)
	}

	weekly := createGoal(t, env, cookie, map[string]any{
		"title":          "Gym",
		"type":           models.GoalTypeShortTerm,
		"start_date":     "2026-03-02",
		"recurring_days": []any{"mon", 3},
	})
	if weekly.RecurringDays == nil || *weekly.RecurringDays != "[1,3]" {
		t.Fatalf("expected normalized recurrence, got %v", weekly.RecurringDays)
	}

	response := env.do(t, http.MethodGet, "/api/goals", nil, cookie)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected list status 200, got %d", response.StatusCode)
	}
	all := []goalResponse{}
	decodeJSON(t, response.Body, &all)
	if len(all) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(all))
	}

	// 2026-03-11 is a Wednesday: only the recurring goal is due.
	response = env.do(t, http.MethodGet, "/api/goals?date=2026-03-11", nil, cookie)
	due := []goalResponse{}
	decodeJSON(t, response.Body, &due)
	if len(due) != 1 || due[0].ID != weekly.ID {
		t.Fatalf("expected only the recurring goal on 2026-03-11, got %#v", due)
	}

	response = env.do(t, http.MethodGet, "/api/goals?type=weekly", nil, cookie)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown type, got %d", response.StatusCode)
	}
}

func TestCreateGoalRejectsConflictingSchedule(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.registerAndLogin(t, "maya")

	response := env.do(t, http.MethodPost, "/api/goals", map[string]any{
		"title":       "Mixed",
		"target_date": "2026-03-12",
		"start_date":  "2026-03-10",
	}, cookie)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", response.StatusCode)
	}

	response = env.do(t, http.MethodPost, "/api/goals", map[string]any{"title": "Bad", "start_date": "03/10/2026"}, cookie)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed date, got %d", response.StatusCode)
	}
}

func TestForeignGoalIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, ownerCookie := env.registerAndLogin(t, "owner")
	_, intruderCookie := env.registerAndLogin(t, "intruder")

	goal := createGoal(t, env, ownerCookie, map[string]any{"title": "Private"})
	goalPath := "/api/goals/" + strconv.FormatUint(uint64(goal.ID), 10)

	checks := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, goalPath, map[string]string{"status": "completed"}},
		{http.MethodPost, goalPath + "/toggle", nil},
		{http.MethodDelete, goalPath, nil},
	}
	for _, check := range checks {
		response := env.do(t, check.method, check.path, check.body, intruderCookie)
		if response.StatusCode != http.StatusNotFound {
			t.Fatalf("%s %s: expected status 404, got %d", check.method, check.path, response.StatusCode)
		}
	}

	stored, err := env.repositories.Goals.FindByIDForUser(goal.ID, mustUserID(t, env, "owner"))
	if err != nil {
		t.Fatalf("load goal: %v", err)
	}
	if stored.Status != models.GoalStatusPending {
		t.Fatalf("expected foreign update to be ignored, got %q", stored.Status)
	}
}

func TestToggleCompletesDayAndSendsReward(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.registerAndLogin(t, "maya")
	env.handler.Wait()
	welcomeCount := len(env.sender.Messages())

	goal := createGoal(t, env, cookie, map[string]any{"title": "Read"})
	togglePath := "/api/goals/" + strconv.FormatUint(uint64(goal.ID), 10) + "/toggle?date=2026-03-10"

	response := env.do(t, http.MethodPost, togglePath, nil, cookie)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected toggle status 200, got %d", response.StatusCode)
	}
	first := completionResponse{}
	decodeJSON(t, response.Body, &first)
	if !first.Completion.Completed || !first.RewardSent {
		t.Fatalf("expected completed toggle with reward, got %#v", first)
	}

	messages := env.sender.Messages()
	if len(messages) != welcomeCount+1 {
		t.Fatalf("expected one reward email, got %d new messages", len(messages)-welcomeCount)
	}
	if messages[len(messages)-1].Subject != "Great job! All goals for today are done" {
		t.Fatalf("unexpected reward subject %q", messages[len(messages)-1].Subject)
	}

	response = env.do(t, http.MethodPost, togglePath, nil, cookie)
	second := completionResponse{}
	decodeJSON(t, response.Body, &second)
	if second.Completion.Completed || second.RewardSent {
		t.Fatalf("expected second toggle to clear completion without reward, got %#v", second)
	}
}

func TestUpdateGoalWithDateSetsCompletion(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.registerAndLogin(t, "maya")

	first := createGoal(t, env, cookie, map[string]any{"title": "Read", "start_date": "2026-03-01"})
	second := createGoal(t, env, cookie, map[string]any{"title": "Walk", "start_date": "2026-03-01"})

	firstPath := "/api/goals/" + strconv.FormatUint(uint64(first.ID), 10)
	response := env.do(t, http.MethodPut, firstPath, map[string]string{"status": "completed", "date": "2026-03-10"}, cookie)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	partial := completionResponse{}
	decodeJSON(t, response.Body, &partial)
	if !partial.Completion.Completed || partial.RewardSent {
		t.Fatalf("expected completion without reward while another goal is open, got %#v", partial)
	}

	secondPath := "/api/goals/" + strconv.FormatUint(uint64(second.ID), 10)
	response = env.do(t, http.MethodPut, secondPath, map[string]string{"status": "completed", "date": "2026-03-10"}, cookie)
	full := completionResponse{}
	decodeJSON(t, response.Body, &full)
	if !full.RewardSent {
		t.Fatalf("expected reward once every due goal is done, got %#v", full)
	}

	response = env.do(t, http.MethodPut, firstPath, map[string]string{"status": "finished"}, cookie)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid status, got %d", response.StatusCode)
	}
}

func TestDeleteGoalKeepsNotes(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.registerAndLogin(t, "maya")

	goal := createGoal(t, env, cookie, map[string]any{"title": "Read"})
	response := env.do(t, http.MethodPost, "/api/notes", map[string]any{"content": "chapter 3", "goal_id": goal.ID}, cookie)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected note status 201, got %d", response.StatusCode)
	}

	response = env.do(t, http.MethodDelete, "/api/goals/"+strconv.FormatUint(uint64(goal.ID), 10), nil, cookie)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected delete status 200, got %d", response.StatusCode)
	}

	response = env.do(t, http.MethodGet, "/api/notes", nil, cookie)
	notes := []struct {
		Content string `json:"content"`
		GoalID  *uint  `json:"goal_id"`
	}{}
	decodeJSON(t, response.Body, &notes)
	if len(notes) != 1 || notes[0].GoalID != nil {
		t.Fatalf("expected detached note to survive, got %#v", notes)
	}
}

func mustUserID(t *testing.T, env *testEnv, username string) uint {
	t.Helper()

	user, err := env.repositories.Users.FindByUsername(username)
	if err != nil {
		t.Fatalf("load user %s: %v", username, err)
	}
	return user.ID
}
