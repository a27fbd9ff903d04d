package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"study-quiz-service/internal/app"
	"study-quiz-service/internal/domain"
	"study-quiz-service/internal/infra/memory"
)

func newTestRouter() chi.Router {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewQuizStore(domain.PredefinedQuizzes(now))
	service := app.NewQuizServiceWithClock(store, domain.PredefinedNames(), func() time.Time { return now })

	r := chi.NewRouter()
	NewAPIHandler(service).Register(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

const validQuizJSON = `[
	{
		"reading": {"heading": "H", "points": ["p1"]},
		"test": [{"question": "Q?", "options": ["a", "b"], "correctAnswer": 1}]
	}
]`

func TestListTopics(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodGet, "/api/topics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var infos []domain.QuizInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 predefined quizzes, got %d", len(infos))
	}
}

func TestGetTopicsByName(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodGet, "/api/topic/"+domain.TemplesQuizName, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var topics []domain.Topic
	if err := json.Unmarshal(rec.Body.Bytes(), &topics); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(topics) == 0 || topics[0].Reading.Heading == "" {
		t.Fatalf("unexpected topics: %+v", topics)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/topic/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSaveQuizEndpoint(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/save-quiz", map[string]interface{}{
		"quizName": "My Quiz",
		"jsonData": json.RawMessage(validQuizJSON),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	quiz, ok := body["quiz"].(map[string]interface{})
	if !ok || quiz["name"] != "my_quiz" {
		t.Fatalf("unexpected quiz payload: %v", body)
	}

	// The legacy route serves the same handler.
	rec = doJSON(t, r, http.MethodPost, "/save-quiz", map[string]interface{}{
		"quizName": "Another",
		"jsonData": json.RawMessage(validQuizJSON),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on legacy route, got %d", rec.Code)
	}
}

func TestSaveQuizRejectsInvalidPayload(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/save-quiz", map[string]interface{}{
		"quizName": "Broken",
		"jsonData": json.RawMessage(`[{"reading": {"heading": "H", "points": []}, "test": "nope"}]`),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Topic 1 test must be an array" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestSaveQuizConflictOnPredefinedName(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodPost, "/api/save-quiz", map[string]interface{}{
		"quizName": "Temples",
		"jsonData": json.RawMessage(validQuizJSON),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "A quiz with this name already exists" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestUpdateQuizEndpoint(t *testing.T) {
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/save-quiz", map[string]interface{}{
		"quizName": "My Quiz",
		"jsonData": json.RawMessage(validQuizJSON),
	})
	rec := doJSON(t, r, http.MethodPut, "/api/update-quiz", map[string]interface{}{
		"quizName": "my_quiz",
		"jsonData": json.RawMessage(validQuizJSON),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPut, "/api/update-quiz", map[string]interface{}{
		"quizName": domain.TemplesQuizName,
		"jsonData": json.RawMessage(validQuizJSON),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for predefined, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Cannot update predefined topics" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestDeleteQuizEndpoint(t *testing.T) {
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/save-quiz", map[string]interface{}{
		"quizName": "My Quiz",
		"jsonData": json.RawMessage(validQuizJSON),
	})
	rec := doJSON(t, r, http.MethodDelete, "/api/delete-quiz", map[string]interface{}{"quizName": "my_quiz"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/delete-quiz", map[string]interface{}{"quizName": "my_quiz"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/delete-quiz", map[string]interface{}{"quizName": domain.TemplesQuizName})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for predefined, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Cannot delete predefined topics" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status app.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Healthy() || status.TotalQuizzes != 2 {
		t.Fatalf("unexpected health: %+v", status)
	}
}

// brokenStore fails every count so the health check sees a dead database.
type brokenStore struct {
	app.QuizStore
}

func (brokenStore) Count(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestHealthEndpointReportsStoreFailure(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := brokenStore{QuizStore: memory.NewQuizStore(nil)}
	service := app.NewQuizServiceWithClock(store, nil, func() time.Time { return now })
	r := chi.NewRouter()
	NewAPIHandler(service).Register(r)

	rec := doJSON(t, r, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the store is down, got %d", rec.Code)
	}
	var status app.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Healthy() || status.Database != "disconnected" {
		t.Fatalf("unexpected health: %+v", status)
	}
}
