package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"study-quiz-service/internal/app"
	"study-quiz-service/internal/domain"
	"study-quiz-service/internal/infra/memory"
)

var validTopics = json.RawMessage(`[
	{
		"reading": {"heading": "H", "points": ["p"]},
		"test": [{"question": "Q?", "options": ["a", "b"], "correctAnswer": 0}]
	}
]`)

func newTestService() *app.QuizService {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewQuizStore(domain.PredefinedQuizzes(now))
	return app.NewQuizServiceWithClock(store, domain.PredefinedNames(), func() time.Time { return now })
}

func TestSaveQuizAndList(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	info, err := service.SaveQuiz(ctx, "My Quiz", validTopics)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if info.Name != "my_quiz" || info.DisplayName != "My Quiz" || !info.IsCustom {
		t.Fatalf("unexpected info: %+v", info)
	}

	infos, err := service.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 quizzes, got %d", len(infos))
	}
	// Predefined first (alphabetical by display name), custom last.
	if infos[0].DisplayName != "Classical Dance" || infos[1].DisplayName != "Temples" {
		t.Fatalf("unexpected predefined ordering: %+v", infos)
	}
	if infos[2].Name != "my_quiz" {
		t.Fatalf("expected custom quiz last, got %+v", infos[2])
	}
}

func TestSaveQuizConflicts(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, err := service.SaveQuiz(ctx, "My Quiz", validTopics); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := service.SaveQuiz(ctx, "My Quiz", validTopics); err != domain.ErrQuizExists {
		t.Fatalf("expected conflict on resubmission, got %v", err)
	}
	// A name normalizing to the same slug collides too.
	if _, err := service.SaveQuiz(ctx, "my_quiz", validTopics); err != domain.ErrQuizExists {
		t.Fatalf("expected conflict on normalized collision, got %v", err)
	}
	// Reserved names collide even without a stored document.
	if _, err := service.SaveQuiz(ctx, "Temples", validTopics); err != domain.ErrQuizExists {
		t.Fatalf("expected conflict on predefined name, got %v", err)
	}
}

func TestSaveQuizValidation(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, err := service.SaveQuiz(ctx, "", validTopics); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := service.SaveQuiz(ctx, "???", validTopics); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unusable name, got %v", err)
	}
	bad := json.RawMessage(`[{"reading": {"heading": "H", "points": []}, "test": [{"question": "Q", "options": ["a"], "correctAnswer": 0}]}]`)
	_, err := service.SaveQuiz(ctx, "ok name", bad)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Topic 1, Question 1 must have at least 2 options" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPredefinedQuizzesAreProtected(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	for _, name := range domain.PredefinedNames() {
		if err := service.DeleteQuiz(ctx, name); err != domain.ErrQuizProtected {
			t.Fatalf("delete %s: expected protection, got %v", name, err)
		}
		if err := service.UpdateTopics(ctx, name, validTopics); err != domain.ErrQuizProtected {
			t.Fatalf("update %s: expected protection, got %v", name, err)
		}
	}
}

func TestStoredPredefinedProtectedWithoutReservation(t *testing.T) {
	// Even if the reserved list is empty, IsCustom=false still protects.
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewQuizStore(domain.PredefinedQuizzes(now))
	service := app.NewQuizServiceWithClock(store, nil, func() time.Time { return now })

	if err := service.DeleteQuiz(ctx, domain.TemplesQuizName); err != domain.ErrQuizProtected {
		t.Fatalf("expected protection via IsCustom, got %v", err)
	}
}

func TestUpdateAndDeleteCustomQuiz(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, err := service.SaveQuiz(ctx, "My Quiz", validTopics); err != nil {
		t.Fatalf("save: %v", err)
	}

	updated := json.RawMessage(`[
		{"reading": {"heading": "New", "points": []}, "test": []}
	]`)
	if err := service.UpdateTopics(ctx, "my_quiz", updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	topics, err := service.GetTopics(ctx, "my_quiz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(topics) != 1 || topics[0].Reading.Heading != "New" {
		t.Fatalf("update not visible: %+v", topics)
	}

	if err := service.DeleteQuiz(ctx, "my_quiz"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.DeleteQuiz(ctx, "my_quiz"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := service.UpdateTopics(ctx, "my_quiz", updated); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	service := newTestService()
	status := service.Health(context.Background())
	if !status.Healthy() || status.Database != "connected" {
		t.Fatalf("unexpected health: %+v", status)
	}
	if status.TotalQuizzes != 2 {
		t.Fatalf("expected 2 quizzes, got %d", status.TotalQuizzes)
	}
}
