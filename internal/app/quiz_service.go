package app

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"study-quiz-service/internal/domain"
)

// QuizStore abstracts how quiz documents are persisted (Postgres, in-memory,
// cached). Implementations map their storage errors onto the domain sentinels.
type QuizStore interface {
	List(ctx context.Context) ([]domain.QuizInfo, error)
	Get(ctx context.Context, name string) (domain.Quiz, error)
	Insert(ctx context.Context, quiz domain.Quiz) error
	UpdateTopics(ctx context.Context, name string, topics []domain.Topic, updatedAt time.Time) error
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int64, error)
}

// HealthStatus is the service health report.
type HealthStatus struct {
	Status       string    `json:"status"`
	Database     string    `json:"database"`
	TotalQuizzes int64     `json:"totalQuizzes"`
	Timestamp    time.Time `json:"timestamp"`
}

// QuizService contains the quiz management use cases. Validation and name
// normalization happen here, in front of whatever store backs the service,
// so the persistence boundary and the authoring boundary share one rule set.
type QuizService struct {
	store    QuizStore
	reserved map[string]struct{}
	now      func() time.Time
}

// NewQuizService builds the service. reserved names are rejected for writes
// on top of whatever the store already protects via IsCustom=false.
func NewQuizService(store QuizStore, reserved []string) *QuizService {
	return NewQuizServiceWithClock(store, reserved, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(store QuizStore, reserved []string, now func() time.Time) *QuizService {
	set := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		set[name] = struct{}{}
	}
	return &QuizService{store: store, reserved: set, now: now}
}

// ListQuizzes returns all quizzes, predefined first, then alphabetically by
// display name within each group.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.QuizInfo, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].IsCustom != infos[j].IsCustom {
			return !infos[i].IsCustom
		}
		return infos[i].DisplayName < infos[j].DisplayName
	})
	return infos, nil
}

// GetTopics returns the study sequence for the named quiz.
func (s *QuizService) GetTopics(ctx context.Context, name string) ([]domain.Topic, error) {
	quiz, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return quiz.Topics, nil
}

// GetQuiz returns the full stored document.
func (s *QuizService) GetQuiz(ctx context.Context, name string) (domain.Quiz, error) {
	return s.store.Get(ctx, name)
}

// SaveQuiz validates and persists a new custom quiz. The raw name is kept as
// the display name; its normalized form becomes the unique slug.
func (s *QuizService) SaveQuiz(ctx context.Context, rawName string, data json.RawMessage) (domain.QuizInfo, error) {
	if strings.TrimSpace(rawName) == "" || len(data) == 0 {
		return domain.QuizInfo{}, &domain.ValidationError{Message: "Quiz name and JSON data are required"}
	}

	topics, err := domain.ValidateTopics(data)
	if err != nil {
		return domain.QuizInfo{}, err
	}

	name := domain.NormalizeName(rawName)
	if name == "" {
		return domain.QuizInfo{}, &domain.ValidationError{Message: "Invalid quiz name after cleaning"}
	}
	if s.isReserved(name) {
		return domain.QuizInfo{}, domain.ErrQuizExists
	}

	now := s.now()
	quiz := domain.Quiz{
		Name:        name,
		DisplayName: strings.TrimSpace(rawName),
		IsCustom:    true,
		Topics:      topics,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, quiz); err != nil {
		return domain.QuizInfo{}, err
	}
	return quiz.Info(), nil
}

// UpdateTopics replaces the topic sequence of an existing custom quiz.
// Predefined quizzes are protected regardless of the payload.
func (s *QuizService) UpdateTopics(ctx context.Context, name string, data json.RawMessage) error {
	if strings.TrimSpace(name) == "" || len(data) == 0 {
		return &domain.ValidationError{Message: "Quiz name and JSON data are required"}
	}
	if s.isReserved(name) {
		return domain.ErrQuizProtected
	}

	quiz, err := s.store.Get(ctx, name)
	if err != nil {
		return err
	}
	if !quiz.IsCustom {
		return domain.ErrQuizProtected
	}

	topics, err := domain.ValidateTopics(data)
	if err != nil {
		return err
	}
	return s.store.UpdateTopics(ctx, name, topics, s.now())
}

// DeleteQuiz removes a custom quiz. Predefined quizzes are protected.
func (s *QuizService) DeleteQuiz(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Message: "Quiz name is required"}
	}
	if s.isReserved(name) {
		return domain.ErrQuizProtected
	}

	quiz, err := s.store.Get(ctx, name)
	if err != nil {
		return err
	}
	if !quiz.IsCustom {
		return domain.ErrQuizProtected
	}
	return s.store.Delete(ctx, name)
}

// Health reports store reachability and the stored quiz count.
func (s *QuizService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "healthy", Database: "connected", Timestamp: s.now().UTC()}
	count, err := s.store.Count(ctx)
	if err != nil {
		status.Status = "unhealthy"
		status.Database = "disconnected"
		return status
	}
	status.TotalQuizzes = count
	return status
}

// Healthy reports whether the last health check would pass.
func (h HealthStatus) Healthy() bool { return h.Status == "healthy" }

func (s *QuizService) isReserved(name string) bool {
	_, ok := s.reserved[name]
	return ok
}
