package memory

import (
	"context"
	"sync"
	"time"

	"study-quiz-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore. It backs the
// no-database demo mode and the unit tests.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

// NewQuizStore builds a store pre-populated with seed quizzes.
func NewQuizStore(seed []domain.Quiz) *QuizStore {
	quizzes := make(map[string]domain.Quiz, len(seed))
	for _, quiz := range seed {
		quizzes[quiz.Name] = quiz
	}
	return &QuizStore{quizzes: quizzes}
}

func (s *QuizStore) List(_ context.Context) ([]domain.QuizInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]domain.QuizInfo, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		infos = append(infos, quiz.Info())
	}
	return infos, nil
}

func (s *QuizStore) Get(_ context.Context, name string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[name]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizStore) Insert(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.Name]; ok {
		return domain.ErrQuizExists
	}
	s.quizzes[quiz.Name] = quiz
	return nil
}

func (s *QuizStore) UpdateTopics(_ context.Context, name string, topics []domain.Topic, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[name]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Topics = topics
	quiz.UpdatedAt = updatedAt
	s.quizzes[name] = quiz
	return nil
}

func (s *QuizStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[name]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, name)
	return nil
}

func (s *QuizStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.quizzes)), nil
}
