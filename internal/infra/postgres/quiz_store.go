package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"study-quiz-service/internal/domain"
)

const uniqueViolation = "23505"

// QuizStore persists quiz documents in a quizzes table with the topic
// sequence stored as a JSONB column.
type QuizStore struct {
	pool *pgxpool.Pool
}

// NewQuizStore connects a pool to the given database URL.
func NewQuizStore(ctx context.Context, databaseURL string) (*QuizStore, error) {
	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &QuizStore{pool: pool}, nil
}

// NewQuizStoreFromPool wraps an existing pool. The caller keeps ownership.
func NewQuizStoreFromPool(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

// Close releases the underlying pool.
func (s *QuizStore) Close() {
	s.pool.Close()
}

func (s *QuizStore) List(ctx context.Context) ([]domain.QuizInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, display_name, is_custom FROM quizzes`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var infos []domain.QuizInfo
	for rows.Next() {
		var info domain.QuizInfo
		if err := rows.Scan(&info.Name, &info.DisplayName, &info.IsCustom); err != nil {
			return nil, fmt.Errorf("scan quiz row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return infos, nil
}

func (s *QuizStore) Get(ctx context.Context, name string) (domain.Quiz, error) {
	var quiz domain.Quiz
	var topics []byte
	err := s.pool.QueryRow(ctx,
		`SELECT name, display_name, is_custom, topics, created_at, updated_at
		 FROM quizzes WHERE name = $1`, name).
		Scan(&quiz.Name, &quiz.DisplayName, &quiz.IsCustom, &topics, &quiz.CreatedAt, &quiz.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz %s: %w", name, err)
	}
	if err := json.Unmarshal(topics, &quiz.Topics); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode topics for %s: %w", name, err)
	}
	return quiz, nil
}

func (s *QuizStore) Insert(ctx context.Context, quiz domain.Quiz) error {
	topics, err := json.Marshal(quiz.Topics)
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (name, display_name, is_custom, topics, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		quiz.Name, quiz.DisplayName, quiz.IsCustom, topics, quiz.CreatedAt, quiz.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrQuizExists
	}
	if err != nil {
		return fmt.Errorf("insert quiz %s: %w", quiz.Name, err)
	}
	return nil
}

func (s *QuizStore) UpdateTopics(ctx context.Context, name string, topics []domain.Topic, updatedAt time.Time) error {
	encoded, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET topics = $2, updated_at = $3 WHERE name = $1`,
		name, encoded, updatedAt)
	if err != nil {
		return fmt.Errorf("update quiz %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}

// SeedPredefined inserts the built-in quizzes, skipping ones already stored.
func (s *QuizStore) SeedPredefined(ctx context.Context, quizzes []domain.Quiz) error {
	for _, quiz := range quizzes {
		topics, err := json.Marshal(quiz.Topics)
		if err != nil {
			return fmt.Errorf("encode topics: %w", err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO quizzes (name, display_name, is_custom, topics, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (name) DO NOTHING`,
			quiz.Name, quiz.DisplayName, quiz.IsCustom, topics, quiz.CreatedAt, quiz.UpdatedAt)
		if err != nil {
			return fmt.Errorf("seed quiz %s: %w", quiz.Name, err)
		}
	}
	return nil
}
