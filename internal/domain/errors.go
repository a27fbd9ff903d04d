package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound is returned when no quiz is stored under the requested name.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizExists is returned when inserting a quiz whose name is already taken.
	ErrQuizExists = errors.New("A quiz with this name already exists")
	// ErrQuizProtected is returned on attempts to mutate a predefined quiz.
	ErrQuizProtected = errors.New("predefined quizzes cannot be modified")
	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("quiz store unavailable")
)

// ValidationError carries the first structural violation found in a quiz
// payload. Its message is shown to the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
