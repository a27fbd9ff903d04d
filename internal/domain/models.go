package domain

import "time"

// Reading is the study material shown before a topic's test.
type Reading struct {
	Heading string   `json:"heading"`
	Points  []string `json:"points"`
}

// Question models an MCQ question whose correct answer is an index into Options.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Topic pairs one reading unit with its assessment questions.
type Topic struct {
	Reading Reading    `json:"reading"`
	Test    []Question `json:"test"`
}

// Quiz is a named, ordered sequence of topics. Name is the unique slug;
// quizzes with IsCustom=false are built-in and cannot be changed or removed.
type Quiz struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	IsCustom    bool      `json:"isCustom"`
	Topics      []Topic   `json:"topics"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// QuizInfo is the list projection of a quiz.
type QuizInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	IsCustom    bool   `json:"isCustom"`
}

// Info returns the list projection of q.
func (q Quiz) Info() QuizInfo {
	return QuizInfo{Name: q.Name, DisplayName: q.DisplayName, IsCustom: q.IsCustom}
}

// TotalQuestions sums the test lengths over all topics.
func TotalQuestions(topics []Topic) int {
	total := 0
	for _, t := range topics {
		total += len(t.Test)
	}
	return total
}
