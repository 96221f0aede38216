// Package quiz models a generated practice quiz and the answering/review
// session a student takes it through.
package quiz

import (
	"errors"
	"fmt"
)

// Question is a multiple-choice question with exactly one correct option.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Quiz is a titled, ordered list of questions.
type Quiz struct {
	Title     string     `json:"quizTitle"`
	Questions []Question `json:"questions"`
}

// ErrEmptyQuiz is returned for a quiz without questions.
var ErrEmptyQuiz = errors.New("quiz has no questions")

// Validate checks that the quiz can be taken: it has questions, each question
// has text and at least two distinct options, and each correct answer is one
// of its options.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return ErrEmptyQuiz
	}
	for i, question := range q.Questions {
		if question.Question == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		seen := make(map[string]bool, len(question.Options))
		for _, o := range question.Options {
			if seen[o] {
				return fmt.Errorf("question %d has duplicate option %q", i+1, o)
			}
			seen[o] = true
		}
		if len(seen) < 2 {
			return fmt.Errorf("question %d needs at least two options, got %d", i+1, len(seen))
		}
		if !seen[question.CorrectAnswer] {
			return fmt.Errorf("question %d: correct answer %q is not one of its options", i+1, question.CorrectAnswer)
		}
	}
	return nil
}
