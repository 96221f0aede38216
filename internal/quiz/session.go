package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrUnanswered is returned by Next when the current question has no answer.
	ErrUnanswered = errors.New("current question has not been answered")
	// ErrSubmitted is returned by Next once the quiz has been submitted.
	ErrSubmitted = errors.New("quiz already submitted")
	// ErrInvalidOption is returned when an answer is not one of the question's options.
	ErrInvalidOption = errors.New("option is not one of the question's options")
)

// AnswerState classifies an option in review mode.
type AnswerState string

const (
	StateCorrect   AnswerState = "correct"
	StateIncorrect AnswerState = "incorrect"
	StateNeutral   AnswerState = "neutral"
)

// Session walks a student through a quiz: answering questions one at a time,
// then reviewing results once submitted. A Session is not safe for concurrent
// use; Registry serializes access.
type Session struct {
	quiz      Quiz
	current   int
	selected  map[int]string
	submitted bool
	score     int
}

// NewSession starts a session on the first question.
func NewSession(q Quiz) (*Session, error) {
	if len(q.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	return &Session{
		quiz:     q,
		selected: make(map[int]string),
	}, nil
}

// Quiz returns the quiz being taken.
func (s *Session) Quiz() Quiz { return s.quiz }

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.quiz.Questions) }

// CurrentIndex returns the zero-based index of the question on screen.
func (s *Session) CurrentIndex() int { return s.current }

// Submitted reports whether the quiz has been scored.
func (s *Session) Submitted() bool { return s.submitted }

// Score returns the number of correct answers. It is only meaningful once
// the session is submitted.
func (s *Session) Score() int { return s.score }

// Selected returns the answer recorded for question i.
func (s *Session) Selected(i int) (string, bool) {
	a, ok := s.selected[i]
	return a, ok
}

// SelectAnswer records option for the current question. After submission it
// is a no-op.
func (s *Session) SelectAnswer(option string) error {
	if s.submitted {
		return nil
	}
	if !s.quiz.Questions[s.current].HasOption(option) {
		return fmt.Errorf("%w: %q", ErrInvalidOption, option)
	}
	s.selected[s.current] = option
	return nil
}

// CanAdvance reports whether Next would move on, i.e. the quiz is still being
// answered and the current question has an answer.
func (s *Session) CanAdvance() bool {
	if s.submitted {
		return false
	}
	_, ok := s.selected[s.current]
	return ok
}

// IsLast reports whether the current question is the final one.
func (s *Session) IsLast() bool {
	return s.current == len(s.quiz.Questions)-1
}

// Next moves to the following question, or submits on the last one.
// It leaves the session untouched and returns ErrUnanswered if the current
// question has no answer yet.
func (s *Session) Next() error {
	if s.submitted {
		return ErrSubmitted
	}
	if !s.CanAdvance() {
		return ErrUnanswered
	}
	if !s.IsLast() {
		s.current++
		return nil
	}
	s.Submit()
	return nil
}

// Submit scores the quiz and rewinds to the first question for review.
// Unanswered questions count as wrong. Submitting twice keeps the first score.
func (s *Session) Submit() int {
	if s.submitted {
		return s.score
	}
	score := 0
	for i, q := range s.quiz.Questions {
		if a, ok := s.selected[i]; ok && a == q.CorrectAnswer {
			score++
		}
	}
	s.score = score
	s.submitted = true
	s.current = 0
	return score
}

// Classify returns how option should be marked for question i in review.
// Before submission every option is neutral.
func (s *Session) Classify(i int, option string) AnswerState {
	if !s.submitted || i < 0 || i >= len(s.quiz.Questions) {
		return StateNeutral
	}
	if option == s.quiz.Questions[i].CorrectAnswer {
		return StateCorrect
	}
	if a, ok := s.selected[i]; ok && a == option {
		return StateIncorrect
	}
	return StateNeutral
}

// Progress returns the share of the quiz reached, in percent, counting the
// current question as reached.
func (s *Session) Progress() float64 {
	return float64(s.current+1) / float64(len(s.quiz.Questions)) * 100
}

// OptionReview is one option with its review mark.
type OptionReview struct {
	Option string      `json:"option"`
	State  AnswerState `json:"state"`
}

// ReviewItem is the review of a single question.
type ReviewItem struct {
	Index    int            `json:"index"`
	Question string         `json:"question"`
	Selected string         `json:"selected,omitempty"`
	Correct  bool           `json:"correct"`
	Options  []OptionReview `json:"options"`
}

// Review returns every question with its options classified. It returns nil
// until the quiz is submitted.
func (s *Session) Review() []ReviewItem {
	if !s.submitted {
		return nil
	}
	items := make([]ReviewItem, len(s.quiz.Questions))
	for i, q := range s.quiz.Questions {
		selected := s.selected[i]
		item := ReviewItem{
			Index:    i,
			Question: q.Question,
			Selected: selected,
			Correct:  selected == q.CorrectAnswer,
			Options:  make([]OptionReview, len(q.Options)),
		}
		for j, o := range q.Options {
			item.Options[j] = OptionReview{Option: o, State: s.Classify(i, o)}
		}
		items[i] = item
	}
	return items
}

// QuestionView is a question as shown while answering; the correct answer is
// withheld.
type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// View is a serializable snapshot of a session.
type View struct {
	Title      string        `json:"quizTitle"`
	Total      int           `json:"total"`
	Index      int           `json:"index"`
	Progress   float64       `json:"progress"`
	Question   *QuestionView `json:"question,omitempty"`
	Selected   string        `json:"selected,omitempty"`
	CanAdvance bool          `json:"canAdvance"`
	IsLast     bool          `json:"isLast"`
	Submitted  bool          `json:"submitted"`
	Score      *int          `json:"score,omitempty"`
	Review     []ReviewItem  `json:"review,omitempty"`
}

// View returns a snapshot of the session. While answering it carries the
// current question; once submitted it carries the score and review instead.
func (s *Session) View() View {
	v := View{
		Title:      s.quiz.Title,
		Total:      len(s.quiz.Questions),
		Index:      s.current,
		Progress:   s.Progress(),
		Selected:   s.selected[s.current],
		CanAdvance: s.CanAdvance(),
		IsLast:     s.IsLast(),
		Submitted:  s.submitted,
	}
	if s.submitted {
		score := s.score
		v.Score = &score
		v.Review = s.Review()
		v.Selected = ""
		return v
	}
	q := s.quiz.Questions[s.current]
	v.Question = &QuestionView{Question: q.Question, Options: append([]string(nil), q.Options...)}
	return v
}
