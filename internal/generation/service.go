// Package generation turns study plan and quiz requests into completion calls,
// and checks what comes back before it reaches a student.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/quiz"
)

const (
	defaultNumberOfQuestions = 5
	defaultMaxQuestions      = 20
	defaultMaxTokens         = 2048
	defaultTimeout           = 60 * time.Second
	minTopicLength           = 3
	defaultStudyDays         = 7
	maxStudyDays             = 30
)

// StudyPlanInput is what a study plan is generated from. A zero StudyDays
// means a one-week plan.
type StudyPlanInput struct {
	Grade      string   `json:"grade"`
	TargetExam string   `json:"targetExam"`
	WeakAreas  []string `json:"weakAreas"`
	StudyDays  int      `json:"studyDays"`
}

// QuizInput is what a practice quiz is generated from. A zero
// NumberOfQuestions means the configured default.
type QuizInput struct {
	Topic             string `json:"topic"`
	GradeLevel        string `json:"gradeLevel"`
	ExamType          string `json:"examType"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
}

// ServiceConfig holds dependencies and limits for the generation service.
type ServiceConfig struct {
	LLM              ai.Completer
	Budget           ai.BudgetChecker // nil means unlimited
	Events           EventLogger      // nil discards events
	Model            string           // empty uses the provider default
	MaxTokens        int              // default 2048
	Timeout          time.Duration    // per provider call, default 60s
	DefaultQuestions int              // default 5
	MaxQuestions     int              // default 20
}

// Service generates study plans and quizzes. Each operation makes exactly one
// completion call and never caches.
type Service struct {
	llm              ai.Completer
	budget           ai.BudgetChecker
	events           EventLogger
	model            string
	maxTokens        int
	timeout          time.Duration
	defaultQuestions int
	maxQuestions     int
}

// NewService creates a generation service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		llm:              cfg.LLM,
		budget:           cfg.Budget,
		events:           cfg.Events,
		model:            cfg.Model,
		maxTokens:        cfg.MaxTokens,
		timeout:          cfg.Timeout,
		defaultQuestions: cfg.DefaultQuestions,
		maxQuestions:     cfg.MaxQuestions,
	}
	if s.budget == nil {
		s.budget = ai.UnlimitedBudget{}
	}
	if s.events == nil {
		s.events = NopEventLogger{}
	}
	if s.maxTokens == 0 {
		s.maxTokens = defaultMaxTokens
	}
	if s.timeout == 0 {
		s.timeout = defaultTimeout
	}
	if s.defaultQuestions == 0 {
		s.defaultQuestions = defaultNumberOfQuestions
	}
	if s.maxQuestions == 0 {
		s.maxQuestions = defaultMaxQuestions
	}
	return s
}

// RequestStudyPlan asks the provider for a study plan targeting the given
// weak areas. Failures after input validation are *GenerationError.
func (s *Service) RequestStudyPlan(ctx context.Context, in StudyPlanInput) (string, error) {
	in, err := s.normalizeStudyPlan(in)
	if err != nil {
		return "", err
	}
	if err := s.checkBudget(ctx, OpStudyPlan); err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := s.complete(ctx, ai.CompletionRequest{
		Messages:    studyPlanMessages(in),
		Task:        ai.TaskStudyPlan,
		Temperature: 0.7,
	})
	if err != nil {
		return "", s.fail(ctx, OpStudyPlan, KindProvider, err, in.TargetExam)
	}
	s.recordUsage(ctx, resp.TotalTokens())

	plan := strings.TrimSpace(resp.Content)
	if plan == "" {
		return "", s.fail(ctx, OpStudyPlan, KindEmpty, errors.New("provider returned an empty plan"), in.TargetExam)
	}

	s.logEvent(ctx, EventStudyPlanGenerated, map[string]any{
		"exam":          in.TargetExam,
		"weak_areas":    len(in.WeakAreas),
		"study_days":    in.StudyDays,
		"provider":      resp.Provider,
		"model":         resp.Model,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
		"latency_ms":    time.Since(start).Milliseconds(),
	})
	return plan, nil
}

// StreamStudyPlan is RequestStudyPlan delivered incrementally: onChunk is
// called with each piece of text as it arrives, and the full plan is
// returned at the end. An error from onChunk aborts the stream.
func (s *Service) StreamStudyPlan(ctx context.Context, in StudyPlanInput, onChunk func(string) error) (string, error) {
	in, err := s.normalizeStudyPlan(in)
	if err != nil {
		return "", err
	}
	if err := s.checkBudget(ctx, OpStudyPlan); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	req := ai.CompletionRequest{
		Messages:    studyPlanMessages(in),
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Task:        ai.TaskStudyPlan,
		Temperature: 0.7,
	}
	ch, err := s.llm.StreamComplete(ctx, req)
	if err != nil {
		return "", s.fail(ctx, OpStudyPlan, KindProvider, err, in.TargetExam)
	}

	var plan strings.Builder
	for chunk := range ch {
		if chunk.Error != nil {
			return "", s.fail(ctx, OpStudyPlan, KindProvider, chunk.Error, in.TargetExam)
		}
		if chunk.Content != "" {
			plan.WriteString(chunk.Content)
			if err := onChunk(chunk.Content); err != nil {
				cancel()
				return "", fmt.Errorf("delivering plan chunk: %w", err)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", s.fail(ctx, OpStudyPlan, KindProvider, err, in.TargetExam)
	}

	text := strings.TrimSpace(plan.String())
	if text == "" {
		return "", s.fail(ctx, OpStudyPlan, KindEmpty, errors.New("provider returned an empty plan"), in.TargetExam)
	}
	// Streams carry no usage metadata, so charge an estimate.
	s.recordUsage(ctx, estimateTokens(req.Messages, text))

	s.logEvent(ctx, EventStudyPlanGenerated, map[string]any{
		"exam":       in.TargetExam,
		"weak_areas": len(in.WeakAreas),
		"streamed":   true,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	return text, nil
}

// RequestQuiz asks the provider for a multiple-choice quiz. The reply must
// match the quiz schema, contain exactly the requested number of questions,
// and give each question at least two distinct options including its correct
// answer; anything else is a *GenerationError.
func (s *Service) RequestQuiz(ctx context.Context, in QuizInput) (*quiz.Quiz, error) {
	in, err := s.normalizeQuiz(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkBudget(ctx, OpQuiz); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.complete(ctx, ai.CompletionRequest{
		Messages:    quizMessages(in),
		Task:        ai.TaskQuiz,
		Temperature: 0.4,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, s.fail(ctx, OpQuiz, KindProvider, err, in.ExamType)
	}
	s.recordUsage(ctx, resp.TotalTokens())

	q, kind, err := decodeQuiz(resp.Content, in.NumberOfQuestions)
	if err != nil {
		return nil, s.fail(ctx, OpQuiz, kind, err, in.ExamType)
	}

	s.logEvent(ctx, EventQuizGenerated, map[string]any{
		"exam":          in.ExamType,
		"questions":     len(q.Questions),
		"provider":      resp.Provider,
		"model":         resp.Model,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
		"latency_ms":    time.Since(start).Milliseconds(),
	})
	return q, nil
}

// decodeQuiz parses and checks provider output for a quiz of want questions.
func decodeQuiz(content string, want int) (*quiz.Quiz, ErrorKind, error) {
	if strings.TrimSpace(content) == "" {
		return nil, KindEmpty, errors.New("provider returned no quiz")
	}
	raw, ok := extractJSON(content)
	if !ok {
		return nil, KindInvalid, errors.New("no JSON object in provider output")
	}
	if err := validateQuizJSON([]byte(raw)); err != nil {
		return nil, KindInvalid, err
	}

	var q quiz.Quiz
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, KindInvalid, fmt.Errorf("decoding quiz: %w", err)
	}
	if len(q.Questions) != want {
		return nil, KindInvalid, fmt.Errorf("asked for %d questions, got %d", want, len(q.Questions))
	}
	if err := q.Validate(); err != nil {
		return nil, KindInvalid, err
	}
	return &q, "", nil
}

func (s *Service) normalizeStudyPlan(in StudyPlanInput) (StudyPlanInput, error) {
	in.Grade = strings.TrimSpace(in.Grade)
	in.TargetExam = strings.TrimSpace(in.TargetExam)
	in.WeakAreas = normalizeWeakAreas(in.WeakAreas)
	if in.StudyDays == 0 {
		in.StudyDays = defaultStudyDays
	}

	switch {
	case in.Grade == "":
		return in, fmt.Errorf("%w: grade is required", ErrInvalidInput)
	case in.TargetExam == "":
		return in, fmt.Errorf("%w: target exam is required", ErrInvalidInput)
	case len(in.WeakAreas) == 0:
		return in, fmt.Errorf("%w: please enter at least one area of weakness", ErrInvalidInput)
	case in.StudyDays < 1 || in.StudyDays > maxStudyDays:
		return in, fmt.Errorf("%w: study days must be between 1 and %d", ErrInvalidInput, maxStudyDays)
	}
	return in, nil
}

func (s *Service) normalizeQuiz(in QuizInput) (QuizInput, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	in.GradeLevel = strings.TrimSpace(in.GradeLevel)
	in.ExamType = strings.TrimSpace(in.ExamType)
	if in.NumberOfQuestions == 0 {
		in.NumberOfQuestions = s.defaultQuestions
	}

	switch {
	case utf8.RuneCountInString(in.Topic) < minTopicLength:
		return in, fmt.Errorf("%w: please enter a topic for the quiz", ErrInvalidInput)
	case in.GradeLevel == "":
		return in, fmt.Errorf("%w: grade level is required", ErrInvalidInput)
	case in.ExamType == "":
		return in, fmt.Errorf("%w: exam type is required", ErrInvalidInput)
	case in.NumberOfQuestions < 0 || in.NumberOfQuestions > s.maxQuestions:
		return in, fmt.Errorf("%w: number of questions must be between 1 and %d", ErrInvalidInput, s.maxQuestions)
	}
	return in, nil
}

// complete runs one completion under the configured timeout.
func (s *Service) complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req.Model = s.model
	req.MaxTokens = s.maxTokens
	return s.llm.Complete(ctx, req)
}

func (s *Service) checkBudget(ctx context.Context, op Op) error {
	ok, err := s.budget.Check(ctx, ClientID(ctx))
	if err != nil {
		// Budget store errors fail open.
		slog.Warn("token budget check failed", "client_id", ClientID(ctx), "error", err)
		return nil
	}
	if !ok {
		return s.fail(ctx, op, KindBudget, errors.New("daily token budget exhausted"), "")
	}
	return nil
}

func (s *Service) recordUsage(ctx context.Context, tokens int) {
	if err := s.budget.Record(ctx, ClientID(ctx), tokens); err != nil {
		slog.Warn("failed to record token usage", "client_id", ClientID(ctx), "error", err)
	}
}

func (s *Service) fail(ctx context.Context, op Op, kind ErrorKind, err error, exam string) *GenerationError {
	ge := genErr(op, kind, err)
	slog.Error("generation failed",
		"op", string(op),
		"kind", string(kind),
		"client_id", ClientID(ctx),
		"error", err,
	)
	s.logEvent(ctx, EventGenerationFailed, map[string]any{
		"op":   string(op),
		"kind": string(kind),
		"exam": exam,
	})
	return ge
}

func (s *Service) logEvent(ctx context.Context, eventType string, data map[string]any) {
	if err := s.events.LogEvent(ctx, Event{
		Type:     eventType,
		ClientID: ClientID(ctx),
		Data:     data,
	}); err != nil {
		slog.Warn("failed to log generation event", "type", eventType, "error", err)
	}
}

// estimateTokens approximates usage at four characters per token.
func estimateTokens(messages []ai.Message, output string) int {
	n := utf8.RuneCountInString(output)
	for _, m := range messages {
		n += utf8.RuneCountInString(m.Content)
	}
	return n / 4
}
