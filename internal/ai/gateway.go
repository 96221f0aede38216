// Package ai provides a provider-agnostic completion gateway used to
// generate study plans and practice quizzes.
package ai

import "context"

// TaskType identifies what a completion is for. It is carried through to logs
// and generation events.
type TaskType int

const (
	TaskStudyPlan TaskType = iota
	TaskQuiz
)

func (t TaskType) String() string {
	switch t {
	case TaskStudyPlan:
		return "study_plan"
	case TaskQuiz:
		return "quiz"
	default:
		return "unknown"
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
	// JSONOutput asks the provider to emit a single JSON object when it has a
	// native mode for it. Providers without one rely on the prompt.
	JSONOutput bool `json:"json_output,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Provider     string `json:"provider,omitempty"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// StreamChunk represents a streaming response chunk.
type StreamChunk struct {
	Content string
	Done    bool
	Error   error
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}

// Completer is the narrow view callers need to run a completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
}

// singleChunk adapts a blocking completion into a one-chunk stream.
func singleChunk(ctx context.Context, complete func(context.Context, CompletionRequest) (CompletionResponse, error), req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := complete(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan StreamChunk, 1)
	ch <- StreamChunk{Content: resp.Content, Done: true}
	close(ch)
	return ch, nil
}
