package generation

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks requests rejected before any provider call.
var ErrInvalidInput = errors.New("invalid generation input")

// ErrorKind says why a generation failed.
type ErrorKind string

const (
	// KindProvider means the completion provider call failed.
	KindProvider ErrorKind = "provider"
	// KindEmpty means the provider returned no usable text.
	KindEmpty ErrorKind = "empty"
	// KindInvalid means the output broke the expected contract.
	KindInvalid ErrorKind = "invalid"
	// KindBudget means the client's daily token budget is spent.
	KindBudget ErrorKind = "budget"
)

// Op names the generation operation that failed.
type Op string

const (
	OpStudyPlan Op = "study_plan"
	OpQuiz      Op = "quiz"
)

// GenerationError reports a failed study plan or quiz generation. No partial
// result accompanies it.
type GenerationError struct {
	Op   Op
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func genErr(op Op, kind ErrorKind, err error) *GenerationError {
	return &GenerationError{Op: op, Kind: kind, Err: err}
}

// IsGenerationError reports whether err is or wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
