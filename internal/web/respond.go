package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/generation"
	"github.com/p-n-ai/pai-study/internal/quiz"
)

const maxBodyBytes = 64 << 10

// User-facing messages.
const (
	msgNoExam          = "Please select a target exam first."
	msgPlanFailed      = "Failed to generate study plan."
	msgQuizFailed      = "Failed to generate quiz."
	msgBudgetExhausted = "Daily generation limit reached. Please try again tomorrow."
	msgUnanswered      = "Please select an answer first."
	msgSubmitted       = "This quiz has already been submitted."
	msgNotSubmitted    = "Submit the quiz to see the review."
	msgSessionNotFound = "Quiz not found or expired."
	msgInternal        = "Something went wrong."
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// generationFailure maps a generation-path error to a status and message.
// failMsg is shown for provider and output failures.
func generationFailure(err error, failMsg string) (int, string) {
	var ge *generation.GenerationError
	switch {
	case errors.Is(err, catalog.ErrNoExamSelected):
		return http.StatusUnprocessableEntity, msgNoExam
	case errors.Is(err, catalog.ErrUnknownSelection):
		return http.StatusBadRequest, sentence(err.Error())
	case errors.Is(err, generation.ErrInvalidInput):
		return http.StatusBadRequest, sentence(strings.TrimPrefix(err.Error(), generation.ErrInvalidInput.Error()+": "))
	case errors.As(err, &ge) && ge.Kind == generation.KindBudget:
		return http.StatusTooManyRequests, msgBudgetExhausted
	case errors.As(err, &ge):
		return http.StatusBadGateway, failMsg
	default:
		slog.Error("unexpected generation error", "error", err)
		return http.StatusInternalServerError, msgInternal
	}
}

// quizFailure maps a quiz session error to a status and message.
func quizFailure(err error) (int, string) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusNotFound, msgSessionNotFound
	case errors.Is(err, quiz.ErrUnanswered):
		return http.StatusConflict, msgUnanswered
	case errors.Is(err, quiz.ErrSubmitted):
		return http.StatusConflict, msgSubmitted
	case errors.Is(err, quiz.ErrInvalidOption):
		return http.StatusBadRequest, "That option is not one of the choices."
	default:
		slog.Error("unexpected quiz error", "error", err)
		return http.StatusInternalServerError, msgInternal
	}
}

// sentence capitalises msg and ends it with a full stop.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if size == 0 {
		return msg
	}
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
