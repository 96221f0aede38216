package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-study/internal/generation"
	"github.com/p-n-ai/pai-study/internal/quiz"
)

const wsReadTimeout = 30 * time.Second

// weakAreaList accepts either a JSON array or the comma-separated text a
// student types into a single field.
type weakAreaList []string

func (l *weakAreaList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*l = generation.ParseWeakAreas(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("weakAreas must be a string or a list of strings")
	}
	*l = list
	return nil
}

type studyPlanRequest struct {
	GradeID   int          `json:"gradeId"`
	ExamID    string       `json:"examId"`
	WeakAreas weakAreaList `json:"weakAreas"`
	StudyDays int          `json:"studyDays"`
}

type studyPlanResponse struct {
	Success bool   `json:"success"`
	Plan    string `json:"plan"`
}

type quizRequest struct {
	GradeID           int    `json:"gradeId"`
	ExamID            string `json:"examId"`
	Topic             string `json:"topic"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
}

type quizResponse struct {
	Success bool      `json:"success"`
	ID      string    `json:"id"`
	Quiz    quiz.View `json:"quiz"`
}

// Stream message types sent on /ws/study-plans.
const (
	streamChunk = "chunk"
	streamDone  = "done"
	streamError = "error"
)

type streamMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Plan    string `json:"plan,omitempty"`
	Error   string `json:"error,omitempty"`
}

// planInput checks the selection precondition and builds the generator input.
func (s *Server) planInput(req studyPlanRequest) (generation.StudyPlanInput, error) {
	grade, exam, err := s.catalog.Target(req.GradeID, req.ExamID)
	if err != nil {
		return generation.StudyPlanInput{}, err
	}
	return generation.StudyPlanInput{
		Grade:      grade.Name,
		TargetExam: exam.Name,
		WeakAreas:  req.WeakAreas,
		StudyDays:  req.StudyDays,
	}, nil
}

func (s *Server) handleStudyPlan(w http.ResponseWriter, r *http.Request) {
	var req studyPlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	in, err := s.planInput(req)
	if err == nil {
		var plan string
		plan, err = s.gen.RequestStudyPlan(r.Context(), in)
		if err == nil {
			writeJSON(w, http.StatusOK, studyPlanResponse{Success: true, Plan: plan})
			return
		}
	}

	status, msg := generationFailure(err, msgPlanFailed)
	writeError(w, status, msg)
}

func (s *Server) handleStudyPlanStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	var req studyPlanRequest
	readCtx, cancel := context.WithTimeout(ctx, wsReadTimeout)
	err = wsjson.Read(readCtx, conn, &req)
	cancel()
	if err != nil {
		slog.Warn("failed to read study plan request", "error", err)
		conn.Close(websocket.StatusUnsupportedData, "invalid request")
		return
	}

	in, err := s.planInput(req)
	if err == nil {
		var plan string
		plan, err = s.gen.StreamStudyPlan(ctx, in, func(chunk string) error {
			return wsjson.Write(ctx, conn, streamMessage{Type: streamChunk, Content: chunk})
		})
		if err == nil {
			if err := wsjson.Write(ctx, conn, streamMessage{Type: streamDone, Plan: plan}); err != nil {
				return
			}
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}

	if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
		return
	}
	_, msg := generationFailure(err, msgPlanFailed)
	if err := wsjson.Write(ctx, conn, streamMessage{Type: streamError, Error: msg}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, view, err := s.createQuiz(r.Context(), req)
	if err != nil {
		status, msg := generationFailure(err, msgQuizFailed)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusCreated, quizResponse{Success: true, ID: id, Quiz: view})
}

func (s *Server) createQuiz(ctx context.Context, req quizRequest) (string, quiz.View, error) {
	grade, exam, err := s.catalog.Target(req.GradeID, req.ExamID)
	if err != nil {
		return "", quiz.View{}, err
	}

	q, err := s.gen.RequestQuiz(ctx, generation.QuizInput{
		Topic:             req.Topic,
		GradeLevel:        grade.Name,
		ExamType:          exam.Name,
		NumberOfQuestions: req.NumberOfQuestions,
	})
	if err != nil {
		return "", quiz.View{}, err
	}

	session, err := quiz.NewSession(*q)
	if err != nil {
		return "", quiz.View{}, &generation.GenerationError{Op: generation.OpQuiz, Kind: generation.KindInvalid, Err: err}
	}
	id := s.quizzes.Create(session, quiz.Meta{GradeID: grade.ID, ExamID: exam.ID, Topic: req.Topic})
	return id, session.View(), nil
}
