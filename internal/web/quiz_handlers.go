package web

import (
	"net/http"

	"github.com/p-n-ai/pai-study/internal/quiz"
)

type answerRequest struct {
	Option string `json:"option"`
}

type reviewResponse struct {
	Score  int               `json:"score"`
	Total  int               `json:"total"`
	Review []quiz.ReviewItem `json:"review"`
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.quizzes.Get(r.PathValue("id"))
	if err != nil {
		status, msg := quizFailure(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	s.mutateQuiz(w, r.PathValue("id"), func(sess *quiz.Session) error {
		return sess.SelectAnswer(req.Option)
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mutateQuiz(w, r.PathValue("id"), (*quiz.Session).Next)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mutateQuiz(w, r.PathValue("id"), func(sess *quiz.Session) error {
		sess.Submit()
		return nil
	})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var (
		resp      reviewResponse
		submitted bool
	)
	err := s.quizzes.Do(r.PathValue("id"), func(sess *quiz.Session, _ quiz.Meta) error {
		submitted = sess.Submitted()
		resp = reviewResponse{Score: sess.Score(), Total: sess.Len(), Review: sess.Review()}
		return nil
	})
	if err != nil {
		status, msg := quizFailure(err)
		writeError(w, status, msg)
		return
	}
	if !submitted {
		writeError(w, http.StatusConflict, msgNotSubmitted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.quizzes.Close(r.PathValue("id")); err != nil {
		status, msg := quizFailure(err)
		writeError(w, status, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutateQuiz applies fn to the session and responds with its new view. The
// view is also returned alongside state errors so the client can resync.
func (s *Server) mutateQuiz(w http.ResponseWriter, id string, fn func(*quiz.Session) error) {
	var (
		view  quiz.View
		fnErr error
	)
	err := s.quizzes.Do(id, func(sess *quiz.Session, _ quiz.Meta) error {
		fnErr = fn(sess)
		view = sess.View()
		return nil
	})
	if err != nil {
		status, msg := quizFailure(err)
		writeError(w, status, msg)
		return
	}
	if fnErr != nil {
		status, msg := quizFailure(fnErr)
		writeJSON(w, status, quizStateError{Success: false, Error: msg, Quiz: view})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type quizStateError struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Quiz    quiz.View `json:"quiz"`
}
