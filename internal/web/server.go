// Package web serves the study catalog, plan and quiz generation, and quiz
// sessions over a JSON HTTP API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/generation"
	"github.com/p-n-ai/pai-study/internal/quiz"
)

const readyTimeout = 2 * time.Second

// Generator produces study plans and quizzes.
type Generator interface {
	RequestStudyPlan(ctx context.Context, in generation.StudyPlanInput) (string, error)
	StreamStudyPlan(ctx context.Context, in generation.StudyPlanInput, onChunk func(string) error) (string, error)
	RequestQuiz(ctx context.Context, in generation.QuizInput) (*quiz.Quiz, error)
}

// Checker is a dependency checked by the readiness endpoint.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds the server's dependencies.
type Config struct {
	Catalog   *catalog.Catalog
	Generator Generator
	Quizzes   *quiz.Registry
	// Checks are run by /readyz, keyed by name. Nil entries are skipped.
	Checks map[string]Checker
}

// Server is the HTTP front end.
type Server struct {
	catalog *catalog.Catalog
	gen     Generator
	quizzes *quiz.Registry
	checks  map[string]Checker
}

// NewServer creates a server. A nil quiz registry gets an unbounded one.
func NewServer(cfg Config) *Server {
	s := &Server{
		catalog: cfg.Catalog,
		gen:     cfg.Generator,
		quizzes: cfg.Quizzes,
		checks:  cfg.Checks,
	}
	if s.quizzes == nil {
		s.quizzes = quiz.NewRegistry(0)
	}
	return s
}

// Handler returns the routed handler wrapped in request middleware.
func (s *Server) Handler() http.Handler {
	return logRequests(withClientID(s.routes()))
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/grades", s.handleGrades)
	mux.HandleFunc("GET /api/grades/{gradeID}/exams", s.handleGradeExams)
	mux.HandleFunc("GET /api/selection", s.handleSelection)
	mux.HandleFunc("GET /api/exams/{examID}/weightage.xlsx", s.handleWeightageWorkbook)

	mux.HandleFunc("POST /api/study-plans", s.handleStudyPlan)
	mux.HandleFunc("GET /ws/study-plans", s.handleStudyPlanStream)

	mux.HandleFunc("POST /api/quizzes", s.handleCreateQuiz)
	mux.HandleFunc("GET /api/quizzes/{id}", s.handleGetQuiz)
	mux.HandleFunc("POST /api/quizzes/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/quizzes/{id}/next", s.handleNext)
	mux.HandleFunc("POST /api/quizzes/{id}/submit", s.handleSubmit)
	mux.HandleFunc("GET /api/quizzes/{id}/review", s.handleReview)
	mux.HandleFunc("DELETE /api/quizzes/{id}", s.handleCloseQuiz)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if c == nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}
