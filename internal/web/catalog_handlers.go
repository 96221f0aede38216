package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-study/internal/catalog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type gradesResponse struct {
	Grades []catalog.Grade `json:"grades"`
}

type gradeExamsResponse struct {
	Exams         []catalog.Exam `json:"exams"`
	DefaultExamID string         `json:"defaultExamId,omitempty"`
}

func (s *Server) handleGrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gradesResponse{Grades: s.catalog.Grades()})
}

func (s *Server) handleGradeExams(w http.ResponseWriter, r *http.Request) {
	gradeID, err := strconv.Atoi(r.PathValue("gradeID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Grade must be a number.")
		return
	}
	if _, ok := s.catalog.Grade(gradeID); !ok {
		writeError(w, http.StatusNotFound, "Unknown grade.")
		return
	}

	resp := gradeExamsResponse{Exams: s.catalog.ExamsForGrade(gradeID)}
	if resp.Exams == nil {
		resp.Exams = []catalog.Exam{}
	}
	if exam, ok := s.catalog.DefaultExam(gradeID); ok {
		resp.DefaultExamID = exam.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	gradeID, err := strconv.Atoi(r.URL.Query().Get("grade"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Grade must be a number.")
		return
	}

	sel, ok := s.catalog.Select(gradeID, r.URL.Query().Get("exam"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown grade.")
		return
	}
	if sel.Exams == nil {
		sel.Exams = []catalog.Exam{}
	}
	if sel.Weightage == nil {
		sel.Weightage = []catalog.SubjectWeightage{}
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleWeightageWorkbook(w http.ResponseWriter, r *http.Request) {
	exam, ok := s.catalog.Exam(r.PathValue("examID"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown exam.")
		return
	}

	var buf bytes.Buffer
	if err := catalog.WriteWeightageWorkbook(&buf, exam); err != nil {
		slog.Error("failed to build weightage workbook", "exam_id", exam.ID, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-weightage.xlsx"`, exam.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write workbook", "exam_id", exam.ID, "error", err)
	}
}
