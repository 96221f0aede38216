// Package catalog holds the static grade, exam and resource catalog and the
// selection rules that derive what a student sees for a grade/exam pair.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNoExamSelected is returned when generation is requested before a target
// exam has been chosen.
var ErrNoExamSelected = errors.New("please select a target exam first")

// ErrUnknownSelection is returned when a grade or exam ID is not in the
// catalog, or the exam is not offered to the grade.
var ErrUnknownSelection = errors.New("unknown grade or exam")

//go:embed data/catalog.yaml
var defaultYAML []byte

// Catalog is an immutable, ordered set of grades, exams and resources.
// It is safe for concurrent use.
type Catalog struct {
	grades    []Grade
	exams     []Exam
	resources []Resource
}

// Default returns the compiled-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Parse decodes a single catalog YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return New(doc.Grades, doc.Exams, doc.Resources)
}

// New builds a catalog, keeping the given order, after checking that IDs are
// unique and every reference resolves.
func New(grades []Grade, exams []Exam, resources []Resource) (*Catalog, error) {
	gradeIDs := make(map[int]bool, len(grades))
	for _, g := range grades {
		if gradeIDs[g.ID] {
			return nil, fmt.Errorf("duplicate grade id %d", g.ID)
		}
		gradeIDs[g.ID] = true
	}

	examIDs := make(map[string]bool, len(exams))
	for _, e := range exams {
		if e.ID == "" {
			return nil, fmt.Errorf("exam %q has no id", e.Name)
		}
		if examIDs[e.ID] {
			return nil, fmt.Errorf("duplicate exam id %q", e.ID)
		}
		examIDs[e.ID] = true
		for _, g := range e.GradeIDs {
			if !gradeIDs[g] {
				return nil, fmt.Errorf("exam %q references unknown grade %d", e.ID, g)
			}
		}
		for _, w := range e.SubjectWeightage {
			if w.Weightage < 0 {
				return nil, fmt.Errorf("exam %q: negative weightage for %q", e.ID, w.Subject)
			}
		}
	}

	resourceIDs := make(map[string]bool, len(resources))
	for _, r := range resources {
		if r.ID == "" {
			return nil, fmt.Errorf("resource %q has no id", r.Title)
		}
		if resourceIDs[r.ID] {
			return nil, fmt.Errorf("duplicate resource id %q", r.ID)
		}
		resourceIDs[r.ID] = true
		if !gradeIDs[r.GradeID] {
			return nil, fmt.Errorf("resource %q references unknown grade %d", r.ID, r.GradeID)
		}
		for _, id := range r.ExamIDs {
			if !examIDs[id] {
				return nil, fmt.Errorf("resource %q references unknown exam %q", r.ID, id)
			}
		}
		if !r.Type.Valid() {
			return nil, fmt.Errorf("resource %q has unknown type %q", r.ID, r.Type)
		}
		if !r.Difficulty.Valid() {
			return nil, fmt.Errorf("resource %q has unknown difficulty %q", r.ID, r.Difficulty)
		}
	}

	return &Catalog{grades: grades, exams: exams, resources: resources}, nil
}

// Grades returns all grades in catalog order.
func (c *Catalog) Grades() []Grade {
	return append([]Grade(nil), c.grades...)
}

// Grade returns a grade by ID.
func (c *Catalog) Grade(id int) (Grade, bool) {
	for _, g := range c.grades {
		if g.ID == id {
			return g, true
		}
	}
	return Grade{}, false
}

// Exam returns an exam by ID.
func (c *Catalog) Exam(id string) (Exam, bool) {
	for _, e := range c.exams {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return Exam{}, false
}

// Exams returns all exams in catalog order.
func (c *Catalog) Exams() []Exam {
	out := make([]Exam, 0, len(c.exams))
	for _, e := range c.exams {
		out = append(out, e.clone())
	}
	return out
}

// ExamsForGrade returns the exams offered to gradeID, in catalog order.
func (c *Catalog) ExamsForGrade(gradeID int) []Exam {
	var out []Exam
	for _, e := range c.exams {
		if e.ForGrade(gradeID) {
			out = append(out, e.clone())
		}
	}
	return out
}

// DefaultExam returns the first exam in catalog order offered to gradeID.
func (c *Catalog) DefaultExam(gradeID int) (Exam, bool) {
	for _, e := range c.exams {
		if e.ForGrade(gradeID) {
			return e.clone(), true
		}
	}
	return Exam{}, false
}

// ResourcesFor returns resources for gradeID that are tagged with examID.
// An empty examID yields no resources.
func (c *Catalog) ResourcesFor(gradeID int, examID string) []Resource {
	if examID == "" {
		return nil
	}
	var out []Resource
	for _, r := range c.resources {
		if r.GradeID == gradeID && r.ForExam(examID) {
			r.ExamIDs = append([]string(nil), r.ExamIDs...)
			out = append(out, r)
		}
	}
	return out
}

// Selection is everything the dashboard shows for a grade/exam pair.
type Selection struct {
	Grade     Grade              `json:"grade"`
	Exams     []Exam             `json:"exams"`
	Exam      *Exam              `json:"exam,omitempty"`
	Weightage []SubjectWeightage `json:"weightage"`
	Resources ResourceTabs       `json:"resources"`
	Topics    []TopicGroup       `json:"topics"`
}

// Select resolves the dashboard view for gradeID. An examID that is empty or
// not offered to the grade falls back to the grade's default exam. The second
// return value is false when the grade does not exist.
func (c *Catalog) Select(gradeID int, examID string) (Selection, bool) {
	grade, ok := c.Grade(gradeID)
	if !ok {
		return Selection{}, false
	}

	sel := Selection{
		Grade: grade,
		Exams: c.ExamsForGrade(gradeID),
	}

	exam, ok := c.Exam(examID)
	if !ok || !exam.ForGrade(gradeID) {
		exam, ok = c.DefaultExam(gradeID)
	}
	if ok {
		sel.Exam = &exam
		sel.Weightage = SortedWeightage(exam)
		resources := c.ResourcesFor(gradeID, exam.ID)
		sel.Resources = GroupByType(resources)
		sel.Topics = GroupByTopic(resources)
	} else {
		sel.Resources = GroupByType(nil)
		sel.Topics = GroupByTopic(nil)
	}
	return sel, true
}

// Target resolves the grade and exam a generation request is aimed at.
// Unlike Select it never falls back to a default exam.
func (c *Catalog) Target(gradeID int, examID string) (Grade, Exam, error) {
	grade, ok := c.Grade(gradeID)
	if !ok {
		return Grade{}, Exam{}, fmt.Errorf("%w: grade %d", ErrUnknownSelection, gradeID)
	}
	if examID == "" {
		return Grade{}, Exam{}, ErrNoExamSelected
	}
	exam, ok := c.Exam(examID)
	if !ok || !exam.ForGrade(gradeID) {
		return Grade{}, Exam{}, fmt.Errorf("%w: exam %q for grade %d", ErrUnknownSelection, examID, gradeID)
	}
	return grade, exam, nil
}

// ResourceTabs splits resources the way the dashboard tabs present them.
type ResourceTabs struct {
	All        []Resource `json:"all"`
	YouTube    []Resource `json:"youtube"`
	Notes      []Resource `json:"notes"`
	PastPapers []Resource `json:"pastPapers"`
}

// GroupByType buckets resources into tabs, preserving order within each tab.
// Tabs are never nil so they encode as empty JSON arrays.
func GroupByType(resources []Resource) ResourceTabs {
	tabs := ResourceTabs{
		All:        append([]Resource{}, resources...),
		YouTube:    []Resource{},
		Notes:      []Resource{},
		PastPapers: []Resource{},
	}
	for _, r := range resources {
		switch r.Type {
		case TypeYouTube:
			tabs.YouTube = append(tabs.YouTube, r)
		case TypePDF:
			tabs.Notes = append(tabs.Notes, r)
		case TypePastPaper:
			tabs.PastPapers = append(tabs.PastPapers, r)
		}
	}
	return tabs
}

// TopicGroup is the resources filed under one subject topic.
type TopicGroup struct {
	Topic     string     `json:"topic"`
	Resources []Resource `json:"resources"`
}

// GroupByTopic groups resources by topic in first-seen order. A resource with
// the same type and URL as an earlier one is dropped. The result is never nil.
func GroupByTopic(resources []Resource) []TopicGroup {
	type link struct {
		kind ResourceType
		url  string
	}
	groups := []TopicGroup{}
	index := make(map[string]int)
	seen := make(map[link]bool, len(resources))
	for _, r := range resources {
		k := link{r.Type, r.URL}
		if seen[k] {
			continue
		}
		seen[k] = true

		i, ok := index[r.Topic]
		if !ok {
			i = len(groups)
			index[r.Topic] = i
			groups = append(groups, TopicGroup{Topic: r.Topic})
		}
		groups[i].Resources = append(groups[i].Resources, r)
	}
	return groups
}

// SortedWeightage returns the exam's subjects ordered by weightage, highest
// first. Ties keep their declared order.
func SortedWeightage(exam Exam) []SubjectWeightage {
	out := append([]SubjectWeightage{}, exam.SubjectWeightage...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weightage > out[j].Weightage
	})
	return out
}
