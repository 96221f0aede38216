package catalog

// ResourceType is the kind of learning asset a resource points at.
type ResourceType string

const (
	TypeYouTube   ResourceType = "YouTube"
	TypePDF       ResourceType = "PDF"
	TypePastPaper ResourceType = "Past Paper"
)

// Valid reports whether t is one of the known resource types.
func (t ResourceType) Valid() bool {
	switch t {
	case TypeYouTube, TypePDF, TypePastPaper:
		return true
	}
	return false
}

// Difficulty grades how demanding a resource is.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Grade is a school year level used to scope exams and resources.
type Grade struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// SubjectWeightage is the share of an exam one subject accounts for, in percent.
type SubjectWeightage struct {
	Subject   string  `yaml:"subject" json:"subject"`
	Weightage float64 `yaml:"weightage" json:"weightage"`
}

// Exam is a target assessment offered to one or more grades.
type Exam struct {
	ID               string             `yaml:"id" json:"id"`
	Name             string             `yaml:"name" json:"name"`
	GradeIDs         []int              `yaml:"grade_ids" json:"gradeIds"`
	SubjectWeightage []SubjectWeightage `yaml:"subject_weightage" json:"subjectWeightage"`
}

// ForGrade reports whether the exam is offered to gradeID.
func (e Exam) ForGrade(gradeID int) bool {
	for _, id := range e.GradeIDs {
		if id == gradeID {
			return true
		}
	}
	return false
}

// clone returns a copy of e that shares no slices with it.
func (e Exam) clone() Exam {
	e.GradeIDs = append([]int(nil), e.GradeIDs...)
	e.SubjectWeightage = append([]SubjectWeightage(nil), e.SubjectWeightage...)
	return e
}

// Resource is a single curated learning asset.
type Resource struct {
	ID          string       `yaml:"id" json:"id"`
	Title       string       `yaml:"title" json:"title"`
	Description string       `yaml:"description" json:"description"`
	Type        ResourceType `yaml:"type" json:"type"`
	Topic       string       `yaml:"topic" json:"topic"`
	Difficulty  Difficulty   `yaml:"difficulty" json:"difficulty"`
	URL         string       `yaml:"url" json:"url"`
	GradeID     int          `yaml:"grade_id" json:"gradeId"`
	ExamIDs     []string     `yaml:"exam_ids" json:"examIds"`
	ImageID     string       `yaml:"image_id" json:"imageId"`
	SolutionURL string       `yaml:"solution_url,omitempty" json:"solutionUrl,omitempty"`
}

// ForExam reports whether the resource is tagged with examID.
func (r Resource) ForExam(examID string) bool {
	for _, id := range r.ExamIDs {
		if id == examID {
			return true
		}
	}
	return false
}

// document is the on-disk shape of a catalog YAML file.
type document struct {
	Grades    []Grade    `yaml:"grades"`
	Exams     []Exam     `yaml:"exams"`
	Resources []Resource `yaml:"resources"`
}
