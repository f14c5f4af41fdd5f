package models

import "time"

// HasGrade is implemented by every record of the grade hierarchy.
type HasGrade interface {
	GradeValue() float64
}

// WeightLevel selects which bucket of the weights tree is consulted.
type WeightLevel string

const (
	// WeightLevelExercise weights sibling assignments within a module (one assignment per exercise).
	WeightLevelExercise WeightLevel = "exercise"
	// WeightLevelModule weights sibling modules within a subject.
	WeightLevelModule WeightLevel = "module"
	// WeightLevelSubject weights subjects within the overall grade.
	WeightLevelSubject WeightLevel = "subject"
)

// ResponseGrade is the leaf grade of a single submission attempt.
type ResponseGrade struct {
	ID           string    `db:"id" json:"id"`
	ResponseID   int64     `db:"response_id" json:"response_id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	AssignmentID int64     `db:"assignment_id" json:"assignment_id"`
	Grade        float64   `db:"grade" json:"grade"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentGrade aggregates the responses of one assignment.
type AssignmentGrade struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID int64     `db:"assignment_id" json:"assignment_id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	ModuleID     int64     `db:"module_id" json:"module_id"`
	Grade        float64   `db:"grade" json:"grade"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ModuleGrade aggregates the assignments of one module.
type ModuleGrade struct {
	ID        string    `db:"id" json:"id"`
	ModuleID  int64     `db:"module_id" json:"module_id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	Grade     float64   `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectGrade aggregates the modules of one subject.
type SubjectGrade struct {
	ID        string    `db:"id" json:"id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Grade     float64   `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OverallGrade is the single top-level grade per student.
type OverallGrade struct {
	ID        string    `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Grade     float64   `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (g ResponseGrade) GradeValue() float64   { return g.Grade }
func (g AssignmentGrade) GradeValue() float64 { return g.Grade }
func (g ModuleGrade) GradeValue() float64     { return g.Grade }
func (g SubjectGrade) GradeValue() float64    { return g.Grade }
func (g OverallGrade) GradeValue() float64    { return g.Grade }

// TranscriptLevel names a row's position in the hierarchy.
type TranscriptLevel string

const (
	TranscriptOverall    TranscriptLevel = "overall"
	TranscriptSubject    TranscriptLevel = "subject"
	TranscriptModule     TranscriptLevel = "module"
	TranscriptAssignment TranscriptLevel = "assignment"
	TranscriptResponse   TranscriptLevel = "response"
)

// TranscriptRow is one stored grade in a student's transcript.
type TranscriptRow struct {
	Level     TranscriptLevel `json:"level"`
	ID        int64           `json:"id"`
	ParentID  *int64          `json:"parent_id,omitempty"`
	Grade     float64         `json:"grade"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StudentTranscript lists every stored grade of a student, top level first.
type StudentTranscript struct {
	StudentID int64           `json:"student_id"`
	Rows      []TranscriptRow `json:"rows"`
}
