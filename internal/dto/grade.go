package dto

// UpdateResponseGradeRequest records a leaf grade and triggers the cascade.
type UpdateResponseGradeRequest struct {
	StudentID    int64   `json:"student_id" validate:"required,gt=0"`
	ResponseID   int64   `json:"response_id" validate:"required,gt=0"`
	AssignmentID int64   `json:"assignment_id" validate:"required,gt=0"`
	ModuleID     int64   `json:"module_id" validate:"required,gt=0"`
	SubjectID    int64   `json:"subject_id" validate:"required,gt=0"`
	NewGrade     float64 `json:"new_grade" validate:"min=1,max=10"`
}

// SetAssignmentGradeRequest overwrites an assignment grade without touching its responses or ancestors.
type SetAssignmentGradeRequest struct {
	StudentID    int64   `json:"student_id" validate:"required,gt=0"`
	AssignmentID int64   `json:"assignment_id" validate:"required,gt=0"`
	ModuleID     int64   `json:"module_id" validate:"required,gt=0"`
	Grade        float64 `json:"grade" validate:"min=0,max=10"`
}

// RecalculateModuleRequest re-runs the module, subject and overall stages.
type RecalculateModuleRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	ModuleID  int64 `json:"module_id" validate:"required,gt=0"`
	SubjectID int64 `json:"subject_id" validate:"required,gt=0"`
}

// ResponseGradeQuery identifies one stored response grade.
type ResponseGradeQuery struct {
	StudentID    int64 `form:"student_id" validate:"required,gt=0"`
	AssignmentID int64 `form:"-" validate:"required,gt=0"`
	ResponseID   int64 `form:"-" validate:"required,gt=0"`
}

// AssignmentGradeQuery identifies one stored assignment grade.
type AssignmentGradeQuery struct {
	StudentID    int64 `form:"student_id" validate:"required,gt=0"`
	AssignmentID int64 `form:"-" validate:"required,gt=0"`
}

// ModuleGradeQuery identifies one stored module grade.
type ModuleGradeQuery struct {
	StudentID int64 `form:"student_id" validate:"required,gt=0"`
	ModuleID  int64 `form:"module_id" validate:"required,gt=0"`
}

// SubjectGradeQuery identifies one stored subject grade.
type SubjectGradeQuery struct {
	StudentID int64 `form:"student_id" validate:"required,gt=0"`
	SubjectID int64 `form:"subject_id" validate:"required,gt=0"`
}

// OverallGradeQuery identifies a student's overall grade.
type OverallGradeQuery struct {
	StudentID int64 `form:"student_id" validate:"required,gt=0"`
}

// GradeValue is the payload of every grade read.
type GradeValue struct {
	Grade float64 `json:"grade"`
}

// RecalculateResult reports the aggregates written by a recalculation.
type RecalculateResult struct {
	ModuleGrade  float64 `json:"module_grade"`
	SubjectGrade float64 `json:"subject_grade"`
	OverallGrade float64 `json:"overall_grade"`
}

// RecalculationAccepted acknowledges a queued recalculation.
type RecalculationAccepted struct {
	JobID string `json:"job_id"`
}

// WeightsQuery scopes a weights read. With neither id set the subject weights are returned.
type WeightsQuery struct {
	SubjectID int64 `form:"subject_id" validate:"omitempty,gt=0"`
	ModuleID  int64 `form:"module_id" validate:"omitempty,gt=0,excluded_with=SubjectID"`
}

// WeightsView reports the grading scale and the configured weights of one level.
// Children missing from Weights count with weight 1.0.
type WeightsView struct {
	BaseScore    float64           `json:"base_score"`
	MinimumScore float64           `json:"minimum_score"`
	Level        string            `json:"level"`
	Weights      map[int64]float64 `json:"weights"`
}
