package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/evaluer-api/internal/models"
)

var (
	responseGradeColumns   = []string{"id", "response_id", "student_id", "assignment_id", "grade", "created_at", "updated_at"}
	assignmentGradeColumns = []string{"id", "assignment_id", "student_id", "module_id", "grade", "created_at", "updated_at"}
	moduleGradeColumns     = []string{"id", "module_id", "student_id", "subject_id", "grade", "created_at", "updated_at"}
	subjectGradeColumns    = []string{"id", "subject_id", "student_id", "grade", "created_at", "updated_at"}
	overallGradeColumns    = []string{"id", "student_id", "grade", "created_at", "updated_at"}
)

// ResponseGradeRepository persists per-response grades.
type ResponseGradeRepository struct {
	table *gradeTable[models.ResponseGrade]
}

// NewResponseGradeRepository creates a response grade repository. observer may be nil.
func NewResponseGradeRepository(db *sqlx.DB, observer QueryObserver) *ResponseGradeRepository {
	return &ResponseGradeRepository{table: newGradeTable[models.ResponseGrade](db, observer, "response_grades", responseGradeColumns, []string{"response_id", "student_id"})}
}

// Upsert stores the grade of a response attempt.
func (r *ResponseGradeRepository) Upsert(ctx context.Context, studentID, responseID, assignmentID int64, grade float64) error {
	return r.table.upsert(ctx, grade, eq("response_id", responseID), eq("student_id", studentID), eq("assignment_id", assignmentID))
}

// ListForAssignment returns the student's response grades of an assignment ordered by response id.
func (r *ResponseGradeRepository) ListForAssignment(ctx context.Context, assignmentID, studentID int64) ([]models.ResponseGrade, error) {
	return r.table.getByFilters(ctx, eq("assignment_id", assignmentID), eq("student_id", studentID))
}

// GetGrade returns the stored response grade or 0.
func (r *ResponseGradeRepository) GetGrade(ctx context.Context, studentID, assignmentID, responseID int64) (float64, error) {
	return r.table.getGrade(ctx, eq("student_id", studentID), eq("assignment_id", assignmentID), eq("response_id", responseID))
}

// ListForStudent returns every response grade of a student.
func (r *ResponseGradeRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.ResponseGrade, error) {
	return r.table.getByFilters(ctx, eq("student_id", studentID))
}

// AssignmentGradeRepository persists per-assignment grades.
type AssignmentGradeRepository struct {
	table *gradeTable[models.AssignmentGrade]
}

// NewAssignmentGradeRepository creates an assignment grade repository. observer may be nil.
func NewAssignmentGradeRepository(db *sqlx.DB, observer QueryObserver) *AssignmentGradeRepository {
	return &AssignmentGradeRepository{table: newGradeTable[models.AssignmentGrade](db, observer, "assignment_grades", assignmentGradeColumns, []string{"assignment_id", "student_id"})}
}

// Upsert stores the aggregated grade of an assignment.
func (r *AssignmentGradeRepository) Upsert(ctx context.Context, studentID, assignmentID, moduleID int64, grade float64) error {
	return r.table.upsert(ctx, grade, eq("assignment_id", assignmentID), eq("student_id", studentID), eq("module_id", moduleID))
}

// ListForModule returns the student's assignment grades of a module.
func (r *AssignmentGradeRepository) ListForModule(ctx context.Context, moduleID, studentID int64) ([]models.AssignmentGrade, error) {
	return r.table.getByFilters(ctx, eq("module_id", moduleID), eq("student_id", studentID))
}

// GetGrade returns the stored assignment grade or 0.
func (r *AssignmentGradeRepository) GetGrade(ctx context.Context, studentID, assignmentID int64) (float64, error) {
	return r.table.getGrade(ctx, eq("student_id", studentID), eq("assignment_id", assignmentID))
}

// ListForStudent returns every assignment grade of a student.
func (r *AssignmentGradeRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.AssignmentGrade, error) {
	return r.table.getByFilters(ctx, eq("student_id", studentID))
}

// ModuleGradeRepository persists per-module grades.
type ModuleGradeRepository struct {
	table *gradeTable[models.ModuleGrade]
}

// NewModuleGradeRepository creates a module grade repository. observer may be nil.
func NewModuleGradeRepository(db *sqlx.DB, observer QueryObserver) *ModuleGradeRepository {
	return &ModuleGradeRepository{table: newGradeTable[models.ModuleGrade](db, observer, "module_grades", moduleGradeColumns, []string{"module_id", "student_id"})}
}

// Upsert stores the aggregated grade of a module.
func (r *ModuleGradeRepository) Upsert(ctx context.Context, studentID, moduleID, subjectID int64, grade float64) error {
	return r.table.upsert(ctx, grade, eq("module_id", moduleID), eq("student_id", studentID), eq("subject_id", subjectID))
}

// ListForSubject returns the student's module grades of a subject.
func (r *ModuleGradeRepository) ListForSubject(ctx context.Context, subjectID, studentID int64) ([]models.ModuleGrade, error) {
	return r.table.getByFilters(ctx, eq("subject_id", subjectID), eq("student_id", studentID))
}

// GetGrade returns the stored module grade or 0.
func (r *ModuleGradeRepository) GetGrade(ctx context.Context, studentID, moduleID int64) (float64, error) {
	return r.table.getGrade(ctx, eq("student_id", studentID), eq("module_id", moduleID))
}

// ListForStudent returns every module grade of a student.
func (r *ModuleGradeRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.ModuleGrade, error) {
	return r.table.getByFilters(ctx, eq("student_id", studentID))
}

// SubjectGradeRepository persists per-subject grades.
type SubjectGradeRepository struct {
	table *gradeTable[models.SubjectGrade]
}

// NewSubjectGradeRepository creates a subject grade repository. observer may be nil.
func NewSubjectGradeRepository(db *sqlx.DB, observer QueryObserver) *SubjectGradeRepository {
	return &SubjectGradeRepository{table: newGradeTable[models.SubjectGrade](db, observer, "subject_grades", subjectGradeColumns, []string{"subject_id", "student_id"})}
}

// Upsert stores the aggregated grade of a subject.
func (r *SubjectGradeRepository) Upsert(ctx context.Context, studentID, subjectID int64, grade float64) error {
	return r.table.upsert(ctx, grade, eq("subject_id", subjectID), eq("student_id", studentID))
}

// ListForStudent returns every subject grade of a student.
func (r *SubjectGradeRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.SubjectGrade, error) {
	return r.table.getByFilters(ctx, eq("student_id", studentID))
}

// GetGrade returns the stored subject grade or 0.
func (r *SubjectGradeRepository) GetGrade(ctx context.Context, studentID, subjectID int64) (float64, error) {
	return r.table.getGrade(ctx, eq("student_id", studentID), eq("subject_id", subjectID))
}

// OverallGradeRepository persists the top-level grade of each student.
type OverallGradeRepository struct {
	table *gradeTable[models.OverallGrade]
}

// NewOverallGradeRepository creates an overall grade repository. observer may be nil.
func NewOverallGradeRepository(db *sqlx.DB, observer QueryObserver) *OverallGradeRepository {
	return &OverallGradeRepository{table: newGradeTable[models.OverallGrade](db, observer, "overall_grades", overallGradeColumns, []string{"student_id"})}
}

// Upsert stores the overall grade of a student.
func (r *OverallGradeRepository) Upsert(ctx context.Context, studentID int64, grade float64) error {
	return r.table.upsert(ctx, grade, eq("student_id", studentID))
}

// Get returns the overall grade or 0.
func (r *OverallGradeRepository) Get(ctx context.Context, studentID int64) (float64, error) {
	return r.table.getGrade(ctx, eq("student_id", studentID))
}

// ListForStudent returns the overall grade row of a student, if any.
func (r *OverallGradeRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.OverallGrade, error) {
	return r.table.getByFilters(ctx, eq("student_id", studentID))
}
