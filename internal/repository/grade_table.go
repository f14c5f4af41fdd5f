package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/evaluer-api/internal/models"
)

// QueryObserver receives the duration of each repository query.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// field is an ordered column/value pair used for natural keys, parent pointers and filters.
type field struct {
	column string
	value  interface{}
}

func eq(column string, value interface{}) field {
	return field{column: column, value: value}
}

// gradeTable implements the persistence contract shared by every level of the hierarchy:
// idempotent upsert by natural key, equality-filtered listing and a zero-default point read.
type gradeTable[T models.HasGrade] struct {
	db       *sqlx.DB
	name     string
	columns  []string
	keys     []string
	orderBy  string
	observer QueryObserver
}

func newGradeTable[T models.HasGrade](db *sqlx.DB, observer QueryObserver, name string, columns, keys []string) *gradeTable[T] {
	return &gradeTable[T]{
		db:       db,
		name:     name,
		columns:  columns,
		keys:     keys,
		orderBy:  keys[0],
		observer: observer,
	}
}

// upsert inserts the row or overwrites its grade when the natural key already exists.
// Parent pointers are written on insert only.
func (t *gradeTable[T]) upsert(ctx context.Context, grade float64, fields ...field) error {
	defer t.observe("upsert", time.Now())

	now := time.Now().UTC()
	columns := make([]string, 0, len(fields)+4)
	args := make([]interface{}, 0, len(fields)+4)
	columns = append(columns, "id")
	args = append(args, uuid.NewString())
	for _, f := range fields {
		columns = append(columns, f.column)
		args = append(args, f.value)
	}
	columns = append(columns, "grade", "created_at", "updated_at")
	args = append(args, grade, now, now)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
        ON CONFLICT (%s)
        DO UPDATE SET grade = EXCLUDED.grade, updated_at = EXCLUDED.updated_at`,
		t.name,
		strings.Join(columns, ", "),
		placeholders(len(columns)),
		strings.Join(t.keys, ", "),
	)
	if _, err := t.db.ExecContext(ctx, t.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert %s: %w", t.name, err)
	}
	return nil
}

// getByFilters returns every row matching all equality filters, ordered by the leading key column.
func (t *gradeTable[T]) getByFilters(ctx context.Context, filters ...field) ([]T, error) {
	defer t.observe("list", time.Now())

	where, args := whereClause(filters)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s ORDER BY %s", strings.Join(t.columns, ", "), t.name, where, t.orderBy)
	var rows []T
	if err := t.db.SelectContext(ctx, &rows, t.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return rows, nil
}

// getGrade returns the grade of the single matching row, or 0 when there is none.
func (t *gradeTable[T]) getGrade(ctx context.Context, filters ...field) (float64, error) {
	defer t.observe("get", time.Now())

	where, args := whereClause(filters)
	query := fmt.Sprintf("SELECT grade FROM %s WHERE 1=1%s LIMIT 1", t.name, where)
	var grade float64
	if err := t.db.GetContext(ctx, &grade, t.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s grade: %w", t.name, err)
	}
	return grade, nil
}

func (t *gradeTable[T]) observe(op string, start time.Time) {
	if t.observer == nil {
		return
	}
	t.observer.ObserveDBQuery(t.name+"."+op, time.Since(start))
}

func whereClause(filters []field) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(filters))
	for _, f := range filters {
		sb.WriteString(" AND ")
		sb.WriteString(f.column)
		sb.WriteString(" = ?")
		args = append(args, f.value)
	}
	return sb.String(), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
