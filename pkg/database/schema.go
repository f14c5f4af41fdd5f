package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/evaluer-api/pkg/config"
)

// gradeTable describes one level of the grade hierarchy.
type gradeTable struct {
	name       string
	keyColumns []string
	refColumns []string
}

var gradeTables = []gradeTable{
	{name: "response_grades", keyColumns: []string{"response_id", "student_id"}, refColumns: []string{"assignment_id"}},
	{name: "assignment_grades", keyColumns: []string{"assignment_id", "student_id"}, refColumns: []string{"module_id"}},
	{name: "module_grades", keyColumns: []string{"module_id", "student_id"}, refColumns: []string{"subject_id"}},
	{name: "subject_grades", keyColumns: []string{"subject_id", "student_id"}},
	{name: "overall_grades", keyColumns: []string{"student_id"}},
}

// SchemaStatements returns the idempotent DDL for the grade tables in the dialect of the given driver.
func SchemaStatements(driver string) []string {
	realType, tsType := "DOUBLE PRECISION", "TIMESTAMPTZ"
	if driver == config.DriverSQLite {
		realType, tsType = "REAL", "TIMESTAMP"
	}

	var stmts []string
	for _, t := range gradeTables {
		cols := []string{"id TEXT PRIMARY KEY"}
		for _, c := range t.keyColumns {
			cols = append(cols, c+" BIGINT NOT NULL")
		}
		for _, c := range t.refColumns {
			cols = append(cols, c+" BIGINT NOT NULL")
		}
		cols = append(cols,
			"grade "+realType+" NOT NULL",
			"created_at "+tsType+" NOT NULL",
			"updated_at "+tsType+" NOT NULL",
			fmt.Sprintf("CONSTRAINT uq_%s_%s UNIQUE (%s)", t.name, constraintSuffix(t.keyColumns), strings.Join(t.keyColumns, ", ")),
		)
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", t.name, strings.Join(cols, ",\n  ")))

		for _, ref := range t.refColumns {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS ix_%s_%s_student ON %s (%s, student_id)", t.name, ref, t.name, ref))
		}
	}
	stmts = append(stmts, "CREATE INDEX IF NOT EXISTS ix_subject_grades_student ON subject_grades (student_id)")
	return stmts
}

// EnsureSchema creates the grade tables when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB, driver string) error {
	for _, stmt := range SchemaStatements(driver) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func constraintSuffix(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strings.TrimSuffix(k, "_id")
	}
	return strings.Join(parts, "_")
}
