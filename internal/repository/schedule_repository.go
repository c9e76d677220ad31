package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

// ScheduleRepository persists generation runs. Each run replaces the previous
// schedule for its department and semester wholesale; assignments, shortfalls
// and violations hang off the run row.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type runRow struct {
	ID         string    `db:"id"`
	Department string    `db:"department"`
	Semester   int       `db:"semester"`
	Mode       string    `db:"mode"`
	Status     string    `db:"status"`
	Seed       int64     `db:"seed"`
	CreatedAt  time.Time `db:"created_at"`
}

// SaveRun stores a schedule with its assignments and shortfalls in one
// transaction. Prior runs for the same department and semester are removed.
func (r *ScheduleRepository) SaveRun(ctx context.Context, sched *models.Schedule) error {
	if sched == nil {
		return fmt.Errorf("schedule payload is nil")
	}
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM schedule_runs WHERE department = $1 AND semester = $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, sched.Department, sched.Semester); err != nil {
		return fmt.Errorf("delete previous runs: %w", err)
	}

	const insertRun = `
INSERT INTO schedule_runs (id, department, semester, mode, status, seed, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insertRun,
		sched.ID, sched.Department, sched.Semester, string(sched.Mode), string(sched.Status), sched.Seed, sched.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	const insertAssignment = `
INSERT INTO schedule_assignments (run_id, course_code, course_name, section_id, day_of_week, time_slot, faculty_name, room_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, a := range sched.Assignments {
		if _, err := tx.ExecContext(ctx, insertAssignment,
			sched.ID, a.CourseCode, a.CourseName, a.SectionID, a.Day, a.Slot, a.Faculty, a.Room,
		); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	const insertShortfall = `
INSERT INTO schedule_shortfalls (run_id, course_code, section_id, required, assigned)
VALUES ($1, $2, $3, $4, $5)`
	for _, sf := range sched.Shortfalls {
		if _, err := tx.ExecContext(ctx, insertShortfall,
			sched.ID, sf.CourseCode, sf.SectionID, sf.Required, sf.Assigned,
		); err != nil {
			return fmt.Errorf("insert shortfall: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// FindRun loads a run with its assignments and shortfalls.
func (r *ScheduleRepository) FindRun(ctx context.Context, id string) (*models.Schedule, error) {
	const runQuery = `SELECT id, department, semester, mode, status, seed, created_at FROM schedule_runs WHERE id = $1`
	var row runRow
	if err := r.db.GetContext(ctx, &row, runQuery, id); err != nil {
		return nil, err
	}

	sched := &models.Schedule{
		ID:         row.ID,
		Department: row.Department,
		Semester:   row.Semester,
		Mode:       models.ScheduleMode(row.Mode),
		Status:     models.ScheduleStatus(row.Status),
		Seed:       row.Seed,
		CreatedAt:  row.CreatedAt,
	}

	const assignmentQuery = `
SELECT course_code, course_name, section_id, day_of_week, time_slot, faculty_name, room_name
FROM schedule_assignments WHERE run_id = $1 ORDER BY section_id, day_of_week, time_slot`
	if err := r.db.SelectContext(ctx, &sched.Assignments, assignmentQuery, id); err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}

	const shortfallQuery = `
SELECT course_code, section_id, required, assigned
FROM schedule_shortfalls WHERE run_id = $1 ORDER BY course_code, section_id`
	var shortfalls []struct {
		CourseCode string `db:"course_code"`
		SectionID  string `db:"section_id"`
		Required   int    `db:"required"`
		Assigned   int    `db:"assigned"`
	}
	if err := r.db.SelectContext(ctx, &shortfalls, shortfallQuery, id); err != nil {
		return nil, fmt.Errorf("load shortfalls: %w", err)
	}
	for _, sf := range shortfalls {
		sched.Shortfalls = append(sched.Shortfalls, models.Shortfall{
			CourseCode: sf.CourseCode,
			SectionID:  sf.SectionID,
			Required:   sf.Required,
			Assigned:   sf.Assigned,
		})
	}
	return sched, nil
}

// FindLatest loads the current run for a department and semester.
func (r *ScheduleRepository) FindLatest(ctx context.Context, department string, semester int) (*models.Schedule, error) {
	const query = `SELECT id FROM schedule_runs WHERE department = $1 AND semester = $2 ORDER BY created_at DESC LIMIT 1`
	var id string
	if err := r.db.GetContext(ctx, &id, query, department, semester); err != nil {
		return nil, err
	}
	return r.FindRun(ctx, id)
}

// ReplaceAssignments rewrites a run's assignments and status after a repair
// pass, in one transaction.
func (r *ScheduleRepository) ReplaceAssignments(ctx context.Context, sched *models.Schedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace assignments: %w", err)
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM schedule_assignments WHERE run_id = $1`
	if _, err := tx.ExecContext(ctx, deleteQuery, sched.ID); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}

	const insertAssignment = `
INSERT INTO schedule_assignments (run_id, course_code, course_name, section_id, day_of_week, time_slot, faculty_name, room_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, a := range sched.Assignments {
		if _, err := tx.ExecContext(ctx, insertAssignment,
			sched.ID, a.CourseCode, a.CourseName, a.SectionID, a.Day, a.Slot, a.Faculty, a.Room,
		); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	const updateStatus = `UPDATE schedule_runs SET status = $1 WHERE id = $2`
	result, err := tx.ExecContext(ctx, updateStatus, string(sched.Status), sched.ID)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("run status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace assignments: %w", err)
	}
	return nil
}

// SaveViolations appends the repair pass output for a run.
func (r *ScheduleRepository) SaveViolations(ctx context.Context, runID string, violations []models.Violation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save violations: %w", err)
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM schedule_violations WHERE run_id = $1`
	if _, err := tx.ExecContext(ctx, deleteQuery, runID); err != nil {
		return fmt.Errorf("delete violations: %w", err)
	}

	const insertViolation = `
INSERT INTO schedule_violations (run_id, kind, course_code, section_id, day_of_week, time_slot, faculty_name, room_name, message, resolved)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, v := range violations {
		if _, err := tx.ExecContext(ctx, insertViolation,
			runID, string(v.Kind), v.CourseCode, v.SectionID, v.Day, v.Slot, v.Faculty, v.Room, v.Message, v.Resolved,
		); err != nil {
			return fmt.Errorf("insert violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save violations: %w", err)
	}
	return nil
}

// ListViolations returns the stored repair output for a run.
func (r *ScheduleRepository) ListViolations(ctx context.Context, runID string) ([]models.Violation, error) {
	const query = `
SELECT kind, course_code, section_id, day_of_week, time_slot, faculty_name, room_name, message, resolved
FROM schedule_violations WHERE run_id = $1 ORDER BY kind, section_id, day_of_week, time_slot`
	var rows []struct {
		Kind       string `db:"kind"`
		CourseCode string `db:"course_code"`
		SectionID  string `db:"section_id"`
		Day        string `db:"day_of_week"`
		Slot       string `db:"time_slot"`
		Faculty    string `db:"faculty_name"`
		Room       string `db:"room_name"`
		Message    string `db:"message"`
		Resolved   bool   `db:"resolved"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}

	violations := make([]models.Violation, 0, len(rows))
	for _, row := range rows {
		violations = append(violations, models.Violation{
			Kind:       models.ViolationKind(row.Kind),
			CourseCode: row.CourseCode,
			SectionID:  row.SectionID,
			Day:        row.Day,
			Slot:       row.Slot,
			Faculty:    row.Faculty,
			Room:       row.Room,
			Message:    row.Message,
			Resolved:   row.Resolved,
		})
	}
	return violations, nil
}
