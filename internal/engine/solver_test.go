package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

func solverCatalog() *models.Catalog {
	return &models.Catalog{
		Courses: []models.Course{
			{Code: "CS301", Name: "Algorithms", Department: "CSE", Semester: 5, Hours: models.ContactHours{Lecture: 2}},
		},
		Faculty: []models.Faculty{
			{Name: "Dr. Rao", Department: "CSE", Subjects: []string{"algorithms"}, MaxLoadHours: 20},
			{Name: "Prof. Iyer", Department: "CSE", Subjects: []string{"algorithms"}, MaxLoadHours: 20},
		},
		Rooms: []models.Room{
			{Name: "R-101", Capacity: 60, Type: models.RoomTypeClassroom, Department: "CSE"},
			{Name: "R-102", Capacity: 60, Type: models.RoomTypeClassroom, Department: "CSE"},
			{Name: "R-103", Capacity: 60, Type: models.RoomTypeClassroom, Department: "CSE"},
		},
		Sections: []models.Section{
			{ID: "CSE-5A", Department: "CSE", Year: 3, StudentCount: 50, CourseCodes: []string{"CS301"}},
		},
	}
}

func buildSolverModel(t *testing.T, cat *models.Catalog) *Model {
	t.Helper()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	m, err := BuildModel(BuildUnits(cat), gen, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestSolveSmallFeasibleModel(t *testing.T) {
	m := buildSolverModel(t, solverCatalog())
	solver := NewBacktrackingSolver(5*time.Second, 42, zap.NewNop())

	sol, err := solver.Solve(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, StatusFeasible, sol.Status)
	assert.True(t, sol.Verified)
	assert.Empty(t, sol.Shortfalls)
	require.Len(t, sol.Assignments, 2)

	seen := make(map[gridCell]bool)
	for _, a := range sol.Assignments {
		cell := gridCell{Day: a.Day, Slot: a.Slot}
		assert.False(t, seen[cell], "section double-booked at %v", cell)
		seen[cell] = true
		assert.NotEqual(t, "12-1", a.Slot)
	}
}

func TestSolveDeterministicForFixedSeed(t *testing.T) {
	cat := solverCatalog()
	solver := NewBacktrackingSolver(5*time.Second, 7, zap.NewNop())

	first, err := solver.Solve(context.Background(), buildSolverModel(t, cat))
	require.NoError(t, err)
	second, err := solver.Solve(context.Background(), buildSolverModel(t, cat))
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Assignments, second.Assignments)
}

func TestSolveInfeasibleWhenLoadCapTooTight(t *testing.T) {
	m := buildSolverModel(t, solverCatalog())
	m.MaxLoad = map[string]int{"Dr. Rao": 1, "Prof. Iyer": 0}
	m.Units[0].Required = 2

	// Restrict candidates to the capped faculty only.
	for i := range m.Vars {
		m.Vars[i].Tuple.Faculty = "Dr. Rao"
	}
	solver := NewBacktrackingSolver(5*time.Second, 42, zap.NewNop())

	sol, err := solver.Solve(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.True(t, sol.Verified)
}

func TestSolveBudgetExceededIsNotInfeasible(t *testing.T) {
	cat := solverCatalog()
	// Thirty required sessions against a 20 hour combined load cap cannot
	// complete; proving that exhaustively takes far longer than the budget.
	cat.Courses = nil
	cat.Sections[0].CourseCodes = nil
	for i := 0; i < 10; i++ {
		code := string(rune('A'+i)) + "S300"
		cat.Courses = append(cat.Courses, models.Course{
			Code: code, Name: "Algorithms " + code, Department: "CSE", Semester: 5,
			Hours: models.ContactHours{Lecture: 3},
		})
		cat.Sections[0].CourseCodes = append(cat.Sections[0].CourseCodes, code)
	}
	cat.Faculty[0].MaxLoadHours = 10
	cat.Faculty[1].MaxLoadHours = 10

	m := buildSolverModel(t, cat)
	solver := NewBacktrackingSolver(50*time.Millisecond, 42, zap.NewNop())

	sol, err := solver.Solve(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, StatusBudgetExceeded, sol.Status)
	assert.False(t, sol.Verified)
	assert.NotEmpty(t, sol.Shortfalls)
}

func TestSolveReportsSkippedUnitsAsShortfalls(t *testing.T) {
	cat := solverCatalog()
	m := buildSolverModel(t, cat)
	m.Skipped = append(m.Skipped, models.Shortfall{
		CourseCode: "CS999", SectionID: "CSE-5A", Required: 2, Assigned: 0,
	})
	solver := NewBacktrackingSolver(5*time.Second, 42, zap.NewNop())

	sol, err := solver.Solve(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, sol.Shortfalls, 1)
	assert.Equal(t, "CS999", sol.Shortfalls[0].CourseCode)
}
