package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

func TestAllocatePlacesRequiredHours(t *testing.T) {
	cat := solverCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	alloc := NewAllocator(42, zap.NewNop())

	result, err := alloc.Allocate(BuildUnits(cat), gen)
	require.NoError(t, err)

	require.Len(t, result.Assignments, 2)
	assert.Empty(t, result.Shortfalls)

	seen := make(map[gridCell]bool)
	for _, a := range result.Assignments {
		cell := gridCell{Day: a.Day, Slot: a.Slot}
		assert.False(t, seen[cell])
		seen[cell] = true
		assert.NotEqual(t, "12-1", a.Slot)
	}

	total := 0
	for _, hours := range result.FacultyLoad {
		total += hours
	}
	assert.Equal(t, 2, total)
}

func TestAllocateDeterministicForFixedSeed(t *testing.T) {
	cat := solverCatalog()

	run := func() *AllocationResult {
		gen := NewCandidateGenerator(cat, nil, zap.NewNop())
		result, err := NewAllocator(99, zap.NewNop()).Allocate(BuildUnits(cat), gen)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.FacultyLoad, second.FacultyLoad)
}

func TestAllocateRespectsMaxLoadAndReportsShortfall(t *testing.T) {
	cat := solverCatalog()
	cat.Faculty = cat.Faculty[:1]
	cat.Faculty[0].MaxLoadHours = 1
	cat.Courses = append(cat.Courses, models.Course{
		Code: "CS310", Name: "Advanced Algorithms", Department: "CSE", Semester: 5,
		Hours: models.ContactHours{Lecture: 1},
	})
	cat.Sections[0].CourseCodes = append(cat.Sections[0].CourseCodes, "CS310")

	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	result, err := NewAllocator(42, zap.NewNop()).Allocate(BuildUnits(cat), gen)
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 1, result.FacultyLoad["Dr. Rao"])
	require.Len(t, result.Shortfalls, 2)
	assert.Equal(t, "CS301", result.Shortfalls[0].CourseCode)
	assert.Equal(t, 2, result.Shortfalls[0].Required)
	assert.Equal(t, 1, result.Shortfalls[0].Assigned)
	assert.Equal(t, "CS310", result.Shortfalls[1].CourseCode)
	assert.Equal(t, 0, result.Shortfalls[1].Assigned)
}

func TestAllocateSkipsFacultyBlackouts(t *testing.T) {
	cat := solverCatalog()
	cat.Faculty = cat.Faculty[:1]
	cat.Faculty[0].Unavailable = []models.SlotKey{
		{Day: "Monday", Slot: "9-10"},
		{Day: "Monday", Slot: "10-11"},
	}

	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	result, err := NewAllocator(42, zap.NewNop()).Allocate(BuildUnits(cat), gen)
	require.NoError(t, err)

	for _, a := range result.Assignments {
		assert.False(t, cat.Faculty[0].IsUnavailable(a.Day, a.Slot))
	}
}

func TestAllocateEmptyRoomCatalogFails(t *testing.T) {
	cat := solverCatalog()
	cat.Rooms = nil
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())

	_, err := NewAllocator(42, zap.NewNop()).Allocate(BuildUnits(cat), gen)
	require.Error(t, err)
}
