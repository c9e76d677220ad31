package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/models"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
)

func candidateCatalog() *models.Catalog {
	return &models.Catalog{
		Courses: []models.Course{
			{Code: "CS301", Name: "Algorithms", Department: "CSE", Semester: 5, Hours: models.ContactHours{Lecture: 3}},
			{Code: "CS312", Name: "Database Lab", Department: "CSE", Semester: 5, Hours: models.ContactHours{Practical: 2}, Practical: true},
		},
		Faculty: []models.Faculty{
			{Name: "Dr. Rao", Department: "CSE", Subjects: []string{"algorithms"}, MaxLoadHours: 20},
			{Name: "Dr. Das", Department: "CSE", Subjects: []string{"lab"}, MaxLoadHours: 20},
			{Name: "Dr. Menon", Department: "ECE", Subjects: []string{"circuits"}, MaxLoadHours: 20},
		},
		Rooms: []models.Room{
			{Name: "R-101", Capacity: 60, Type: models.RoomTypeClassroom, Department: "CSE"},
			{Name: "L-1", Capacity: 30, Type: models.RoomTypeLab, Department: "CSE"},
			{Name: "R-901", Capacity: 200, Type: models.RoomTypeClassroom, Department: "GENERAL"},
		},
		Sections: []models.Section{
			{ID: "CSE-5A", Department: "CSE", Year: 3, StudentCount: 50, CourseCodes: []string{"CS301", "CS312"}},
		},
	}
}

func TestFacultyPoolQualifiedOnly(t *testing.T) {
	cat := candidateCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())

	pool := gen.FacultyPool(cat.Courses[0])
	require.Len(t, pool, 1)
	assert.Equal(t, "Dr. Rao", pool[0].Name)
}

func TestFacultyPoolFallsBackWhenNobodyQualifies(t *testing.T) {
	cat := candidateCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	course := models.Course{Code: "PH101", Name: "Quantum Mechanics", Department: "PHY", Semester: 1}

	pool := gen.FacultyPool(course)
	require.Len(t, pool, 2)
	assert.Equal(t, "Dr. Rao", pool[0].Name)
	assert.Equal(t, "Dr. Das", pool[1].Name)
}

func TestRoomPoolTierOne(t *testing.T) {
	cat := candidateCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())

	rooms, err := gen.RoomPool(cat.Courses[0], cat.Sections[0])
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "R-101", rooms[0].Name)
	assert.Equal(t, "R-901", rooms[1].Name)
}

func TestRoomPoolLabCoursesNeedLabs(t *testing.T) {
	cat := candidateCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	smallSection := models.Section{ID: "CSE-5B", Department: "CSE", Year: 3, StudentCount: 25}

	rooms, err := gen.RoomPool(cat.Courses[1], smallSection)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "L-1", rooms[0].Name)
}

func TestRoomPoolTierTwoIgnoresTypeAndAffinity(t *testing.T) {
	cat := candidateCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())

	// A lab course with a section too large for any lab falls through to
	// capacity-only matching.
	rooms, err := gen.RoomPool(cat.Courses[1], cat.Sections[0])
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "R-101", rooms[0].Name)
	assert.Equal(t, "R-901", rooms[1].Name)
}

func TestRoomPoolTierThreeArbitraryRooms(t *testing.T) {
	cat := candidateCatalog()
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	huge := models.Section{ID: "ALL-1", Department: "CSE", Year: 1, StudentCount: 1000}

	rooms, err := gen.RoomPool(cat.Courses[0], huge)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)
}

func TestRoomPoolEmptyCatalogFails(t *testing.T) {
	cat := candidateCatalog()
	cat.Rooms = nil
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())

	_, err := gen.RoomPool(cat.Courses[0], cat.Sections[0])
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoRoomsAvailable.Code, appErr.Code)
}

func TestTuplesExcludeBreakAndBlackouts(t *testing.T) {
	cat := candidateCatalog()
	cat.Faculty[0].Unavailable = []models.SlotKey{{Day: "Monday", Slot: "9-10"}}
	gen := NewCandidateGenerator(cat, nil, zap.NewNop())
	units := BuildUnits(cat)
	require.NotEmpty(t, units)

	tuples, err := gen.Tuples(units[0])
	require.NoError(t, err)
	// 5 days x 6 teaching slots x 1 faculty x 2 rooms, minus the blackout cell.
	assert.Len(t, tuples, 5*6*2-2)
	for _, tuple := range tuples {
		assert.NotEqual(t, "12-1", tuple.Slot)
		assert.False(t, tuple.Day == "Monday" && tuple.Slot == "9-10")
	}
}

func TestBuildUnitsSkipsUnknownCourseCodes(t *testing.T) {
	cat := candidateCatalog()
	cat.Sections[0].CourseCodes = append(cat.Sections[0].CourseCodes, "ZZ999")

	units := BuildUnits(cat)
	require.Len(t, units, 2)
	assert.Equal(t, "CS301/CSE-5A", units[0].Key())
	assert.Equal(t, 3, units[0].Required)
	assert.Equal(t, 2, units[1].Required)
}
