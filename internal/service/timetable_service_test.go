package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/dto"
	"github.com/noah-isme/campus-timetabler/internal/models"
	"github.com/noah-isme/campus-timetabler/pkg/config"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
)

type catalogStub struct {
	cat *models.Catalog
	err error
}

func (s *catalogStub) Load(ctx context.Context, department string, semester int) (*models.Catalog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cat, nil
}

type scheduleStoreStub struct {
	saved      *models.Schedule
	replaced   *models.Schedule
	violations []models.Violation
	runs       map[string]*models.Schedule
}

func newScheduleStoreStub() *scheduleStoreStub {
	return &scheduleStoreStub{runs: make(map[string]*models.Schedule)}
}

func (s *scheduleStoreStub) SaveRun(ctx context.Context, sched *models.Schedule) error {
	if sched.ID == "" {
		sched.ID = "run-test"
	}
	s.saved = sched
	s.runs[sched.ID] = sched
	return nil
}

func (s *scheduleStoreStub) FindRun(ctx context.Context, id string) (*models.Schedule, error) {
	sched, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *sched
	copied.Assignments = append([]models.Assignment(nil), sched.Assignments...)
	return &copied, nil
}

func (s *scheduleStoreStub) FindLatest(ctx context.Context, department string, semester int) (*models.Schedule, error) {
	for _, sched := range s.runs {
		if sched.Department == department && sched.Semester == semester {
			return sched, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *scheduleStoreStub) ReplaceAssignments(ctx context.Context, sched *models.Schedule) error {
	s.replaced = sched
	s.runs[sched.ID] = sched
	return nil
}

func (s *scheduleStoreStub) SaveViolations(ctx context.Context, runID string, violations []models.Violation) error {
	s.violations = violations
	return nil
}

func (s *scheduleStoreStub) ListViolations(ctx context.Context, runID string) ([]models.Violation, error) {
	return s.violations, nil
}

func serviceCatalog() *models.Catalog {
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
		},
		Sections: []models.Section{
			{ID: "CSE-5A", Department: "CSE", Year: 3, StudentCount: 50, CourseCodes: []string{"CS301"}},
		},
	}
}

func newTestService(cat *models.Catalog, store *scheduleStoreStub, cfg config.SchedulerConfig) *TimetableService {
	return NewTimetableService(&catalogStub{cat: cat}, store, nil, nil, zap.NewNop(), cfg)
}

func seedPtr(v int64) *int64 { return &v }

func TestGenerateHeuristic(t *testing.T) {
	store := newScheduleStoreStub()
	svc := newTestService(serviceCatalog(), store, config.SchedulerConfig{Mode: "heuristic"})

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE", Semester: 5, Seed: seedPtr(42),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ScheduleModeHeuristic, resp.Mode)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, int64(42), resp.Seed)
	assert.Equal(t, 2, resp.Assignments)
	assert.Empty(t, resp.Shortfalls)
	require.NotNil(t, store.saved)
	assert.Len(t, store.saved.Assignments, 2)
}

func TestGenerateExactFeasible(t *testing.T) {
	store := newScheduleStoreStub()
	svc := newTestService(serviceCatalog(), store, config.SchedulerConfig{Mode: "exact"})

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE", Semester: 5, Seed: seedPtr(7),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ScheduleModeExact, resp.Mode)
	assert.Equal(t, "FEASIBLE", resp.SolveStatus)
	assert.True(t, resp.Verified)
	assert.Equal(t, 2, resp.Assignments)
}

func TestGenerateExactInfeasibleFallsBack(t *testing.T) {
	cat := serviceCatalog()
	cat.Faculty = cat.Faculty[:1]
	cat.Faculty[0].MaxLoadHours = 1

	store := newScheduleStoreStub()
	svc := newTestService(cat, store, config.SchedulerConfig{Mode: "exact", FallbackOnInfeasible: true})

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE", Semester: 5, Seed: seedPtr(7),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ScheduleModeHeuristic, resp.Mode)
	assert.Equal(t, "INFEASIBLE", resp.SolveStatus)
	assert.False(t, resp.Verified)
	assert.Equal(t, 1, resp.Assignments)
	require.Len(t, resp.Shortfalls, 1)
	assert.Equal(t, 1, resp.Shortfalls[0].Assigned)
}

func TestGenerateExactInfeasibleWithoutFallbackFails(t *testing.T) {
	cat := serviceCatalog()
	cat.Faculty = cat.Faculty[:1]
	cat.Faculty[0].MaxLoadHours = 1

	store := newScheduleStoreStub()
	svc := newTestService(cat, store, config.SchedulerConfig{Mode: "exact", FallbackOnInfeasible: false})

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE", Semester: 5, Seed: seedPtr(7),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInfeasible.Code, appErrors.FromError(err).Code)
	assert.Nil(t, store.saved)
}

func TestGenerateValidatesPayload(t *testing.T) {
	svc := newTestService(serviceCatalog(), newScheduleStoreStub(), config.SchedulerConfig{})

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Semester: 5})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateWithNegotiatePersistsViolations(t *testing.T) {
	cat := serviceCatalog()
	cat.Faculty[0].Senior = true

	store := newScheduleStoreStub()
	svc := newTestService(cat, store, config.SchedulerConfig{Mode: "heuristic", SeniorLoadThreshold: 25})

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE", Semester: 5, Seed: seedPtr(42), Negotiate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "FINAL", resp.Status)
	assert.Equal(t, resp.Violations, store.violations)
}

func TestNegotiateRepairsStoredRun(t *testing.T) {
	cat := serviceCatalog()
	cat.Rooms = append(cat.Rooms, models.Room{Name: "R-10", Capacity: 20, Type: models.RoomTypeClassroom, Department: "CSE"})

	store := newScheduleStoreStub()
	store.runs["run-1"] = &models.Schedule{
		ID: "run-1", Department: "CSE", Semester: 5,
		Mode: models.ScheduleModeHeuristic, Status: models.ScheduleStatusDraft,
		Assignments: []models.Assignment{
			{CourseCode: "CS301", CourseName: "Algorithms", SectionID: "CSE-5A", Day: "Monday", Slot: "9-10", Faculty: "Dr. Rao", Room: "R-10"},
		},
	}
	svc := newTestService(cat, store, config.SchedulerConfig{SeniorLoadThreshold: 25})

	resp, err := svc.Negotiate(context.Background(), dto.NegotiateRequest{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "FINAL", resp.Status)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, models.ViolationRoomCapacity, resp.Violations[0].Kind)
	assert.Equal(t, 1, resp.Resolved)
	assert.Equal(t, 0, resp.Unresolved)
	require.NotNil(t, store.replaced)
	assert.NotEqual(t, "R-10", store.replaced.Assignments[0].Room)
}

func TestNegotiateUnknownRun(t *testing.T) {
	svc := newTestService(serviceCatalog(), newScheduleStoreStub(), config.SchedulerConfig{})

	_, err := svc.Negotiate(context.Background(), dto.NegotiateRequest{RunID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGridsAndSummaryFromStoredRun(t *testing.T) {
	store := newScheduleStoreStub()
	store.runs["run-1"] = &models.Schedule{
		ID: "run-1", Department: "CSE", Semester: 5, Status: models.ScheduleStatusFinal,
		Assignments: []models.Assignment{
			{CourseCode: "CS301", CourseName: "Algorithms", SectionID: "CSE-5A", Day: "Monday", Slot: "9-10", Faculty: "Dr. Rao", Room: "R-101"},
		},
	}
	svc := newTestService(serviceCatalog(), store, config.SchedulerConfig{})

	grids, err := svc.Grids(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, grids.Grids, 1)
	assert.Equal(t, "CSE-5A", grids.Grids[0].SectionID)

	summary, err := svc.Summary(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, summary.Summary.Sections, 1)
	assert.Equal(t, 1, summary.Summary.Sections[0].TotalHours)
}

func TestLatestNotFound(t *testing.T) {
	svc := newTestService(serviceCatalog(), newScheduleStoreStub(), config.SchedulerConfig{})

	_, err := svc.Latest(context.Background(), dto.TimetableQuery{Department: "CSE", Semester: 5})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
