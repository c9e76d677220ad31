package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/dto"
	"github.com/noah-isme/campus-timetabler/internal/engine"
	"github.com/noah-isme/campus-timetabler/internal/models"
	"github.com/noah-isme/campus-timetabler/pkg/config"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
)

// CatalogLoader loads the immutable resource snapshot for a run.
type CatalogLoader interface {
	Load(ctx context.Context, department string, semester int) (*models.Catalog, error)
}

// ScheduleStore persists generation runs and repair output.
type ScheduleStore interface {
	SaveRun(ctx context.Context, sched *models.Schedule) error
	FindRun(ctx context.Context, id string) (*models.Schedule, error)
	FindLatest(ctx context.Context, department string, semester int) (*models.Schedule, error)
	ReplaceAssignments(ctx context.Context, sched *models.Schedule) error
	SaveViolations(ctx context.Context, runID string, violations []models.Violation) error
	ListViolations(ctx context.Context, runID string) ([]models.Violation, error)
}

// TimetableService orchestrates the scheduling pipeline: load snapshot,
// build units, run the exact solver or the greedy allocator, optionally run
// the repair pass, persist the run.
type TimetableService struct {
	catalogRepo  CatalogLoader
	scheduleRepo ScheduleStore
	cache        *redis.Client
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          config.SchedulerConfig
}

// NewTimetableService wires the scheduling pipeline.
func NewTimetableService(
	catalogRepo CatalogLoader,
	scheduleRepo ScheduleStore,
	cache *redis.Client,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		catalogRepo:  catalogRepo,
		scheduleRepo: scheduleRepo,
		cache:        cache,
		metrics:      metrics,
		validator:    validator.New(),
		logger:       logger,
		cfg:          cfg,
	}
}

// Generate runs the full pipeline and replaces the stored schedule for the
// department and semester.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	mode := models.ScheduleMode(req.Mode)
	if mode == "" {
		mode = models.ScheduleMode(s.cfg.Mode)
	}
	if mode != models.ScheduleModeExact && mode != models.ScheduleModeHeuristic {
		mode = models.ScheduleModeHeuristic
	}
	seed := s.resolveSeed(req.Seed)

	cat, err := s.catalogRepo.Load(ctx, req.Department, req.Semester)
	if err != nil {
		return nil, err
	}
	units := engine.BuildUnits(cat)
	if len(units) == 0 {
		return nil, appErrors.Clone(appErrors.ErrDataLoad, fmt.Sprintf("no schedulable units for %s semester %d", req.Department, req.Semester))
	}
	gen := engine.NewCandidateGenerator(cat, nil, s.logger)

	start := time.Now()
	sched := &models.Schedule{
		Department: req.Department,
		Semester:   req.Semester,
		Mode:       mode,
		Status:     models.ScheduleStatusDraft,
		Seed:       seed,
	}
	var solveStatus engine.SolveStatus
	verified := false

	switch mode {
	case models.ScheduleModeExact:
		solution, err := s.solveExact(ctx, units, gen, seed)
		if err != nil {
			return nil, err
		}
		solveStatus = solution.Status
		verified = solution.Verified

		if solution.Status == engine.StatusInfeasible {
			if !s.cfg.FallbackOnInfeasible {
				return nil, appErrors.Clone(appErrors.ErrInfeasible, "")
			}
			s.logger.Warn("exact model infeasible, falling back to heuristic pass",
				zap.String("department", req.Department),
				zap.Int("semester", req.Semester),
			)
			result, err := engine.NewAllocator(seed, s.logger).Allocate(units, gen)
			if err != nil {
				return nil, err
			}
			sched.Mode = models.ScheduleModeHeuristic
			sched.Assignments = result.Assignments
			sched.Shortfalls = result.Shortfalls
			verified = false
		} else {
			sched.Assignments = solution.Assignments
			sched.Shortfalls = solution.Shortfalls
		}
	default:
		result, err := engine.NewAllocator(seed, s.logger).Allocate(units, gen)
		if err != nil {
			return nil, err
		}
		sched.Assignments = result.Assignments
		sched.Shortfalls = result.Shortfalls
	}

	var violations []models.Violation
	if req.Negotiate {
		negotiator := engine.NewNegotiator(s.cfg.SeniorLoadThreshold, s.logger)
		violations = negotiator.Repair(sched, cat)
		for _, v := range violations {
			s.metrics.ObserveViolation(string(v.Kind), v.Resolved)
		}
	}

	if err := s.scheduleRepo.SaveRun(ctx, sched); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	if req.Negotiate {
		if err := s.scheduleRepo.SaveViolations(ctx, sched.ID, violations); err != nil {
			return nil, fmt.Errorf("save violations: %w", err)
		}
	}
	s.invalidateRun(ctx, sched.ID)

	elapsed := time.Since(start)
	shortfallHours := 0
	for _, sf := range sched.Shortfalls {
		shortfallHours += sf.Required - sf.Assigned
	}
	s.metrics.ObserveSolve(string(sched.Mode), s.solveLabel(solveStatus), elapsed, shortfallHours)
	s.logger.Info("timetable generated",
		zap.String("run_id", sched.ID),
		zap.String("mode", string(sched.Mode)),
		zap.Int64("seed", seed),
		zap.Int("assignments", len(sched.Assignments)),
		zap.Int("shortfalls", len(sched.Shortfalls)),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.GenerateTimetableResponse{
		RunID:       sched.ID,
		Department:  sched.Department,
		Semester:    sched.Semester,
		Mode:        sched.Mode,
		Status:      string(sched.Status),
		SolveStatus: string(solveStatus),
		Verified:    verified,
		Seed:        seed,
		Assignments: len(sched.Assignments),
		Shortfalls:  sched.Shortfalls,
		Violations:  violations,
		Elapsed:     elapsed / time.Millisecond,
		CreatedAt:   sched.CreatedAt,
	}, nil
}

// Negotiate runs the repair pass over a stored run against current catalog
// data. Safe to call repeatedly; an already-repaired run with unchanged data
// reports no new violations.
func (s *TimetableService) Negotiate(ctx context.Context, req dto.NegotiateRequest) (*dto.NegotiateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid negotiate payload")
	}

	sched, err := s.findRun(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	cat, err := s.catalogRepo.Load(ctx, sched.Department, sched.Semester)
	if err != nil {
		return nil, err
	}

	negotiator := engine.NewNegotiator(s.cfg.SeniorLoadThreshold, s.logger)
	violations := negotiator.Repair(sched, cat)

	if err := s.scheduleRepo.ReplaceAssignments(ctx, sched); err != nil {
		return nil, fmt.Errorf("persist repaired schedule: %w", err)
	}
	if err := s.scheduleRepo.SaveViolations(ctx, sched.ID, violations); err != nil {
		return nil, fmt.Errorf("save violations: %w", err)
	}
	s.invalidateRun(ctx, sched.ID)

	resolved := 0
	for _, v := range violations {
		s.metrics.ObserveViolation(string(v.Kind), v.Resolved)
		if v.Resolved {
			resolved++
		}
	}

	return &dto.NegotiateResponse{
		RunID:      sched.ID,
		Status:     string(sched.Status),
		Violations: violations,
		Resolved:   resolved,
		Unresolved: len(violations) - resolved,
	}, nil
}

// Grids returns the per-section weekly grids of a run, cached per run.
func (s *TimetableService) Grids(ctx context.Context, runID string) (*dto.TimetableGridsResponse, error) {
	cacheKey := fmt.Sprintf("timetable:grids:%s", runID)
	var cached dto.TimetableGridsResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	sched, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	resp := &dto.TimetableGridsResponse{
		RunID:  sched.ID,
		Status: string(sched.Status),
		Grids:  engine.BuildSectionGrids(sched),
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

// Summary returns the workload rollup of a run, cached per run.
func (s *TimetableService) Summary(ctx context.Context, runID string) (*dto.WorkloadSummaryResponse, error) {
	cacheKey := fmt.Sprintf("timetable:summary:%s", runID)
	var cached dto.WorkloadSummaryResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	sched, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	resp := &dto.WorkloadSummaryResponse{
		RunID:   sched.ID,
		Summary: engine.BuildWorkloadSummary(sched),
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

// Latest returns the current run for a department and semester.
func (s *TimetableService) Latest(ctx context.Context, query dto.TimetableQuery) (*models.Schedule, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	sched, err := s.scheduleRepo.FindLatest(ctx, query.Department, query.Semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule for department and semester")
		}
		return nil, err
	}
	return sched, nil
}

// Violations returns the stored repair output for a run.
func (s *TimetableService) Violations(ctx context.Context, runID string) ([]models.Violation, error) {
	if _, err := s.findRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListViolations(ctx, runID)
}

// Run exposes a stored run for handlers and the export pipeline.
func (s *TimetableService) Run(ctx context.Context, runID string) (*models.Schedule, error) {
	return s.findRun(ctx, runID)
}

func (s *TimetableService) findRun(ctx context.Context, runID string) (*models.Schedule, error) {
	sched, err := s.scheduleRepo.FindRun(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule run not found")
		}
		return nil, err
	}
	return sched, nil
}

func (s *TimetableService) solveExact(ctx context.Context, units []engine.Unit, gen *engine.CandidateGenerator, seed int64) (*engine.Solution, error) {
	model, err := engine.BuildModel(units, gen, s.logger)
	if err != nil {
		return nil, err
	}
	solver := engine.NewBacktrackingSolver(s.cfg.SolverBudget, seed, s.logger)
	return solver.Solve(ctx, model)
}

func (s *TimetableService) resolveSeed(override *int64) int64 {
	if override != nil {
		return *override
	}
	if s.cfg.Seed != 0 {
		return s.cfg.Seed
	}
	return time.Now().UnixNano()
}

func (s *TimetableService) solveLabel(status engine.SolveStatus) string {
	if status == "" {
		return "heuristic"
	}
	return string(status)
}

func (s *TimetableService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		s.metrics.RecordCacheOperation(false)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		s.cache.Del(ctx, key)
		s.metrics.RecordCacheOperation(false)
		return false
	}
	s.metrics.RecordCacheOperation(true)
	return true
}

func (s *TimetableService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *TimetableService) invalidateRun(ctx context.Context, runID string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		fmt.Sprintf("timetable:grids:%s", runID),
		fmt.Sprintf("timetable:summary:%s", runID),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("run_id", runID), zap.Error(err))
	}
}
