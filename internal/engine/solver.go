package engine

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

// SolveStatus is the tri-state outcome of an exact solve. BudgetExceeded is
// distinct from Infeasible: running out of time is not a proof that no
// solution exists, and callers must not conflate the two.
type SolveStatus string

const (
	StatusFeasible       SolveStatus = "FEASIBLE"
	StatusInfeasible     SolveStatus = "INFEASIBLE"
	StatusBudgetExceeded SolveStatus = "BUDGET_EXCEEDED"
)

// Solution is the result of a solve.
type Solution struct {
	Status      SolveStatus
	Assignments []models.Assignment
	Shortfalls  []models.Shortfall
	// Verified is false when the budget expired: the returned assignments
	// are the best partial found, not a proven feasible timetable.
	Verified bool
	Elapsed  time.Duration
	Nodes    int64
}

// Solver abstracts "solve constraint model, return assignment or
// infeasibility proof" so a propagation engine, SAT encoding or ILP
// formulation can be substituted without touching the model or its callers.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// BacktrackingSolver is a depth-first exact solver with chronological
// backtracking, fail-first session ordering and seeded randomized
// tie-breaking. It presents a synchronous, blocking call bounded by a
// wall-clock budget.
type BacktrackingSolver struct {
	budget time.Duration
	seed   int64
	logger *zap.Logger
}

// NewBacktrackingSolver builds a solver. A non-positive budget defaults to
// 30 seconds.
func NewBacktrackingSolver(budget time.Duration, seed int64, logger *zap.Logger) *BacktrackingSolver {
	if budget <= 0 {
		budget = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktrackingSolver{budget: budget, seed: seed, logger: logger}
}

type searchState struct {
	facultyBusy map[string]bool // faculty|day|slot
	roomBusy    map[string]bool
	sectionBusy map[string]bool
	facultyLoad map[string]int
	chosen      []int // per session, chosen var index or -1
}

// Solve implements Solver. The same seed and model always produce the same
// result.
func (s *BacktrackingSolver) Solve(ctx context.Context, m *Model) (*Solution, error) {
	start := time.Now()
	deadline := start.Add(s.budget)
	rng := rand.New(rand.NewSource(s.seed))

	// Fail-first: place the most constrained sessions before the loose ones.
	order := make([]int, len(m.Sessions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(m.Candidates(order[a])) < len(m.Candidates(order[b]))
	})

	// Pre-shuffle each session's candidate order once so tie-breaking is
	// random but reproducible for a given seed.
	shuffled := make([][]int, len(m.Sessions))
	for _, session := range order {
		candidates := append([]int(nil), m.Candidates(session)...)
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		shuffled[session] = candidates
	}

	state := &searchState{
		facultyBusy: make(map[string]bool),
		roomBusy:    make(map[string]bool),
		sectionBusy: make(map[string]bool),
		facultyLoad: make(map[string]int),
		chosen:      make([]int, len(m.Sessions)),
	}
	for i := range state.chosen {
		state.chosen[i] = -1
	}

	var nodes int64
	var bestDepth int
	bestChosen := make([]int, len(m.Sessions))
	copy(bestChosen, state.chosen)
	budgetHit := false

	var search func(depth int) bool
	search = func(depth int) bool {
		if depth == len(order) {
			return true
		}
		session := order[depth]
		unit := m.Unit(session)

		for _, varIdx := range shuffled[session] {
			nodes++
			if nodes%1024 == 0 {
				if time.Now().After(deadline) || ctx.Err() != nil {
					budgetHit = true
					return false
				}
			}
			if budgetHit {
				return false
			}

			tuple := m.Vars[varIdx].Tuple
			fKey := "f|" + tuple.Faculty + "|" + tuple.Day + "|" + tuple.Slot
			rKey := "r|" + tuple.Room + "|" + tuple.Day + "|" + tuple.Slot
			cKey := "c|" + unit.Section.ID + "|" + tuple.Day + "|" + tuple.Slot
			if state.facultyBusy[fKey] || state.roomBusy[rKey] || state.sectionBusy[cKey] {
				continue
			}
			if max := m.MaxLoad[tuple.Faculty]; max > 0 && state.facultyLoad[tuple.Faculty] >= max {
				continue
			}

			state.facultyBusy[fKey] = true
			state.roomBusy[rKey] = true
			state.sectionBusy[cKey] = true
			state.facultyLoad[tuple.Faculty]++
			state.chosen[session] = varIdx

			if depth+1 > bestDepth {
				bestDepth = depth + 1
				copy(bestChosen, state.chosen)
			}

			if search(depth + 1) {
				return true
			}

			delete(state.facultyBusy, fKey)
			delete(state.roomBusy, rKey)
			delete(state.sectionBusy, cKey)
			state.facultyLoad[tuple.Faculty]--
			state.chosen[session] = -1

			if budgetHit {
				return false
			}
		}
		return false
	}

	solved := search(0)
	elapsed := time.Since(start)

	solution := &Solution{Elapsed: elapsed, Nodes: nodes}
	switch {
	case solved:
		solution.Status = StatusFeasible
		solution.Verified = true
		solution.Assignments = s.extract(m, state.chosen)
	case budgetHit:
		solution.Status = StatusBudgetExceeded
		solution.Assignments = s.extract(m, bestChosen)
	default:
		solution.Status = StatusInfeasible
		solution.Verified = true
	}
	solution.Shortfalls = s.shortfalls(m, solution)

	s.logger.Info("exact solve finished",
		zap.String("status", string(solution.Status)),
		zap.Int64("nodes", nodes),
		zap.Duration("elapsed", elapsed),
		zap.Int("assignments", len(solution.Assignments)),
	)
	return solution, nil
}

func (s *BacktrackingSolver) extract(m *Model, chosen []int) []models.Assignment {
	var assignments []models.Assignment
	for session, varIdx := range chosen {
		if varIdx < 0 {
			continue
		}
		tuple := m.Vars[varIdx].Tuple
		unit := m.Unit(session)
		assignments = append(assignments, models.Assignment{
			CourseCode: unit.Course.Code,
			CourseName: unit.Course.Name,
			SectionID:  unit.Section.ID,
			Day:        tuple.Day,
			Slot:       tuple.Slot,
			Faculty:    tuple.Faculty,
			Room:       tuple.Room,
		})
	}
	return assignments
}

func (s *BacktrackingSolver) shortfalls(m *Model, solution *Solution) []models.Shortfall {
	assigned := make(map[string]int)
	for _, a := range solution.Assignments {
		assigned[a.CourseCode+"/"+a.SectionID]++
	}

	shortfalls := append([]models.Shortfall(nil), m.Skipped...)
	for _, unit := range m.Units {
		got := assigned[unit.Key()]
		if got < unit.Required && !containsShortfall(shortfalls, unit) {
			shortfalls = append(shortfalls, models.Shortfall{
				CourseCode: unit.Course.Code,
				SectionID:  unit.Section.ID,
				Required:   unit.Required,
				Assigned:   got,
			})
		}
	}
	return shortfalls
}

func containsShortfall(shortfalls []models.Shortfall, unit Unit) bool {
	for _, sf := range shortfalls {
		if sf.CourseCode == unit.Course.Code && sf.SectionID == unit.Section.ID {
			return true
		}
	}
	return false
}
