package engine

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/catalog"
	"github.com/noah-isme/campus-timetabler/internal/models"
)

// Allocator is the greedy fallback path: a single randomized pass with no
// backtracking. It walks days then slots in fixed grid order and at each cell
// attempts one random placement from the currently-available pools. Units may
// end under-filled; shortfalls are reported, never fatal.
//
// The random source is owned by the allocator and seeded explicitly, never a
// process-global generator, so runs are reproducible in isolation. Two
// Allocate calls with the same seed and catalog produce identical results.
type Allocator struct {
	seed   int64
	logger *zap.Logger
}

// NewAllocator builds an allocator with a fixed seed.
func NewAllocator(seed int64, logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{seed: seed, logger: logger}
}

// AllocationResult is the allocator's output.
type AllocationResult struct {
	Assignments []models.Assignment
	Shortfalls  []models.Shortfall
	FacultyLoad map[string]int
}

// gridCell keys the busy maps.
type gridCell struct {
	Day  string
	Slot string
}

// allocState holds the four shared structures of a pass: faculty-busy map,
// room-busy map, faculty workload counter and per-section schedule. A
// successful placement updates all four together; a failed attempt mutates
// nothing.
type allocState struct {
	rng         *rand.Rand
	facultyBusy map[gridCell]map[string]bool
	roomBusy    map[gridCell]map[string]bool
	facultyLoad map[string]int
	sectionBusy map[string]map[gridCell]bool
}

func newAllocState(seed int64) *allocState {
	return &allocState{
		rng:         rand.New(rand.NewSource(seed)),
		facultyBusy: make(map[gridCell]map[string]bool),
		roomBusy:    make(map[gridCell]map[string]bool),
		facultyLoad: make(map[string]int),
		sectionBusy: make(map[string]map[gridCell]bool),
	}
}

func (st *allocState) facultyFree(name string, cell gridCell) bool {
	return !st.facultyBusy[cell][name]
}

func (st *allocState) roomFree(name string, cell gridCell) bool {
	return !st.roomBusy[cell][name]
}

func (st *allocState) sectionFree(sectionID string, cell gridCell) bool {
	return !st.sectionBusy[sectionID][cell]
}

func (st *allocState) commit(unit Unit, cell gridCell, faculty, room string) {
	if st.facultyBusy[cell] == nil {
		st.facultyBusy[cell] = make(map[string]bool)
	}
	if st.roomBusy[cell] == nil {
		st.roomBusy[cell] = make(map[string]bool)
	}
	if st.sectionBusy[unit.Section.ID] == nil {
		st.sectionBusy[unit.Section.ID] = make(map[gridCell]bool)
	}
	st.facultyBusy[cell][faculty] = true
	st.roomBusy[cell][room] = true
	st.facultyLoad[faculty]++
	st.sectionBusy[unit.Section.ID][cell] = true
}

// tryPlace attempts a single randomized assignment for a unit at a cell.
// Choices are uniform over the currently-available qualified faculty and
// suitable rooms; if either pool is empty the cell is skipped and no state
// changes.
func (st *allocState) tryPlace(unit Unit, cands Candidates, cell gridCell) (models.Assignment, bool) {
	var available []models.Faculty
	for _, f := range cands.Faculty {
		if !st.facultyFree(f.Name, cell) {
			continue
		}
		if f.IsUnavailable(cell.Day, cell.Slot) {
			continue
		}
		if f.MaxLoadHours > 0 && st.facultyLoad[f.Name] >= f.MaxLoadHours {
			continue
		}
		available = append(available, f)
	}
	if len(available) == 0 {
		return models.Assignment{}, false
	}
	chosen := available[st.rng.Intn(len(available))]

	var freeRooms []models.Room
	for _, room := range cands.Rooms {
		if st.roomFree(room.Name, cell) {
			freeRooms = append(freeRooms, room)
		}
	}
	if len(freeRooms) == 0 {
		return models.Assignment{}, false
	}
	room := freeRooms[st.rng.Intn(len(freeRooms))]

	st.commit(unit, cell, chosen.Name, room.Name)
	return models.Assignment{
		CourseCode: unit.Course.Code,
		CourseName: unit.Course.Name,
		SectionID:  unit.Section.ID,
		Day:        cell.Day,
		Slot:       cell.Slot,
		Faculty:    chosen.Name,
		Room:       room.Name,
	}, true
}

// Allocate runs the greedy pass over all units. Units with an empty room
// catalog abort the run; units with no free pools at every cell end as
// shortfalls.
func (a *Allocator) Allocate(units []Unit, gen *CandidateGenerator) (*AllocationResult, error) {
	st := newAllocState(a.seed)
	result := &AllocationResult{}

	for _, unit := range units {
		cands, err := gen.ForUnit(unit)
		if err != nil {
			return nil, err
		}

		assigned := 0
	dayLoop:
		for _, day := range catalog.Days {
			if assigned >= unit.Required {
				break
			}
			for _, slot := range catalog.TeachingSlots() {
				cell := gridCell{Day: day, Slot: slot}
				if !st.sectionFree(unit.Section.ID, cell) {
					continue
				}
				if assignment, ok := st.tryPlace(unit, cands, cell); ok {
					result.Assignments = append(result.Assignments, assignment)
					assigned++
					if assigned >= unit.Required {
						break dayLoop
					}
				}
			}
		}

		if assigned < unit.Required {
			a.logger.Warn("unit under-filled",
				zap.String("unit", unit.Key()),
				zap.Int("required", unit.Required),
				zap.Int("assigned", assigned),
			)
			result.Shortfalls = append(result.Shortfalls, models.Shortfall{
				CourseCode: unit.Course.Code,
				SectionID:  unit.Section.ID,
				Required:   unit.Required,
				Assigned:   assigned,
			})
		}
	}

	result.FacultyLoad = st.facultyLoad
	return result, nil
}
