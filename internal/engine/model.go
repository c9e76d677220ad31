package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

// Session is one required placement occurrence of a unit. A unit needing
// three weekly hours contributes three sessions sharing one candidate list.
type Session struct {
	UnitIndex  int
	Occurrence int
}

// Var is a boolean decision variable: "this session is placed at this tuple".
type Var struct {
	Session int
	Tuple   Tuple
}

// Model is the declarative constraint set over the decision variables:
// exactly-one tuple per session, at-most-one session per faculty, room and
// section grid cell. The break slot never appears because candidate
// generation excludes it.
type Model struct {
	Units    []Unit
	Sessions []Session
	Vars     []Var

	// ExactlyOne lists, per session, the indices of its candidate vars.
	ExactlyOne [][]int
	// AtMostOne groups var indices that may not be simultaneously true,
	// keyed by the shared resource cell.
	AtMostOne map[string][]int

	// MaxLoad caps weekly assigned hours per faculty name; zero means
	// uncapped.
	MaxLoad map[string]int

	// Skipped records units that had zero legal tuples; the run continues
	// without them and the gap is reported as a shortfall.
	Skipped []models.Shortfall
}

// BuildModel assembles the constraint model for a batch of units. It fails
// only when the candidate generator does (empty room catalog); units with an
// empty candidate set are skipped, not fatal.
func BuildModel(units []Unit, gen *CandidateGenerator, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Model{
		Units:     units,
		AtMostOne: make(map[string][]int),
		MaxLoad:   make(map[string]int),
	}
	for _, f := range gen.cat.Faculty {
		m.MaxLoad[f.Name] = f.MaxLoadHours
	}

	for unitIdx, unit := range units {
		tuples, err := gen.Tuples(unit)
		if err != nil {
			return nil, err
		}
		if len(tuples) == 0 {
			logger.Warn("unit has no candidate tuples, skipping",
				zap.String("unit", unit.Key()),
				zap.Int("required", unit.Required),
			)
			m.Skipped = append(m.Skipped, models.Shortfall{
				CourseCode: unit.Course.Code,
				SectionID:  unit.Section.ID,
				Required:   unit.Required,
				Assigned:   0,
			})
			continue
		}

		for occ := 0; occ < unit.Required; occ++ {
			sessionIdx := len(m.Sessions)
			m.Sessions = append(m.Sessions, Session{UnitIndex: unitIdx, Occurrence: occ})

			varIdxs := make([]int, 0, len(tuples))
			for _, tuple := range tuples {
				varIdx := len(m.Vars)
				m.Vars = append(m.Vars, Var{Session: sessionIdx, Tuple: tuple})
				varIdxs = append(varIdxs, varIdx)

				facultyKey := fmt.Sprintf("faculty|%s|%s|%s", tuple.Faculty, tuple.Day, tuple.Slot)
				roomKey := fmt.Sprintf("room|%s|%s|%s", tuple.Room, tuple.Day, tuple.Slot)
				sectionKey := fmt.Sprintf("section|%s|%s|%s", unit.Section.ID, tuple.Day, tuple.Slot)
				m.AtMostOne[facultyKey] = append(m.AtMostOne[facultyKey], varIdx)
				m.AtMostOne[roomKey] = append(m.AtMostOne[roomKey], varIdx)
				m.AtMostOne[sectionKey] = append(m.AtMostOne[sectionKey], varIdx)
			}
			m.ExactlyOne = append(m.ExactlyOne, varIdxs)
		}
	}

	return m, nil
}

// Candidates returns the candidate var indices of a session.
func (m *Model) Candidates(session int) []int {
	return m.ExactlyOne[session]
}

// Unit returns the unit a session belongs to.
func (m *Model) Unit(session int) Unit {
	return m.Units[m.Sessions[session].UnitIndex]
}
