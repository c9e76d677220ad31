package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/catalog"
	"github.com/noah-isme/campus-timetabler/internal/models"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
)

// Tuple is one legal (day, slot, faculty, room) combination for a unit before
// any scheduling decision is made.
type Tuple struct {
	Day     string
	Slot    string
	Faculty string
	Room    string
}

// Candidates holds the legal faculty and room pools for a unit.
type Candidates struct {
	Faculty []models.Faculty
	Rooms   []models.Room
}

// CandidateGenerator enumerates legal assignment tuples from the catalog
// snapshot.
type CandidateGenerator struct {
	cat       *models.Catalog
	qualifier catalog.Qualifier
	logger    *zap.Logger
}

// NewCandidateGenerator wires the generator over an immutable snapshot.
func NewCandidateGenerator(cat *models.Catalog, qualifier catalog.Qualifier, logger *zap.Logger) *CandidateGenerator {
	if qualifier == nil {
		qualifier = catalog.NewKeywordQualifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateGenerator{cat: cat, qualifier: qualifier, logger: logger}
}

// FacultyPool returns the faculty qualified for a course. When nobody
// qualifies, the pool degrades to the first two catalog faculty so downstream
// search never starts from an empty set. This is a deliberate
// availability-over-correctness tradeoff inherited from the data model: a
// thin faculty roster should still yield a reviewable draft timetable.
func (g *CandidateGenerator) FacultyPool(course models.Course) []models.Faculty {
	var qualified []models.Faculty
	for _, f := range g.cat.Faculty {
		if g.qualifier.Qualifies(f, course) {
			qualified = append(qualified, f)
		}
	}
	if len(qualified) > 0 {
		return qualified
	}

	fallback := g.cat.Faculty
	if len(fallback) > 2 {
		fallback = fallback[:2]
	}
	if len(fallback) > 0 {
		g.logger.Warn("no qualified faculty, using fallback pool",
			zap.String("course", course.Code),
			zap.Int("pool_size", len(fallback)),
		)
	}
	return fallback
}

// RoomPool returns rooms suitable for a course/section using a three-tier
// fallback: (1) type-compatible rooms with sufficient capacity and matching
// or general department affinity, (2) any room with sufficient capacity,
// (3) up to three arbitrary rooms. The tiers are load-bearing under sparse
// room data and must not be collapsed. Fails only when the room catalog is
// empty.
func (g *CandidateGenerator) RoomPool(course models.Course, section models.Section) ([]models.Room, error) {
	if len(g.cat.Rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoRoomsAvailable, "")
	}

	var tier1 []models.Room
	for _, room := range g.cat.Rooms {
		if !roomTypeMatches(room, course) {
			continue
		}
		if room.Capacity < section.StudentCount {
			continue
		}
		if !departmentMatches(room, section) {
			continue
		}
		tier1 = append(tier1, room)
	}
	if len(tier1) > 0 {
		return tier1, nil
	}

	var tier2 []models.Room
	for _, room := range g.cat.Rooms {
		if room.Capacity >= section.StudentCount {
			tier2 = append(tier2, room)
		}
	}
	if len(tier2) > 0 {
		return tier2, nil
	}

	tier3 := g.cat.Rooms
	if len(tier3) > 3 {
		tier3 = tier3[:3]
	}
	return tier3, nil
}

// ForUnit resolves both pools for a unit.
func (g *CandidateGenerator) ForUnit(unit Unit) (Candidates, error) {
	rooms, err := g.RoomPool(unit.Course, unit.Section)
	if err != nil {
		return Candidates{}, err
	}
	return Candidates{
		Faculty: g.FacultyPool(unit.Course),
		Rooms:   rooms,
	}, nil
}

// Tuples expands a unit's pools over the weekly grid, excluding the break
// slot and faculty blackout slots.
func (g *CandidateGenerator) Tuples(unit Unit) ([]Tuple, error) {
	cands, err := g.ForUnit(unit)
	if err != nil {
		return nil, err
	}

	var tuples []Tuple
	for _, day := range catalog.Days {
		for _, slot := range catalog.TeachingSlots() {
			for _, f := range cands.Faculty {
				if f.IsUnavailable(day, slot) {
					continue
				}
				for _, room := range cands.Rooms {
					tuples = append(tuples, Tuple{Day: day, Slot: slot, Faculty: f.Name, Room: room.Name})
				}
			}
		}
	}
	return tuples, nil
}

func roomTypeMatches(room models.Room, course models.Course) bool {
	if course.Practical {
		return room.Type == models.RoomTypeLab
	}
	return room.Type == models.RoomTypeClassroom
}

func departmentMatches(room models.Room, section models.Section) bool {
	dept := strings.ToUpper(strings.TrimSpace(room.Department))
	return dept == strings.ToUpper(section.Department) || dept == "GENERAL"
}
