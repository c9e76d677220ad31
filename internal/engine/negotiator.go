package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetabler/internal/catalog"
	"github.com/noah-isme/campus-timetabler/internal/models"
)

// Negotiator detects and repairs violations on an already-produced schedule
// against current catalog data. It never invents assignments, only relocates
// existing ones. Three rule families run in fixed priority order: faculty
// availability, senior morning preference, room capacity. Every detected
// violation is recorded whether or not it was auto-resolved.
type Negotiator struct {
	seniorLoadThreshold int
	logger              *zap.Logger
}

// NewNegotiator builds a negotiator. A non-positive threshold defaults to 25
// weekly hours.
func NewNegotiator(seniorLoadThreshold int, logger *zap.Logger) *Negotiator {
	if seniorLoadThreshold <= 0 {
		seniorLoadThreshold = 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Negotiator{seniorLoadThreshold: seniorLoadThreshold, logger: logger}
}

// occupancy indexes the schedule for conflict-free relocation checks. The
// negotiator owns the schedule exclusively for the duration of the pass.
type occupancy struct {
	faculty map[gridCell]map[string]bool
	rooms   map[gridCell]map[string]bool
	section map[string]map[gridCell]bool
}

func indexSchedule(sched *models.Schedule) *occupancy {
	occ := &occupancy{
		faculty: make(map[gridCell]map[string]bool),
		rooms:   make(map[gridCell]map[string]bool),
		section: make(map[string]map[gridCell]bool),
	}
	for _, a := range sched.Assignments {
		occ.add(a)
	}
	return occ
}

func (o *occupancy) add(a models.Assignment) {
	cell := gridCell{Day: a.Day, Slot: a.Slot}
	if o.faculty[cell] == nil {
		o.faculty[cell] = make(map[string]bool)
	}
	if o.rooms[cell] == nil {
		o.rooms[cell] = make(map[string]bool)
	}
	if o.section[a.SectionID] == nil {
		o.section[a.SectionID] = make(map[gridCell]bool)
	}
	o.faculty[cell][a.Faculty] = true
	o.rooms[cell][a.Room] = true
	o.section[a.SectionID][cell] = true
}

func (o *occupancy) remove(a models.Assignment) {
	cell := gridCell{Day: a.Day, Slot: a.Slot}
	delete(o.faculty[cell], a.Faculty)
	delete(o.rooms[cell], a.Room)
	delete(o.section[a.SectionID], cell)
}

func (o *occupancy) cellFree(a models.Assignment, cell gridCell) bool {
	return !o.faculty[cell][a.Faculty] && !o.rooms[cell][a.Room] && !o.section[a.SectionID][cell]
}

// Repair runs the full pass and marks the schedule finalized. The returned
// violations include resolved ones; callers persist them as a side channel.
// Re-running Repair on an already-repaired schedule with unchanged data
// reports only the still-unresolved items.
func (n *Negotiator) Repair(sched *models.Schedule, cat *models.Catalog) []models.Violation {
	violations := make([]models.Violation, 0)
	occ := indexSchedule(sched)

	violations = append(violations, n.repairAvailability(sched, cat, occ)...)
	violations = append(violations, n.repairSeniorSlots(sched, cat, occ)...)
	violations = append(violations, n.repairRoomCapacity(sched, cat, occ)...)

	sched.Status = models.ScheduleStatusFinal
	n.logger.Info("repair pass finished",
		zap.String("schedule_id", sched.ID),
		zap.Int("violations", len(violations)),
	)
	return violations
}

// repairAvailability relocates assignments that fall in a faculty blackout
// slot to the first open slot of that faculty's availability window.
func (n *Negotiator) repairAvailability(sched *models.Schedule, cat *models.Catalog, occ *occupancy) []models.Violation {
	var violations []models.Violation
	for i := range sched.Assignments {
		a := &sched.Assignments[i]
		f, ok := cat.FacultyByName(a.Faculty)
		if !ok {
			violations = append(violations, violation(models.ViolationFacultyMissing, *a,
				fmt.Sprintf("faculty %s not present in catalog", a.Faculty), false))
			continue
		}
		if !f.IsUnavailable(a.Day, a.Slot) {
			continue
		}

		detected := *a
		resolved := n.relocate(a, occ, func(cell gridCell) bool {
			return !f.IsUnavailable(cell.Day, cell.Slot)
		})
		violations = append(violations, violation(models.ViolationFacultyAvailability, detected,
			fmt.Sprintf("faculty %s unavailable at %s %s", detected.Faculty, detected.Day, detected.Slot), resolved))
	}
	return violations
}

// repairSeniorSlots moves afternoon assignments of senior (or heavily
// loaded) faculty to an open morning slot on the same day. Best effort; no
// free morning slot is not a hard failure.
func (n *Negotiator) repairSeniorSlots(sched *models.Schedule, cat *models.Catalog, occ *occupancy) []models.Violation {
	var violations []models.Violation
	for i := range sched.Assignments {
		a := &sched.Assignments[i]
		f, ok := cat.FacultyByName(a.Faculty)
		if !ok {
			continue
		}
		if !f.Senior && f.MaxLoadHours <= n.seniorLoadThreshold {
			continue
		}
		if !catalog.IsAfternoon(a.Slot) {
			continue
		}

		detected := *a
		resolved := false
		for _, slot := range catalog.MorningSlots {
			cell := gridCell{Day: a.Day, Slot: slot}
			if f.IsUnavailable(cell.Day, cell.Slot) || !occ.cellFree(*a, cell) {
				continue
			}
			occ.remove(*a)
			a.Slot = slot
			occ.add(*a)
			resolved = true
			break
		}
		violations = append(violations, violation(models.ViolationSeniorSlotPreference, detected,
			fmt.Sprintf("senior faculty %s assigned past noon", detected.Faculty), resolved))
	}
	return violations
}

// repairRoomCapacity reassigns assignments whose room is smaller than the
// section to a larger type-compatible room free at that slot.
func (n *Negotiator) repairRoomCapacity(sched *models.Schedule, cat *models.Catalog, occ *occupancy) []models.Violation {
	var violations []models.Violation
	for i := range sched.Assignments {
		a := &sched.Assignments[i]
		room, roomOK := cat.RoomByName(a.Room)
		course, courseOK := cat.CourseByCode(a.CourseCode)
		section := sectionByID(cat, a.SectionID)
		if !roomOK || !courseOK || section == nil {
			continue
		}
		if room.Capacity >= section.StudentCount {
			continue
		}

		detected := *a
		cell := gridCell{Day: a.Day, Slot: a.Slot}
		resolved := false
		for _, candidate := range cat.Rooms {
			if candidate.Name == a.Room {
				continue
			}
			if !roomTypeMatches(candidate, course) || candidate.Capacity < section.StudentCount {
				continue
			}
			if occ.rooms[cell][candidate.Name] {
				continue
			}
			occ.remove(*a)
			a.Room = candidate.Name
			occ.add(*a)
			resolved = true
			break
		}
		violations = append(violations, violation(models.ViolationRoomCapacity, detected,
			fmt.Sprintf("room %s capacity below section size %d", detected.Room, section.StudentCount), resolved))
	}
	return violations
}

// relocate moves an assignment to the first grid cell, in fixed day/slot
// order, that passes the extra predicate and has its faculty, room and
// section all free. Returns whether a move happened.
func (n *Negotiator) relocate(a *models.Assignment, occ *occupancy, allowed func(gridCell) bool) bool {
	for _, day := range catalog.Days {
		for _, slot := range catalog.TeachingSlots() {
			cell := gridCell{Day: day, Slot: slot}
			if cell.Day == a.Day && cell.Slot == a.Slot {
				continue
			}
			if !allowed(cell) || !occ.cellFree(*a, cell) {
				continue
			}
			occ.remove(*a)
			a.Day = cell.Day
			a.Slot = cell.Slot
			occ.add(*a)
			return true
		}
	}
	return false
}

func sectionByID(cat *models.Catalog, id string) *models.Section {
	for i := range cat.Sections {
		if cat.Sections[i].ID == id {
			return &cat.Sections[i]
		}
	}
	return nil
}

func violation(kind models.ViolationKind, a models.Assignment, message string, resolved bool) models.Violation {
	return models.Violation{
		Kind:       kind,
		CourseCode: a.CourseCode,
		SectionID:  a.SectionID,
		Day:        a.Day,
		Slot:       a.Slot,
		Faculty:    a.Faculty,
		Room:       a.Room,
		Message:    message,
		Resolved:   resolved,
	}
}
