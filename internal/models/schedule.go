package models

import "time"

// ScheduleStatus represents lifecycle phases for generated schedules.
type ScheduleStatus string

const (
	ScheduleStatusDraft ScheduleStatus = "DRAFT"
	ScheduleStatusFinal ScheduleStatus = "FINAL"
)

// ScheduleMode records which engine produced a schedule.
type ScheduleMode string

const (
	ScheduleModeExact     ScheduleMode = "exact"
	ScheduleModeHeuristic ScheduleMode = "heuristic"
)

// Assignment places one session of a course for a section into a calendar
// cell with a faculty member and a room. Created only by the solver or the
// allocator; relocated only by the negotiator.
type Assignment struct {
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	SectionID  string `db:"section_id" json:"section_id"`
	Day        string `db:"day_of_week" json:"day"`
	Slot       string `db:"time_slot" json:"slot"`
	Faculty    string `db:"faculty_name" json:"faculty"`
	Room       string `db:"room_name" json:"room"`
}

// Shortfall records the gap between a unit's required session count and the
// number actually placed.
type Shortfall struct {
	CourseCode string `json:"course_code"`
	SectionID  string `json:"section_id"`
	Required   int    `json:"required"`
	Assigned   int    `json:"assigned"`
}

// Schedule is the full assignment set for a run, replaced wholesale on the
// next run.
type Schedule struct {
	ID          string         `json:"id"`
	Department  string         `json:"department"`
	Semester    int            `json:"semester"`
	Mode        ScheduleMode   `json:"mode"`
	Status      ScheduleStatus `json:"status"`
	Seed        int64          `json:"seed"`
	Assignments []Assignment   `json:"assignments"`
	Shortfalls  []Shortfall    `json:"shortfalls,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FacultyLoad derives per-faculty assigned hours from the assignment set.
func (s *Schedule) FacultyLoad() map[string]int {
	load := make(map[string]int)
	for _, a := range s.Assignments {
		load[a.Faculty]++
	}
	return load
}

// UnitCounts derives per (course, section) assignment counts.
func (s *Schedule) UnitCounts() map[string]int {
	counts := make(map[string]int)
	for _, a := range s.Assignments {
		counts[a.CourseCode+"/"+a.SectionID]++
	}
	return counts
}

// ViolationKind tags the rule family a violation belongs to.
type ViolationKind string

const (
	ViolationFacultyMissing       ViolationKind = "FACULTY_MISSING"
	ViolationFacultyAvailability  ViolationKind = "FACULTY_AVAILABILITY"
	ViolationSeniorSlotPreference ViolationKind = "SENIOR_SLOT_PREFERENCE"
	ViolationRoomCapacity         ViolationKind = "ROOM_CAPACITY"
)

// Violation describes a schedule inconsistency detected by the negotiator.
// Violations are a side channel, never part of the Schedule itself.
type Violation struct {
	Kind       ViolationKind `json:"kind"`
	CourseCode string        `json:"course_code"`
	SectionID  string        `json:"section_id"`
	Day        string        `json:"day"`
	Slot       string        `json:"slot"`
	Faculty    string        `json:"faculty,omitempty"`
	Room       string        `json:"room,omitempty"`
	Message    string        `json:"message"`
	Resolved   bool          `json:"resolved"`
}
