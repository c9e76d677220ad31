package models

// RoomType distinguishes lecture rooms from labs.
type RoomType string

const (
	RoomTypeClassroom RoomType = "Classroom"
	RoomTypeLab       RoomType = "Lab"
)

// ContactHours holds required weekly session counts by type.
type ContactHours struct {
	Lecture   int `json:"lecture"`
	Tutorial  int `json:"tutorial"`
	Practical int `json:"practical"`
}

// Total returns the merged weekly session count. Lecture, tutorial and
// practical hours draw from one pool per course/section; sessions are not
// split into per-type slot categories.
func (h ContactHours) Total() int {
	return h.Lecture + h.Tutorial + h.Practical
}

// Course describes a catalog course. Immutable within a run.
type Course struct {
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Department string       `json:"department"`
	Semester   int          `json:"semester"`
	Hours      ContactHours `json:"hours"`
	Practical  bool         `json:"practical"`
	Credits    int          `json:"credits"`
}

// SlotKey identifies one cell of the weekly calendar grid.
type SlotKey struct {
	Day  string `json:"day"`
	Slot string `json:"slot"`
}

// Faculty describes a teacher. Immutable within a run; assigned hours are
// tracked on the Schedule, never here.
type Faculty struct {
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Subjects     []string  `json:"subjects"`
	YearsToTeach string    `json:"years_to_teach"`
	MaxLoadHours int       `json:"max_load_hours"`
	Unavailable  []SlotKey `json:"unavailable,omitempty"`
	Senior       bool      `json:"senior"`
}

// IsUnavailable reports whether the faculty declared a blackout for the slot.
func (f Faculty) IsUnavailable(day, slot string) bool {
	for _, key := range f.Unavailable {
		if key.Day == day && key.Slot == slot {
			return true
		}
	}
	return false
}

// Room describes a teaching room. Immutable.
type Room struct {
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Type       RoomType `json:"type"`
	Department string   `json:"department"` // department affinity, or "GENERAL"
}

// Section is a program-enrollment unit of students taking a common set of
// courses. Electives are resolved to concrete course codes before scheduling.
type Section struct {
	ID           string   `json:"id"`
	Department   string   `json:"department"`
	Year         int      `json:"year"`
	StudentCount int      `json:"student_count"`
	CourseCodes  []string `json:"course_codes"`
}

// Catalog is the immutable per-run snapshot of scheduling resources.
type Catalog struct {
	Courses  []Course  `json:"courses"`
	Faculty  []Faculty `json:"faculty"`
	Rooms    []Room    `json:"rooms"`
	Sections []Section `json:"sections"`
}

// CourseByCode looks up a course in the snapshot.
func (c *Catalog) CourseByCode(code string) (Course, bool) {
	for _, course := range c.Courses {
		if course.Code == code {
			return course, true
		}
	}
	return Course{}, false
}

// FacultyByName looks up a faculty member in the snapshot.
func (c *Catalog) FacultyByName(name string) (Faculty, bool) {
	for _, f := range c.Faculty {
		if f.Name == name {
			return f, true
		}
	}
	return Faculty{}, false
}

// RoomByName looks up a room in the snapshot.
func (c *Catalog) RoomByName(name string) (Room, bool) {
	for _, r := range c.Rooms {
		if r.Name == name {
			return r, true
		}
	}
	return Room{}, false
}
