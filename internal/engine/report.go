package engine

import (
	"fmt"
	"sort"

	"github.com/noah-isme/campus-timetabler/internal/catalog"
	"github.com/noah-isme/campus-timetabler/internal/models"
	"github.com/noah-isme/campus-timetabler/pkg/export"
)

// Grid markers for calendar cells without a teaching assignment.
const (
	CellFree  = "FREE"
	CellBreak = "BREAK"
)

// SectionGrid is one section's weekly calendar, keyed grid[slot][day].
type SectionGrid struct {
	SectionID string                       `json:"section_id"`
	Slots     []string                     `json:"slots"`
	Days      []string                     `json:"days"`
	Cells     map[string]map[string]string `json:"cells"`
}

// SubjectHours is one row of the per-section course summary.
type SubjectHours struct {
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Hours      int    `json:"hours"`
}

// SectionSummary totals assigned hours for one section.
type SectionSummary struct {
	SectionID  string         `json:"section_id"`
	TotalHours int            `json:"total_hours"`
	Subjects   []SubjectHours `json:"subjects"`
}

// FacultySummary totals assigned weekly hours for one faculty member.
type FacultySummary struct {
	Faculty     string `json:"faculty"`
	WeeklyHours int    `json:"weekly_hours"`
}

// WorkloadSummary is the run-level reporting rollup.
type WorkloadSummary struct {
	Sections   []SectionSummary   `json:"sections"`
	Faculty    []FacultySummary   `json:"faculty"`
	Shortfalls []models.Shortfall `json:"shortfalls,omitempty"`
}

// BuildSectionGrids renders one grid per section, sections in lexical order.
// The lunch slot carries the BREAK marker, every other empty cell FREE.
func BuildSectionGrids(sched *models.Schedule) []SectionGrid {
	bySection := make(map[string][]models.Assignment)
	for _, a := range sched.Assignments {
		bySection[a.SectionID] = append(bySection[a.SectionID], a)
	}

	ids := make([]string, 0, len(bySection))
	for id := range bySection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	grids := make([]SectionGrid, 0, len(ids))
	for _, id := range ids {
		grid := SectionGrid{
			SectionID: id,
			Slots:     append([]string(nil), catalog.TimeSlots...),
			Days:      append([]string(nil), catalog.Days...),
			Cells:     make(map[string]map[string]string),
		}
		for _, slot := range catalog.TimeSlots {
			grid.Cells[slot] = make(map[string]string)
			for _, day := range catalog.Days {
				if slot == catalog.BreakSlot {
					grid.Cells[slot][day] = CellBreak
				} else {
					grid.Cells[slot][day] = CellFree
				}
			}
		}
		for _, a := range bySection[id] {
			grid.Cells[a.Slot][a.Day] = fmt.Sprintf("%s (%s, %s)", a.CourseCode, a.Faculty, a.Room)
		}
		grids = append(grids, grid)
	}
	return grids
}

// BuildWorkloadSummary rolls the schedule up into per-section and per-faculty
// assigned hour totals plus the run's shortfall list.
func BuildWorkloadSummary(sched *models.Schedule) WorkloadSummary {
	type sectionAgg struct {
		total    int
		subjects map[string]*SubjectHours
	}
	sections := make(map[string]*sectionAgg)
	for _, a := range sched.Assignments {
		agg := sections[a.SectionID]
		if agg == nil {
			agg = &sectionAgg{subjects: make(map[string]*SubjectHours)}
			sections[a.SectionID] = agg
		}
		agg.total++
		subj := agg.subjects[a.CourseCode]
		if subj == nil {
			subj = &SubjectHours{CourseCode: a.CourseCode, CourseName: a.CourseName}
			agg.subjects[a.CourseCode] = subj
		}
		subj.Hours++
	}

	summary := WorkloadSummary{Shortfalls: sched.Shortfalls}
	sectionIDs := make([]string, 0, len(sections))
	for id := range sections {
		sectionIDs = append(sectionIDs, id)
	}
	sort.Strings(sectionIDs)
	for _, id := range sectionIDs {
		agg := sections[id]
		entry := SectionSummary{SectionID: id, TotalHours: agg.total}
		codes := make([]string, 0, len(agg.subjects))
		for code := range agg.subjects {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			entry.Subjects = append(entry.Subjects, *agg.subjects[code])
		}
		summary.Sections = append(summary.Sections, entry)
	}

	load := sched.FacultyLoad()
	names := make([]string, 0, len(load))
	for name := range load {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary.Faculty = append(summary.Faculty, FacultySummary{Faculty: name, WeeklyHours: load[name]})
	}
	return summary
}

// GridDataset flattens a section grid into exportable rows, slot per row and
// one column per weekday.
func GridDataset(grid SectionGrid) export.Dataset {
	headers := append([]string{"Time Slot"}, grid.Days...)
	rows := make([]map[string]string, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		row := map[string]string{"Time Slot": slot}
		for _, day := range grid.Days {
			row[day] = grid.Cells[slot][day]
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// SummaryDataset flattens the workload rollup into one exportable table.
func SummaryDataset(summary WorkloadSummary) export.Dataset {
	headers := []string{"Section", "Course", "Course Name", "Hours"}
	var rows []map[string]string
	for _, section := range summary.Sections {
		for _, subject := range section.Subjects {
			rows = append(rows, map[string]string{
				"Section":     section.SectionID,
				"Course":      subject.CourseCode,
				"Course Name": subject.CourseName,
				"Hours":       fmt.Sprintf("%d", subject.Hours),
			})
		}
		rows = append(rows, map[string]string{
			"Section":     section.SectionID,
			"Course":      "TOTAL",
			"Course Name": "",
			"Hours":       fmt.Sprintf("%d", section.TotalHours),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// FacultyDataset flattens per-faculty weekly hours into an exportable table.
func FacultyDataset(summary WorkloadSummary) export.Dataset {
	headers := []string{"Faculty", "Weekly Hours"}
	rows := make([]map[string]string, 0, len(summary.Faculty))
	for _, f := range summary.Faculty {
		rows = append(rows, map[string]string{
			"Faculty":      f.Faculty,
			"Weekly Hours": fmt.Sprintf("%d", f.WeeklyHours),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
