package engine

import (
	"github.com/noah-isme/campus-timetabler/internal/models"
)

// Unit is one (course, section) pair requiring a number of weekly session
// placements.
type Unit struct {
	Course   models.Course
	Section  models.Section
	Required int
}

// Key identifies the unit in shortfall and log output.
func (u Unit) Key() string {
	return u.Course.Code + "/" + u.Section.ID
}

// BuildUnits expands a catalog snapshot into scheduling units, one per
// section course code, in catalog order. Course codes that do not resolve in
// the snapshot are skipped; the repository reports those at load time.
func BuildUnits(cat *models.Catalog) []Unit {
	var units []Unit
	for _, section := range cat.Sections {
		for _, code := range section.CourseCodes {
			course, ok := cat.CourseByCode(code)
			if !ok {
				continue
			}
			units = append(units, Unit{
				Course:   course,
				Section:  section,
				Required: course.Hours.Total(),
			})
		}
	}
	return units
}
