package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-timetabler/internal/catalog"
	"github.com/noah-isme/campus-timetabler/internal/models"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
)

// CatalogRepository loads the per-run resource snapshot. Raw declaration
// columns (contact hours, subjects, unavailability) are parsed at load time
// so the engine only ever sees structured data.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type courseRow struct {
	Code         string `db:"code"`
	Name         string `db:"name"`
	Department   string `db:"department"`
	Semester     int    `db:"semester"`
	ContactHours string `db:"contact_hours"`
	Practical    bool   `db:"practical"`
	Credits      int    `db:"credits"`
}

type facultyRow struct {
	Name         string `db:"name"`
	Department   string `db:"department"`
	Subjects     string `db:"subjects"`
	YearsToTeach string `db:"years_to_teach"`
	MaxLoadHours int    `db:"max_load_hours"`
	Unavailable  string `db:"unavailable"`
	Senior       bool   `db:"senior"`
}

type roomRow struct {
	Name       string `db:"name"`
	Capacity   int    `db:"capacity"`
	RoomType   string `db:"room_type"`
	Department string `db:"department"`
}

type sectionRow struct {
	ID           string `db:"id"`
	Department   string `db:"department"`
	Year         int    `db:"year"`
	StudentCount int    `db:"student_count"`
}

type sectionCourseRow struct {
	SectionID  string `db:"section_id"`
	CourseCode string `db:"course_code"`
}

// Load reads the full snapshot for a department and semester. A snapshot
// without courses, faculty or sections cannot be scheduled and fails with a
// data load error; an empty room catalog is deferred to candidate generation
// so the caller sees the more specific failure.
func (r *CatalogRepository) Load(ctx context.Context, department string, semester int) (*models.Catalog, error) {
	cat := &models.Catalog{}

	const courseQuery = `SELECT code, name, department, semester, contact_hours, practical, credits
FROM courses WHERE department = $1 AND semester = $2 ORDER BY code`
	var courses []courseRow
	if err := r.db.SelectContext(ctx, &courses, courseQuery, department, semester); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	for _, row := range courses {
		cat.Courses = append(cat.Courses, models.Course{
			Code:       row.Code,
			Name:       row.Name,
			Department: row.Department,
			Semester:   row.Semester,
			Hours:      catalog.ParseContactHours(row.ContactHours),
			Practical:  row.Practical,
			Credits:    row.Credits,
		})
	}

	const facultyQuery = `SELECT name, department, subjects, years_to_teach, max_load_hours, unavailable, senior
FROM faculty WHERE department IN ($1, 'GENERAL', 'ALL') ORDER BY name`
	var faculty []facultyRow
	if err := r.db.SelectContext(ctx, &faculty, facultyQuery, department); err != nil {
		return nil, fmt.Errorf("load faculty: %w", err)
	}
	for _, row := range faculty {
		cat.Faculty = append(cat.Faculty, models.Faculty{
			Name:         row.Name,
			Department:   row.Department,
			Subjects:     catalog.ParseSubjects(row.Subjects),
			YearsToTeach: row.YearsToTeach,
			MaxLoadHours: row.MaxLoadHours,
			Unavailable:  catalog.ParseUnavailable(row.Unavailable),
			Senior:       row.Senior,
		})
	}

	const roomQuery = `SELECT name, capacity, room_type, department FROM rooms ORDER BY capacity, name`
	var rooms []roomRow
	if err := r.db.SelectContext(ctx, &rooms, roomQuery); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	for _, row := range rooms {
		cat.Rooms = append(cat.Rooms, models.Room{
			Name:       row.Name,
			Capacity:   row.Capacity,
			Type:       models.RoomType(row.RoomType),
			Department: row.Department,
		})
	}

	const sectionQuery = `SELECT id, department, year, student_count
FROM sections WHERE department = $1 ORDER BY id`
	var sections []sectionRow
	if err := r.db.SelectContext(ctx, &sections, sectionQuery, department); err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}

	const sectionCourseQuery = `SELECT sc.section_id, sc.course_code
FROM section_courses sc JOIN sections s ON s.id = sc.section_id
WHERE s.department = $1 ORDER BY sc.section_id, sc.course_code`
	var sectionCourses []sectionCourseRow
	if err := r.db.SelectContext(ctx, &sectionCourses, sectionCourseQuery, department); err != nil {
		return nil, fmt.Errorf("load section courses: %w", err)
	}
	codesBySection := make(map[string][]string)
	for _, row := range sectionCourses {
		codesBySection[row.SectionID] = append(codesBySection[row.SectionID], row.CourseCode)
	}
	for _, row := range sections {
		cat.Sections = append(cat.Sections, models.Section{
			ID:           row.ID,
			Department:   row.Department,
			Year:         row.Year,
			StudentCount: row.StudentCount,
			CourseCodes:  codesBySection[row.ID],
		})
	}

	if len(cat.Courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrDataLoad, fmt.Sprintf("no courses for %s semester %d", department, semester))
	}
	if len(cat.Faculty) == 0 {
		return nil, appErrors.Clone(appErrors.ErrDataLoad, fmt.Sprintf("no faculty for %s", department))
	}
	if len(cat.Sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrDataLoad, fmt.Sprintf("no sections for %s", department))
	}
	return cat, nil
}
