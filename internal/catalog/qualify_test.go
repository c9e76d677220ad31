package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

func TestKeywordQualifier(t *testing.T) {
	q := NewKeywordQualifier()
	algorithms := models.Course{Code: "CS301", Name: "Design of Algorithms", Department: "CSE", Semester: 5}
	dbLab := models.Course{Code: "CS312", Name: "Database Lab", Department: "CSE", Semester: 5}

	tests := []struct {
		name    string
		faculty models.Faculty
		course  models.Course
		want    bool
	}{
		{
			"subject keyword match",
			models.Faculty{Name: "Dr. Rao", Department: "CSE", Subjects: []string{"algorithms"}},
			algorithms,
			true,
		},
		{
			"general subjects teach anything",
			models.Faculty{Name: "Dr. Pillai", Department: "CSE", Subjects: []string{"general"}},
			algorithms,
			true,
		},
		{
			"lab course matched on practical keyword",
			models.Faculty{Name: "Dr. Das", Department: "CSE", Subjects: []string{"practical sessions"}},
			dbLab,
			true,
		},
		{
			"wrong department rejected",
			models.Faculty{Name: "Dr. Menon", Department: "ECE", Subjects: []string{"algorithms"}},
			algorithms,
			false,
		},
		{
			"general department accepted",
			models.Faculty{Name: "Dr. Nair", Department: "GENERAL", Subjects: []string{"algorithms"}},
			algorithms,
			true,
		},
		{
			"semester outside year range rejected",
			models.Faculty{Name: "Dr. Bose", Department: "CSE", Subjects: []string{"algorithms"}, YearsToTeach: "1,2"},
			algorithms,
			false,
		},
		{
			"semester within year range accepted",
			models.Faculty{Name: "Dr. Bose", Department: "CSE", Subjects: []string{"algorithms"}, YearsToTeach: "5,6"},
			algorithms,
			true,
		},
		{
			"no keyword overlap rejected",
			models.Faculty{Name: "Dr. Sen", Department: "CSE", Subjects: []string{"compilers"}},
			algorithms,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Qualifies(tt.faculty, tt.course))
		})
	}
}

func TestCourseKeywordsFallsBackToSignificantWords(t *testing.T) {
	keywords := courseKeywords("Operating Systems")
	assert.Contains(t, keywords, "operating")
	assert.Contains(t, keywords, "systems")
}
