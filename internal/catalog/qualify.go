package catalog

import (
	"strconv"
	"strings"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

// Qualifier decides whether a faculty member may teach a course. The default
// implementation matches subject keywords; swapping in an explicit
// course-code mapping only requires a different Qualifier.
type Qualifier interface {
	Qualifies(f models.Faculty, c models.Course) bool
}

// KeywordQualifier infers qualification from the faculty's declared subject
// keywords plus a per-course keyword table, then filters by department and
// year-to-teach.
type KeywordQualifier struct{}

// NewKeywordQualifier builds the default qualifier.
func NewKeywordQualifier() *KeywordQualifier {
	return &KeywordQualifier{}
}

// courseKeywords expands a course name into search keywords. Well-known
// subject families get curated keyword sets; everything else falls back to
// the significant words of the course name.
func courseKeywords(name string) []string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "biology"):
		return []string{"biology", "bio"}
	case strings.Contains(lower, "computer architecture"):
		return []string{"computer architecture", "architecture", "computer"}
	case strings.Contains(lower, "lab"):
		return []string{"lab", "laboratory", "practical"}
	case strings.Contains(lower, "algorithm"):
		return []string{"algorithm", "algorithms"}
	case strings.Contains(lower, "discrete mathematics"):
		return []string{"discrete", "mathematics", "math"}
	case strings.Contains(lower, "environmental"):
		return []string{"environmental", "environment"}
	case strings.Contains(lower, "formal language"), strings.Contains(lower, "automata"):
		return []string{"formal", "language", "automata", "theory"}
	}

	var keywords []string
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, "()[]")
		if len(word) > 2 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// Qualifies implements Qualifier.
func (q *KeywordQualifier) Qualifies(f models.Faculty, c models.Course) bool {
	if !q.matchesSubjects(f, c) {
		return false
	}
	return q.matchesDepartment(f, c) && q.matchesYear(f, c)
}

func (q *KeywordQualifier) matchesSubjects(f models.Faculty, c models.Course) bool {
	subjects := strings.ToLower(strings.Join(f.Subjects, ","))
	if strings.Contains(subjects, "general") || strings.Contains(subjects, "all") {
		return true
	}
	for _, keyword := range courseKeywords(c.Name) {
		if strings.Contains(subjects, keyword) {
			return true
		}
	}
	return false
}

func (q *KeywordQualifier) matchesDepartment(f models.Faculty, c models.Course) bool {
	dept := strings.ToUpper(strings.TrimSpace(f.Department))
	return dept == strings.ToUpper(c.Department) || dept == "GENERAL" || dept == "ALL"
}

func (q *KeywordQualifier) matchesYear(f models.Faculty, c models.Course) bool {
	years := strings.TrimSpace(f.YearsToTeach)
	if years == "" || strings.EqualFold(years, "all") {
		return true
	}
	return strings.Contains(years, strconv.Itoa(c.Semester))
}
