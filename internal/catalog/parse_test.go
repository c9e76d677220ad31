package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

func TestParseContactHours(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.ContactHours
	}{
		{"lecture only", "3L", models.ContactHours{Lecture: 3}},
		{"mixed with week suffix", "3L+1T+2P/week", models.ContactHours{Lecture: 3, Tutorial: 1, Practical: 2}},
		{"repeated letters summed", "2L+1L", models.ContactHours{Lecture: 3}},
		{"empty defaults to one lecture", "", models.ContactHours{Lecture: 1}},
		{"unknown defaults to one lecture", "unknown", models.ContactHours{Lecture: 1}},
		{"garbage defaults to one lecture", "three lectures", models.ContactHours{Lecture: 1}},
		{"whitespace tolerated", "  4P/week  ", models.ContactHours{Practical: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseContactHours(tt.raw))
		})
	}
}

func TestParseUnavailable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []models.SlotKey
	}{
		{
			"single range",
			"Monday 10:00-12:00",
			[]models.SlotKey{{Day: "Monday", Slot: "10-11"}, {Day: "Monday", Slot: "11-12"}},
		},
		{
			"multiple entries",
			"Monday 09:00-10:00 | Friday 14:00-16:00",
			[]models.SlotKey{
				{Day: "Monday", Slot: "9-10"},
				{Day: "Friday", Slot: "2-3"},
				{Day: "Friday", Slot: "3-4"},
			},
		},
		{
			"range spanning the break",
			"Wednesday 11:00-13:00",
			[]models.SlotKey{{Day: "Wednesday", Slot: "11-12"}, {Day: "Wednesday", Slot: "12-1"}},
		},
		{"unknown range dropped", "Tuesday 16:00-18:00", nil},
		{"no clock text dropped", "Tuesday afternoon", nil},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUnavailable(tt.raw))
		})
	}
}

func TestParseSubjects(t *testing.T) {
	assert.Equal(t, []string{"algorithms", "discrete math"}, ParseSubjects("Algorithms, Discrete Math"))
	assert.Equal(t, []string{"biology"}, ParseSubjects("  Biology , "))
	assert.Nil(t, ParseSubjects("   "))
}
