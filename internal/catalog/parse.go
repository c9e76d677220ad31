package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/campus-timetabler/internal/models"
)

var contactHoursPattern = regexp.MustCompile(`(\d+)([LTP])`)

// ParseContactHours parses compact hour notation like "3L+1T+2P/week" into a
// structured mapping. Repeated type letters are summed. Unparsable or absent
// strings default to a single weekly lecture so the course still gets
// scheduled.
func ParseContactHours(raw string) models.ContactHours {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "/week"))
	if raw == "" || strings.EqualFold(raw, "unknown") {
		return models.ContactHours{Lecture: 1}
	}

	var hours models.ContactHours
	matches := contactHoursPattern.FindAllStringSubmatch(raw, -1)
	for _, m := range matches {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2] {
		case "L":
			hours.Lecture += count
		case "T":
			hours.Tutorial += count
		case "P":
			hours.Practical += count
		}
	}
	if hours.Total() == 0 {
		return models.ContactHours{Lecture: 1}
	}
	return hours
}

// timeRangeSlots maps known clock ranges onto discrete grid slots, checked in
// order. Ranges not in this table are silently dropped; see ParseUnavailable.
var timeRangeSlots = []struct {
	clockRange string
	slots      []string
}{
	{"10:00-12:00", []string{"10-11", "11-12"}},
	{"14:00-16:00", []string{"2-3", "3-4"}},
	{"09:00-10:00", []string{"9-10"}},
	{"11:00-13:00", []string{"11-12", "12-1"}},
	{"13:00-15:00", []string{"12-1", "2-3"}},
}

// ParseUnavailable maps free-text blackout declarations of the form
// "<Day> <HH:MM>-<HH:MM>" separated by "|" onto grid slots using a fixed
// lookup of known clock ranges. Unrecognized ranges are dropped rather than
// rounded, which can mask real unavailability; callers relying on blackout
// data should keep declarations within the known ranges.
func ParseUnavailable(raw string) []models.SlotKey {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var keys []models.SlotKey
	for _, entry := range strings.Split(raw, "|") {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, ":") {
			continue
		}
		parts := strings.Fields(entry)
		if len(parts) < 2 {
			continue
		}
		day := parts[0]
		for _, mapping := range timeRangeSlots {
			if strings.Contains(parts[1], mapping.clockRange) {
				for _, slot := range mapping.slots {
					keys = append(keys, models.SlotKey{Day: day, Slot: slot})
				}
				break
			}
		}
	}
	return keys
}

// ParseSubjects splits a faculty subject declaration into lower-cased
// keywords.
func ParseSubjects(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	subjects := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			subjects = append(subjects, trimmed)
		}
	}
	return subjects
}
