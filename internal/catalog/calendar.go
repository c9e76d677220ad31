package catalog

// The weekly calendar is a fixed 5x7 grid. The 12-1 slot is a universal
// break and never assignable.
var (
	Days      = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	TimeSlots = []string{"9-10", "10-11", "11-12", "12-1", "2-3", "3-4", "4-5"}
)

// BreakSlot is reserved across all days and sections.
const BreakSlot = "12-1"

// MorningSlots end before the noon cutoff; afternoon starts at 2-3.
var MorningSlots = []string{"9-10", "10-11", "11-12"}

// TeachingSlots returns the assignable slots in fixed grid order.
func TeachingSlots() []string {
	slots := make([]string, 0, len(TimeSlots)-1)
	for _, slot := range TimeSlots {
		if slot == BreakSlot {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// SlotIndex returns the position of a slot in the grid, or -1 when unknown.
func SlotIndex(slot string) int {
	for i, s := range TimeSlots {
		if s == slot {
			return i
		}
	}
	return -1
}

// DayIndex returns the position of a day in the week, or -1 when unknown.
func DayIndex(day string) int {
	for i, d := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

// IsMorning reports whether a slot falls before the noon cutoff.
func IsMorning(slot string) bool {
	for _, s := range MorningSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// IsAfternoon reports whether a teaching slot falls past the noon cutoff.
func IsAfternoon(slot string) bool {
	return slot != BreakSlot && !IsMorning(slot) && SlotIndex(slot) >= 0
}
