package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeachingSlotsExcludeBreak(t *testing.T) {
	slots := TeachingSlots()
	assert.Len(t, slots, 6)
	assert.NotContains(t, slots, BreakSlot)
	assert.Equal(t, "9-10", slots[0])
	assert.Equal(t, "4-5", slots[5])
}

func TestMorningAfternoonSplit(t *testing.T) {
	assert.True(t, IsMorning("9-10"))
	assert.True(t, IsMorning("11-12"))
	assert.False(t, IsMorning("2-3"))

	assert.True(t, IsAfternoon("2-3"))
	assert.True(t, IsAfternoon("4-5"))
	assert.False(t, IsAfternoon(BreakSlot))
	assert.False(t, IsAfternoon("10-11"))
	assert.False(t, IsAfternoon("5-6"))
}

func TestIndexLookups(t *testing.T) {
	assert.Equal(t, 0, SlotIndex("9-10"))
	assert.Equal(t, 3, SlotIndex(BreakSlot))
	assert.Equal(t, -1, SlotIndex("8-9"))

	assert.Equal(t, 0, DayIndex("Monday"))
	assert.Equal(t, 4, DayIndex("Friday"))
	assert.Equal(t, -1, DayIndex("Sunday"))
}
