package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ShiftType is one decision slot per staff per day: the three working bands
// plus the non-working meeting slot.
type ShiftType string

const (
	ShiftEarly   ShiftType = "Early"
	ShiftMid     ShiftType = "Mid"
	ShiftLate    ShiftType = "Late"
	ShiftMeeting ShiftType = "Meeting"
)

// WorkingShiftTypes lists the bands that count as worked time.
var WorkingShiftTypes = []ShiftType{ShiftEarly, ShiftMid, ShiftLate}

// AllShiftTypes lists every decision slot, meetings included.
var AllShiftTypes = []ShiftType{ShiftEarly, ShiftMid, ShiftLate, ShiftMeeting}

// ClockTime is a minute offset from midnight, parsed from "HH:MM".
type ClockTime int

// ParseClockTime parses "HH:MM" into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime parses a literal and panics on failure. For constants only.
func MustClockTime(s string) ClockTime {
	t, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Minutes returns the offset from midnight.
func (t ClockTime) Minutes() int { return int(t) }
