package domain

import "time"

// LaborCaps is a piecewise step function from daily sales units to the
// labor hours the day may consume. Days above SalesHigh are uncapped.
type LaborCaps struct {
	SalesLow  int
	HoursLow  int
	SalesHigh int
	HoursHigh int
}

// MinStaffCounts sets minimum headcount present during the opening and
// closing windows.
type MinStaffCounts struct {
	Open  int
	Close int
}

// MonthlyConfig is the per-month store configuration document.
type MonthlyConfig struct {
	Year             int
	Month            time.Month
	DailySales       map[int]int    // day -> sales units
	LaborCaps        LaborCaps
	MinSkills        map[string]int // skill -> required summed level per day
	MinStaffCounts   MinStaffCounts
	MeetingOverrides map[int][]string // day -> staff ids forced into a meeting
}

// DaysInMonth returns the number of calendar days covered by the config.
func (c MonthlyConfig) DaysInMonth() int {
	return time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Sales returns the configured sales units for a day, zero when absent.
func (c MonthlyConfig) Sales(day int) int {
	if c.DailySales == nil {
		return 0
	}
	return c.DailySales[day]
}

// MeetingStaff returns the staff pinned to a meeting on a day.
func (c MonthlyConfig) MeetingStaff(day int) []string {
	if c.MeetingOverrides == nil {
		return nil
	}
	return c.MeetingOverrides[day]
}

// Weekend reports whether a day of the configured month is Sat or Sun.
func (c MonthlyConfig) Weekend(day int) bool {
	wd := time.Date(c.Year, c.Month, day, 0, 0, 0, 0, time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
