package domain

import "time"

// Assignment is one staff member's placement on one day of the projected
// schedule. Start and End are set only for custom-window assignments.
type Assignment struct {
	StaffID    string `json:"staffId"`
	Name       string `json:"name"`
	ShiftLabel string `json:"shiftLabel"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
}

// Schedule maps day number to the ordered assignments for that day.
type Schedule map[int][]Assignment

// ScheduleDocument is the persisted result of one generation run, keyed
// "{year}-{month}" in the store.
type ScheduleDocument struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Schedule  Schedule   `json:"schedule"`
	CreatedAt time.Time  `json:"createdAt"`
}
