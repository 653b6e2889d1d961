package dto

import (
	"time"

	"github.com/spec-kit/shift-scheduler/internal/domain"
)

// GenerateScheduleRequest payload.
type GenerateScheduleRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ScheduleResponse is the persisted schedule document, day-keyed.
type ScheduleResponse struct {
	Year      int                          `json:"year"`
	Month     int                          `json:"month"`
	Schedule  map[int][]AssignmentResponse `json:"schedule"`
	CreatedAt time.Time                    `json:"createdAt"`
}

// AssignmentResponse is one staff placement on one day.
type AssignmentResponse struct {
	StaffID    string `json:"staffId"`
	Name       string `json:"name"`
	ShiftLabel string `json:"shiftLabel"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
}

// NewScheduleResponse maps the domain document.
func NewScheduleResponse(doc *domain.ScheduleDocument) ScheduleResponse {
	schedule := make(map[int][]AssignmentResponse, len(doc.Schedule))
	for day, assignments := range doc.Schedule {
		items := make([]AssignmentResponse, 0, len(assignments))
		for _, a := range assignments {
			items = append(items, AssignmentResponse{
				StaffID:    a.StaffID,
				Name:       a.Name,
				ShiftLabel: a.ShiftLabel,
				Start:      a.Start,
				End:        a.End,
			})
		}
		schedule[day] = items
	}
	return ScheduleResponse{
		Year:      doc.Year,
		Month:     int(doc.Month),
		Schedule:  schedule,
		CreatedAt: doc.CreatedAt,
	}
}
