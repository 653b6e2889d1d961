package scheduling

import (
	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/solver"
)

// Labels used in the projected schedule.
const (
	LabelMeeting      = "Meeting"
	LabelCustomWindow = "CustomWindow"
)

// Project converts a solved assignment into the day-indexed schedule.
// Pure and deterministic: identical solved values yield an identical
// schedule, staff ordered by roster (id) order within each day. A staff
// member with no variable set is simply off that day and absent from the
// output.
func Project(roster *Roster, requests domain.MonthRequests, m *Model, sol solver.Solution) domain.Schedule {
	schedule := make(domain.Schedule, m.Days)
	for d := 1; d <= m.Days; d++ {
		assignments := []domain.Assignment{}
		for _, s := range roster.Staff {
			shift, ok := assignedShift(m, sol, d, s.ID)
			if !ok {
				continue
			}
			assignments = append(assignments, assignmentFor(requests, d, s, shift))
		}
		schedule[d] = assignments
	}
	return schedule
}

func assignedShift(m *Model, sol solver.Solution, day int, staffID string) (domain.ShiftType, bool) {
	for _, st := range domain.AllShiftTypes {
		if sol.Value(m.Var(day, staffID, st)) == 1 {
			return st, true
		}
	}
	return "", false
}

func assignmentFor(requests domain.MonthRequests, day int, staff domain.StaffRecord, shift domain.ShiftType) domain.Assignment {
	if shift == domain.ShiftMeeting {
		return domain.Assignment{StaffID: staff.ID, Name: staff.Name, ShiftLabel: LabelMeeting}
	}
	if req, ok := requests.For(staff.ID, day); ok && req.Type == domain.RequestCustomWindow {
		// The band the solver picked is immaterial: the literal window wins.
		return domain.Assignment{
			StaffID:    staff.ID,
			Name:       staff.Name,
			ShiftLabel: LabelCustomWindow,
			Start:      req.Start.String(),
			End:        req.End.String(),
		}
	}
	return domain.Assignment{StaffID: staff.ID, Name: staff.Name, ShiftLabel: string(shift)}
}
