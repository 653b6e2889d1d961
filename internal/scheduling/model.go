package scheduling

import (
	"fmt"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/solver"
)

type shiftKey struct {
	Day     int
	StaffID string
	Shift   domain.ShiftType
}

type dayStaffKey struct {
	Day     int
	StaffID string
}

type daySkillKey struct {
	Day   int
	Skill string
}

type dayDeptKey struct {
	Day  int
	Dept domain.Department
}

type runKey struct {
	StaffID  string
	StartDay int
}

// Model holds the decision space of one monthly solve: the binary shift
// variables plus the auxiliary soft-violation variables referenced by the
// objective.
type Model struct {
	Problem *solver.Problem
	Days    int

	X map[shiftKey]*solver.Variable

	SkillShortage map[daySkillKey]*solver.Variable
	DeptMiss      map[dayDeptKey]*solver.Variable
	OffViolation  map[dayStaffKey]*solver.Variable
	RunFlag       map[runKey]*solver.Variable
	RestViolation map[dayStaffKey]*solver.Variable
}

// Var returns the decision variable for (day, staff, shift).
func (m *Model) Var(day int, staffID string, shift domain.ShiftType) *solver.Variable {
	return m.X[shiftKey{Day: day, StaffID: staffID, Shift: shift}]
}

// ModelBuilder turns roster, monthly configuration and requests into the
// full hard-constraint set under one Policy. Infeasibility is never
// detected here: conflicting rules still build, and surface at solve time.
type ModelBuilder struct {
	policy   Policy
	roster   *Roster
	config   domain.MonthlyConfig
	requests domain.MonthRequests

	model *Model
}

// NewModelBuilder wires a builder for one run.
func NewModelBuilder(policy Policy, roster *Roster, config domain.MonthlyConfig, requests domain.MonthRequests) *ModelBuilder {
	return &ModelBuilder{policy: policy, roster: roster, config: config, requests: requests}
}

// Build allocates the decision variables and emits every constraint
// family of the rule set.
func (b *ModelBuilder) Build() *Model {
	days := b.config.DaysInMonth()
	m := &Model{
		Problem:       solver.NewProblem(),
		Days:          days,
		X:             make(map[shiftKey]*solver.Variable),
		SkillShortage: make(map[daySkillKey]*solver.Variable),
		DeptMiss:      make(map[dayDeptKey]*solver.Variable),
		OffViolation:  make(map[dayStaffKey]*solver.Variable),
		RunFlag:       make(map[runKey]*solver.Variable),
		RestViolation: make(map[dayStaffKey]*solver.Variable),
	}
	b.model = m

	for d := 1; d <= days; d++ {
		for _, s := range b.roster.Staff {
			for _, st := range domain.AllShiftTypes {
				key := shiftKey{Day: d, StaffID: s.ID, Shift: st}
				m.X[key] = m.Problem.Binary(fmt.Sprintf("x_%d_%s_%s", d, s.ID, st))
			}
		}
	}

	b.addSingletonShift()
	b.addMeetingOverrides()
	b.addStoreManagerLock()
	b.addShiftOverrides()
	b.addLaborHourCaps()
	b.addKeyHolderCoverage()
	b.addHeadcountMinimums()
	b.addLeadershipPresence()
	b.addMentorPairing()
	b.addDepartmentCoverage()
	b.addSkillCoverage()
	b.addMonthlyAttendanceCaps()
	b.addNoRequestNoShift()
	b.addRestIntervals()
	b.addRollingWindowCaps()
	b.addConsecutiveRunFlags()
	b.addRequestConstraints()

	return m
}

// workingTerms sums the three working bands of (day, staff).
func (b *ModelBuilder) workingTerms(day int, staffID string) []solver.Term {
	terms := make([]solver.Term, 0, len(domain.WorkingShiftTypes))
	for _, st := range domain.WorkingShiftTypes {
		terms = append(terms, solver.Term{Var: b.model.Var(day, staffID, st), Coeff: 1})
	}
	return terms
}

func (b *ModelBuilder) meetingPinned(day int, staffID string) bool {
	for _, id := range b.config.MeetingStaff(day) {
		if id == staffID {
			return true
		}
	}
	return false
}

// customWindow returns the request when (day, staff) carries one.
func (b *ModelBuilder) customWindow(day int, staffID string) (domain.ShiftRequest, bool) {
	req, ok := b.requests.For(staffID, day)
	if !ok || req.Type != domain.RequestCustomWindow {
		return domain.ShiftRequest{}, false
	}
	return req, true
}

// laborHours is the hour charge of one working assignment: the canonical
// shift length, or the literal window minus a break for long custom
// windows.
func (b *ModelBuilder) laborHours(day int, staffID string) float64 {
	if req, ok := b.customWindow(day, staffID); ok {
		minutes := req.WindowMinutes()
		if minutes > b.policy.LongWindowMinutes {
			minutes -= b.policy.BreakDeductionMinutes
		}
		return float64(minutes) / 60.0
	}
	return float64(b.policy.ShiftHours)
}

// At most one shift type per staff per day, meetings included.
func (b *ModelBuilder) addSingletonShift() {
	for d := 1; d <= b.model.Days; d++ {
		for _, s := range b.roster.Staff {
			terms := make([]solver.Term, 0, len(domain.AllShiftTypes))
			for _, st := range domain.AllShiftTypes {
				terms = append(terms, solver.Term{Var: b.model.Var(d, s.ID, st), Coeff: 1})
			}
			b.model.Problem.Add(fmt.Sprintf("one_shift_d%d_%s", d, s.ID), terms, solver.LE, 1)
		}
	}
}

// Meeting-pinned staff attend the meeting and nothing else; everyone else
// never takes the meeting slot.
func (b *ModelBuilder) addMeetingOverrides() {
	for d := 1; d <= b.model.Days; d++ {
		for _, s := range b.roster.Staff {
			meeting := []solver.Term{{Var: b.model.Var(d, s.ID, domain.ShiftMeeting), Coeff: 1}}
			if b.meetingPinned(d, s.ID) {
				b.model.Problem.Add(fmt.Sprintf("meeting_d%d_%s", d, s.ID), meeting, solver.EQ, 1)
				b.model.Problem.Add(fmt.Sprintf("meeting_no_work_d%d_%s", d, s.ID), b.workingTerms(d, s.ID), solver.EQ, 0)
			} else {
				b.model.Problem.Add(fmt.Sprintf("no_meeting_d%d_%s", d, s.ID), meeting, solver.EQ, 0)
			}
		}
	}
}

// The store manager always opens: Mid and Late are locked out.
func (b *ModelBuilder) addStoreManagerLock() {
	for _, s := range b.roster.Staff {
		if b.roster.Tier[s.ID] != domain.TierStoreManager {
			continue
		}
		for d := 1; d <= b.model.Days; d++ {
			terms := []solver.Term{
				{Var: b.model.Var(d, s.ID, domain.ShiftMid), Coeff: 1},
				{Var: b.model.Var(d, s.ID, domain.ShiftLate), Coeff: 1},
			}
			b.model.Problem.Add(fmt.Sprintf("manager_opens_d%d_%s", d, s.ID), terms, solver.EQ, 0)
		}
	}
}

// Per-staff band restrictions from the override table.
func (b *ModelBuilder) addShiftOverrides() {
	for _, s := range b.roster.Staff {
		allowed := b.policy.AllowedShifts(s.ID)
		if allowed == nil {
			continue
		}
		permitted := make(map[domain.ShiftType]bool, len(allowed))
		for _, st := range allowed {
			permitted[st] = true
		}
		for d := 1; d <= b.model.Days; d++ {
			for _, st := range domain.WorkingShiftTypes {
				if permitted[st] {
					continue
				}
				terms := []solver.Term{{Var: b.model.Var(d, s.ID, st), Coeff: 1}}
				b.model.Problem.Add(fmt.Sprintf("band_override_d%d_%s_%s", d, s.ID, st), terms, solver.EQ, 0)
			}
		}
	}
}

// Daily labor hours stay under the sales-band cap. Days above the high
// sales band are uncapped.
func (b *ModelBuilder) addLaborHourCaps() {
	caps := b.config.LaborCaps
	for d := 1; d <= b.model.Days; d++ {
		sales := b.config.Sales(d)
		var limit int
		switch {
		case sales <= caps.SalesLow:
			limit = caps.HoursLow
		case sales <= caps.SalesHigh:
			limit = caps.HoursHigh
		default:
			continue
		}
		var terms []solver.Term
		for _, s := range b.roster.Staff {
			if b.policy.LaborCapPartnersOnly && b.roster.Tier[s.ID] != domain.TierPartner {
				continue
			}
			hours := b.laborHours(d, s.ID)
			for _, st := range domain.WorkingShiftTypes {
				terms = append(terms, solver.Term{Var: b.model.Var(d, s.ID, st), Coeff: hours})
			}
		}
		if len(terms) == 0 {
			continue
		}
		b.model.Problem.Add(fmt.Sprintf("labor_cap_d%d", d), terms, solver.LE, float64(limit))
	}
}

// openerTerms collects the variables that count as key-holder opening
// coverage for a day; closerTerms is the closing mirror.
func (b *ModelBuilder) openerTerms(day int) []solver.Term {
	var terms []solver.Term
	for _, s := range b.roster.Staff {
		if !s.CanOpen {
			continue
		}
		if req, ok := b.customWindow(day, s.ID); ok {
			if req.Start <= b.policy.OpenerLatestStart {
				terms = append(terms, b.workingTerms(day, s.ID)...)
			}
			continue
		}
		terms = append(terms, solver.Term{Var: b.model.Var(day, s.ID, domain.ShiftEarly), Coeff: 1})
	}
	return terms
}

func (b *ModelBuilder) closerTerms(day int) []solver.Term {
	var terms []solver.Term
	for _, s := range b.roster.Staff {
		if !s.CanClose {
			continue
		}
		if req, ok := b.customWindow(day, s.ID); ok {
			if req.End >= b.policy.CloserEarliestEnd {
				terms = append(terms, b.workingTerms(day, s.ID)...)
			}
			continue
		}
		terms = append(terms, solver.Term{Var: b.model.Var(day, s.ID, domain.ShiftLate), Coeff: 1})
	}
	return terms
}

// Every day needs a key-holder opening and a key-holder closing, when the
// roster has candidates at all.
func (b *ModelBuilder) addKeyHolderCoverage() {
	for d := 1; d <= b.model.Days; d++ {
		if terms := b.openerTerms(d); len(terms) > 0 {
			b.model.Problem.Add(fmt.Sprintf("opener_d%d", d), terms, solver.GE, 1)
		}
		if terms := b.closerTerms(d); len(terms) > 0 {
			b.model.Problem.Add(fmt.Sprintf("closer_d%d", d), terms, solver.GE, 1)
		}
	}
}

// Minimum headcount present during the opening and closing windows. These
// are emitted unconditionally: an unmeetable minimum must surface as an
// infeasible solve, not silently relax.
func (b *ModelBuilder) addHeadcountMinimums() {
	counts := b.config.MinStaffCounts
	for d := 1; d <= b.model.Days; d++ {
		if counts.Open > 0 {
			var terms []solver.Term
			for _, s := range b.roster.Staff {
				if req, ok := b.customWindow(d, s.ID); ok {
					if req.Start <= b.policy.OpenPresenceLatestStart {
						terms = append(terms, b.workingTerms(d, s.ID)...)
					}
					continue
				}
				terms = append(terms, solver.Term{Var: b.model.Var(d, s.ID, domain.ShiftEarly), Coeff: 1})
			}
			b.model.Problem.Add(fmt.Sprintf("open_headcount_d%d", d), terms, solver.GE, float64(counts.Open))
		}
		if counts.Close > 0 {
			var terms []solver.Term
			for _, s := range b.roster.Staff {
				if req, ok := b.customWindow(d, s.ID); ok {
					if req.End >= b.policy.ClosePresenceEarliestEnd {
						terms = append(terms, b.workingTerms(d, s.ID)...)
					}
					continue
				}
				terms = append(terms, solver.Term{Var: b.model.Var(d, s.ID, domain.ShiftLate), Coeff: 1})
			}
			b.model.Problem.Add(fmt.Sprintf("close_headcount_d%d", d), terms, solver.GE, float64(counts.Close))
		}
	}
}

// Leadership presence on working shifts every day. Meeting-pinned leaders
// do not count: the meeting override zeroes their working bands.
func (b *ModelBuilder) addLeadershipPresence() {
	if len(b.roster.Leadership) == 0 || b.policy.MinLeadershipPresent <= 0 {
		return
	}
	for d := 1; d <= b.model.Days; d++ {
		var terms []solver.Term
		for _, id := range b.roster.Leadership {
			terms = append(terms, b.workingTerms(d, id)...)
		}
		b.model.Problem.Add(fmt.Sprintf("leadership_d%d", d), terms, solver.GE, float64(b.policy.MinLeadershipPresent))
	}
}

// A newcomer works a day only when at least one mentor also works it.
func (b *ModelBuilder) addMentorPairing() {
	for _, nc := range b.roster.Newcomers {
		for d := 1; d <= b.model.Days; d++ {
			terms := b.workingTerms(d, nc)
			for _, mentor := range b.roster.Mentors {
				for _, st := range domain.WorkingShiftTypes {
					terms = append(terms, solver.Term{Var: b.model.Var(d, mentor, st), Coeff: -1})
				}
			}
			b.model.Problem.Add(fmt.Sprintf("mentor_pair_d%d_%s", d, nc), terms, solver.LE, 0)
		}
	}
}

// Each staffed department has someone in every day; hard or penalized per
// policy.
func (b *ModelBuilder) addDepartmentCoverage() {
	for _, dept := range domain.Departments {
		members := b.roster.Departments[dept]
		if len(members) == 0 {
			continue
		}
		for d := 1; d <= b.model.Days; d++ {
			var terms []solver.Term
			for _, id := range members {
				terms = append(terms, b.workingTerms(d, id)...)
			}
			name := fmt.Sprintf("dept_%s_d%d", dept, d)
			if b.policy.DeptCoverageIsHard {
				b.model.Problem.Add(name, terms, solver.GE, 1)
				continue
			}
			miss := b.model.Problem.Binary(fmt.Sprintf("dept_miss_%s_d%d", dept, d))
			b.model.DeptMiss[dayDeptKey{Day: d, Dept: dept}] = miss
			terms = append(terms, solver.Term{Var: miss, Coeff: 1})
			b.model.Problem.Add(name, terms, solver.GE, 1)
		}
	}
}

// Summed skill levels of working staff meet each daily minimum, short of
// a penalized shortage slack. Kept soft so a thin roster stays solvable.
func (b *ModelBuilder) addSkillCoverage() {
	for skill, required := range b.config.MinSkills {
		if required <= 0 {
			continue
		}
		for d := 1; d <= b.model.Days; d++ {
			var terms []solver.Term
			for _, s := range b.roster.Staff {
				level := s.SkillLevel(skill)
				if level == 0 {
					continue
				}
				for _, st := range domain.WorkingShiftTypes {
					terms = append(terms, solver.Term{Var: b.model.Var(d, s.ID, st), Coeff: float64(level)})
				}
			}
			shortage := b.model.Problem.Int(fmt.Sprintf("skill_short_%s_d%d", skill, d), 0, required)
			b.model.SkillShortage[daySkillKey{Day: d, Skill: skill}] = shortage
			terms = append(terms, solver.Term{Var: shortage, Coeff: 1})
			b.model.Problem.Add(fmt.Sprintf("skill_%s_d%d", skill, d), terms, solver.GE, float64(required))
		}
	}
}

// Monthly attendance cap, reduced by days already fixed as paid leave.
func (b *ModelBuilder) addMonthlyAttendanceCaps() {
	for _, s := range b.roster.Staff {
		paidLeave := 0
		for d := 1; d <= b.model.Days; d++ {
			if req, ok := b.requests.For(s.ID, d); ok && req.Type == domain.RequestPaidLeave {
				paidLeave++
			}
		}
		var terms []solver.Term
		for d := 1; d <= b.model.Days; d++ {
			for _, st := range domain.AllShiftTypes {
				terms = append(terms, solver.Term{Var: b.model.Var(d, s.ID, st), Coeff: 1})
			}
		}
		limit := s.EffectiveMaxWorkDays() - paidLeave
		if limit < 0 {
			limit = 0
		}
		b.model.Problem.Add(fmt.Sprintf("month_cap_%s", s.ID), terms, solver.LE, float64(limit))
	}
}

// Partner-tier and newcomer-tier staff work only days they asked for.
func (b *ModelBuilder) addNoRequestNoShift() {
	for _, s := range b.roster.Staff {
		tier := b.roster.Tier[s.ID]
		if tier != domain.TierPartner && tier != domain.TierNewPartner {
			continue
		}
		for d := 1; d <= b.model.Days; d++ {
			if _, ok := b.requests.For(s.ID, d); ok {
				continue
			}
			if b.meetingPinned(d, s.ID) {
				continue
			}
			b.model.Problem.Add(fmt.Sprintf("no_request_d%d_%s", d, s.ID), b.workingTerms(d, s.ID), solver.EQ, 0)
		}
	}
}

// A closing shift is never followed by next day's opening shift; soft
// mode trades the pair against a penalty instead.
func (b *ModelBuilder) addRestIntervals() {
	for _, s := range b.roster.Staff {
		for d := 1; d < b.model.Days; d++ {
			terms := []solver.Term{
				{Var: b.model.Var(d, s.ID, domain.ShiftLate), Coeff: 1},
				{Var: b.model.Var(d+1, s.ID, domain.ShiftEarly), Coeff: 1},
			}
			name := fmt.Sprintf("rest_d%d_%s", d, s.ID)
			if b.policy.RestIntervalIsHard {
				b.model.Problem.Add(name, terms, solver.LE, 1)
				continue
			}
			v := b.model.Problem.Binary(fmt.Sprintf("rest_viol_d%d_%s", d, s.ID))
			b.model.RestViolation[dayStaffKey{Day: d, StaffID: s.ID}] = v
			terms = append(terms, solver.Term{Var: v, Coeff: -1})
			b.model.Problem.Add(name, terms, solver.LE, 1)
		}
	}
}

// No 7-day run: every rolling window caps worked days.
func (b *ModelBuilder) addRollingWindowCaps() {
	window := b.policy.RollingWindowDays
	for _, s := range b.roster.Staff {
		for d := 1; d+window-1 <= b.model.Days; d++ {
			var terms []solver.Term
			for k := d; k < d+window; k++ {
				terms = append(terms, b.workingTerms(k, s.ID)...)
			}
			b.model.Problem.Add(fmt.Sprintf("window_d%d_%s", d, s.ID), terms, solver.LE, float64(b.policy.MaxWorkedInWindow))
		}
	}
}

// Runs of ConsecutiveRunThreshold worked days raise a penalized flag for
// employee-tier and above. Soft on purpose: forbidding runs outright
// overconstrains thin rosters.
func (b *ModelBuilder) addConsecutiveRunFlags() {
	runLen := b.policy.ConsecutiveRunThreshold
	for _, s := range b.roster.Staff {
		if !b.roster.Tier[s.ID].Mentor() {
			continue
		}
		for d := 1; d+runLen-1 <= b.model.Days; d++ {
			flag := b.model.Problem.Binary(fmt.Sprintf("run_d%d_%s", d, s.ID))
			b.model.RunFlag[runKey{StaffID: s.ID, StartDay: d}] = flag
			var terms []solver.Term
			for k := d; k < d+runLen; k++ {
				terms = append(terms, b.workingTerms(k, s.ID)...)
			}
			terms = append(terms, solver.Term{Var: flag, Coeff: -1})
			b.model.Problem.Add(fmt.Sprintf("run_flag_d%d_%s", d, s.ID), terms, solver.LE, float64(runLen-1))
		}
	}
}

// Request-type mapping. Meeting-pinned staff skip it: the override wins.
func (b *ModelBuilder) addRequestConstraints() {
	for _, s := range b.roster.Staff {
		for d := 1; d <= b.model.Days; d++ {
			req, ok := b.requests.For(s.ID, d)
			if !ok || b.meetingPinned(d, s.ID) {
				continue
			}
			name := fmt.Sprintf("request_d%d_%s", d, s.ID)
			switch req.Type {
			case domain.RequestPaidLeave:
				b.model.Problem.Add(name, b.workingTerms(d, s.ID), solver.EQ, 0)
			case domain.RequestOff:
				if b.policy.RequestedOffIsHard {
					b.model.Problem.Add(name, b.workingTerms(d, s.ID), solver.EQ, 0)
					continue
				}
				v := b.model.Problem.Binary(fmt.Sprintf("off_viol_d%d_%s", d, s.ID))
				b.model.OffViolation[dayStaffKey{Day: d, StaffID: s.ID}] = v
				terms := append(b.workingTerms(d, s.ID), solver.Term{Var: v, Coeff: -1})
				b.model.Problem.Add(name, terms, solver.LE, 0)
			case domain.RequestEarly, domain.RequestMid, domain.RequestLate:
				shift, _ := req.ForcedShift()
				terms := []solver.Term{{Var: b.model.Var(d, s.ID, shift), Coeff: 1}}
				b.model.Problem.Add(name, terms, solver.EQ, 1)
			case domain.RequestFree, domain.RequestCustomWindow:
				b.model.Problem.Add(name, b.workingTerms(d, s.ID), solver.EQ, 1)
			}
		}
	}
}
