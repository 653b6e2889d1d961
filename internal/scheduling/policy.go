package scheduling

import (
	"fmt"

	"github.com/spec-kit/shift-scheduler/internal/domain"
)

// Policy collects the rule switches that varied across iterations of the
// staffing rules, so each behavior is toggled by name instead of living in
// a divergent copy of the model builder.
type Policy struct {
	// RequestedOffIsHard honors requested days off absolutely; when false
	// they become a heavily penalized preference.
	RequestedOffIsHard bool
	// LaborCapPartnersOnly restricts the daily labor-hour cap to
	// partner-tier hours instead of the whole roster.
	LaborCapPartnersOnly bool
	// DeptCoverageIsHard forbids uncovered department-days outright
	// instead of penalizing them.
	DeptCoverageIsHard bool
	// RestIntervalIsHard forbids a closing shift followed by an opening
	// shift; when false the pair is penalized instead.
	RestIntervalIsHard bool
	// ConsecutiveRunThreshold is the run length (3 or 4) at which worked
	// streaks start accruing fatigue penalties.
	ConsecutiveRunThreshold int
	// MinLeadershipPresent is the daily minimum of leadership-tier staff
	// on working shifts. Skipped when the roster has no leadership.
	MinLeadershipPresent int

	// RollingWindowDays/MaxWorkedInWindow bound worked days in every
	// contiguous window of the month: at most 6 of any 7.
	RollingWindowDays int
	MaxWorkedInWindow int

	// ShiftHours is the labor-hour charge of one canonical shift.
	ShiftHours int
	// LongWindowMinutes/BreakDeductionMinutes: a requested custom window
	// longer than the threshold is charged minus one break.
	LongWindowMinutes     int
	BreakDeductionMinutes int

	// Key-holder and presence window thresholds.
	OpenerLatestStart        domain.ClockTime
	CloserEarliestEnd        domain.ClockTime
	OpenPresenceLatestStart  domain.ClockTime
	ClosePresenceEarliestEnd domain.ClockTime

	// ShiftOverrides pins a staff member to a subset of the working bands,
	// configured as data (staff id -> allowed bands).
	ShiftOverrides map[string][]domain.ShiftType

	Weights Weights
}

// Weights parameterizes the objective. Positive entries reward
// assignments; penalty entries are subtracted per violation.
type Weights struct {
	EmployeeBase  float64 // tier Employee and above, uniform
	PartnerFirst  float64 // partner priority 1
	PartnerSecond float64 // partner priority 2
	PartnerThird  float64 // partner priority 3
	NewcomerBase  float64
	UnknownBase   float64

	EarlyBias float64
	MidBias   float64
	LateBias  float64

	WeekendBonus float64 // employee-tier weekend attendance

	SkillShortagePenalty  float64 // per missing skill-level unit
	DeptMissPenalty       float64 // per uncovered department-day
	RequestedOffPenalty   float64 // must dominate every positive weight
	ConsecutiveRunPenalty float64 // per flagged run window
	RestViolationPenalty  float64 // close-then-open pair, soft mode only
}

// DefaultPolicy returns the production rule set.
func DefaultPolicy() Policy {
	return Policy{
		RequestedOffIsHard:      true,
		LaborCapPartnersOnly:    false,
		DeptCoverageIsHard:      false,
		RestIntervalIsHard:      true,
		ConsecutiveRunThreshold: 3,
		MinLeadershipPresent:    2,

		RollingWindowDays: 7,
		MaxWorkedInWindow: 6,

		ShiftHours:            8,
		LongWindowMinutes:     6 * 60,
		BreakDeductionMinutes: 60,

		OpenerLatestStart:        domain.MustClockTime("09:30"),
		CloserEarliestEnd:        domain.MustClockTime("21:30"),
		OpenPresenceLatestStart:  domain.MustClockTime("10:00"),
		ClosePresenceEarliestEnd: domain.MustClockTime("21:30"),

		Weights: Weights{
			EmployeeBase:  10,
			PartnerFirst:  8,
			PartnerSecond: 6,
			PartnerThird:  4,
			NewcomerBase:  3,
			UnknownBase:   1,

			EarlyBias: 2,
			MidBias:   1,
			LateBias:  0,

			WeekendBonus: 2,

			SkillShortagePenalty:  5,
			DeptMissPenalty:       8,
			RequestedOffPenalty:   120,
			ConsecutiveRunPenalty: 6,
			RestViolationPenalty:  50,
		},
	}
}

// Validate rejects flag combinations the rule set never allowed.
func (p Policy) Validate() error {
	if p.ConsecutiveRunThreshold != 3 && p.ConsecutiveRunThreshold != 4 {
		return fmt.Errorf("consecutive run threshold must be 3 or 4, got %d", p.ConsecutiveRunThreshold)
	}
	if p.MinLeadershipPresent < 0 {
		return fmt.Errorf("negative leadership minimum %d", p.MinLeadershipPresent)
	}
	if p.RollingWindowDays <= p.MaxWorkedInWindow {
		return fmt.Errorf("rolling window %d must exceed worked-day cap %d", p.RollingWindowDays, p.MaxWorkedInWindow)
	}
	if p.ShiftHours <= 0 {
		return fmt.Errorf("shift hours must be positive, got %d", p.ShiftHours)
	}
	return nil
}

// BaseWeight returns the fill incentive for one working assignment of the
// given staff member.
func (w Weights) BaseWeight(tier domain.RankTier, priority int) float64 {
	switch {
	case tier <= domain.TierEmployee:
		return w.EmployeeBase
	case tier == domain.TierPartner:
		switch priority {
		case 1:
			return w.PartnerFirst
		case 3:
			return w.PartnerThird
		default:
			return w.PartnerSecond
		}
	case tier == domain.TierNewPartner:
		return w.NewcomerBase
	}
	return w.UnknownBase
}

// ShiftBias returns the opening-shift preference for a working band.
func (w Weights) ShiftBias(shift domain.ShiftType) float64 {
	switch shift {
	case domain.ShiftEarly:
		return w.EarlyBias
	case domain.ShiftMid:
		return w.MidBias
	case domain.ShiftLate:
		return w.LateBias
	}
	return 0
}

// AllowedShifts returns the working bands a staff member may take under
// the override table; nil means unrestricted.
func (p Policy) AllowedShifts(staffID string) []domain.ShiftType {
	if p.ShiftOverrides == nil {
		return nil
	}
	return p.ShiftOverrides[staffID]
}
