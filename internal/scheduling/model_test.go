package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	apperrors "github.com/spec-kit/shift-scheduler/pkg/util"
)

func TestRequestedOffPolicy(t *testing.T) {
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	reqs := restrictToDays(staffs, 1, domain.MonthRequests{
		"e1": {1: {Type: domain.RequestOff}},
	})

	t.Run("hard off ignores the weights", func(t *testing.T) {
		// Even a token penalty changes nothing: the day stays off.
		policy := testPolicy()
		policy.Weights.RequestedOffPenalty = 4

		schedule := mustGenerate(t, policy, staffs, testConfig(), reqs)
		assert.Empty(t, schedule[1])
	})

	t.Run("soft off with a dominant penalty grants the day", func(t *testing.T) {
		policy := testPolicy()
		policy.RequestedOffIsHard = false

		schedule := mustGenerate(t, policy, staffs, testConfig(), reqs)
		assert.Empty(t, schedule[1])
	})

	t.Run("soft off with a token penalty is overridden", func(t *testing.T) {
		policy := testPolicy()
		policy.RequestedOffIsHard = false
		policy.Weights.RequestedOffPenalty = 4

		schedule := mustGenerate(t, policy, staffs, testConfig(), reqs)
		assert.Contains(t, dayLabels(t, schedule, 1), "e1")
	})
}

func TestLaborCapScope(t *testing.T) {
	// Three staff, an 8-hour daily cap: one shift fits when the cap covers
	// everyone, partner hours alone when it is scoped to partners.
	staffs := []domain.StaffRecord{
		employee("e1", "Aoki"),
		employee("e2", "Baker"),
		partner("p1", "Chen", 1),
	}
	reqs := restrictToDays(staffs, 1, domain.MonthRequests{
		"p1": freeDays(1),
	})
	config := testConfig()
	config.LaborCaps.HoursLow = 8

	t.Run("cap applies to the whole roster", func(t *testing.T) {
		schedule := mustGenerate(t, testPolicy(), staffs, config, reqs)
		labels := dayLabels(t, schedule, 1)
		assert.Len(t, labels, 1)
		assert.Contains(t, labels, "p1", "the forced partner shift consumes the cap")
	})

	t.Run("cap scoped to partners", func(t *testing.T) {
		policy := testPolicy()
		policy.LaborCapPartnersOnly = true

		schedule := mustGenerate(t, policy, staffs, config, reqs)
		assert.Len(t, dayLabels(t, schedule, 1), 3)
	})
}

func TestLaborCapCustomWindowHours(t *testing.T) {
	// A 09:00-22:00 window charges 13 hours minus the one-hour break.
	staffs := []domain.StaffRecord{partner("p1", "Chen", 1)}
	reqs := restrictToDays(staffs, 1, domain.MonthRequests{
		"p1": {1: {
			Type:  domain.RequestCustomWindow,
			Start: domain.MustClockTime("09:00"),
			End:   domain.MustClockTime("22:00"),
		}},
	})

	t.Run("window exceeds the cap", func(t *testing.T) {
		config := testConfig()
		config.LaborCaps.HoursLow = 8
		_, err := generate(testPolicy(), staffs, config, reqs)
		require.Error(t, err)
		assert.True(t, apperrors.IsInfeasible(err))
	})

	t.Run("window fits the cap", func(t *testing.T) {
		config := testConfig()
		config.LaborCaps.HoursLow = 12
		schedule := mustGenerate(t, testPolicy(), staffs, config, reqs)
		assert.Equal(t, "CustomWindow", dayLabels(t, schedule, 1)["p1"])
	})
}

func TestRestIntervalPolicy(t *testing.T) {
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	reqs := restrictToDays(staffs, 2, domain.MonthRequests{
		"e1": {
			1: {Type: domain.RequestLate},
			2: {Type: domain.RequestEarly},
		},
	})

	t.Run("hard rest forbids close then open", func(t *testing.T) {
		_, err := generate(testPolicy(), staffs, testConfig(), reqs)
		require.Error(t, err)
		assert.True(t, apperrors.IsInfeasible(err))
	})

	t.Run("soft rest honors the requests", func(t *testing.T) {
		policy := testPolicy()
		policy.RestIntervalIsHard = false

		schedule := mustGenerate(t, policy, staffs, testConfig(), reqs)
		assert.Equal(t, "Late", dayLabels(t, schedule, 1)["e1"])
		assert.Equal(t, "Early", dayLabels(t, schedule, 2)["e1"])
	})
}

func TestMeetingOverride(t *testing.T) {
	staffs := []domain.StaffRecord{
		employee("e1", "Aoki"),
		employee("e2", "Baker"),
	}
	reqs := restrictToDays(staffs, 3, nil)
	config := testConfig()
	config.MeetingOverrides = map[int][]string{2: {"e1"}}

	schedule := mustGenerate(t, testPolicy(), staffs, config, reqs)

	var meeting *domain.Assignment
	for i, a := range schedule[2] {
		if a.StaffID == "e1" {
			meeting = &schedule[2][i]
		}
	}
	require.NotNil(t, meeting, "pinned staff must appear on the meeting day")
	assert.Equal(t, "Meeting", meeting.ShiftLabel)
	assert.Empty(t, meeting.Start)
	assert.Empty(t, meeting.End)

	assert.NotEqual(t, "Meeting", dayLabels(t, schedule, 1)["e1"])
	assert.NotEqual(t, "Meeting", dayLabels(t, schedule, 3)["e1"])
}

func TestLeadershipPresenceAndManagerLock(t *testing.T) {
	staffs := []domain.StaffRecord{
		{ID: "m1", Name: "Mori", RankTitle: "StoreManager", MaxWorkDays: monthDays},
		{ID: "l1", Name: "Nagai", RankTitle: "Leader", MaxWorkDays: monthDays},
		{ID: "l2", Name: "Okada", RankTitle: "Leader", MaxWorkDays: monthDays},
	}
	policy := testPolicy()
	policy.MinLeadershipPresent = 1

	schedule := mustGenerate(t, policy, staffs, testConfig(), nil)

	for d := 1; d <= monthDays; d++ {
		labels := dayLabels(t, schedule, d)
		assert.NotEmpty(t, labels, "leadership must be present on day %d", d)

		// The store manager only ever opens.
		if label, ok := labels["m1"]; ok {
			assert.Equal(t, "Early", label, "day %d", d)
		}
	}
}

func TestMentorPairing(t *testing.T) {
	newbie := newcomer("n1", "Endo")
	mentor := employee("e1", "Aoki")

	t.Run("mentor accompanies the newcomer", func(t *testing.T) {
		staffs := []domain.StaffRecord{mentor, newbie}
		reqs := restrictToDays(staffs, 1, domain.MonthRequests{
			"n1": freeDays(1),
		})
		schedule := mustGenerate(t, testPolicy(), staffs, testConfig(), reqs)
		labels := dayLabels(t, schedule, 1)
		assert.Contains(t, labels, "n1")
		assert.Contains(t, labels, "e1")
	})

	t.Run("no mentor available", func(t *testing.T) {
		staffs := []domain.StaffRecord{mentor, newbie}
		reqs := restrictToDays(staffs, 1, domain.MonthRequests{
			"n1": freeDays(1),
			"e1": {1: {Type: domain.RequestPaidLeave}},
		})
		_, err := generate(testPolicy(), staffs, testConfig(), reqs)
		require.Error(t, err)
		assert.True(t, apperrors.IsInfeasible(err))
	})
}

func TestNoRequestNoShift(t *testing.T) {
	staffs := []domain.StaffRecord{
		partner("p1", "Chen", 1),
		partner("p2", "Diaz", 2),
	}
	reqs := restrictToDays(staffs, 1, domain.MonthRequests{
		"p1": freeDays(1),
	})

	schedule := mustGenerate(t, testPolicy(), staffs, testConfig(), reqs)

	labels := dayLabels(t, schedule, 1)
	assert.Contains(t, labels, "p1")
	assert.NotContains(t, labels, "p2", "partners without a request stay off")
}

func TestShiftOverrideTable(t *testing.T) {
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	reqs := restrictToDays(staffs, 1, domain.MonthRequests{
		"e1": freeDays(1),
	})
	policy := testPolicy()
	policy.ShiftOverrides = map[string][]domain.ShiftType{
		"e1": {domain.ShiftLate},
	}

	schedule := mustGenerate(t, policy, staffs, testConfig(), reqs)

	assert.Equal(t, "Late", dayLabels(t, schedule, 1)["e1"])
}

func TestForcedBandRequests(t *testing.T) {
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	reqs := restrictToDays(staffs, 2, domain.MonthRequests{
		"e1": {
			1: {Type: domain.RequestMid},
			2: {Type: domain.RequestLate},
		},
	})

	schedule := mustGenerate(t, testPolicy(), staffs, testConfig(), reqs)

	assert.Equal(t, "Mid", dayLabels(t, schedule, 1)["e1"])
	assert.Equal(t, "Late", dayLabels(t, schedule, 2)["e1"])
}

func TestSkillShortageStaysSolvable(t *testing.T) {
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	staffs[0].Skills = map[string]int{"register": 2}

	reqs := restrictToDays(staffs, 1, nil)
	config := testConfig()
	config.MinSkills = map[string]int{"register": 5}

	schedule := mustGenerate(t, testPolicy(), staffs, config, reqs)

	// The shortage is penalized, not forbidden; working still beats a
	// larger shortage.
	assert.Contains(t, dayLabels(t, schedule, 1), "e1")
}

func TestDepartmentCoveragePolicy(t *testing.T) {
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	staffs[0].Department = domain.DepartmentAppliances

	reqs := restrictToDays(staffs, 1, domain.MonthRequests{
		"e1": {1: {Type: domain.RequestPaidLeave}},
	})

	t.Run("soft coverage tolerates the gap", func(t *testing.T) {
		schedule := mustGenerate(t, testPolicy(), staffs, testConfig(), reqs)
		assert.Empty(t, schedule[1])
	})

	t.Run("hard coverage makes the gap infeasible", func(t *testing.T) {
		policy := testPolicy()
		policy.DeptCoverageIsHard = true
		_, err := generate(policy, staffs, testConfig(), reqs)
		require.Error(t, err)
		assert.True(t, apperrors.IsInfeasible(err))
	})
}

func TestRollingWindowAndMonthlyCap(t *testing.T) {
	// A lone employee with the default 22-day cap over the full month.
	staffs := []domain.StaffRecord{{ID: "e1", Name: "Aoki", RankTitle: "Employee"}}

	schedule := mustGenerate(t, testPolicy(), staffs, testConfig(), nil)

	var workedDays []int
	for d := 1; d <= monthDays; d++ {
		if _, ok := dayLabels(t, schedule, d)["e1"]; ok {
			workedDays = append(workedDays, d)
		}
	}

	assert.Len(t, workedDays, domain.DefaultMaxWorkDays, "the fill incentive packs the month up to the cap")

	worked := map[int]bool{}
	for _, d := range workedDays {
		worked[d] = true
	}
	for start := 1; start+6 <= monthDays; start++ {
		count := 0
		for d := start; d < start+7; d++ {
			if worked[d] {
				count++
			}
		}
		assert.LessOrEqual(t, count, 6, "window starting day %d", start)
	}
}

func TestConsecutiveRunPenaltyBreaksStreaks(t *testing.T) {
	// Four open days and a run penalty that outweighs one worked day: the
	// best plan works three days with a break in the streak.
	staffs := []domain.StaffRecord{employee("e1", "Aoki")}
	reqs := restrictToDays(staffs, 4, nil)

	policy := testPolicy()
	policy.Weights.ConsecutiveRunPenalty = 11

	schedule := mustGenerate(t, policy, staffs, testConfig(), reqs)

	worked := map[int]bool{}
	total := 0
	for d := 1; d <= 4; d++ {
		if _, ok := dayLabels(t, schedule, d)["e1"]; ok {
			worked[d] = true
			total++
		}
	}

	assert.Equal(t, 3, total)
	for d := 1; d+2 <= 4; d++ {
		assert.False(t, worked[d] && worked[d+1] && worked[d+2],
			"three consecutive worked days starting day %d", d)
	}
}
