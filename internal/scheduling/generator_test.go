package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/scheduling"
	apperrors "github.com/spec-kit/shift-scheduler/pkg/util"
)

// tieredRoster is three key-holding employees plus partner-tier staff who
// only work requested days. Employees carry no monthly cap beyond the
// calendar so the rolling-window rule is what forces their days off.
func tieredRoster() []domain.StaffRecord {
	return []domain.StaffRecord{
		keyHolder("e1", "Aoki", domain.DepartmentAppliances),
		keyHolder("e2", "Baker", domain.DepartmentComputing),
		keyHolder("e3", "Chen", domain.DepartmentSeasonal),
		partner("p1", "Diaz", 1),
		partner("p2", "Endo", 2),
		newcomer("n1", "Fuchs"),
	}
}

func TestGenerateTieredRoster(t *testing.T) {
	reqs := domain.MonthRequests{
		"p1": freeDays(1, 2, 3, 4, 5),
		"n1": freeDays(3),
	}
	config := testConfig()
	config.MinStaffCounts = domain.MinStaffCounts{Open: 1, Close: 1}

	schedule := mustGenerate(t, testPolicy(), tieredRoster(), config, reqs)

	require.Len(t, schedule, monthDays)

	worked := map[string][]int{}
	for d := 1; d <= monthDays; d++ {
		labels := dayLabels(t, schedule, d)
		require.NotEmpty(t, labels, "day %d has no coverage", d)

		hasOpener, hasCloser := false, false
		for id, label := range labels {
			worked[id] = append(worked[id], d)
			if label == "Early" {
				hasOpener = true
			}
			if label == "Late" {
				hasCloser = true
			}
		}
		assert.True(t, hasOpener, "no opening shift on day %d", d)
		assert.True(t, hasCloser, "no closing shift on day %d", d)

		// A newcomer on duty implies a mentor on duty.
		if _, ok := labels["n1"]; ok {
			_, e1 := labels["e1"]
			_, e2 := labels["e2"]
			_, e3 := labels["e3"]
			assert.True(t, e1 || e2 || e3, "newcomer unmentored on day %d", d)
		}
	}

	// Partner-tier staff work exactly their requested days.
	assert.Equal(t, []int{1, 2, 3, 4, 5}, worked["p1"])
	assert.Empty(t, worked["p2"], "a partner without requests stays off")
	assert.Equal(t, []int{3}, worked["n1"])

	// Nobody works more than six days of any seven.
	for id, days := range worked {
		set := map[int]bool{}
		for _, d := range days {
			set[d] = true
		}
		for start := 1; start+6 <= monthDays; start++ {
			count := 0
			for d := start; d < start+7; d++ {
				if set[d] {
					count++
				}
			}
			assert.LessOrEqual(t, count, 6, "staff %s, window starting day %d", id, start)
		}
	}

	// A closing shift is never followed by an opening shift.
	for d := 1; d < monthDays; d++ {
		today := dayLabels(t, schedule, d)
		tomorrow := dayLabels(t, schedule, d+1)
		for id, label := range today {
			if label == "Late" {
				assert.NotEqual(t, "Early", tomorrow[id], "staff %s closes day %d and opens day %d", id, d, d+1)
			}
		}
	}
}

// TestGenerateFullMonthProductionWeights runs the tiered roster through
// the unflattened default policy. The biased weights produce many
// near-equal schedules, so this is the case that stresses the solver's
// pruning; a generated schedule here means the search proved optimality
// inside the node budget.
func TestGenerateFullMonthProductionWeights(t *testing.T) {
	reqs := domain.MonthRequests{
		"p1": freeDays(1, 2, 3, 4, 5),
		"n1": freeDays(3),
	}
	config := testConfig()
	config.MinStaffCounts = domain.MinStaffCounts{Open: 1, Close: 1}

	schedule := mustGenerate(t, scheduling.DefaultPolicy(), tieredRoster(), config, reqs)

	require.Len(t, schedule, monthDays)

	worked := map[string][]int{}
	for d := 1; d <= monthDays; d++ {
		labels := dayLabels(t, schedule, d)
		require.NotEmpty(t, labels, "day %d has no coverage", d)

		hasOpener, hasCloser := false, false
		for id, label := range labels {
			worked[id] = append(worked[id], d)
			if label == "Early" {
				hasOpener = true
			}
			if label == "Late" {
				hasCloser = true
			}
		}
		assert.True(t, hasOpener, "no opening shift on day %d", d)
		assert.True(t, hasCloser, "no closing shift on day %d", d)
	}

	// Hard rules hold whichever optimum the search lands on.
	assert.Equal(t, []int{1, 2, 3, 4, 5}, worked["p1"])
	assert.Empty(t, worked["p2"])
	assert.Equal(t, []int{3}, worked["n1"])

	for _, id := range []string{"e1", "e2", "e3"} {
		assert.GreaterOrEqual(t, len(worked[id]), 20, "employee %s barely scheduled", id)
	}

	for id, days := range worked {
		set := map[int]bool{}
		for _, d := range days {
			set[d] = true
		}
		for start := 1; start+6 <= monthDays; start++ {
			count := 0
			for d := start; d < start+7; d++ {
				if set[d] {
					count++
				}
			}
			assert.LessOrEqual(t, count, 6, "staff %s, window starting day %d", id, start)
		}
	}

	for d := 1; d < monthDays; d++ {
		today := dayLabels(t, schedule, d)
		tomorrow := dayLabels(t, schedule, d+1)
		for id, label := range today {
			if label == "Late" {
				assert.NotEqual(t, "Early", tomorrow[id], "staff %s closes day %d and opens day %d", id, d, d+1)
			}
		}
	}
}

func TestGenerateInfeasibleHeadcount(t *testing.T) {
	staffs := []domain.StaffRecord{
		keyHolder("e1", "Aoki", domain.DepartmentUnassigned),
		keyHolder("e2", "Baker", domain.DepartmentUnassigned),
	}
	config := testConfig()
	config.MinStaffCounts = domain.MinStaffCounts{Open: 3}

	schedule, err := generate(testPolicy(), staffs, config, nil)

	require.Error(t, err)
	assert.Nil(t, schedule)
	assert.True(t, apperrors.IsInfeasible(err))

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "MODEL_INFEASIBLE", de.Code)
	assert.Equal(t, 422, de.HTTPStatus)
	assert.Equal(t, "Infeasible", de.Details["solver_status"])
}

func TestGeneratePaidLeaveDay(t *testing.T) {
	reqs := domain.MonthRequests{
		"e1": {5: {Type: domain.RequestPaidLeave}},
	}
	config := testConfig()
	config.MinStaffCounts = domain.MinStaffCounts{Open: 1, Close: 1}

	schedule := mustGenerate(t, testPolicy(), tieredRoster(), config, reqs)

	labels := dayLabels(t, schedule, 5)
	assert.NotContains(t, labels, "e1", "paid leave day must stay unassigned")
	assert.NotEmpty(t, labels, "the rest of the roster still covers the day")
}

func TestGenerateCustomWindow(t *testing.T) {
	reqs := domain.MonthRequests{
		"p1": {2: {
			Type:  domain.RequestCustomWindow,
			Start: domain.MustClockTime("09:00"),
			End:   domain.MustClockTime("22:00"),
		}},
	}
	config := testConfig()
	config.MinStaffCounts = domain.MinStaffCounts{Open: 1, Close: 1}

	schedule := mustGenerate(t, testPolicy(), tieredRoster(), config, reqs)

	var found *domain.Assignment
	for i, a := range schedule[2] {
		if a.StaffID == "p1" {
			found = &schedule[2][i]
		}
	}
	require.NotNil(t, found, "custom window request must be honored")
	assert.Equal(t, "CustomWindow", found.ShiftLabel)
	assert.Equal(t, "09:00", found.Start)
	assert.Equal(t, "22:00", found.End)

	// Canonical shifts carry no literal times.
	for _, a := range schedule[2] {
		if a.StaffID != "p1" {
			assert.Empty(t, a.Start)
			assert.Empty(t, a.End)
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	okStaff := []domain.StaffRecord{employee("e1", "Aoki")}

	tests := map[string]struct {
		staffs   []domain.StaffRecord
		month    time.Month
		requests domain.MonthRequests
		code     string
	}{
		"empty roster": {
			staffs: nil, month: testMonth, code: "DATA_ERROR",
		},
		"blank staff id": {
			staffs: []domain.StaffRecord{{Name: "Nameless"}}, month: testMonth, code: "DATA_ERROR",
		},
		"duplicate staff id": {
			staffs: []domain.StaffRecord{employee("e1", "Aoki"), employee("e1", "Baker")},
			month:  testMonth, code: "DATA_ERROR",
		},
		"invalid month": {
			staffs: okStaff, month: 0, code: "DATA_ERROR",
		},
		"request for unknown staff": {
			staffs: okStaff, month: testMonth,
			requests: domain.MonthRequests{"ghost": freeDays(1)},
			code:     "DATA_ERROR",
		},
		"request outside month": {
			staffs: okStaff, month: testMonth,
			requests: domain.MonthRequests{"e1": freeDays(monthDays + 1)},
			code:     "DATA_ERROR",
		},
		"empty custom window": {
			staffs: okStaff, month: testMonth,
			requests: domain.MonthRequests{"e1": {1: {
				Type:  domain.RequestCustomWindow,
				Start: domain.MustClockTime("17:00"),
				End:   domain.MustClockTime("09:00"),
			}}},
			code: "DATA_ERROR",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			config := testConfig()
			config.Month = tc.month
			schedule, err := generate(testPolicy(), tc.staffs, config, tc.requests)
			require.Error(t, err)
			assert.Nil(t, schedule)
			assert.Equal(t, tc.code, domainCode(t, err))
		})
	}
}

func TestGenerateRejectsBadPolicy(t *testing.T) {
	policy := testPolicy()
	policy.ConsecutiveRunThreshold = 5

	_, err := generate(policy, []domain.StaffRecord{employee("e1", "Aoki")}, testConfig(), nil)

	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", domainCode(t, err))
}
