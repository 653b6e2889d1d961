package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/scheduling"
	"github.com/spec-kit/shift-scheduler/internal/solver"
	apperrors "github.com/spec-kit/shift-scheduler/pkg/util"
)

const (
	testYear  = 2026
	testMonth = time.February
	monthDays = 28
)

// testPolicy flattens the taste weights so assertions depend on the
// constraint set, not on which equally-valid optimum the search lands on.
func testPolicy() scheduling.Policy {
	p := scheduling.DefaultPolicy()
	p.Weights.EarlyBias = 0
	p.Weights.MidBias = 0
	p.Weights.LateBias = 0
	p.Weights.WeekendBonus = 0
	p.Weights.DeptMissPenalty = 0
	p.Weights.ConsecutiveRunPenalty = 0
	return p
}

func testConfig() domain.MonthlyConfig {
	sales := make(map[int]int, monthDays)
	for d := 1; d <= monthDays; d++ {
		sales[d] = 50
	}
	return domain.MonthlyConfig{
		Year:       testYear,
		Month:      testMonth,
		DailySales: sales,
		LaborCaps:  domain.LaborCaps{SalesLow: 100, HoursLow: 70, SalesHigh: 200, HoursHigh: 120},
	}
}

func employee(id, name string) domain.StaffRecord {
	return domain.StaffRecord{ID: id, Name: name, RankTitle: "Employee", MaxWorkDays: monthDays}
}

func keyHolder(id, name string, dept domain.Department) domain.StaffRecord {
	s := employee(id, name)
	s.Department = dept
	s.CanOpen = true
	s.CanClose = true
	return s
}

func partner(id, name string, priority int) domain.StaffRecord {
	return domain.StaffRecord{ID: id, Name: name, RankTitle: "Partner", Priority: priority, MaxWorkDays: monthDays}
}

func newcomer(id, name string) domain.StaffRecord {
	return domain.StaffRecord{ID: id, Name: name, RankTitle: "NewPartner", MaxWorkDays: monthDays}
}

func freeDays(days ...int) domain.RequestSet {
	set := domain.RequestSet{}
	for _, d := range days {
		set[d] = domain.ShiftRequest{Type: domain.RequestFree}
	}
	return set
}

// restrictToDays puts every listed staff member on paid leave after the
// active horizon, so a test solves a short stretch of the month.
func restrictToDays(staffs []domain.StaffRecord, activeDays int, reqs domain.MonthRequests) domain.MonthRequests {
	out := domain.MonthRequests{}
	for _, s := range staffs {
		set := domain.RequestSet{}
		for d, r := range reqs[s.ID] {
			set[d] = r
		}
		for d := activeDays + 1; d <= monthDays; d++ {
			set[d] = domain.ShiftRequest{Type: domain.RequestPaidLeave}
		}
		out[s.ID] = set
	}
	return out
}

func generate(policy scheduling.Policy, staffs []domain.StaffRecord, config domain.MonthlyConfig, reqs domain.MonthRequests) (domain.Schedule, error) {
	gen := scheduling.NewGenerator(policy, solver.New(solver.Options{}), nil)
	return gen.Generate(staffs, config, reqs)
}

func mustGenerate(t *testing.T, policy scheduling.Policy, staffs []domain.StaffRecord, config domain.MonthlyConfig, reqs domain.MonthRequests) domain.Schedule {
	t.Helper()
	schedule, err := generate(policy, staffs, config, reqs)
	require.NoError(t, err)
	return schedule
}

// dayLabels indexes one day's assignments by staff id, failing on a staff
// member assigned twice.
func dayLabels(t *testing.T, schedule domain.Schedule, day int) map[string]string {
	t.Helper()
	labels := map[string]string{}
	for _, a := range schedule[day] {
		require.NotContains(t, labels, a.StaffID, "staff %s assigned twice on day %d", a.StaffID, day)
		labels[a.StaffID] = a.ShiftLabel
	}
	return labels
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}
