package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/scheduling"
)

func TestDefaultPolicyValidates(t *testing.T) {
	assert.NoError(t, scheduling.DefaultPolicy().Validate())
}

func TestPolicyValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*scheduling.Policy)
		wantErr bool
	}{
		"threshold three": {mutate: func(p *scheduling.Policy) { p.ConsecutiveRunThreshold = 3 }},
		"threshold four":  {mutate: func(p *scheduling.Policy) { p.ConsecutiveRunThreshold = 4 }},
		"threshold five": {
			mutate: func(p *scheduling.Policy) { p.ConsecutiveRunThreshold = 5 }, wantErr: true,
		},
		"negative leadership": {
			mutate: func(p *scheduling.Policy) { p.MinLeadershipPresent = -1 }, wantErr: true,
		},
		"window not above cap": {
			mutate: func(p *scheduling.Policy) { p.RollingWindowDays = 6 }, wantErr: true,
		},
		"zero shift hours": {
			mutate: func(p *scheduling.Policy) { p.ShiftHours = 0 }, wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := scheduling.DefaultPolicy()
			tc.mutate(&p)
			if tc.wantErr {
				assert.Error(t, p.Validate())
			} else {
				assert.NoError(t, p.Validate())
			}
		})
	}
}

func TestWeightsBaseWeight(t *testing.T) {
	w := scheduling.DefaultPolicy().Weights

	assert.Equal(t, w.EmployeeBase, w.BaseWeight(domain.TierStoreManager, 0))
	assert.Equal(t, w.EmployeeBase, w.BaseWeight(domain.TierEmployee, 0))
	assert.Equal(t, w.PartnerFirst, w.BaseWeight(domain.TierPartner, 1))
	assert.Equal(t, w.PartnerSecond, w.BaseWeight(domain.TierPartner, 2))
	assert.Equal(t, w.PartnerThird, w.BaseWeight(domain.TierPartner, 3))
	assert.Equal(t, w.NewcomerBase, w.BaseWeight(domain.TierNewPartner, 0))
	assert.Equal(t, w.UnknownBase, w.BaseWeight(domain.TierUnknown, 0))

	// Higher-priority partners are filled first.
	assert.Greater(t, w.BaseWeight(domain.TierPartner, 1), w.BaseWeight(domain.TierPartner, 2))
	assert.Greater(t, w.BaseWeight(domain.TierPartner, 2), w.BaseWeight(domain.TierPartner, 3))
}

func TestWeightsShiftBias(t *testing.T) {
	w := scheduling.DefaultPolicy().Weights

	assert.Equal(t, w.EarlyBias, w.ShiftBias(domain.ShiftEarly))
	assert.Equal(t, w.MidBias, w.ShiftBias(domain.ShiftMid))
	assert.Equal(t, w.LateBias, w.ShiftBias(domain.ShiftLate))
	assert.Zero(t, w.ShiftBias(domain.ShiftMeeting))

	// Early shifts are the hardest to fill and pay the largest bias.
	assert.Greater(t, w.EarlyBias, w.MidBias)
	assert.Greater(t, w.MidBias, w.LateBias)
}

func TestPolicyAllowedShifts(t *testing.T) {
	p := scheduling.DefaultPolicy()
	assert.Nil(t, p.AllowedShifts("e1"))

	p.ShiftOverrides = map[string][]domain.ShiftType{
		"e1": {domain.ShiftEarly, domain.ShiftMid},
	}
	assert.Equal(t, []domain.ShiftType{domain.ShiftEarly, domain.ShiftMid}, p.AllowedShifts("e1"))
	assert.Nil(t, p.AllowedShifts("e2"))
}
