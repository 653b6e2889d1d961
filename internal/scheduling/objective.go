package scheduling

import (
	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/solver"
)

// ComposeObjective installs the single linear expression the solver
// maximizes: a seniority- and band-weighted fill incentive minus the
// soft-violation penalties the builder registered.
func ComposeObjective(policy Policy, roster *Roster, config domain.MonthlyConfig, m *Model) {
	w := policy.Weights
	var terms []solver.Term

	for d := 1; d <= m.Days; d++ {
		weekend := config.Weekend(d)
		for _, s := range roster.Staff {
			tier := roster.Tier[s.ID]
			base := w.BaseWeight(tier, s.EffectivePriority())
			for _, st := range domain.WorkingShiftTypes {
				coeff := base + w.ShiftBias(st)
				if weekend && tier <= domain.TierEmployee {
					coeff += w.WeekendBonus
				}
				terms = append(terms, solver.Term{Var: m.Var(d, s.ID, st), Coeff: coeff})
			}
		}
	}

	for _, v := range m.SkillShortage {
		terms = append(terms, solver.Term{Var: v, Coeff: -w.SkillShortagePenalty})
	}
	for _, v := range m.DeptMiss {
		terms = append(terms, solver.Term{Var: v, Coeff: -w.DeptMissPenalty})
	}
	for _, v := range m.OffViolation {
		terms = append(terms, solver.Term{Var: v, Coeff: -w.RequestedOffPenalty})
	}
	for _, v := range m.RunFlag {
		terms = append(terms, solver.Term{Var: v, Coeff: -w.ConsecutiveRunPenalty})
	}
	for _, v := range m.RestViolation {
		terms = append(terms, solver.Term{Var: v, Coeff: -w.RestViolationPenalty})
	}

	m.Problem.SetObjective(terms)
}
