package scheduling

import (
	"sort"

	"github.com/spec-kit/shift-scheduler/internal/domain"
)

// Roster is the normalized view of the staff records for one run: ranks
// resolved once, tier-derived sets and department groups precomputed.
type Roster struct {
	Staff []domain.StaffRecord // sorted by id for deterministic models
	Tier  map[string]domain.RankTier

	Leadership []string // tier <= Leader
	Mentors    []string // tier <= Employee
	Partners   []string // tier == Partner
	Newcomers  []string // tier == NewPartner

	Departments map[domain.Department][]string

	byID map[string]domain.StaffRecord
}

// BuildRoster normalizes ranks and derives the tier and department sets.
func BuildRoster(staffs []domain.StaffRecord) *Roster {
	sorted := append([]domain.StaffRecord(nil), staffs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	r := &Roster{
		Staff:       sorted,
		Tier:        make(map[string]domain.RankTier, len(sorted)),
		Departments: make(map[domain.Department][]string),
		byID:        make(map[string]domain.StaffRecord, len(sorted)),
	}
	for _, s := range sorted {
		tier := domain.NormalizeRank(s)
		r.Tier[s.ID] = tier
		r.byID[s.ID] = s

		if tier.Leadership() {
			r.Leadership = append(r.Leadership, s.ID)
		}
		if tier.Mentor() {
			r.Mentors = append(r.Mentors, s.ID)
		}
		switch tier {
		case domain.TierPartner:
			r.Partners = append(r.Partners, s.ID)
		case domain.TierNewPartner:
			r.Newcomers = append(r.Newcomers, s.ID)
		}

		if s.Department != domain.DepartmentUnassigned {
			r.Departments[s.Department] = append(r.Departments[s.Department], s.ID)
		}
	}
	return r
}

// ByID looks up a roster record.
func (r *Roster) ByID(id string) (domain.StaffRecord, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Contains reports whether the id belongs to the roster.
func (r *Roster) Contains(id string) bool {
	_, ok := r.byID[id]
	return ok
}
