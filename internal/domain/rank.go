package domain

// RankTier is the canonical seniority tier derived from a rank title.
// Lower values outrank higher ones.
type RankTier int

const (
	TierStoreManager RankTier = 1
	TierLeader       RankTier = 2
	TierEmployee     RankTier = 3
	TierPartner      RankTier = 4
	TierNewPartner   RankTier = 5
	TierUnknown      RankTier = 99
)

var rankTitleTiers = map[string]RankTier{
	"StoreManager": TierStoreManager,
	"Leader":       TierLeader,
	"Employee":     TierEmployee,
	"Partner":      TierPartner,
	"NewPartner":   TierNewPartner,
}

// NormalizeRank maps a roster record's rank title onto its canonical tier.
// Unrecognized or missing titles fall back to the record's stored numeric
// tier when that is itself a known tier, and to TierUnknown otherwise.
// Pure function: identical input always yields the identical tier.
func NormalizeRank(staff StaffRecord) RankTier {
	if tier, ok := rankTitleTiers[staff.RankTitle]; ok {
		return tier
	}
	stored := RankTier(staff.StoredTier)
	switch stored {
	case TierStoreManager, TierLeader, TierEmployee, TierPartner, TierNewPartner:
		return stored
	}
	return TierUnknown
}

// Leadership reports whether the tier participates in leadership presence.
func (t RankTier) Leadership() bool { return t <= TierLeader }

// Mentor reports whether the tier may supervise a new partner.
func (t RankTier) Mentor() bool { return t <= TierEmployee }

func (t RankTier) String() string {
	switch t {
	case TierStoreManager:
		return "StoreManager"
	case TierLeader:
		return "Leader"
	case TierEmployee:
		return "Employee"
	case TierPartner:
		return "Partner"
	case TierNewPartner:
		return "NewPartner"
	}
	return "Unknown"
}
