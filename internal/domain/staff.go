package domain

// Department groups staff for daily coverage rules.
type Department string

const (
	DepartmentAppliances Department = "APPLIANCES"
	DepartmentSeasonal   Department = "SEASONAL"
	DepartmentComputing  Department = "COMPUTING"
	DepartmentTelecom    Department = "TELECOM"
	DepartmentUnassigned Department = ""
)

// Departments lists the configured coverage departments.
var Departments = []Department{
	DepartmentAppliances,
	DepartmentSeasonal,
	DepartmentComputing,
	DepartmentTelecom,
}

// DefaultMaxWorkDays applies when a roster record carries no monthly cap.
const DefaultMaxWorkDays = 22

// DefaultPartnerPriority is the middle fill priority for partner staff.
const DefaultPartnerPriority = 2

// StaffRecord models one roster entry as read from the store.
type StaffRecord struct {
	ID          string
	Name        string
	Department  Department
	RankTitle   string
	StoredTier  int // numeric fallback when RankTitle is unrecognized
	CanOpen     bool
	CanClose    bool
	Skills      map[string]int
	MaxWorkDays int
	Priority    int // 1..3, partners only; 1 is filled first
}

// EffectiveMaxWorkDays returns the monthly attendance cap, defaulted.
func (s StaffRecord) EffectiveMaxWorkDays() int {
	if s.MaxWorkDays <= 0 {
		return DefaultMaxWorkDays
	}
	return s.MaxWorkDays
}

// EffectivePriority returns the partner fill priority, defaulted.
func (s StaffRecord) EffectivePriority() int {
	if s.Priority < 1 || s.Priority > 3 {
		return DefaultPartnerPriority
	}
	return s.Priority
}

// SkillLevel returns the staff's level for a skill, zero when absent.
func (s StaffRecord) SkillLevel(skill string) int {
	if s.Skills == nil {
		return 0
	}
	return s.Skills[skill]
}
