package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shift-scheduler/internal/domain"
)

// StaffRepository reads the staff roster.
type StaffRepository interface {
	ListActive(ctx context.Context) ([]domain.StaffRecord, error)
	GetByID(ctx context.Context, id string) (*domain.StaffRecord, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, name, department, rank_title, stored_tier, can_open, can_close, skills, max_work_days, priority`

func (r *staffRepository) ListActive(ctx context.Context) ([]domain.StaffRecord, error) {
	query := `
        SELECT ` + staffColumns + `
        FROM staff_records WHERE active_flag = TRUE
        ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffRecord
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffRecord, error) {
	query := `
        SELECT ` + staffColumns + `
        FROM staff_records WHERE id=$1`
	return scanStaff(r.pool.QueryRow(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (*domain.StaffRecord, error) {
	var staff domain.StaffRecord
	var department string
	var skillsRaw []byte
	if err := row.Scan(
		&staff.ID,
		&staff.Name,
		&department,
		&staff.RankTitle,
		&staff.StoredTier,
		&staff.CanOpen,
		&staff.CanClose,
		&skillsRaw,
		&staff.MaxWorkDays,
		&staff.Priority,
	); err != nil {
		return nil, err
	}
	staff.Department = domain.Department(department)
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &staff.Skills); err != nil {
			return nil, fmt.Errorf("decode skills for staff %s: %w", staff.ID, err)
		}
	}
	return &staff, nil
}
