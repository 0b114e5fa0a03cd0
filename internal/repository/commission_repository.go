package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/box-office/internal/domain"
)

// CommissionRepository reads and settles commission rows. Creation happens
// inside TicketRepository.CreateWithCommissions so a ticket and its splits
// commit as one unit.
type CommissionRepository interface {
	ListByTicket(ctx context.Context, ticketID string) ([]domain.CommissionRecord, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID string) ([]domain.CommissionRecord, error)
	UpdateStatusByTicket(ctx context.Context, ticketID string, status domain.CommissionStatus) error
}

type commissionRepository struct {
	pool *pgxpool.Pool
}

// NewCommissionRepository returns a Postgres-backed implementation.
func NewCommissionRepository(pool *pgxpool.Pool) CommissionRepository {
	return &commissionRepository{pool: pool}
}

const commissionColumns = `id, ticket_id, beneficiary_id, role, amount, status, created_at, updated_at`

func (r *commissionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.CommissionRecord, error) {
	return r.list(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`, ticketID)
}

func (r *commissionRepository) ListByBeneficiary(ctx context.Context, beneficiaryID string) ([]domain.CommissionRecord, error) {
	return r.list(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE beneficiary_id=$1 ORDER BY created_at ASC, id ASC`, beneficiaryID)
}

func (r *commissionRepository) list(ctx context.Context, query string, arg any) ([]domain.CommissionRecord, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CommissionRecord
	for rows.Next() {
		var record domain.CommissionRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.BeneficiaryID,
			&record.Role,
			&record.Amount,
			&record.Status,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *commissionRepository) UpdateStatusByTicket(ctx context.Context, ticketID string, status domain.CommissionStatus) error {
	const query = `UPDATE commissions SET status=$1, updated_at=NOW() WHERE ticket_id=$2`
	_, err := r.pool.Exec(ctx, query, status, ticketID)
	return err
}
