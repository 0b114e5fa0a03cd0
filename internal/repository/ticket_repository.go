package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/box-office/internal/domain"
)

// TicketFilter narrows rollup and listing queries.
type TicketFilter struct {
	SellerIDs   []string
	EventID     *string
	EventDateID *string
	Statuses    []domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TicketRepository encapsulates ticket persistence. The two conditional
// mutations (MarkValidated, TransitionStatus) are the concurrency guarantee
// for validation and admin transitions: they only write when the stored
// status still matches the expected one.
type TicketRepository interface {
	CreateWithCommissions(ctx context.Context, ticket *domain.TicketRecord, commissions []domain.CommissionRecord) error
	GetByID(ctx context.Context, id string) (*domain.TicketRecord, error)
	GetByCode(ctx context.Context, code string) (*domain.TicketRecord, error)
	MarkValidated(ctx context.Context, id, validatorID string, at time.Time) (bool, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.TicketStatus, at time.Time) (bool, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.TicketRecord, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates a Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, event_id, event_date_id, ticket_type_id, ticket_type_name, quantity,
       unit_price, total_price, customer_name, customer_email, customer_phone,
       seller_id, code, status, promoter_cut, team_leader_cut, manager_cut,
       validator_id, created_at, updated_at, validated_at, cancelled_at`

func (r *ticketRepository) CreateWithCommissions(ctx context.Context, ticket *domain.TicketRecord, commissions []domain.CommissionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO tickets (event_id, event_date_id, ticket_type_id, ticket_type_name, quantity,
                             unit_price, total_price, customer_name, customer_email, customer_phone,
                             seller_id, code, status, promoter_cut, team_leader_cut, manager_cut, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTicket,
		ticket.EventID,
		ticket.EventDateID,
		ticket.TicketType.ID,
		ticket.TicketType.Name,
		ticket.Quantity,
		ticket.UnitPrice,
		ticket.TotalPrice,
		ticket.Customer.Name,
		ticket.Customer.Email,
		ticket.Customer.Phone,
		ticket.SellerID,
		ticket.Code,
		ticket.Status,
		ticket.Commission.PromoterCut,
		ticket.Commission.TeamLeaderCut,
		ticket.Commission.ManagerCut,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	const insertCommission = `
        INSERT INTO commissions (ticket_id, beneficiary_id, role, amount, status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	for i := range commissions {
		commissions[i].TicketID = ticket.ID
		if err := tx.QueryRow(ctx, insertCommission,
			commissions[i].TicketID,
			commissions[i].BeneficiaryID,
			commissions[i].Role,
			commissions[i].Amount,
			commissions[i].Status,
			ticket.CreatedAt,
		).Scan(&commissions[i].ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.TicketRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.TicketRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE code=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.TicketRecord, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// MarkValidated performs the active-to-validated transition as a single
// conditional write. Exactly one of any set of racing callers observes
// applied=true.
func (r *ticketRepository) MarkValidated(ctx context.Context, id, validatorID string, at time.Time) (bool, error) {
	const query = `
        UPDATE tickets SET status=$1, validator_id=$2, validated_at=$3, updated_at=NOW()
        WHERE id=$4 AND status=$5`
	cmd, err := r.pool.Exec(ctx, query,
		domain.TicketStatusValidated, validatorID, at, id, domain.TicketStatusActive)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// TransitionStatus applies from-to guarded on the stored status still being
// from at write time. Cancellation stamps cancelled_at.
func (r *ticketRepository) TransitionStatus(ctx context.Context, id string, from, to domain.TicketStatus, at time.Time) (bool, error) {
	var cmd pgconn.CommandTag
	var err error
	if to == domain.TicketStatusCancelled {
		const query = `
            UPDATE tickets SET status=$1, cancelled_at=$2, updated_at=NOW()
            WHERE id=$3 AND status=$4`
		cmd, err = r.pool.Exec(ctx, query, to, at, id, from)
	} else {
		const query = `
            UPDATE tickets SET status=$1, updated_at=NOW()
            WHERE id=$2 AND status=$3`
		cmd, err = r.pool.Exec(ctx, query, to, id, from)
	}
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.TicketRecord, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.SellerIDs) > 0 {
		args = append(args, filter.SellerIDs)
		clauses = append(clauses, fmt.Sprintf("seller_id = ANY($%d)", len(args)))
	}
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		clauses = append(clauses, fmt.Sprintf("event_id=$%d", len(args)))
	}
	if filter.EventDateID != nil {
		args = append(args, *filter.EventDateID)
		clauses = append(clauses, fmt.Sprintf("event_date_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at ASC, id ASC`,
		base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketRecord
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.TicketRecord, error) {
	var ticket domain.TicketRecord
	if err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.EventDateID,
		&ticket.TicketType.ID,
		&ticket.TicketType.Name,
		&ticket.Quantity,
		&ticket.UnitPrice,
		&ticket.TotalPrice,
		&ticket.Customer.Name,
		&ticket.Customer.Email,
		&ticket.Customer.Phone,
		&ticket.SellerID,
		&ticket.Code,
		&ticket.Status,
		&ticket.Commission.PromoterCut,
		&ticket.Commission.TeamLeaderCut,
		&ticket.Commission.ManagerCut,
		&ticket.ValidatorID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ValidatedAt,
		&ticket.CancelledAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
