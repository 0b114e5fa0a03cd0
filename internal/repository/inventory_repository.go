package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/box-office/internal/domain"
)

// InventoryRepository is the remaining-quantity ledger keyed by
// (event date, ticket type). ReserveAndCommit must linearize concurrent
// reservations on the same key: two callers racing for the last units must
// not both succeed.
type InventoryRepository interface {
	Init(ctx context.Context, eventDateID, ticketTypeID string, totalQuantity int) error
	ReserveAndCommit(ctx context.Context, eventDateID, ticketTypeID string, quantity int) error
	Release(ctx context.Context, eventDateID, ticketTypeID string, quantity int) error
	Remaining(ctx context.Context, eventDateID, ticketTypeID string) (int, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates a Postgres-backed ledger.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

func (r *inventoryRepository) Init(ctx context.Context, eventDateID, ticketTypeID string, totalQuantity int) error {
	const query = `
        INSERT INTO inventory (event_date_id, ticket_type_id, total_quantity, remaining)
        VALUES ($1,$2,$3,$3)
        ON CONFLICT (event_date_id, ticket_type_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, eventDateID, ticketTypeID, totalQuantity)
	return err
}

// ReserveAndCommit decrements remaining with a guarded single-statement
// write; the row-level lock taken by UPDATE serializes racing reservations
// on the same key so the remaining >= quantity predicate is evaluated
// against the committed value.
func (r *inventoryRepository) ReserveAndCommit(ctx context.Context, eventDateID, ticketTypeID string, quantity int) error {
	const query = `
        UPDATE inventory SET remaining = remaining - $3
        WHERE event_date_id=$1 AND ticket_type_id=$2 AND remaining >= $3`
	cmd, err := r.pool.Exec(ctx, query, eventDateID, ticketTypeID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.Remaining(ctx, eventDateID, ticketTypeID); err != nil {
		return err
	}
	return domain.ErrInsufficientInventory
}

// Release reverses a prior commit after cancellation or a failed sale.
func (r *inventoryRepository) Release(ctx context.Context, eventDateID, ticketTypeID string, quantity int) error {
	const query = `
        UPDATE inventory SET remaining = LEAST(remaining + $3, total_quantity)
        WHERE event_date_id=$1 AND ticket_type_id=$2`
	cmd, err := r.pool.Exec(ctx, query, eventDateID, ticketTypeID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

func (r *inventoryRepository) Remaining(ctx context.Context, eventDateID, ticketTypeID string) (int, error) {
	const query = `SELECT remaining FROM inventory WHERE event_date_id=$1 AND ticket_type_id=$2`
	var remaining int
	if err := r.pool.QueryRow(ctx, query, eventDateID, ticketTypeID).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInventoryNotFound
		}
		return 0, err
	}
	return remaining, nil
}
