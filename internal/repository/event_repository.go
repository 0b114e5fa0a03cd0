package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/box-office/internal/domain"
)

// EventRepository persists events, dates and their type offers.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	// GetOffer resolves a date-scoped offer by its type ID, checking ticket
	// offers first and table offers second. Table offers carry seats>0.
	GetOffer(ctx context.Context, eventDateID, ticketTypeID string) (*domain.TicketTypeOffer, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertEvent = `
        INSERT INTO events (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertEvent, event.Name, event.Description).
		Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return err
	}

	for di := range event.Dates {
		date := &event.Dates[di]
		date.EventID = event.ID
		const insertDate = `
            INSERT INTO event_dates (event_id, starts_at)
            VALUES ($1,$2)
            RETURNING id`
		if err := tx.QueryRow(ctx, insertDate, date.EventID, date.StartsAt).Scan(&date.ID); err != nil {
			return err
		}
		for ti := range date.TicketTypes {
			offer := &date.TicketTypes[ti]
			offer.EventDateID = date.ID
			const insertOffer = `
                INSERT INTO ticket_type_offers (event_date_id, name, price, total_quantity)
                VALUES ($1,$2,$3,$4)
                RETURNING id`
			if err := tx.QueryRow(ctx, insertOffer, offer.EventDateID, offer.Name, offer.Price, offer.TotalQuantity).Scan(&offer.ID); err != nil {
				return err
			}
		}
		for ti := range date.TableTypes {
			offer := &date.TableTypes[ti]
			offer.EventDateID = date.ID
			const insertTable = `
                INSERT INTO table_type_offers (event_date_id, name, price, seats, total_quantity)
                VALUES ($1,$2,$3,$4,$5)
                RETURNING id`
			if err := tx.QueryRow(ctx, insertTable, offer.EventDateID, offer.Name, offer.Price, offer.Seats, offer.TotalQuantity).Scan(&offer.ID); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM events WHERE id=$1`
	var event domain.Event
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.Description, &event.CreatedAt, &event.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	dates, err := r.loadDates(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Dates = dates
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM events ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(&event.ID, &event.Name, &event.Description, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		dates, err := r.loadDates(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Dates = dates
	}
	return result, nil
}

func (r *eventRepository) loadDates(ctx context.Context, eventID string) ([]domain.EventDate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, event_id, starts_at FROM event_dates WHERE event_id=$1 ORDER BY starts_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []domain.EventDate
	for rows.Next() {
		var date domain.EventDate
		if err := rows.Scan(&date.ID, &date.EventID, &date.StartsAt); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range dates {
		if err := r.loadOffers(ctx, &dates[i]); err != nil {
			return nil, err
		}
	}
	return dates, nil
}

func (r *eventRepository) loadOffers(ctx context.Context, date *domain.EventDate) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_date_id, name, price, total_quantity FROM ticket_type_offers WHERE event_date_id=$1 ORDER BY id`, date.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var offer domain.TicketTypeOffer
		if err := rows.Scan(&offer.ID, &offer.EventDateID, &offer.Name, &offer.Price, &offer.TotalQuantity); err != nil {
			return err
		}
		date.TicketTypes = append(date.TicketTypes, offer)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tableRows, err := r.pool.Query(ctx,
		`SELECT id, event_date_id, name, price, seats, total_quantity FROM table_type_offers WHERE event_date_id=$1 ORDER BY id`, date.ID)
	if err != nil {
		return err
	}
	defer tableRows.Close()
	for tableRows.Next() {
		var offer domain.TableTypeOffer
		if err := tableRows.Scan(&offer.ID, &offer.EventDateID, &offer.Name, &offer.Price, &offer.Seats, &offer.TotalQuantity); err != nil {
			return err
		}
		date.TableTypes = append(date.TableTypes, offer)
	}
	return tableRows.Err()
}

func (r *eventRepository) GetOffer(ctx context.Context, eventDateID, ticketTypeID string) (*domain.TicketTypeOffer, error) {
	const ticketQuery = `
        SELECT id, event_date_id, name, price, total_quantity
        FROM ticket_type_offers WHERE event_date_id=$1 AND id=$2`
	var offer domain.TicketTypeOffer
	err := r.pool.QueryRow(ctx, ticketQuery, eventDateID, ticketTypeID).Scan(
		&offer.ID, &offer.EventDateID, &offer.Name, &offer.Price, &offer.TotalQuantity)
	if err == nil {
		return &offer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	const tableQuery = `
        SELECT id, event_date_id, name, price, total_quantity
        FROM table_type_offers WHERE event_date_id=$1 AND id=$2`
	err = r.pool.QueryRow(ctx, tableQuery, eventDateID, ticketTypeID).Scan(
		&offer.ID, &offer.EventDateID, &offer.Name, &offer.Price, &offer.TotalQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}
