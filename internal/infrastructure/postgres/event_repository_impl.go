package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusbuddy/events-api/internal/domain/entity"
	"github.com/campusbuddy/events-api/internal/domain/repository"
)

const eventColumns = `
	e.id, e.title, e.description, e.date, e.location, e.organizer_id,
	e.max_participants, e.current_participants, e.category, e.status,
	e.image_url, e.created_at,
	o.id, o.name, o.email`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (title, description, date, location, organizer_id,
			max_participants, category, status, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, current_participants, created_at
	`, e.Title, e.Description, e.Date, e.Location, e.OrganizerID,
		e.MaxParticipants, e.Category, e.Status, e.ImageURL)

	if err := row.Scan(&e.ID, &e.CurrentParticipants, &e.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return repository.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN users o ON o.id = e.organizer_id
		WHERE e.id = $1
	`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrEventNotFound
		}
		return nil, err
	}

	if e.RegisteredUsers, err = r.attendees(ctx, id); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context) ([]*entity.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN users o ON o.id = e.organizer_id
		ORDER BY e.date ASC
	`)
}

// Search ranks events with Postgres full-text search over title, description
// and category. The service prefers the Elasticsearch index when configured;
// this keeps the same contract without it.
func (r *EventRepository) Search(ctx context.Context, query string) ([]*entity.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN users o ON o.id = e.organizer_id
		WHERE e.search_tsv @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(e.search_tsv, plainto_tsquery('english', $1)) DESC
	`, query)
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, userID string) ([]*entity.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN users o ON o.id = e.organizer_id
		WHERE e.organizer_id = $1
		ORDER BY e.date ASC
	`, userID)
}

func (r *EventRepository) ListRegisteredBy(ctx context.Context, userID string) ([]*entity.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events e
		JOIN users o ON o.id = e.organizer_id
		JOIN event_registrations er ON er.event_id = e.id
		WHERE er.user_id = $1
		ORDER BY e.date ASC
	`, userID)
}

// Register performs the capacity check, the membership insert and the counter
// increment as one transaction so the aggregate never passes through an
// observable intermediate state. The membership insert hits the
// (event_id, user_id) primary key first, so re-registering on a full event
// still reports the duplicate rather than the capacity failure. The
// conditional UPDATE takes the event's row lock; a concurrent transaction
// re-evaluates the capacity predicate after the lock is released, which is
// what makes the last remaining slot go to exactly one caller.
func (r *EventRepository) Register(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO event_registrations (event_id, user_id)
		VALUES ($1, $2)
	`, eventID, userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, repository.ErrAlreadyRegistered
			case "23503":
				if pgErr.ConstraintName == "event_registrations_user_id_fkey" {
					return nil, repository.ErrUserNotFound
				}
				return nil, repository.ErrEventNotFound
			}
		}
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE events
		SET current_participants = current_participants + 1
		WHERE id = $1 AND current_participants < max_participants
	`, eventID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// The registration row above guaranteed the event exists (FK), so a
		// zero-row update can only mean the event is full.
		return nil, repository.ErrEventFull
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, eventID)
}

func (r *EventRepository) attendees(ctx context.Context, eventID string) ([]entity.UserRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email
		FROM event_registrations er
		JOIN users u ON u.id = er.user_id
		WHERE er.event_id = $1
		ORDER BY er.created_at ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []entity.UserRef
	for rows.Next() {
		var ref entity.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *EventRepository) queryEvents(ctx context.Context, sql string, args ...any) ([]*entity.Event, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*entity.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*entity.Event, error) {
	e := &entity.Event{Organizer: &entity.UserRef{}}
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.OrganizerID,
		&e.MaxParticipants, &e.CurrentParticipants, &e.Category, &e.Status,
		&e.ImageURL, &e.CreatedAt,
		&e.Organizer.ID, &e.Organizer.Name, &e.Organizer.Email,
	); err != nil {
		return nil, err
	}
	return e, nil
}

var _ repository.EventRepository = (*EventRepository)(nil)
