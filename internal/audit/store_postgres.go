package audit

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"medgate/internal/principal"
	dErrors "medgate/pkg/domain-errors"
)

// PostgresStore persists audit events in PostgreSQL. Rows are insert-only;
// no update or delete statement exists in this package.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var lat, lon sql.NullFloat64
	if event.Location != nil {
		lat = sql.NullFloat64{Float64: event.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: event.Location.Longitude, Valid: true}
	}
	var principalID any
	if event.PrincipalID != nil {
		principalID = *event.PrincipalID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, principal_id, kind, detail, latitude, longitude, suspicious, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, principalID, string(event.Kind), event.Detail, lat, lon, event.Suspicious, event.CreatedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "append audit event")
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, page Page) ([]Event, int, error) {
	return s.list(ctx, page, "TRUE")
}

func (s *PostgresStore) ListSuspicious(ctx context.Context, page Page) ([]Event, int, error) {
	return s.list(ctx, page, "suspicious")
}

func (s *PostgresStore) list(ctx context.Context, page Page, where string) ([]Event, int, error) {
	page = page.Normalize()

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_events WHERE `+where).Scan(&total)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "count audit events")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, principal_id, kind, detail, latitude, longitude, suspicious, created_at
		FROM audit_events WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, page.Size, page.offset())
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "list audit events")
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *PostgresStore) ListByPrincipal(ctx context.Context, principalID uuid.UUID, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, principal_id, kind, detail, latitude, longitude, suspicious, created_at
		FROM audit_events WHERE principal_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, principalID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "list audit events by principal")
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	events := []Event{}
	for rows.Next() {
		var (
			e           Event
			principalID uuid.NullUUID
			kind        string
			lat, lon    sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &principalID, &kind, &e.Detail, &lat, &lon, &e.Suspicious, &e.CreatedAt); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "scan audit event")
		}
		e.Kind = Kind(kind)
		if principalID.Valid {
			id := principalID.UUID
			e.PrincipalID = &id
		}
		if lat.Valid && lon.Valid {
			e.Location = &principal.GeoPoint{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "iterate audit events")
	}
	return events, nil
}
