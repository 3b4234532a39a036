package principal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	dErrors "medgate/pkg/domain-errors"
)

// PostgresStore persists principals in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed principal store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const principalColumns = `id, email, name, password_hash, role, descriptor,
	ref_latitude, ref_longitude, leave_granted, leave_used, created_at`

func (s *PostgresStore) Save(ctx context.Context, p *Principal) error {
	var refLat, refLon sql.NullFloat64
	if p.Reference != nil {
		refLat = sql.NullFloat64{Float64: p.Reference.Latitude, Valid: true}
		refLon = sql.NullFloat64{Float64: p.Reference.Longitude, Valid: true}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO principals (id, email, name, password_hash, role, descriptor,
			ref_latitude, ref_longitude, leave_granted, leave_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			descriptor = EXCLUDED.descriptor,
			ref_latitude = EXCLUDED.ref_latitude,
			ref_longitude = EXCLUDED.ref_longitude,
			leave_granted = EXCLUDED.leave_granted,
			leave_used = EXCLUDED.leave_used`,
		p.ID, p.Email, p.Name, p.PasswordHash, string(p.Role), p.Descriptor,
		refLat, refLon, p.Leave.Granted, p.Leave.Used, p.CreatedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "save principal")
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = $1`, id)
	return scanPrincipal(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = $1`, email)
	return scanPrincipal(row)
}

// UpdateDescriptor overwrites the stored descriptor in a single statement so
// concurrent enrollments resolve last-write-wins at the database.
func (s *PostgresStore) UpdateDescriptor(ctx context.Context, id uuid.UUID, descriptor string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE principals SET descriptor = $2 WHERE id = $1`, id, descriptor)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "update descriptor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrincipal(row *sql.Row) (*Principal, error) {
	var (
		p              Principal
		role           string
		refLat, refLon sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash, &role, &p.Descriptor,
		&refLat, &refLon, &p.Leave.Granted, &p.Leave.Used, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "scan principal")
	}
	p.Role = Role(role)
	if refLat.Valid && refLon.Valid {
		p.Reference = &GeoPoint{Latitude: refLat.Float64, Longitude: refLon.Float64}
	}
	return &p, nil
}
