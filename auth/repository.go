package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrProfileNotFound signals that the profile does not exist.
	ErrProfileNotFound = errors.New("auth: profile not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already exists")
)

// Repository handles data access for profiles.
type Repository interface {
	CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	GetProfileByID(ctx context.Context, id string) (Profile, error)
	ListCoordinators(ctx context.Context) ([]Profile, error)
}

// CreateProfileParams contains write parameters for creating profiles.
type CreateProfileParams struct {
	Email         string
	PasswordHash  string
	Role          Role
	Name          string
	Department    string
	Branch        string
	Year          string
	StudentNumber string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed profile repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const profileColumns = `id, email, password_hash, role, name, department, branch, year, student_number, created_at, updated_at`

// CreateProfile inserts a new profile with hashed password.
func (r *PGRepository) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	insertSQL := `
		INSERT INTO users (id, email, password_hash, role, name, department, branch, year, student_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + profileColumns

	profile, err := scanProfile(r.pool.QueryRow(ctx, insertSQL,
		uuid.NewString(),
		params.Email,
		params.PasswordHash,
		params.Role,
		params.Name,
		params.Department,
		params.Branch,
		params.Year,
		params.StudentNumber,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, ErrDuplicateEmail
		}
		return Profile{}, fmt.Errorf("auth: create profile: %w", err)
	}

	return profile, nil
}

// GetProfileByEmail retrieves a profile by email address.
func (r *PGRepository) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	selectSQL := `SELECT ` + profileColumns + ` FROM users WHERE email = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("auth: get profile by email: %w", err)
	}

	return profile, nil
}

// GetProfileByID retrieves a profile by ID.
func (r *PGRepository) GetProfileByID(ctx context.Context, id string) (Profile, error) {
	selectSQL := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("auth: get profile by id: %w", err)
	}

	return profile, nil
}

// ListCoordinators returns every coordinator profile ordered by name. The
// student booking form uses it to populate the target coordinator roster.
func (r *PGRepository) ListCoordinators(ctx context.Context) ([]Profile, error) {
	selectSQL := `SELECT ` + profileColumns + ` FROM users WHERE role = $1 ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, selectSQL, RoleCoordinator)
	if err != nil {
		return nil, fmt.Errorf("auth: list coordinators: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("auth: scan coordinator: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: iterate coordinators: %w", err)
	}

	return profiles, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.Role,
		&p.Name,
		&p.Department,
		&p.Branch,
		&p.Year,
		&p.StudentNumber,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}
