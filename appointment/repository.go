package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested appointment does not exist.
	ErrNotFound = errors.New("appointment: not found")
	// ErrInvalidTransition signals a status move the lifecycle does not allow.
	ErrInvalidTransition = errors.New("appointment: invalid status transition")
)

// Repository handles data access for appointment requests.
type Repository interface {
	Create(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	ListForCoordinator(ctx context.Context, coordinatorID string) ([]Request, error)
	ListForStudent(ctx context.Context, studentID string) ([]Request, error)
	UpdateStatus(ctx context.Context, id string, next Status, suggestedDate, suggestedTime string) (Request, error)
	Delete(ctx context.Context, id string) error
	GetPartySnapshot(ctx context.Context, profileID string) (PartySnapshot, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed appointment repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `id, student_id, student_number, student_name, coordinator_id, coordinator_name,
		purpose, requested_date, requested_time, status, suggested_date, suggested_time, created_at, updated_at`

// Create inserts a new request. The creation timestamp is assigned by the
// database so ordering follows commit order.
func (r *PGRepository) Create(ctx context.Context, req Request) (Request, error) {
	insertSQL := `
		INSERT INTO appointments (id, student_id, student_number, student_name, coordinator_id, coordinator_name,
			purpose, requested_date, requested_time, status, suggested_date, suggested_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + requestColumns

	created, err := scanRequest(r.pool.QueryRow(ctx, insertSQL,
		uuid.NewString(),
		req.StudentID,
		req.StudentNumber,
		req.StudentName,
		req.CoordinatorID,
		req.CoordinatorName,
		req.Purpose,
		req.Date,
		req.Time,
		req.Status,
		req.SuggestedDate,
		req.SuggestedTime,
	))
	if err != nil {
		return Request{}, fmt.Errorf("appointment: create: %w", err)
	}

	return created, nil
}

// Get fetches a request by its primary key.
func (r *PGRepository) Get(ctx context.Context, id string) (Request, error) {
	selectSQL := `SELECT ` + requestColumns + ` FROM appointments WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("appointment: get: %w", err)
	}

	return req, nil
}

// ListForCoordinator returns every request assigned to the coordinator in
// creation order. The dashboard cache replaces its contents with this result
// on every change notification.
func (r *PGRepository) ListForCoordinator(ctx context.Context, coordinatorID string) ([]Request, error) {
	selectSQL := `SELECT ` + requestColumns + ` FROM appointments WHERE coordinator_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, selectSQL, coordinatorID)
}

// ListForStudent returns the student's own requests, newest first.
func (r *PGRepository) ListForStudent(ctx context.Context, studentID string) ([]Request, error) {
	selectSQL := `SELECT ` + requestColumns + ` FROM appointments WHERE student_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, selectSQL, studentID)
}

func (r *PGRepository) list(ctx context.Context, query, arg string) ([]Request, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("appointment: list: %w", err)
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("appointment: scan: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointment: iterate: %w", err)
	}

	return out, nil
}

// UpdateStatus moves a request to the next status, validating the transition
// under a row lock. Suggestion fields are stored only when moving to Rejected
// and cleared otherwise.
func (r *PGRepository) UpdateStatus(ctx context.Context, id string, next Status, suggestedDate, suggestedTime string) (Request, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("appointment: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Status
	if err := tx.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("appointment: lock row: %w", err)
	}

	if !CanTransition(current, next) {
		return Request{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	if next != StatusRejected {
		suggestedDate, suggestedTime = "", ""
	}

	updateSQL := `
		UPDATE appointments
		SET status = $2, suggested_date = $3, suggested_time = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + requestColumns

	updated, err := scanRequest(tx.QueryRow(ctx, updateSQL, id, next, suggestedDate, suggestedTime))
	if err != nil {
		return Request{}, fmt.Errorf("appointment: update status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("appointment: commit status update: %w", err)
	}

	return updated, nil
}

// Delete removes a request permanently.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointment: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPartySnapshot reads the profile fields denormalized onto new requests.
func (r *PGRepository) GetPartySnapshot(ctx context.Context, profileID string) (PartySnapshot, error) {
	const selectSQL = `SELECT id, role, name, student_number FROM users WHERE id = $1`

	var snap PartySnapshot
	err := r.pool.QueryRow(ctx, selectSQL, profileID).Scan(&snap.ID, &snap.Role, &snap.Name, &snap.StudentNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PartySnapshot{}, ErrNotFound
		}
		return PartySnapshot{}, fmt.Errorf("appointment: party snapshot: %w", err)
	}

	return snap, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.StudentNumber,
		&req.StudentName,
		&req.CoordinatorID,
		&req.CoordinatorName,
		&req.Purpose,
		&req.Date,
		&req.Time,
		&req.Status,
		&req.SuggestedDate,
		&req.SuggestedTime,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}
