package actors

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nithinshettyy/appointment-system/appointment"
	"github.com/nithinshettyy/appointment-system/dashboard"
)

// Requester files new pending requests from the student to the coordinator,
// carrying the denormalized party snapshots the way the service does.
func Requester(ctx context.Context, pool *pgxpool.Pool, studentID, coordinatorID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, err := pool.Exec(ctx, `INSERT INTO appointments
            (student_id, student_number, student_name, coordinator_id, coordinator_name, purpose, requested_date, requested_time)
            VALUES ($1, '1MS21CS042', 'Stress Student', $2, 'Stress Coordinator', $3, '2030-01-15', '10:30')`,
			studentID, coordinatorID, fmt.Sprintf("purpose %d", rand.Int63()))
		if err != nil {
			return fmt.Errorf("requester insert: %w", err)
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Approver races to flip pending requests to Approved. The FOR UPDATE guard
// mirrors the repository, so two deciders can never both win the same row.
func Approver(ctx context.Context, pool *pgxpool.Pool, coordinatorID string, stop <-chan struct{}) error {
	return decide(ctx, pool, coordinatorID, stop,
		`UPDATE appointments SET status='Approved', suggested_date='', suggested_time='', updated_at=now() WHERE id=$1`)
}

// Rejecter races to flip pending requests to Rejected with a suggested slot.
func Rejecter(ctx context.Context, pool *pgxpool.Pool, coordinatorID string, stop <-chan struct{}) error {
	return decide(ctx, pool, coordinatorID, stop,
		`UPDATE appointments SET status='Rejected', suggested_date='2030-02-01', suggested_time='14:00', updated_at=now() WHERE id=$1`)
}

func decide(ctx context.Context, pool *pgxpool.Pool, coordinatorID string, stop <-chan struct{}, updateSQL string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		var id string
		err = tx.QueryRow(ctx, `SELECT id FROM appointments
            WHERE coordinator_id=$1 AND status='Pending'
            ORDER BY created_at LIMIT 1 FOR UPDATE SKIP LOCKED`, coordinatorID).Scan(&id)
		if err == nil {
			if _, err := tx.Exec(ctx, updateSQL, id); err == nil {
				_ = tx.Commit(ctx)
			} else {
				_ = tx.Rollback(ctx)
			}
		} else {
			_ = tx.Rollback(ctx)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Withdrawer pulls back the student's own pending requests. The status guard
// in the WHERE clause keeps decided requests untouched under contention.
func Withdrawer(ctx context.Context, pool *pgxpool.Pool, studentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, _ = pool.Exec(ctx, `UPDATE appointments SET status='Withdrawn', updated_at=now()
            WHERE id IN (
                SELECT id FROM appointments WHERE student_id=$1 AND status='Pending'
                ORDER BY random() LIMIT 1 FOR UPDATE SKIP LOCKED
            )`, studentID)
		time.Sleep(time.Duration(30+rand.Intn(50)) * time.Millisecond)
	}
}

// Deleter removes a random decided request belonging to the student.
func Deleter(ctx context.Context, pool *pgxpool.Pool, studentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, _ = pool.Exec(ctx, `DELETE FROM appointments
            WHERE id IN (
                SELECT id FROM appointments WHERE student_id=$1 AND status <> 'Pending'
                ORDER BY random() LIMIT 1 FOR UPDATE SKIP LOCKED
            )`, studentID)
		time.Sleep(200 * time.Millisecond)
	}
}

// ViewReader rebuilds the coordinator dashboard view from a fresh query on
// every pass, exercising the read path concurrently with the writers.
func ViewReader(ctx context.Context, pool *pgxpool.Pool, coordinatorID string, stop <-chan struct{}) error {
	repo := appointment.NewRepository(pool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		records, err := repo.ListForCoordinator(ctx, coordinatorID)
		if err == nil {
			view := dashboard.BuildView(records, dashboard.Query{Status: dashboard.FilterAll})
			total := view.Counts.Pending + view.Counts.Approved + view.Counts.Rejected + view.Counts.Withdrawn
			if total != len(records) {
				return fmt.Errorf("view counts diverged: %d counted, %d records", total, len(records))
			}
		}
		time.Sleep(time.Duration(40+rand.Intn(60)) * time.Millisecond)
	}
}
