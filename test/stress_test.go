package test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nithinshettyy/appointment-system/appointment"
	"github.com/nithinshettyy/appointment-system/test/actors"
	"github.com/nithinshettyy/appointment-system/test/chaos"
	"github.com/nithinshettyy/appointment-system/test/infra"
	"github.com/nithinshettyy/appointment-system/test/oracles"
)

var (
	flDuration    = flag.Duration("duration", 60*time.Second, "how long to run stress")
	flConcurrency = flag.Int("concurrency", 6, "number of concurrent requester/decider pairs")
	flSeed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
)

func TestAppointmentConcurrency(t *testing.T) {
	flag.Parse()
	seed := *flSeed
	rand.Seed(seed)

	ctx, cancel := context.WithTimeout(context.Background(), *flDuration+60*time.Second)
	defer cancel()

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)
	switch {
	case *flDSN != "":
		dsn = *flDSN
		usedShared = true
		pgC = &infra.PGContainer{}
	case os.Getenv("APPT_TEST_PG_DSN") != "":
		dsn = os.Getenv("APPT_TEST_PG_DSN")
		usedShared = true
		pgC = &infra.PGContainer{}
	default:
		if !dockerAvailable(ctx) {
			t.Skip("no Docker and no APPT_TEST_PG_DSN; skipping stress run")
		}
		pgC, dsn, err = infra.StartPostgres16(ctx, "")
		if err != nil {
			t.Fatalf("start postgres: %v", err)
		}
	}
	defer pgC.Terminate(context.Background())

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	defer pool.Close()
	defer func() {
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	}()

	studentID, coordinatorID := mustSeed(t, ctx, pool)

	// count change notifications while the writers churn; the chaos actor may
	// kill the listener connection, which must surface as onError, not a hang
	var notified, listenerErrs atomic.Int64
	watcher := appointment.NewWatcher(pool, log.New(io.Discard, "", 0))
	sub, err := watcher.Subscribe(ctx,
		func(ev appointment.Event) {
			if ev.CoordinatorID == coordinatorID {
				notified.Add(1)
			}
		},
		func(error) { listenerErrs.Add(1) },
	)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	g, ctx2 := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	for i := 0; i < *flConcurrency; i++ {
		g.Go(func() error { return actors.Requester(ctx2, pool, studentID, coordinatorID, stop) })
		g.Go(func() error { return actors.Approver(ctx2, pool, coordinatorID, stop) })
		g.Go(func() error { return actors.Rejecter(ctx2, pool, coordinatorID, stop) })
	}
	g.Go(func() error { return actors.Withdrawer(ctx2, pool, studentID, stop) })
	g.Go(func() error { return actors.Deleter(ctx2, pool, studentID, stop) })
	g.Go(func() error { return actors.ViewReader(ctx2, pool, coordinatorID, stop) })
	go chaos.TerminateRandomBackend(ctx2, pool, stop)

	deadline := time.Now().Add(*flDuration)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var failed bool
loop:
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			name, row, err := oracles.Run(ctx2, pool)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					break loop
				}
				t.Fatalf("oracle error: %v", err)
			}
			if name != "" {
				failed = true
				t.Fatalf("Oracle %s failed. First row: %s (seed=%d)", name, row, seed)
			}
		}
	}

	close(stop)
	if err := g.Wait(); err != nil && !failed {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("actors errored: %v", err)
		}
	}

	if notified.Load() == 0 && listenerErrs.Load() == 0 {
		t.Fatal("expected change notifications or a listener failure, saw neither")
	}
	t.Logf("notifications=%d listenerErrs=%d seed=%d", notified.Load(), listenerErrs.Load(), seed)
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}

func mustSeed(t *testing.T, ctx context.Context, pool *pgxpool.Pool) (string, string) {
	t.Helper()

	var studentID, coordinatorID string
	err := pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, role, name, student_number)
        VALUES ($1, 'x', 'student', 'Stress Student', '1MS21CS042') RETURNING id`,
		uniqueEmail("student")).Scan(&studentID)
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}

	err = pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, role, name, department)
        VALUES ($1, 'x', 'coordinator', 'Stress Coordinator', 'CSE') RETURNING id`,
		uniqueEmail("coordinator")).Scan(&coordinatorID)
	if err != nil {
		t.Fatalf("seed coordinator: %v", err)
	}

	return studentID, coordinatorID
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, rand.Int63())
}
