package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

// All returns the invariant queries. Each must return zero rows on a healthy
// database; any row is a counterexample.
func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_status_enum",
			SQL: `SELECT id, status FROM appointments
                  WHERE status NOT IN ('Pending','Approved','Rejected','Withdrawn')`,
		},
		{
			Name: "O2_suggestion_iff_rejected",
			SQL: `SELECT id, status, suggested_date, suggested_time FROM appointments
                  WHERE (status = 'Rejected') <> (suggested_date <> '' AND suggested_time <> '')`,
		},
		{
			Name: "O3_party_roles",
			SQL: `SELECT a.id FROM appointments a
                  JOIN users s ON s.id = a.student_id
                  JOIN users c ON c.id = a.coordinator_id
                  WHERE s.role <> 'student' OR c.role <> 'coordinator'`,
		},
		{
			Name: "O4_snapshots_present",
			SQL: `SELECT id FROM appointments
                  WHERE student_name = '' OR coordinator_name = ''`,
		},
		{
			Name: "O5_timestamps_ordered",
			SQL:  `SELECT id FROM appointments WHERE updated_at < created_at`,
		},
		{
			Name: "O6_decided_unrevisited",
			SQL: `SELECT id, status FROM appointments
                  WHERE status <> 'Pending' AND updated_at = created_at
                    AND now() - created_at > interval '5 seconds'`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and a sample
// row) or an empty name when every invariant holds.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
