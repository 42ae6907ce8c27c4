// Package record persists finalized run statistics to a SQLite database so
// repeated experiments can be compared with plain SQL.
package record

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/counter-sim/counter-sim/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	scenario         TEXT NOT NULL,
	run              INTEGER NOT NULL,
	seed             INTEGER NOT NULL,
	elapsed          REAL NOT NULL,
	avg_wait         REAL NOT NULL,
	avg_sojourn      REAL NOT NULL,
	max_wait         REAL NOT NULL,
	utilization      REAL NOT NULL,
	avg_queue_length REAL NOT NULL,
	max_queue_length INTEGER NOT NULL,
	prob_all_busy    REAL NOT NULL,
	prob_full        REAL,
	prob_empty_queue REAL NOT NULL,
	arrivals         INTEGER NOT NULL,
	completed        INTEGER NOT NULL,
	rejected         INTEGER NOT NULL,
	balked           INTEGER NOT NULL,
	evicted          INTEGER NOT NULL,
	in_system        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS periods (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	period           INTEGER NOT NULL,
	start_hour       REAL NOT NULL,
	end_hour         REAL NOT NULL,
	servers          INTEGER NOT NULL,
	avg_wait         REAL NOT NULL,
	avg_sojourn      REAL NOT NULL,
	utilization      REAL NOT NULL,
	avg_queue_length REAL NOT NULL,
	prob_all_busy    REAL NOT NULL,
	completed        INTEGER NOT NULL,
	PRIMARY KEY (run_id, period)
);`

// Recorder writes one row per run, plus one row per shift period, to SQLite.
type Recorder struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at path and ensures the
// tables exist.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating tables in %s: %w", path, err)
	}
	return &Recorder{db: db, path: path}, nil
}

// RecordRun stores res under a fresh run id and returns that id.
func (r *Recorder) RecordRun(scenario string, run int, seed int64, res *sim.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("record run %d: nil result", run)
	}
	id := xid.New().String()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("record run %d: %w", run, err)
	}
	defer func() { _ = tx.Rollback() }()

	var probFull any
	if res.CapacityBounded {
		probFull = res.ProbFull
	}
	_, err = tx.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, scenario, run, seed, res.Elapsed,
		res.AvgWaitingTime, res.AvgSojournTime, res.MaxWaitingTime, res.Utilization,
		res.AvgQueueLength, res.MaxQueueLength, res.ProbAllBusy, probFull, res.ProbEmptyQueue,
		res.Arrivals, res.Completed, res.Rejected, res.Balked, res.Evicted, res.InSystem)
	if err != nil {
		return "", fmt.Errorf("record run %d: %w", run, err)
	}

	for i, p := range res.Periods {
		_, err = tx.Exec(`INSERT INTO periods VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, p.Start, p.End, p.Servers,
			p.AvgWaitingTime, p.AvgSojournTime, p.Utilization, p.AvgQueueLength, p.ProbAllBusy, p.Completed)
		if err != nil {
			return "", fmt.Errorf("record run %d period %d: %w", run, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run %d: %w", run, err)
	}
	logrus.Debugf("recorded run %d of %q as %s in %s", run, scenario, id, r.path)
	return id, nil
}

// CountRuns returns how many runs of scenario are stored.
func (r *Recorder) CountRuns(scenario string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE scenario = ?`, scenario).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting runs of %q: %w", scenario, err)
	}
	return n, nil
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
