package featurestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/faceon/internal/features"
	"github.com/banshee-data/faceon/internal/monitoring"
	"github.com/banshee-data/faceon/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrNoRuns is returned when loading from a database with no gather runs.
	ErrNoRuns = errors.New("featurestore: no gather runs recorded")
	// ErrRunsUnsupported is returned when a run is requested from a non-database store.
	ErrRunsUnsupported = errors.New("featurestore: gather runs need a .db store")
)

// RunInfo describes one stored gather run.
type RunInfo struct {
	RunID       string
	Source      string
	SampleCount int
	CreatedAt   time.Time
}

// SQLiteStore persists gather runs in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending schema migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	s := &SQLiteStore{db: db, clock: timeutil.RealClock{}}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock that stamps new gather runs.
func (s *SQLiteStore) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it would close the shared database handle.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (s *SQLiteStore) SchemaVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *SQLiteStore) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger interface
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// SaveStore records st as a new gather run and returns its id.
func (s *SQLiteStore) SaveStore(ctx context.Context, st *Store, source string) (string, error) {
	if err := st.Validate(); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gather_runs (run_id, source, sample_count, created_at) VALUES (?, ?, ?, ?)`,
		runID, source, st.Len(), s.clock.Now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("failed to insert gather run: %w", err)
	}

	sampleStmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (run_id, position, file_name) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer sampleStmt.Close()
	for i, name := range st.FileNames {
		if _, err := sampleStmt.ExecContext(ctx, runID, i, name); err != nil {
			return "", fmt.Errorf("failed to insert sample %s: %w", name, err)
		}
	}

	valueStmt, err := tx.PrepareContext(ctx, `INSERT INTO feature_values (run_id, feature, position, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare value insert: %w", err)
	}
	defer valueStmt.Close()
	for _, name := range st.FeatureNames() {
		for i, v := range st.Values[name] {
			if _, err := valueStmt.ExecContext(ctx, runID, name, i, v); err != nil {
				return "", fmt.Errorf("failed to insert %s[%d]: %w", name, i, err)
			}
		}
	}

	colorStmt, err := tx.PrepareContext(ctx, `INSERT INTO color_values (run_id, feature, position, r, g, b) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare colour insert: %w", err)
	}
	defer colorStmt.Close()
	for name, colors := range st.Colors {
		for i, c := range colors {
			if _, err := colorStmt.ExecContext(ctx, runID, name, i, c[0], c[1], c[2]); err != nil {
				return "", fmt.Errorf("failed to insert %s[%d]: %w", name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit gather run: %w", err)
	}
	monitoring.Logf("[featurestore] saved run %s: %d samples from %s", runID, st.Len(), source)
	return runID, nil
}

// Runs lists gather runs, newest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, sample_count, created_at FROM gather_runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query gather runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var createdAt int64
		if err := rows.Scan(&r.RunID, &r.Source, &r.SampleCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan gather run: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadStore reads the run with the given id, or the newest run when runID
// is empty.
func (s *SQLiteStore) LoadStore(ctx context.Context, runID string) (*Store, error) {
	if runID == "" {
		runs, err := s.Runs(ctx)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, ErrNoRuns
		}
		runID = runs[0].RunID
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT sample_count FROM gather_runs WHERE run_id = ?`, runID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gather run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read gather run %s: %w", runID, err)
	}

	st := New()
	st.FileNames = make([]string, count)

	rows, err := s.db.QueryContext(ctx, `SELECT position, file_name FROM samples WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	for rows.Next() {
		var pos int
		var name string
		if err := rows.Scan(&pos, &name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if pos < 0 || pos >= count {
			rows.Close()
			return nil, fmt.Errorf("sample position %d outside run of %d", pos, count)
		}
		st.FileNames[pos] = name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT feature, position, value FROM feature_values WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature values: %w", err)
	}
	for rows.Next() {
		var name string
		var pos int
		var v float64
		if err := rows.Scan(&name, &pos, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan feature value: %w", err)
		}
		col, ok := st.Values[name]
		if !ok {
			col = make([]float64, count)
			st.Values[name] = col
		}
		if pos < 0 || pos >= count {
			rows.Close()
			return nil, fmt.Errorf("%s position %d outside run of %d", name, pos, count)
		}
		col[pos] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT feature, position, r, g, b FROM color_values WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query colour values: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var pos int
		var c features.Color
		if err := rows.Scan(&name, &pos, &c[0], &c[1], &c[2]); err != nil {
			return nil, fmt.Errorf("failed to scan colour value: %w", err)
		}
		col, ok := st.Colors[name]
		if !ok {
			col = make([]features.Color, count)
			st.Colors[name] = col
		}
		if pos < 0 || pos >= count {
			return nil, fmt.Errorf("%s position %d outside run of %d", name, pos, count)
		}
		col[pos] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return st, nil
}
