package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/stackarea/internal/core"
)

// Store keeps one chart document in a SQLite database.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("source: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("source: opening DB: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS metrics (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS palette (
			position INTEGER PRIMARY KEY,
			colors TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			metric INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			ts TEXT NOT NULL,
			value REAL NOT NULL,
			formatted TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (metric, seq),
			FOREIGN KEY(metric) REFERENCES metrics(position) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(ts);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			seq INTEGER PRIMARY KEY,
			ts TEXT NOT NULL,
			events TEXT NOT NULL DEFAULT '[]',
			formatted TEXT NOT NULL DEFAULT ''
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("source: init schema: %w", err)
		}
	}
	return nil
}

func formatTS(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("source: parse stored timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// Save replaces the stored document with doc in a single transaction.
func (s *Store) Save(ctx context.Context, doc Document) (err error) {
	if err := doc.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("source: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"samples", "snapshots", "palette", "metrics"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("source: clear %s: %w", table, err)
		}
	}

	for i, name := range doc.Metrics {
		if _, err = tx.ExecContext(ctx, `INSERT INTO metrics (position, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("source: insert metric %q: %w", name, err)
		}
	}
	for i, entry := range doc.Colors {
		colors, mErr := json.Marshal(entry)
		if mErr != nil {
			return fmt.Errorf("source: encode palette entry %d: %w", i, mErr)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO palette (position, colors) VALUES (?, ?)`, i, string(colors)); err != nil {
			return fmt.Errorf("source: insert palette entry %d: %w", i, err)
		}
	}

	sampleStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (metric, seq, ts, value, formatted) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("source: prepare samples: %w", err)
	}
	defer sampleStmt.Close()
	for m, row := range doc.Series {
		for i, p := range row {
			if _, err = sampleStmt.ExecContext(ctx, m, i, formatTS(p.X.Time), p.Y, p.FY); err != nil {
				return fmt.Errorf("source: insert sample %d/%d: %w", m, i, err)
			}
		}
	}

	for i, snap := range doc.Snapshots {
		events, mErr := json.Marshal(nonNil(snap.E))
		if mErr != nil {
			return fmt.Errorf("source: encode events %d: %w", i, mErr)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (seq, ts, events, formatted) VALUES (?, ?, ?, ?)`,
			i, formatTS(snap.D.Time), string(events), snap.FY); err != nil {
			return fmt.Errorf("source: insert snapshot %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("source: commit: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Load reads the stored document back in its original order.
func (s *Store) Load(ctx context.Context) (Document, error) {
	var doc Document

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM metrics ORDER BY position`)
	if err != nil {
		return Document{}, fmt.Errorf("source: query metrics: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return Document{}, fmt.Errorf("source: scan metric: %w", err)
		}
		doc.Metrics = append(doc.Metrics, name)
	}
	if err := closeRows(rows); err != nil {
		return Document{}, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT colors FROM palette ORDER BY position`)
	if err != nil {
		return Document{}, fmt.Errorf("source: query palette: %w", err)
	}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return Document{}, fmt.Errorf("source: scan palette: %w", err)
		}
		var entry core.ColorEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			rows.Close()
			return Document{}, fmt.Errorf("source: decode palette entry: %w", err)
		}
		doc.Colors = append(doc.Colors, entry)
	}
	if err := closeRows(rows); err != nil {
		return Document{}, err
	}

	doc.Series = make([][]Point, len(doc.Metrics))
	rows, err = s.db.QueryContext(ctx, `SELECT metric, ts, value, formatted FROM samples ORDER BY metric, seq`)
	if err != nil {
		return Document{}, fmt.Errorf("source: query samples: %w", err)
	}
	for rows.Next() {
		var (
			metric    int
			ts        string
			value     float64
			formatted string
		)
		if err := rows.Scan(&metric, &ts, &value, &formatted); err != nil {
			rows.Close()
			return Document{}, fmt.Errorf("source: scan sample: %w", err)
		}
		if metric < 0 || metric >= len(doc.Series) {
			rows.Close()
			return Document{}, fmt.Errorf("%w: sample for unknown metric %d", ErrShape, metric)
		}
		x, err := parseTS(ts)
		if err != nil {
			rows.Close()
			return Document{}, err
		}
		doc.Series[metric] = append(doc.Series[metric], Point{X: At(x), Y: value, FY: formatted})
	}
	if err := closeRows(rows); err != nil {
		return Document{}, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT ts, events, formatted FROM snapshots ORDER BY seq`)
	if err != nil {
		return Document{}, fmt.Errorf("source: query snapshots: %w", err)
	}
	for rows.Next() {
		var ts, events, formatted string
		if err := rows.Scan(&ts, &events, &formatted); err != nil {
			rows.Close()
			return Document{}, fmt.Errorf("source: scan snapshot: %w", err)
		}
		d, err := parseTS(ts)
		if err != nil {
			rows.Close()
			return Document{}, err
		}
		var e []string
		if err := json.Unmarshal([]byte(events), &e); err != nil {
			rows.Close()
			return Document{}, fmt.Errorf("source: decode events: %w", err)
		}
		doc.Snapshots = append(doc.Snapshots, Snapshot{D: At(d), E: e, FY: formatted})
	}
	if err := closeRows(rows); err != nil {
		return Document{}, err
	}

	return doc, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("source: iterate rows: %w", err)
	}
	return rows.Close()
}

// LoadSQLite opens the database at path and reads its document.
func LoadSQLite(ctx context.Context, path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return Document{}, fmt.Errorf("source: %w", err)
	}
	store, err := OpenStore(path)
	if err != nil {
		return Document{}, err
	}
	defer store.Close()
	return store.Load(ctx)
}

// SaveSQLite writes doc to the database at path, creating it if needed.
func SaveSQLite(ctx context.Context, path string, doc Document) error {
	store, err := OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, doc)
}
