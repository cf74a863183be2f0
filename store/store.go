// Package store keeps a history of completed latency runs in SQLite so they
// can be listed and re-rendered without measuring again.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"c2clat/matrix"
	"c2clat/measure"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
)

//go:embed schema.sql
var schemaSQL string

var (
	ErrNotFound  = errors.New("run not found")
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

// Run is one stored measurement.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Host        string
	Arch        string
	Fingerprint string
	LineSize    int
	Params      measure.Params
	Result      *matrix.Result
}

// Summary is the listing view of a run.
type Summary struct {
	ID          string
	CreatedAt   time.Time
	Host        string
	Fingerprint string
	Cores       int
	Samples     int
	Repetitions int
}

// Store wraps the run database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	if path == ":memory:" {
		dsn = ":memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes run and returns its id. An empty ID gets a fresh UUID and a
// zero CreatedAt gets the current time.
func (s *Store) Save(run *Run) (string, error) {
	if run == nil || run.Result == nil || run.Result.Min == nil || run.Result.Avg == nil {
		return "", errors.New("save: incomplete run")
	}
	res := run.Result
	if err := matrix.Verify(res.Min, res.Avg); err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	if res.Min.Len() != len(res.Cores) {
		return "", fmt.Errorf("save: %d cores but %dx%d matrix", len(res.Cores), res.Min.Len(), res.Min.Len())
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	cores, err := sonnet.Marshal(res.Cores)
	if err != nil {
		return "", fmt.Errorf("save: encode cores: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, host, arch, fingerprint, line_size, samples, repetitions, warmup, cores)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Host, run.Arch, run.Fingerprint, run.LineSize,
		run.Params.Samples, run.Params.Repetitions, run.Params.Warmup, string(cores),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO pairs (run_id, row_idx, col_idx, min_ns, avg_ns) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("save pairs: %w", err)
	}
	defer stmt.Close()

	n := res.Min.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if _, err := stmt.Exec(run.ID, i, j, res.Min.At(i, j), res.Avg.At(i, j)); err != nil {
				return "", fmt.Errorf("save pair %d/%d: %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	return run.ID, nil
}

// Load returns the run whose id is, or starts with, prefix.
func (s *Store) Load(prefix string) (*Run, error) {
	id, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	run := &Run{ID: id}
	var created int64
	var cores string
	err = s.db.QueryRow(
		`SELECT created_at, host, arch, fingerprint, line_size, samples, repetitions, warmup, cores
		 FROM runs WHERE id = ?`, id,
	).Scan(&created, &run.Host, &run.Arch, &run.Fingerprint, &run.LineSize,
		&run.Params.Samples, &run.Params.Repetitions, &run.Params.Warmup, &cores)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()

	res := &matrix.Result{}
	if err := sonnet.Unmarshal([]byte(cores), &res.Cores); err != nil {
		return nil, fmt.Errorf("load run %s: decode cores: %w", id, err)
	}
	res.Min = matrix.New(len(res.Cores))
	res.Avg = matrix.New(len(res.Cores))

	rows, err := s.db.Query(`SELECT row_idx, col_idx, min_ns, avg_ns FROM pairs WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load pairs %s: %w", id, err)
	}
	defer rows.Close()

	want := matrix.Pairs(len(res.Cores))
	got := 0
	for rows.Next() {
		var i, j int
		var lo, avg int64
		if err := rows.Scan(&i, &j, &lo, &avg); err != nil {
			return nil, fmt.Errorf("load pairs %s: %w", id, err)
		}
		if i < 0 || j <= i || j >= len(res.Cores) {
			return nil, fmt.Errorf("load pairs %s: bad cell %d/%d", id, i, j)
		}
		res.Min.SetPair(i, j, lo)
		res.Avg.SetPair(i, j, avg)
		got++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load pairs %s: %w", id, err)
	}
	if got != want {
		return nil, fmt.Errorf("load pairs %s: %d of %d pairs stored", id, got, want)
	}

	if err := matrix.Verify(res.Min, res.Avg); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	run.Result = res
	return run, nil
}

func (s *Store) resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}
	rows, err := s.db.Query(`SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("find run %s: %w", prefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("find run %s: %w", prefix, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("find run %s: %w", prefix, err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
}

// List returns up to limit runs, newest first. limit <= 0 lists everything.
func (s *Store) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, host, fingerprint, cores, samples, repetitions
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created int64
		var cores string
		if err := rows.Scan(&sum.ID, &created, &sum.Host, &sum.Fingerprint, &cores, &sum.Samples, &sum.Repetitions); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		var ids []int
		if err := sonnet.Unmarshal([]byte(cores), &ids); err != nil {
			return nil, fmt.Errorf("list runs: decode cores of %s: %w", sum.ID, err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		sum.Cores = len(ids)
		out = append(out, sum)
	}
	return out, rows.Err()
}
