package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"
)

// MemoryPath keeps the index in process memory only.
const MemoryPath = ":memory:"

// SQLiteRepo implements CityRepo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies PRAGMAs, runs SQL migrations, and returns a repository.
// Pass MemoryPath for a process-lifetime index.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	inMemory := path == "" || path == MemoryPath
	if inMemory {
		path = MemoryPath
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single connection: SQLite is a single-writer engine, and an in-memory
	// database lives exactly as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db, inMemory); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, inMemory bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	if !inMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// ReplaceCities swaps the whole index for the given rows in one transaction.
// Row order in the slice becomes the lookup order.
func (r *SQLiteRepo) ReplaceCities(ctx context.Context, cities []City) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cities`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cities (seq, name, name_lc, lat, lon, population)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range cities {
		// SQLite's lower() folds ASCII only, so Cyrillic is folded here.
		if _, err := stmt.ExecContext(ctx,
			i, c.Name, strings.ToLower(c.Name), c.Lat, c.Lon, toNullInt64(c.Population),
		); err != nil {
			return fmt.Errorf("insert %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// FindFirst returns the first city, in dataset order, whose name contains
// query case-insensitively.
func (r *SQLiteRepo) FindFirst(ctx context.Context, query string) (*City, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrNoCity
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT seq, name, lat, lon, population
		FROM cities
		WHERE instr(name_lc, ?) > 0
		ORDER BY seq ASC
		LIMIT 1`,
		q,
	)

	var (
		c   City
		pop sql.NullInt64
	)
	if err := row.Scan(&c.Seq, &c.Name, &c.Lat, &c.Lon, &pop); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCity
		}
		return nil, err
	}
	c.Population = fromNullInt64(pop)
	return &c, nil
}

// CountCities returns the number of indexed rows.
func (r *SQLiteRepo) CountCities(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cities`).Scan(&n)
	return n, err
}
