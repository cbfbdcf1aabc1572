package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle behind the event, run and question
// repositories.
type Store struct {
	db  *sql.DB
	seq *sequence
}

// Open connects to the database at dsn, configures it and creates any
// missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection and ":memory:"-style DSNs are per
	// connection too, so keep a single one.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, step := range []struct {
		name string
		run  func(context.Context, *sql.DB) error
	}{
		{"apply pragmas", applyPragmas},
		{"migrate", migrate},
		{"seed sequence", seedSequence},
	} {
		if err := step.run(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return &Store{db: db, seq: &sequence{}}, nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// EventRepo returns the SQLite-backed LLM event log.
func (s *Store) EventRepo() LLMEventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// RunRepo returns the SQLite-backed run and question archive.
func (s *Store) RunRepo() RunRepo {
	return &runRepo{db: s.db, seq: s.seq}
}

var pragmas = []string{
	"journal_mode = WAL",
	"busy_timeout = 5000",
	"foreign_keys = ON",
	"synchronous = NORMAL",
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return fmt.Errorf("PRAGMA %s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath returns $QGEN_DB, else $XDG_DATA_HOME/qgen/qgen.db, else
// ~/.local/share/qgen/qgen.db. The parent directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("QGEN_DB")
	if p == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(base, "qgen", "qgen.db")
	}
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
