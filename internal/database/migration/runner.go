package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"hire/internal/database"

	"go.uber.org/zap"
)

// lockKey serializes concurrent runners across service instances.
const lockKey int64 = 746295114

var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// Runner applies V<version>__<name>.sql files in version order. Applied
// versions are recorded with a checksum; editing an applied file is an error.
type Runner struct {
	Dir    string
	FS     fs.FS
	Logger *zap.Logger
}

func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	src, err := r.source()
	if err != nil {
		return err
	}
	migs, err := Load(src)
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		log.Warn("no migrations found", zap.String("dir", r.Dir))
		return nil
	}

	// session-level advisory locks belong to one connection, so the whole run
	// stays on the same one
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	if _, err := conn.ExecContext(ctx, createSchemaMigrations); err != nil {
		return err
	}

	applied, err := appliedChecksums(ctx, conn)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range migs {
		sum, done := applied[m.Version]
		if done {
			if sum != m.Checksum {
				return fmt.Errorf("%w: V%d %s", ErrChecksumMismatch, m.Version, m.Name)
			}
			continue
		}
		if err := apply(ctx, conn, m); err != nil {
			return err
		}
		pending++
		log.Info("migration applied", zap.Int64("version", m.Version), zap.String("name", m.Name))
	}

	log.Info("schema up to date", zap.Int("known", len(migs)), zap.Int("applied", pending))
	return nil
}

func (r Runner) source() (fs.FS, error) {
	if r.FS != nil {
		return r.FS, nil
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		dir = "migrations"
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			exe, err := os.Executable()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(filepath.Dir(exe), "migrations")
		}
	}
	return os.DirFS(dir), nil
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

// Load reads the migration files at the root of src. A missing directory
// yields no migrations.
func Load(src fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var migs []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m, ok, err := parse(src, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			migs = append(migs, m)
		}
	}

	slices.SortFunc(migs, func(a, b Migration) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s",
				migs[i].Version, migs[i-1].Filename, migs[i].Filename)
		}
	}
	return migs, nil
}

func parse(src fs.FS, name string) (Migration, bool, error) {
	match := fileRe.FindStringSubmatch(name)
	if match == nil {
		return Migration{}, false, nil
	}
	version, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return Migration{}, false, fmt.Errorf("bad migration version in %s: %w", name, err)
	}

	b, err := fs.ReadFile(src, path.Clean(name))
	if err != nil {
		return Migration{}, false, err
	}
	body := strings.TrimSpace(string(b))
	if body == "" {
		return Migration{}, false, fmt.Errorf("empty migration file: %s", name)
	}

	sum := sha256.Sum256([]byte(body))
	return Migration{
		Version:  version,
		Name:     match[2],
		Filename: name,
		SQL:      body,
		Checksum: hex.EncodeToString(sum[:]),
	}, true, nil
}

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func appliedChecksums(ctx context.Context, conn *sql.Conn) (map[int64]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var (
			version  int64
			checksum string
		)
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		out[version] = checksum
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return fmt.Errorf("record %s: %w", m.Filename, err)
	}
	return tx.Commit()
}
