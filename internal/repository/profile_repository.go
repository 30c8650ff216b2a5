package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hire/internal/database"
	"hire/internal/domain/profile"
	"hire/internal/domain/trait"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileBusy     = errors.New("profile graph is being updated")
	ErrCorruptGraph    = errors.New("stored graph does not decode")

	// ErrGraphUnchanged is returned by an UpdateGraph callback that left the
	// graph as loaded. The row is not rewritten and UpdateGraph succeeds.
	ErrGraphUnchanged = errors.New("graph unchanged")
)

// pgLockNotAvailable is returned by FOR UPDATE NOWAIT when another
// transaction holds the row.
const pgLockNotAvailable = "55P03"

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
	ListSearchable(ctx context.Context) ([]profile.Profile, error)
	SetSearchable(ctx context.Context, id uuid.UUID, searchable bool) error
	// UpdateGraph locks the profile row, hands the loaded profile to fn and
	// persists the graph fn leaves behind. A row already locked by another
	// writer yields ErrProfileBusy without waiting. When fn returns
	// ErrGraphUnchanged nothing is written and the loaded profile is returned.
	UpdateGraph(ctx context.Context, id uuid.UUID, fn func(p *profile.Profile) error) (profile.Profile, error)
}

type PostgresProfileRepository struct {
	db     database.DB
	logger *zap.Logger
}

func NewPostgresProfileRepository(db database.DB, logger *zap.Logger) *PostgresProfileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresProfileRepository{db: db, logger: logger}
}

const profileColumns = `id, COALESCE(name, ''), COALESCE(profession_name, ''), COALESCE(grade, ''), is_searchable, graph, updated_at`

func (r *PostgresProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM candidate_profiles WHERE id = $1`,
		id,
	)
	p, err := scanProfile(row)
	if err != nil {
		if isNoRows(err) {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) ListSearchable(ctx context.Context) ([]profile.Profile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+profileColumns+`
		 FROM candidate_profiles
		 WHERE is_searchable
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if errors.Is(err, ErrCorruptGraph) {
			// one unreadable graph must not take search down for everyone
			r.logger.Error("skipping searchable profile", zap.Stringer("profile_id", p.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) SetSearchable(ctx context.Context, id uuid.UUID, searchable bool) error {
	n, err := r.db.Exec(ctx,
		`UPDATE candidate_profiles SET is_searchable = $2, updated_at = now() WHERE id = $1`,
		id, searchable,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) UpdateGraph(ctx context.Context, id uuid.UUID, fn func(p *profile.Profile) error) (profile.Profile, error) {
	var out profile.Profile
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM candidate_profiles WHERE id = $1 FOR UPDATE NOWAIT`,
			id,
		)
		p, err := scanProfile(row)
		if err != nil {
			if isNoRows(err) {
				return ErrProfileNotFound
			}
			if isLockNotAvailable(err) {
				return ErrProfileBusy
			}
			return err
		}

		if err := fn(&p); err != nil {
			if errors.Is(err, ErrGraphUnchanged) {
				out = p
			}
			return err
		}

		b, err := json.Marshal(p.Graph)
		if err != nil {
			return fmt.Errorf("encode graph: %w", err)
		}

		row = tx.QueryRow(ctx,
			`UPDATE candidate_profiles SET graph = $2::jsonb, updated_at = now() WHERE id = $1 RETURNING updated_at`,
			id, b,
		)
		if err := row.Scan(&p.UpdatedAt); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil && !errors.Is(err, ErrGraphUnchanged) {
		return profile.Profile{}, err
	}
	return out, nil
}

func scanProfile(row database.Row) (profile.Profile, error) {
	var (
		p        profile.Profile
		rawGraph []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.ProfessionName, &p.Grade, &p.IsSearchable, &rawGraph, &p.UpdatedAt); err != nil {
		return profile.Profile{}, err
	}

	g, err := decodeGraph(rawGraph)
	if err != nil {
		return profile.Profile{ID: p.ID}, fmt.Errorf("%w: profile %s: %w", ErrCorruptGraph, p.ID, err)
	}
	p.Graph = g
	return p, nil
}

// decodeGraph reads a stored graph of either format; categories are migrated
// and dangling relations dropped on the way in.
func decodeGraph(raw []byte) (*trait.Graph, error) {
	g := trait.NewGraph()
	if len(raw) == 0 {
		return g, nil
	}
	if err := json.Unmarshal(raw, g); err != nil {
		return nil, err
	}
	return g, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgLockNotAvailable
	}
	return false
}
