package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *stubTx) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }
func (t *stubTx) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (t *stubTx) QueryRow(context.Context, string, ...any) Row        { return nil }

func (t *stubTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

func (t *stubTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

type stubDB struct {
	tx       *stubTx
	beginErr error
}

func (d *stubDB) Ping(context.Context) error                          { return nil }
func (d *stubDB) Close() error                                        { return nil }
func (d *stubDB) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }
func (d *stubDB) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (d *stubDB) QueryRow(context.Context, string, ...any) Row        { return nil }
func (d *stubDB) SQLDB() *sql.DB                                      { return nil }
func (d *stubDB) Begin(context.Context) (Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

func TestWithTx_Commits(t *testing.T) {
	db := &stubDB{tx: &stubTx{}}

	require.NoError(t, WithTx(context.Background(), db, func(tx Tx) error { return nil }))
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func TestWithTx_RollsBackAndKeepsSentinel(t *testing.T) {
	sentinel := errors.New("busy")
	db := &stubDB{tx: &stubTx{}}

	err := WithTx(context.Background(), db, func(tx Tx) error { return sentinel })
	assert.Same(t, sentinel, err)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestWithTx_CommitFailure(t *testing.T) {
	db := &stubDB{tx: &stubTx{commitErr: errors.New("conn reset")}}

	err := WithTx(context.Background(), db, func(tx Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
	assert.True(t, db.tx.rolledBack)
}

func TestWithTx_BeginFailureAndNilDB(t *testing.T) {
	err := WithTx(context.Background(), &stubDB{beginErr: errors.New("pool closed")}, func(tx Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "begin tx")

	assert.ErrorIs(t, WithTx(context.Background(), nil, func(Tx) error { return nil }), ErrNilDB)
}
