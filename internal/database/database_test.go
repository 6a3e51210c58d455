package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/database"
	"github.com/MrJamesThe3rd/tesouraria/internal/database/dbtest"
)

func TestMigrate_IsRepeatable(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, database.Migrate(db))

	var last int64
	require.NoError(t, db.Get(&last, `SELECT last_value FROM boleto_sequences WHERE name = 'nosso_numero'`))
	assert.Equal(t, int64(0), last)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE boleto_sequences SET last_value = 99`); err != nil {
			return err
		}

		return boom
	})
	assert.ErrorIs(t, err, boom)

	var last int64
	require.NoError(t, db.Get(&last, `SELECT last_value FROM boleto_sequences`))
	assert.Equal(t, int64(0), last)

	require.NoError(t, database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE boleto_sequences SET last_value = 7`)
		return err
	}))

	require.NoError(t, db.Get(&last, `SELECT last_value FROM boleto_sequences`))
	assert.Equal(t, int64(7), last)
}
