package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/database/dbtest"
	"github.com/MrJamesThe3rd/tesouraria/internal/discount"
	"github.com/MrJamesThe3rd/tesouraria/internal/discount/store"
	"github.com/MrJamesThe3rd/tesouraria/internal/money"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

func TestStore_FindActive_LatestGrantWins(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.New(t))

	base := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)

	older := &discount.Grant{
		ID: uuid.New(), StudentID: "s1", Percent: money.MustPercent("10"),
		Reason: "irmãos", GrantedBy: "secretaria",
		From: period.MustParse("2025-01"), To: period.MustParse("2025-12"),
		CreatedAt: base,
	}
	newer := &discount.Grant{
		ID: uuid.New(), StudentID: "s1", Percent: money.MustPercent("50"),
		Reason: "bolsa", GrantedBy: "direcao",
		From: period.MustParse("2025-03"), To: period.MustParse("2025-04"),
		CreatedAt: base.Add(time.Hour),
	}

	require.NoError(t, s.CreateGrant(ctx, older))
	require.NoError(t, s.CreateGrant(ctx, newer))

	got, err := s.FindActive(ctx, "s1", period.MustParse("2025-03"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
	assert.True(t, got.Percent.Equal(money.MustPercent("50")))

	got, err = s.FindActive(ctx, "s1", period.MustParse("2025-05"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, older.ID, got.ID)

	got, err = s.FindActive(ctx, "s1", period.MustParse("2026-01"))
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := s.ListGrants(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, older.ID, all[0].ID)

	none, err := s.ListGrants(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, none)
}
