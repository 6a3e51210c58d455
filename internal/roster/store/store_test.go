package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tesouraria/internal/database/dbtest"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
	"github.com/MrJamesThe3rd/tesouraria/internal/roster/store"
)

func TestStore_Replace(t *testing.T) {
	ctx := context.Background()
	s := store.New(dbtest.New(t))
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Replace(ctx, []roster.Entry{
		{StudentID: "s2", ClassID: "3A", Active: true, UpdatedAt: now},
		{StudentID: "s1", ClassID: "3A", Active: true, UpdatedAt: now},
		{StudentID: "s3", ClassID: "3B", Active: false, UpdatedAt: now},
	}))

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "s1", active[0].StudentID)
	assert.Equal(t, "s2", active[1].StudentID)

	// s1 moves class, s2 leaves the feed.
	require.NoError(t, s.Replace(ctx, []roster.Entry{
		{StudentID: "s1", ClassID: "4A", Active: true, UpdatedAt: now},
	}))

	active, err = s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "4A", active[0].ClassID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
