package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTable(ctx, "holdem-table-1", "holdem", "Main Table"))

	row, err := s.GetTable(ctx, "holdem-table-1")
	require.NoError(t, err)
	assert.Equal(t, "holdem-table-1", row.ID)
	assert.Equal(t, "holdem", row.Game)
	assert.Equal(t, "Main Table", row.Name)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestCreateTableDuplicateFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTable(ctx, "holdem-table-1", "holdem", "first"))
	assert.Error(t, s.CreateTable(ctx, "holdem-table-1", "holdem", "second"))
}

func TestGetTableMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetTable(context.Background(), "nope")
	assert.Error(t, err)
}

func TestListTablesOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTable(ctx, "holdem-table-1", "holdem", "one"))
	require.NoError(t, s.CreateTable(ctx, "holdem-table-2", "holdem", "two"))

	rows, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "holdem-table-1", rows[0].ID)
	assert.Equal(t, "holdem-table-2", rows[1].ID)
}

func TestRecordNicknameUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordNickname(ctx, "alice"))
	// Seeing the same nickname again only refreshes the timestamp.
	require.NoError(t, s.RecordNickname(ctx, "alice"))
}
