package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *HistoryRepository {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := Initialize(filepath.Join(t.TempDir(), "data", "brightpanel.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewHistoryRepository(db, 50)
}

func TestHistoryRecordAndRecent(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "d1", "Laptop Display 1", 40, "slider"))
	require.NoError(t, repo.Record(ctx, "d1", "Laptop Display 1", 70, "api"))

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, 70, entries[0].Level)
	assert.Equal(t, "api", entries[0].Source)
	assert.Equal(t, 40, entries[1].Level)
}

func TestHistoryRecentRespectsLimit(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, "d1", "Laptop Display 1", i*10, "slider"))
	}

	entries, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Zero falls back to the configured cap.
	entries, err = repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestHistoryRecentEmpty(t *testing.T) {
	repo := testDB(t)

	entries, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryPrune(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "d1", "Laptop Display 1", 40, "slider"))

	// Nothing is old enough yet.
	deleted, err := repo.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	// Everything is older than a zero retention window.
	deleted, err = repo.Prune(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
