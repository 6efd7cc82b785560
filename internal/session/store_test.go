package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoclass/app"
	"autoclass/domain/core"
	"autoclass/internal/testkit"
)

func TestStoreDatasetRoundTrip(t *testing.T) {
	s := NewStore()
	ds := testkit.MessyDataset()

	id := s.PutDataset(ds)
	require.NotEmpty(t, id)

	got, ok := s.Dataset(id)
	require.True(t, ok)
	assert.Same(t, ds, got)

	_, ok = s.Dataset(core.DatasetID("missing"))
	assert.False(t, ok)

	s.DeleteDataset(id)
	_, ok = s.Dataset(id)
	assert.False(t, ok)
}

func TestStoreDistinctIDs(t *testing.T) {
	s := NewStore()
	ds := testkit.MessyDataset()
	assert.NotEqual(t, s.PutDataset(ds), s.PutDataset(ds))
}

func TestStoreRunRoundTrip(t *testing.T) {
	s := NewStore()
	outcome := &app.RunOutcome{RunID: core.NewRunID()}

	id := s.PutRun(outcome)
	assert.Equal(t, outcome.RunID, id)

	got, ok := s.Run(id)
	require.True(t, ok)
	assert.Same(t, outcome, got)
}

func TestStoreCleanupExpired(t *testing.T) {
	s := NewStoreWithTTL(time.Hour)

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	oldID := s.PutDataset(testkit.MessyDataset())
	s.PutRun(&app.RunOutcome{RunID: core.NewRunID()})

	clock = clock.Add(30 * time.Minute)
	freshID := s.PutDataset(testkit.MessyDataset())

	clock = clock.Add(45 * time.Minute)
	removed := s.CleanupExpired()
	assert.Equal(t, 2, removed, "the hour-old dataset and run are reclaimed")

	_, ok := s.Dataset(oldID)
	assert.False(t, ok)
	_, ok = s.Dataset(freshID)
	assert.True(t, ok, "entries inside the TTL survive cleanup")
}
