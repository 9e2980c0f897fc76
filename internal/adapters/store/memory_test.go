package store

import (
	"context"
	"testing"
	"time"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, retention time.Duration) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(retention, time.Hour, zap.NewNop())
	t.Cleanup(func() { s.Close() })
	return s
}

func assessment(subject string, level core.ThreatLevel, action core.Action, indicators ...string) *core.StoredAssessment {
	return &core.StoredAssessment{
		Subject:    subject,
		Sender:     "sender@example.com",
		Level:      level,
		Action:     action,
		Indicators: indicators,
	}
}

func TestMemoryStoreSaveAssignsIDs(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, assessment("one", core.LevelClean, core.ActionAllow)))
	require.NoError(t, s.Save(ctx, assessment("two", core.LevelLow, core.ActionAllow)))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Greater(t, recent[0].ID, recent[1].ID)
	assert.False(t, recent[0].CreatedAt.IsZero())
}

func TestMemoryStoreRecentNewestFirst(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	for _, subject := range []string{"first", "second", "third"} {
		require.NoError(t, s.Save(ctx, assessment(subject, core.LevelClean, core.ActionAllow)))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Subject)
	assert.Equal(t, "second", recent[1].Subject)
}

func TestMemoryStoreStats(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, assessment("a", core.LevelCritical, core.ActionQuarantine, "spf_fail", "dangerous_file_extension")))
	require.NoError(t, s.Save(ctx, assessment("b", core.LevelCritical, core.ActionQuarantine, "spf_fail")))
	require.NoError(t, s.Save(ctx, assessment("c", core.LevelClean, core.ActionAllow)))

	stats, err := s.Stats(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalEmails)
	assert.Equal(t, int64(2), stats.LevelCounts[core.LevelCritical])
	assert.Equal(t, int64(1), stats.LevelCounts[core.LevelClean])
	assert.Equal(t, int64(2), stats.ActionCounts[core.ActionQuarantine])

	require.NotEmpty(t, stats.TopIndicators)
	assert.Equal(t, "spf_fail", stats.TopIndicators[0].Indicator)
	assert.Equal(t, int64(2), stats.TopIndicators[0].Count)
}

func TestMemoryStoreStatsWindow(t *testing.T) {
	s := newTestStore(t, 24*time.Hour)
	ctx := context.Background()

	old := assessment("old", core.LevelHigh, core.ActionQuarantine)
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.Save(ctx, old))
	require.NoError(t, s.Save(ctx, assessment("new", core.LevelClean, core.ActionAllow)))

	stats, err := s.Stats(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalEmails)
	assert.Zero(t, stats.LevelCounts[core.LevelHigh])
}

func TestMemoryStoreCleanup(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	expired := assessment("expired", core.LevelLow, core.ActionAllow)
	expired.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.Save(ctx, expired))
	require.NoError(t, s.Save(ctx, assessment("fresh", core.LevelClean, core.ActionAllow)))

	require.NoError(t, s.Cleanup(ctx))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh", recent[0].Subject)
}

func TestMemoryStoreSaveCopiesInput(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	original := assessment("mutable", core.LevelClean, core.ActionAllow)
	require.NoError(t, s.Save(ctx, original))
	original.Subject = "changed afterwards"

	recent, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "mutable", recent[0].Subject)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Save(ctx, assessment("x", core.LevelClean, core.ActionAllow)))
	_, err := s.Recent(ctx, 1)
	assert.Error(t, err)
}
