package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phishguard/phishguard/internal/core"
	"go.uber.org/zap"
)

// topIndicatorLimit caps the indicator ranking returned by Stats.
const topIndicatorLimit = 10

// MemoryStore is an in-memory implementation of the AssessmentStore interface.
// Assessments older than the retention period are pruned by a background task.
type MemoryStore struct {
	assessments []*core.StoredAssessment
	nextID      int64
	retention   time.Duration
	mu          sync.RWMutex
	logger      *zap.Logger
	stopCh      chan struct{}
}

// NewMemoryStore creates a new in-memory assessment store and starts its
// cleanup task.
func NewMemoryStore(retention, cleanupInterval time.Duration, logger *zap.Logger) *MemoryStore {
	store := &MemoryStore{
		nextID:    1,
		retention: retention,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}

	go store.cleanupLoop(cleanupInterval)

	return store
}

// Save records an assessment summary.
func (s *MemoryStore) Save(ctx context.Context, a *core.StoredAssessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *a
	stored.ID = s.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.nextID++
	s.assessments = append(s.assessments, &stored)
	return nil
}

// Recent returns the most recently stored assessments, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*core.StoredAssessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.assessments) {
		limit = len(s.assessments)
	}

	results := make([]*core.StoredAssessment, 0, limit)
	for i := len(s.assessments) - 1; i >= 0 && len(results) < limit; i-- {
		copied := *s.assessments[i]
		results = append(results, &copied)
	}
	return results, nil
}

// Stats aggregates level and action distributions for assessments stored
// since the given time.
func (s *MemoryStore) Stats(ctx context.Context, since time.Time) (*core.AssessmentStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.AssessmentStats{
		LevelCounts:  make(map[core.ThreatLevel]int64),
		ActionCounts: make(map[core.Action]int64),
	}
	indicatorCounts := make(map[string]int64)

	for _, a := range s.assessments {
		if a.CreatedAt.Before(since) {
			continue
		}
		stats.TotalEmails++
		stats.LevelCounts[a.Level]++
		stats.ActionCounts[a.Action]++
		for _, indicator := range a.Indicators {
			indicatorCounts[indicator]++
		}
	}

	stats.TopIndicators = rankIndicators(indicatorCounts, topIndicatorLimit)
	return stats, nil
}

// Cleanup removes assessments past the retention period.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.assessments[:0]
	removed := 0
	for _, a := range s.assessments {
		if a.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.assessments = kept

	if removed > 0 {
		s.logger.Debug("Cleaned up expired assessments", zap.Int("count", removed))
	}
	return nil
}

// Close stops the background cleanup task.
func (s *MemoryStore) Close() error {
	close(s.stopCh)
	return nil
}

// cleanupLoop periodically removes expired assessments.
func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up assessments", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// rankIndicators turns a frequency map into a ranking sorted by count, with
// ties broken alphabetically for stable output.
func rankIndicators(counts map[string]int64, limit int) []core.IndicatorCount {
	ranking := make([]core.IndicatorCount, 0, len(counts))
	for indicator, count := range counts {
		ranking = append(ranking, core.IndicatorCount{Indicator: indicator, Count: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Indicator < ranking[j].Indicator
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
