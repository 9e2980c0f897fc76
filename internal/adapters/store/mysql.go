package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/phishguard/phishguard/internal/core"
	"go.uber.org/zap"
)

// mysqlTimeLayout is the DATETIME format used by MySQL.
const mysqlTimeLayout = "2006-01-02 15:04:05"

// MySQLStore is a MySQL-backed implementation of the AssessmentStore
// interface, for deployments where several filter instances share one
// dashboard database.
type MySQLStore struct {
	db        *sql.DB
	retention time.Duration
	logger    *zap.Logger
	stopCh    chan struct{}
}

// NewMySQLStore creates a new MySQL assessment store and starts its cleanup
// task.
func NewMySQLStore(dsn string, retention, cleanupInterval time.Duration, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	store := &MySQLStore{
		db:        db,
		retention: retention,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize MySQL database: %w", err)
	}

	go store.cleanupLoop(cleanupInterval)

	return store, nil
}

// initialize creates the database schema if it doesn't exist.
func (s *MySQLStore) initialize() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS assessments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			subject VARCHAR(998) NOT NULL,
			sender_email VARCHAR(320) NOT NULL,
			threat_score DOUBLE NOT NULL,
			threat_level VARCHAR(16) NOT NULL,
			recommended_action VARCHAR(16) NOT NULL,
			is_phishing BOOLEAN NOT NULL,
			is_spam BOOLEAN NOT NULL,
			is_malware BOOLEAN NOT NULL,
			indicators TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_assessments_created_at (created_at)
		)
	`); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS threats (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			assessment_id BIGINT NOT NULL,
			indicator VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_threats_created_at (created_at),
			INDEX idx_threats_indicator (indicator)
		)
	`)
	return err
}

// Save records an assessment summary and one threat row per indicator.
func (s *MySQLStore) Save(ctx context.Context, a *core.StoredAssessment) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO assessments (subject, sender_email, threat_score, threat_level, recommended_action,
			is_phishing, is_spam, is_malware, indicators, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Subject, a.Sender, a.Score, string(a.Level), string(a.Action),
		a.IsPhishing, a.IsSpam, a.IsMalware,
		strings.Join(a.Indicators, indicatorSeparator),
		createdAt.UTC().Format(mysqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}

	assessmentID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get assessment id: %w", err)
	}

	for _, indicator := range a.Indicators {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO threats (assessment_id, indicator, created_at) VALUES (?, ?, ?)`,
			assessmentID, indicator, createdAt.UTC().Format(mysqlTimeLayout),
		); err != nil {
			return fmt.Errorf("failed to insert threat indicator: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns the most recently stored assessments, newest first.
func (s *MySQLStore) Recent(ctx context.Context, limit int) ([]*core.StoredAssessment, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, sender_email, threat_score, threat_level, recommended_action,
			is_phishing, is_spam, is_malware, indicators, created_at
		 FROM assessments ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows, mysqlTimeLayout)
}

// Stats aggregates level and action distributions for assessments stored
// since the given time.
func (s *MySQLStore) Stats(ctx context.Context, since time.Time) (*core.AssessmentStats, error) {
	sinceStr := since.UTC().Format(mysqlTimeLayout)

	stats := &core.AssessmentStats{
		LevelCounts:  make(map[core.ThreatLevel]int64),
		ActionCounts: make(map[core.Action]int64),
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assessments WHERE created_at >= ?`, sinceStr,
	).Scan(&stats.TotalEmails); err != nil {
		return nil, fmt.Errorf("failed to count assessments: %w", err)
	}

	levelRows, err := s.db.QueryContext(ctx,
		`SELECT threat_level, COUNT(*) FROM assessments WHERE created_at >= ? GROUP BY threat_level`, sinceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to query level distribution: %w", err)
	}
	defer levelRows.Close()
	for levelRows.Next() {
		var level string
		var count int64
		if err := levelRows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan level row: %w", err)
		}
		stats.LevelCounts[core.ThreatLevel(level)] = count
	}
	if err := levelRows.Err(); err != nil {
		return nil, err
	}

	actionRows, err := s.db.QueryContext(ctx,
		`SELECT recommended_action, COUNT(*) FROM assessments WHERE created_at >= ? GROUP BY recommended_action`, sinceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to query action distribution: %w", err)
	}
	defer actionRows.Close()
	for actionRows.Next() {
		var action string
		var count int64
		if err := actionRows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action row: %w", err)
		}
		stats.ActionCounts[core.Action(action)] = count
	}
	if err := actionRows.Err(); err != nil {
		return nil, err
	}

	indicatorRows, err := s.db.QueryContext(ctx,
		`SELECT indicator, COUNT(*) AS n FROM threats WHERE created_at >= ?
		 GROUP BY indicator ORDER BY n DESC, indicator ASC LIMIT ?`, sinceStr, topIndicatorLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicator ranking: %w", err)
	}
	defer indicatorRows.Close()
	for indicatorRows.Next() {
		var entry core.IndicatorCount
		if err := indicatorRows.Scan(&entry.Indicator, &entry.Count); err != nil {
			return nil, fmt.Errorf("failed to scan indicator row: %w", err)
		}
		stats.TopIndicators = append(stats.TopIndicators, entry)
	}
	if err := indicatorRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Cleanup removes assessments past the retention period.
func (s *MySQLStore) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention).UTC().Format(mysqlTimeLayout)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM threats WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to delete expired threats: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired assessments: %w", err)
	}

	if count, err := result.RowsAffected(); err == nil && count > 0 {
		s.logger.Debug("Cleaned up expired assessments", zap.Int64("count", count))
	}
	return nil
}

// Close stops the cleanup task and closes the database connection.
func (s *MySQLStore) Close() error {
	close(s.stopCh)
	return s.db.Close()
}

// cleanupLoop periodically removes expired assessments.
func (s *MySQLStore) cleanupLoop(interval time.Duration) {
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
