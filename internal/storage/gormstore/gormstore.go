// Package gormstore stores match results through GORM. The same backend serves
// SQLite and Postgres; only the connection differs.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nova-webgames/arena/pkg/core"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dependencies holds the collaborators of a Backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend implements storage.Backend on a gorm.DB.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New creates a backend. Init migrates the schema.
func New(deps Dependencies) *Backend {
	return &Backend{
		db:  deps.DB,
		log: deps.Logger.With().Str("component", "gormstore").Logger(),
	}
}

// Init migrates the matches table.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(&MatchRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.log.Info().Str("dialect", b.db.Dialector.Name()).Msg("Match store ready")
	return nil
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveMatch upserts result keyed by its session id.
func (b *Backend) SaveMatch(ctx context.Context, result core.MatchResult) error {
	if result.SessionID == "" {
		return fmt.Errorf("saving match: empty session id")
	}
	rec, err := toRecord(result)
	if err != nil {
		return err
	}

	err = b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"player_id", "started_at", "ended_at", "duration", "score", "stats"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("saving match %s: %w", result.SessionID, err)
	}

	b.log.Debug().
		Str("session", result.SessionID).
		Int("score", result.Score).
		Msg("Match saved")
	return nil
}

func (b *Backend) GetMatch(ctx context.Context, sessionID string) (core.MatchResult, error) {
	var rec MatchRecord
	err := b.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.MatchResult{}, fmt.Errorf("session %q: %w", sessionID, core.ErrMatchNotFound)
	}
	if err != nil {
		return core.MatchResult{}, fmt.Errorf("loading match %s: %w", sessionID, err)
	}
	return rec.toResult()
}

// TopScores returns the best matches, highest score first.
func (b *Backend) TopScores(ctx context.Context, limit int) ([]core.MatchResult, error) {
	q := b.db.WithContext(ctx).Order("score DESC").Order("ended_at ASC").Order("session_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []MatchRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("loading top scores: %w", err)
	}

	out := make([]core.MatchResult, 0, len(recs))
	for _, r := range recs {
		m, err := r.toResult()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
