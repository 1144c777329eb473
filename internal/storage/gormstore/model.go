package gormstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nova-webgames/arena/pkg/core"
	"gorm.io/datatypes"
)

// MatchRecord is the matches table row. Counters other than the score live in
// a JSON column so the schema does not change when new ones are added.
type MatchRecord struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	SessionID string    `gorm:"size:64;uniqueIndex"`
	PlayerID  string    `gorm:"size:64;index"`
	StartedAt time.Time
	EndedAt   time.Time `gorm:"index"`
	Duration  float64
	Score     int `gorm:"index"`
	Stats     datatypes.JSON
}

// TableName fixes the table name regardless of naming strategy.
func (MatchRecord) TableName() string {
	return "matches"
}

type matchStats struct {
	Kills      int     `json:"kills"`
	Deaths     int     `json:"deaths"`
	ShotsFired int     `json:"shotsFired"`
	ShotsHit   int     `json:"shotsHit"`
	Accuracy   float64 `json:"accuracy"`
}

func toRecord(m core.MatchResult) (MatchRecord, error) {
	stats, err := json.Marshal(matchStats{
		Kills:      m.Kills,
		Deaths:     m.Deaths,
		ShotsFired: m.ShotsFired,
		ShotsHit:   m.ShotsHit,
		Accuracy:   m.Accuracy(),
	})
	if err != nil {
		return MatchRecord{}, fmt.Errorf("encoding stats: %w", err)
	}
	return MatchRecord{
		SessionID: m.SessionID,
		PlayerID:  m.PlayerID,
		StartedAt: m.StartedAt.UTC(),
		EndedAt:   m.EndedAt.UTC(),
		Duration:  m.Duration,
		Score:     m.Score,
		Stats:     datatypes.JSON(stats),
	}, nil
}

func (r MatchRecord) toResult() (core.MatchResult, error) {
	var stats matchStats
	if len(r.Stats) > 0 {
		if err := json.Unmarshal(r.Stats, &stats); err != nil {
			return core.MatchResult{}, fmt.Errorf("decoding stats for %s: %w", r.SessionID, err)
		}
	}
	return core.MatchResult{
		SessionID:  r.SessionID,
		PlayerID:   r.PlayerID,
		StartedAt:  r.StartedAt.UTC(),
		EndedAt:    r.EndedAt.UTC(),
		Duration:   r.Duration,
		Score:      r.Score,
		Kills:      stats.Kills,
		Deaths:     stats.Deaths,
		ShotsFired: stats.ShotsFired,
		ShotsHit:   stats.ShotsHit,
	}, nil
}
