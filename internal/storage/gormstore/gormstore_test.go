package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nova-webgames/arena/pkg/core"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := OpenSQLite("")
	require.NoError(t, err)

	b := New(Dependencies{DB: db, Logger: zerolog.Nop()})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func sampleMatch(id string, score int) core.MatchResult {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return core.MatchResult{
		SessionID:  id,
		PlayerID:   "p-1",
		StartedAt:  start,
		EndedAt:    start.Add(90 * time.Second),
		Duration:   90,
		Score:      score,
		Kills:      3,
		Deaths:     1,
		ShotsFired: 20,
		ShotsHit:   5,
	}
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	want := sampleMatch("s-1", 150)
	require.NoError(t, b.SaveMatch(ctx, want))

	got, err := b.GetMatch(ctx, "s-1")
	require.NoError(t, err)

	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.PlayerID, got.PlayerID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.True(t, want.EndedAt.Equal(got.EndedAt))
	assert.InDelta(t, want.Duration, got.Duration, 1e-9)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Kills, got.Kills)
	assert.Equal(t, want.Deaths, got.Deaths)
	assert.Equal(t, want.ShotsFired, got.ShotsFired)
	assert.Equal(t, want.ShotsHit, got.ShotsHit)
}

func TestSaveMatch_Upsert(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SaveMatch(ctx, sampleMatch("s-1", 100)))
	updated := sampleMatch("s-1", 400)
	updated.Kills = 8
	require.NoError(t, b.SaveMatch(ctx, updated))

	var count int64
	require.NoError(t, b.db.Model(&MatchRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := b.GetMatch(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 400, got.Score)
	assert.Equal(t, 8, got.Kills)
}

func TestGetMatch_NotFound(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.GetMatch(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrMatchNotFound)
}

func TestTopScores(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for i, score := range []int{50, 300, 150, 300} {
		m := sampleMatch(string(rune('a'+i)), score)
		m.EndedAt = m.EndedAt.Add(time.Duration(10-i) * time.Minute)
		require.NoError(t, b.SaveMatch(ctx, m))
	}

	top, err := b.TopScores(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "d", top[0].SessionID, "equal scores: earlier finish first")
	assert.Equal(t, "b", top[1].SessionID)
	assert.Equal(t, "c", top[2].SessionID)
}

func TestStatsColumnIsJSON(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.SaveMatch(context.Background(), sampleMatch("s-1", 10)))

	var rec MatchRecord
	require.NoError(t, b.db.First(&rec).Error)
	assert.JSONEq(t, `{"kills":3,"deaths":1,"shotsFired":20,"shotsHit":5,"accuracy":0.25}`, string(rec.Stats))
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)

	b := New(Dependencies{DB: db, Logger: zerolog.Nop()})
	require.NoError(t, b.Init())
	require.NoError(t, b.SaveMatch(context.Background(), sampleMatch("s-1", 1)))
	require.NoError(t, b.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	b = New(Dependencies{DB: db, Logger: zerolog.Nop()})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	got, err := b.GetMatch(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
}
