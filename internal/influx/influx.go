// Package influx writes match telemetry to InfluxDB, or to a gzipped
// line-protocol backup file when the server cannot be reached.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nova-webgames/arena/pkg/core"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

const (
	MeasurementMatch = "match"
	MeasurementTick  = "tick"

	// retention for buckets created on Connect
	bucketRetention = 60 * 60 * 24 * 90
)

// Config selects the server and bucket.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	// CreateBucket creates the org and bucket on Connect when they are missing.
	CreateBucket bool
}

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	cfg        Config
	client     influxdb2.Client
	writer     influxdb2_api.WriteAPI
	backupPath string
	backup     *gzip.Writer
	backupFile *os.File
	valid      bool
	log        zerolog.Logger
	mu         sync.Mutex
}

// NewManager creates a manager. backupPath may be empty to drop points while
// the server is unreachable.
func NewManager(cfg Config, log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		cfg:        cfg,
		backupPath: backupPath,
		log:        log.With().Str("component", "influx").Logger(),
	}
}

// Connect pings the server and prepares the write API, falling back to the
// backup file when the ping fails.
func (m *Manager) Connect(ctx context.Context) error {
	m.client = influxdb2.NewClientWithOptions(
		m.cfg.URL,
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.client.Ping(ctx)
	if err != nil || !running {
		m.valid = false
		if m.backupPath == "" {
			return fmt.Errorf("influxdb unreachable at %s and no backup path set", m.cfg.URL)
		}
		m.log.Warn().Err(err).Str("backupPath", m.backupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		return m.openBackup()
	}

	if m.cfg.CreateBucket {
		if err := m.ensureBucket(ctx); err != nil {
			return err
		}
	}

	m.writer = m.client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.log.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.writer.Errors())

	m.valid = true
	m.log.Info().Str("url", m.cfg.URL).Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	file, err := os.OpenFile(m.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.log.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("creating organization %s: %w", m.cfg.Org, err)
		}
	}

	buckets := m.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.log.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = buckets.CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: bucketRetention,
	})
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

// Valid reports whether points go to the server rather than the backup file.
func (m *Manager) Valid() bool {
	return m.valid
}

// WritePoint queues point for the server or appends it to the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid {
		m.writer.WritePoint(point)
		return nil
	}
	if m.backup == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}

	line := strings.TrimSuffix(influxdb2_write.PointToLineProtocol(point, time.Nanosecond), "\n")
	if _, err := m.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WriteMatch records the end-of-session summary.
func (m *Manager) WriteMatch(result core.MatchResult) error {
	return m.WritePoint(MatchPoint(result))
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.writer != nil {
		m.writer.Flush()
	}
	if m.client != nil {
		m.client.Close()
	}
	if m.backup != nil {
		errs = append(errs, m.backup.Close())
		errs = append(errs, m.backupFile.Close())
		m.backup = nil
	}
	m.valid = false
	return errors.Join(errs...)
}

// MatchPoint builds the match summary point, stamped at the end of the match.
func MatchPoint(r core.MatchResult) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		MeasurementMatch,
		map[string]string{
			"session": r.SessionID,
			"player":  r.PlayerID,
		},
		map[string]interface{}{
			"score":       r.Score,
			"kills":       r.Kills,
			"deaths":      r.Deaths,
			"shots_fired": r.ShotsFired,
			"shots_hit":   r.ShotsHit,
			"accuracy":    r.Accuracy(),
			"duration":    r.Duration,
		},
		r.EndedAt,
	)
}

// TickPoint builds a per-tick point. at is the wall-clock time of the tick.
func TickPoint(sessionID string, s core.Snapshot, at time.Time) *influxdb2_write.Point {
	alive := 0
	for _, e := range s.Enemies {
		if e.State != core.StateDead {
			alive++
		}
	}
	return influxdb2.NewPoint(
		MeasurementTick,
		map[string]string{
			"session": sessionID,
			"phase":   s.Phase.String(),
		},
		map[string]interface{}{
			"tick":          int64(s.Tick),
			"clock":         s.Clock,
			"health":        s.Player.Health,
			"armor":         s.Player.Armor,
			"ammo":          s.Ammo,
			"reloading":     s.Reloading,
			"enemies_alive": alive,
			"score":         s.Score,
			"kills":         s.Kills,
		},
		at,
	)
}
