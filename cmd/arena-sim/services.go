package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/nova-webgames/arena/internal/api"
	"github.com/nova-webgames/arena/internal/auth"
	"github.com/nova-webgames/arena/internal/config"
	"github.com/nova-webgames/arena/internal/game"
	"github.com/nova-webgames/arena/internal/influx"
	"github.com/nova-webgames/arena/internal/session"
	"github.com/nova-webgames/arena/internal/storage"
)

// tickSampleEvery is the tick stride of the telemetry tick series.
const tickSampleEvery = 30

// services are the outer collaborators of a run. Any of them may be nil when
// disabled or unavailable; the reporter skips nil sinks.
type services struct {
	store     session.Store
	submitter session.Submitter
	tokens    session.TokenSource
	telemetry session.Telemetry
	state     game.StateConsumer

	closers []func() error
}

func setupServices(ctx context.Context, logs *logStack, sess *session.Context) *services {
	logger := logs.Logger()
	svc := &services{}

	backend, err := storage.NewBackend(config.GetStorageConfig(), logs.component("storage"))
	if err == nil {
		err = backend.Init()
	}
	if err != nil {
		logger.Error("Failed to initialize storage, results will not be saved", "error", err)
	} else {
		svc.store = backend
		svc.closers = append(svc.closers, backend.Close)
		logger.Info("Storage initialized", "type", config.GetString("storage.type"))
	}

	if ic := config.GetInfluxConfig(); ic.Enabled {
		backup := filepath.Join(config.GetString("logsDir"), "influx_backup.log.gz")
		m := influx.NewManager(influx.Config{
			URL:          ic.URL(),
			Token:        ic.Token,
			Org:          ic.Org,
			Bucket:       ic.Bucket,
			CreateBucket: true,
		}, logs.component("influx"), backup)
		if err := m.Connect(ctx); err != nil {
			logger.Error("Failed to initialize InfluxDB", "error", err)
		} else {
			svc.telemetry = m
			svc.state = influx.NewTickRecorder(m, sess.SessionID(), sess.StartedAt(), tickSampleEvery)
			svc.closers = append(svc.closers, m.Close)
		}
	}

	if ac := config.GetAPIConfig(); ac.Enabled {
		client := api.New(ac.ServerURL, ac.Timeout)
		if err := client.Healthcheck(ctx); err != nil {
			logger.Info("Leaderboard is offline, results will be queued", "error", err)
		} else {
			logger.Info("Leaderboard is online", "url", ac.ServerURL)
		}
		svc.submitter = client

		authCfg := config.GetAuthConfig()
		signer, err := auth.NewSigner(authCfg.SecretKey, authCfg.Issuer, authCfg.AccessTokenTTL)
		if err != nil {
			logger.Warn("No access token signer, submitting without credentials", "error", err)
		} else {
			svc.tokens = signer
		}
	}

	return svc
}

// Close releases services in reverse order of setup.
func (s *services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
