package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nova-webgames/arena/internal/config"
	"github.com/nova-webgames/arena/internal/logging"
	intOtel "github.com/nova-webgames/arena/internal/otel"
	"github.com/nova-webgames/arena/internal/session"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// logStack bundles the slog manager, the zerolog logger handed to the bus
// and storage layers, and the OTel provider behind both.
type logStack struct {
	manager *logging.SlogManager
	file    *os.File
	otel    *intOtel.Provider
	zl      zerolog.Logger
	bus     *logging.BusLogger
}

func setupLogging(start time.Time, sess *session.Context) (*logStack, error) {
	level := config.GetString("logLevel")
	path := logging.LogFilePath(config.GetString("logsDir"), AppName, start)

	file, err := logging.OpenLogFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	ls := &logStack{
		manager: logging.NewSlogManager(),
		file:    file,
	}

	otelCfg := config.GetOTelConfig()
	ls.otel, err = intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: Version,
		SessionID:      sess.SessionID(),
		BatchTimeout:   otelCfg.BatchTimeout,
		LogWriter:      file,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		// fall back to a disabled provider so the run still logs to file
		fmt.Fprintln(os.Stderr, "Failed to initialize OTel provider:", err)
		ls.otel, _ = intOtel.New(intOtel.Config{})
	}

	opts := []logging.SetupOption{logging.WithContext(sess.LogAttrs)}
	gl := config.GetGraylogConfig()
	if gl.Enabled {
		h, w, err := logging.NewGelfHandler(gl.Address, level, AppName)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to connect to Graylog:", err)
		} else {
			opts = append(opts, logging.WithGelf(h, w))
		}
	}

	var provider *sdklog.LoggerProvider
	if ls.otel.Enabled() {
		provider = ls.otel.LoggerProvider()
	}
	ls.manager.Setup(file, level, provider, opts...)
	ls.manager.Logger().Info("Logging to file", "path", path)

	ls.zl = logging.NewZerolog(file, level, "arena").
		With().Str("session", sess.SessionID()).Logger()
	ls.bus = logging.NewBusLogger(ls.zl.With().Str("component", "eventbus").Logger())
	return ls, nil
}

func (ls *logStack) Logger() *slog.Logger {
	return ls.manager.Logger()
}

// component returns a zerolog logger tagged for one subsystem.
func (ls *logStack) component(name string) zerolog.Logger {
	return ls.zl.With().Str("component", name).Logger()
}

func (ls *logStack) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	errs = append(errs, ls.manager.Flush(ctx))
	errs = append(errs, ls.otel.Shutdown(ctx))
	errs = append(errs, ls.manager.Close())
	errs = append(errs, ls.file.Close())
	return errors.Join(errs...)
}

var _ io.Closer = (*logStack)(nil)
