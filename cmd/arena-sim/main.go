// Command arena-sim runs a headless arena match from a recorded or scripted
// input stream, prints the result and hands it to storage, telemetry and the
// leaderboard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nova-webgames/arena/internal/combat"
	"github.com/nova-webgames/arena/internal/config"
	"github.com/nova-webgames/arena/internal/eventbus"
	"github.com/nova-webgames/arena/internal/game"
	"github.com/nova-webgames/arena/internal/session"
	"github.com/nova-webgames/arena/pkg/core"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

const AppName = "arena-sim"

type options struct {
	configDir   string
	framesFile  string
	ticks       int
	dt          float64
	shootEvery  int
	reloadEvery int
	jsonOut     bool
	flushWait   time.Duration
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.StringVar(&opts.configDir, "config-dir", ".", "directory holding "+config.FileName)
	fs.StringVarP(&opts.framesFile, "frames", "f", "", "JSON file of recorded frames; scripted input when empty")
	fs.IntVar(&opts.ticks, "ticks", 600, "number of scripted ticks")
	fs.Float64Var(&opts.dt, "dt", 1.0/30, "seconds per scripted tick")
	fs.IntVar(&opts.shootEvery, "shoot-every", 3, "scripted: shoot every n ticks (0 never)")
	fs.IntVar(&opts.reloadEvery, "reload-every", 0, "scripted: request a reload every n ticks (0 never)")
	fs.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	fs.DurationVar(&opts.flushWait, "flush-timeout", 15*time.Second, "how long to wait for result delivery")

	// config keys that are handy to override per run
	fs.String("logLevel", "info", "log level (debug, info, warn, error)")
	fs.String("logsDir", "./arenalogs", "directory for log files")
	fs.String("storage.type", "memory", "match store: memory, sqlite or postgres")
	fs.String("game.wavesFile", "", "YAML wave script")
	fs.String("api.playerId", "", "player id reported to the leaderboard")
	fs.Bool("api.enabled", false, "submit the result to the leaderboard")
	fs.Bool("influx.enabled", false, "write telemetry to InfluxDB")
	return fs
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "arena-sim:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		return err
	}

	loadErr := config.Load(opts.configDir)
	if err := config.BindFlags(fs); err != nil {
		return err
	}

	start := time.Now()
	sess := session.NewContext(viper.GetString("api.playerId"), start)

	logs, err := setupLogging(start, sess)
	if err != nil {
		return err
	}
	defer logs.Close()
	logger := logs.Logger()
	logger.Info("Starting up", "version", Version, "buildDate", BuildDate)
	if loadErr != nil {
		logger.Warn("Failed to load config, using defaults", "error", loadErr)
	}

	gameCfg, err := config.GetGameConfig()
	if err != nil {
		return err
	}
	frames, err := loadFrames(opts)
	if err != nil {
		return err
	}

	bus, err := eventbus.New(logs.bus, eventbus.WithMeter(logs.otel.Meter("arena")))
	if err != nil {
		return fmt.Errorf("creating event bus: %w", err)
	}

	svc := setupServices(context.Background(), logs, sess)
	defer svc.Close()

	reporter, err := session.NewReporter(session.Dependencies{
		Context:   sess,
		Store:     svc.store,
		Submitter: svc.submitter,
		Tokens:    svc.tokens,
		Telemetry: svc.telemetry,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	g, err := game.New(gameCfg, game.Dependencies{
		Bus:     bus,
		Logger:  logs.bus,
		Audio:   combat.AudioFunc(func(cue string) { logs.bus.Debug("audio cue", "cue", cue) }),
		State:   svc.state,
		Session: reporter,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	snaps := g.Run(frames)
	if g.Finish() {
		logger.Info("Input ran out before the match ended", "ticks", len(snaps))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.flushWait)
	defer cancel()
	if err := reporter.Flush(ctx); err != nil {
		logger.Error("Failed to deliver match result", "error", err, "pending", reporter.Pending())
	}
	if err := logs.otel.Flush(ctx); err != nil {
		logger.Error("Failed to flush OTel logs", "error", err)
	}

	results := reporter.Results()
	if len(results) == 0 {
		return fmt.Errorf("match produced no result")
	}
	return printResult(stdout, results[len(results)-1], opts.jsonOut)
}

func loadFrames(opts options) ([]game.Frame, error) {
	if opts.framesFile == "" {
		return game.ScriptedFrames(opts.ticks, opts.dt, opts.shootEvery, opts.reloadEvery), nil
	}
	f, err := os.Open(opts.framesFile)
	if err != nil {
		return nil, fmt.Errorf("opening frames: %w", err)
	}
	defer f.Close()
	return game.ReadFrames(f)
}

func printResult(w io.Writer, r core.MatchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err := fmt.Fprintf(w,
		"session %s\nscore %d  kills %d  deaths %d\nshots %d  hits %d  accuracy %.1f%%\nduration %.2fs\n",
		r.SessionID, r.Score, r.Kills, r.Deaths, r.ShotsFired, r.ShotsHit, r.Accuracy()*100, r.Duration)
	return err
}

