package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"towerdefense-sim/internal/admin"
	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/logging"
	"towerdefense-sim/internal/scenario"
	"towerdefense-sim/internal/sim"
)

const defaultTick = 16 * time.Millisecond

var (
	simPrintOnly    bool
	simTUI          bool
	simConfigPath   string
	simSchemaPath   string
	simTick         time.Duration
	simLevel        int
	simSeed         int64
	simLogFile      string
	simScript       string
	simAdminAddr    string
	simAdminOrigins []string
	simWatch        bool
	simAutoCampaign bool
	simMaxTicks     uint64
	simLogLevel     string
	simLogFormat    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a tower defense campaign in real time",
	Long:  "simulate plays the configured levels, emitting state, event and entity telemetry and serving the admin UI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		campaign, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		tickInterval, err := resolveTick(campaign, simTick, cmd.Flags().Changed("tick"))
		if err != nil {
			return err
		}

		script, err := resolveScript(simScript)
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriters(campaign, outputOptions{printOnly: simPrintOnly, tui: simTUI, logFile: simLogFile})
		if err != nil {
			return err
		}
		defer cleanup()

		log, closeLog, err := newLogger(simTUI && !simPrintOnly && isTerminal())
		if err != nil {
			return err
		}
		defer closeLog()

		runID := os.Getenv("RUN_ID")
		if runID == "" {
			runID = uuid.New().String()
		}
		seed := simSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		simulator, err := sim.NewSimulator(runID, campaign, simLevel, writer, tickInterval, rand.New(rand.NewSource(seed)))
		if err != nil {
			return err
		}
		if err := simulator.SetScript(script); err != nil {
			return err
		}
		simulator.SetAutoCampaign(simAutoCampaign)
		simulator.SetMaxTicks(simMaxTicks)
		if cw, ok := writer.(sim.ControllableWriter); ok {
			cw.SetController(simulator)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)
		log.Info("run configured", "run_id", runID, "level", simLevel, "seed", seed, "script", simScript)

		g, ctx := errgroup.WithContext(ctx)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Go(func() error {
			defer cancel()
			return simulator.Run(ctx)
		})
		if simAdminAddr != "" {
			srv := admin.NewServer(simulator)
			srv.OriginPatterns = simAdminOrigins
			if aw, ok := writer.(sim.AdminStatusWriter); ok {
				aw.SetAdminStatus(true)
			}
			g.Go(func() error {
				if err := srv.Start(ctx, simAdminAddr); err != nil {
					return fmt.Errorf("admin server: %w", err)
				}
				return nil
			})
		}
		if simWatch {
			w := &config.Watcher{
				ConfigPath: simConfigPath,
				SchemaPath: simSchemaPath,
				OnChange:   simulator.SetCampaign,
			}
			g.Go(func() error { return w.Run(ctx) })
		}

		err = g.Wait()
		log.Info("tower defense simulation stopped", "run_id", runID, "level", simulator.Level())
		return err
	},
}

// resolveTick prefers TICK_INTERVAL, then an explicit --tick, then the campaign's tick_ms.
func resolveTick(c *config.Campaign, flagTick time.Duration, flagSet bool) (time.Duration, error) {
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return 0, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		return d, nil
	}
	if flagSet || c.Simulation.TickMs <= 0 {
		return flagTick, nil
	}
	return time.Duration(c.Simulation.TickMs) * time.Millisecond, nil
}

// resolveScript maps --script to a built-in arc or a YAML file. "none" plays manually.
func resolveScript(name string) (*scenario.Script, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	if sc, ok := scenario.BuiltIn()[name]; ok {
		return &sc, nil
	}
	return scenario.Load(name)
}

// newLogger keeps the TUI's terminal clean by sending logs to a file next to the
// log export, or discarding them.
func newLogger(tui bool) (*slog.Logger, func(), error) {
	level, format := envOr("LOG_LEVEL", simLogLevel), envOr("LOG_FORMAT", simLogFormat)
	if !tui {
		l := logging.NewWriter(os.Stderr, format, level)
		slog.SetDefault(l)
		return l, func() {}, nil
	}
	if simLogFile == "" {
		return logging.NewWriter(io.Discard, format, level), func() {}, nil
	}
	f, err := os.OpenFile(simLogFile+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := logging.NewWriter(f, format, level)
	slog.SetDefault(l)
	return l, func() { f.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	f := simulateCmd.Flags()
	f.BoolVar(&simPrintOnly, "print-only", false, "Print telemetry as JSON to STDOUT instead of writing to DB")
	f.BoolVar(&simTUI, "tui", true, "Show the interactive terminal UI when STDOUT is a terminal")
	f.StringVar(&simConfigPath, "config", "config/levels.yaml", "Path to the level configuration YAML")
	f.StringVar(&simSchemaPath, "schema", "schemas/levels.cue", "Path to CUE schema file")
	f.DurationVar(&simTick, "tick", defaultTick, "Simulation tick interval (defaults to the campaign's tick_ms)")
	f.IntVar(&simLevel, "level", 1, "Level to start at")
	f.Int64Var(&simSeed, "seed", 0, "Path generator seed (0 picks one from the clock)")
	f.StringVar(&simLogFile, "log-file", "", "Path to export state/event/entity logs (JSONL)")
	f.StringVar(&simScript, "script", "gauntlet", "Autopilot: built-in arc name, script YAML path or none")
	f.StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin UI listen address (empty disables)")
	f.StringSliceVar(&simAdminOrigins, "admin-origins", nil, "Extra origins allowed to open the admin snapshot stream")
	f.BoolVar(&simWatch, "watch", true, "Reload the level file when it changes")
	f.BoolVar(&simAutoCampaign, "auto-campaign", true, "Advance to the next level after a victory")
	f.Uint64Var(&simMaxTicks, "max-ticks", 0, "Stop after this many ticks (0 runs until the campaign ends)")
	f.StringVar(&simLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	f.StringVar(&simLogFormat, "log-format", "text", "Log format: text or json")
}
