package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"towerdefense-sim/internal/logging"
	"towerdefense-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayEvents    bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [log-file]",
	Short: "Replay a recorded run",
	Long: "replay feeds the state rows of a --log-file export, merged with its .events companion, " +
		"back into GreptimeDB or STDOUT at the recorded pace.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := replayInput
		if len(args) == 1 {
			input = args[0]
		}
		if input == "" {
			return fmt.Errorf("input file required")
		}
		paths, err := replayInputs(input, replayEvents)
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriters(nil, outputOptions{printOnly: replayPrintOnly})
		if err != nil {
			return err
		}
		defer cleanup()

		log := logging.NewWriter(os.Stderr, envOr("LOG_FORMAT", "text"), envOr("LOG_LEVEL", "info"))
		log.Info("replaying run", "files", paths, "speed", replaySpeed)
		return sim.ReplayLogFiles(paths, writer, replaySpeed)
	},
}

// replayInputs returns the log to replay plus its event companion when asked for
// and present.
func replayInputs(input string, withEvents bool) ([]string, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, err
	}
	paths := []string{input}
	if !withEvents {
		return paths, nil
	}
	companion := input + ".events"
	if _, err := os.Stat(companion); err == nil {
		paths = append(paths, companion)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return paths, nil
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to the state log (or pass it as an argument)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 replays without delays)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayEvents, "events", true, "Merge the .events companion log when present")
}
