// ColorStdoutWriter prints human-friendly, colorized run output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
	colorWhite   = "\x1b[37m"

	bgRed    = "\x1b[41m"
	bgYellow = "\x1b[43m"
	bgGreen  = "\x1b[42m"
)

// defaultStateEvery is how many ticks pass between printed state lines.
const defaultStateEvery = 30

// ColorStdoutWriter prints events as they happen and a state line every few ticks.
type ColorStdoutWriter struct {
	campaign   *config.Campaign
	out        io.Writer
	once       sync.Once
	stateEvery uint64
	lastPhase  string
}

var eventColors = map[string]string{
	string(game.EventEnemySpawned):      colorGray,
	string(game.EventEnemyDefeated):     colorGreen,
	string(game.EventEnemyLeaked):       colorRed,
	string(game.EventProjectileFired):   colorGray,
	string(game.EventProjectileMissed):  colorYellow,
	string(game.EventTowerPlaced):       colorCyan,
	string(game.EventPlacementRejected): colorYellow,
	string(game.EventWaveStarted):       colorBlue,
	string(game.EventPhaseChanged):      colorMagenta,
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout. The
// campaign is printed as an overview before the first line; it may be nil.
func NewColorStdoutWriter(c *config.Campaign) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		campaign:   c,
		out:        os.Stdout,
		stateEvery: defaultStateEvery,
	}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.campaign == nil {
		return
	}

	fmt.Fprintln(w.out, "Campaign:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Board:\t%.0fx%.0f\n", w.campaign.Board.Width, w.campaign.Board.Height)
	fmt.Fprintf(tw, "Start health:\t%d\n", w.campaign.Player.StartHealth)
	fmt.Fprintf(tw, "Tower:\trange=%.0f rate=%.1f/s cost=%d\n", w.campaign.Tower.Range, w.campaign.Tower.FireRate, w.campaign.Tower.Cost)
	tw.Flush()

	fmt.Fprintln(w.out, "\nLevels:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Level\tEnemy\tWaves\tVictory score\n")
	for _, l := range w.campaign.Levels {
		fmt.Fprintf(tw, "%s%d%s\t%s\t%d\t%d\n", colorCyan, l.Number, colorReset, l.Enemy, len(l.Waves), l.VictoryScore)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func (w *ColorStdoutWriter) stamp(ts time.Time) {
	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, ts.Format(time.RFC3339), colorReset)
}

// WriteState prints a state line on phase changes and every stateEvery ticks.
func (w *ColorStdoutWriter) WriteState(row telemetry.StateRow) error {
	w.once.Do(w.printOverview)
	if row.Phase == w.lastPhase && w.stateEvery > 0 && row.Tick%w.stateEvery != 0 {
		return nil
	}
	w.lastPhase = row.Phase

	phaseColor := colorGreen
	switch row.Phase {
	case string(game.PhaseDefeat):
		phaseColor = colorRed
	case string(game.PhaseIdle):
		phaseColor = colorGray
	case string(game.PhaseVictory):
		phaseColor = colorMagenta
	}
	w.stamp(row.Timestamp)
	fmt.Fprintf(w.out, "%slevel=%d%s ", colorBlue, row.Level, colorReset)
	fmt.Fprintf(w.out, "%sphase=%s%s ", phaseColor, row.Phase, colorReset)
	fmt.Fprintf(w.out, "%shealth=%d%s ", colorRed, row.Health, colorReset)
	fmt.Fprintf(w.out, "%smoney=%d%s ", colorYellow, row.Money, colorReset)
	fmt.Fprintf(w.out, "%sscore=%d/%d%s ", colorGreen, row.Score, row.VictoryScore, colorReset)
	fmt.Fprintf(w.out, "%swave=%d/%d%s ", colorCyan, row.Wave, row.TotalWaves, colorReset)
	fmt.Fprintf(w.out, "enemies=%d towers=%d shots=%d", row.Enemies, row.Towers, row.Projectiles)
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvent prints one game event. Fired shots are too frequent to be useful and are skipped.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	w.once.Do(w.printOverview)
	if e.Type == string(game.EventProjectileFired) || e.Type == string(game.EventEnemySpawned) {
		return nil
	}
	col, ok := eventColors[e.Type]
	if !ok {
		col = colorReset
	}
	w.stamp(e.Timestamp)
	fmt.Fprintf(w.out, "%s%s%s", col, e.Type, colorReset)
	if e.EntityID != 0 {
		fmt.Fprintf(w.out, " id=%d", e.EntityID)
	}
	if e.Wave != 0 {
		fmt.Fprintf(w.out, " wave=%d", e.Wave)
	}
	if e.Money != 0 || e.Score != 0 {
		fmt.Fprintf(w.out, " money=+%d score=+%d", e.Money, e.Score)
	}
	if e.Phase != "" {
		fmt.Fprintf(w.out, " phase=%s", e.Phase)
	}
	if e.Reason != "" {
		fmt.Fprintf(w.out, " reason=%s", e.Reason)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvents prints multiple events.
func (w *ColorStdoutWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}
