package sim

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/telemetry"
)

// Controller steers a running campaign. *Simulator implements it.
type Controller interface {
	Start() error
	PlaceTower(x, y float64) error
	NextLevel() error
	Restart() error
	Snapshot() game.Snapshot
}

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// eventMsg carries a game event log line and row data.
type eventMsg struct {
	line string
	row  telemetry.EventRow
}

// stateMsg carries the per-tick run status.
type stateMsg struct{ telemetry.StateRow }

// entitiesMsg carries the entity positions of one tick.
type entitiesMsg struct{ rows []telemetry.EntityRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setControllerMsg struct{ ctrl Controller }

const (
	maxLogLines        = 1000
	killHistorySeconds = 5
	placementOffset    = 60.0
)

// TUIWriter renders the run using a bubbletea TUI and forwards key bindings to a Controller.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(c *config.Campaign) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(c), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.StateRow) error {
	w.program.Send(stateMsg{row})
	return nil
}

// WriteEvent implements EventWriter. Fired shots and spawns only feed the counters.
func (w *TUIWriter) WriteEvent(e telemetry.EventRow) error {
	col, ok := eventColors[e.Type]
	if !ok {
		col = colorReset
	}
	line := fmt.Sprintf("%s[%s]%s %stick=%d%s %s%s%s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, e.Tick, colorReset,
		col, e.Type, colorReset)
	if e.EntityID != 0 {
		line += fmt.Sprintf(" id=%d", e.EntityID)
	}
	if e.TargetID != 0 {
		line += fmt.Sprintf(" target=%d", e.TargetID)
	}
	if e.Wave != 0 {
		line += fmt.Sprintf(" %swave=%d%s", colorCyan, e.Wave, colorReset)
	}
	if e.Money != 0 || e.Score != 0 {
		line += fmt.Sprintf(" %smoney=%d%s %sscore=%d%s", colorYellow, e.Money, colorReset, colorGreen, e.Score, colorReset)
	}
	if e.Phase != "" {
		line += fmt.Sprintf(" %sphase=%s%s", colorMagenta, e.Phase, colorReset)
	}
	if e.Reason != "" {
		line += fmt.Sprintf(" reason=%s", e.Reason)
	}
	w.program.Send(eventMsg{line: line, row: e})
	return nil
}

// WriteEvents implements the batch event writer.
func (w *TUIWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		_ = w.WriteEvent(r)
	}
	return nil
}

// WriteEntities feeds the board map.
func (w *TUIWriter) WriteEntities(rows []telemetry.EntityRow) error {
	w.program.Send(entitiesMsg{rows: rows})
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetController registers the campaign the key bindings act on.
func (w *TUIWriter) SetController(ctrl Controller) {
	w.program.Send(setControllerMsg{ctrl: ctrl})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	campaign       *config.Campaign
	table          table.Model
	vp             viewport.Model
	logs           []string
	state          telemetry.StateRow
	haveState      bool
	admin          bool
	wrap           bool
	autoscroll     bool
	header         string
	headerHeight   int
	height         int
	ctrl           Controller
	placeInput     textinput.Model
	placeDialog    bool
	summary        bool
	help           bool
	showLevels     bool
	showMap        bool
	path           []game.Point
	entities       []telemetry.EntityRow
	eventCounts    map[string]int
	killHistory    []int
	lastKillSecond time.Time
}

func newTUIModel(c *config.Campaign) tuiModel {
	cols := []table.Column{
		{Title: "Config", Width: 18},
		{Title: "Value", Width: 8},
		{Title: "Config", Width: 18},
		{Title: "Value", Width: 8},
	}
	var rows []table.Row
	if c != nil {
		rows = []table.Row{
			{"Start Health", strconv.Itoa(c.Player.StartHealth), "Tower Range", fmt.Sprintf("%.0f", c.Tower.Range)},
			{"Start Money", strconv.Itoa(c.Player.StartMoney), "Fire Rate (/s)", fmt.Sprintf("%.1f", c.Tower.FireRate)},
			{"Money per Level", strconv.Itoa(c.Player.MoneyPerLevel), "Tower Cost", strconv.Itoa(c.Tower.Cost)},
			{"Projectile Damage", strconv.Itoa(c.Projectile.Damage), "Projectile Speed", fmt.Sprintf("%.0f", c.Projectile.Speed)},
		}
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		campaign:    c,
		table:       t,
		vp:          viewport.New(0, 0),
		autoscroll:  true,
		showLevels:  true,
		eventCounts: make(map[string]int),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tableWidth := msg.Width
		if m.showLevels {
			tableWidth = msg.Width / 2
		}
		m.table.SetWidth(tableWidth)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.refreshHeader()
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.placeDialog {
			switch msg.Type {
			case tea.KeyEnter:
				m.placeDialog = false
				m.updateViewportHeight()
				x, y, err := parsePlacement(m.placeInput.Value())
				if err != nil {
					m.appendLog(fmt.Sprintf("%splacement: %v%s", colorRed, err, colorReset))
					return m, nil
				}
				return m, m.control("place", func(c Controller) error { return c.PlaceTower(x, y) })
			case tea.KeyEsc:
				m.placeDialog = false
				m.updateViewportHeight()
			default:
				var cmd tea.Cmd
				m.placeInput, cmd = m.placeInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.refreshHeader()
			m.updateViewportHeight()
			return m, nil
		case "a":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "s":
			return m, m.control("start", Controller.Start)
		case "n":
			return m, m.control("next level", Controller.NextLevel)
		case "r":
			return m, m.control("restart", Controller.Restart)
		case "p":
			m.placeInput = textinput.New()
			m.placeInput.Placeholder = "x,y"
			m.placeInput.SetValue(m.suggestPlacement())
			m.placeInput.CursorEnd()
			m.placeInput.Focus()
			m.placeDialog = true
			m.updateViewportHeight()
			return m, nil
		case "l":
			m.showLevels = !m.showLevels
			if m.showLevels {
				m.table.SetWidth(m.vp.Width / 2)
			} else {
				m.table.SetWidth(m.vp.Width)
			}
			m.refreshHeader()
			m.updateViewportHeight()
			return m, nil
		case "m":
			m.showMap = !m.showMap
			m.updateViewportHeight()
			return m, nil
		case "t":
			m.summary = !m.summary
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.appendLog(msg.line)
	case eventMsg:
		m.countEvent(msg.row)
		typ := game.EventType(msg.row.Type)
		if typ == game.EventProjectileFired || typ == game.EventEnemySpawned {
			return m, nil
		}
		m.appendLog(msg.line)
	case stateMsg:
		// A new level or a restart resets the tick counter and may change the path.
		if !m.haveState || msg.Level != m.state.Level || msg.Tick < m.state.Tick {
			m.refreshPath()
		}
		m.state = msg.StateRow
		m.haveState = true
	case entitiesMsg:
		m.entities = msg.rows
	case adminMsg:
		m.admin = msg.active
	case setControllerMsg:
		m.ctrl = msg.ctrl
		m.refreshPath()
	}
	return m, nil
}

// control runs action against the controller outside the update loop and logs failures.
func (m tuiModel) control(name string, action func(Controller) error) tea.Cmd {
	ctrl := m.ctrl
	if ctrl == nil {
		return func() tea.Msg {
			return logMsg{line: fmt.Sprintf("%s%s: no simulator attached%s", colorRed, name, colorReset)}
		}
	}
	return func() tea.Msg {
		if err := action(ctrl); err != nil {
			return logMsg{line: fmt.Sprintf("%s%s: %v%s", colorRed, name, err, colorReset)}
		}
		return nil
	}
}

func (m *tuiModel) refreshPath() {
	if m.ctrl == nil {
		return
	}
	m.path = m.ctrl.Snapshot().Path
}

func (m *tuiModel) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshViewport()
}

func (m *tuiModel) countEvent(row telemetry.EventRow) {
	if m.eventCounts == nil {
		m.eventCounts = make(map[string]int)
	}
	m.eventCounts[row.Type]++
	if row.Type != string(game.EventEnemyDefeated) {
		return
	}
	second := row.Timestamp.Truncate(time.Second)
	switch {
	case m.lastKillSecond.IsZero():
		m.lastKillSecond = second
		m.killHistory = append(m.killHistory, 1)
	case !second.After(m.lastKillSecond):
		if len(m.killHistory) == 0 {
			m.killHistory = append(m.killHistory, 1)
		} else {
			m.killHistory[len(m.killHistory)-1]++
		}
	default:
		gap := int(second.Sub(m.lastKillSecond).Seconds())
		for i := 0; i < gap-1; i++ {
			m.killHistory = append(m.killHistory, 0)
		}
		m.killHistory = append(m.killHistory, 1)
		m.lastKillSecond = second
	}
	if len(m.killHistory) > killHistorySeconds {
		m.killHistory = m.killHistory[len(m.killHistory)-killHistorySeconds:]
	}
}

// suggestPlacement proposes a spot beside the first path segment, or the board center.
func (m tuiModel) suggestPlacement() string {
	if len(m.path) >= 2 {
		a, b := m.path[0], m.path[1]
		mid := game.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		if a.Y == b.Y {
			mid.Y -= placementOffset
			if mid.Y < 0 {
				mid.Y += 2 * placementOffset
			}
		} else {
			mid.X += placementOffset
		}
		return fmt.Sprintf("%.0f,%.0f", mid.X, mid.Y)
	}
	if m.campaign != nil {
		return fmt.Sprintf("%.0f,%.0f", m.campaign.Board.Width/2, m.campaign.Board.Height/2)
	}
	return "0,0"
}

func (m *tuiModel) refreshHeader() {
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	dialogHeight := 0
	if m.placeDialog {
		dialogHeight = 2
	}
	h := m.height - m.headerHeight - bottomHeight - dialogHeight - 3
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	body := m.vp.View()
	if m.showMap {
		body = m.renderMap()
	}
	sections := []string{m.header, divider, body}
	if m.placeDialog {
		sections = append(sections, divider, fmt.Sprintf("Place Tower (x,y) - Enter to buy, Esc to cancel: %s", m.placeInput.View()))
	}
	sections = append(sections, divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	tableView := m.table.View()
	if !m.showLevels {
		return tableView
	}
	levels := renderLevelTree(m.campaign, m.wrap, m.vp.Width/2-1)
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, levels)
}

func renderLevelTree(c *config.Campaign, wrap bool, width int) string {
	var b strings.Builder
	b.WriteString("Levels\n")
	if c == nil {
		return strings.TrimRight(b.String(), "\n")
	}
	for i, l := range c.Levels {
		prefix := "├─"
		if i == len(c.Levels)-1 {
			prefix = "└─"
		}
		enemies := 0
		for _, w := range l.Waves {
			enemies += w.Count
		}
		path := fmt.Sprintf("turns=%d", l.Path.Turns)
		if len(l.Path.Points) > 0 {
			path = fmt.Sprintf("fixed=%d pts", len(l.Path.Points))
		}
		line := fmt.Sprintf("%s %s%d%s %s waves=%d enemies=%d victory=%d %s",
			prefix, colorCyan, l.Number, colorReset, l.Enemy, len(l.Waves), enemies, l.VictoryScore, path)
		if wrap && width > 0 {
			line = wordwrap.String(line, width)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) renderSummary() string {
	fired := m.eventCounts[string(game.EventProjectileFired)]
	missed := m.eventCounts[string(game.EventProjectileMissed)]
	kills := m.eventCounts[string(game.EventEnemyDefeated)]
	leaks := m.eventCounts[string(game.EventEnemyLeaked)]
	rejected := m.eventCounts[string(game.EventPlacementRejected)]
	accuracy := 0.0
	if fired > 0 {
		accuracy = float64(fired-missed) / float64(fired) * 100
	}
	var trendParts []string
	for _, v := range m.killHistory {
		trendParts = append(trendParts, strconv.Itoa(v))
	}
	summary := fmt.Sprintf("%sSUMMARY%s %skills=%d%s %sleaks=%d%s %sshots=%d%s %shit=%.0f%%%s %srejected=%d%s",
		colorBlue, colorReset,
		colorGreen, kills, colorReset,
		colorRed, leaks, colorReset,
		colorCyan, fired, colorReset,
		colorMagenta, accuracy, colorReset,
		colorYellow, rejected, colorReset)
	if len(trendParts) > 0 {
		summary = fmt.Sprintf("%s %skills/s=[%s]%s", summary, colorYellow, strings.Join(trendParts, ","), colorReset)
	}
	return summary
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	s := m.state
	phaseColor := colorGreen
	switch game.Phase(s.Phase) {
	case game.PhaseDefeat:
		phaseColor = colorRed
	case game.PhaseVictory:
		phaseColor = colorMagenta
	case game.PhaseIdle:
		phaseColor = colorGray
	}
	state := fmt.Sprintf("%sSTATE%s %slevel=%d%s %s%s%s %shp=%d%s %s$%d%s %sscore=%d/%d%s %swave=%d/%d%s %sleft=%d%s",
		colorBlue, colorReset,
		colorWhite, s.Level, colorReset,
		phaseColor, s.Phase, colorReset,
		colorRed, s.Health, colorReset,
		colorYellow, s.Money, colorReset,
		colorGreen, s.Score, s.VictoryScore, colorReset,
		colorCyan, s.Wave, s.TotalWaves, colorReset,
		colorGray, s.ToSpawn, colorReset)
	line := fmt.Sprintf("%s | Admin UI %s | Wrap %s | Scroll %s | Summary %s | Levels %s | Map %s",
		state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.summary), indicator(m.showLevels), indicator(m.showMap))
	if m.summary {
		return fmt.Sprintf("%s\n%s", m.renderSummary(), line)
	}
	return line
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" s  start the level",
		" p  place tower (x,y)",
		" n  next level after a victory",
		" r  restart the level on a new path",
		" m  toggle board map",
		" t  toggle summary footer",
		" l  toggle level list",
		" w  toggle wrap",
		" a  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}

// healthBG colors an enemy by the fraction of health it has left.
func healthBG(health, maxHealth int) string {
	if maxHealth <= 0 {
		return bgGreen
	}
	frac := float64(health) / float64(maxHealth)
	switch {
	case frac < 0.34:
		return bgRed
	case frac < 0.67:
		return bgYellow
	default:
		return bgGreen
	}
}

func (m tuiModel) enemyMaxHealth() int {
	if m.campaign == nil {
		return 0
	}
	lvl, err := m.campaign.Level(m.state.Level)
	if err != nil {
		return 0
	}
	for _, e := range m.campaign.Enemies {
		if e.Kind == lvl.Enemy {
			return e.MaxHealth
		}
	}
	return 0
}

// renderMap draws the board scaled into the space left by the header and footer.
func (m tuiModel) renderMap() string {
	width := m.vp.Width
	bottomHeight := lipgloss.Height(m.renderBottom())
	mapHeight := m.height - m.headerHeight - bottomHeight - 4
	if mapHeight < 1 {
		mapHeight = 1
	}
	if width < 1 || m.campaign == nil || m.campaign.Board.Width <= 0 || m.campaign.Board.Height <= 0 {
		return "No board data"
	}
	sx := float64(width-1) / m.campaign.Board.Width
	sy := float64(mapHeight-1) / m.campaign.Board.Height
	cell := func(p game.Point) (int, int, bool) {
		x := int(math.Round(p.X * sx))
		y := int(math.Round(p.Y * sy))
		return x, y, x >= 0 && x < width && y >= 0 && y < mapHeight
	}

	grid := make([][]string, mapHeight)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = "."
		}
		grid[i] = row
	}
	for i := 1; i < len(m.path); i++ {
		ax, ay, _ := cell(m.path[i-1])
		bx, by, _ := cell(m.path[i])
		steps := max(abs(bx-ax), abs(by-ay), 1)
		for s := 0; s <= steps; s++ {
			x := ax + (bx-ax)*s/steps
			y := ay + (by-ay)*s/steps
			if x >= 0 && x < width && y >= 0 && y < mapHeight {
				grid[y][x] = colorGray + "#" + colorReset
			}
		}
	}
	maxHealth := m.enemyMaxHealth()
	for _, e := range m.entities {
		x, y, ok := cell(game.Point{X: e.X, Y: e.Y})
		if !ok {
			continue
		}
		switch e.Kind {
		case telemetry.KindTower:
			grid[y][x] = colorCyan + "T" + colorReset
		case telemetry.KindEnemy:
			grid[y][x] = healthBG(e.Health, maxHealth) + colorWhite + "E" + colorReset
		case telemetry.KindProjectile:
			grid[y][x] = colorYellow + "*" + colorReset
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "board %.0fx%.0f\n", m.campaign.Board.Width, m.campaign.Board.Height)
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	legend := []string{
		colorGray + "#" + colorReset + "=path",
		colorCyan + "T" + colorReset + "=tower",
		colorYellow + "*" + colorReset + "=shot",
		fmt.Sprintf("%sE%s=healthy %sE%s=hurt %sE%s=low", bgGreen, colorReset, bgYellow, colorReset, bgRed, colorReset),
	}
	b.WriteString(strings.Join(legend, " "))
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var errPlacementFormat = errors.New("expected x,y")

func parsePlacement(val string) (float64, float64, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return 0, 0, errPlacementFormat
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
