package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/game"
	"towerdefense-sim/internal/logging"
	"towerdefense-sim/internal/sim"
	"towerdefense-sim/internal/telemetry"
)

// Simulation is the part of *sim.Simulator the admin UI drives.
type Simulation interface {
	sim.Controller
	RunID() string
	Level() int
	Campaign() *config.Campaign
	RecentEvents() []telemetry.EventRow
	Subscribe() (<-chan game.Snapshot, func())
}

const (
	defaultEventLimit  = 50
	streamWriteTimeout = 2 * time.Second
	shutdownTimeout    = 5 * time.Second
)

type Server struct {
	Sim Simulation
	// OriginPatterns lists extra hosts allowed to open /stream. Same-origin
	// clients are always accepted.
	OriginPatterns []string
	tpl            *template.Template
}

//go:embed templates/index.html
var content embed.FS

func NewServer(s Simulation) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Sim: s, tpl: tpl}
}

// Handler returns the admin routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("POST /start", s.handleControl(sim.Controller.Start))
	mux.HandleFunc("POST /next-level", s.handleControl(sim.Controller.NextLevel))
	mux.HandleFunc("POST /restart", s.handleControl(sim.Controller.Restart))
	mux.HandleFunc("POST /place", s.handlePlace)
	return mux
}

// Start serves the admin UI on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.FromContext(ctx).Info("admin UI listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		RunID    string
		Level    int
		Snapshot game.Snapshot
		Events   []telemetry.EventRow
		Width    float64
		Height   float64
	}{
		RunID:    s.Sim.RunID(),
		Level:    s.Sim.Level(),
		Snapshot: s.Sim.Snapshot(),
		Events:   lastEvents(s.Sim.RecentEvents(), defaultEventLimit),
	}
	if c := s.Sim.Campaign(); c != nil {
		data.Width, data.Height = c.Board.Width, c.Board.Height
	}
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, lastEvents(s.Sim.RecentEvents(), limit))
}

func (s *Server) handleControl(action func(sim.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(s.Sim); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}
	if err := s.Sim.PlaceTower(x, y); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStream pushes every published snapshot to a websocket client as JSON.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		log.Error("failed to accept", "err", err)
		return
	}
	defer conn.CloseNow()
	// Clients only listen; CloseRead handles control frames and cancels on close.
	ctx = conn.CloseRead(ctx)

	snaps, cancel := s.Sim.Subscribe()
	defer cancel()
	if err := writeSnapshot(ctx, conn, s.Sim.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snap := <-snaps:
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				log.Debug("stream closed", "err", err)
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func lastEvents(rows []telemetry.EventRow, limit int) []telemetry.EventRow {
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrRunOver), errors.Is(err, game.ErrNotIdle),
		errors.Is(err, sim.ErrNotFinished), errors.Is(err, sim.ErrLastLevel):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
