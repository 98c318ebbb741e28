package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/pdrpinto/firepath"
)

type point = [2]int

func toPoint(c firepath.Coord) point { return point{c.Row, c.Col} }

func toPoints(cs []firepath.Coord) []point {
	out := make([]point, len(cs))
	for i, c := range cs {
		out[i] = toPoint(c)
	}
	return out
}

func keysToPoints(m map[firepath.Coord]bool) []point {
	out := make([]point, 0, len(m))
	for c := range m {
		out = append(out, toPoint(c))
	}
	return out
}

type snapshot struct {
	Step    int      `json:"step"`
	Size    int      `json:"size"`
	Rows    []string `json:"rows"`
	Open    []point  `json:"open,omitempty"`
	Closed  []point  `json:"closed,omitempty"`
	Current point    `json:"current"`
	Start   point    `json:"start"`
	Goal    point    `json:"goal"`
	Done    bool     `json:"done"`
	Found   bool     `json:"found"`
	Path    []point  `json:"path,omitempty"`
	// FieldLayers is how many fire probability layers the gate has cached.
	FieldLayers int `json:"field_layers,omitempty"`
}

type evaluation struct {
	Planned  bool     `json:"planned"`
	Survived bool     `json:"survived"`
	Replans  int      `json:"replans"`
	Steps    int      `json:"steps"`
	Plan     []point  `json:"plan,omitempty"`
	Walked   []point  `json:"walked,omitempty"`
	Rows     []string `json:"rows"`
}

// session is one grid with an A* stepper walking it.
type session struct {
	grid    firepath.Grid
	field   *firepath.FireField
	stepper *firepath.Stepper
	created time.Time
}

// stepServer keeps sessions in memory. Steppers are not safe for concurrent
// use, so every handler holds mu while touching a session. Sessions older
// than ttl are dropped whenever a new one is created; ttl <= 0 keeps them
// until DELETE.
type stepServer struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	ttl      time.Duration
	logger   *slog.Logger
}

func newStepServer(logger *slog.Logger, ttl time.Duration) *stepServer {
	return &stepServer{sessions: make(map[uuid.UUID]*session), ttl: ttl, logger: logger}
}

// evictExpired removes sessions created more than ttl before now and returns
// how many were removed. The caller holds mu.
func (s *stepServer) evictExpired(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.created) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("sessions expired", slog.Int("evicted", evicted), slog.Int("remaining", len(s.sessions)))
	}
	return evicted
}

func (s *stepServer) routes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/sessions", s.handleCreate)
	router.GET("/sessions/:id/next", s.handleNext)
	router.GET("/sessions/:id/stream", s.handleStream)
	router.POST("/sessions/:id/evaluate", s.handleEvaluate)
	router.DELETE("/sessions/:id", s.handleDelete)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

func queryFloat(c *gin.Context, key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(c.Query(key), 64); err == nil {
		return v
	}
	return fallback
}

func (s *stepServer) handleCreate(c *gin.Context) {
	dim := queryInt(c, "dim", cfg.Grid.Dim)
	density := queryFloat(c, "density", cfg.Grid.Density)
	seed := int64(queryInt(c, "seed", int(cfg.Grid.Seed)))
	if dim < 1 || dim > 512 || density < 0 || density > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dim must be in [1, 512] and density in [0, 1]"})
		return
	}
	rng := newRand(seed)

	var (
		grid  firepath.Grid
		field *firepath.FireField
	)
	if c.Query("fire") != "" {
		grid = firepath.GenerateFire(dim, density, rng)
		f, err := firepath.NewFireField(grid, queryFloat(c, "spread", cfg.Fire.Spread))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		field = f
	} else {
		grid = firepath.Generate(dim, density, rng)
	}

	heuristic, err := firepath.HeuristicByName(c.DefaultQuery("heuristic", cfg.Search.Heuristic))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The stepper outlives this request, so it must not inherit its context.
	stepper, err := firepath.NewStepper(context.Background(), grid, grid.Start(), grid.Goal(), heuristic, searchOptions(field)...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.New()
	now := time.Now()
	s.mu.Lock()
	s.evictExpired(now)
	s.sessions[id] = &session{grid: grid, field: field, stepper: stepper, created: now}
	s.mu.Unlock()
	s.logger.Debug("session created", slog.String("id", id.String()), slog.Int("dim", dim))

	c.JSON(http.StatusCreated, gin.H{"id": id.String(), "size": dim, "rows": grid.Rows()})
}

func (s *stepServer) lookup(c *gin.Context) (*session, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, uuid.Nil, false
	}
	sess, ok := s.sessions[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, id, false
	}
	return sess, id, true
}

func (sess *session) snapshot(st firepath.StepSnapshot) snapshot {
	snap := snapshot{
		Step:    st.StepIndex,
		Size:    sess.grid.Size(),
		Rows:    sess.grid.Rows(),
		Open:    keysToPoints(st.Open),
		Closed:  keysToPoints(st.Closed),
		Current: toPoint(st.Current),
		Start:   toPoint(sess.grid.Start()),
		Goal:    toPoint(sess.grid.Goal()),
		Done:    st.Done,
		Found:   st.Found,
		Path:    toPoints(st.Path),
	}
	if sess.field != nil {
		snap.FieldLayers = sess.field.Len()
	}
	return snap
}

func (s *stepServer) handleNext(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _, ok := s.lookup(c)
	if !ok {
		return
	}
	st, err := sess.stepper.Step()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.snapshot(st))
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleStream upgrades to a websocket and pushes one snapshot per expansion
// until the search is done, at most rate snapshots per second.
func (s *stepServer) handleStream(c *gin.Context) {
	s.mu.Lock()
	sess, id, ok := s.lookup(c)
	s.mu.Unlock()
	if !ok {
		return
	}
	perSecond := queryFloat(c, "rate", 20)
	if perSecond <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rate must be positive"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("id", id.String()), slog.Any("error", err))
		return
	}
	defer ws.Close()

	ctx := c.Request.Context()
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		s.mu.Lock()
		st, err := sess.stepper.Step()
		snap := sess.snapshot(st)
		s.mu.Unlock()
		if err != nil {
			_ = ws.WriteJSON(gin.H{"error": err.Error()})
			return
		}
		if err := ws.WriteJSON(snap); err != nil {
			s.logger.Debug("stream client gone", slog.String("id", id.String()), slog.Any("error", err))
			return
		}
		if snap.Done {
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
			return
		}
	}
}

func (s *stepServer) handleEvaluate(c *gin.Context) {
	s.mu.Lock()
	sess, _, ok := s.lookup(c)
	s.mu.Unlock()
	if !ok {
		return
	}
	spread := queryFloat(c, "spread", cfg.Fire.Spread)
	limit := queryFloat(c, "limit", cfg.Fire.Limit)
	field, err := firepath.NewFireField(sess.grid, spread)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	plan, err := firepath.Search(ctx, sess.grid, sess.grid.Start(), sess.grid.Goal(), firepath.Manhattan,
		firepath.WithFireGate(field, limit),
		firepath.WithTieBreaking(cfg.Search.TieBreaking),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !plan.Found {
		c.JSON(http.StatusOK, evaluation{Rows: sess.grid.Rows()})
		return
	}
	eval, err := firepath.EvaluatePath(ctx, sess.grid, plan.Path, spread,
		firepath.WithRand(rand.New(rand.NewSource(int64(queryInt(c, "seed", 1))))),
		firepath.WithReplanLimit(cfg.Fire.ReplanLimit),
		firepath.WithEvalLogger(s.logger),
	)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, firepath.ErrInvalidSpread) || errors.Is(err, firepath.ErrInvalidLimit) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, evaluation{
		Planned:  true,
		Survived: eval.Survived,
		Replans:  eval.Replans,
		Steps:    eval.Steps,
		Plan:     toPoints(plan.Path),
		Walked:   toPoints(eval.Walked),
		Rows:     eval.Grid.Rows(),
	})
}

func (s *stepServer) handleDelete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, id, ok := s.lookup(c)
	if !ok {
		return
	}
	delete(s.sessions, id)
	c.Status(http.StatusNoContent)
}

func newRouter(server *stepServer, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("firepath"))
	server.routes(router)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
	return router
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics, shutdownMetrics, err := setupPrometheus()
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(newStepServer(slog.Default(), cfg.Serve.SessionTTL), metrics)
	srv := &http.Server{Addr: cfg.Serve.Addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("serving", slog.String("addr", cfg.Serve.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
