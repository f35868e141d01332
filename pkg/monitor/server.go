package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/powerpolicy/powermgr-go/pkg/runninglock"
	"github.com/powerpolicy/powermgr-go/pkg/statemachine"
	"golang.org/x/time/rate"
)

// Defaults for the event stream.
const (
	DefaultEventRate  = 200
	DefaultEventBurst = 50
	DefaultSendBuffer = 64
)

// ErrServerClosed is returned by Serve after Close.
var ErrServerClosed = errors.New("monitor: server closed")

// Source is the read side of the power service.
type Source interface {
	Snapshot() statemachine.Snapshot
	LockRecords() []runninglock.RecordInfo
	Dump() string
}

// Config configures a Server.
type Config struct {
	// Source provides the data for the read endpoints. Required.
	Source Source

	// Version is reported by /api/v1/health.
	Version string

	// EventRate and EventBurst bound the events per second delivered to a
	// single client. Events above the limit are skipped for that client.
	EventRate  float64
	EventBurst int

	// SendBuffer is the per-client queue length. A client whose queue is
	// full is disconnected.
	SendBuffer int

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Server is the diagnostics HTTP server.
type Server struct {
	config   Config
	engine   *gin.Engine
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	server  *http.Server
	closed  bool

	logger *slog.Logger
}

// NewServer creates a Server. It does not listen until Serve is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("monitor: source is required")
	}
	if cfg.EventRate <= 0 {
		cfg.EventRate = DefaultEventRate
	}
	if cfg.EventBurst <= 0 {
		cfg.EventBurst = DefaultEventBurst
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		config:  cfg,
		engine:  gin.New(),
		clients: make(map[*client]struct{}),
		logger:  cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Diagnostics are read-only and served to local tooling.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/state", s.handleState)
	v1.GET("/dump", s.handleDump)
	v1.GET("/locks", s.handleLocks)
	v1.GET("/events", s.handleEvents)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// Serve accepts connections on ln until ctx is cancelled or Close is
// called. It returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	s.debugLog("monitor listening", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close shuts down the listener and disconnects every event client.
// It is safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.server
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// ClientCount returns the number of connected event clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleHealth(c *gin.Context) {
	version := s.config.Version
	if version == "" {
		version = "dev"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
}

func (s *Server) handleState(c *gin.Context) {
	snap := s.config.Source.Snapshot()
	c.JSON(http.StatusOK, stateResponse{
		State:          snap.State.String(),
		Reason:         snap.Reason.String(),
		Display:        snap.Display.String(),
		DisplayOffTime: snap.DisplayOffTime,
		SleepTime:      snap.SleepTime,
		Times:          snap.Times,
	})
}

func (s *Server) handleDump(c *gin.Context) {
	c.String(http.StatusOK, s.config.Source.Dump())
}

func (s *Server) handleLocks(c *gin.Context) {
	records := s.config.Source.LockRecords()
	out := make([]lockResponse, 0, len(records))
	for _, r := range records {
		out = append(out, lockResponse{RecordInfo: r, TypeName: r.Type.String(), StateName: r.State.String()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.debugLog("websocket upgrade failed", "error", err)
		return
	}

	cl := newClient(conn, s.config.SendBuffer, rate.NewLimiter(rate.Limit(s.config.EventRate), s.config.EventBurst))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cl.close()
		return
	}
	s.clients[cl] = struct{}{}
	s.mu.Unlock()
	s.debugLog("event client connected", "remote", conn.RemoteAddr().String())

	go cl.writePump()
	cl.readPump()

	s.removeClient(cl)
	s.debugLog("event client disconnected", "remote", conn.RemoteAddr().String())
}

func (s *Server) removeClient(cl *client) {
	s.mu.Lock()
	delete(s.clients, cl)
	s.mu.Unlock()
	cl.close()
}

func (s *Server) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
