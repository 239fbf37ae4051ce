package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wconnect/internal/domain"
	"wconnect/internal/observability"
)

const helloText = "Hello World, this is WalletConnect v1.0"

// ServerConfig configures the bridge server.
type ServerConfig struct {
	Name        string
	CORSOrigins []string
	QueueTTL    time.Duration
	// PruneInterval is how often expired held frames are dropped.
	PruneInterval time.Duration
	WriteTimeout  time.Duration
	Logger        *zerolog.Logger
}

// Server is a pub/sub relay over WebSockets.
type Server struct {
	cfg      ServerConfig
	router   *gin.Engine
	upgrader websocket.Upgrader
	hub      *hub
	log      zerolog.Logger
	started  time.Time
}

// NewServer builds the router and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Name == "" {
		cfg.Name = "bridge"
	}
	if cfg.QueueTTL <= 0 {
		cfg.QueueTTL = 24 * time.Hour
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Minute
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	origins := normalizeOrigins(cfg.CORSOrigins)
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.AccessLog(logger, cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins:    origins,
		AllowAllOrigins: len(origins) == 0,
		AllowMethods:    []string{"GET", "POST"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:    cfg,
		router: r,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		hub:     newHub(cfg.QueueTTL),
		log:     logger.With().Str("component", "bridge").Logger(),
		started: time.Now(),
	}
	s.routes()
	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	stopPruning, err := s.startPruning()
	if err != nil {
		return err
	}
	defer stopPruning()

	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("bridge listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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

// startPruning schedules the removal of expired held frames.
func (s *Server) startPruning() (stop func(), err error) {
	sched := gocron.NewScheduler(time.UTC)
	if _, err := sched.Every(s.cfg.PruneInterval).SingletonMode().Do(func() {
		if n := s.hub.prune(); n > 0 {
			s.log.Debug().Int("frames", n).Msg("pruned expired frames")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule pruning: %w", err)
	}
	sched.StartAsync()
	return sched.Stop, nil
}

func (s *Server) routes() {
	s.router.GET("/", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			s.serveWS(c)
			return
		}
		c.String(http.StatusOK, helloText)
	})
	s.router.GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, helloText)
	})
	s.router.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        s.cfg.Name,
			"description": "WalletConnect bridge",
			"version":     Version,
		})
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(s.started).String(),
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("upgrade failed")
		return
	}
	closed := observability.ConnectionOpened()
	p := &peer{conn: conn}
	defer func() {
		s.hub.drop(p)
		_ = conn.Close()
		closed()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("peer read failed")
			}
			return
		}
		var msg domain.SocketMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Topic == "" {
			s.log.Debug().Msg("dropping malformed frame")
			continue
		}
		observability.RecordFrame(msg.Type)

		switch msg.Type {
		case domain.FrameSub:
			for _, held := range s.hub.subscribe(p, msg.Topic) {
				if err := p.send(held, s.cfg.WriteTimeout); err != nil {
					return
				}
				observability.RecordDeliveries(1)
			}
		case domain.FramePub:
			targets := s.hub.publish(p, msg)
			if len(targets) == 0 {
				observability.RecordQueued()
				continue
			}
			delivered := 0
			for _, t := range targets {
				if err := t.send(msg, s.cfg.WriteTimeout); err != nil {
					s.log.Debug().Err(err).Msg("delivery failed")
					continue
				}
				delivered++
			}
			observability.RecordDeliveries(delivered)
		case domain.FrameAck:
		default:
			s.log.Debug().Str("type", msg.Type).Msg("unknown frame type")
		}
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o != "" && o != "*" {
			out = append(out, o)
		}
	}
	return out
}
