// Package server hosts the realtime poker service: the WebSocket session
// layer, the per-connection state projection and the admin HTTP surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samifarahneto/gamecartas/internal/cache"
	"github.com/samifarahneto/gamecartas/internal/holdem"
	"github.com/samifarahneto/gamecartas/internal/store"
)

// Server ties the HTTP router, the WebSocket upgrader and the session
// manager together.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	sessions *SessionManager
	metrics  *Metrics
	upgrader websocket.Upgrader
	http     *http.Server
}

// New builds the server. Store and cache are optional.
func New(cfg *Config, logger *log.Logger, st *store.Store, ca *cache.Cache) *Server {
	metrics := NewMetrics()
	gameCfg := holdem.Config{
		MaxPlayers: cfg.Game.MaxPlayers,
		BuyIn:      cfg.Game.BuyIn,
		SmallBlind: cfg.Game.SmallBlind,
		BigBlind:   cfg.Game.BigBlind,
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger.WithPrefix("server"),
		sessions: NewSessionManager(gameCfg, logger, st, ca, metrics),
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from the configured frontend origins; the CORS
			// middleware gates the admin API, the upgrader accepts any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.corsMiddleware())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/ws", s.handleWS)

	api := router.Group("/api")
	{
		api.GET("/tables", s.handleListTables)
		api.POST("/tables", s.handleCreateTable)
		api.GET("/tables/:id", s.handleGetTable)
	}

	s.http = &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: router,
	}
	return s
}

// Sessions exposes the session manager, mainly for tests.
func (s *Server) Sessions() *SessionManager { return s.sessions }

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		return s.http.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := s.cfg.Server.CORSOrigins
	allowAll := len(origins) == 1 && origins[0] == "*"

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			for _, o := range origins {
				if strings.EqualFold(o, origin) {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Vary", "Origin")
					break
				}
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.sessions.ListTables(c.Request.Context())})
}

type createTableRequest struct {
	Game    string `json:"game"`
	Name    string `json:"name"`
	TableID string `json:"table_id"`
}

func (s *Server) handleCreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	info, err := s.sessions.CreateTable(c.Request.Context(), req.Game, req.Name, req.TableID)
	if err != nil {
		if errors.Is(err, ErrTableExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleGetTable(c *gin.Context) {
	detail, ok := s.sessions.GetTable(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// handleWS upgrades the request and runs the connection until it drops.
// Identity comes from the query string: nick, game and table.
func (s *Server) handleWS(c *gin.Context) {
	nick := c.DefaultQuery("nick", "guest")
	game := c.DefaultQuery("game", "holdem")
	tableID := c.DefaultQuery("table", "new")

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Upgrade failed", "error", err)
		return
	}

	conn := NewConnection(ws, nick, game, tableID, s.logger)
	conn.Start()
	if err := s.sessions.Connect(conn, game, tableID); err != nil {
		// The session manager already sent the error frame and closed.
		return
	}

	conn.Run(
		func(data []byte) { s.sessions.HandleFrame(conn, data) },
		func() { s.sessions.Disconnect(conn) },
	)
}
