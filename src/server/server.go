package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"exchange-chat/src/helpers"
	"exchange-chat/src/interfaces"
	"exchange-chat/src/logger"
	"exchange-chat/src/models"
	"exchange-chat/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// -----------------------------------------------------------------------------
// ChatServer
// -----------------------------------------------------------------------------

type ChatServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server

	registry  *ConnectionRegistry
	sessions  *SessionHandler
	collector interfaces.IRateCollector
	upgrader  websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewChatServer(cfg *models.MConfig, log *logger.Logger, collector interfaces.IRateCollector,
	audit interfaces.IAuditLog, identities helpers.IdentityGenerator) *ChatServer {

	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	registry := NewConnectionRegistry(identities, log.Named("Registry"))
	if cfg.WebSocket.WriteWaitSeconds > 0 {
		registry.SendTimeout = time.Duration(cfg.WebSocket.WriteWaitSeconds) * time.Second
	}

	s := &ChatServer{
		Config:    cfg,
		Logger:    log,
		engine:    gin.Default(),
		registry:  registry,
		sessions:  NewSessionHandler(ctx, cfg, registry, collector, audit, log.Named("Session")),
		collector: collector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ChatServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/rates", s.getRates)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the engine, mainly for httptest.
func (s *ChatServer) Handler() http.Handler {
	return s.engine
}

func (s *ChatServer) Registry() *ConnectionRegistry {
	return s.registry
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks serving until Stop is called.
func (s *ChatServer) Start() error {
	addr := net.JoinHostPort(s.Config.Host, strconv.Itoa(s.Config.Port))
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	s.Logger.Info("Starting server on ws://%s/ws", addr)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return helpers.NewNetworkError("listen on "+addr, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels pending fetches, stops accepting connections and closes the
// open websockets; hijacked connections are not covered by Shutdown.
func (s *ChatServer) Stop(ctx context.Context) error {
	s.cancel()

	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.registry.CloseAll()
	return err
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

func (s *ChatServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := NewClient(conn, s.Config.WebSocket, s.Logger.Named("Client"))
	client.prepareRead()

	go client.writePump()
	go func() {
		defer client.Close()
		s.sessions.Serve(client, client.readMessage)
	}()
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ChatServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.registry.Count(),
	})
}

// -----------------------------------------------------------------------------

// getRates answers the same question as the chat command, as JSON.
func (s *ChatServer) getRates(c *gin.Context) {
	days := 1
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a number"})
			return
		}
		days = n
	}

	currencies := s.sessions.DefaultCurrencies
	if raw := c.Query("currencies"); raw != "" {
		currencies = lo.Compact(lo.Map(strings.Split(raw, ","), func(code string, _ int) string {
			return strings.ToUpper(strings.TrimSpace(code))
		}))
	}

	days, truncated := utils.ClampDays(days, s.sessions.MaxDays)
	report := s.collector.Collect(c.Request.Context(), days, currencies)

	body := gin.H{
		"days":       days,
		"currencies": currencies,
		"report":     report,
	}
	if truncated {
		body["warning"] = utils.MaxDaysWarning
	}
	c.JSON(http.StatusOK, body)
}
