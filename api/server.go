package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/api/controllers"
	"github.com/hyeonkim-dev/docintake/api/middlewares"
	"github.com/hyeonkim-dev/docintake/auth"
	"github.com/hyeonkim-dev/docintake/intake"
	"github.com/hyeonkim-dev/docintake/jobstore"
	"github.com/hyeonkim-dev/docintake/registry"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
	"github.com/hyeonkim-dev/docintake/userstore"
)

// Deps bundles the wired services the HTTP layer routes to.
type Deps struct {
	Users    userstore.Store
	Tokens   *auth.TokenService
	Hub      *intake.Hub
	Router   *intake.Router
	Pipeline *intake.Pipeline
	Jobs     jobstore.Store
	Registry registry.Registry
	Broker   *intake.ProgressBroker
	Limits   types.LimitsConfig
}

// Server is the HTTP API server.
type Server struct {
	port   int
	deps   Deps
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

func NewServer(port int, deps Deps) *Server {
	return &Server{
		port: port,
		deps: deps,
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middlewares.AllowAllCORS())

	authCtrl := controllers.NewAuthController(s.deps.Users, s.deps.Tokens)
	userCtrl := controllers.NewUserController(s.deps.Users)
	wsCtrl := controllers.NewWSController(s.deps.Hub, s.deps.Router, s.deps.Limits)
	intakeCtrl := controllers.NewIntakeController(s.deps.Pipeline, s.deps.Jobs, s.deps.Broker, s.deps.Limits)
	progressCtrl := controllers.NewProgressController(s.deps.Broker)
	statusCtrl := controllers.NewStatusController(s.deps.Registry)

	requireAuth := middlewares.RequireAuth(s.deps.Tokens)

	engine.GET("/ws", wsCtrl.HandleConnect)

	authGroup := engine.Group("/api/auth/v1")
	{
		authGroup.POST("/register", authCtrl.HandleRegister)
		authGroup.POST("/login", authCtrl.HandleLogin)
		authGroup.POST("/logout", requireAuth, authCtrl.HandleLogout)
		authGroup.GET("/status", requireAuth, authCtrl.HandleStatus)
	}

	userGroup := engine.Group("/api/user/v1", requireAuth)
	{
		userGroup.GET("/me", userCtrl.HandleGetMe)
		userGroup.PATCH("/me", userCtrl.HandleUpdateMe)
		userGroup.POST("/change-password", userCtrl.HandleChangePassword)
	}

	intakeGroup := engine.Group("/api/intake/v1")
	{
		intakeGroup.POST("/upload", requireAuth, intakeCtrl.HandleBatchUpload)
		intakeGroup.GET("/progress", requireAuth, progressCtrl.HandleProgress)
		intakeGroup.GET("/jobs/:jobId", requireAuth, intakeCtrl.HandleGetJob)
		intakeGroup.GET("/connect-qr", controllers.HandleConnectQR)
		intakeGroup.GET("/status", statusCtrl.HandleStatus)
	}

	return engine
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: engine,
	}
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on http://0.0.0.0:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
