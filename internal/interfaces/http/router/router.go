// Package router assembles the middleware pipeline and the route table and
// runs the HTTP server.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/internal/config"
	"github.com/quarkgate/apikit/internal/infrastructure/crypto"
	"github.com/quarkgate/apikit/internal/infrastructure/monitoring"
	"github.com/quarkgate/apikit/internal/interfaces/http/handlers"
	"github.com/quarkgate/apikit/internal/interfaces/http/middleware"
	"github.com/quarkgate/apikit/pkg/constants"
	"github.com/quarkgate/apikit/pkg/logger"
)

// Router owns the gin engine and the HTTP server lifecycle.
type Router struct {
	engine  *gin.Engine
	config  *config.Config
	logger  logger.Logger
	metrics *monitoring.Metrics
	server  *http.Server
}

// NewRouter assembles the full pipeline. The middleware order is the
// contract: request id first so everything downstream can log it, then the
// access log, security headers, error normalization, CORS, metrics, the
// time limiter and finally basic auth guarding the protected group.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	tokenEngine *crypto.Engine,
	metrics *monitoring.Metrics,
) (*Router, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	slots, err := cfg.TimeLimiter.TimeSlots()
	if err != nil {
		return nil, err
	}

	chain := middleware.NewChain(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.SecurityHeaders(cfg.SecurityHeaders.MiddlewareConfig()),
		middleware.HTTPErrors(middleware.HTTPErrorsConfig{BodyMaxSize: cfg.HTTPErrors.BodyMaxSize}),
		middleware.Cors(cfg.Cors.MiddlewareConfig()),
	)
	if cfg.Metrics.Enabled {
		sampler := monitoring.NewSystemSampler(cfg.Metrics.MountPoints)
		chain = chain.Append(middleware.Metrics(metrics, sampler, cfg.Metrics.ServiceName, log))
	}
	chain = chain.Append(middleware.TimeLimiter(slots))
	chain.Apply(engine)

	r := &Router{
		engine:  engine,
		config:  cfg,
		logger:  log.WithComponent("router"),
		metrics: metrics,
	}
	r.setupRoutes(tokenEngine)

	return r, nil
}

func (r *Router) setupRoutes(tokenEngine *crypto.Engine) {
	healthHandler := handlers.NewHealthHandler(r.config.Server.Version)
	tokenHandler := handlers.NewTokenHandler(tokenEngine, r.config.JWT.Issuer, r.logger)

	r.engine.GET("/health/live", healthHandler.Live)
	r.engine.GET("/health/ready", healthHandler.Ready)

	if r.config.Metrics.Enabled {
		r.engine.GET(constants.MetricsPath, gin.WrapH(r.metrics.Handler()))
	}
	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")

	auth := v1.Group("/auth")
	if r.config.BasicAuth.Enabled {
		auth.Use(middleware.BasicAuth(r.config.BasicAuth.Username, r.config.BasicAuth.Password))
	}
	{
		auth.POST("/token", tokenHandler.Issue)
		auth.POST("/refresh", tokenHandler.Refresh)
		auth.GET("/introspect", tokenHandler.Introspect)
	}
}

// Handler exposes the assembled engine, mainly for tests.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Start runs the HTTP server until the listener fails or Stop is called.
func (r *Router) Start() error {
	r.server = &http.Server{
		Addr:           r.config.Server.Addr(),
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(r.config.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting HTTP server",
		logger.String("address", r.server.Addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}

	r.logger.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}
