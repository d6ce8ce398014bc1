package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/opendrive/drivevalue/internal/apiconfig"
	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/catalog"
	catalogdomain "github.com/opendrive/drivevalue/internal/catalog/domain"
	"github.com/opendrive/drivevalue/internal/config"
	"github.com/opendrive/drivevalue/internal/evalue8"
	"github.com/opendrive/drivevalue/internal/observability"
	obsmiddleware "github.com/opendrive/drivevalue/internal/observability/logger"
	obsmetrics "github.com/opendrive/drivevalue/internal/observability/metrics"
	obstracing "github.com/opendrive/drivevalue/internal/observability/tracing"
	"github.com/opendrive/drivevalue/internal/ratelimit"
	"github.com/opendrive/drivevalue/internal/valuation"
	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	apiconfig.Module,
	evalue8.Module,
	catalog.Module,
	valuation.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	configSvc        apiconfigdomain.Service
	catalogSvc       catalogdomain.Service
	valuationSvc     valuationdomain.Service
	client           *evalue8.Client
	valuationLimiter *ratelimit.ValuationLimiter
	obsMetrics       *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	ConfigSvc        apiconfigdomain.Service
	CatalogSvc       catalogdomain.Service
	ValuationSvc     valuationdomain.Service
	Client           *evalue8.Client
	ValuationLimiter *ratelimit.ValuationLimiter `optional:"true"`
	ObsMetrics       *obsmetrics.Metrics         `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		configSvc:        p.ConfigSvc,
		catalogSvc:       p.CatalogSvc,
		valuationSvc:     p.ValuationSvc,
		client:           p.Client,
		valuationLimiter: p.ValuationLimiter,
		obsMetrics:       p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/catalog/makes", s.ListMakes)
	api.GET("/catalog/models", s.ListModels)
	api.GET("/catalog/years", s.ListYears)
	api.GET("/catalog/accessories", s.ListAccessories)

	api.POST("/valuations", s.ValuationRateLimit(), s.CreateValuation)
	api.GET("/vehicles/identify", s.IdentifyVehicle)
	api.GET("/extras/nonstandard", s.PriceNonStandardExtra)

	api.GET("/config", s.GetConfiguration)
	api.POST("/config", s.SaveConfiguration)
	api.POST("/config/test", s.TestConfiguration)

	api.GET("/reference/options", s.ListValuationOptions)
}
