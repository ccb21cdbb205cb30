package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/flowsight/internal/backup"
	backupdomain "github.com/smallbiznis/flowsight/internal/backup/domain"
	"github.com/smallbiznis/flowsight/internal/clock"
	"github.com/smallbiznis/flowsight/internal/config"
	"github.com/smallbiznis/flowsight/internal/connectorstatus"
	connectordomain "github.com/smallbiznis/flowsight/internal/connectorstatus/domain"
	"github.com/smallbiznis/flowsight/internal/creditusage"
	creditusagedomain "github.com/smallbiznis/flowsight/internal/creditusage/domain"
	creditusagerollup "github.com/smallbiznis/flowsight/internal/creditusage/rollup"
	"github.com/smallbiznis/flowsight/internal/observability"
	obsmiddleware "github.com/smallbiznis/flowsight/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/flowsight/internal/observability/metrics"
	obstracing "github.com/smallbiznis/flowsight/internal/observability/tracing"
	"github.com/smallbiznis/flowsight/internal/ratelimit"
	"github.com/smallbiznis/flowsight/internal/runtimelogs"
	logdomain "github.com/smallbiznis/flowsight/internal/runtimelogs/domain"
	"github.com/smallbiznis/flowsight/internal/scheduler"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	creditusage.Module,
	connectorstatus.Module,
	runtimelogs.Module,
	backup.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Provide(registerGin),
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine         *gin.Engine
	cfg            config.Config
	clock          clock.Clock
	dashboard      *config.DashboardConfigHolder
	creditUsageSvc creditusagedomain.Service
	rollupSvc      *creditusagerollup.Service
	connectorSvc   connectordomain.Service
	runtimeLogSvc  logdomain.Service
	backupSvc      backupdomain.Service
	exportLimiter  *ratelimit.ExportLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Clock          clock.Clock
	Dashboard      *config.DashboardConfigHolder
	CreditUsageSvc creditusagedomain.Service
	RollupSvc      *creditusagerollup.Service
	ConnectorSvc   connectordomain.Service
	RuntimeLogSvc  logdomain.Service
	BackupSvc      backupdomain.Service
	ExportLimiter  *ratelimit.ExportLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		clock:          p.Clock,
		dashboard:      p.Dashboard,
		creditUsageSvc: p.CreditUsageSvc,
		rollupSvc:      p.RollupSvc,
		connectorSvc:   p.ConnectorSvc,
		runtimeLogSvc:  p.RuntimeLogSvc,
		backupSvc:      p.BackupSvc,
		exportLimiter:  p.ExportLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) exportTimestamp() string {
	return s.clock.Now().Format("20060102_150405")
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/credit-usage", s.ListCreditUsage)
	api.GET("/credit-usage/export", s.ExportCreditUsage)
	api.GET("/credit-usage/view-sql", s.CreditUsageViewSQL)
	api.POST("/credit-usage/rollup", s.RefreshRollup)
	api.GET("/dashboard-config", s.DashboardConfig)

	api.GET("/connectors", s.ListConnectors)
	api.GET("/connectors/names", s.ListConnectorNames)

	api.GET("/runtime-logs/errors", s.ListErrorLogs)
	api.GET("/runtime-logs/stuck", s.ListStuckConnections)

	api.GET("/backups", s.ListBackups)
	api.POST("/backups", s.CreateBackup)
	api.GET("/backups/schedules", s.ListBackupSchedules)
	api.POST("/backups/schedules", s.CreateBackupSchedule)
	api.DELETE("/backups/schedules/:id", s.DeleteBackupSchedule)
}
