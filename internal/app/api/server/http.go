package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/docs"
	"github.com/littlewanderers/frontdesk/internal/app/api/handlers"
	mw "github.com/littlewanderers/frontdesk/internal/app/api/middleware"
	"github.com/littlewanderers/frontdesk/internal/app/feed"
	"github.com/littlewanderers/frontdesk/internal/app/service/checkin"
	"github.com/littlewanderers/frontdesk/internal/app/service/checkout"
	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	"github.com/littlewanderers/frontdesk/internal/app/service/membership"
	nh "github.com/littlewanderers/frontdesk/internal/app/service/notification_handler"
	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/app/service/statistics"
	"github.com/littlewanderers/frontdesk/internal/app/service/visit"
	cfgpkg "github.com/littlewanderers/frontdesk/pkg/config"
	metrics "github.com/littlewanderers/frontdesk/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func newPrometheus(log *zap.SugaredLogger, cfg *cfgpkg.Config) (*metrics.Prometheus, error) {
	if err := metrics.RegisterBusinessMetrics(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}
	p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
		Subsystem: metrics.Subsystem,
		ReqCntURLLabelMappingFn: func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return c.Request.URL.Path
		},
		Logger: log,
	})
	if cfg.MetricsAddr != "" {
		p.SetListenAddress(cfg.MetricsAddr)
	}
	return p, nil
}

type routeDeps struct {
	fx.In

	Log         *zap.SugaredLogger
	Cfg         *cfgpkg.Config
	Prom        *metrics.Prometheus
	Hub         *feed.Hub
	Checkins    *checkin.Service
	Visits      *visit.Service
	Checkout    *checkout.Service
	Households  *household.Service
	Memberships *membership.Service
	Pricing     *pricing.Service
	Stats       *statistics.Service
	Webhooks    *nh.NotificationHandler
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	d.Prom.Use(r)
	if d.Cfg.MetricsAddr != "" {
		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())

	desk := apiV1.Group("/")
	desk.Use(mw.StaffAuthMiddleware(d.Cfg.Staff.DeviceKeyHash, d.Log))
	handlers.RegisterDeskRoutes(desk, handlers.DeskRoutes{
		Checkins: d.Checkins,
		Visits:   d.Visits,
		Checkout: d.Checkout,
		Feed:     feed.Handle(d.Hub),
	})

	portal := apiV1.Group("/")
	portal.Use(mw.PortalAuthMiddleware(d.Cfg.Auth.JWTSecret, d.Log))
	handlers.RegisterPortalRoutes(portal, handlers.PortalRoutes{
		Checkout:    d.Checkout,
		Households:  d.Households,
		Memberships: d.Memberships,
	})

	admin := apiV1.Group("/admin")
	admin.Use(mw.StaffAuthMiddleware(d.Cfg.Staff.DeviceKeyHash, d.Log))
	handlers.RegisterAdminRoutes(admin, handlers.AdminRoutes{
		Checkins:   d.Checkins,
		Statistics: d.Stats,
		Pricing:    d.Pricing,
	})

	// Webhooks authenticate by signature, not by caller identity.
	handlers.RegisterWebhookRoutes(apiV1.Group("/webhooks"), d.Webhooks)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine, p *metrics.Prometheus) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			if ms := p.Server(); ms != nil {
				if err := ms.Shutdown(shutdownCtx); err != nil {
					log.Warnw("metrics server shutdown failed", "error", err)
				}
			}
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, newPrometheus),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
