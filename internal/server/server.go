package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/astekno/paytrack-be/internal/config"
	"github.com/astekno/paytrack-be/internal/handler"
	"github.com/astekno/paytrack-be/internal/middleware"
	"github.com/astekno/paytrack-be/pkg/logger"
)

type Server struct {
	echo           *echo.Echo
	cfg            *config.Config
	logger         *logger.Logger
	paymentHandler *handler.PaymentHandler
	reportHandler  *handler.ReportHandler
	ratesHandler   *handler.RatesHandler
	wsHandler      *handler.WSHandler
	healthHandler  *handler.HealthHandler
}

func New(
	cfg *config.Config,
	log *logger.Logger,
	paymentHandler *handler.PaymentHandler,
	reportHandler *handler.ReportHandler,
	ratesHandler *handler.RatesHandler,
	wsHandler *handler.WSHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return &Server{
		echo:           e,
		cfg:            cfg,
		logger:         log,
		paymentHandler: paymentHandler,
		reportHandler:  reportHandler,
		ratesHandler:   ratesHandler,
		wsHandler:      wsHandler,
		healthHandler:  healthHandler,
	}
}

func (s *Server) Start() error {
	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info(context.Background(), "Starting HTTP server",
		"address", addr,
	)

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.echo.Use(echoMiddleware.Recover())
	s.echo.Use(echoMiddleware.CORS())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.Logging(s.logger))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler.Check)

	s.echo.GET("/payments", s.paymentHandler.List)
	s.echo.GET("/payments/sort", s.paymentHandler.Sort)
	s.echo.POST("/payments", s.paymentHandler.Save)
	s.echo.DELETE("/payments/:id", s.paymentHandler.Delete)
	s.echo.POST("/payments/bulk-delete", s.paymentHandler.BulkDelete)
	s.echo.POST("/payments/bulk-update", s.paymentHandler.BulkUpdate)
	s.echo.POST("/payments/import", s.paymentHandler.Import)
	s.echo.GET("/payments/export", s.paymentHandler.Export)
	s.echo.POST("/documents", s.paymentHandler.UploadDocument)
	s.echo.Static(s.cfg.Files.BaseURL, s.cfg.Files.Dir)

	s.echo.GET("/rates", s.ratesHandler.Get)
	s.echo.PUT("/rates", s.ratesHandler.Update)

	s.echo.GET("/reports/summary", s.reportHandler.Summary)
	s.echo.GET("/reports/status-distribution", s.reportHandler.StatusDistribution)
	s.echo.GET("/reports/field-distribution", s.reportHandler.FieldDistribution)
	s.echo.GET("/reports/top", s.reportHandler.Top)

	s.echo.GET("/subscribe", s.wsHandler.Subscribe)
}

func (s *Server) Handler() *echo.Echo {
	s.setupMiddleware()
	s.setupRoutes()
	return s.echo
}
