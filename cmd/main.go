package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/navafv/digital-thread-tailor-app/internal/handler"
	"github.com/navafv/digital-thread-tailor-app/internal/middleware"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
	"github.com/navafv/digital-thread-tailor-app/pkg/config"
	"github.com/navafv/digital-thread-tailor-app/pkg/database"
	"github.com/navafv/digital-thread-tailor-app/pkg/jwtutil"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting tailor service...", cfg.LogConfig()...)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	tokens := jwtutil.NewJWTUtil(&cfg.JWT)
	h := handler.New(db, tokens, service.DashboardOptions{
		HorizonDays: cfg.Dashboard.HorizonDays,
		TrendMonths: cfg.Dashboard.TrendMonths,
	})

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	handler.RegisterRoutes(e, h, tokens)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
