package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ZaspDragon/timeclock-api/internal/api/handler"
	"github.com/ZaspDragon/timeclock-api/internal/api/middleware"
	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
	"github.com/ZaspDragon/timeclock-api/internal/core/service"
	httphandlers "github.com/ZaspDragon/timeclock-api/internal/infrastructure/http/handlers"
)

// RouterDeps carries everything the router needs, already constructed.
// TimeLogRepo and AuthRepo are backend-agnostic; MongoDB and Redis are
// optional handles used only by the readiness probe (nil on the local
// backend).
type RouterDeps struct {
	TimeLogRepo ports.TimeLogRepository
	AuthRepo    ports.AuthRepository
	Dedup       service.StampDedup
	MongoDB     *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	Clock       domain.Clock
	Location    *time.Location
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("timeclock"))

	// --- Dependencies ---
	authService := service.NewAuthService(deps.AuthRepo, deps.JWTSecret, 24*time.Hour)
	timeLogService := service.NewTimeLogService(deps.TimeLogRepo, deps.Dedup, deps.Clock, deps.Location, deps.Logger)
	reportService := service.NewReportService(deps.TimeLogRepo, deps.Clock, deps.Logger)

	authHandler := handler.NewAuthHandler(authService)
	timeLogHandler := handler.NewTimeLogHandler(timeLogService, deps.Clock)
	reportHandler := handler.NewReportHandler(reportService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	v1.GET("/timelogs/today", timeLogHandler.Today)
	v1.POST("/timelogs/stamp", timeLogHandler.Stamp)
	v1.PATCH("/timelogs/:date/notes", timeLogHandler.UpdateNotes)
	v1.GET("/timelogs", timeLogHandler.Range)
	v1.GET("/timelogs/export", timeLogHandler.Export)

	manager := v1.Group("", middleware.RBAC(domain.RoleManager))
	manager.GET("/reports", reportHandler.Run)
	manager.GET("/reports/export", reportHandler.Export)
	manager.DELETE("/timelogs", timeLogHandler.Wipe)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := httphandlers.NewHealthHandler()
	healthDepsHandler := httphandlers.NewHealthDependenciesHandler(deps.MongoDB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
