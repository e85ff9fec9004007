package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/api/handler"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/api/middleware"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/ports"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/push"
)

// Deps carries everything the route table needs. Mongo and Redis handles are
// nil when the in-memory registry is configured; they only feed the
// readiness probe.
type Deps struct {
	AuthService   ports.AuthService
	RentalService ports.RentalService
	Hub           *push.Hub
	JWTSecret     string
	Mongo         *mongo.Database
	Redis         *redis.Client
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("bikerental"))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	bikeHandler := handler.NewBikeHandler(deps.RentalService)
	pushHandler := handler.NewPushHandler(deps.Hub, deps.JWTSecret, deps.Logger)
	authRequired := middleware.Auth(deps.JWTSecret)

	// --- Public routes ---
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/register", authHandler.Register)

	// --- Authenticated REST surface ---
	apiGroup := e.Group("/api", authRequired)
	apiGroup.GET("/bikes", bikeHandler.Bikes)
	apiGroup.GET("/my-bikes", bikeHandler.MyBikes)
	apiGroup.POST("/list-bike", bikeHandler.ListBike)
	apiGroup.POST("/book", bikeHandler.Book)
	apiGroup.POST("/return", bikeHandler.Return)
	apiGroup.POST("/remove-bike", bikeHandler.Remove)

	// --- Push channel (token auth via query parameter) ---
	e.GET("/ws", pushHandler.Serve)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
