package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/api/validator"
	"cargodesk/internal/config"
	"cargodesk/internal/errs"
	"cargodesk/internal/handlers"
	"cargodesk/internal/services"

	console "cargodesk/internal/utils/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Deps carries the services the HTTP surface is built on.
type Deps struct {
	DB         *gorm.DB
	Admins     *services.AdminService
	Clients    *services.ClientService
	Orders     *services.OrderService
	Operations *services.OperationService
	Products   *services.ProductService
	Catalog    *services.Catalog
	Bot        handlers.Conversation
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Deps
	auth   *middleware.AuthMiddleware
}

var log = console.New("API-Server")

// NewServer @title Cargodesk API
// @version 1.0
// @description Back office, client and chat bot API for cargo orders.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.TimeoutWithConfig(echomiddleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(echomiddleware.GzipWithConfig(echomiddleware.GzipConfig{
		Level: 5,
	}))
	e.Use(echomiddleware.BodyLimit("10M"))
	if cfg.Server.RateLimit > 0 {
		e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	s := &Server{
		echo:   e,
		config: cfg,
		deps:   deps,
		auth:   middleware.NewAuthMiddleware(deps.Admins, deps.Clients),
	}

	e.HTTPErrorHandler = s.customHTTPErrorHandler

	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	log.Info("Listening on %s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK
	if sqlDB, err := s.deps.DB.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":  status,
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// customHTTPErrorHandler renders every failure in the response envelope.
// Internal details are only exposed outside production.
func (s *Server) customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message = http.StatusText(code)
		fields  map[string]string
	)

	var (
		appErr     *errs.Error
		httpErr    *echo.HTTPError
		validation validator.ValidationErrors
	)
	switch {
	case errors.As(err, &validation):
		code = http.StatusBadRequest
		message = validation.Error()
		fields = validation.Fields()
	case errors.As(err, &appErr) && appErr.Kind != errs.KindInternal:
		code = appErr.Kind.HTTPStatus()
		message = appErr.Message
	case errors.As(err, &httpErr):
		code = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	default:
		log.Error("Request %s %s failed", err, c.Request().Method, c.Request().URL.Path)
		if !s.config.IsProduction() {
			message = err.Error()
		}
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = response.Fail(c, code, message, fields)
	}
	if err != nil {
		c.Echo().Logger.Error(err)
	}
}
