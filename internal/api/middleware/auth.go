package middleware

import (
	"context"
	"strings"

	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

const (
	adminKey  = "admin"
	clientKey = "client"
)

type AdminAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Admin, error)
}

type ClientAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Client, error)
}

type AuthMiddleware struct {
	admins  AdminAuthenticator
	clients ClientAuthenticator
}

func NewAuthMiddleware(admins AdminAuthenticator, clients ClientAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{admins: admins, clients: clients}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", errs.Unauthorized("missing authorization header")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", errs.Unauthorized("invalid authorization header format")
	}
	return tokenParts[1], nil
}

// Admin requires a valid admin access token and stores the admin on the context.
func (m *AuthMiddleware) Admin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			admin, err := m.admins.Authenticate(c.Request().Context(), token)
			if err != nil {
				log.Debug("Admin authentication failed: %v", err)
				return err
			}
			c.Set(adminKey, admin)
			return next(c)
		}
	}
}

// Client requires the client's current session token.
func (m *AuthMiddleware) Client() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			client, err := m.clients.Authenticate(c.Request().Context(), token)
			if err != nil {
				log.Debug("Client authentication failed: %v", err)
				return err
			}
			c.Set(clientKey, client)
			return next(c)
		}
	}
}

// CurrentAdmin returns the authenticated admin or nil.
func CurrentAdmin(c echo.Context) *models.Admin {
	if admin, ok := c.Get(adminKey).(*models.Admin); ok {
		return admin
	}
	return nil
}

// CurrentClient returns the authenticated client or nil.
func CurrentClient(c echo.Context) *models.Client {
	if client, ok := c.Get(clientKey).(*models.Client); ok {
		return client
	}
	return nil
}
