package handlers

import (
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/services"
	"cargodesk/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	admins *services.AdminService
	log    *logger.Logger
}

func NewAuthHandler(admins *services.AdminService) *AuthHandler {
	return &AuthHandler{admins: admins, log: logger.New("AuthHandler")}
}

type LoginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type LoginResponse struct {
	Admin        *models.Admin `json:"admin"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

// bind decodes and validates a request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errs.InvalidRequest("invalid request body")
	}
	return c.Validate(req)
}

// Login authenticates an admin and starts a new session
// @Summary Admin login
// @Description Log in with user name and password. Any previous session is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} response.Envelope "Invalid credentials"
// @Router /admin/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	admin, pair, err := h.admins.Login(c.Request().Context(), req.UserName, req.Password)
	if err != nil {
		return err
	}
	return response.OK(c, LoginResponse{Admin: admin, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// RefreshToken rotates the session tokens
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} utils.TokenPair
// @Failure 401 {object} response.Envelope "Revoked or invalid token"
// @Router /admin/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.admins.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return response.OK(c, pair)
}

// Logout ends the session
// @Summary Admin logout
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Envelope
// @Router /admin/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.admins.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return response.OK(c, map[string]string{"message": "logged out"})
}

// GetMe returns the authenticated admin
// @Summary Current admin
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Admin
// @Router /admin/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	return response.OK(c, middleware.CurrentAdmin(c))
}

// ChangePassword replaces the admin's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Envelope
// @Router /admin/me/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	admin := middleware.CurrentAdmin(c)
	if err := h.admins.ChangePassword(c.Request().Context(), admin.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	h.log.Info("Admin %s changed password", admin.UserName)
	return response.OK(c, map[string]string{"message": "password updated"})
}
