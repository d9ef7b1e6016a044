package handlers

import (
	"cargodesk/internal/access"
	"cargodesk/internal/api/controllers"
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/services"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	admins *services.AdminService
}

func NewAdminHandler(admins *services.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

type CreateAdminRequest struct {
	FullName    string        `json:"full_name" validate:"required"`
	UserName    string        `json:"user_name" validate:"required,min=3,max=64"`
	Email       string        `json:"email" validate:"required,email"`
	PhoneNumber string        `json:"phone_number"`
	Password    string        `json:"password" validate:"required,min=6"`
	Role        string        `json:"role" validate:"omitempty,admin_role"`
	Permissions access.Matrix `json:"permissions"`
	TgLink      string        `json:"tg_link"`
	Description string        `json:"description"`
}

type UpdateAdminRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=1"`
	UserName    *string `json:"user_name" validate:"omitempty,min=3,max=64"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role" validate:"omitempty,admin_role"`
	IsActive    *bool   `json:"is_active"`
	TgLink      *string `json:"tg_link"`
	Description *string `json:"description"`
}

type PermissionsRequest struct {
	Permissions access.Matrix `json:"permissions" validate:"required"`
}

// List returns admins page by page
// @Summary List admins
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {array} models.Admin
// @Router /admins [get]
func (h *AdminHandler) List(c echo.Context) error {
	admins, pagination, err := h.admins.List(c.Request().Context(), response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, admins, pagination)
}

// Get returns one admin
// @Summary Get admin
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 200 {object} models.Admin
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}
	admin, err := h.admins.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, admin)
}

// Create adds an admin
// @Summary Create admin
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAdminRequest true "Admin"
// @Success 201 {object} models.Admin
// @Failure 409 {object} response.Envelope "Duplicate user name or email"
// @Router /admins [post]
func (h *AdminHandler) Create(c echo.Context) error {
	var req CreateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	admin, err := h.admins.Create(c.Request().Context(), middleware.CurrentAdmin(c), services.CreateAdminInput{
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        access.Role(req.Role),
		Permissions: req.Permissions,
		TgLink:      req.TgLink,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return response.Created(c, admin)
}

// Update edits an admin
// @Summary Update admin
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Param request body UpdateAdminRequest true "Changes"
// @Success 200 {object} models.Admin
// @Router /admins/{id} [put]
func (h *AdminHandler) Update(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}
	var req UpdateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := services.UpdateAdminInput{
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
		TgLink:      req.TgLink,
		Description: req.Description,
	}
	if req.Role != nil {
		role := access.Role(*req.Role)
		in.Role = &role
	}

	admin, err := h.admins.Update(c.Request().Context(), middleware.CurrentAdmin(c), id, in)
	if err != nil {
		return err
	}
	return response.OK(c, admin)
}

// SetPermissions replaces an admin's permission matrix
// @Summary Set admin permissions
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Param request body PermissionsRequest true "Matrix"
// @Success 200 {object} models.Admin
// @Router /admins/{id}/permissions [put]
func (h *AdminHandler) SetPermissions(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}
	var req PermissionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	admin, err := h.admins.SetPermissions(c.Request().Context(), id, req.Permissions)
	if err != nil {
		return err
	}
	return response.OK(c, admin)
}

// Delete removes an admin
// @Summary Delete admin
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Router /admins/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}
	if err := h.admins.Delete(c.Request().Context(), middleware.CurrentAdmin(c), id); err != nil {
		return err
	}
	return response.OK(c, map[string]string{"message": "admin deleted"})
}

// ChangePassword replaces another admin's password
// @Summary Change admin password
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope "Old password is incorrect"
// @Router /admins/{id}/password [put]
func (h *AdminHandler) ChangePassword(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.admins.ChangePasswordFor(c.Request().Context(), middleware.CurrentAdmin(c), id, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return response.OK(c, map[string]string{"message": "password updated"})
}
