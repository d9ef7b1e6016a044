package services

import (
	"context"
	"errors"
	"time"

	"cargodesk/internal/access"
	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/utils"
	"cargodesk/internal/utils/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type CreateAdminInput struct {
	FullName    string
	UserName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        access.Role
	Permissions access.Matrix
	TgLink      string
	Description string
}

// UpdateAdminInput changes only the non-nil fields.
type UpdateAdminInput struct {
	FullName    *string
	UserName    *string
	Email       *string
	PhoneNumber *string
	Role        *access.Role
	IsActive    *bool
	TgLink      *string
	Description *string
}

type AdminService struct {
	db         *gorm.DB
	tokens     *utils.TokenIssuer
	log        *logger.Logger
	bcryptCost int
}

func NewAdminService(db *gorm.DB, tokens *utils.TokenIssuer) *AdminService {
	return &AdminService{
		db:         db,
		tokens:     tokens,
		log:        logger.New("admin_service"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *AdminService) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errs.InvalidRequest("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", errs.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

// checkDuplicate reports Conflict when user name or email is taken by another admin.
func checkAdminDuplicate(tx *gorm.DB, userName, email string, excludeID uint64) error {
	var existing models.Admin
	query := tx.Where("user_name = ? OR email = ?", userName, email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errs.Internal("failed to check admin uniqueness", err)
	}
	if existing.UserName == userName {
		return errs.Conflict("admin with user name %s already exists", userName)
	}
	return errs.Conflict("admin with email %s already exists", email)
}

// Create adds an admin. Only the creator may hand out an explicit matrix;
// everyone else gets the staff default.
func (s *AdminService) Create(ctx context.Context, actor access.Principal, in CreateAdminInput) (*models.Admin, error) {
	if in.Permissions != nil {
		if err := access.AuthorizeCreator(actor).Err(); err != nil {
			return nil, errs.Forbidden("only the super admin can set permissions")
		}
	}
	if in.Role == "" {
		in.Role = access.RoleAdmin
	}
	if !in.Role.Valid() {
		return nil, errs.InvalidRequest("invalid role %q", in.Role)
	}
	matrix := in.Permissions
	if matrix == nil {
		matrix = access.DefaultStaffMatrix()
	}
	if err := matrix.Validate(); err != nil {
		return nil, errs.InvalidRequest("%v", err)
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		FullName:    in.FullName,
		UserName:    in.UserName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    hashed,
		Role:        in.Role,
		IsActive:    true,
		TgLink:      in.TgLink,
		Description: in.Description,
	}
	admin.SetGrants(matrix)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAdminDuplicate(tx, in.UserName, in.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(admin).Error; err != nil {
			return errs.Internal("failed to create admin", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin %s created with role %s", admin.UserName, admin.Role)
	return admin, nil
}

func (s *AdminService) Get(ctx context.Context, id uint64) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, lookupErr(err, "admin")
	}
	return &admin, nil
}

func (s *AdminService) List(ctx context.Context, page Page) ([]models.Admin, Pagination, error) {
	var admins []models.Admin
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Admin{}).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to count admins", err)
	}
	if err := query.Order("id").Offset(page.Offset()).Limit(page.Limit).Find(&admins).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to list admins", err)
	}
	return admins, page.Result(total), nil
}

// Update edits an admin. The super admin may edit its own profile but can
// never be demoted or deactivated, and nobody else may edit it.
func (s *AdminService) Update(ctx context.Context, actor access.Principal, id uint64, in UpdateAdminInput) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&admin, id).Error; err != nil {
			return lookupErr(err, "admin")
		}
		if admin.Creator {
			if !access.AuthorizeCreator(actor).Allowed {
				return errs.Forbidden("the super admin cannot be modified")
			}
			if in.Role != nil || in.IsActive != nil {
				return errs.Forbidden("the super admin cannot be demoted or deactivated")
			}
		}

		updates := map[string]interface{}{}
		userName, email := admin.UserName, admin.Email
		if in.UserName != nil && *in.UserName != admin.UserName {
			userName = *in.UserName
			updates["user_name"] = userName
		}
		if in.Email != nil && *in.Email != admin.Email {
			email = *in.Email
			updates["email"] = email
		}
		if len(updates) > 0 {
			if err := checkAdminDuplicate(tx, userName, email, admin.ID); err != nil {
				return err
			}
		}
		if in.Role != nil {
			if !in.Role.Valid() {
				return errs.InvalidRequest("invalid role %q", *in.Role)
			}
			updates["role"] = *in.Role
		}
		if in.FullName != nil {
			updates["full_name"] = *in.FullName
		}
		if in.PhoneNumber != nil {
			updates["phone_number"] = *in.PhoneNumber
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
			if !*in.IsActive {
				updates["token"] = nil
			}
		}
		if in.TgLink != nil {
			updates["tg_link"] = *in.TgLink
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&admin).Updates(updates).Error; err != nil {
			return errs.Internal("failed to update admin", err)
		}
		return tx.First(&admin, id).Error
	})
	if err != nil {
		return nil, internal("failed to update admin", err)
	}
	return &admin, nil
}

// SetPermissions replaces the permission matrix of a regular admin.
func (s *AdminService) SetPermissions(ctx context.Context, id uint64, matrix access.Matrix) (*models.Admin, error) {
	if err := matrix.Validate(); err != nil {
		return nil, errs.InvalidRequest("%v", err)
	}

	var admin models.Admin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&admin, id).Error; err != nil {
			return lookupErr(err, "admin")
		}
		if admin.Creator {
			return errs.Forbidden("the super admin permissions cannot be changed")
		}
		admin.SetGrants(matrix)
		if err := tx.Model(&admin).Update("permissions", admin.Permissions).Error; err != nil {
			return errs.Internal("failed to update permissions", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Delete removes an admin who never recorded an operation. Admins with
// history must be deactivated instead so the audit trail stays resolvable.
func (s *AdminService) Delete(ctx context.Context, actor *models.Admin, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.Admin
		if err := tx.First(&admin, id).Error; err != nil {
			return lookupErr(err, "admin")
		}
		if admin.Creator {
			return errs.Forbidden("the super admin cannot be deleted")
		}
		if actor != nil && actor.ID == admin.ID {
			return errs.Forbidden("admins cannot delete themselves")
		}
		guard := ReferencedBy(&models.Operation{}, "admin_id", "admin has recorded operations, deactivate it instead")
		if err := guard(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&admin).Error; err != nil {
			return errs.Internal("failed to delete admin", err)
		}
		return nil
	})
}

// Login verifies credentials and starts a new session, revoking the previous one.
func (s *AdminService) Login(ctx context.Context, userName, password string) (*models.Admin, utils.TokenPair, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).Where("user_name = ?", userName).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.TokenPair{}, errs.Unauthorized("invalid credentials")
		}
		return nil, utils.TokenPair{}, errs.Internal("failed to load admin", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, utils.TokenPair{}, errs.Unauthorized("invalid credentials")
	}
	if !admin.IsActive {
		return nil, utils.TokenPair{}, errs.Unauthorized("account is deactivated")
	}

	pair, err := s.tokens.IssuePair(utils.PrincipalAdmin, admin.ID, string(admin.Role))
	if err != nil {
		return nil, utils.TokenPair{}, errs.Internal("failed to issue tokens", err)
	}
	if err := s.db.WithContext(ctx).Model(&admin).Update("token", pair.RefreshToken).Error; err != nil {
		return nil, utils.TokenPair{}, errs.Internal("failed to store session", err)
	}

	s.log.Info("Admin %s logged in", admin.UserName)
	return &admin, pair, nil
}

// Refresh rotates the session. Only the most recently issued refresh token works.
func (s *AdminService) Refresh(ctx context.Context, refreshToken string) (utils.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken, utils.PrincipalAdmin)
	if err != nil {
		return utils.TokenPair{}, errs.Unauthorized("invalid refresh token")
	}

	var admin models.Admin
	if err := s.db.WithContext(ctx).
		Where("id = ? AND token = ?", claims.PrincipalID, refreshToken).
		First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.TokenPair{}, errs.Unauthorized("refresh token has been revoked")
		}
		return utils.TokenPair{}, errs.Internal("failed to load admin", err)
	}
	if !admin.IsActive {
		return utils.TokenPair{}, errs.Unauthorized("account is deactivated")
	}

	pair, err := s.tokens.IssuePair(utils.PrincipalAdmin, admin.ID, string(admin.Role))
	if err != nil {
		return utils.TokenPair{}, errs.Internal("failed to issue tokens", err)
	}

	// compare-and-swap so two concurrent refreshes cannot both succeed
	result := s.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ? AND token = ?", admin.ID, refreshToken).
		Update("token", pair.RefreshToken)
	if result.Error != nil {
		return utils.TokenPair{}, errs.Internal("failed to store session", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.TokenPair{}, errs.Unauthorized("refresh token has been revoked")
	}
	return pair, nil
}

func (s *AdminService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ParseRefresh(refreshToken, utils.PrincipalAdmin)
	if err != nil {
		return errs.Unauthorized("invalid refresh token")
	}

	result := s.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ? AND token = ?", claims.PrincipalID, refreshToken).
		Update("token", nil)
	if result.Error != nil {
		return errs.Internal("failed to end session", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.Unauthorized("refresh token has been revoked")
	}
	return nil
}

func (s *AdminService) ChangePassword(ctx context.Context, id uint64, oldPassword, newPassword string) error {
	admin, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(oldPassword)); err != nil {
		return errs.Unauthorized("old password is incorrect")
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(admin).Updates(map[string]interface{}{
		"password":   hashed,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return errs.Internal("failed to update password", err)
	}
	return nil
}

// ChangePasswordFor lets a manager replace another admin's password. The old
// password is still required, and only the creator may touch the creator.
func (s *AdminService) ChangePasswordFor(ctx context.Context, actor access.Principal, id uint64, oldPassword, newPassword string) error {
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if target.IsCreator() {
		if err := access.AuthorizeCreator(actor).Err(); err != nil {
			return errs.Forbidden("only the super admin can change the super admin's password")
		}
	}
	if err := s.ChangePassword(ctx, id, oldPassword, newPassword); err != nil {
		return err
	}
	s.log.Info("Password of admin %s changed by a manager", target.UserName)
	return nil
}

// Authenticate resolves an access token to an active admin.
func (s *AdminService) Authenticate(ctx context.Context, accessToken string) (*models.Admin, error) {
	claims, err := s.tokens.ParseAccess(accessToken, utils.PrincipalAdmin)
	if err != nil {
		return nil, errs.Unauthorized("invalid or expired token")
	}

	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, claims.PrincipalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Unauthorized("admin not found")
		}
		return nil, errs.Internal("failed to load admin", err)
	}
	if !admin.IsActive {
		return nil, errs.Unauthorized("account is deactivated")
	}
	return &admin, nil
}
