package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cargodesk/internal/config"
	"cargodesk/internal/errs"
	"cargodesk/internal/events"
	"cargodesk/internal/models"
	"cargodesk/internal/utils"
	"cargodesk/internal/utils/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const otpLength = 6

type RegisterClientInput struct {
	FullName    string
	PhoneNumber string
	Email       string
	Address     string
	Location    string
}

// ClientService manages client accounts, sessions and chat verification.
type ClientService struct {
	db       *gorm.DB
	tokens   *utils.TokenIssuer
	sender   CodeSender
	throttle Throttle
	otpTTL   time.Duration
	log      *logger.Logger
	now      func() time.Time
}

func NewClientService(db *gorm.DB, tokens *utils.TokenIssuer, sender CodeSender, throttle Throttle, cfg config.OTPConfig) *ClientService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ClientService{
		db:       db,
		tokens:   tokens,
		sender:   sender,
		throttle: throttle,
		otpTTL:   ttl,
		log:      logger.New("client_service"),
		now:      time.Now,
	}
}

func checkClientDuplicate(tx *gorm.DB, email, phone string) error {
	var existing models.Client
	err := tx.Where("email = ? OR phone_number = ?", email, phone).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errs.Internal("failed to check client uniqueness", err)
	}
	if existing.Email == email {
		return errs.Conflict("client with email %s already exists", email)
	}
	return errs.Conflict("client with phone number %s already exists", phone)
}

func validateRegistration(in RegisterClientInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return errs.InvalidRequest("full name is required")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return errs.InvalidRequest("phone number is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return errs.InvalidRequest("email is required")
	}
	return nil
}

// Register creates an active client and starts its session.
func (s *ClientService) Register(ctx context.Context, in RegisterClientInput) (*models.Client, string, error) {
	if err := validateRegistration(in); err != nil {
		return nil, "", err
	}

	client := &models.Client{
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Address:     in.Address,
		Location:    in.Location,
		IsActive:    true,
	}

	var token string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkClientDuplicate(tx, in.Email, in.PhoneNumber); err != nil {
			return err
		}
		if err := tx.Create(client).Error; err != nil {
			return errs.Internal("failed to create client", err)
		}

		var err error
		token, err = s.tokens.IssueAccess(utils.PrincipalClient, client.ID, "")
		if err != nil {
			return errs.Internal("failed to issue token", err)
		}
		client.Token = &token
		return tx.Model(client).Update("token", token).Error
	})
	if err != nil {
		return nil, "", internal("failed to register client", err)
	}

	s.log.Info("Client %d registered", client.ID)
	return client, token, nil
}

// Login starts a new session for an active client found by email or phone.
// The previous token stops working.
func (s *ClientService) Login(ctx context.Context, email, phone string) (*models.Client, string, error) {
	if email == "" && phone == "" {
		return nil, "", errs.InvalidRequest("email or phone number is required")
	}

	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if email != "" {
		query = query.Where("email = ?", email)
	} else {
		query = query.Where("phone_number = ?", phone)
	}

	var client models.Client
	if err := query.First(&client).Error; err != nil {
		return nil, "", lookupErr(err, "client")
	}

	token, err := s.tokens.IssueAccess(utils.PrincipalClient, client.ID, "")
	if err != nil {
		return nil, "", errs.Internal("failed to issue token", err)
	}
	if err := s.db.WithContext(ctx).Model(&client).Update("token", token).Error; err != nil {
		return nil, "", errs.Internal("failed to store session", err)
	}
	return &client, token, nil
}

func (s *ClientService) Logout(ctx context.Context, clientID uint64) error {
	if err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("token", nil).Error; err != nil {
		return errs.Internal("failed to end session", err)
	}
	return nil
}

// Authenticate resolves a client token. Only the most recently issued token is accepted.
func (s *ClientService) Authenticate(ctx context.Context, token string) (*models.Client, error) {
	claims, err := s.tokens.ParseAccess(token, utils.PrincipalClient)
	if err != nil {
		return nil, errs.Unauthorized("invalid or expired token")
	}

	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, claims.PrincipalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Unauthorized("client not found")
		}
		return nil, errs.Internal("failed to load client", err)
	}
	if client.Token == nil || *client.Token != token {
		return nil, errs.Unauthorized("session has been replaced or ended")
	}
	if !client.IsActive {
		return nil, errs.Unauthorized("account is not active")
	}
	return &client, nil
}

// RegisterViaChat creates an inactive client bound to a chat and sends it a
// verification code once the row is committed.
func (s *ClientService) RegisterViaChat(ctx context.Context, telegramID string, in RegisterClientInput) (*models.Client, error) {
	if telegramID == "" {
		return nil, errs.InvalidRequest("chat id is required")
	}
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	code, err := utils.GenerateNumericCode(otpLength)
	if err != nil {
		return nil, errs.Internal("failed to generate code", err)
	}
	expires := s.now().Add(s.otpTTL)

	client := &models.Client{
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Address:     in.Address,
		Location:    in.Location,
		TelegramID:  &telegramID,
		OTPCode:     &code,
		OTPExpires:  &expires,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Client{}).Where("telegram_id = ?", telegramID).Count(&count).Error; err != nil {
			return errs.Internal("failed to check chat binding", err)
		}
		if count > 0 {
			return errs.Conflict("this chat is already registered")
		}
		if err := checkClientDuplicate(tx, in.Email, in.PhoneNumber); err != nil {
			return err
		}
		if err := tx.Create(client).Error; err != nil {
			return errs.Internal("failed to create client", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendCode(ctx, client.Email, code)
	return client, nil
}

func (s *ClientService) sendCode(ctx context.Context, email, code string) {
	if s.sender == nil {
		s.log.Warn("No code sender configured, code for %s not delivered", email)
		return
	}
	if err := s.sender.SendVerificationCode(ctx, email, code); err != nil {
		s.log.Warn("Failed to send verification code to %s: %v", email, err)
	}
}

// Verify activates a chat-registered client when code matches and has not expired.
func (s *ClientService) Verify(ctx context.Context, clientID uint64, code string) (*models.Client, error) {
	return s.verify(ctx, func(tx *gorm.DB) *gorm.DB { return tx.Where("id = ?", clientID) }, code)
}

func (s *ClientService) VerifyByTelegram(ctx context.Context, telegramID, code string) (*models.Client, error) {
	return s.verify(ctx, func(tx *gorm.DB) *gorm.DB { return tx.Where("telegram_id = ?", telegramID) }, code)
}

func (s *ClientService) verify(ctx context.Context, scope func(*gorm.DB) *gorm.DB, code string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx.Clauses(clause.Locking{Strength: "UPDATE"})).First(&client).Error; err != nil {
			return lookupErr(err, "client")
		}
		if client.IsActive {
			return errs.Conflict("account is already verified")
		}
		if client.OTPExpires == nil {
			return errs.InvalidCode("no verification code was issued")
		}
		// a purged code keeps its expiry, so it still reports as expired
		if s.now().After(*client.OTPExpires) {
			return errs.Expired("verification code has expired")
		}
		if client.OTPCode == nil || *client.OTPCode != strings.TrimSpace(code) {
			return errs.InvalidCode("verification code is incorrect")
		}

		if err := tx.Model(&client).Updates(map[string]interface{}{
			"is_active":   true,
			"otp_code":    nil,
			"otp_expires": nil,
		}).Error; err != nil {
			return errs.Internal("failed to activate client", err)
		}
		client.IsActive = true
		client.OTPCode = nil
		client.OTPExpires = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Client %d verified", client.ID)
	events.Emit(events.ClientActivated, &client)
	return &client, nil
}

// ResendCode issues a fresh code to an unverified client.
func (s *ClientService) ResendCode(ctx context.Context, telegramID string) error {
	client, err := s.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	if client.IsActive {
		return errs.Conflict("account is already verified")
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, fmt.Sprintf("otp:%d", client.ID))
		if err != nil {
			// a broken limiter must not lock clients out of verification
			s.log.Warn("OTP throttle unavailable: %v", err)
		} else if !allowed {
			return errs.Conflict("too many codes requested, try again later")
		}
	}

	code, err := utils.GenerateNumericCode(otpLength)
	if err != nil {
		return errs.Internal("failed to generate code", err)
	}
	expires := s.now().Add(s.otpTTL)
	if err := s.db.WithContext(ctx).Model(client).Updates(map[string]interface{}{
		"otp_code":    code,
		"otp_expires": expires,
	}).Error; err != nil {
		return errs.Internal("failed to store code", err)
	}

	s.sendCode(ctx, client.Email, code)
	return nil
}

func (s *ClientService) FindByTelegramID(ctx context.Context, telegramID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&client).Error; err != nil {
		return nil, lookupErr(err, "client")
	}
	return &client, nil
}

func (s *ClientService) Get(ctx context.Context, id uint64) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, lookupErr(err, "client")
	}
	return &client, nil
}

func (s *ClientService) List(ctx context.Context, isActive *bool, page Page) ([]models.Client, Pagination, error) {
	var clients []models.Client
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Client{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to count clients", err)
	}
	if err := query.Order("id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&clients).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to list clients", err)
	}
	return clients, page.Result(total), nil
}

// PurgeExpiredCodes clears codes that expired before cutoff and reports how
// many. The expiry is kept so a late verification still reports Expired.
func (s *ClientService) PurgeExpiredCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("otp_code IS NOT NULL AND otp_expires IS NOT NULL AND otp_expires < ?", cutoff).
		Update("otp_code", nil)
	if result.Error != nil {
		return 0, errs.Internal("failed to purge expired codes", result.Error)
	}
	if result.RowsAffected > 0 {
		s.log.Info("Purged %d expired verification codes", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
