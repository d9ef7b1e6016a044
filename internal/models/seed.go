package models

import (
	"errors"
	"fmt"

	"cargodesk/internal/access"
	"cargodesk/internal/config"

	console "cargodesk/internal/utils/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var log = console.New("SEEDER")

var defaultStatuses = []Status{
	{Name: "Pending", Description: "Order is pending"},
	{Name: "Processing", Description: "Order is being processed"},
	{Name: "Completed", Description: "Order is completed"},
}

var defaultCurrencies = []CurrencyType{
	{Name: "USD", Description: "US Dollar"},
}

// SeedReferenceData creates the default statuses and currencies if missing.
func SeedReferenceData(db *gorm.DB) error {
	for _, status := range defaultStatuses {
		s := status
		if err := db.Where(Status{Name: s.Name}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("failed to seed status %s: %w", s.Name, err)
		}
	}

	for _, currency := range defaultCurrencies {
		c := currency
		if err := db.Where(CurrencyType{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("failed to seed currency %s: %w", c.Name, err)
		}
	}

	return nil
}

// EnsureCreator returns the super admin, creating it from configuration the
// first time. It never touches an existing creator.
func EnsureCreator(db *gorm.DB, cfg config.SuperAdminConfig) (*Admin, error) {
	var creator Admin
	err := db.Where("is_creator = ?", true).Order("id").First(&creator).Error
	if err == nil {
		return &creator, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up super admin: %w", err)
	}

	if cfg.UserName == "" || cfg.Password == "" || cfg.Email == "" {
		return nil, fmt.Errorf("SUPERADMIN_USERNAME, SUPERADMIN_PASSWORD and SUPERADMIN_EMAIL must be set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	creator = Admin{
		FullName:    cfg.FullName,
		UserName:    cfg.UserName,
		Email:       cfg.Email,
		PhoneNumber: cfg.Phone,
		Password:    string(hashedPassword),
		Role:        access.RoleManager,
		Creator:     true,
		IsActive:    true,
	}
	creator.SetGrants(access.FullMatrix())

	if err := db.Create(&creator).Error; err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}

	log.Success("Created super admin %s", creator.UserName)
	return &creator, nil
}
