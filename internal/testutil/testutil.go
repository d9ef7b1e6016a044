// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"cargodesk/internal/access"
	"cargodesk/internal/db"
	"cargodesk/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := models.SeedReferenceData(gdb); err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return gdb
}

// CreateAdmin inserts an active admin with the given matrix and password "secret123".
func CreateAdmin(t *testing.T, gdb *gorm.DB, userName string, role access.Role, matrix access.Matrix) *models.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.Admin{
		FullName: userName,
		UserName: userName,
		Email:    userName + "@cargodesk.test",
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	admin.SetGrants(matrix)
	if err := gdb.Create(admin).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return admin
}

// CreateClient inserts an active client.
func CreateClient(t *testing.T, gdb *gorm.DB, email, phone string) *models.Client {
	t.Helper()

	client := &models.Client{
		FullName:    "Test Client",
		Email:       email,
		PhoneNumber: phone,
		IsActive:    true,
	}
	if err := gdb.Create(client).Error; err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

// CreateProduct inserts a product with the given price.
func CreateProduct(t *testing.T, gdb *gorm.DB, name, price string, available bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
	}
	if err := gdb.Create(product).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}

// Currency returns the seeded USD currency.
func Currency(t *testing.T, gdb *gorm.DB) *models.CurrencyType {
	t.Helper()

	var currency models.CurrencyType
	if err := gdb.Where("name = ?", "USD").First(&currency).Error; err != nil {
		t.Fatalf("Failed to load currency: %v", err)
	}
	return &currency
}

// StatusByName returns a seeded status.
func StatusByName(t *testing.T, gdb *gorm.DB, name string) *models.Status {
	t.Helper()

	var status models.Status
	if err := gdb.Where("name = ?", name).First(&status).Error; err != nil {
		t.Fatalf("Failed to load status %s: %v", name, err)
	}
	return &status
}
