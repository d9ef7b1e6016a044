// Command seed prepares a database: schema, reference data, the super admin
// and, with -demo, a handful of sample products.
package main

import (
	"flag"
	"log"
	"os"

	"cargodesk/internal/config"
	"cargodesk/internal/db"
	"cargodesk/internal/models"
	console "cargodesk/internal/utils/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var demoProducts = []struct {
	name  string
	price string
}{
	{"Standard pallet", "45.00"},
	{"Half pallet", "25.00"},
	{"Oversize crate", "120.00"},
}

func main() {
	demo := flag.Bool("demo", false, "insert sample products")
	flag.Parse()

	logger := console.New("seed")

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect runs the migrations
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()
	gdb := db.GetDB()

	if err := models.SeedReferenceData(gdb); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}
	logger.Success("Reference data ready")

	admin, err := models.EnsureCreator(gdb, cfg.SuperAdmin)
	if err != nil {
		log.Fatalf("Failed to bootstrap super admin: %v", err)
	}
	logger.Success("Super admin %s ready", admin.UserName)

	if *demo {
		if err := seedDemoProducts(gdb); err != nil {
			log.Fatalf("Failed to seed demo products: %v", err)
		}
		logger.Success("Demo products ready")
	}
}

func seedDemoProducts(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, p := range demoProducts {
			product := models.Product{
				Name:        p.name,
				Price:       decimal.RequireFromString(p.price),
				IsAvailable: true,
			}
			if err := tx.Where(models.Product{Name: p.name}).FirstOrCreate(&product).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
