package database

import (
	"fmt"
	"os"
	"strconv"

	"github.com/quickbid/quickbid/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, pass, name, port, sslmode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	DB = db
	log.Info("Connected to database")

	autoMigrateEnv := os.Getenv("DB_AUTO_MIGRATE")
	autoMigrate, err := strconv.ParseBool(autoMigrateEnv)
	if err != nil {
		log.Warnf("Invalid value for DB_AUTO_MIGRATE: %s", autoMigrateEnv)
	}

	if autoMigrate {
		if err := Migrate(DB); err != nil {
			log.WithError(err).Fatal("Failed to auto-migrate database")
		}
		log.Info("Auto migration completed")
	}
}

// Migrate is split out so test suites can run it against their own handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Wallet{},
		&models.Auction{},
		&models.Bid{},
		&models.Account{},
		&models.Transaction{},
		&models.LedgerEntry{},
		&models.EscrowAccount{},
		&models.Payout{},
		&models.Settlement{},
		&models.PaymentEvent{},
	)
}
