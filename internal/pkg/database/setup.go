package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var DB *gorm.DB

// GetDB returns the process wide connection opened by SetupDatabase.
func GetDB() *gorm.DB {
	return DB
}

// Driver returns the configured SQL dialect.
func Driver() string {
	if env.GetEnv("DB_DRIVER", DriverPostgres) == DriverMySQL {
		return DriverMySQL
	}
	return DriverPostgres
}

// DSN builds the connection string for the configured driver.
func DSN() string {
	if Driver() == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", ""),
		)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_NAME", ""),
		env.GetEnv("DB_PORT", "5432"),
		env.GetEnv("DB_SSLMODE", "disable"),
	)
}

func dialector() gorm.Dialector {
	if Driver() == DriverMySQL {
		return mysql.New(mysql.Config{
			DSN:                       DSN(),
			DefaultStringSize:         256,
			SkipInitializeWithVersion: false,
		})
	}
	return postgres.New(postgres.Config{DSN: DSN()})
}

func SetupDatabase() {
	var err error

	cfg := &gorm.Config{}
	if !env.IsDev() {
		cfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(dialector(), cfg)
		if err == nil {
			if env.IsDev() {
				if err := AutoMigrate(DB); err != nil {
					log.Errorf("[Database] auto migrate failed: %v", err)
				}
			}
			log.Infof("[Database] connected (%s)", Driver())
			return
		}

		log.Warnf("[Database] failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// AutoMigrate creates or updates every table the application owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSource{},
		&models.ProviderAccount{},
		&models.Verification{},
		&models.Post{},
		&models.Tag{},
		&models.PostTag{},
		&models.PricingPlanGroup{},
		&models.PricingPlan{},
		&models.Usage{},
		&models.CreditLog{},
		&models.BillingSubscription{},
		&models.BillingWebhookEvent{},
	)
}
