package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go-carwash-pullout/internal/model"
	"go-carwash-pullout/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table in migration order.
var Models = []interface{}{
	&model.User{},
	&model.Bay{},
	&model.Employee{},
	&model.Service{},
	&model.ServiceOrder{},
	&model.ServiceOrderDetail{},
	&model.Supply{},
	&model.PulloutService{},
	&model.PulloutRequest{},
	&model.PulloutRequestDetail{},
	&model.StockMovement{},
}

// NewLogger builds the gorm SQL logger used by both postgres and test databases.
func NewLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  parseLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func ConnectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // pgbouncer transaction mode
	}), &gorm.Config{
		Logger:      NewLogger(cfg.LogLevel),
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
	return db, nil
}

// Migrate creates or updates all tables. Production deployments may prefer
// an external migration tool; this keeps local and test setups self-contained.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
