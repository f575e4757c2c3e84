package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// ConnectDatabase opens (or creates) the embedded database file and sets the
// global DB. DB_PATH defaults to production.db next to the binary.
func ConnectDatabase() error {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "production.db"
	}

	logMode := logger.Error
	if os.Getenv("LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	// Single writer connection: sqlite serializes writers anyway, and a single
	// pooled connection keeps every engine transaction fully isolated without
	// SQLITE_BUSY churn.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := database.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return err
	}

	db = database
	return nil
}

// MustConnectDatabase is ConnectDatabase for cmd mains that cannot proceed
// without a database.
func MustConnectDatabase() {
	if err := ConnectDatabase(); err != nil {
		log.Fatal("Failed to connect to database. \nError: ", err)
	}
}
