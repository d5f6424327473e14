package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/tiles"
	"footprint-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(dsn string, serialFloor int64) {
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("❌ Failed to get underlying sql.DB:", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db

	if err := Migrate(DB, serialFloor); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}

// Config is the gorm config shared by the server and test databases.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// Migrate creates all tables and seeds the serial counter at floor if it does not exist yet.
func Migrate(db *gorm.DB, floor int64) error {
	if err := db.AutoMigrate(
		// identity
		&users.User{},
		&users.SerialCounter{},

		// pages
		&site.Footprint{},

		// tiles
		&tiles.ContentTile{},
		&tiles.LinkTile{},
		&tiles.LibraryItem{},
		&tiles.Room{},
	); err != nil {
		return err
	}

	counter := users.SerialCounter{Name: users.UserSerialCounter, Value: floor}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error
}
