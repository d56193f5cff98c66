package database

import (
	"fmt"
	"log"
	"os"
	"sms-backend/config"
	"sms-backend/models"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB() *gorm.DB {
	databaseSignal := config.AppConfig.DatabaseURL

	// GORM logger configuration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level (Silent, Error, Warn, Info)
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      false,       // Don't include params in the SQL log
			Colorful:                  true,        // Enable color
		},
	)

	db, err := gorm.Open(mysql.Open(databaseSignal), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect database: %w", err))
	}

	if err := Migrate(db); err != nil {
		panic(fmt.Errorf("failed to migrate database: %w", err))
	}

	DB = db
	fmt.Println("Database connection successful and migrations complete.")

	SeedInitialData(db)
	return db
}

// Migrate runs the schema migrations for all models of this service.
// Shared with the test setup, which runs it against SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Configuration{},
		&models.ConfigurationAttachment{},
		&models.GenericConfigurationAction{},
		&models.GenericConfigurationActionAttachment{},
	)
}

// SeedInitialData creates the initial admin account if none exists.
func SeedInitialData(db *gorm.DB) {
	var adminUser models.User
	if err := db.Where("username = ?", "admin").First(&adminUser).Error; err == gorm.ErrRecordNotFound {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("adminpassword"), bcrypt.DefaultCost)
		adminUser = models.User{
			Username: "admin",
			Password: string(hashedPassword),
			Email:    "admin@example.com",
		}
		if err := db.Create(&adminUser).Error; err != nil {
			log.Printf("Failed to create initial admin user: %v\n", err)
		} else {
			log.Println("Created initial admin user.")
		}
	}
}
