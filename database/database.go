package database

import (
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/timetable/configs"
	"github.com/anjiri1684/timetable/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := config.Config("DATABASE_URL")
	slow := config.Duration("DB_SLOW_THRESHOLD", 200*time.Millisecond)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 NewGormLogger(slow),
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	DB = db
	fmt.Println("✅ Database connected successfully")
}

// Migrate creates the catalog tables before schedule_entries, whose foreign
// keys point at them.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Instructor{},
		&models.Room{},
		&models.Course{},
		&models.Group{},
		&models.HourSlot{},
		&models.ScheduleEntry{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
