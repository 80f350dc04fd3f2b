package database

import (
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/driving_school/configs"
	"github.com/anjiri1684/driving_school/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableNestedTransaction:                 true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("Warning: could not tune connection pool: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(config.ConfigInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(config.ConfigInt("DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(config.ConfigDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute))
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Student{},
		&models.Contract{},
		&models.CatalogItem{},
		&models.ContractItem{},
		&models.Instructor{},
		&models.InstructorAvailability{},
		&models.Vehicle{},
		&models.Lesson{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	for _, stmt := range overlapConstraints {
		if err := DB.Exec(stmt).Error; err != nil {
			log.Fatalf("🔥 Failed to install lesson overlap constraints: %v", err)
		}
	}
	fmt.Println("✅ Database migration successful")
}

// overlapConstraints make Postgres reject any second non-cancelled lesson
// that overlaps an instructor's or a vehicle's [start, end) window.
var overlapConstraints = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + instructorOverlapConstraint + `') THEN
		ALTER TABLE lessons ADD CONSTRAINT ` + instructorOverlapConstraint + ` EXCLUDE USING gist (
			instructor_id WITH =,
			tsrange(lesson_date + start_time, lesson_date + end_time, '[)') WITH &&
		) WHERE (status <> 'cancelled');
	END IF;
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + vehicleOverlapConstraint + `') THEN
		ALTER TABLE lessons ADD CONSTRAINT ` + vehicleOverlapConstraint + ` EXCLUDE USING gist (
			vehicle_id WITH =,
			tsrange(lesson_date + start_time, lesson_date + end_time, '[)') WITH &&
		) WHERE (status <> 'cancelled');
	END IF;
END $$`,
}
