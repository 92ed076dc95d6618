package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/artin59/3311-Project-sub001/config"
	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableGuards && cfg.Driver == "postgres" {
		log.Println("Applying postgres guard constraints...")
		if err := applyGuardDDL(db); err != nil {
			log.Printf("Warning: failed to apply some guard DDL: %v. Continuing without them.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Room{},
		&model.Booking{},
		&model.Account{},
		&model.Payment{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// applyGuardDDL adds constraints gorm tags cannot express. A room may
// reference at most one booking and every stored slot must be non-empty.
func applyGuardDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_rooms_active_booking ON rooms (active_booking_id) " +
			"WHERE active_booking_id IS NOT NULL AND active_booking_id <> '';",

		"CREATE INDEX IF NOT EXISTS idx_bookings_status_date ON bookings (status, date);",

		"DO $$ BEGIN " +
			"ALTER TABLE bookings ADD CONSTRAINT bookings_slot_valid " +
			"CHECK (end_time = '' OR end_time > start_time); " +
			"EXCEPTION WHEN duplicate_object THEN NULL; END $$;",

		"DO $$ BEGIN " +
			"ALTER TABLE payments ADD CONSTRAINT payments_amount_positive CHECK (amount > 0); " +
			"EXCEPTION WHEN duplicate_object THEN NULL; END $$;",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
