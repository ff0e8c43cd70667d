package infra

import (
	"fmt"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique indexes, check constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.RecipeItem{},
		&model.Stock{},
		&model.Lot{},
		&model.Area{},
		&model.AreaStock{},
		&model.Mesa{},
		&model.Session{},
		&model.Order{},
		&model.Item{},
		&model.StockHistory{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS / conditional DO blocks so re-running on
// an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open session per mesa, enforced at the storage layer so
		// concurrent claims cannot both win.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sessions_open') THEN
		    CREATE UNIQUE INDEX idx_sessions_open
		        ON sessions (mesa_id)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Balances can never be persisted negative even if an application
		// guard is bypassed.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stocks_non_negative') THEN
		    ALTER TABLE stocks ADD CONSTRAINT chk_stocks_non_negative CHECK (total_quantity >= 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_lots_non_negative') THEN
		    ALTER TABLE lots ADD CONSTRAINT chk_lots_non_negative CHECK (quantity >= 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_area_stocks_non_negative') THEN
		    ALTER TABLE area_stocks ADD CONSTRAINT chk_area_stocks_non_negative CHECK (quantity >= 0);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
