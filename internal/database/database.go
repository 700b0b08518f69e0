package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/config"
	"github.com/budgetwise/backend/internal/models"
)

// Connect opens the Postgres connection and runs schema migrations.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}

// Migrate applies the schema. Shared by the server and the test harness.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Expense{},
		&models.ExpenseSplit{},
		&models.Settlement{},
	); err != nil {
		return err
	}

	return addCheckConstraints(db)
}

// addCheckConstraints adds constraints AutoMigrate cannot express.
// Only runs against Postgres; sqlite (tests) enforces these in the
// service layer.
func addCheckConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	statements := []string{
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'chk_expenses_cost_positive'
			) THEN
				ALTER TABLE expenses ADD CONSTRAINT chk_expenses_cost_positive CHECK (cost > 0);
			END IF;
		END $$;`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'chk_settlements_amount_positive'
			) THEN
				ALTER TABLE settlements ADD CONSTRAINT chk_settlements_amount_positive CHECK (amount > 0);
			END IF;
		END $$;`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
