package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	deliverydomain "github.com/smallbiznis/vitrine/internal/delivery/domain"
	herodomain "github.com/smallbiznis/vitrine/internal/heroslide/domain"
	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table in dependency order. Non-postgres databases are
// created from it with AutoMigrate.
func Models() []any {
	return []any{
		&taxdomain.Collection{},
		&taxdomain.Category{},
		&taxdomain.SubCategory{},
		&taxdomain.Brand{},
		&taxdomain.Type{},
		&productdomain.Product{},
		&productdomain.ProductImage{},
		&productdomain.ProductSpecification{},
		&importdomain.ImportRun{},
		&herodomain.HeroSlide{},
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&deliverydomain.Delivery{},
		&deliverydomain.History{},
		&authdomain.User{},
		&authdomain.Session{},
	}
}

// Migrate brings the schema up to date for the connected dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.
	return nil
}
