package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
	"github.com/PeeapDev/merchant-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresService connects to Postgres, or to a local SQLite file
// when DB_DRIVER=sqlite (dev terminals run without a Postgres install).
func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))
	if driver == "sqlite" {
		path := utils.GetEnv("SQLITE_PATH", "merchant.db", log)
		serviceLog.Info("Opening SQLite database", "path", path)
		sdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return &PostgresService{db: sdb, log: serviceLog}, nil
	}

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "merchant", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Merchant{},
		&types.StaffUser{},
		&types.UserToken{},
		&types.Register{},
		&types.Customer{},
		&types.Product{},
		&types.StockMovement{},
		&types.Supplier{},
		&types.PurchaseOrder{},
		&types.PurchaseOrderLine{},
		&types.Event{},
		&types.TicketType{},
		&types.Ticket{},
		&types.Order{},
		&types.OrderItem{},
		&types.Payment{},
		&types.CashSession{},
		&types.CashAdjustment{},
		&types.LoyaltySettings{},
		&types.LoyaltyAccount{},
		&types.LoyaltyTransaction{},
		&types.Wallet{},
		&types.WalletEntry{},
		&types.Storefront{},
		&types.School{},
		&types.SyncDevice{},
		&types.SyncOperation{},
		&types.CartDraft{},
		&types.JobRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
