package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/database/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TxFunc is a function executed inside a transaction.
type TxFunc func(tx *gorm.DB) error

// Provider wraps a gorm connection for a configured backend.
type Provider struct {
	db   *gorm.DB
	name string
}

// Open connects to the configured database backend.
func Open(cfg *config.Config) (*Provider, error) {
	var (
		db  *gorm.DB
		err error
	)

	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	name := cfg.DBType
	switch cfg.DBType {
	case "sqlite", "sqlite3", "":
		name = "sqlite"
		path := cfg.DBFilePath
		if path == "" {
			path = "./data/treklog.db"
		}
		dsn := fmt.Sprintf("%s?_journal_mode=WAL", path)
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
		}
		log.Printf("Using SQLite database file: %s", path)
	case "postgres", "postgresql":
		name = "postgres"
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUsername, cfg.DBPassword, cfg.DBName)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres database: %w", err)
		}
		log.Printf("Connected to PostgreSQL database on %s:%d", cfg.DBHost, cfg.DBPort)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	return &Provider{db: db, name: name}, nil
}

// NewProvider wraps an existing gorm connection (used by tests).
func NewProvider(db *gorm.DB, name string) *Provider {
	return &Provider{db: db, name: name}
}

func (p *Provider) DB() *gorm.DB { return p.db }

func (p *Provider) Name() string { return p.name }

func (p *Provider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *Provider) Transaction(fn TxFunc) error {
	return p.db.Transaction(fn)
}

func (p *Provider) TransactionWithContext(ctx context.Context, fn TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *Provider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (p *Provider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	log.Println("Closing database connection...")
	return sqlDB.Close()
}

// AutoMigrate runs DDL for every model.
func (p *Provider) AutoMigrate() error {
	err := p.db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.Location{},
		&models.Tag{},
		&models.Companion{},
		&models.Photo{},
		&models.PhotoAlbum{},
		&models.PhotoAlbumAssignment{},
		&models.Transportation{},
		&models.Activity{},
		&models.Lodging{},
		&models.JournalEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate database schema: %w", err)
	}
	return nil
}
