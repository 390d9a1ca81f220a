package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production, via lib/pq
		var sqlDB *sql.DB
		sqlDB, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		product_code TEXT UNIQUE NOT NULL,
		shopify_product_id TEXT,
		shopify_collection_id TEXT,
		published BOOLEAN DEFAULT false,
		title TEXT NOT NULL DEFAULT '',
		body_html TEXT NOT NULL DEFAULT '',
		vendor TEXT NOT NULL DEFAULT '',
		product_type TEXT NOT NULL DEFAULT '',
		variants TEXT NOT NULL DEFAULT '[]',
		image TEXT,
		collection_title TEXT NOT NULL DEFAULT '',
		collection_desc TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY,
		shopify_location_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS publications (
		id UUID PRIMARY KEY,
		shopify_publication_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		supports_future_publishing BOOLEAN DEFAULT false,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_products_shopify_product_id ON products (shopify_product_id);
	CREATE INDEX IF NOT EXISTS idx_products_updated_at ON products (updated_at);
	`

	// sqlite has no TIMESTAMPTZ/NOW(); gorm fills timestamps itself there
	if strings.HasPrefix(databaseURL, "sqlite://") {
		createTablesSQL = strings.ReplaceAll(createTablesSQL, "TIMESTAMPTZ DEFAULT NOW()", "DATETIME")
		createTablesSQL = strings.ReplaceAll(createTablesSQL, "UUID", "TEXT")
	}

	for _, stmt := range strings.Split(createTablesSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
