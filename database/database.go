package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
// The pool is capped at a single connection: a submission transaction reads
// the ledger before writing it, and with multiple connections a concurrent
// writer invalidates that snapshot and SQLite answers SQLITE_BUSY without
// waiting on the busy timeout. One connection makes transactions queue
// instead of failing.
func New(dbpath string) (*Client, error) {
	dsn := dbpath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	c := &Client{db: db}
	if err := c.Migrate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Migrate brings the schema up to date.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(
		&User{},
		&LevelProgress{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
