package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"tabletalk/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the relational store named by driver.
func Open(driver string, cfg *config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(driver) {
	case "postgres", "pgx":
		db, err = sql.Open("pgx", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	case "mysql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("mysql dsn must be provided")
		}
		db, err = sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	case "sqlite", "sqlite3":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		db, err = sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the conversation history table is present.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "postgres", "pgx":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_history (
				id BIGSERIAL PRIMARY KEY,
				user_id TEXT NOT NULL,
				conversation_id TEXT NOT NULL,
				message_type TEXT NOT NULL,
				content TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_history_conv ON chat_history(user_id, conversation_id)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_history (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				user_id VARCHAR(255) NOT NULL,
				conversation_id VARCHAR(255) NOT NULL,
				message_type VARCHAR(50) NOT NULL,
				content MEDIUMTEXT NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_chat_history_conv (user_id, conversation_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				conversation_id TEXT NOT NULL,
				message_type TEXT NOT NULL,
				content TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chat_history_conv ON chat_history(user_id, conversation_id)`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}
