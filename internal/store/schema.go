package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect names the SQL flavour of the underlying database. It doubles as the database/sql driver
// name.
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

// Calendar dates are kept as ISO text (YYYY-MM-DD) on both dialects so that they compare and scan
// as plain strings. Only the timestamps use a native time type.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT,
		email TEXT,
		birthday TEXT,
		date_met TEXT,
		how_met TEXT,
		favorite_color TEXT,
		last_contacted_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts (first_name, last_name)`,
	`CREATE TABLE IF NOT EXISTS phones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		phone_number TEXT NOT NULL,
		phone_type TEXT,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS pets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS partners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		note_text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		reminder_date TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contact_tags (
		contact_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (contact_id, tag_id),
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS relationships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact1_id INTEGER NOT NULL,
		contact2_id INTEGER NOT NULL,
		relationship_type TEXT NOT NULL,
		FOREIGN KEY (contact1_id) REFERENCES contacts (id) ON DELETE CASCADE,
		FOREIGN KEY (contact2_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS special_occasions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS gifts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL,
		occasion_id INTEGER,
		description TEXT NOT NULL,
		direction TEXT NOT NULL,
		date TEXT,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE,
		FOREIGN KEY (occasion_id) REFERENCES special_occasions (id) ON DELETE SET NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255),
		email VARCHAR(255),
		birthday CHAR(10),
		date_met CHAR(10),
		how_met VARCHAR(255),
		favorite_color VARCHAR(255),
		last_contacted_at DATETIME(6),
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_contacts_name (first_name, last_name)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS phones (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		phone_number VARCHAR(64) NOT NULL,
		phone_type VARCHAR(64),
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS pets (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS partners (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS notes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		note_text TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		message TEXT NOT NULL,
		reminder_date CHAR(10) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS contact_tags (
		contact_id BIGINT NOT NULL,
		tag_id BIGINT NOT NULL,
		PRIMARY KEY (contact_id, tag_id),
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS relationships (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact1_id BIGINT NOT NULL,
		contact2_id BIGINT NOT NULL,
		relationship_type VARCHAR(255) NOT NULL,
		FOREIGN KEY (contact1_id) REFERENCES contacts (id) ON DELETE CASCADE,
		FOREIGN KEY (contact2_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS special_occasions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		date CHAR(10) NOT NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS gifts (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		occasion_id BIGINT,
		description TEXT NOT NULL,
		direction VARCHAR(16) NOT NULL,
		date CHAR(10),
		FOREIGN KEY (contact_id) REFERENCES contacts (id) ON DELETE CASCADE,
		FOREIGN KEY (occasion_id) REFERENCES special_occasions (id) ON DELETE SET NULL
	) ENGINE=InnoDB`,
}

// Schema returns the statements that create all tables of the given dialect.
func Schema(dialect Dialect) ([]string, error) {
	switch dialect {
	case SQLite:
		return sqliteSchema, nil
	case MySQL:
		return mysqlSchema, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", dialect)
}

// CreateSchema creates all tables that do not exist yet.
func CreateSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	statements, err := Schema(dialect)
	if err != nil {
		return err
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return wrap("create schema", err)
		}
	}
	return nil
}
