package database

import (
	"context"
	"database/sql"
)

// schema holds the DDL for all tables, in dependency order. Every
// statement is idempotent so EnsureSchema can run on each startup.
// The UNIQUE and composite-key constraints here are the authoritative
// guards for the races the application-level checks only narrow:
// duplicate emails, duplicate tag names and duplicate memberships.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(50)  NOT NULL DEFAULT '',
		email         VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS gardens (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		owner_id    BIGINT UNSIGNED NOT NULL,
		name        VARCHAR(150) NOT NULL,
		description TEXT NULL,
		latitude    DOUBLE NOT NULL,
		longitude   DOUBLE NOT NULL,
		street_name VARCHAR(100) NULL,
		photo       VARCHAR(255) NULL,
		is_public   TINYINT(1) NOT NULL DEFAULT 1,
		joinable    TINYINT(1) NOT NULL DEFAULT 1,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_gardens_owner (owner_id),
		CONSTRAINT fk_gardens_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tags (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(100) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_tags_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS garden_tags (
		garden_id BIGINT UNSIGNED NOT NULL,
		tag_id    BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (garden_id, tag_id),
		CONSTRAINT fk_garden_tags_garden FOREIGN KEY (garden_id) REFERENCES gardens (id),
		CONSTRAINT fk_garden_tags_tag FOREIGN KEY (tag_id) REFERENCES tags (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_gardens (
		user_id    BIGINT UNSIGNED NOT NULL,
		garden_id  BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, garden_id),
		CONSTRAINT fk_user_gardens_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_user_gardens_garden FOREIGN KEY (garden_id) REFERENCES gardens (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables. It runs at process start
// before the HTTP server begins accepting requests.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
