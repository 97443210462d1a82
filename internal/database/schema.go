package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the server needs.  Statements are idempotent
// and run in order; child tables cascade on delete of their parent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS members (
        id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        email         VARCHAR(255) NOT NULL,
        password_hash VARCHAR(255) NOT NULL,
        organization  VARCHAR(100) NOT NULL DEFAULT '',
        role          VARCHAR(16)  NOT NULL DEFAULT 'MANAGER',
        created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        UNIQUE KEY uq_members_email (email)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
        id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        member_id  BIGINT UNSIGNED NOT NULL,
        token_hash CHAR(64) NOT NULL,
        expires_at DATETIME NOT NULL,
        revoked_at DATETIME NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        UNIQUE KEY uq_refresh_tokens_hash (token_hash),
        CONSTRAINT fk_refresh_tokens_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS maps (
        id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        member_id  BIGINT UNSIGNED NOT NULL,
        name       VARCHAR(20) NOT NULL,
        drawing    MEDIUMTEXT NOT NULL,
        sharing_id CHAR(36) NOT NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        UNIQUE KEY uq_maps_sharing_id (sharing_id),
        CONSTRAINT fk_maps_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS spaces (
        id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        map_id          BIGINT UNSIGNED NOT NULL,
        name            VARCHAR(20) NOT NULL,
        color           VARCHAR(25) NOT NULL DEFAULT '',
        description     VARCHAR(100) NOT NULL DEFAULT '',
        area            TEXT NOT NULL,
        available_start SMALLINT NOT NULL,
        available_end   SMALLINT NOT NULL,
        time_unit       SMALLINT NOT NULL,
        min_duration    SMALLINT NOT NULL,
        max_duration    SMALLINT NOT NULL,
        enabled         BOOLEAN NOT NULL DEFAULT TRUE,
        enabled_days    VARCHAR(64) NOT NULL,
        created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        CONSTRAINT fk_spaces_map FOREIGN KEY (map_id) REFERENCES maps(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS presets (
        id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        member_id       BIGINT UNSIGNED NOT NULL,
        name            VARCHAR(20) NOT NULL,
        available_start SMALLINT NOT NULL,
        available_end   SMALLINT NOT NULL,
        time_unit       SMALLINT NOT NULL,
        min_duration    SMALLINT NOT NULL,
        max_duration    SMALLINT NOT NULL,
        enabled         BOOLEAN NOT NULL DEFAULT TRUE,
        enabled_days    VARCHAR(64) NOT NULL,
        created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT fk_presets_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
        id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        space_id      BIGINT UNSIGNED NOT NULL,
        start_time    DATETIME NOT NULL,
        end_time      DATETIME NOT NULL,
        owner_name    VARCHAR(20) NOT NULL,
        description   VARCHAR(100) NOT NULL DEFAULT '',
        password_hash VARCHAR(255) NOT NULL DEFAULT '',
        created_by    VARCHAR(16) NOT NULL,
        created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        KEY idx_reservations_space_time (space_id, start_time, end_time),
        CONSTRAINT fk_reservations_space FOREIGN KEY (space_id) REFERENCES spaces(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
