package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	defaultTimeout = 5 * time.Second
	errDuplicate   = 1062
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGINT       NOT NULL AUTO_INCREMENT,
	email         VARCHAR(255) NOT NULL,
	full_name     VARCHAR(255) NOT NULL,
	phone         VARCHAR(64)  NULL,
	password_hash VARCHAR(255) NOT NULL,
	role          ENUM('client','collaborator','admin') NOT NULL DEFAULT 'client',
	status        ENUM('pending','active','inactive','rejected') NOT NULL DEFAULT 'pending',
	created_at    DATETIME     NOT NULL,
	updated_at    DATETIME     NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;

CREATE TABLE IF NOT EXISTS service_requests (
	id              BIGINT NOT NULL AUTO_INCREMENT,
	client_id       BIGINT NOT NULL,
	collaborator_id BIGINT NULL,
	PRIMARY KEY (id),
	CONSTRAINT fk_requests_client FOREIGN KEY (client_id) REFERENCES users (id) ON DELETE CASCADE,
	CONSTRAINT fk_requests_collaborator FOREIGN KEY (collaborator_id) REFERENCES users (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`

// Open connects to MySQL using dsn and verifies the connection. parseTime
// and UTC are forced so DATETIME columns scan into time.Time consistently.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return db, nil
}

// Migrate creates the users table and the dependent service_requests table
// whose foreign keys cascade user deletion.
func Migrate(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("mysql migrate: %w", err)
	}
	return nil
}

// Ping returns a readiness check for db.
func Ping(db *sql.DB) func(context.Context) error {
	return db.PingContext
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicate
}
