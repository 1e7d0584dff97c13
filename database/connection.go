package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/ridoystarlord/schedmigrate/generator"
)

// DB is an open database plus the dialect used to render DDL for it.
type DB struct {
	*sql.DB
	Dialect generator.Dialect
}

var (
	db     *DB
	dbOnce sync.Once
	dbErr  error
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

// Get returns a process-wide connection for url, opened on first use.
func Get(url string) (*DB, error) {
	dbOnce.Do(func() {
		if url == "" {
			dbErr = fmt.Errorf("DATABASE_URL not set in environment")
			return
		}
		db, dbErr = Open(context.Background(), url)
	})
	return db, dbErr
}

// Open connects to a postgres:// or sqlite:// URL and verifies the connection.
func Open(ctx context.Context, url string) (*DB, error) {
	driver, dsn, dialectName, err := parseURL(url)
	if err != nil {
		return nil, err
	}
	dialect, err := generator.ForName(dialectName)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	if dialectName == generator.SQLite {
		// One writer; every statement of a run goes through the same connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	} else {
		sqlDB.SetMaxOpenConns(5)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if dialectName == generator.SQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
			}
		}
	}

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// Close closes the shared connection (should be called on application shutdown)
func Close() {
	if db != nil {
		db.Close()
	}
}

func parseURL(url string) (driver, dsn, dialect string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, generator.Postgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", sqliteDSN(strings.TrimPrefix(url, "sqlite://")), generator.SQLite, nil
	case strings.HasPrefix(url, "sqlite:"):
		return "sqlite", sqliteDSN(strings.TrimPrefix(url, "sqlite:")), generator.SQLite, nil
	}
	return "", "", "", fmt.Errorf("unsupported database URL %q (expected postgres:// or sqlite://)", url)
}

// sqliteDSN makes write transactions take the database lock up front so a
// migration step never observes another writer halfway through.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate&_pragma=busy_timeout(5000)"
}
