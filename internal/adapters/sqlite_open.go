package adapters

import (
	"context"
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	sqliteBusyTimeout = "5000"
	sqliteJournalMode = "WAL"
)

// OpenSQLite opens a single-writer pool for the store file at path. Foreign
// keys are enforced and transactions take the write lock immediately.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_journal_mode", sqliteJournalMode)
	params.Set("_busy_timeout", sqliteBusyTimeout)
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite3", path+"?"+params.Encode())
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open sqlite store").
			WithCause(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to reach sqlite store").
			WithCause(err)
	}
	return db, nil
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("goose set dialect").
			WithCause(err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("goose up").
			WithCause(err)
	}
	return nil
}

// MigrationVersion reports the newest applied migration.
func MigrationVersion(db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}
