package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"bulkops/internal/adapters"
)

// Migrate brings the SQLite database at req.Path to the latest schema.
func Migrate(ctx context.Context, req MigrateRequest) (MigrateResult, error) {
	if err := validateRequest(req); err != nil {
		return MigrateResult{}, err
	}
	db, err := adapters.OpenSQLite(ctx, req.Path)
	if err != nil {
		return MigrateResult{}, err
	}
	defer db.Close()
	if err := adapters.RunMigrations(db); err != nil {
		return MigrateResult{}, err
	}
	version, err := adapters.MigrationVersion(db)
	if err != nil {
		return MigrateResult{}, err
	}
	log.Ctx(ctx).Info().Str("path", req.Path).Int64("version", version).Msg("migrations applied")
	return MigrateResult{Version: version}, nil
}
