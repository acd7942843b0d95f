package app

import "bulkops/internal/types"

type ImportUsersRequest struct {
	ActorID        int64          `validate:"required,gt=0"`
	AuthMode       types.AuthMode `validate:"required,oneof=identity_url email_invite"`
	IdentityPrefix string         `validate:"omitempty,max=40,identity_prefix"`
	AllowCreate    bool
	InputPath      string `validate:"required"`
	StartLine      int    `validate:"gte=0"`
	RemoveInput    bool
}

type ImportUsersResult struct {
	Report types.ImportReport
}

type CopySettingsRequest struct {
	ActorID   int64  `validate:"required,gt=0"`
	ProjectID string `validate:"required"`
	// Settings maps a setting category to the values chosen for it.
	Settings map[string][]string
	// Order is the order in which categories were chosen. It may be empty.
	Order []string
}

type CopySettingsResult struct {
	Report types.CopySettingsReport
	// InvalidProject is set when the target project was missing or archived
	// and the failure notification was sent instead of running the job.
	InvalidProject bool
}

type ValidateInputRequest struct {
	InputPath string         `validate:"required"`
	AuthMode  types.AuthMode `validate:"required,oneof=identity_url email_invite"`
}

type ValidateInputResult struct {
	Columns []string
}

type MigrateRequest struct {
	Path string `validate:"required"`
}

type MigrateResult struct {
	Version int64
}
