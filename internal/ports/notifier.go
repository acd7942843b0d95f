package ports

import (
	"context"

	"bulkops/internal/types"
)

// NotifierPort delivers end-of-run reports to the actor that started the job.
type NotifierPort interface {
	ImportCompleted(ctx context.Context, recipient types.User, report types.ImportReport) error
	ImportInvalidInput(ctx context.Context, recipient types.User, messages []string) error
	CopySettingsCompleted(ctx context.Context, recipient types.User, project types.Project, report types.CopySettingsReport) error
	CopySettingsInvalidProject(ctx context.Context, recipient types.User) error
}
