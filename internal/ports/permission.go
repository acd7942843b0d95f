package ports

import (
	"context"

	"bulkops/internal/types"
)

// PermissionPort answers whether actor may perform capability. A nil scope
// asks about a global capability.
type PermissionPort interface {
	Allowed(ctx context.Context, actor types.User, capability types.Capability, scope *types.Project) bool
}
