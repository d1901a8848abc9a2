package ports

import (
	"context"

	"archaur/internal/types"
)

// AurMetadataPort fetches package records from the source-repository
// metadata service (the AUR RPC, or a test double of it).
type AurMetadataPort interface {
	// Info returns the package record for each name that exists,
	// silently omitting names with no match.
	Info(ctx context.Context, names []string) ([]types.Package, error)
	// Search returns package records whose name or description match
	// the query.
	Search(ctx context.Context, query string) ([]types.Package, error)
}
