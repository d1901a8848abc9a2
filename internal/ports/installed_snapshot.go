package ports

import (
	"context"

	"archaur/internal/types"
)

// InstalledSnapshotPort reads the locally installed package set.
type InstalledSnapshotPort interface {
	InstalledPackages(ctx context.Context) ([]types.Package, error)
}
