package ports

import (
	"context"

	"archaur/internal/types"
)

// NativeRepoPort returns the packages available from the distribution's
// own binary repositories (the pacman-sync-database side of the
// universe, as opposed to the source repository AurMetadataPort
// fronts).
type NativeRepoPort interface {
	RepoPackages(ctx context.Context) ([]types.Package, error)
}
