package adapters

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"archaur/internal/core"
	"archaur/internal/ports"
	"archaur/internal/types"
)

// InstalledSnapshotAdapter reads the locally installed package set from
// pacman's local database layout: one directory per installed
// "<name>-<version>" under Root, each with a desc file and an
// (optional) install-reason recorded the same way.
type InstalledSnapshotAdapter struct {
	Root string
}

func NewInstalledSnapshotAdapter(root string) InstalledSnapshotAdapter {
	return InstalledSnapshotAdapter{Root: root}
}

func (a InstalledSnapshotAdapter) InstalledPackages(ctx context.Context) ([]types.Package, error) {
	entries, err := os.ReadDir(a.Root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read local db root: " + a.Root).
			WithCause(err)
	}
	var out []types.Package
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		descPath := filepath.Join(a.Root, entry.Name(), "desc")
		f, err := os.Open(descPath)
		if err != nil {
			continue
		}
		fields, err := parseDescBlock(f)
		f.Close()
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to parse local db entry: " + entry.Name()).
				WithCause(err)
		}
		// Kind is left empty: a local db entry doesn't record its own
		// provenance. The app layer classifies it against the upstream
		// repo/AUR universe once both are loaded.
		pkg := packageFromDesc(fields, core.SplitDep, "", "")
		if reason := first(fields, "REASON"); reason == "1" {
			pkg.InstallReason = types.ReasonDependency
		} else {
			pkg.InstallReason = types.ReasonExplicit
		}
		out = append(out, pkg)
	}
	return out, nil
}

var _ ports.InstalledSnapshotPort = InstalledSnapshotAdapter{}
