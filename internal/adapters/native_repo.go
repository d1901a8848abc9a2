package adapters

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"archaur/internal/core"
	"archaur/internal/ports"
	"archaur/internal/types"
)

// NativeRepoAdapter reads package records out of pacman sync databases
// that have already been extracted on disk (one directory per repo
// under Root, each containing <pkg>-<ver>/desc files) — the same
// on-disk shape `pacman -Sy` leaves under /var/lib/pacman/sync/<repo>.
type NativeRepoAdapter struct {
	Root string
}

func NewNativeRepoAdapter(root string) NativeRepoAdapter {
	return NativeRepoAdapter{Root: root}
}

func (a NativeRepoAdapter) RepoPackages(ctx context.Context) ([]types.Package, error) {
	entries, err := os.ReadDir(a.Root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read repo root: " + a.Root).
			WithCause(err)
	}
	var out []types.Package
	for _, repoEntry := range entries {
		if !repoEntry.IsDir() {
			continue
		}
		repoName := repoEntry.Name()
		repoDir := filepath.Join(a.Root, repoName)
		err := filepath.WalkDir(repoDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Base(path) != "desc" {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			fields, err := parseDescBlock(f)
			if err != nil {
				return err
			}
			out = append(out, packageFromDesc(fields, core.SplitDep, types.KindRepo, repoName))
			return nil
		})
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to scan repo: " + repoName).
				WithCause(err)
		}
	}
	return out, nil
}

// ExpandGroup returns the names of every repo package whose GROUPS
// field contains name.
func (a NativeRepoAdapter) ExpandGroup(name string) ([]string, error) {
	packages, err := a.RepoPackages(context.Background())
	if err != nil {
		return nil, err
	}
	var out []string
	for _, pkg := range packages {
		for _, group := range pkg.Groups {
			if strings.EqualFold(group, name) {
				out = append(out, pkg.Name)
			}
		}
	}
	return out, nil
}

var (
	_ ports.NativeRepoPort     = NativeRepoAdapter{}
	_ ports.GroupExpansionPort = NativeRepoAdapter{}
)
