package core

import "archaur/internal/types"

// Chunk splits an ordered package list into install batches, keeping
// the input order: each maximal run of native repo packages becomes one
// batch that can be handed to the system package manager in one
// transaction, while every AUR/devel package becomes a batch of its
// own; consecutive non-repo packages are not merged, even when they
// share a pkgbase. Grounded on aurman's System.calc_install_chunks.
func Chunk(packages []types.Package) [][]types.Package {
	var chunks [][]types.Package
	var current []types.Package
	currentIsRepo := false

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
		}
	}

	for i, pkg := range packages {
		isRepo := pkg.Kind == types.KindRepo
		if i == 0 {
			currentIsRepo = isRepo
		}
		if isRepo != currentIsRepo {
			flush()
			currentIsRepo = isRepo
		}
		if !isRepo {
			// non-repo (AUR/devel) packages each get their own chunk,
			// since a failed build must not block unrelated packages.
			flush()
			chunks = append(chunks, []types.Package{pkg})
			continue
		}
		current = append(current, pkg)
	}
	flush()
	return chunks
}
