package policies

import (
	"strings"

	"archaur/internal/types"
)

// develSuffixes are the VCS-checkout naming conventions aurman treats
// as "devel" packages: their version has to be refreshed from the
// upstream source tree rather than trusted from cached metadata.
var develSuffixes = []string{"-git", "-svn", "-hg", "-bzr", "-cvs", "-darcs"}

// ClassifyPackage assigns a PackageKind to an untyped package based on
// its pkgbase naming convention: Devel for a VCS suffix, Aur otherwise;
// it never returns Repo or Foreign. The app layer applies it to
// AUR-sourced records and to installed packages not found in the
// native repos; NativeRepoPort results arrive already tagged as Repo.
func ClassifyPackage(pkg types.Package) types.PackageKind {
	base := pkg.PkgBase
	if base == "" {
		base = pkg.Name
	}
	base = strings.ToLower(base)
	for _, suffix := range develSuffixes {
		if strings.HasSuffix(base, suffix) {
			return types.KindDevel
		}
	}
	return types.KindAur
}
