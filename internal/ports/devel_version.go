package ports

import "context"

// DevelVersionPort resolves the current upstream source version of a
// devel-kind package (e.g. by inspecting a VCS checkout's .SRCINFO),
// used to refresh Package.Version before planning when --devel is set.
type DevelVersionPort interface {
	CurrentVersion(ctx context.Context, pkgBase string) (string, error)
}
