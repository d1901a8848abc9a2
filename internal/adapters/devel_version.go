package adapters

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"archaur/internal/ports"
	"archaur/internal/shared"
)

// DevelVersionAdapter refreshes a devel package's version by running
// makepkg against its cached build directory and reading the
// resulting .SRCINFO, mirroring aurman's devel-refresh step in
// main_solver.process (makepkg -odc --noprepare --skipinteg, then
// version_from_srcinfo).
type DevelVersionAdapter struct {
	CacheDir string
	Runner   func(ctx context.Context, dir string) error
}

func NewDevelVersionAdapter(cacheDir string) DevelVersionAdapter {
	return DevelVersionAdapter{
		CacheDir: cacheDir,
		Runner:   runMakepkg,
	}
}

func runMakepkg(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "makepkg", "-odc", "--noprepare", "--skipinteg")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return shared.CommandError(output, err)
	}
	return nil
}

func (a DevelVersionAdapter) CurrentVersion(ctx context.Context, pkgBase string) (string, error) {
	dir := filepath.Join(a.CacheDir, pkgBase)
	if _, err := os.Stat(dir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package dir not found: " + dir).
			WithCause(err)
	}
	if err := a.Runner(ctx, dir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("makepkg failed for " + pkgBase).
			WithCause(err)
	}
	return versionFromSrcinfo(filepath.Join(dir, ".SRCINFO"))
}

func versionFromSrcinfo(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read .SRCINFO: " + path).
			WithCause(err)
	}
	defer f.Close()

	var epoch, pkgver, pkgrel string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "pkgver ="):
			pkgver = strings.TrimSpace(strings.TrimPrefix(line, "pkgver ="))
		case strings.HasPrefix(line, "pkgrel ="):
			pkgrel = strings.TrimSpace(strings.TrimPrefix(line, "pkgrel ="))
		case strings.HasPrefix(line, "epoch ="):
			epoch = strings.TrimSpace(strings.TrimPrefix(line, "epoch ="))
		}
	}
	if pkgver == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(".SRCINFO missing pkgver: " + path)
	}
	version := pkgver
	if pkgrel != "" {
		version += "-" + pkgrel
	}
	if epoch != "" && epoch != "0" {
		version = epoch + ":" + version
	}
	return version, nil
}

var _ ports.DevelVersionPort = DevelVersionAdapter{}
