package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configFixture = `[aur_packages]
yay
paru

[repo_packages]
vim

[devel_packages]
some-git-package

[no_notification_unknown_packages]
ignored-foreign-pkg
`

func TestConfigFileAdapterLoadsAllSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.conf")
	require.NoError(t, os.WriteFile(path, []byte(configFixture), 0o644))

	cfg, err := NewConfigFileAdapter().Load(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"yay", "paru"}, cfg.AurPackages)
	assert.Equal(t, []string{"vim"}, cfg.RepoPackages)
	assert.Equal(t, []string{"some-git-package"}, cfg.DevelPackages)
	assert.Equal(t, []string{"ignored-foreign-pkg"}, cfg.NoNotificationUnknownPackage)
}

func TestConfigFileAdapterMissingFileIsAnError(t *testing.T) {
	_, err := NewConfigFileAdapter().Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
}
