// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path two directories above the current
// working directory, which is the repository root for a test package
// under tests/. It fails the test if the working directory cannot be
// determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteDescEntry creates a pacman-desc-format package directory under
// root/name-version/desc with the given field block, matching the
// on-disk shape both NativeRepoAdapter and InstalledSnapshotAdapter
// read from.
func WriteDescEntry(t *testing.T, root, dirName, content string) {
	t.Helper()
	dir := filepath.Join(root, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "desc"), []byte(content), 0o644))
}
