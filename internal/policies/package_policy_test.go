package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"archaur/internal/types"
)

func TestClassifyPackageDevelSuffix(t *testing.T) {
	cases := []string{"foo-git", "foo-svn", "foo-hg", "foo-bzr", "foo-cvs", "foo-darcs"}
	for _, name := range cases {
		pkg := types.Package{Name: name}
		assert.Equalf(t, types.KindDevel, ClassifyPackage(pkg), name)
	}
}

func TestClassifyPackageUsesPkgBaseWhenSet(t *testing.T) {
	pkg := types.Package{Name: "foo-git-doc", PkgBase: "foo-git"}
	assert.Equal(t, types.KindDevel, ClassifyPackage(pkg))
}

func TestClassifyPackagePlainNameIsAur(t *testing.T) {
	pkg := types.Package{Name: "yay"}
	assert.Equal(t, types.KindAur, ClassifyPackage(pkg))
}

func TestClassifyPackageIsCaseInsensitive(t *testing.T) {
	pkg := types.Package{Name: "Foo-GIT"}
	assert.Equal(t, types.KindDevel, ClassifyPackage(pkg))
}
