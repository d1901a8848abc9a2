package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripVersioning(t *testing.T) {
	cases := map[string]string{
		"glibc":         "glibc",
		"glibc>=1.2.3":  "glibc",
		"glibc<=1.2.3":  "glibc",
		"glibc=1.2.3":   "glibc",
		"  glibc  ":     "glibc",
		"glibc>1.2.3-1": "glibc",
	}
	for raw, want := range cases {
		assert.Equal(t, want, StripVersioning(raw), raw)
	}
}

func TestNewPackageStripsSelfConflicts(t *testing.T) {
	pkg := NewPackage(Package{
		Name:      "mesa",
		Provides:  []string{"ati-dri"},
		Conflicts: []string{"ati-dri", "nvidia-dri"},
	})
	assert.Equal(t, []string{"nvidia-dri"}, pkg.Conflicts)
}

func TestNewPackageStripsNameSelfConflict(t *testing.T) {
	pkg := NewPackage(Package{Name: "foo", Conflicts: []string{"foo", "bar"}})
	assert.Equal(t, []string{"bar"}, pkg.Conflicts)
}

func TestAllDependsConcatenatesAllThreeLists(t *testing.T) {
	pkg := Package{
		Depends:      []Dependency{{Name: "a"}},
		MakeDepends:  []Dependency{{Name: "b"}},
		CheckDepends: []Dependency{{Name: "c"}},
	}
	all := pkg.AllDepends()
	assert.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
	assert.Equal(t, "c", all[2].Name)
}

func TestProvidesNamesIncludesOwnName(t *testing.T) {
	pkg := Package{Name: "foo", Provides: []string{"bar", "baz"}}
	assert.Equal(t, []string{"foo", "bar", "baz"}, pkg.ProvidesNames())
}
