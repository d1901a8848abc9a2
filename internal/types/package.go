package types

import "strings"

// StripVersioning strips a trailing "<op>version" suffix from a raw
// name, e.g. "glibc>=1.2.3" -> "glibc". Provides/Conflicts/Replaces
// entries carry this suffix the same way Depends entries do.
func StripVersioning(name string) string {
	operators := []string{">", "<", "="}
	start := len(name)
	for _, op := range operators {
		if idx := strings.Index(name, op); idx >= 0 && idx < start {
			start = idx
		}
	}
	return strings.TrimSpace(name[:start])
}

// Package is the authoritative record for one installable unit: a
// specific name/version pair, tagged with where it came from and what
// it requires/provides/conflicts with. Split packages share a PkgBase.
type Package struct {
	Name          string        `yaml:"name"`
	Version       string        `yaml:"version"`
	Kind          PackageKind   `yaml:"kind"`
	PkgBase       string        `yaml:"pkgbase,omitempty"`
	Repo          string        `yaml:"repo,omitempty"`
	InstallReason InstallReason `yaml:"install_reason,omitempty"`

	Depends      []Dependency `yaml:"depends,omitempty"`
	MakeDepends  []Dependency `yaml:"make_depends,omitempty"`
	CheckDepends []Dependency `yaml:"check_depends,omitempty"`

	Provides  []string `yaml:"provides,omitempty"`
	Conflicts []string `yaml:"conflicts,omitempty"`
	Replaces  []string `yaml:"replaces,omitempty"`
	Groups    []string `yaml:"groups,omitempty"`
}

// NewPackage builds a Package and strips any self-reference from its
// Conflicts list: a package's own name or any name it provides is
// never a conflict with itself, regardless of what upstream metadata
// says.
func NewPackage(p Package) Package {
	p.Conflicts = stripSelf(p.Name, p.Provides, p.Conflicts)
	return p
}

func stripSelf(name string, provides []string, conflicts []string) []string {
	if len(conflicts) == 0 {
		return conflicts
	}
	self := map[string]bool{name: true}
	for _, provided := range provides {
		self[StripVersioning(provided)] = true
	}
	out := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if self[StripVersioning(c)] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AllDepends returns Depends, MakeDepends and CheckDepends concatenated,
// the set a solver must satisfy to make a package installable.
func (p Package) AllDepends() []Dependency {
	out := make([]Dependency, 0, len(p.Depends)+len(p.MakeDepends)+len(p.CheckDepends))
	out = append(out, p.Depends...)
	out = append(out, p.MakeDepends...)
	out = append(out, p.CheckDepends...)
	return out
}

// ProvidesNames returns the package's own name plus everything it
// provides — the full set of identifiers it can satisfy a dependency
// under.
func (p Package) ProvidesNames() []string {
	out := make([]string, 0, len(p.Provides)+1)
	out = append(out, p.Name)
	out = append(out, p.Provides...)
	return out
}
