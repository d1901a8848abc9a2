package adapters

import (
	"bufio"
	"io"
	"strings"

	"archaur/internal/types"
)

// parseDescBlock parses one pacman-style "desc" record: repeated
// "%FIELD%\nvalue\nvalue...\n\n" blocks, the same format pacman's local
// and sync databases use on disk. Multi-valued fields (DEPENDS,
// PROVIDES, CONFLICTS, REPLACES, GROUPS) accumulate every line until
// the next blank line or field marker.
func parseDescBlock(r io.Reader) (map[string][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fields := map[string][]string{}
	var field string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "%") && strings.HasSuffix(line, "%") {
			field = strings.Trim(line, "%")
			continue
		}
		if line == "" {
			field = ""
			continue
		}
		if field == "" {
			continue
		}
		fields[field] = append(fields[field], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

func first(fields map[string][]string, key string) string {
	if v := fields[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// packageFromDesc builds a Package from a parsed desc block, splitting
// every dep-string field with the splitDep function supplied by the
// caller (core.SplitDep in NativeRepoAdapter and
// InstalledSnapshotAdapter; the unit test passes its own).
func packageFromDesc(fields map[string][]string, splitDep func(string) types.Dependency, kind types.PackageKind, repo string) types.Package {
	deps := func(key string) []types.Dependency {
		var out []types.Dependency
		for _, raw := range fields[key] {
			out = append(out, splitDep(raw))
		}
		return out
	}
	return types.NewPackage(types.Package{
		Name:         first(fields, "NAME"),
		Version:      first(fields, "VERSION"),
		PkgBase:      first(fields, "BASE"),
		Kind:         kind,
		Repo:         repo,
		Depends:      deps("DEPENDS"),
		MakeDepends:  deps("MAKEDEPENDS"),
		CheckDepends: deps("CHECKDEPENDS"),
		Provides:     fields["PROVIDES"],
		Conflicts:    fields["CONFLICTS"],
		Replaces:     fields["REPLACES"],
		Groups:       fields["GROUPS"],
	})
}
