package core

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/alowayed/go-univers/pkg/ecosystem/alpm"

	"archaur/internal/types"
)

// versionCache memoizes parsed alpm versions for the lifetime of one
// cache value. Compare and Satisfies each build a fresh cache per
// call, so parsed versions are not shared between calls.
type versionCache struct {
	ecosystem alpm.Ecosystem
	parsed    map[string]*alpm.Version
}

func newVersionCache() *versionCache {
	return &versionCache{parsed: map[string]*alpm.Version{}}
}

func (c *versionCache) parse(value string) (*alpm.Version, error) {
	if v, ok := c.parsed[value]; ok {
		return v, nil
	}
	v, err := c.ecosystem.NewVersion(value)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid version: " + value).
			WithCause(err)
	}
	c.parsed[value] = v
	return v, nil
}

// compare returns -1, 0, or 1 comparing two version strings.
func (c *versionCache) compare(a, b string) (int, error) {
	va, err := c.parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := c.parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// Compare compares two bare version strings, using a fresh cache for
// this one comparison.
func Compare(a, b string) (int, error) {
	return newVersionCache().compare(a, b)
}

// Satisfies reports whether the relationship `have <op> want` holds.
// Mirrors aurman's version_comparison: the vercmp sign is checked
// against the operator as a substring, so "<" is satisfied by both a
// strictly-less and (for "<=") an equal comparison.
func Satisfies(have string, op types.ConstraintOp, want string) (bool, error) {
	return satisfiesWith(newVersionCache(), have, op, want)
}

func satisfiesWith(cache *versionCache, have string, op types.ConstraintOp, want string) (bool, error) {
	if op == types.ConstraintOpNone {
		return true, nil
	}
	cmp, err := cache.compare(have, want)
	if err != nil {
		return false, err
	}
	opStr := string(op)
	switch {
	case cmp < 0:
		return strings.Contains(opStr, "<"), nil
	case cmp == 0:
		return strings.Contains(opStr, "="), nil
	default:
		return strings.Contains(opStr, ">"), nil
	}
}

// SplitDep splits a raw dep-string such as "glibc>=1.2.3-1" into its
// name, operator and version parts. Grounded on aurman's
// split_name_with_versioning: this scans for operator characters by
// position rather than splitting on a token, since pacman dep-strings
// never separate the operator from the name or version with whitespace.
func SplitDep(raw string) types.Dependency {
	const operators = ">=<"
	start := len(raw)
	end := -1
	for _, op := range []byte(operators) {
		idx := strings.IndexByte(raw, op)
		if idx < 0 {
			continue
		}
		if idx < start {
			start = idx
		}
		last := strings.LastIndexByte(raw, op)
		if last > end {
			end = last
		}
	}
	if end < start {
		return types.Dependency{Name: strings.TrimSpace(raw), Op: types.ConstraintOpNone}
	}
	name := strings.TrimSpace(raw[:start])
	opStr := raw[start : end+1]
	version := strings.TrimSpace(raw[end+1:])
	return types.Dependency{Name: name, Op: normalizeOp(opStr), Version: version}
}

func normalizeOp(raw string) types.ConstraintOp {
	switch raw {
	case "==":
		return types.ConstraintOpEq2
	case "=":
		return types.ConstraintOpEq
	case ">=":
		return types.ConstraintOpGte
	case "<=":
		return types.ConstraintOpLte
	case ">":
		return types.ConstraintOpGt
	case "<":
		return types.ConstraintOpLt
	default:
		return types.ConstraintOpNone
	}
}
