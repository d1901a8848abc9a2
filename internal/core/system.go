package core

import (
	"context"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"archaur/internal/ports"
	"archaur/internal/types"
)

// System is a snapshot of packages indexed for fast provider and
// conflict lookup. It never mutates its packages in place; every
// append returns a new System, matching aurman's own System.__init__
// rebuild-on-change discipline (see the Design Note on persistent
// snapshots).
type System struct {
	byName         map[string]types.Package
	providesIndex  map[string][]provideEntry
	conflictsIndex map[string][]string

	// IgnoreVersioning makes every Satisfies check succeed regardless of
	// the requested operator/version. When both flags are set this one
	// wins: see DESIGN.md's Open Question decision.
	IgnoreVersioning bool
	// OptimisticVersioning relaxes a constraint mismatch into a pass
	// when no other provider exists for the dependency.
	OptimisticVersioning bool
}

// NewSystem builds a System from a flat package list, rejecting a
// colliding package name (the injective by_name invariant from the
// data model).
func NewSystem(packages []types.Package) (System, error) {
	sys := System{
		byName:         map[string]types.Package{},
		providesIndex:  map[string][]provideEntry{},
		conflictsIndex: map[string][]string{},
	}
	for _, pkg := range packages {
		if err := sys.insert(pkg); err != nil {
			return System{}, err
		}
	}
	return sys, nil
}

func (s *System) insert(pkg types.Package) error {
	assert.NotEmpty(context.Background(), pkg.Name, "package name must not be empty")
	if _, exists := s.byName[pkg.Name]; exists {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("duplicate package name in system: " + pkg.Name)
	}
	s.byName[pkg.Name] = pkg
	for _, provided := range pkg.Provides {
		parsed := SplitDep(provided)
		s.providesIndex[parsed.Name] = append(s.providesIndex[parsed.Name], provideEntry{
			pkgName: pkg.Name,
			op:      parsed.Op,
			version: parsed.Version,
		})
	}
	for _, conflict := range pkg.Conflicts {
		name := types.StripVersioning(conflict)
		s.conflictsIndex[name] = append(s.conflictsIndex[name], pkg.Name)
	}
	return nil
}

// provideEntry is one parsed Provides entry, keyed in providesIndex by
// the provided name it declares: a provide string can carry its own
// "=" / "==" version distinct from the providing package's own
// version (e.g. a compat package providing "foo=2" while itself being
// versioned "1-3"), which provided_by must compare against instead of
// the package's own version. Grounded on
// original_source/src/aurman/classes.py's provided_by, which reads
// provide_cmp/provide_version out of each provides entry rather than
// always falling back to the providing package's version.
type provideEntry struct {
	pkgName string
	op      types.ConstraintOp
	version string
}

// Get returns the package with the given exact name.
func (s System) Get(name string) (types.Package, bool) {
	pkg, ok := s.byName[name]
	return pkg, ok
}

// All returns every package in the system, in no particular order.
func (s System) All() []types.Package {
	out := make([]types.Package, 0, len(s.byName))
	for _, pkg := range s.byName {
		out = append(out, pkg)
	}
	return out
}

// Append returns a new System with the given packages merged in,
// overwriting any existing entries of the same name.
func (s System) Append(packages ...types.Package) (System, error) {
	merged := s.byName
	out := make([]types.Package, 0, len(merged)+len(packages))
	for _, pkg := range merged {
		out = append(out, pkg)
	}
	byNew := map[string]bool{}
	for _, pkg := range packages {
		byNew[pkg.Name] = true
	}
	filtered := out[:0]
	for _, pkg := range out {
		if !byNew[pkg.Name] {
			filtered = append(filtered, pkg)
		}
	}
	filtered = append(filtered, packages...)
	next, err := NewSystem(filtered)
	if err != nil {
		return System{}, err
	}
	next.IgnoreVersioning = s.IgnoreVersioning
	next.OptimisticVersioning = s.OptimisticVersioning
	return next, nil
}

// AppendByName fetches metadata for each name via the given collaborator
// and folds the results into a new System, leaving already-known
// packages untouched.
func (s System) AppendByName(ctx context.Context, names []string, aur ports.AurMetadataPort) (System, error) {
	var missing []string
	for _, name := range names {
		if _, ok := s.byName[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return s, nil
	}
	fetched, err := aur.Info(ctx, missing)
	if err != nil {
		return System{}, err
	}
	return s.Append(fetched...)
}

// ProvidedBy returns every package that provides the dependency's name
// (itself included, if it is a known package): the direct name match
// first, then Provides matches in the order their packages were
// inserted into the system. Provider-ordering is never guaranteed
// beyond that: see DESIGN.md's Open Question decision.
//
// A package is matched under its own name (direct match, compared
// against the package's own version) or via a Provides entry (matched
// against that entry's own "=" / "==" version if it carries one, or the
// package's own version as a bare-alias fallback) — mirrors
// original_source's provided_by, which never conflates the two.
func (s System) ProvidedBy(dep types.Dependency) []types.Package {
	var out []types.Package
	if pkg, ok := s.byName[dep.Name]; ok {
		if ok2, err := s.satisfies(pkg.Version, dep); err == nil && ok2 {
			out = append(out, pkg)
		}
	}
	for _, entry := range s.providesIndex[dep.Name] {
		if entry.pkgName == dep.Name {
			continue // already handled by the direct name match above
		}
		pkg, ok := s.byName[entry.pkgName]
		if !ok || containsPackage(out, pkg.Name) {
			continue
		}
		if s.provideSatisfies(pkg, entry, dep) {
			out = append(out, pkg)
		}
	}
	return out
}

func containsPackage(pkgs []types.Package, name string) bool {
	for _, p := range pkgs {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s System) satisfies(have string, dep types.Dependency) (bool, error) {
	if s.IgnoreVersioning || dep.Op == types.ConstraintOpNone {
		return true, nil
	}
	ok, err := Satisfies(have, dep.Op, dep.Version)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if s.OptimisticVersioning && len(s.ProvidedBy(types.Dependency{Name: dep.Name})) <= 1 {
		return true, nil
	}
	return false, nil
}

// provideSatisfies decides whether a Provides entry fulfills dep. An
// entry carrying its own "=" / "==" version is compared against that
// version, never the providing package's own; a bare (unversioned)
// entry falls back to the package's own version, and then to
// OptimisticVersioning unconditionally, the same "trust a sole bare
// alias" escape hatch original_source applies regardless of how many
// other providers exist for this branch.
func (s System) provideSatisfies(pkg types.Package, entry provideEntry, dep types.Dependency) bool {
	if dep.Op == types.ConstraintOpNone || s.IgnoreVersioning {
		return true
	}
	switch entry.op {
	case types.ConstraintOpEq, types.ConstraintOpEq2:
		ok, err := Satisfies(entry.version, dep.Op, dep.Version)
		return err == nil && ok
	default:
		if ok, err := Satisfies(pkg.Version, dep.Op, dep.Version); err == nil && ok {
			return true
		}
		return s.OptimisticVersioning
	}
}

// ConflictingWith returns every package in the system that conflicts
// with the given package: a same-named package already present (a
// same-name displacement, e.g. an installed older version of pkg
// itself), every package named by one of pkg's own Conflicts entries
// (with that entry's own version constraint honored, not an
// unconditional name match), and symmetrically any package whose own
// Conflicts entry names pkg, checked against pkg's version. Grounded on original_source's conflicting_with,
// including its unconditional inclusion of the same-named package —
// see DESIGN.md for why that isn't self-conflict in practice.
func (s System) ConflictingWith(pkg types.Package) []types.Package {
	seen := map[string]bool{}
	var out []types.Package
	add := func(other types.Package) {
		if seen[other.Name] {
			return
		}
		seen[other.Name] = true
		out = append(out, other)
	}

	if same, ok := s.byName[pkg.Name]; ok {
		add(same)
	}

	for _, conflict := range pkg.Conflicts {
		parsed := SplitDep(conflict)
		other, ok := s.byName[parsed.Name]
		if !ok {
			continue
		}
		if parsed.Op == types.ConstraintOpNone || s.IgnoreVersioning {
			add(other)
			continue
		}
		if ok2, err := Satisfies(other.Version, parsed.Op, parsed.Version); err == nil && ok2 {
			add(other)
		}
	}

	for _, name := range s.conflictsIndex[pkg.Name] {
		other, ok := s.byName[name]
		if !ok || seen[other.Name] {
			continue
		}
		for _, conflict := range other.Conflicts {
			parsed := SplitDep(conflict)
			if parsed.Name != pkg.Name {
				continue
			}
			if parsed.Op == types.ConstraintOpNone || s.IgnoreVersioning {
				add(other)
				break
			}
			if ok2, err := Satisfies(pkg.Version, parsed.Op, parsed.Version); err == nil && ok2 {
				add(other)
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AreAllDepsFulfilled reports whether every Depends entry of pkg is
// satisfied by some package already in the system.
func (s System) AreAllDepsFulfilled(pkg types.Package) bool {
	for _, dep := range pkg.Depends {
		if len(s.ProvidedBy(dep)) == 0 {
			return false
		}
	}
	return true
}

// RepoOf returns the Repo field of the named package if it is a repo
// package, otherwise its Kind as a string (e.g. "aur", "devel"), and
// "" if the name is unknown.
func (s System) RepoOf(name string) string {
	pkg, ok := s.byName[name]
	if !ok {
		return ""
	}
	if pkg.Kind == types.KindRepo {
		return pkg.Repo
	}
	return string(pkg.Kind)
}

// Differences returns the packages present in `other` but not in s
// (to-install) and present in s but not in other (to-remove),
// comparing by name+version so a version bump shows up as both an
// addition and a removal.
func (s System) Differences(other System) (toInstall []types.Package, toRemove []types.Package) {
	for name, pkg := range other.byName {
		existing, ok := s.byName[name]
		if !ok || existing.Version != pkg.Version {
			toInstall = append(toInstall, pkg)
		}
	}
	for name, pkg := range s.byName {
		other, ok := other.byName[name]
		if !ok || other.Version != pkg.Version {
			toRemove = append(toRemove, pkg)
		}
	}
	sort.Slice(toInstall, func(i, j int) bool { return toInstall[i].Name < toInstall[j].Name })
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i].Name < toRemove[j].Name })
	return toInstall, toRemove
}

// replacedNames finds installed packages that an addition's Replaces
// list names, guarding against self-replacement (a package's Replaces
// entry that is also one of its own ProvidesNames, e.g. mesa replacing
// "ati-dri" while also providing "ati-dri"). Grounded on aurman's
// replaces_dict construction in main.py.
func replacedNames(installed System, additions []types.Package) map[string]bool {
	out := map[string]bool{}
	for _, pkg := range additions {
		self := map[string]bool{}
		for _, provided := range pkg.ProvidesNames() {
			self[types.StripVersioning(provided)] = true
		}
		for _, replaces := range pkg.Replaces {
			name := types.StripVersioning(replaces)
			if self[name] {
				continue
			}
			if _, ok := installed.byName[name]; ok {
				out[name] = true
			}
		}
	}
	return out
}

// HypotheticalAppend simulates installing `additions` on top of s:
// installed packages an addition Replaces are dropped first (not
// treated as a rejection), packages that would conflict are rejected,
// and any package whose dependencies become unsatisfied as a result is
// cascade-removed, iterated to a fixed point. Returns the resulting
// system and the names that were rejected or cascade-removed.
func (s System) HypotheticalAppend(ctx context.Context, additions []types.Package) (System, []string, error) {
	replaced := replacedNames(s, additions)
	if len(replaced) > 0 {
		keep := make([]types.Package, 0, len(s.byName))
		for name, pkg := range s.byName {
			if !replaced[name] {
				keep = append(keep, pkg)
			}
		}
		trimmed, err := NewSystem(keep)
		if err != nil {
			return System{}, nil, err
		}
		trimmed.IgnoreVersioning = s.IgnoreVersioning
		trimmed.OptimisticVersioning = s.OptimisticVersioning
		s = trimmed
	}

	next, err := s.Append(additions...)
	if err != nil {
		return System{}, nil, err
	}

	rejected := map[string]bool{}
	for _, pkg := range additions {
		for _, conflicting := range next.ConflictingWith(pkg) {
			if conflicting.Name == pkg.Name {
				continue
			}
			rejected[pkg.Name] = true
		}
	}
	if len(rejected) > 0 {
		keep := make([]types.Package, 0, len(next.byName))
		for name, pkg := range next.byName {
			if !rejected[name] {
				keep = append(keep, pkg)
			}
		}
		next, err = NewSystem(keep)
		if err != nil {
			return System{}, nil, err
		}
		next.IgnoreVersioning = s.IgnoreVersioning
		next.OptimisticVersioning = s.OptimisticVersioning
	}

	removedNames := map[string]bool{}
	for name := range rejected {
		removedNames[name] = true
	}
	for {
		var cascade []string
		for name, pkg := range next.byName {
			if !next.AreAllDepsFulfilled(pkg) {
				cascade = append(cascade, name)
			}
		}
		if len(cascade) == 0 {
			break
		}
		keep := make([]types.Package, 0, len(next.byName))
		for name, pkg := range next.byName {
			drop := false
			for _, c := range cascade {
				if c == name {
					drop = true
					removedNames[name] = true
					break
				}
			}
			if !drop {
				keep = append(keep, pkg)
			}
		}
		var buildErr error
		next, buildErr = NewSystem(keep)
		if buildErr != nil {
			return System{}, nil, buildErr
		}
		next.IgnoreVersioning = s.IgnoreVersioning
		next.OptimisticVersioning = s.OptimisticVersioning
	}

	out := make([]string, 0, len(removedNames))
	for name := range removedNames {
		out = append(out, name)
	}
	sort.Strings(out)
	replacedOut := make([]string, 0, len(replaced))
	for name := range replaced {
		replacedOut = append(replacedOut, name)
	}
	sort.Strings(replacedOut)
	log.Ctx(ctx).Debug().Strs("rejected_or_cascaded", out).Strs("replaced", replacedOut).Msg("hypothetical append")
	return next, out, nil
}
