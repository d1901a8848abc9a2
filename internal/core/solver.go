package core

import (
	"archaur/internal/types"
)

// solveState is the mutable bookkeeping threaded through one branch of
// the recursive search. It is never shared between branches: every
// recursive call that wants to explore a branch works off a copy, so a
// dead end can be abandoned without undoing work on other branches.
type solveState struct {
	installed    map[string]types.Package // name -> chosen package, this branch
	visitedStack []string                 // path from the root target to here
	visitedNames map[string]bool          // set form of visitedStack, for O(1) cycle checks
	notToRemove  map[string]bool          // names that must remain installed no matter what
	deepCheck    map[string]bool          // dep-names for which every provider is explored, not only an exact bare-name match
	problems     []types.FoundProblem
}

func newSolveState(notToRemove map[string]bool, deepCheck map[string]bool) *solveState {
	return &solveState{
		installed:    map[string]types.Package{},
		visitedNames: map[string]bool{},
		notToRemove:  notToRemove,
		deepCheck:    deepCheck,
	}
}

func (s *solveState) clone() *solveState {
	next := &solveState{
		installed:    make(map[string]types.Package, len(s.installed)),
		visitedStack: append([]string(nil), s.visitedStack...),
		visitedNames: make(map[string]bool, len(s.visitedNames)),
		notToRemove:  s.notToRemove,
		deepCheck:    s.deepCheck,
		problems:     append([]types.FoundProblem(nil), s.problems...),
	}
	for k, v := range s.installed {
		next.installed[k] = v
	}
	for k, v := range s.visitedNames {
		next.visitedNames[k] = v
	}
	return next
}

func (s *solveState) push(name string) {
	s.visitedStack = append(s.visitedStack, name)
	s.visitedNames[name] = true
}

func (s *solveState) toSolution() types.Solution {
	packages := make([]types.Package, 0, len(s.installed))
	for _, name := range s.visitedStack {
		if pkg, ok := s.installed[name]; ok {
			packages = append(packages, pkg)
		}
	}
	return types.Solution{
		Packages:       packages,
		NotToBeRemoved: s.notToRemove,
		VisitedNames:   s.visitedNames,
		Problems:       s.problems,
	}
}

// SolveFor searches for every way to make `target` installable on top
// of `installed` given `upstream` as the universe of known packages.
// It returns one Solution per distinct branch that reached a leaf
// (successfully or not): a caller filters for successful ones with
// Validate. filter controls pruning at each dependency: FilterKeepAll
// returns every branch; FilterKeepOneInvalid stops trying further
// providers of a dependency once one yields a valid solution, then
// keeps only the valid solutions, or a single invalid one when none is
// valid. deepCheck names the deps
// (by bare name) for which every provider must be explored instead of
// only the one sharing the dep's own name; DepSolve grows this set
// across retries, but a direct caller may pass nil for the fast path.
func SolveFor(target types.Package, installed System, upstream System, notToRemove map[string]bool, deepCheck map[string]bool, filter types.FilterRule) []types.Solution {
	state := newSolveState(notToRemove, deepCheck)
	return solvePackage(target, installed, upstream, state, filter)
}

// solvePackage tries to make `pkg` installable: first checks whether
// this branch has already chosen it at the same version (nothing to
// do), otherwise recurses into each of its dependencies in turn,
// branching over every provider relevant_deps finds.
func solvePackage(pkg types.Package, installed System, upstream System, state *solveState, filter types.FilterRule) []types.Solution {
	if existing, ok := state.installed[pkg.Name]; ok {
		if existing.Version == pkg.Version {
			return []types.Solution{state.toSolution()}
		}
	}

	if state.visitedNames[pkg.Name] {
		problem := types.FoundProblem{
			Kind:      types.ProblemCycle,
			CyclePath: append(append([]string(nil), state.visitedStack...), pkg.Name),
		}
		s2 := state.clone()
		s2.problems = append(s2.problems, problem)
		return []types.Solution{s2.toSolution()}
	}

	for _, conflicting := range installed.ConflictingWith(pkg) {
		if state.notToRemove[conflicting.Name] {
			s2 := state.clone()
			s2.problems = append(s2.problems, types.FoundProblem{
				Kind:      types.ProblemConflict,
				ConflictA: pkg.Name,
				ConflictB: conflicting.Name,
			})
			return []types.Solution{s2.toSolution()}
		}
	}
	for _, conflicting := range conflictsAmong(pkg, state.installed) {
		if state.notToRemove[conflicting] {
			s2 := state.clone()
			s2.problems = append(s2.problems, types.FoundProblem{
				Kind:      types.ProblemConflict,
				ConflictA: pkg.Name,
				ConflictB: conflicting,
			})
			return []types.Solution{s2.toSolution()}
		}
	}

	branch := state.clone()
	branch.push(pkg.Name)
	branch.installed[pkg.Name] = pkg

	deps, cycle := relevantDeps(pkg, installed, branch)
	if cycle != nil {
		s2 := branch.clone()
		s2.problems = append(s2.problems, *cycle)
		return []types.Solution{s2.toSolution()}
	}
	return solveDeps(deps, 0, installed, upstream, branch, filter)
}

// conflictsAmong reports which already-installed (this branch) package
// names conflict with pkg.
func conflictsAmong(pkg types.Package, installed map[string]types.Package) []string {
	var out []string
	selfNames := map[string]bool{}
	for _, n := range pkg.ProvidesNames() {
		selfNames[types.StripVersioning(n)] = true
	}
	for name, other := range installed {
		if name == pkg.Name {
			continue
		}
		for _, c := range other.Conflicts {
			if selfNames[types.StripVersioning(c)] {
				out = append(out, name)
			}
		}
		for _, c := range pkg.Conflicts {
			if types.StripVersioning(c) == name {
				out = append(out, name)
			}
		}
	}
	return out
}

// relevantDeps returns pkg's dependencies that are not already
// fulfilled by `installed` or by packages already chosen in this
// branch — mirrors aurman's only_unfulfilled_deps behavior. A
// dependency satisfied by a package already committed earlier on this
// same branch is a back-edge to an ancestor, i.e. a cycle: tolerated
// (dropped silently, same as any other already-fulfilled dep) when
// every package on both ends of the edge is a Repo package, since the
// native package manager resolves repo cycles as a single transaction;
// rejected via a Cycle problem as soon as either end is Aur or Devel,
// since building one would require the other already built.
func relevantDeps(pkg types.Package, installed System, branch *solveState) ([]types.Dependency, *types.FoundProblem) {
	var out []types.Dependency
	for _, dep := range pkg.AllDepends() {
		if len(installed.ProvidedBy(dep)) > 0 {
			continue
		}
		var satisfier *types.Package
		for _, chosen := range branch.installed {
			for _, provided := range chosen.ProvidesNames() {
				if types.StripVersioning(provided) == dep.Name {
					c := chosen
					satisfier = &c
				}
			}
		}
		if satisfier != nil {
			if pkg.Kind != types.KindRepo || satisfier.Kind != types.KindRepo {
				return nil, &types.FoundProblem{
					Kind:      types.ProblemCycle,
					CyclePath: append(append([]string(nil), branch.visitedStack...), satisfier.Name),
				}
			}
			continue
		}
		out = append(out, dep)
	}
	return out, nil
}

// solveDeps walks deps[idx:], branching over every provider of deps[idx]
// and recursing into solveDeps for the remainder once a provider is
// chosen for the current one.
func solveDeps(deps []types.Dependency, idx int, installed System, upstream System, state *solveState, filter types.FilterRule) []types.Solution {
	if idx >= len(deps) {
		return []types.Solution{state.toSolution()}
	}
	dep := deps[idx]
	providers := upstream.ProvidedBy(dep)
	if !state.deepCheck[dep.Name] {
		for _, provider := range providers {
			if provider.Name == dep.Name {
				providers = []types.Package{provider}
				break
			}
		}
	}
	if len(providers) == 0 {
		s2 := state.clone()
		s2.problems = append(s2.problems, types.FoundProblem{
			Kind:       types.ProblemNotProvided,
			Dependency: dep,
		})
		return []types.Solution{s2.toSolution()}
	}

	var solutions []types.Solution
	for _, provider := range providers {
		branch := state.clone()
		sub := solvePackage(provider, installed, upstream, branch, filter)
		for _, solved := range sub {
			if len(solved.Problems) > 0 {
				solutions = append(solutions, solved)
				continue
			}
			continuedState := fromSolution(solved, branch)
			rest := solveDeps(deps, idx+1, installed, upstream, continuedState, filter)
			solutions = append(solutions, rest...)
		}
		if filter == types.FilterKeepOneInvalid && anyValid(solutions) {
			break
		}
	}
	if filter == types.FilterKeepOneInvalid && len(solutions) > 1 {
		if !anyValid(solutions) {
			return solutions[:1]
		}
		var valid []types.Solution
		for _, s := range solutions {
			if len(s.Problems) == 0 {
				valid = append(valid, s)
			}
		}
		return valid
	}
	return solutions
}

func fromSolution(sol types.Solution, base *solveState) *solveState {
	next := base.clone()
	next.installed = map[string]types.Package{}
	next.visitedNames = map[string]bool{}
	for _, pkg := range sol.Packages {
		next.installed[pkg.Name] = pkg
	}
	next.visitedStack = nil
	for _, pkg := range sol.Packages {
		next.visitedStack = append(next.visitedStack, pkg.Name)
		next.visitedNames[pkg.Name] = true
	}
	next.problems = sol.Problems
	return next
}

func anyValid(solutions []types.Solution) bool {
	for _, s := range solutions {
		if len(s.Problems) == 0 {
			return true
		}
	}
	return false
}

// DepSolve is the driver: it solves for every target, growing deep_check
// from the names appearing in recorded problems and retrying, then
// escalating to single_first (solve each target alone before all
// together) once deep_check stops growing, the way aurman's
// Package.dep_solving loop does, to get a usable diagnostic even when
// the joint search finds nothing.
func DepSolve(targets []types.Package, installed System, upstream System, notToRemove map[string]bool, filter types.FilterRule) []types.Solution {
	if len(targets) == 0 {
		return []types.Solution{{NotToBeRemoved: notToRemove}}
	}

	deepCheck := map[string]bool{}
	singleFirst := false

	for {
		var solutions []types.Solution
		if singleFirst {
			solutions = soloFirst(targets, installed, upstream, notToRemove, deepCheck, filter)
		}
		if solutions == nil {
			state := newSolveState(notToRemove, deepCheck)
			solutions = solveAll(targets, 0, installed, upstream, state, filter)
		}
		if anyValid(solutions) {
			return solutions
		}

		if growDeepCheck(deepCheck, solutions) {
			continue
		}
		if !singleFirst && len(targets) > 1 {
			singleFirst = true
			continue
		}
		return solutions
	}
}

// soloFirst walks each target alone, returning the first one's failing
// solutions as soon as one can't solve by itself. Returns nil once
// every target solves on its own, so the caller falls back to the
// joint pass to find a combination that also works together.
func soloFirst(targets []types.Package, installed System, upstream System, notToRemove map[string]bool, deepCheck map[string]bool, filter types.FilterRule) []types.Solution {
	for _, target := range targets {
		single := SolveFor(target, installed, upstream, notToRemove, deepCheck, filter)
		if !anyValid(single) {
			return single
		}
	}
	return nil
}

// growDeepCheck adds every name appearing in the recorded problems of
// `solutions` to deepCheck, reporting whether it grew. A retry with a
// larger deep_check disables the solver's bare-name fast path for
// those deps, so the next attempt explores alternatives it previously
// skipped.
func growDeepCheck(deepCheck map[string]bool, solutions []types.Solution) bool {
	grew := false
	for _, sol := range solutions {
		for _, problem := range sol.Problems {
			for _, name := range problemParticipants(problem) {
				if !deepCheck[name] {
					deepCheck[name] = true
					grew = true
				}
			}
		}
	}
	return grew
}

func problemParticipants(p types.FoundProblem) []string {
	switch p.Kind {
	case types.ProblemCycle:
		return p.CyclePath
	case types.ProblemConflict:
		return []string{p.ConflictA, p.ConflictB}
	case types.ProblemNotProvided, types.ProblemAmbiguousProvider:
		return []string{p.Dependency.Name}
	default:
		return nil
	}
}

func solveAll(targets []types.Package, idx int, installed System, upstream System, state *solveState, filter types.FilterRule) []types.Solution {
	if idx >= len(targets) {
		return []types.Solution{state.toSolution()}
	}
	sub := solvePackage(targets[idx], installed, upstream, state, filter)
	var out []types.Solution
	for _, solved := range sub {
		if len(solved.Problems) > 0 {
			out = append(out, solved)
			continue
		}
		next := fromSolution(solved, state)
		out = append(out, solveAll(targets, idx+1, installed, upstream, next, filter)...)
	}
	return out
}
