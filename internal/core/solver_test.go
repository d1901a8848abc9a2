package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archaur/internal/types"
)

func emptySystem(t *testing.T) System {
	t.Helper()
	sys, err := NewSystem(nil)
	require.NoError(t, err)
	return sys
}

func TestSolveForSingleTargetNoDeps(t *testing.T) {
	target := pkg("foo", "1.0-1")
	solutions := SolveFor(target, emptySystem(t), emptySystem(t), nil, nil, types.FilterKeepAll)
	require.Len(t, solutions, 1)
	assert.Empty(t, solutions[0].Problems)
	assert.Equal(t, "foo", solutions[0].Packages[0].Name)
}

func TestSolveForResolvesTransitiveDependency(t *testing.T) {
	target := pkg("foo", "1.0-1", withDepends(types.Dependency{Name: "bar"}))
	bar := pkg("bar", "1.0-1")
	upstream, err := NewSystem([]types.Package{target, bar})
	require.NoError(t, err)

	solutions := SolveFor(target, emptySystem(t), upstream, nil, nil, types.FilterKeepAll)
	valid := validOnly(solutions)
	require.NotEmpty(t, valid)
	names := namesOf(valid[0].Packages)
	assert.Contains(t, names, "bar")
	assert.Contains(t, names, "foo")
}

func TestSolveForAlreadyInstalledDepNeedsNoSolution(t *testing.T) {
	target := pkg("foo", "1.0-1", withDepends(types.Dependency{Name: "bar"}))
	installed, err := NewSystem([]types.Package{pkg("bar", "1.0-1")})
	require.NoError(t, err)
	upstream, err := NewSystem([]types.Package{target})
	require.NoError(t, err)

	solutions := SolveFor(target, installed, upstream, nil, nil, types.FilterKeepAll)
	valid := validOnly(solutions)
	require.NotEmpty(t, valid)
	assert.Equal(t, []string{"foo"}, namesOf(valid[0].Packages))
}

func TestSolveForReportsNotProvided(t *testing.T) {
	target := pkg("foo", "1.0-1", withDepends(types.Dependency{Name: "missing"}))
	upstream, err := NewSystem([]types.Package{target})
	require.NoError(t, err)

	solutions := SolveFor(target, emptySystem(t), upstream, nil, nil, types.FilterKeepAll)
	require.Len(t, solutions, 1)
	require.Len(t, solutions[0].Problems, 1)
	assert.Equal(t, types.ProblemNotProvided, solutions[0].Problems[0].Kind)
	assert.Equal(t, "missing", solutions[0].Problems[0].Dependency.Name)
}

func TestSolveForToleratesMutualDependencyAlreadyCommittedInBranch(t *testing.T) {
	// foo and bar depend on each other: once foo is committed to the
	// branch, bar's dependency on foo is already satisfied, so the pair
	// resolves cleanly rather than looping forever. This is the "tolerated
	// repo cycle" case.
	foo := pkg("foo", "1.0-1", withDepends(types.Dependency{Name: "bar"}))
	bar := pkg("bar", "1.0-1", withDepends(types.Dependency{Name: "foo"}))
	upstream, err := NewSystem([]types.Package{foo, bar})
	require.NoError(t, err)

	solutions := SolveFor(foo, emptySystem(t), upstream, nil, nil, types.FilterKeepAll)
	valid := validOnly(solutions)
	require.NotEmpty(t, valid)
	assert.ElementsMatch(t, []string{"foo", "bar"}, namesOf(valid[0].Packages))
}

func TestSolveForRejectsCycleInvolvingAnAurPackage(t *testing.T) {
	// foo and bar depend on each other, same shape as the tolerated
	// repo-cycle test above, but both are Aur packages: there is no
	// valid build order (each would need the other already built), so
	// this must surface as a Cycle problem rather than resolve silently.
	foo := pkg("foo", "1.0-1", withKind(types.KindAur), withDepends(types.Dependency{Name: "bar"}))
	bar := pkg("bar", "1.0-1", withKind(types.KindAur), withDepends(types.Dependency{Name: "foo"}))
	upstream, err := NewSystem([]types.Package{foo, bar})
	require.NoError(t, err)

	solutions := SolveFor(foo, emptySystem(t), upstream, nil, nil, types.FilterKeepAll)
	require.Empty(t, validOnly(solutions))

	var sawCycle bool
	for _, sol := range solutions {
		for _, problem := range sol.Problems {
			if problem.Kind == types.ProblemCycle {
				sawCycle = true
				assert.Contains(t, problem.CyclePath, "foo")
				assert.Contains(t, problem.CyclePath, "bar")
			}
		}
	}
	assert.True(t, sawCycle, "expected a Cycle problem among the branches")
}

func TestSolvePackageDetectsCycleWhenNameRevisited(t *testing.T) {
	state := newSolveState(nil, nil)
	state.push("foo")
	target := pkg("foo", "1.0-1")

	solutions := solvePackage(target, emptySystem(t), emptySystem(t), state, types.FilterKeepAll)
	require.Len(t, solutions, 1)
	require.Len(t, solutions[0].Problems, 1)
	problem := solutions[0].Problems[0]
	assert.Equal(t, types.ProblemCycle, problem.Kind)
	assert.Equal(t, []string{"foo", "foo"}, problem.CyclePath)
}

func TestSolveForConflictAgainstHeldPackage(t *testing.T) {
	target := pkg("foo", "1.0-1", withConflicts("bar"))
	installed, err := NewSystem([]types.Package{pkg("bar", "1.0-1")})
	require.NoError(t, err)
	upstream, err := NewSystem([]types.Package{target})
	require.NoError(t, err)

	notToRemove := map[string]bool{"bar": true}
	solutions := SolveFor(target, installed, upstream, notToRemove, nil, types.FilterKeepAll)
	require.Len(t, solutions, 1)
	require.Len(t, solutions[0].Problems, 1)
	assert.Equal(t, types.ProblemConflict, solutions[0].Problems[0].Kind)
}

func TestSolveForAmbiguousProviderPicksExactNameMatch(t *testing.T) {
	// Two providers of "mailer": one is itself named "mailer", the
	// other only provides it under a different name. With deep_check
	// empty, the fast path restricts the search to the exact bare-name
	// match instead of branching over every provider.
	target := pkg("needs-mailer", "1.0-1", withDepends(types.Dependency{Name: "mailer"}))
	exact := pkg("mailer", "1.0-1")
	alt := pkg("postfix", "1.0-1", withProvides("mailer"))
	upstream, err := NewSystem([]types.Package{target, exact, alt})
	require.NoError(t, err)

	solutions := SolveFor(target, emptySystem(t), upstream, nil, nil, types.FilterKeepAll)
	valid := validOnly(solutions)
	require.Len(t, valid, 1, "the fast path restricts to the provider whose own name matches the dep")
	assert.Contains(t, namesOf(valid[0].Packages), "mailer")
}

func TestSolveForDeepCheckDisablesFastPath(t *testing.T) {
	// Same setup as above, but "mailer" is in deep_check: the fast path
	// no longer applies, so both providers are explored.
	target := pkg("needs-mailer", "1.0-1", withDepends(types.Dependency{Name: "mailer"}))
	exact := pkg("mailer", "1.0-1")
	alt := pkg("postfix", "1.0-1", withProvides("mailer"))
	upstream, err := NewSystem([]types.Package{target, exact, alt})
	require.NoError(t, err)

	solutions := SolveFor(target, emptySystem(t), upstream, nil, map[string]bool{"mailer": true}, types.FilterKeepAll)
	valid := validOnly(solutions)
	require.Len(t, valid, 2, "deep_check disables the fast path, so every provider is explored")
}

func TestDepSolveSingleFirstIsolatesTheBrokenTarget(t *testing.T) {
	// foo conflicts with a held package; plain has no such problem. The
	// joint search fails because of foo alone, and single_first must
	// report foo's specific conflict rather than a vague joint failure.
	foo := pkg("foo", "1.0-1", withConflicts("held"))
	plain := pkg("plain", "1.0-1")
	installed, err := NewSystem([]types.Package{pkg("held", "1.0-1")})
	require.NoError(t, err)
	upstream, err := NewSystem([]types.Package{foo, plain})
	require.NoError(t, err)

	notToRemove := map[string]bool{"held": true}
	solutions := DepSolve([]types.Package{foo, plain}, installed, upstream, notToRemove, types.FilterKeepAll)
	require.Empty(t, validOnly(solutions))
	var sawConflict bool
	for _, sol := range solutions {
		for _, p := range sol.Problems {
			if p.Kind == types.ProblemConflict {
				sawConflict = true
			}
		}
	}
	assert.True(t, sawConflict, "single_first must surface foo's conflict specifically")
}

func TestDepSolveNoTargetsReturnsEmptySolution(t *testing.T) {
	solutions := DepSolve(nil, emptySystem(t), emptySystem(t), nil, types.FilterKeepAll)
	require.Len(t, solutions, 1)
	assert.Empty(t, solutions[0].Packages)
	assert.Empty(t, solutions[0].Problems)
}

func validOnly(solutions []types.Solution) []types.Solution {
	var out []types.Solution
	for _, s := range solutions {
		if len(s.Problems) == 0 {
			out = append(out, s)
		}
	}
	return out
}
