package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archaur/internal/ports"
	"archaur/internal/types"
)

// fakeAurMetadata answers AurMetadataPort.Info from a fixed package
// table, the same role a stubbed RPC client plays in the teacher's own
// service-level tests.
type fakeAurMetadata struct {
	byName map[string]types.Package
}

func (f fakeAurMetadata) Info(ctx context.Context, names []string) ([]types.Package, error) {
	var out []types.Package
	for _, name := range names {
		if pkg, ok := f.byName[name]; ok {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func (f fakeAurMetadata) Search(ctx context.Context, query string) ([]types.Package, error) {
	return nil, nil
}

type fakeNativeRepo struct {
	packages []types.Package
}

func (f fakeNativeRepo) RepoPackages(ctx context.Context) ([]types.Package, error) {
	return f.packages, nil
}

type fakeInstalledSnapshot struct {
	packages []types.Package
}

func (f fakeInstalledSnapshot) InstalledPackages(ctx context.Context) ([]types.Package, error) {
	return f.packages, nil
}

func testPkg(name, version string, kind types.PackageKind, mods ...func(*types.Package)) types.Package {
	p := types.Package{Name: name, Version: version, Kind: kind}
	for _, m := range mods {
		m(&p)
	}
	return types.NewPackage(p)
}

func withDepList(deps ...types.Dependency) func(*types.Package) {
	return func(p *types.Package) { p.Depends = deps }
}

func withReplacesList(names ...string) func(*types.Package) {
	return func(p *types.Package) { p.Replaces = names }
}

func dep(name string) types.Dependency {
	return types.Dependency{Name: name}
}

func newTestService(repo []types.Package, installed []types.Package, aur map[string]types.Package) Service {
	return Service{
		AurMetadata:       fakeAurMetadata{byName: aur},
		NativeRepo:        fakeNativeRepo{packages: repo},
		InstalledSnapshot: fakeInstalledSnapshot{packages: installed},
	}
}

// fakeChoice always picks the named provider, standing in for an
// interactive prompt in tests that exercise sanitizeNames' ambiguous
// provider path.
type fakeChoice struct {
	pick string
}

func (f fakeChoice) ChooseProvider(dep types.Dependency, providers []types.Package) (types.Package, error) {
	for _, p := range providers {
		if p.Name == f.pick {
			return p, nil
		}
	}
	return providers[0], nil
}

func (f fakeChoice) ChooseSolution(candidates []types.Candidate) (types.Candidate, error) {
	return candidates[0], nil
}

var _ ports.AurMetadataPort = fakeAurMetadata{}
var _ ports.NativeRepoPort = fakeNativeRepo{}
var _ ports.InstalledSnapshotPort = fakeInstalledSnapshot{}
var _ ports.ChoicePort = fakeChoice{}

func TestPlanSingleRepoTarget(t *testing.T) {
	svc := newTestService(
		[]types.Package{testPkg("foo", "1.0-1", types.KindRepo)},
		nil,
		nil,
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"foo"}})
	require.NoError(t, err)
	require.NotNil(t, result.Chosen)
	require.Len(t, result.Chosen.Chunks, 1)
	assert.Equal(t, "foo", result.Chosen.Chunks[0][0].Name)
}

func TestPlanAurTargetPullsInRepoDependency(t *testing.T) {
	aurPkg := testPkg("foo-aur", "1.0-1", types.KindAur, withDepList(dep("libbar")))
	svc := newTestService(
		[]types.Package{testPkg("libbar", "1.0-1", types.KindRepo)},
		nil,
		map[string]types.Package{"foo-aur": aurPkg},
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"foo-aur"}})
	require.NoError(t, err)
	require.NotNil(t, result.Chosen)

	var installedNames []string
	for _, chunk := range result.Chosen.Chunks {
		for _, p := range chunk {
			installedNames = append(installedNames, p.Name)
		}
	}
	assert.Contains(t, installedNames, "foo-aur")
	assert.Contains(t, installedNames, "libbar")
}

func TestPlanNoTargetsAndNoSysupgradeIsAnError(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, err := svc.Plan(context.Background(), types.PlanRequest{})
	require.Error(t, err)
}

func TestPlanUnknownTargetReportsNotProvided(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"nonexistent"}})
	require.NoError(t, err)
	require.True(t, result.Failed)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, types.ProblemNotProvided, result.Problems[0].Kind)
}

func TestPlanNeededSkipsAlreadySatisfiedTarget(t *testing.T) {
	svc := newTestService(
		[]types.Package{testPkg("foo", "1.0-1", types.KindRepo)},
		[]types.Package{testPkg("foo", "1.0-1", types.KindRepo)},
		nil,
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"foo"}, Needed: true})
	require.NoError(t, err)
	require.NotNil(t, result.Chosen)
	assert.Empty(t, result.Chosen.Chunks)
}

func TestPlanSysupgradeUpgradesOutdatedPackage(t *testing.T) {
	svc := newTestService(
		[]types.Package{testPkg("foo", "2.0-1", types.KindRepo)},
		[]types.Package{testPkg("foo", "1.0-1", types.KindRepo)},
		nil,
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Sysupgrade: true})
	require.NoError(t, err)
	require.NotNil(t, result.Chosen)
	require.Len(t, result.Chosen.Chunks, 1)
	assert.Equal(t, "2.0-1", result.Chosen.Chunks[0][0].Version)
}

func TestPlanSysupgradeReplacementDiscoversRenamedPackage(t *testing.T) {
	svc := newTestService(
		[]types.Package{testPkg("foo-next", "1.0-1", types.KindRepo, withReplacesList("foo-old"))},
		[]types.Package{testPkg("foo-old", "1.0-1", types.KindRepo)},
		nil,
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Sysupgrade: true})
	require.NoError(t, err)
	require.NotNil(t, result.Chosen)

	var removed []string
	for _, p := range result.Chosen.ToRemove {
		removed = append(removed, p.Name)
	}
	assert.Contains(t, removed, "foo-old")

	var installed []string
	for _, chunk := range result.Chosen.Chunks {
		for _, p := range chunk {
			installed = append(installed, p.Name)
		}
	}
	assert.Contains(t, installed, "foo-next")
}

func TestPlanHoldPreventsConflictingTargetFromRemovingIt(t *testing.T) {
	svc := newTestService(
		[]types.Package{
			testPkg("foo", "1.0-1", types.KindRepo, func(p *types.Package) { p.Conflicts = []string{"bar"} }),
			testPkg("bar", "1.0-1", types.KindRepo),
		},
		[]types.Package{testPkg("bar", "1.0-1", types.KindRepo)},
		nil,
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"foo"}, Hold: []string{"bar"}})
	require.NoError(t, err)
	assert.True(t, result.Failed)
}

func withProvidesList(names ...string) func(*types.Package) {
	return func(p *types.Package) { p.Provides = names }
}

func TestPlanAmbiguousTargetResolvedByChoicePort(t *testing.T) {
	svc := newTestService(
		[]types.Package{
			testPkg("sendmail-impl", "1.0-1", types.KindRepo, withProvidesList("mailutil")),
			testPkg("postfix-impl", "1.0-1", types.KindRepo, withProvidesList("mailutil")),
		},
		nil,
		nil,
	)
	svc.Choice = fakeChoice{pick: "postfix-impl"}

	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"mailutil"}})
	require.NoError(t, err)
	require.False(t, result.Failed, "an ambiguous provider should be resolved via ChoicePort, not fail outright")
	require.NotNil(t, result.Chosen)
	require.Len(t, result.Chosen.Chunks, 1)
	assert.Equal(t, "postfix-impl", result.Chosen.Chunks[0][0].Name)
}

func TestPlanForeignPackageNoticeSurfacesUnknownInstalledPackage(t *testing.T) {
	svc := newTestService(
		[]types.Package{testPkg("foo", "1.0-1", types.KindRepo)},
		[]types.Package{testPkg("mystery-pkg", "1.0-1", types.KindAur)},
		map[string]types.Package{},
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Targets: []string{"foo"}})
	require.NoError(t, err)
	assert.Contains(t, result.Notices, "mystery-pkg")
}

func TestPlanRepoOnlyExcludesAurFromSysupgrade(t *testing.T) {
	svc := newTestService(
		[]types.Package{testPkg("foo", "1.0-1", types.KindRepo)},
		[]types.Package{testPkg("aur-pkg", "1.0-1", types.KindAur)},
		map[string]types.Package{"aur-pkg": testPkg("aur-pkg", "2.0-1", types.KindAur)},
	)
	result, err := svc.Plan(context.Background(), types.PlanRequest{Sysupgrade: true, RepoOnly: true})
	require.NoError(t, err)
	require.NotNil(t, result.Chosen)
	assert.Empty(t, result.Chosen.Chunks)
}
