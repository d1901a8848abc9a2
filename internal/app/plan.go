package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"archaur/internal/core"
	"archaur/internal/policies"
	"archaur/internal/types"
)

// Plan is the single entry point the CLI drives: it shapes the
// planning input (ignore/hold/needed/sysupgrade/devel-refresh, the
// SUPPLEMENTED FEATURES from the aurman original) and then runs the
// solver/validator/chunker pipeline, returning either a chosen plan, a
// set of candidates awaiting a pick, or a failure with diagnostics.
// Grounded on aurman's main_solver.process.
func (s Service) Plan(ctx context.Context, req types.PlanRequest) (types.PlannerResult, error) {
	if len(req.Targets) == 0 && !req.Sysupgrade {
		return types.PlannerResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("nothing to do: no targets and no sysupgrade")
	}

	installedPkgs, err := s.InstalledSnapshot.InstalledPackages(ctx)
	if err != nil {
		return types.PlannerResult{}, err
	}
	installed, err := core.NewSystem(installedPkgs)
	if err != nil {
		return types.PlannerResult{}, err
	}

	repoPkgs, err := s.NativeRepo.RepoPackages(ctx)
	if err != nil {
		return types.PlannerResult{}, err
	}
	upstream, err := core.NewSystem(repoPkgs)
	if err != nil {
		return types.PlannerResult{}, err
	}

	installed, err = classifyInstalled(installed, upstream)
	if err != nil {
		return types.PlannerResult{}, err
	}

	if !req.RepoOnly {
		installedAurAndDevelNames := namesOfKind(installed, types.KindAur, types.KindDevel)
		wanted := append(append([]string{}, req.Targets...), installedAurAndDevelNames...)
		upstream, err = upstream.AppendByName(ctx, wanted, s.AurMetadata)
		if err != nil {
			return types.PlannerResult{}, err
		}
		upstream = reclassify(upstream)
	}

	if req.AurOnly {
		upstream, err = dropRepoPackages(upstream)
		if err != nil {
			return types.PlannerResult{}, err
		}
	}

	explicitTargets := toSet(req.Targets)

	sanitizedTargets, problems := s.sanitizeNames(req.Targets, upstream)
	if len(problems) > 0 {
		return types.PlannerResult{Failed: true, Problems: problems}, nil
	}

	sanitizedHold, problems := s.sanitizeNames(req.Hold, installed)
	if len(problems) > 0 {
		return types.PlannerResult{Failed: true, Problems: problems}, nil
	}
	for _, name := range sanitizedHold {
		if _, ok := upstream.Get(name); !ok {
			return types.PlannerResult{Failed: true, Problems: []types.FoundProblem{{
				Kind:     types.ProblemHeldMissing,
				HeldName: name,
			}}}, nil
		}
	}

	notToRemove := toSet(sanitizedHold)

	ignored := policies.ApplyIgnore(req.Ignore, explicitTargets)
	upstream, err = applyIgnored(upstream, installed, ignored)
	if err != nil {
		return types.PlannerResult{}, err
	}

	if req.Devel && !req.RepoOnly && s.DevelVersion != nil {
		upstream, err = refreshDevelVersions(ctx, upstream, s.DevelVersion)
		if err != nil {
			return types.PlannerResult{}, err
		}
	}

	targets, err := concreteTargets(req, sanitizedTargets, installed, upstream)
	if err != nil {
		return types.PlannerResult{}, err
	}

	if req.Sysupgrade {
		targets = appendSysupgradeTargets(req, targets, installed, upstream)
	}

	notices := foreignPackageNotice(installed, upstream, toSet(req.SuppressUnknownNotice))

	searchInstalled := installed
	if req.DeepSearch {
		searchInstalled = core.System{}
	}

	solutions := core.DepSolve(targets, searchInstalled, upstream, notToRemove, req.Filter)
	candidates := core.Validate(ctx, installed, solutions)
	if len(candidates) == 0 {
		var problems []types.FoundProblem
		for _, sol := range solutions {
			problems = append(problems, sol.Problems...)
		}
		return types.PlannerResult{Failed: true, Problems: problems, Notices: notices}, nil
	}

	if len(candidates) == 1 {
		plan, err := buildPlan(installed, candidates[0])
		if err != nil {
			return types.PlannerResult{}, err
		}
		return types.PlannerResult{Chosen: &plan, Notices: notices}, nil
	}

	log.Ctx(ctx).Debug().Int("candidates", len(candidates)).Msg("multiple valid solutions found")
	return types.PlannerResult{Choices: candidates, Notices: notices}, nil
}

// ChooseAndBuild finalizes a PlannerResult's Choices into a Plan once a
// caller (interactive or automated) has picked one.
func ChooseAndBuild(installed core.System, chosen types.Candidate) (types.Plan, error) {
	return buildPlan(installed, chosen)
}

func buildPlan(installed core.System, candidate types.Candidate) (types.Plan, error) {
	toInstall, toRemove := installed.Differences(mustSystem(candidate.ResultingSystem))
	return types.Plan{
		Chunks:   core.Chunk(toInstall),
		ToRemove: toRemove,
	}, nil
}

func mustSystem(packages []types.Package) core.System {
	sys, _ := core.NewSystem(packages)
	return sys
}

func namesOfKind(sys core.System, kinds ...types.PackageKind) []string {
	want := map[types.PackageKind]bool{}
	for _, k := range kinds {
		want[k] = true
	}
	var out []string
	for _, pkg := range sys.All() {
		if want[pkg.Kind] {
			out = append(out, pkg.Name)
		}
	}
	return out
}

func reclassify(sys core.System) core.System {
	var out []types.Package
	for _, pkg := range sys.All() {
		if pkg.Kind == "" {
			pkg.Kind = policies.ClassifyPackage(pkg)
		}
		out = append(out, pkg)
	}
	next, _ := core.NewSystem(out)
	next.IgnoreVersioning = sys.IgnoreVersioning
	next.OptimisticVersioning = sys.OptimisticVersioning
	return next
}

func dropRepoPackages(sys core.System) (core.System, error) {
	var out []types.Package
	for _, pkg := range sys.All() {
		if pkg.Kind != types.KindRepo {
			out = append(out, pkg)
		}
	}
	return core.NewSystem(out)
}

func toSet(names []string) map[string]bool {
	out := map[string]bool{}
	for _, n := range names {
		out[n] = true
	}
	return out
}

// sanitizeNames resolves each raw (possibly versioned) name to the
// concrete package name that provides it, mirroring aurman's
// sanitize_user_input: a unique provider wins outright; multiple
// providers fall back to a provider whose own name matches the
// dep-string's bare name; anything else is put to s.Choice, and only
// becomes an AmbiguousProvider problem if no choice collaborator is
// wired or it errors out.
func (s Service) sanitizeNames(raw []string, sys core.System) ([]string, []types.FoundProblem) {
	var out []string
	var problems []types.FoundProblem
	for _, name := range raw {
		dep := core.SplitDep(name)
		providers := sys.ProvidedBy(dep)
		switch len(providers) {
		case 0:
			problems = append(problems, types.FoundProblem{Kind: types.ProblemNotProvided, Dependency: dep})
		case 1:
			out = append(out, providers[0].Name)
		default:
			found := false
			for _, p := range providers {
				if p.Name == dep.Name {
					out = append(out, p.Name)
					found = true
					break
				}
			}
			if found {
				continue
			}
			if s.Choice != nil {
				if picked, err := s.Choice.ChooseProvider(dep, providers); err == nil {
					out = append(out, picked.Name)
					continue
				}
			}
			var names []string
			for _, p := range providers {
				names = append(names, p.Name)
			}
			problems = append(problems, types.FoundProblem{Kind: types.ProblemAmbiguousProvider, Dependency: dep, Providers: names})
		}
	}
	return out, problems
}

func applyIgnored(upstream core.System, installed core.System, ignored []string) (core.System, error) {
	if len(ignored) == 0 {
		return upstream, nil
	}
	replacements := map[string]types.Package{}
	drop := map[string]bool{}
	for _, name := range ignored {
		if pkg, ok := installed.Get(name); ok {
			replacements[name] = pkg
		} else {
			drop[name] = true
		}
	}
	var out []types.Package
	for _, pkg := range upstream.All() {
		if drop[pkg.Name] {
			continue
		}
		if replacement, ok := replacements[pkg.Name]; ok {
			out = append(out, replacement)
			continue
		}
		out = append(out, pkg)
	}
	next, err := core.NewSystem(out)
	if err != nil {
		return core.System{}, err
	}
	next.IgnoreVersioning = upstream.IgnoreVersioning
	next.OptimisticVersioning = upstream.OptimisticVersioning
	return next, nil
}

func refreshDevelVersions(ctx context.Context, upstream core.System, devel interface {
	CurrentVersion(ctx context.Context, pkgBase string) (string, error)
}) (core.System, error) {
	var out []types.Package
	for _, pkg := range upstream.All() {
		if pkg.Kind == types.KindDevel {
			version, err := devel.CurrentVersion(ctx, pkg.PkgBase)
			if err != nil {
				return core.System{}, err
			}
			pkg.Version = version
		}
		out = append(out, pkg)
	}
	next, err := core.NewSystem(out)
	if err != nil {
		return core.System{}, err
	}
	next.IgnoreVersioning = upstream.IgnoreVersioning
	next.OptimisticVersioning = upstream.OptimisticVersioning
	return next, nil
}

func concreteTargets(req types.PlanRequest, names []string, installed core.System, upstream core.System) ([]types.Package, error) {
	var out []types.Package
	for _, name := range names {
		pkg, ok := upstream.Get(name)
		if !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("target not found upstream: " + name)
		}
		if req.Needed {
			if existing, ok := installed.Get(name); ok {
				if equal, err := core.Satisfies(existing.Version, types.ConstraintOpEq, pkg.Version); err == nil && equal {
					continue
				}
			}
		}
		out = append(out, pkg)
	}
	return out, nil
}

func appendSysupgradeTargets(req types.PlanRequest, targets []types.Package, installed core.System, upstream core.System) []types.Package {
	have := toSet(namesOf(targets))
	var candidateKinds []types.PackageKind
	if !req.RepoOnly {
		candidateKinds = append(candidateKinds, types.KindAur, types.KindDevel)
	}
	if !req.AurOnly {
		candidateKinds = append(candidateKinds, types.KindRepo)
	}
	want := map[types.PackageKind]bool{}
	for _, k := range candidateKinds {
		want[k] = true
	}
	for _, pkg := range installed.All() {
		if !want[pkg.Kind] || have[pkg.Name] {
			continue
		}
		upstreamPkg, ok := upstream.Get(pkg.Name)
		if !ok {
			continue
		}
		cmp, err := core.Compare(upstreamPkg.Version, pkg.Version)
		if err != nil {
			continue
		}
		if req.SysupgradeForce {
			if cmp != 0 {
				targets = append(targets, upstreamPkg)
				have[pkg.Name] = true
			}
			continue
		}
		if cmp > 0 {
			targets = append(targets, upstreamPkg)
			have[pkg.Name] = true
		}
	}
	for _, upstreamPkg := range upstream.All() {
		if !want[upstreamPkg.Kind] || have[upstreamPkg.Name] {
			continue
		}
		if replacesInstalled(upstreamPkg, installed) {
			targets = append(targets, upstreamPkg)
			have[upstreamPkg.Name] = true
		}
	}
	return targets
}

// replacesInstalled reports whether pkg's Replaces list names a
// package currently installed under a different identity, guarded
// against self-replacement the same way core.replacedNames is.
func replacesInstalled(pkg types.Package, installed core.System) bool {
	self := map[string]bool{}
	for _, provided := range pkg.ProvidesNames() {
		self[types.StripVersioning(provided)] = true
	}
	for _, replaces := range pkg.Replaces {
		name := types.StripVersioning(replaces)
		if self[name] {
			continue
		}
		if _, ok := installed.Get(name); ok {
			return true
		}
	}
	return false
}

func namesOf(pkgs []types.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

// classifyInstalled tags each installed package's Kind: Repo if a
// same-named package exists in the native repos, Devel/Aur (by name
// convention) otherwise. The kind is not revisited once the AUR
// universe is fetched: foreignPackageNotice reports installed non-repo
// packages the AUR does not know, but their Kind stays Aur or Devel.
// Mirrors how aurman itself has no direct "is this installed
// package from the AUR" flag and infers it from repo membership.
func classifyInstalled(installed core.System, repo core.System) (core.System, error) {
	var out []types.Package
	for _, pkg := range installed.All() {
		if _, ok := repo.Get(pkg.Name); ok {
			pkg.Kind = types.KindRepo
		} else {
			pkg.Kind = policies.ClassifyPackage(pkg)
		}
		out = append(out, pkg)
	}
	return core.NewSystem(out)
}

// foreignPackageNotice surfaces installed packages that are neither
// repo packages nor found in the AUR/devel universe once it has been
// fetched: they have no upstream provenance at all, so planning can't
// account for them. Grounded on main_solver's packages_to_show warning.
func foreignPackageNotice(installed core.System, upstream core.System, suppress map[string]bool) []string {
	var out []string
	for _, pkg := range installed.All() {
		if pkg.Kind == types.KindRepo || suppress[pkg.Name] {
			continue
		}
		if _, ok := upstream.Get(pkg.Name); !ok {
			out = append(out, pkg.Name)
		}
	}
	return out
}
