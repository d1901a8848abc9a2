package cli

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"archaur/internal/app"
	"archaur/internal/core"
	"archaur/internal/types"
)

type planOptions struct {
	Needed          bool
	Sysupgrade      bool
	SysupgradeForce bool
	DeepSearch      bool
	RepoOnly        bool
	AurOnly         bool
	Devel           bool
	KeepOneInvalid  bool

	Hold        []string
	Ignore      []string
	IgnoreGroup []string

	ConfigFile string
	YAML       bool
}

func newPlanCommand() *cobra.Command {
	opts := planOptions{}
	cmd := &cobra.Command{
		Use:   "plan [packages...]",
		Short: "Resolve targets against installed and upstream packages and print an install plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Needed, "needed", false, "Skip targets already installed at the resolved version")
	cmd.Flags().BoolVarP(&opts.Sysupgrade, "sysupgrade", "u", false, "Also upgrade installed packages with a newer upstream version")
	cmd.Flags().BoolVar(&opts.SysupgradeForce, "sysupgrade-force", false, "Like --sysupgrade but also replaces packages whose version merely differs")
	cmd.Flags().BoolVar(&opts.DeepSearch, "deep-search", false, "Ignore the installed system while searching for a solution")
	cmd.Flags().BoolVar(&opts.RepoOnly, "repo", false, "Restrict the upstream universe to native repo packages")
	cmd.Flags().BoolVar(&opts.AurOnly, "aur", false, "Restrict the upstream universe to AUR/devel packages")
	cmd.Flags().BoolVar(&opts.Devel, "devel", false, "Refresh devel package versions from their upstream source before planning")
	cmd.Flags().BoolVar(&opts.KeepOneInvalid, "keep-one-invalid", false, "Prune the search: keep only valid solutions, or a single failing one when none is valid")
	cmd.Flags().StringSliceVar(&opts.Hold, "hold", nil, "Package names that must remain installed")
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "Package names to exclude from the upstream universe")
	cmd.Flags().StringSliceVar(&opts.IgnoreGroup, "ignoregroup", nil, "Package group names to exclude from the upstream universe")
	cmd.Flags().StringVar(&opts.ConfigFile, "package-config", "", "Persisted package config file (key=value sections)")
	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "Print the plan as YAML instead of plain text")

	_ = viper.BindPFlag("needed", cmd.Flags().Lookup("needed"))
	_ = viper.BindPFlag("sysupgrade", cmd.Flags().Lookup("sysupgrade"))
	_ = viper.BindPFlag("sysupgrade_force", cmd.Flags().Lookup("sysupgrade-force"))
	_ = viper.BindPFlag("deep_search", cmd.Flags().Lookup("deep-search"))
	_ = viper.BindPFlag("repo_only", cmd.Flags().Lookup("repo"))
	_ = viper.BindPFlag("aur_only", cmd.Flags().Lookup("aur"))
	_ = viper.BindPFlag("devel", cmd.Flags().Lookup("devel"))
	_ = viper.BindPFlag("keep_one_invalid", cmd.Flags().Lookup("keep-one-invalid"))
	_ = viper.BindPFlag("hold", cmd.Flags().Lookup("hold"))
	_ = viper.BindPFlag("ignore", cmd.Flags().Lookup("ignore"))
	_ = viper.BindPFlag("ignoregroup", cmd.Flags().Lookup("ignoregroup"))
	_ = viper.BindPFlag("package_config", cmd.Flags().Lookup("package-config"))
	_ = viper.BindPFlag("yaml", cmd.Flags().Lookup("yaml"))

	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, args []string, opts planOptions) error {
	service := newAppService()

	ignore := resolveStrings(cmd, opts.Ignore, "ignore", "ignore")
	ignoreGroups := resolveStrings(cmd, opts.IgnoreGroup, "ignoregroup", "ignoregroup")
	for _, group := range ignoreGroups {
		members, err := service.GroupExpansion.ExpandGroup(group)
		if err != nil {
			return err
		}
		ignore = append(ignore, members...)
	}

	var suppress []string
	configPath := resolveString(cmd, opts.ConfigFile, "package_config", "package-config")
	if configPath != "" {
		cfg, err := service.Config.Load(configPath)
		if err != nil {
			return err
		}
		suppress = cfg.NoNotificationUnknownPackage
	}

	filter := types.FilterKeepAll
	if resolveBool(cmd, opts.KeepOneInvalid, "keep_one_invalid", "keep-one-invalid") {
		filter = types.FilterKeepOneInvalid
	}

	req := types.PlanRequest{
		Targets:               args,
		Needed:                resolveBool(cmd, opts.Needed, "needed", "needed"),
		Sysupgrade:            resolveBool(cmd, opts.Sysupgrade, "sysupgrade", "sysupgrade"),
		SysupgradeForce:       resolveBool(cmd, opts.SysupgradeForce, "sysupgrade_force", "sysupgrade-force"),
		DeepSearch:            resolveBool(cmd, opts.DeepSearch, "deep_search", "deep-search"),
		RepoOnly:              resolveBool(cmd, opts.RepoOnly, "repo_only", "repo"),
		AurOnly:               resolveBool(cmd, opts.AurOnly, "aur_only", "aur"),
		Devel:                 resolveBool(cmd, opts.Devel, "devel", "devel"),
		Hold:                  resolveStrings(cmd, opts.Hold, "hold", "hold"),
		Ignore:                ignore,
		SuppressUnknownNotice: suppress,
		Filter:                filter,
	}

	result, err := service.Plan(ctx, req)
	if err != nil {
		return err
	}

	for _, notice := range result.Notices {
		fmt.Printf("warning: installed package has no known provenance: %s\n", notice)
	}

	if result.Failed {
		return problemsToError(result.Problems)
	}

	chosen := result.Chosen
	if chosen == nil {
		installed, err := installedSystem(ctx, service)
		if err != nil {
			return err
		}
		picked, err := choose(service, result.Choices)
		if err != nil {
			return err
		}
		plan, err := app.ChooseAndBuild(installed, picked)
		if err != nil {
			return err
		}
		chosen = &plan
	}

	if resolveBool(cmd, opts.YAML, "yaml", "yaml") {
		return printPlanYAML(*chosen)
	}
	printPlan(*chosen)
	return nil
}

func printPlanYAML(plan types.Plan) error {
	out, err := yaml.Marshal(plan)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal plan").
			WithCause(err)
	}
	fmt.Print(string(out))
	return nil
}

// choose picks one of several valid candidate solutions: the
// interactive prompt wired into service.Choice when one is available,
// falling back to core.Choose's deterministic tie-breaker (fewest
// packages touched, then lexicographic names) otherwise.
func choose(service *app.Service, candidates []types.Candidate) (types.Candidate, error) {
	if service.Choice != nil {
		return service.Choice.ChooseSolution(candidates)
	}
	picked, ok := core.Choose(candidates)
	if !ok {
		return types.Candidate{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no candidate solution to choose from")
	}
	return picked, nil
}

func installedSystem(ctx context.Context, service *app.Service) (core.System, error) {
	packages, err := service.InstalledSnapshot.InstalledPackages(ctx)
	if err != nil {
		return core.System{}, err
	}
	return core.NewSystem(packages)
}

func printPlan(plan types.Plan) {
	for _, pkg := range plan.ToRemove {
		fmt.Printf("remove %s %s\n", pkg.Name, pkg.Version)
	}
	for i, chunk := range plan.Chunks {
		fmt.Printf("chunk %d:\n", i+1)
		for _, pkg := range chunk {
			fmt.Printf("  install %s %s [%s]\n", pkg.Name, pkg.Version, pkg.Kind)
		}
	}
}

func problemsToError(problems []types.FoundProblem) error {
	if len(problems) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no valid solution found")
	}
	first := problems[0]
	switch first.Kind {
	case types.ProblemHeldMissing:
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("held package not found upstream: " + first.HeldName)
	case types.ProblemNotProvided:
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("nothing provides: " + first.Dependency.Name)
	case types.ProblemAmbiguousProvider:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("ambiguous provider for %s: %v", first.Dependency.Name, first.Providers))
	case types.ProblemConflict:
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("conflict between %s and %s", first.ConflictA, first.ConflictB))
	case types.ProblemCycle:
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("dependency cycle: %v", first.CyclePath))
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("planning failed: " + string(first.Kind))
	}
}
