package types

// PlanRequest is the caller-supplied input to a planning run: the
// packages the user named on the command line plus the flags that
// shape which packages get pulled in besides them.
type PlanRequest struct {
	Targets []string

	Needed          bool
	Sysupgrade      bool
	SysupgradeForce bool
	DeepSearch      bool
	RepoOnly        bool
	AurOnly         bool
	Devel           bool

	Hold   []string
	Ignore []string

	// SuppressUnknownNotice names installed foreign packages that
	// should not be reported by the unknown-package notice, mirroring
	// the config file's no_notification_unknown_packages section.
	SuppressUnknownNotice []string

	Filter FilterRule
}

// FoundProblem is a diagnostic the solver attaches to a dead branch of
// the search. Exactly one of the Cycle/Conflict/NotProvided-specific
// fields is populated, selected by Kind.
type FoundProblem struct {
	Kind ProblemKind

	// Cycle: the package names on the path that closed the loop.
	CyclePath []string

	// Conflict: the two conflicting package names.
	ConflictA string
	ConflictB string

	// NotProvided / AmbiguousProvider: the unmet dependency and, for
	// AmbiguousProvider, the candidate providers found.
	Dependency Dependency
	Providers  []string

	// HeldPackageMissing: the name from the hold set that does not
	// resolve against the upstream universe.
	HeldName string
}

// Solution is one candidate resolution of a dep_solving run: the
// packages that would need to be installed, in the order the search
// visited them, plus the names that must not be removed, the names
// this branch visited, and the problems found on it.
type Solution struct {
	Packages       []Package
	NotToBeRemoved map[string]bool
	VisitedNames   map[string]bool
	Problems       []FoundProblem
}

// Candidate pairs a validated Solution with the hypothetical system it
// would produce, for the chooser to present to a caller.
type Candidate struct {
	Solution        Solution
	ResultingSystem []Package
}

// PlannerResult is the outward-facing result of a planning run: either
// a single chosen plan, several valid candidates awaiting a pick, or a
// failure with the problems that ruled out every branch.
type PlannerResult struct {
	Chosen   *Plan
	Choices  []Candidate
	Failed   bool
	Problems []FoundProblem
	Notices  []string
}

// Plan is a fully validated, chunked transaction: packages to install,
// grouped into ordered chunks that respect the repo/non-repo batching
// rule, plus whatever must be removed to make room for them.
type Plan struct {
	Chunks   [][]Package `yaml:"chunks"`
	ToRemove []Package   `yaml:"to_remove"`
}
