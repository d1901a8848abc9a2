package types

// PackageKind classifies where a Package's authoritative metadata comes
// from, matching the distinction a pacman-family system makes between
// packages from official binary repos, a source-based companion
// repository, and packages with no provenance at all.
type PackageKind string

const (
	KindRepo    PackageKind = "repo"
	KindAur     PackageKind = "aur"
	KindDevel   PackageKind = "devel"
	KindForeign PackageKind = "foreign"
)

// InstallReason records why a package is present on the target system,
// mirroring pacman's explicit/dependency install-reason distinction.
type InstallReason string

const (
	ReasonExplicit   InstallReason = "explicit"
	ReasonDependency InstallReason = "dependency"
	ReasonUnset      InstallReason = ""
)

// ConstraintOp is a dependency version-comparison operator, e.g. the
// ">=1.2.3" suffix of a dep-string such as "glibc>=1.2.3".
type ConstraintOp string

const (
	ConstraintOpNone ConstraintOp = ""
	ConstraintOpEq   ConstraintOp = "="
	ConstraintOpEq2  ConstraintOp = "=="
	ConstraintOpGte  ConstraintOp = ">="
	ConstraintOpLte  ConstraintOp = "<="
	ConstraintOpGt   ConstraintOp = ">"
	ConstraintOpLt   ConstraintOp = "<"
)

// FilterRule controls how many solutions the solver keeps at each
// dependency it resolves. KeepAll is exponential in the worst case but
// lets a caller choose among alternatives; KeepOneInvalid stops trying
// further providers once one yields a valid solution, keeps only the
// valid solutions when there are any, and a single invalid
// representative otherwise.
type FilterRule int

const (
	FilterKeepAll FilterRule = iota
	FilterKeepOneInvalid
)

// ProblemKind tags the variant of a FoundProblem so callers can branch
// on it without type-asserting the concrete struct.
type ProblemKind string

const (
	ProblemCycle             ProblemKind = "cycle"
	ProblemConflict          ProblemKind = "conflict"
	ProblemNotProvided       ProblemKind = "not_provided"
	ProblemAmbiguousProvider ProblemKind = "ambiguous_provider"
	ProblemHeldMissing       ProblemKind = "held_package_missing"
	ProblemConnection        ProblemKind = "connection_problem"
	ProblemInvalidInput      ProblemKind = "invalid_input"
)
