package ports

import "archaur/internal/types"

// ChoicePort asks an interactive caller to pick among ambiguous
// providers or among several valid solutions. An adapter that cannot
// prompt (e.g. running non-interactively) returns an error rather than
// guessing.
type ChoicePort interface {
	ChooseProvider(dep types.Dependency, providers []types.Package) (types.Package, error)
	ChooseSolution(candidates []types.Candidate) (types.Candidate, error)
}
