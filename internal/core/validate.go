package core

import (
	"context"
	"sort"

	"archaur/internal/types"
)

// Validate filters solver output down to the solutions that are
// actually installable: no FoundProblem, and the hypothetical system
// they'd produce doesn't itself conflict. Grounded on aurman's
// System.validate_solutions.
func Validate(ctx context.Context, installed System, solutions []types.Solution) []types.Candidate {
	var out []types.Candidate
	for _, sol := range solutions {
		if len(sol.Problems) != 0 {
			continue
		}
		next, rejected, err := installed.HypotheticalAppend(ctx, sol.Packages)
		if err != nil || len(rejected) != 0 {
			continue
		}
		out = append(out, types.Candidate{Solution: sol, ResultingSystem: next.All()})
	}
	return out
}

// Choose picks the single best candidate by a deterministic
// tie-breaker (fewest packages touched, then lexicographic package
// names) when a caller doesn't want an interactive prompt. aurman
// itself always prompts; this is the non-interactive fallback this
// system's ChoicePort can use when input isn't a TTY.
func Choose(candidates []types.Candidate) (types.Candidate, bool) {
	if len(candidates) == 0 {
		return types.Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.Solution.Packages) < len(best.Solution.Packages) {
			best = c
			continue
		}
		if len(c.Solution.Packages) == len(best.Solution.Packages) && lessNames(c, best) {
			best = c
		}
	}
	return best, true
}

func lessNames(a, b types.Candidate) bool {
	an := namesOf(a.Solution.Packages)
	bn := namesOf(b.Solution.Packages)
	sort.Strings(an)
	sort.Strings(bn)
	for i := 0; i < len(an) && i < len(bn); i++ {
		if an[i] != bn[i] {
			return an[i] < bn[i]
		}
	}
	return len(an) < len(bn)
}

func namesOf(pkgs []types.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}
