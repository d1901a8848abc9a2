package policies

// ApplyIgnore computes the final set of package names to drop from the
// upstream universe consideration, given the raw --ignore/--ignoregroup
// expansion and the names the user explicitly targeted. Grounded on
// aurman's main_solver.process: explicitly typed-in names are never
// ignored, even if they also appear in an ignored group.
func ApplyIgnore(ignored []string, explicitTargets map[string]bool) []string {
	out := make([]string, 0, len(ignored))
	for _, name := range ignored {
		if explicitTargets[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ApplyHold computes the final hold set: the user's --hold entries
// plus (optionally, by the caller prepending them) pacman.conf's
// HoldPkg, deduplicated.
func ApplyHold(holdPkg []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(holdPkg))
	for _, name := range holdPkg {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
