package ports

// GroupExpansionPort expands a pacman package group name (e.g. "base")
// into its member package names, so --ignoregroup can be applied the
// same way --ignore is.
type GroupExpansionPort interface {
	ExpandGroup(name string) ([]string, error)
}
