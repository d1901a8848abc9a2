package ports

// Config is the parsed form of the persisted key=value configuration
// file: sections for packages that must always be treated as AUR or
// repo, devel packages, and installed packages exempt from the
// unknown-package notice. The miscellaneous flags section is not read.
type Config struct {
	AurPackages                  []string
	RepoPackages                 []string
	DevelPackages                []string
	NoNotificationUnknownPackage []string
}

// ConfigPort loads the persisted configuration file.
type ConfigPort interface {
	Load(path string) (Config, error)
}
