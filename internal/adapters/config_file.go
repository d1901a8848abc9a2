package adapters

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	ini "gopkg.in/ini.v1"

	"archaur/internal/ports"
)

// ConfigFileAdapter loads the persisted key=value sectioned config
// file. Grounded on aurman's parsing_config.py, which reads the same
// layout with Python's configparser.
type ConfigFileAdapter struct{}

func NewConfigFileAdapter() ConfigFileAdapter {
	return ConfigFileAdapter{}
}

func (a ConfigFileAdapter) Load(path string) (ports.Config, error) {
	// Each section lists bare package names, one per line, the same
	// shape parsing_config.py reads with configparser; AllowBooleanKeys
	// lets ini.v1 accept a key with no "=value" part.
	file, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return ports.Config{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read config file: " + path).
			WithCause(err)
	}
	cfg := ports.Config{}
	if section, err := file.GetSection("aur_packages"); err == nil {
		cfg.AurPackages = section.KeyStrings()
	}
	if section, err := file.GetSection("repo_packages"); err == nil {
		cfg.RepoPackages = section.KeyStrings()
	}
	if section, err := file.GetSection("devel_packages"); err == nil {
		cfg.DevelPackages = section.KeyStrings()
	}
	if section, err := file.GetSection("no_notification_unknown_packages"); err == nil {
		cfg.NoNotificationUnknownPackage = section.KeyStrings()
	}
	return cfg, nil
}

var _ ports.ConfigPort = ConfigFileAdapter{}
