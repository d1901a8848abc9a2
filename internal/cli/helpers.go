package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"archaur/internal/app"
)

func newAppService() *app.Service {
	return app.NewService(app.Options{
		AurBaseURL:    withDefault(viper.GetString("aur_base_url"), "https://aur.archlinux.org"),
		SyncDBRoot:    withDefault(viper.GetString("sync_db_root"), "/var/lib/pacman/sync"),
		LocalDBRoot:   withDefault(viper.GetString("local_db_root"), "/var/lib/pacman/local"),
		DevelCacheDir: withDefault(viper.GetString("devel_cache_dir"), "/var/cache/archaur/devel"),
		In:            os.Stdin,
		Out:           os.Stdout,
	})
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
