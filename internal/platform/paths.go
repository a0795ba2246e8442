package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// defaultAppName names the config and data directories when no app name is set.
const defaultAppName = "cardflow"

// Environment variables that override resolved paths.
const (
	EnvConfigPath = "CARDFLOW_CONFIG"
	EnvDBPath     = "CARDFLOW_DB_PATH"
)

// Paths holds the config file, data directory, and database locations.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the application directory name and the environment source.
// A nil Getenv reads the process environment.
type Options struct {
	AppName string
	DevMode bool
	Getenv  func(string) string
}

// baseDirEnv names the variables that relocate the config and data bases per OS.
var baseDirEnv = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths returns the OS default locations for cardflow.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions returns the OS default locations for opts.AppName.
// Dev mode appends -dev so development data never touches real boards.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	appName := firstNonEmpty(opts.AppName, defaultAppName)
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return PathsFor(runtime.GOOS, getenv, configDir, dataDir, appName)
}

// PathsFor computes locations for goos from fallback base dirs and the environment.
func PathsFor(goos string, getenv func(string) string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	configBase, dataBase := userConfigDir, userDataDir
	if keys, ok := baseDirEnv[goos]; ok {
		configBase = firstNonEmpty(getenv(keys.config), configBase)
		dataBase = firstNonEmpty(getenv(keys.data), dataBase)
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
	}, nil
}

// Overrides carries explicitly requested config and database locations.
type Overrides struct {
	ConfigPath string
	DBPath     string
}

// Resolution is the final set of locations used for one run.
type Resolution struct {
	Paths
	// DBOverridden reports whether the database path came from a flag or the
	// environment and must win over the config file.
	DBOverridden bool
}

// Resolve layers flag values over environment values over defaults.
func Resolve(defaults Paths, flags Overrides, getenv func(string) string) Resolution {
	if getenv == nil {
		getenv = os.Getenv
	}
	out := Resolution{Paths: defaults}
	out.ConfigPath = firstNonEmpty(flags.ConfigPath, getenv(EnvConfigPath), defaults.ConfigPath)
	if db := firstNonEmpty(flags.DBPath, getenv(EnvDBPath)); db != "" {
		out.DBPath = db
		out.DBOverridden = true
	}
	return out
}

// firstNonEmpty returns the first value that is not blank, trimmed.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
