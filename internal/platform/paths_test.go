package platform

import (
	"path/filepath"
	"testing"
)

// envOf adapts a map to a getenv function.
func envOf(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

// TestPathsForPerOS verifies each platform picks its relocation variables or falls back.
func TestPathsForPerOS(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		configBase string
		dataBase   string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": " /xdg/data "},
			configBase: "/fallback/config",
			dataBase:   "/fallback/data",
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			configBase: "/home/me/.config",
			dataBase:   "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			configBase: `C:\fallback\config`,
			dataBase:   `C:\fallback\data`,
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			configBase: "/Users/me/Library/Application Support",
			dataBase:   "/Users/me/Library/Application Support",
			wantConfig: "/Users/me/Library/Application Support",
			wantData:   "/Users/me/Library/Application Support",
		},
		{
			name:       "unknown os",
			goos:       "plan9",
			configBase: "/cfg",
			dataBase:   "/data",
			wantConfig: "/cfg",
			wantData:   "/data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, envOf(tc.env), tc.configBase, tc.dataBase, "cardflow")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if want := filepath.Join(tc.wantConfig, "cardflow", "config.toml"); p.ConfigPath != want {
				t.Fatalf("expected config path %q, got %q", want, p.ConfigPath)
			}
			if want := filepath.Join(tc.wantData, "cardflow"); p.DataDir != want {
				t.Fatalf("expected data dir %q, got %q", want, p.DataDir)
			}
			if want := filepath.Join(tc.wantData, "cardflow", "cardflow.db"); p.DBPath != want {
				t.Fatalf("expected db path %q, got %q", want, p.DBPath)
			}
		})
	}
}

// TestPathsForRejectsEmptyInputs verifies missing base dirs or app names fail.
func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "cardflow"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/cfg", "/tmp/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestDefaultPathsSmoke verifies the host defaults resolve.
func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
	if filepath.Base(p.DBPath) != "cardflow.db" {
		t.Fatalf("expected default app db name, got %q", p.DBPath)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies dev mode suffixes the app directories.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "cardflow", DevMode: true, Getenv: envOf(nil)})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "cardflow-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "cardflow-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}

// TestResolvePrecedence verifies flags win over env and env wins over defaults.
func TestResolvePrecedence(t *testing.T) {
	defaults := Paths{ConfigPath: "/d/config.toml", DataDir: "/d", DBPath: "/d/cardflow.db"}
	getenv := envOf(map[string]string{
		EnvConfigPath: "/env/config.toml",
		EnvDBPath:     "/env/cardflow.db",
	})

	got := Resolve(defaults, Overrides{}, envOf(nil))
	if got.Paths != defaults || got.DBOverridden {
		t.Fatalf("expected defaults, got %#v", got)
	}

	got = Resolve(defaults, Overrides{}, getenv)
	if got.ConfigPath != "/env/config.toml" || got.DBPath != "/env/cardflow.db" || !got.DBOverridden {
		t.Fatalf("expected env values, got %#v", got)
	}

	got = Resolve(defaults, Overrides{ConfigPath: " /flag/config.toml ", DBPath: "/flag/cardflow.db"}, getenv)
	if got.ConfigPath != "/flag/config.toml" || got.DBPath != "/flag/cardflow.db" || !got.DBOverridden {
		t.Fatalf("expected flag values, got %#v", got)
	}
	if got.DataDir != "/d" {
		t.Fatalf("expected data dir to stay default, got %q", got.DataDir)
	}
}
