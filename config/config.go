// Package config loads the ~/.sbopkg-dep2sqf configuration file: the
// SlackBuilds repository location, the slackpkg repository name used by
// the remote installed-package oracle, the default build tag, the
// dependency-file directory, and the pager/editor used by the review and
// edit commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// FileName is the configuration file's name under $HOME.
const FileName = ".sbopkg-dep2sqf"

// Defaults, compiled in and used to seed Config before the environment
// and then the config file are allowed to override them, in that order
// — matching the original tool's load sequence exactly.
const (
	DefaultSBOPkgRepo       = "/usr/sbo"
	DefaultSlackpkgRepoName = "SBo"
	DefaultDepDir           = ".sbo-dep2sqf"
	DefaultSBOTag           = "_SBo"
	DefaultPager            = "less"
	DefaultEditor           = "vi"
)

// Config is the loaded, fully-resolved configuration.
type Config struct {
	SBOPkgRepo       string
	SlackpkgRepoName string
	SBOTag           string
	DepDir           string
	Pager            string
	Editor           string
}

// defaultConfig returns the compiled-in baseline, with Pager/Editor
// already overridden by the PAGER/EDITOR environment variables if set:
// user_config_init in the original tool applies the environment before
// ever reading the config file, so the file is still free to override an
// environment-sourced default, but an unset file key never clobbers one.
func defaultConfig() *Config {
	cfg := &Config{
		SBOPkgRepo:       DefaultSBOPkgRepo,
		SlackpkgRepoName: DefaultSlackpkgRepoName,
		SBOTag:           DefaultSBOTag,
		DepDir:           DefaultDepDir,
		Pager:            DefaultPager,
		Editor:           DefaultEditor,
	}
	if v := os.Getenv("PAGER"); v != "" {
		cfg.Pager = v
	}
	if v := os.Getenv("EDITOR"); v != "" {
		cfg.Editor = v
	}
	return cfg
}

// Load reads and parses $HOME/.sbopkg-dep2sqf, creating it with the
// compiled-in (environment-seeded) defaults if it doesn't exist yet. A
// missing $HOME is a fatal configuration error: there is no reasonable
// location to resolve the file against.
func Load() (*Config, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return nil, fmt.Errorf("configuration: HOME is not set")
	}
	return LoadFrom(filepath.Join(home, FileName))
}

// LoadFrom loads the configuration from an explicit path, creating it
// with defaults if absent. Exposed separately from Load so tests and the
// --config-file flag can point at a file outside $HOME.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaultFile(path, cfg); err != nil {
			return nil, fmt.Errorf("create default configuration at %s: %w", path, err)
		}
		return cfg, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("parse configuration %s: %w", path, err)
	}
	section := f.Section("") // the file has no [section] headers

	set := map[string]*string{
		"SBOPKG_REPO":        &cfg.SBOPkgRepo,
		"SLACKPKG_REPO_NAME": &cfg.SlackpkgRepoName,
		"SBO_TAG":            &cfg.SBOTag,
		"DEPDIR":             &cfg.DepDir,
		"PAGER":              &cfg.Pager,
		"EDITOR":             &cfg.Editor,
	}
	for _, key := range section.Keys() {
		target, ok := set[key.Name()]
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: %s: unrecognized configuration key %q\n", path, key.Name())
			continue
		}
		*target = strings.Trim(key.Value(), `"'`)
	}

	return cfg, nil
}

func writeDefaultFile(path string, cfg *Config) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - sbopkg-dep2sqf configuration\n", filepath.Base(path))
	fmt.Fprintf(&b, "SBOPKG_REPO = %q\n", cfg.SBOPkgRepo)
	fmt.Fprintf(&b, "SLACKPKG_REPO_NAME = %q\n", cfg.SlackpkgRepoName)
	fmt.Fprintf(&b, "SBO_TAG = %q\n", cfg.SBOTag)
	fmt.Fprintf(&b, "DEPDIR = %q\n", cfg.DepDir)
	fmt.Fprintf(&b, "PAGER = %q\n", cfg.Pager)
	fmt.Fprintf(&b, "EDITOR = %q\n", cfg.Editor)
	return os.WriteFile(path, []byte(b.String()), 0644)
}
