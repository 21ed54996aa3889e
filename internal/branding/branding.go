// Package branding provides compile-time identity values for the CLI and the
// registry it publishes.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Forks that publish under a different name edit the
// YAML file only.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	EnvPrefix    string `yaml:"env_prefix"`
	GitHubRepo   string `yaml:"github_repo"`
	RegistryName string `yaml:"registry_name"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:      "studiorack-registry",
			DisplayName:  "StudioRack Registry",
			Description:  "Normalizes the StudioRack plugin registry for OwlPlug",
			EnvPrefix:    "STUDIORACK",
			GitHubRepo:   "OwlPlug/owlplug-studiorack-registry",
			RegistryName: "Studiorack Registry",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "studiorack-registry").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "STUDIORACK").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string of this project.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// RegistryName returns the fixed name written into the registry envelope.
// OwlPlug has always received it spelled "Studiorack Registry".
func RegistryName() string { load(); return defaults.RegistryName }

// UserAgent returns the User-Agent header sent with upstream requests.
func UserAgent() string { load(); return defaults.CLIName + " (+https://github.com/" + defaults.GitHubRepo + ")" }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("build_dir") → "STUDIORACK_BUILD_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
