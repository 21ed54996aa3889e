package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/branding"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// Config keys. The environment variable for a key is branding.EnvVar(key).
const (
	KeyBuildDir            = "build_dir"
	KeyRegistryURL         = "registry_url"
	KeyGitHubURL           = "github_url"
	KeySourceFormat        = "source_format"
	KeyDocument            = "document"
	KeyEffectsDocument     = "effects_document"
	KeyInstrumentsDocument = "instruments_document"
	KeyTimeout             = "timeout"
)

// Defaults.
const (
	DefaultBuildDir            = "./build"
	DefaultRegistryURL         = "https://studiorack.github.io/studiorack-registry/"
	DefaultGitHubURL           = "https://github.com"
	DefaultDocument            = "index.json"
	DefaultEffectsDocument     = "effects.json"
	DefaultInstrumentsDocument = "instruments.json"
	DefaultTimeout             = 30 * time.Second
)

// SourceFormat selects the upstream document layout.
type SourceFormat string

const (
	// FormatUnified is a single document; plugin type is inferred from tags.
	FormatUnified SourceFormat = "unified"
	// FormatLegacy is the pair of effects/instruments documents; plugin type
	// is supplied by the endpoint.
	FormatLegacy SourceFormat = "legacy"
)

// Config is the resolved configuration of one run.
type Config struct {
	BuildDir            string
	RegistryURL         string
	GitHubURL           string
	SourceFormat        SourceFormat
	Document            string
	EffectsDocument     string
	InstrumentsDocument string
	Timeout             time.Duration
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		BuildDir:            DefaultBuildDir,
		RegistryURL:         DefaultRegistryURL,
		GitHubURL:           DefaultGitHubURL,
		SourceFormat:        FormatUnified,
		Document:            DefaultDocument,
		EffectsDocument:     DefaultEffectsDocument,
		InstrumentsDocument: DefaultInstrumentsDocument,
		Timeout:             DefaultTimeout,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"build-dir":     KeyBuildDir,
	"registry-url":  KeyRegistryURL,
	"github-url":    KeyGitHubURL,
	"source-format": KeySourceFormat,
	"timeout":       KeyTimeout,
}

// Load resolves a Config. configFile may be empty, in which case only flags,
// environment and defaults are consulted. flags may be nil. Only flags the
// user actually set take precedence over the environment.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault(KeyBuildDir, def.BuildDir)
	v.SetDefault(KeyRegistryURL, def.RegistryURL)
	v.SetDefault(KeyGitHubURL, def.GitHubURL)
	v.SetDefault(KeySourceFormat, string(def.SourceFormat))
	v.SetDefault(KeyDocument, def.Document)
	v.SetDefault(KeyEffectsDocument, def.EffectsDocument)
	v.SetDefault(KeyInstrumentsDocument, def.InstrumentsDocument)
	v.SetDefault(KeyTimeout, def.Timeout)

	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	cfg := Config{
		BuildDir:            v.GetString(KeyBuildDir),
		RegistryURL:         v.GetString(KeyRegistryURL),
		GitHubURL:           v.GetString(KeyGitHubURL),
		SourceFormat:        SourceFormat(strings.ToLower(v.GetString(KeySourceFormat))),
		Document:            v.GetString(KeyDocument),
		EffectsDocument:     v.GetString(KeyEffectsDocument),
		InstrumentsDocument: v.GetString(KeyInstrumentsDocument),
		Timeout:             v.GetDuration(KeyTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BuildDir) == "" {
		return fmt.Errorf("%s must not be empty", KeyBuildDir)
	}
	if strings.TrimSpace(c.RegistryURL) == "" {
		return fmt.Errorf("%s must not be empty", KeyRegistryURL)
	}
	if IsRemote(c.RegistryURL) {
		if err := checkHTTPURL(KeyRegistryURL, c.RegistryURL); err != nil {
			return err
		}
	}
	if err := checkHTTPURL(KeyGitHubURL, c.GitHubURL); err != nil {
		return err
	}
	switch c.SourceFormat {
	case FormatUnified:
		if c.Document == "" {
			return fmt.Errorf("%s must not be empty", KeyDocument)
		}
	case FormatLegacy:
		if c.EffectsDocument == "" || c.InstrumentsDocument == "" {
			return fmt.Errorf("%s and %s must not be empty", KeyEffectsDocument, KeyInstrumentsDocument)
		}
	default:
		return fmt.Errorf("unknown %s %q (want %q or %q)", KeySourceFormat, c.SourceFormat, FormatUnified, FormatLegacy)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	return nil
}

// IsRemote reports whether location is an http(s) URL rather than a local
// path or file:// URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func checkHTTPURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

// fileView is the YAML shape of a config file.
type fileView struct {
	BuildDir            string `yaml:"build_dir"`
	RegistryURL         string `yaml:"registry_url"`
	GitHubURL           string `yaml:"github_url"`
	SourceFormat        string `yaml:"source_format"`
	Document            string `yaml:"document"`
	EffectsDocument     string `yaml:"effects_document"`
	InstrumentsDocument string `yaml:"instruments_document"`
	Timeout             string `yaml:"timeout"`
}

// YAML renders the configuration in config-file form. The output can be fed
// back through --config.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(fileView{
		BuildDir:            c.BuildDir,
		RegistryURL:         c.RegistryURL,
		GitHubURL:           c.GitHubURL,
		SourceFormat:        string(c.SourceFormat),
		Document:            c.Document,
		EffectsDocument:     c.EffectsDocument,
		InstrumentsDocument: c.InstrumentsDocument,
		Timeout:             c.Timeout.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}
