package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/config"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/normalize"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/pipeline"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/upstream"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// execute runs the command tree with args and returns its stdout. Flag
// values are reset first because the commands are package globals.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	configFile, verbose, logFormat = "", false, "console"
	t.Cleanup(func() { logger = zap.NewNop() })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-format", "console"}, args...))
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func testdataDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs("testdata")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBuildCommand(t *testing.T) {
	for _, args := range [][]string{{"build"}, {}} {
		name := "root"
		if len(args) > 0 {
			name = args[0]
		}
		t.Run(name, func(t *testing.T) {
			buildDir := filepath.Join(t.TempDir(), "out")
			out, err := execute(t, append(args, "--registry-url", testdataDir(t), "--build-dir", buildDir)...)
			if err != nil {
				t.Fatalf("execute() error: %v", err)
			}
			if !strings.Contains(out, "Wrote 1 packages (2 versions)") {
				t.Errorf("unexpected output: %q", out)
			}

			data, err := os.ReadFile(filepath.Join(buildDir, "registry.min.json"))
			if err != nil {
				t.Fatal(err)
			}
			var r registry.Registry
			if err := json.Unmarshal(data, &r); err != nil {
				t.Fatal(err)
			}
			p, ok := r.Packages.Get("chorus")
			if !ok {
				t.Fatal("chorus missing from registry")
			}
			if diff := cmp.Diff([]string{"0.1.0", "0.2.0"}, p.Versions.IDs()); diff != "" {
				t.Errorf("chorus versions mismatch (-want +got):\n%s", diff)
			}
			if _, ok := r.Packages.Get("strings-sfz"); ok {
				t.Error("sfz package must not be published")
			}
		})
	}
}

func TestBuildCommand_FetchFailure(t *testing.T) {
	buildDir := filepath.Join(t.TempDir(), "out")
	_, err := execute(t, "build", "--registry-url", t.TempDir(), "--build-dir", buildDir)

	var fe *upstream.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("execute() error = %v, want *upstream.FetchError", err)
	}
	if _, err := os.Stat(buildDir); !os.IsNotExist(err) {
		t.Errorf("failed build must not create %s (stat: %v)", buildDir, err)
	}
}

func TestBuildCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, "build", "--source-format", "xml")
	if err == nil || !strings.Contains(err.Error(), "source_format") {
		t.Fatalf("execute() error = %v, want a source_format error", err)
	}
}

func TestValidateCommand(t *testing.T) {
	buildDir := filepath.Join(t.TempDir(), "out")
	out, err := execute(t, "validate", "--registry-url", testdataDir(t), "--build-dir", buildDir)
	if err != nil {
		t.Fatalf("execute() error: %v", err)
	}

	for _, want := range []string{"SLUG", "chorus", "0.2.0", "effect", "1 packages, 2 versions (skipped 1 packages, 1 versions)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "strings-sfz") {
		t.Errorf("output lists a skipped package:\n%s", out)
	}
	if _, err := os.Stat(buildDir); !os.IsNotExist(err) {
		t.Errorf("validate must not write %s (stat: %v)", buildDir, err)
	}
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := execute(t, "validate", "--json", "--registry-url", testdataDir(t))
	if err != nil {
		t.Fatalf("execute() error: %v", err)
	}

	var got summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding summary: %v\n%s", err, out)
	}
	want := summary{
		Packages:        1,
		Versions:        2,
		SkippedPackages: 1,
		SkippedVersions: 1,
		Duplicates:      []string{},
		Entries: []summaryEntry{
			{Slug: "chorus", LatestVersion: "0.2.0", Versions: 2, Type: registry.TypeEffect},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("STUDIORACK_GITHUB_URL", "https://mirror.example.com")
	t.Setenv("STUDIORACK_BUILD_DIR", "/from/env")

	out, err := execute(t, "config", "--build-dir", "/from/flag", "--timeout", "5s")
	if err != nil {
		t.Fatalf("execute() error: %v", err)
	}

	got := decodeYAML(t, out)
	want := map[string]string{
		"build_dir":     "/from/flag",
		"github_url":    "https://mirror.example.com",
		"timeout":       "5s",
		"source_format": "unified",
		"registry_url":  config.DefaultRegistryURL,
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %q, want %q", key, got[key], value)
		}
	}
}

func decodeYAML(t *testing.T, out string) map[string]string {
	t.Helper()
	var m map[string]string
	if err := yaml.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("config output is not YAML: %v\n%s", err, out)
	}
	return m
}

func TestConfigCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte("source_format: legacy\nregistry_url: /srv/studiorack\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("execute() error: %v", err)
	}
	got := decodeYAML(t, out)
	if got["source_format"] != "legacy" || got["registry_url"] != "/srv/studiorack" {
		t.Errorf("config file values not applied:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-01-02"

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"version"}, "studiorack-registry version 1.2.3 (commit: abc123, built: 2026-01-02, registry schema 1.0.0)\n"},
		{"short", []string{"version", "--short"}, "1.2.3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute() error: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "version", "--json")
		if err != nil {
			t.Fatalf("execute() error: %v", err)
		}
		var info map[string]string
		if err := json.Unmarshal([]byte(out), &info); err != nil {
			t.Fatal(err)
		}
		if info["version"] != "1.2.3" || info["schemaVersion"] != "1.0.0" {
			t.Errorf("info = %v", info)
		}
	})
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		if _, err := newLogger(true, format); err != nil {
			t.Errorf("newLogger(%q) error: %v", format, err)
		}
	}
	if _, err := newLogger(false, "logfmt"); err == nil {
		t.Error("newLogger(logfmt) should fail")
	}
}

func TestSummarize_FailedRun(t *testing.T) {
	s := summarize(pipeline.Result{
		Stats: normalize.Stats{SkippedPackages: 2},
		Err:   errors.New("boom"),
	})
	if s.Packages != 0 || s.SkippedPackages != 2 || s.Entries == nil || s.Duplicates == nil {
		t.Errorf("summarize() = %+v", s)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetFlags(rootCmd)
	configFile = ""
	cfg, err := loadConfig(rootCmd)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentVariablesInHelp(t *testing.T) {
	if f := rootCmd.PersistentFlags().Lookup("build-dir"); f == nil || !strings.Contains(f.Usage, "[$STUDIORACK_BUILD_DIR]") {
		t.Errorf("--build-dir usage does not name its environment variable: %+v", f)
	}
	if f := rootCmd.PersistentFlags().Lookup("timeout"); f == nil || !strings.Contains(f.Usage, "[$STUDIORACK_TIMEOUT]") {
		t.Errorf("--timeout usage does not name its environment variable: %+v", f)
	}
	if !strings.Contains(configCmd.Long, "STUDIORACK_* environment variables") {
		t.Errorf("config help does not name the environment prefix:\n%s", configCmd.Long)
	}
}
