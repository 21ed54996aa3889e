//go:build integration

package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	SourceDir string // STUDIORACK_REGISTRY_URL, a local upstream mirror
	BuildDir  string // STUDIORACK_BUILD_DIR, receives the registry files
}

// setupTestEnv creates isolated temp directories and points the STUDIORACK_
// environment at them. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		SourceDir: t.TempDir(),
		BuildDir:  filepath.Join(t.TempDir(), "build"),
	}

	t.Setenv("STUDIORACK_REGISTRY_URL", env.SourceDir)
	t.Setenv("STUDIORACK_BUILD_DIR", env.BuildDir)
	t.Setenv("STUDIORACK_GITHUB_URL", "https://github.com")
	t.Setenv("STUDIORACK_SOURCE_FORMAT", "unified")

	return env
}

// unifiedIndex is a unified upstream document covering every normalization
// path: plain effect, sfz-only package, mixed package whose upstream latest is
// excluded, instrument with screenshot and all three platforms.
const unifiedIndex = `{
  "objects": {
    "reverb-x": {
      "version": "1.0.0",
      "license": "mit",
      "versions": {
        "1.0.0": {
          "name": "Reverb X", "author": "Studio A", "description": "Plate reverb",
          "homepage": "https://example.com/reverb-x", "repo": "a/b", "release": "1.0.0",
          "tags": ["effect"],
          "files": {"win": {"name": "r.zip", "size": 100}}
        }
      }
    },
    "sfz-only": {
      "version": "1.0.0",
      "license": "cc0-1.0",
      "versions": {
        "1.0.0": {"name": "Keys", "repo": "k/k", "release": "1.0.0", "tags": ["sfz"], "files": {}}
      }
    },
    "dexed": {
      "version": "0.9.7",
      "license": "gpl-3.0",
      "versions": {
        "0.9.6": {
          "name": "Dexed", "author": "Digital Suburban", "repo": "studiorack/dexed", "release": "v0.9.6",
          "tags": ["Instrument", "Synth"],
          "files": {
            "linux": {"name": "dexed-linux.zip", "size": 3},
            "mac": {"name": "dexed-mac.zip", "size": 2},
            "win": {"name": "dexed-win.zip", "size": 1},
            "image": {"name": "dexed.png", "size": 4}
          }
        },
        "0.9.7": {
          "name": "Dexed SFZ", "repo": "studiorack/dexed", "release": "v0.9.7",
          "tags": ["Instrument", "sfz"],
          "files": {"win": {"name": "dexed-sfz.zip", "size": 5}}
        }
      }
    }
  }
}
`

// setupUnifiedSource writes index.json into dir.
func setupUnifiedSource(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "index.json"), unifiedIndex)
}

// setupLegacySource writes effects.json and instruments.json into dir. The
// "twin" slug appears in both documents.
func setupLegacySource(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "effects.json"), `{"objects": {
  "comp": {"version": "1.0.0", "license": "mit", "versions": {
    "1.0.0": {"name": "Comp", "repo": "c/comp", "version": "1.0.0", "tags": ["dynamics"],
              "files": {"linux": {"name": "comp.tar.gz", "size": 12}}}}},
  "twin": {"version": "1.0.0", "license": "mit", "versions": {
    "1.0.0": {"name": "Twin FX", "repo": "t/twin", "version": "1.0.0", "tags": []}}}
}}`)
	writeFile(t, filepath.Join(dir, "instruments.json"), `{"objects": {
  "bass": {"version": "2.1.0", "license": "mit", "versions": {
    "2.1.0": {"name": "Bass", "repo": "b/bass", "version": "v2.1.0", "tags": ["effect"],
              "files": {"win": {"name": "bass.zip", "size": 21}}}}},
  "twin": {"version": "1.0.0", "license": "mit", "versions": {
    "1.0.0": {"name": "Twin Synth", "repo": "t/twin", "version": "1.0.0", "tags": []}}}
}}`)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// readRegistry decodes a registry file, failing the test on error.
func readRegistry(t *testing.T, path string) registry.Registry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var r registry.Registry
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return r
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
