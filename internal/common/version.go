package common

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Set with -ldflags "-X github.com/bobmcallan/salesdash/internal/common.Version=...".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

func GetVersion() string { return Version }
func GetBuild() string { return Build }
func GetGitCommit() string { return GitCommit }

// GetFullVersion renders "1.2.0 (build: ..., commit: ...)".
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// LoadVersionFromFile fills unset build info from a .version file beside
// the executable. A missing file is not an error.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	loadVersionFile(filepath.Join(filepath.Dir(exe), ".version"))
}

// versionFields maps .version keys to the variable they fill and the
// placeholder that marks it unset.
var versionFields = map[string]struct {
	target *string
	unset  string
}{
	"version": {&Version, "dev"},
	"build":   {&Build, "unknown"},
	"commit":  {&GitCommit, "unknown"},
}

// loadVersionFile reads "key: value" lines. Values set by ldflags win.
func loadVersionFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), ":")
		key = strings.TrimSpace(key)
		if !ok || strings.HasPrefix(key, "#") {
			continue
		}
		field, known := versionFields[strings.ToLower(key)]
		if known && *field.target == field.unset {
			*field.target = strings.TrimSpace(val)
		}
	}
}
