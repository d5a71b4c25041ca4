package digest

import (
	"path/filepath"
	"strings"
)

// Store filenames under the base directory. The .txt extension on the JSON
// stores is historical and load-bearing for existing deployments.
const (
	lastProcessedFile = "last_digest_times.json"
	grandFile         = "GrandDigest.txt"
	shadowFile        = "ShadowGrandDigest.txt"
)

// Layout resolves every persisted path from a base directory plus optional
// per-tier directory overrides.
type Layout struct {
	BaseDir  string
	TierDirs map[string]string
}

// TierDir returns the root directory for a tier, honoring overrides.
func (l Layout) TierDir(tier string) string {
	if dir, ok := l.TierDirs[tier]; ok && dir != "" {
		return dir
	}
	return filepath.Join(l.BaseDir, titleCase(tier))
}

// DigestsDir holds a tier's finalized archives.
func (l Layout) DigestsDir(tier string) string {
	return filepath.Join(l.TierDir(tier), "Digests")
}

// ProvisionalDir holds a tier's provisional working files.
func (l Layout) ProvisionalDir(tier string) string {
	return filepath.Join(l.TierDir(tier), "Provisional")
}

func (l Layout) LastProcessedPath() string {
	return filepath.Join(l.BaseDir, lastProcessedFile)
}

func (l Layout) GrandPath() string {
	return filepath.Join(l.BaseDir, grandFile)
}

func (l Layout) ShadowPath() string {
	return filepath.Join(l.BaseDir, shadowFile)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
