package digest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/tatoflam/weave-digest/internal/fileutil"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func testLayout(t *testing.T) Layout {
	t.Helper()
	return Layout{BaseDir: t.TempDir()}
}

// writeArchive drops a plausible finalized digest into a tier's Digests
// directory and returns its filename.
func writeArchive(t *testing.T, reg *Registry, layout Layout, tier string, n int, title string) string {
	t.Helper()
	formatted, err := reg.FormatNumber(tier, n)
	if err != nil {
		t.Fatalf("FormatNumber(%s, %d): %v", tier, n, err)
	}
	name := fmt.Sprintf("%s_%s.txt", formatted, title)
	rd := RegularDigest{
		Metadata: ArchiveMetadata{Tier: tier, Number: n, Timestamp: "2026-08-20T12:00:00Z", FormatVersion: FormatVersion},
		Overall: OverallDigest{
			Name:        title,
			Timestamp:   "2026-08-20T12:00:00Z",
			SourceFiles: []string{},
			DigestType:  tier,
			Keywords:    []string{"keyword-" + formatted},
			Abstract:    "abstract for " + name,
			Impression:  "impression for " + name,
		},
		IndividualDigests: []IndividualDigest{},
	}
	if err := fileutil.WriteJSON(filepath.Join(layout.DigestsDir(tier), name), rd); err != nil {
		t.Fatalf("write archive %s: %v", name, err)
	}
	return name
}
