package digest

import (
	"strings"
	"time"
)

// FormatVersion is stamped into every archive and store metadata block.
const FormatVersion = "1.0"

// Placeholder text carried by a freshly cleared shadow until real digest
// prose is appended.
const (
	PlaceholderAbstract   = "(no digest yet)"
	PlaceholderImpression = "(no digest yet)"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

func nowStamp() string {
	return nowFunc().UTC().Format(time.RFC3339)
}

// IndividualDigest is the per-source-file digest entry. Entries are either
// submitted externally ("provisional") or auto-derived from the source
// file's own overall digest. Dedup key is SourceFile, last write wins.
type IndividualDigest struct {
	SourceFile string   `json:"source_file"`
	Timestamp  string   `json:"timestamp"`
	DigestType string   `json:"digest_type"`
	Keywords   []string `json:"keywords,omitempty"`
	Abstract   string   `json:"abstract"`
	Impression string   `json:"impression"`
}

// OverallDigest is the tier-level summary of a set of source files. The
// prose fields are opaque payload supplied by the caller; this engine never
// synthesizes text.
type OverallDigest struct {
	Name        string   `json:"name"`
	Timestamp   string   `json:"timestamp"`
	SourceFiles []string `json:"source_files"`
	DigestType  string   `json:"digest_type"`
	Keywords    []string `json:"keywords,omitempty"`
	Abstract    string   `json:"abstract"`
	Impression  string   `json:"impression"`
}

// ShadowDigest is the in-progress accumulator for one tier: the running,
// not-yet-finalized summary built incrementally as source files appear.
type ShadowDigest struct {
	SourceFiles       []string           `json:"source_files"`
	DigestType        string             `json:"digest_type"`
	Keywords          []string           `json:"keywords"`
	Abstract          string             `json:"abstract"`
	Impression        string             `json:"impression"`
	IndividualDigests []IndividualDigest `json:"individual_digests"`
}

// Empty reports whether the shadow holds no accumulated source files.
func (s ShadowDigest) Empty() bool { return len(s.SourceFiles) == 0 }

// ArchiveMetadata identifies one finalized digest.
type ArchiveMetadata struct {
	Tier          string `json:"tier"`
	Number        int    `json:"number"`
	Timestamp     string `json:"timestamp"`
	FormatVersion string `json:"format_version"`
}

// RegularDigest is the immutable archive record written once per
// finalization. Never mutated after creation.
type RegularDigest struct {
	Metadata          ArchiveMetadata    `json:"metadata"`
	Overall           OverallDigest      `json:"overall_digest"`
	IndividualDigests []IndividualDigest `json:"individual_digests"`
}

// LastProcessedRecord is the per-tier consume watermark.
type LastProcessedRecord struct {
	Timestamp     string `json:"timestamp"`
	LastProcessed *int   `json:"last_processed"`
}

// StoreMetadata heads the shadow and grand stores.
type StoreMetadata struct {
	LastUpdated string `json:"last_updated"`
	Version     string `json:"version"`
}

// GrandEntry is one tier's slot in the grand digest.
type GrandEntry struct {
	Overall *OverallDigest `json:"overall_digest"`
}

// GrandDigest mirrors the single latest finalized summary for every tier.
type GrandDigest struct {
	Metadata     StoreMetadata         `json:"metadata"`
	MajorDigests map[string]GrandEntry `json:"major_digests"`
}

// ShadowEntry is one tier's slot in the shadow store.
type ShadowEntry struct {
	Overall ShadowDigest `json:"overall_digest"`
}

// ShadowStoreDoc is the persisted shadow store, keyed by tier name.
type ShadowStoreDoc struct {
	Metadata      StoreMetadata          `json:"metadata"`
	LatestDigests map[string]ShadowEntry `json:"latest_digests"`
}

// EmptyShadow is the placeholder state a shadow is reset to after
// finalization.
func EmptyShadow() ShadowDigest {
	return ShadowDigest{
		SourceFiles:       []string{},
		Keywords:          []string{},
		Abstract:          PlaceholderAbstract,
		Impression:        PlaceholderImpression,
		IndividualDigests: []IndividualDigest{},
	}
}

// MergeIndividualDigests merges additions into existing, keyed by
// SourceFile. A later entry for the same key overwrites the earlier one in
// place; new keys append in input order. Entries with an empty SourceFile
// are dropped.
func MergeIndividualDigests(existing, additions []IndividualDigest) []IndividualDigest {
	out := append([]IndividualDigest(nil), existing...)
	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].SourceFile] = i
	}
	for _, a := range additions {
		key := strings.TrimSpace(a.SourceFile)
		if key == "" {
			continue
		}
		a.SourceFile = key
		if i, ok := index[key]; ok {
			out[i] = a
			continue
		}
		index[key] = len(out)
		out = append(out, a)
	}
	return out
}
