package digest

import (
	"github.com/tatoflam/weave-digest/internal/fileutil"
)

// ShadowStore holds every tier's in-progress accumulator in one JSON
// document keyed by tier name. Exactly one shadow exists per tier; the
// store is re-read from disk on every operation so hand edits between runs
// are honored.
type ShadowStore struct {
	path string
	reg  *Registry
}

func NewShadowStore(reg *Registry, layout Layout) *ShadowStore {
	return &ShadowStore{path: layout.ShadowPath(), reg: reg}
}

// ShadowUpdate carries the externally supplied tier-level prose for an
// append. The engine passes these through verbatim; nil leaves the current
// values alone.
type ShadowUpdate struct {
	DigestType string
	Keywords   []string
	Abstract   string
	Impression string
}

// LoadOrInitialize reads the shadow store, creating it with every tier
// pre-seeded to the empty placeholder state if it does not exist.
// Idempotent under repeated calls.
func (s *ShadowStore) LoadOrInitialize() (ShadowStoreDoc, error) {
	var doc ShadowStoreDoc
	err := fileutil.LoadOrInit(s.path, &doc, func() any {
		tpl := ShadowStoreDoc{
			Metadata:      StoreMetadata{LastUpdated: nowStamp(), Version: FormatVersion},
			LatestDigests: map[string]ShadowEntry{},
		}
		for _, tier := range s.reg.Order() {
			tpl.LatestDigests[tier] = ShadowEntry{Overall: EmptyShadow()}
		}
		return tpl
	})
	if err != nil {
		return ShadowStoreDoc{}, wrapErr(KindFileIO, "shadow.load", err, "store %s", s.path)
	}
	if doc.LatestDigests == nil {
		return ShadowStoreDoc{}, newErr(KindCorruptedData, "shadow.load", "store %s is missing the latest_digests section", s.path)
	}
	for _, tier := range s.reg.Order() {
		if _, ok := doc.LatestDigests[tier]; !ok {
			doc.LatestDigests[tier] = ShadowEntry{Overall: EmptyShadow()}
		}
	}
	return doc, nil
}

// Get returns the tier's current shadow.
func (s *ShadowStore) Get(tier string) (ShadowDigest, error) {
	if _, err := s.reg.Tier(tier); err != nil {
		return ShadowDigest{}, err
	}
	doc, err := s.LoadOrInitialize()
	if err != nil {
		return ShadowDigest{}, err
	}
	return doc.LatestDigests[tier].Overall, nil
}

// GetNonEmpty returns the shadow only if it has accumulated source files;
// nil signals nothing to finalize.
func (s *ShadowStore) GetNonEmpty(tier string) (*ShadowDigest, error) {
	sd, err := s.Get(tier)
	if err != nil {
		return nil, err
	}
	if sd.Empty() {
		return nil, nil
	}
	return &sd, nil
}

// Append merges newFiles into the tier's source file list, preserving
// arrival order and skipping names already present, merges digests by the
// last-write-wins rule, and applies any supplied tier-level prose. The
// updated store is persisted atomically.
func (s *ShadowStore) Append(tier string, newFiles []string, digests []IndividualDigest, update *ShadowUpdate) error {
	if _, err := s.reg.Tier(tier); err != nil {
		return err
	}
	doc, err := s.LoadOrInitialize()
	if err != nil {
		return err
	}

	sd := doc.LatestDigests[tier].Overall
	seen := make(map[string]struct{}, len(sd.SourceFiles))
	for _, f := range sd.SourceFiles {
		seen[f] = struct{}{}
	}
	for _, f := range newFiles {
		if f == "" {
			return newErr(KindValidation, "shadow.append", "empty source filename for tier %q", tier)
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		sd.SourceFiles = append(sd.SourceFiles, f)
	}
	sd.IndividualDigests = MergeIndividualDigests(sd.IndividualDigests, digests)
	if update != nil {
		if update.DigestType != "" {
			sd.DigestType = update.DigestType
		}
		if update.Keywords != nil {
			sd.Keywords = update.Keywords
		}
		if update.Abstract != "" {
			sd.Abstract = update.Abstract
		}
		if update.Impression != "" {
			sd.Impression = update.Impression
		}
	}

	doc.LatestDigests[tier] = ShadowEntry{Overall: sd}
	doc.Metadata.LastUpdated = nowStamp()
	if err := fileutil.WriteJSON(s.path, doc); err != nil {
		return wrapErr(KindFileIO, "shadow.append", err, "persist store %s", s.path)
	}
	return nil
}

// Clear resets the tier's shadow to the empty placeholder state. Called
// after a successful finalization.
func (s *ShadowStore) Clear(tier string) error {
	if _, err := s.reg.Tier(tier); err != nil {
		return err
	}
	doc, err := s.LoadOrInitialize()
	if err != nil {
		return err
	}
	doc.LatestDigests[tier] = ShadowEntry{Overall: EmptyShadow()}
	doc.Metadata.LastUpdated = nowStamp()
	if err := fileutil.WriteJSON(s.path, doc); err != nil {
		return wrapErr(KindFileIO, "shadow.clear", err, "persist store %s", s.path)
	}
	return nil
}
