package digest

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/tatoflam/weave-digest/internal/fileutil"
)

// GrandStore holds the snapshot of the most recently finalized overall
// digest for every tier, so "what is the current state" never requires
// re-reading the archive files.
type GrandStore struct {
	path string
	reg  *Registry
}

func NewGrandStore(reg *Registry, layout Layout) *GrandStore {
	return &GrandStore{path: layout.GrandPath(), reg: reg}
}

func (s *GrandStore) template() GrandDigest {
	g := GrandDigest{
		Metadata:     StoreMetadata{LastUpdated: nowStamp(), Version: FormatVersion},
		MajorDigests: map[string]GrandEntry{},
	}
	for _, tier := range s.reg.Order() {
		g.MajorDigests[tier] = GrandEntry{}
	}
	return g
}

// LoadOrCreate reads the grand digest, creating it with a null slot per
// tier if missing. A file that parses but lacks the major_digests mapping
// is corrupted, not silently repaired.
func (s *GrandStore) LoadOrCreate() (GrandDigest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return GrandDigest{}, wrapErr(KindFileIO, "grand.load", err, "store %s", s.path)
		}
		g := s.template()
		if err := fileutil.WriteJSON(s.path, g); err != nil {
			return GrandDigest{}, wrapErr(KindFileIO, "grand.create", err, "store %s", s.path)
		}
		return g, nil
	}
	var g GrandDigest
	if err := json.Unmarshal(b, &g); err != nil {
		return GrandDigest{}, wrapErr(KindDigest, "grand.load", err, "store %s is not valid JSON", s.path)
	}
	if g.MajorDigests == nil {
		return GrandDigest{}, newErr(KindCorruptedData, "grand.load", "store %s is missing the major_digests section", s.path)
	}
	return g, nil
}

// Update overwrites one tier's snapshot with the just-finalized overall
// digest and bumps last_updated. An unrecognized tier is an error; slots
// are never created on the fly.
func (s *GrandStore) Update(tier, name string, overall OverallDigest) error {
	if _, err := s.reg.Tier(tier); err != nil {
		return err
	}
	g, err := s.LoadOrCreate()
	if err != nil {
		return err
	}
	if _, ok := g.MajorDigests[tier]; !ok {
		return newErr(KindDigest, "grand.update", "store %s has no slot for tier %q", s.path, tier)
	}
	overall.Name = name
	od := overall
	g.MajorDigests[tier] = GrandEntry{Overall: &od}
	g.Metadata.LastUpdated = nowStamp()
	if g.Metadata.Version == "" {
		g.Metadata.Version = FormatVersion
	}
	if err := fileutil.WriteJSON(s.path, g); err != nil {
		return wrapErr(KindFileIO, "grand.update", err, "store %s", s.path)
	}
	return nil
}

// Latest returns the tier's snapshot, or nil if nothing has been finalized
// at that tier yet.
func (s *GrandStore) Latest(tier string) (*OverallDigest, error) {
	if _, err := s.reg.Tier(tier); err != nil {
		return nil, err
	}
	g, err := s.LoadOrCreate()
	if err != nil {
		return nil, err
	}
	entry, ok := g.MajorDigests[tier]
	if !ok {
		return nil, nil
	}
	return entry.Overall, nil
}
