package digest

import (
	"go.uber.org/zap"

	"github.com/tatoflam/weave-digest/internal/fileutil"
)

// LastProcessedStore is the durable per-tier record of the highest source
// sequence number each tier has consumed. It makes detection idempotent and
// resumable after interruption.
type LastProcessedStore struct {
	path string
	reg  *Registry
}

func NewLastProcessedStore(reg *Registry, layout Layout) *LastProcessedStore {
	return &LastProcessedStore{path: layout.LastProcessedPath(), reg: reg}
}

// LoadOrCreate reads the store, creating it with every tier initialized to
// an empty record if it does not exist. Tiers added to the hierarchy after
// the store was created are filled in on read.
func (s *LastProcessedStore) LoadOrCreate() (map[string]LastProcessedRecord, error) {
	records := map[string]LastProcessedRecord{}
	err := fileutil.LoadOrInit(s.path, &records, func() any {
		tpl := map[string]LastProcessedRecord{}
		for _, tier := range s.reg.Order() {
			tpl[tier] = LastProcessedRecord{}
		}
		return tpl
	})
	if err != nil {
		return nil, wrapErr(KindFileIO, "last-processed.load", err, "store %s", s.path)
	}
	for _, tier := range s.reg.Order() {
		if _, ok := records[tier]; !ok {
			records[tier] = LastProcessedRecord{}
		}
	}
	return records, nil
}

// Watermark returns the tier's last-processed sequence number, or nil if
// the tier has never consumed anything.
func (s *LastProcessedStore) Watermark(tier string) (*int, error) {
	if _, err := s.reg.Tier(tier); err != nil {
		return nil, err
	}
	records, err := s.LoadOrCreate()
	if err != nil {
		return nil, err
	}
	return records[tier].LastProcessed, nil
}

// Save records the highest sequence number among consumedFiles, which carry
// the numbering of the tier's source (the record stores the highest source
// file identifier actually consumed, not the consuming tier's own
// numbering). The stored value never decreases. Filenames that fail to
// parse are logged and skipped.
func (s *LastProcessedStore) Save(tier string, consumedFiles []string) error {
	meta, err := s.reg.Tier(tier)
	if err != nil {
		return err
	}
	if len(consumedFiles) == 0 {
		return nil
	}
	source := meta.Source
	if source == "" {
		return newErr(KindDigest, "last-processed.save", "tier %q has no source tier", tier)
	}

	max := -1
	for _, name := range consumedFiles {
		n, err := s.reg.ParseFileNumber(source, name)
		if err != nil {
			zap.L().Warn("skipping unparseable consumed file",
				zap.String("tier", tier), zap.String("file", name))
			continue
		}
		if n > max {
			max = n
		}
	}
	if max < 0 {
		return newErr(KindValidation, "last-processed.save", "no parseable sequence number in %d consumed files", len(consumedFiles))
	}
	return s.UpdateDirect(tier, max)
}

// UpdateDirect sets the tier's watermark to number without file-based
// extraction. Used for external-trigger-only paths (loop completion) and
// administrative correction; still refuses to rewind.
func (s *LastProcessedStore) UpdateDirect(tier string, number int) error {
	if _, err := s.reg.Tier(tier); err != nil {
		return err
	}
	records, err := s.LoadOrCreate()
	if err != nil {
		return err
	}
	rec := records[tier]
	if rec.LastProcessed != nil && *rec.LastProcessed >= number {
		// Monotonic: re-consuming an already recorded file is a no-op.
		return nil
	}
	n := number
	records[tier] = LastProcessedRecord{Timestamp: nowStamp(), LastProcessed: &n}
	if err := fileutil.WriteJSON(s.path, records); err != nil {
		return wrapErr(KindFileIO, "last-processed.save", err, "store %s", s.path)
	}
	return nil
}
