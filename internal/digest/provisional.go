package digest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tatoflam/weave-digest/internal/fileutil"
)

// ProvisionalFile is the working file holding externally submitted
// individual digests for a tier's upcoming archive. Consumed and deleted on
// finalize; deletion is best-effort.
type ProvisionalFile struct {
	Metadata          ArchiveMetadata    `json:"metadata"`
	IndividualDigests []IndividualDigest `json:"individual_digests"`
}

// ProvisionalStore reads and writes per-tier provisional working files.
type ProvisionalStore struct {
	reg    *Registry
	layout Layout
}

func NewProvisionalStore(reg *Registry, layout Layout) *ProvisionalStore {
	return &ProvisionalStore{reg: reg, layout: layout}
}

func (p *ProvisionalStore) path(tier string, number int) (string, error) {
	formatted, err := p.reg.FormatNumber(tier, number)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.layout.ProvisionalDir(tier), fmt.Sprintf("%s_Individual.txt", formatted)), nil
}

// Load returns the provisional entries for the tier's upcoming archive
// number. A missing file is not an error, just no entries.
func (p *ProvisionalStore) Load(tier string, number int) ([]IndividualDigest, error) {
	path, err := p.path(tier, number)
	if err != nil {
		return nil, err
	}
	if !fileutil.Exists(path) {
		return nil, nil
	}
	var pf ProvisionalFile
	if err := fileutil.ReadJSON(path, &pf); err != nil {
		return nil, wrapErr(KindCorruptedData, "provisional.load", err, "file %s", path)
	}
	return pf.IndividualDigests, nil
}

// Merge folds entries into the tier's provisional working file for the
// given archive number, deduplicated by source file, last write wins.
func (p *ProvisionalStore) Merge(tier string, number int, entries []IndividualDigest) error {
	if len(entries) == 0 {
		return newErr(KindValidation, "provisional.merge", "no individual digests supplied for tier %q", tier)
	}
	for _, e := range entries {
		if e.SourceFile == "" {
			return newErr(KindValidation, "provisional.merge", "individual digest without source_file for tier %q", tier)
		}
	}
	path, err := p.path(tier, number)
	if err != nil {
		return err
	}
	pf := ProvisionalFile{
		Metadata: ArchiveMetadata{Tier: tier, Number: number, Timestamp: nowStamp(), FormatVersion: FormatVersion},
	}
	if fileutil.Exists(path) {
		if err := fileutil.ReadJSON(path, &pf); err != nil {
			return wrapErr(KindCorruptedData, "provisional.merge", err, "file %s", path)
		}
	}
	pf.IndividualDigests = MergeIndividualDigests(pf.IndividualDigests, entries)
	pf.Metadata.Timestamp = nowStamp()
	if err := fileutil.WriteJSON(path, pf); err != nil {
		return wrapErr(KindFileIO, "provisional.merge", err, "write %s", path)
	}
	return nil
}

// Cleanup deletes a consumed provisional file. Failure is logged, never
// propagated; a leftover working file is harmless.
func (p *ProvisionalStore) Cleanup(tier string, number int) {
	path, err := p.path(tier, number)
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("could not delete consumed provisional file",
			zap.String("tier", tier), zap.String("path", path), zap.Error(err))
	}
}
