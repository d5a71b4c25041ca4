package digest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// SourceFile is one detected, not-yet-consumed archive of a tier's source.
type SourceFile struct {
	Name   string
	Path   string
	Number int
}

// Detector finds source files newer than a tier's last-processed watermark.
type Detector struct {
	reg    *Registry
	layout Layout
	last   *LastProcessedStore
}

func NewDetector(reg *Registry, layout Layout, last *LastProcessedStore) *Detector {
	return &Detector{reg: reg, layout: layout, last: last}
}

// FindNewFiles scans the source tier's digest directory and returns the
// files whose embedded sequence number is strictly greater than the tier's
// watermark, ascending by number. A missing source directory yields an
// empty result; a filename that fails to parse is logged and skipped so one
// stray file never poisons the scan.
func (d *Detector) FindNewFiles(tier string) ([]SourceFile, error) {
	meta, err := d.reg.Tier(tier)
	if err != nil {
		return nil, err
	}
	if meta.Source == "" {
		return nil, newErr(KindDigest, "detector", "tier %q has no source tier", tier)
	}

	watermark, err := d.last.Watermark(tier)
	if err != nil {
		return nil, err
	}

	dir := d.layout.DigestsDir(meta.Source)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, wrapErr(KindFileIO, "detector", err, "scan %s", dir)
	}

	var found []SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		n, err := d.reg.ParseFileNumber(meta.Source, name)
		if err != nil {
			zap.L().Warn("skipping file with unparseable sequence number",
				zap.String("tier", tier), zap.String("file", name))
			continue
		}
		if watermark != nil && n <= *watermark {
			continue
		}
		found = append(found, SourceFile{Name: name, Path: filepath.Join(dir, name), Number: n})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Number < found[j].Number })
	return found, nil
}
