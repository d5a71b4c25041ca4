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

// State is a tier's position in the accumulate/finalize cycle.
type State string

const (
	// StateIdle means the tier's shadow is empty.
	StateIdle State = "IDLE"
	// StateAccumulating means the shadow holds source files but is below
	// the tier's threshold.
	StateAccumulating State = "ACCUMULATING"
	// StateReady means the shadow has reached the threshold; the tier can
	// be finalized as soon as the caller supplies a title. Nothing happens
	// automatically at this point.
	StateReady State = "READY"
)

// Processor is the cascade state machine. It owns the ingest path (detect
// new source files, fold them into a tier's shadow) and the finalize path
// (freeze a shadow into a numbered archive and pre-load the next tier's
// shadow with the result).
type Processor struct {
	reg      *Registry
	layout   Layout
	shadows  *ShadowStore
	last     *LastProcessedStore
	grand    *GrandStore
	prov     *ProvisionalStore
	detector *Detector
}

func NewProcessor(reg *Registry, layout Layout) *Processor {
	last := NewLastProcessedStore(reg, layout)
	return &Processor{
		reg:      reg,
		layout:   layout,
		shadows:  NewShadowStore(reg, layout),
		last:     last,
		grand:    NewGrandStore(reg, layout),
		prov:     NewProvisionalStore(reg, layout),
		detector: NewDetector(reg, layout, last),
	}
}

// Registry returns the tier registry the processor was built with.
func (p *Processor) Registry() *Registry { return p.reg }

// Shadows exposes the shadow store for direct submissions.
func (p *Processor) Shadows() *ShadowStore { return p.shadows }

// LastProcessed exposes the watermark store for administrative overrides.
func (p *Processor) LastProcessed() *LastProcessedStore { return p.last }

// Grand exposes the grand digest snapshot store.
func (p *Processor) Grand() *GrandStore { return p.grand }

// Provisional exposes the provisional working-file store.
func (p *Processor) Provisional() *ProvisionalStore { return p.prov }

// TierStatus is a point-in-time view of one tier.
type TierStatus struct {
	Tier      string
	State     State
	Count     int
	Threshold int
	Latest    *OverallDigest
}

// Status reports a tier's shadow count, threshold state, and latest
// finalized digest.
func (p *Processor) Status(tier string) (*TierStatus, error) {
	meta, err := p.reg.Tier(tier)
	if err != nil {
		return nil, err
	}
	sd, err := p.shadows.Get(tier)
	if err != nil {
		return nil, err
	}
	latest, err := p.grand.Latest(tier)
	if err != nil {
		return nil, err
	}
	return &TierStatus{
		Tier:      tier,
		State:     stateFor(len(sd.SourceFiles), meta.Threshold),
		Count:     len(sd.SourceFiles),
		Threshold: meta.Threshold,
		Latest:    latest,
	}, nil
}

func stateFor(count, threshold int) State {
	switch {
	case count == 0:
		return StateIdle
	case threshold > 0 && count >= threshold:
		return StateReady
	default:
		return StateAccumulating
	}
}

// IngestResult reports what an ingest pass consumed and where it left the
// tier.
type IngestResult struct {
	Tier      string
	NewFiles  []string
	Count     int
	Threshold int
	State     State
}

// Ingest consumes every source file newer than the tier's watermark:
// derives an individual digest per file (a provisional entry for the same
// source file wins over the auto-derived one), appends them to the tier's
// shadow along with any caller-supplied tier-level prose, and advances the
// watermark. With no new files it reports the tier's current state and
// touches nothing.
func (p *Processor) Ingest(tier string, update *ShadowUpdate) (*IngestResult, error) {
	meta, err := p.reg.Tier(tier)
	if err != nil {
		return nil, err
	}
	if meta.Source == "" {
		return nil, newErr(KindDigest, "ingest", "tier %q has no source tier to consume", tier)
	}

	files, err := p.detector.FindNewFiles(tier)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Tier: tier, Threshold: meta.Threshold}
	if len(files) == 0 {
		sd, err := p.shadows.Get(tier)
		if err != nil {
			return nil, err
		}
		result.Count = len(sd.SourceFiles)
		result.State = stateFor(result.Count, meta.Threshold)
		return result, nil
	}

	derived := make([]IndividualDigest, 0, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
		ind, err := deriveIndividual(f)
		if err != nil {
			zap.L().Warn("source file has no readable overall digest",
				zap.String("tier", tier), zap.String("file", f.Name), zap.Error(err))
			continue
		}
		derived = append(derived, ind)
	}

	number, err := p.nextNumber(tier)
	if err != nil {
		return nil, err
	}
	provisional, err := p.prov.Load(tier, number)
	if err != nil {
		return nil, err
	}
	// Provisional entries are merged last so an explicit submission
	// overrides the auto-derived entry for the same source file.
	digests := MergeIndividualDigests(derived, provisional)

	if err := p.shadows.Append(tier, names, digests, update); err != nil {
		return nil, err
	}
	if err := p.last.Save(tier, names); err != nil {
		return nil, err
	}

	sd, err := p.shadows.Get(tier)
	if err != nil {
		return nil, err
	}
	result.NewFiles = names
	result.Count = len(sd.SourceFiles)
	result.State = stateFor(result.Count, meta.Threshold)
	return result, nil
}

// deriveIndividual builds the fallback individual digest from a source
// archive's own overall digest.
func deriveIndividual(f SourceFile) (IndividualDigest, error) {
	var rd RegularDigest
	if err := fileutil.ReadJSON(f.Path, &rd); err != nil {
		return IndividualDigest{}, err
	}
	return IndividualDigest{
		SourceFile: f.Name,
		Timestamp:  rd.Overall.Timestamp,
		DigestType: rd.Overall.DigestType,
		Keywords:   rd.Overall.Keywords,
		Abstract:   rd.Overall.Abstract,
		Impression: rd.Overall.Impression,
	}, nil
}

// FinalizeResult reports a completed finalization and, when the tier
// cascades, where the cascade left the next tier. NextState == StateReady
// is the threshold-crossing notification; the next tier is never finalized
// automatically.
type FinalizeResult struct {
	Tier        string
	Number      int
	ArchiveFile string
	ArchivePath string
	Cascaded    bool
	NextTier    string
	NextState   State
	NextCount   int
}

// Finalize freezes the tier's shadow into an immutable numbered archive.
// The caller supplies the digest title; a tier below its threshold refuses.
// On success the grand snapshot and watermark are updated, the shadow is
// cleared, and if the tier cascades, one individual digest representing the
// new archive is appended to the next tier's shadow. If writing the archive
// or updating the grand snapshot fails, the shadow is left untouched so no
// accumulated state is lost.
func (p *Processor) Finalize(tier, title string) (*FinalizeResult, error) {
	meta, err := p.reg.Tier(tier)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, newErr(KindValidation, "finalize", "a digest title is required for tier %q", tier)
	}

	shadow, err := p.shadows.GetNonEmpty(tier)
	if err != nil {
		return nil, err
	}
	if shadow == nil {
		return nil, newErr(KindDigest, "finalize", "tier %q has nothing to finalize", tier)
	}
	if meta.Threshold > 0 && len(shadow.SourceFiles) < meta.Threshold {
		return nil, newErr(KindDigest, "finalize", "tier %q has %d of %d source files", tier, len(shadow.SourceFiles), meta.Threshold)
	}

	number, err := p.nextNumber(tier)
	if err != nil {
		return nil, err
	}
	formatted, err := p.reg.FormatNumber(tier, number)
	if err != nil {
		return nil, err
	}

	digestType := shadow.DigestType
	if digestType == "" {
		digestType = tier
	}
	archiveFile := fmt.Sprintf("%s_%s.txt", formatted, fileutil.SanitizeTitle(title))
	archivePath := filepath.Join(p.layout.DigestsDir(tier), archiveFile)
	rd := RegularDigest{
		Metadata: ArchiveMetadata{Tier: tier, Number: number, Timestamp: nowStamp(), FormatVersion: FormatVersion},
		Overall: OverallDigest{
			Name:        title,
			Timestamp:   nowStamp(),
			SourceFiles: shadow.SourceFiles,
			DigestType:  digestType,
			Keywords:    shadow.Keywords,
			Abstract:    shadow.Abstract,
			Impression:  shadow.Impression,
		},
		IndividualDigests: shadow.IndividualDigests,
	}

	// Failure anywhere before Clear leaves the shadow holding its
	// pre-finalization content.
	if err := fileutil.WriteJSON(archivePath, rd); err != nil {
		return nil, wrapErr(KindDigest, "finalize", err, "write archive %s", archivePath)
	}
	if err := p.grand.Update(tier, title, rd.Overall); err != nil {
		return nil, wrapErr(KindDigest, "finalize", err, "update grand digest for tier %q", tier)
	}
	if meta.Source != "" {
		if err := p.last.Save(tier, shadow.SourceFiles); err != nil {
			return nil, wrapErr(KindDigest, "finalize", err, "update last-processed for tier %q", tier)
		}
	}
	if err := p.shadows.Clear(tier); err != nil {
		return nil, wrapErr(KindDigest, "finalize", err, "clear shadow for tier %q", tier)
	}
	p.prov.Cleanup(tier, number)

	result := &FinalizeResult{Tier: tier, Number: number, ArchiveFile: archiveFile, ArchivePath: archivePath}
	if !p.reg.ShouldCascade(tier) {
		return result, nil
	}

	// Cascade: pre-load the next tier's accumulator with this archive and
	// record that the next tier has consumed it. The next tier is only ever
	// finalized by its own explicit call.
	ind := IndividualDigest{
		SourceFile: archiveFile,
		Timestamp:  rd.Overall.Timestamp,
		DigestType: digestType,
		Keywords:   rd.Overall.Keywords,
		Abstract:   rd.Overall.Abstract,
		Impression: rd.Overall.Impression,
	}
	if err := p.shadows.Append(meta.Next, []string{archiveFile}, []IndividualDigest{ind}, nil); err != nil {
		return nil, wrapErr(KindDigest, "finalize", err, "cascade %q into %q", tier, meta.Next)
	}
	if err := p.last.Save(meta.Next, []string{archiveFile}); err != nil {
		return nil, wrapErr(KindDigest, "finalize", err, "record cascade watermark for %q", meta.Next)
	}

	nextMeta, err := p.reg.Tier(meta.Next)
	if err != nil {
		return nil, err
	}
	nextShadow, err := p.shadows.Get(meta.Next)
	if err != nil {
		return nil, err
	}
	result.Cascaded = true
	result.NextTier = meta.Next
	result.NextCount = len(nextShadow.SourceFiles)
	result.NextState = stateFor(result.NextCount, nextMeta.Threshold)
	return result, nil
}

// UpcomingNumber returns the sequence number the tier's next finalization
// will use. Provisional submissions for a tier target this number.
func (p *Processor) UpcomingNumber(tier string) (int, error) {
	if _, err := p.reg.Tier(tier); err != nil {
		return 0, err
	}
	return p.nextNumber(tier)
}

// nextNumber returns one past the highest archive number already present in
// the tier's digest directory, deriving the sequence from disk so the
// numbering survives hand edits to the stores.
func (p *Processor) nextNumber(tier string) (int, error) {
	dir := p.layout.DigestsDir(tier)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 1, nil
		}
		return 0, wrapErr(KindFileIO, "finalize", err, "scan %s", dir)
	}
	max := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		n, err := p.reg.ParseFileNumber(tier, entry.Name())
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}
