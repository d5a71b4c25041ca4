package digest

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDetector(t *testing.T) (*Detector, *Registry, Layout, *LastProcessedStore) {
	t.Helper()
	reg := testRegistry(t)
	layout := testLayout(t)
	last := NewLastProcessedStore(reg, layout)
	return NewDetector(reg, layout, last), reg, layout, last
}

func TestDetector_MissingSourceDir(t *testing.T) {
	t.Parallel()
	d, _, _, _ := newTestDetector(t)

	files, err := d.FindNewFiles(TierWeekly)
	if err != nil {
		t.Fatalf("FindNewFiles: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files=%v, want none for missing source dir", files)
	}
}

func TestDetector_AscendingAndAboveWatermark(t *testing.T) {
	t.Parallel()
	d, reg, layout, last := newTestDetector(t)

	writeArchive(t, reg, layout, TierLoop, 184, "c")
	writeArchive(t, reg, layout, TierLoop, 182, "a")
	writeArchive(t, reg, layout, TierLoop, 186, "e")
	writeArchive(t, reg, layout, TierLoop, 183, "b")

	if err := last.UpdateDirect(TierWeekly, 183); err != nil {
		t.Fatalf("UpdateDirect: %v", err)
	}

	files, err := d.FindNewFiles(TierWeekly)
	if err != nil {
		t.Fatalf("FindNewFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files=%v, want the two archives above 183", files)
	}
	if files[0].Number != 184 || files[1].Number != 186 {
		t.Fatalf("order=%d,%d, want 184,186", files[0].Number, files[1].Number)
	}
}

func TestDetector_Idempotent(t *testing.T) {
	t.Parallel()
	d, reg, layout, _ := newTestDetector(t)

	writeArchive(t, reg, layout, TierLoop, 1, "a")
	writeArchive(t, reg, layout, TierLoop, 2, "b")

	first, err := d.FindNewFiles(TierWeekly)
	if err != nil {
		t.Fatalf("FindNewFiles: %v", err)
	}
	second, err := d.FindNewFiles(TierWeekly)
	if err != nil {
		t.Fatalf("FindNewFiles again: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("detection not idempotent: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("differing results: %v vs %v", first, second)
		}
	}
}

func TestDetector_SkipsUnparseableAndHidden(t *testing.T) {
	t.Parallel()
	d, reg, layout, _ := newTestDetector(t)

	writeArchive(t, reg, layout, TierLoop, 7, "good")
	dir := layout.DigestsDir(TierLoop)
	for _, name := range []string{"README.md", "L00x_bad.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files, err := d.FindNewFiles(TierWeekly)
	if err != nil {
		t.Fatalf("FindNewFiles: %v", err)
	}
	if len(files) != 1 || files[0].Number != 7 {
		t.Fatalf("files=%v, want only the parseable archive", files)
	}
}

func TestDetector_SourcelessTier(t *testing.T) {
	t.Parallel()
	d, _, _, _ := newTestDetector(t)

	if _, err := d.FindNewFiles(TierLoop); !IsKind(err, KindDigest) {
		t.Fatalf("err=%v, want digest error for sourceless tier", err)
	}
	if _, err := d.FindNewFiles("biweekly"); !IsKind(err, KindConfig) {
		t.Fatalf("err=%v, want config error", err)
	}
}
