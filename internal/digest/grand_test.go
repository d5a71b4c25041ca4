package digest

import (
	"os"
	"testing"

	"github.com/tatoflam/weave-digest/internal/fileutil"
)

func TestGrandStore_LoadOrCreate(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	store := NewGrandStore(reg, testLayout(t))

	g, err := store.LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if g.Metadata.Version != FormatVersion {
		t.Fatalf("version=%q, want %q", g.Metadata.Version, FormatVersion)
	}
	for _, tier := range reg.Order() {
		entry, ok := g.MajorDigests[tier]
		if !ok {
			t.Fatalf("tier %q has no slot", tier)
		}
		if entry.Overall != nil {
			t.Fatalf("tier %q slot not null on creation", tier)
		}
	}
}

func TestGrandStore_UpdateOverwritesOneSlot(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	store := NewGrandStore(reg, testLayout(t))

	overall := OverallDigest{
		Timestamp:   "2026-08-20T12:00:00Z",
		SourceFiles: []string{"L00001_a.txt"},
		DigestType:  "weekly",
		Abstract:    "first week",
	}
	if err := store.Update(TierWeekly, "Week 1", overall); err != nil {
		t.Fatalf("Update: %v", err)
	}

	latest, err := store.Latest(TierWeekly)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.Name != "Week 1" || latest.Abstract != "first week" {
		t.Fatalf("latest=%+v", latest)
	}

	// A second finalization replaces only the weekly slot.
	overall.Abstract = "second week"
	if err := store.Update(TierWeekly, "Week 2", overall); err != nil {
		t.Fatalf("Update: %v", err)
	}
	latest, _ = store.Latest(TierWeekly)
	if latest == nil || latest.Name != "Week 2" {
		t.Fatalf("latest=%+v, want Week 2", latest)
	}
	monthly, _ := store.Latest(TierMonthly)
	if monthly != nil {
		t.Fatalf("monthly slot touched: %+v", monthly)
	}

	g, _ := store.LoadOrCreate()
	if g.Metadata.LastUpdated == "" {
		t.Fatalf("last_updated not set")
	}
}

func TestGrandStore_UpdateUnknownTier(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	store := NewGrandStore(reg, testLayout(t))

	err := store.Update("biweekly", "X", OverallDigest{})
	if !IsKind(err, KindConfig) {
		t.Fatalf("err=%v, want config error", err)
	}
}

func TestGrandStore_NeverCreatesSlots(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	layout := testLayout(t)
	store := NewGrandStore(reg, layout)

	// A hand-edited store that lost the weekly slot: update must refuse
	// rather than silently recreate it.
	g := GrandDigest{
		Metadata:     StoreMetadata{Version: FormatVersion},
		MajorDigests: map[string]GrandEntry{TierMonthly: {}},
	}
	if err := fileutil.WriteJSON(layout.GrandPath(), g); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	err := store.Update(TierWeekly, "Week 1", OverallDigest{})
	if !IsKind(err, KindDigest) {
		t.Fatalf("err=%v, want digest error", err)
	}
}

func TestGrandStore_CorruptedStructure(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	layout := testLayout(t)
	store := NewGrandStore(reg, layout)

	if err := os.WriteFile(layout.GrandPath(), []byte(`{"metadata": {}}`), 0o644); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if _, err := store.LoadOrCreate(); !IsKind(err, KindCorruptedData) {
		t.Fatalf("err=%v, want corrupted data error", err)
	}

	if err := os.WriteFile(layout.GrandPath(), []byte(`[1, 2]`), 0o644); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if _, err := store.LoadOrCreate(); !IsKind(err, KindDigest) {
		t.Fatalf("err=%v, want digest error for wrong shape", err)
	}
}
