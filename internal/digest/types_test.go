package digest

import (
	"testing"
)

func TestMergeIndividualDigests_LastWriteWins(t *testing.T) {
	t.Parallel()

	existing := []IndividualDigest{
		{SourceFile: "A", Abstract: "first"},
	}
	additions := []IndividualDigest{
		{SourceFile: "A", Abstract: "second"},
		{SourceFile: "B", Abstract: "third"},
	}

	out := MergeIndividualDigests(existing, additions)
	if len(out) != 2 {
		t.Fatalf("len=%d, want 2", len(out))
	}
	if out[0].SourceFile != "A" || out[0].Abstract != "second" {
		t.Fatalf("out[0]=%+v, want A overwritten in place", out[0])
	}
	if out[1].SourceFile != "B" || out[1].Abstract != "third" {
		t.Fatalf("out[1]=%+v, want B appended", out[1])
	}
}

func TestMergeIndividualDigests_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	out := MergeIndividualDigests(nil, []IndividualDigest{
		{SourceFile: "C"},
		{SourceFile: "A"},
		{SourceFile: "B"},
		{SourceFile: "A", Abstract: "updated"},
	})
	want := []string{"C", "A", "B"}
	if len(out) != len(want) {
		t.Fatalf("len=%d, want %d", len(out), len(want))
	}
	for i, name := range want {
		if out[i].SourceFile != name {
			t.Fatalf("out[%d]=%q, want %q (no re-sorting)", i, out[i].SourceFile, name)
		}
	}
	if out[1].Abstract != "updated" {
		t.Fatalf("A not overwritten: %+v", out[1])
	}
}

func TestMergeIndividualDigests_DropsEmptyKeys(t *testing.T) {
	t.Parallel()

	out := MergeIndividualDigests(nil, []IndividualDigest{
		{SourceFile: ""},
		{SourceFile: "  "},
		{SourceFile: " A "},
	})
	if len(out) != 1 || out[0].SourceFile != "A" {
		t.Fatalf("out=%+v, want single trimmed A entry", out)
	}
}

func TestEmptyShadow(t *testing.T) {
	t.Parallel()

	s := EmptyShadow()
	if !s.Empty() {
		t.Fatalf("EmptyShadow is not empty: %+v", s)
	}
	if s.Abstract != PlaceholderAbstract || s.Impression != PlaceholderImpression {
		t.Fatalf("placeholder text missing: %+v", s)
	}
	if s.SourceFiles == nil || s.IndividualDigests == nil {
		t.Fatalf("collections must be present (not null) in the persisted form")
	}
}
