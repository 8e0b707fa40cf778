package diag

import (
	"testing"

	"jsscope/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(3)
	bag.Add(New(SevWarning, LntUnusedBinding, source.Span{File: 0, Start: 20, End: 21}, "b"))
	bag.Add(New(SevInfo, LntUndeclaredGlobal, source.Span{File: 0, Start: 4, End: 5}, "a"))
	bag.Add(New(SevError, ParSyntaxError, source.Span{File: 0, Start: 4, End: 5}, "c"))
	if bag.Add(New(SevError, ParSyntaxError, source.Span{}, "dropped")) {
		t.Fatalf("expected bag to reject diagnostics past its limit")
	}

	bag.Sort()
	got := []Code{bag.Items()[0].Code, bag.Items()[1].Code, bag.Items()[2].Code}
	want := []Code{ParSyntaxError, LntUndeclaredGlobal, LntUnusedBinding}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("expected errors and warnings")
	}
}

func TestBagMergeAndFilter(t *testing.T) {
	sp := source.Span{Start: 1, End: 2}
	a := NewBag(1)
	a.Add(New(SevWarning, LntWithStatement, sp, "one"))
	b := NewBag(2)
	b.Add(New(SevInfo, LntUndeclaredGlobal, sp, "two"))
	b.Add(New(SevError, ParSyntaxError, sp, "three"))

	a.Merge(b)
	if a.Len() != 3 || a.Cap() < 3 {
		t.Fatalf("merge must grow the limit: len=%d cap=%d", a.Len(), a.Cap())
	}
	a.Filter(func(d Diagnostic) bool { return d.Severity >= SevWarning })
	if a.Len() != 2 || a.Items()[0].Message != "one" || a.Items()[1].Message != "three" {
		t.Fatalf("unexpected filter result %+v", a.Items())
	}
	if NewBag(1).HasWarnings() {
		t.Fatalf("an empty bag has no warnings")
	}
}

func TestDraftEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	dedup := NewDedupReporter(BagReporter{Bag: bag})
	b := ReportWarning(dedup, LntUnusedBinding, source.Span{Start: 3, End: 4}, "x is never used").
		WithNote(source.Span{Start: 0, End: 1}, "declared here")
	b.Emit()
	b.Emit()
	ReportWarning(dedup, LntUnusedBinding, source.Span{Start: 3, End: 4}, "x is never used").Emit()

	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("expected note to be carried")
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		IOLoadFileError:   "IO1001",
		ParSyntaxError:    "PAR2001",
		ScoInvalidTree:    "SCO3002",
		LntImplicitGlobal: "LNT4001",
		Code(9999):        "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if c, ok := ParseCode("lnt4003"); !ok || c != LntUnusedBinding {
		t.Errorf("ParseCode(lnt4003) = %v, %v", c, ok)
	}
	if _, ok := ParseCode("nope"); ok {
		t.Errorf("expected unknown code to fail")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("app.js", []byte("x = 1;\nvar y;\n"))
	diags := []Diagnostic{
		New(SevWarning, LntUnusedBinding, source.Span{File: id, Start: 11, End: 12}, "y is never used"),
		New(SevWarning, LntImplicitGlobal, source.Span{File: id, Start: 0, End: 1}, "assignment to undeclared x").
			WithNote(source.Span{File: id, Start: 0, End: 1}, "first write"),
	}
	got := FormatShort(diags, fs, true)
	want := "app.js:1:1: WARNING LNT4001: assignment to undeclared x\n" +
		"  app.js:1:1: note: first write\n" +
		"app.js:2:5: WARNING LNT4003: y is never used\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}
