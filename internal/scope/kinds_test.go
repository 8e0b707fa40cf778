package scope

import "testing"

func TestKindNames(t *testing.T) {
	cases := map[Kind]string{
		KindGlobal:        "Global",
		KindArrowFunction: "ArrowFunction",
		KindStaticBlock:   "StaticBlock",
		Kind(200):         "Invalid",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
	if !KindStaticBlock.IsVarScope() || KindBlock.IsVarScope() {
		t.Fatalf("unexpected var scope classification")
	}
}

func TestAccessibility(t *testing.T) {
	if !ReadWrite.IsRead() || !ReadWrite.IsWrite() || Write.IsRead() {
		t.Fatalf("unexpected accessibility bits")
	}
	if ReadWrite.String() != "ReadWrite" || Accessibility(0).String() != "Invalid" {
		t.Fatalf("unexpected accessibility names")
	}
	if !DeclClassDeclaration.IsLexical() || DeclFunctionDeclaration.IsLexical() {
		t.Fatalf("unexpected lexical classification")
	}
}
