package lint

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsscope/internal/diag"
	"jsscope/internal/jsparse"
	"jsscope/internal/scope"
	"jsscope/internal/source"
)

func lintSource(t *testing.T, src string, cfg Config) []diag.Diagnostic {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("lint.js", []byte(src))
	bag := diag.NewBag(50)
	scripts := jsparse.ParseFile(fs.Get(id), jsparse.Options{Reporter: diag.BagReporter{Bag: bag}})
	if len(scripts) != 1 {
		t.Fatalf("parse %q: %+v", src, bag.Items())
	}
	g, err := scope.Analyze(scripts[0].Program)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	Run(g, scripts[0].Span, cfg, diag.BagReporter{Bag: bag})
	return bag.Items()
}

func codes(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestRules(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{name: "implicit and undeclared", src: "x = 1; y; console.log(x);", want: []string{"LNT4001", "LNT4002"}},
		{name: "unused local", src: "function f(a) { var unused = 1; let used = 2; return used; } f();", want: []string{"LNT4003"}},
		{name: "annex b companion counts", src: "{ function g() {} } g();", want: []string{}},
		{name: "with", src: "var o = {}; with (o) { o; }", want: []string{"LNT4004"}},
		{name: "eval", src: "function f() { eval('1'); } f();", want: []string{"LNT4007"}},
		{name: "arguments", src: "function f(arguments) { return arguments; } f();", want: []string{"LNT4005"}},
		{name: "confusable", src: "var \u00e9 = 1; var e\u0301 = 2; \u00e9 + e\u0301;", want: []string{"LNT4006"}},
		{name: "clean", src: "const a = 1; export1(a);", want: []string{"LNT4002"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codes(lintSource(t, tc.src, DefaultConfig()))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("codes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImplicitGlobalSpan(t *testing.T) {
	src := "function f() { counter = 1; }"
	diags := lintSource(t, src, DefaultConfig())
	if len(diags) != 1 || diags[0].Code != diag.LntImplicitGlobal {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	sp := diags[0].Primary
	if got := src[sp.Start:sp.End]; got != "counter" {
		t.Fatalf("span text = %q", got)
	}
}

func TestConfigDisablesRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Disable = []diag.Code{diag.LntImplicitGlobal}
	cfg.Globals = []string{"host"}
	cfg.Unused = false
	got := lintSource(t, "x = host; function f() { var z; } f();", cfg)
	if len(got) != 0 {
		t.Fatalf("expected no diagnostics, got %v", codes(got))
	}
}

func TestWithNotesThroughReferences(t *testing.T) {
	diags := lintSource(t, "function f(o) { var n; with (o) { n = 1; } return n; } f({});", DefaultConfig())
	if len(diags) != 1 || diags[0].Code != diag.LntWithStatement {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	if len(diags[0].Notes) != 1 {
		t.Fatalf("expected a note for n, got %+v", diags[0].Notes)
	}
}
