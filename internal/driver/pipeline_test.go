package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"jsscope/internal/diag"
	"jsscope/internal/lint"
	"jsscope/internal/source"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func codes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestListInputs(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.js":                   "",
		"a.mjs":                  "",
		"page.html":              "",
		"notes.txt":              "",
		"vendor/lib.js":          "",
		"src/app.js":             "",
		"src/app.min.js":         "",
		"node_modules/x/y.js":    "",
		"src/nested/deep.cjs":    "",
		"src/nested/readme.md":   "",
		"src/nested/skip.min.js": "",
	})
	got, err := ListInputs(dir, []string{"*.js", "*.mjs", "*.cjs", "*.html"}, []string{"node_modules", "vendor/*", "*.min.js"})
	if err != nil {
		t.Fatalf("ListInputs: %v", err)
	}
	for i := range got {
		rel, _ := filepath.Rel(dir, got[i])
		got[i] = filepath.ToSlash(rel)
	}
	want := []string{"a.mjs", "b.js", "page.html", "src/app.js", "src/nested/deep.cjs"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandInputsDeduplicates(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "", "b.js": ""})
	a := filepath.Join(dir, "a.js")
	got, err := ExpandInputs([]string{a, dir}, []string{"*.js"}, nil)
	if err != nil {
		t.Fatalf("ExpandInputs: %v", err)
	}
	want := []string{a, filepath.Join(dir, "b.js")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
	if _, err := ExpandInputs([]string{filepath.Join(dir, "missing.js")}, nil, nil); err == nil {
		t.Fatalf("expected an error for a missing argument")
	}
}

func TestAnalyzeFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js":      "var a = 1; x = a;",
		"broken.js": "var = ;",
		"page.html": "<p>hi</p><script>var p;</script><script type=\"module\">let m;</script>",
	})
	paths := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "broken.js"),
		filepath.Join(dir, "page.html"),
		filepath.Join(dir, "missing.js"),
	}
	fs := source.NewFileSet()
	results, err := AnalyzeFiles(context.Background(), paths, Options{Jobs: 2, Lint: lint.DefaultConfig(), FileSet: fs})
	if err != nil {
		t.Fatalf("AnalyzeFiles: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.Path, paths[i])
		}
	}

	a := results[0]
	if len(a.Scripts) != 1 || a.Scripts[0].Global == nil {
		t.Fatalf("a.js: expected one analyzed script, got %+v", a.Scripts)
	}
	if !strings.HasPrefix(a.Scripts[0].JSON, `{"node": "Program_0"`) {
		t.Fatalf("a.js: unexpected JSON %s", a.Scripts[0].JSON)
	}
	if diff := cmp.Diff([]string{"LNT4001"}, codes(a.Bag)); diff != "" {
		t.Fatalf("a.js diagnostics (-want +got):\n%s", diff)
	}

	broken := results[1]
	if len(broken.Scripts) != 0 || !broken.HasErrors() || codes(broken.Bag)[0] != "PAR2001" {
		t.Fatalf("broken.js: expected a syntax error, got %v", codes(broken.Bag))
	}

	page := results[2]
	if len(page.Scripts) != 2 {
		t.Fatalf("page.html: got %d scripts, want 2", len(page.Scripts))
	}
	if page.Scripts[0].Module || !page.Scripts[1].Module {
		t.Fatalf("page.html: module flags %v %v", page.Scripts[0].Module, page.Scripts[1].Module)
	}
	if page.Scripts[0].Offset != uint32(len("<p>hi</p><script>")) {
		t.Fatalf("page.html: first script offset %d", page.Scripts[0].Offset)
	}

	missing := results[3]
	if diff := cmp.Diff([]string{"IO1001"}, codes(missing.Bag)); diff != "" {
		t.Fatalf("missing.js diagnostics (-want +got):\n%s", diff)
	}
	if f := fs.Get(missing.Bag.Items()[0].Primary.File); f == nil || f.Path != filepath.ToSlash(paths[3]) {
		t.Fatalf("load error must point at the missing path")
	}

	total := MergeTimings(results).Report()
	names := make(map[string]bool)
	for _, p := range total.Phases {
		names[p.Name] = true
	}
	for _, want := range []string{"load", "parse", "analyze", "lint", "serialize"} {
		if !names[want] {
			t.Errorf("merged timings lack phase %q", want)
		}
	}
}

func TestAnalyzeFilesValidate(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "function f(a = 1) { with (o) { a; } }"})
	results, err := AnalyzeFiles(context.Background(), []string{filepath.Join(dir, "a.js")},
		Options{Validate: true, Lint: lint.Config{Disable: []diag.Code{diag.LntWithStatement, diag.LntUndeclaredGlobal}}})
	if err != nil {
		t.Fatalf("AnalyzeFiles: %v", err)
	}
	if n := results[0].Bag.Len(); n != 0 {
		t.Fatalf("expected a clean tree, got %v", codes(results[0].Bag))
	}
}

func TestAnalyzeFilesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "x = 1;\nfunction f() {}"})
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	paths := []string{filepath.Join(dir, "a.js")}
	opts := Options{Lint: lint.DefaultConfig(), Cache: cache}

	first, err := AnalyzeFiles(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached {
		t.Fatalf("first run must miss the cache")
	}

	second, err := AnalyzeFiles(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	got := second[0]
	if !got.Cached {
		t.Fatalf("second run must hit the cache")
	}
	if got.Scripts[0].Global != nil {
		t.Fatalf("cached scripts carry no tree")
	}
	if diff := cmp.Diff(first[0].Scripts[0].JSON, got.Scripts[0].JSON); diff != "" {
		t.Fatalf("cached JSON differs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(codes(first[0].Bag), codes(got.Bag)); diff != "" {
		t.Fatalf("cached diagnostics differ (-want +got):\n%s", diff)
	}
	if got.Bag.Items()[0].Primary.Start != first[0].Bag.Items()[0].Primary.Start {
		t.Fatalf("cached span moved")
	}

	var stored CachePayload
	hit, err := cache.Get(CacheKey(sourceHash(t, paths[0]), false, opts.Lint), &stored)
	if err != nil || !hit {
		t.Fatalf("stored payload: hit=%v err=%v", hit, err)
	}
	if stored.Path != filepath.ToSlash(paths[0]) || len(stored.JSON) != 1 || stored.Offsets[0] != 0 || stored.Modules[0] {
		t.Fatalf("unexpected payload:\n%s", spew.Sdump(stored))
	}

	opts.Module = true
	third, err := AnalyzeFiles(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third[0].Cached {
		t.Fatalf("module mode must not reuse script results")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	var payload CachePayload
	if hit, err := cache.Get(CacheKey([32]byte{}, false, opts.Lint), &payload); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
}

func sourceHash(t *testing.T, path string) [32]byte {
	t.Helper()
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return fs.Get(id).Hash
}

func TestCacheKey(t *testing.T) {
	var content [32]byte
	content[0] = 1
	base := CacheKey(content, false, lint.Config{Globals: []string{"a", "b"}})
	if base != CacheKey(content, false, lint.Config{Globals: []string{"b", "a"}}) {
		t.Fatalf("globals order must not change the key")
	}
	variants := []Digest{
		CacheKey(content, true, lint.Config{Globals: []string{"a", "b"}}),
		CacheKey(content, false, lint.Config{Globals: []string{"a"}}),
		CacheKey(content, false, lint.Config{Globals: []string{"a", "b"}, Unused: true}),
		CacheKey(content, false, lint.Config{Globals: []string{"a", "b"}, Disable: []diag.Code{diag.LntUnusedBinding}}),
		CacheKey([32]byte{}, false, lint.Config{Globals: []string{"a", "b"}}),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with the base key", i)
		}
	}
}

func TestAnalyzeFilesEvents(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "let a;", "b.js": "let b;"})
	var mu sync.Mutex
	final := make(map[string]Status)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		final[filepath.Base(ev.File)] = ev.Status
	})
	paths := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js")}
	if _, err := AnalyzeFiles(context.Background(), paths, Options{Sink: sink}); err != nil {
		t.Fatalf("AnalyzeFiles: %v", err)
	}
	want := map[string]Status{"a.js": StatusDone, "b.js": StatusDone}
	if diff := cmp.Diff(want, final); diff != "" {
		t.Fatalf("final statuses (-want +got):\n%s", diff)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "a.js", Status: StatusDone})
	if ev := <-ch; ev.File != "a.js" || ev.Status != StatusDone {
		t.Fatalf("unexpected event %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{})
}

func TestAnalyzeFilesCancelled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "var a;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeFiles(ctx, []string{filepath.Join(dir, "a.js")}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
