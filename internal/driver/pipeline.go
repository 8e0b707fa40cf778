// Package driver runs the analysis pipeline over many input files.
package driver

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"time"

	"github.com/dop251/goja/ast"
	"golang.org/x/sync/errgroup"

	"jsscope/internal/diag"
	"jsscope/internal/jsparse"
	"jsscope/internal/lint"
	"jsscope/internal/observ"
	"jsscope/internal/scope"
	"jsscope/internal/source"
	"jsscope/internal/trace"
)

// Options configures AnalyzeFiles.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int
	Module         bool
	Validate       bool
	Lint           lint.Config
	// Cache, when set, short-circuits files whose result is already on disk.
	// Cached results carry JSON and diagnostics but no trees.
	Cache *DiskCache
	Sink  ProgressSink
	// FileSet receives the loaded files; a private one is used when nil.
	FileSet *source.FileSet
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Scripts []ScriptResult
	Bag     *diag.Bag
	Timing  *observ.Timer
	Cached  bool
}

// HasErrors reports whether the file produced error diagnostics.
func (r FileResult) HasErrors() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// ScriptResult is one analyzed program of a file. Program and Global are nil
// for results served from the cache.
type ScriptResult struct {
	File    source.FileID
	Offset  uint32
	Module  bool
	Program *ast.Program
	Global  *scope.GlobalScope
	JSON    string
}

// Span locates node inside the file the script came from.
func (s ScriptResult) Span(node ast.Node) source.Span {
	return jsparse.Script{File: s.File, Offset: s.Offset}.Span(node)
}

// AnalyzeFiles loads paths into the file set and analyzes them in parallel.
// Load, parse and analysis failures end up in each file's bag; only
// cancellation aborts the run. Results are in input order.
func AnalyzeFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	fileSet := opts.FileSet
	if fileSet == nil {
		fileSet = source.NewFileSet()
	}
	if len(paths) == 0 {
		return nil, nil
	}

	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeDriver, "analyze_files", trace.ParentFrom(ctx)).
		WithExtra("files", strconv.Itoa(len(paths)))
	defer runSpan.End("")

	results := make([]FileResult, len(paths))
	for i, path := range paths {
		results[i] = FileResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics), Timing: observ.NewTimer()}
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// FileSet is not safe for concurrent writes; load up front.
	loadSpan := trace.Begin(tracer, trace.ScopePass, "load", runSpan.ID())
	loadErrors := make(map[int]error)
	for i, path := range paths {
		start := time.Now()
		id, err := fileSet.Load(path)
		results[i].Timing.Add("load", time.Since(start))
		if err != nil {
			// an empty stand-in keeps the path addressable by diagnostics
			loadErrors[i] = err
			id = fileSet.AddVirtual(path, nil)
		}
		results[i].FileID = id
	}
	loadSpan.End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res := &results[i]
			if err, failed := loadErrors[i]; failed {
				diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.IOLoadFileError, source.Span{File: res.FileID},
					"failed to load file: "+err.Error()).Emit()
				emit(opts.Sink, Event{File: res.Path, Stage: StageLoad, Status: StatusError, Err: err})
				return nil
			}
			w := worker{opts: opts, tracer: tracer, parent: runSpan.ID()}
			w.file(res, fileSet.Get(res.FileID))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// MergeTimings folds the per-file timers into one.
func MergeTimings(results []FileResult) *observ.Timer {
	total := observ.NewTimer()
	for _, r := range results {
		total.Merge(r.Timing)
	}
	return total
}

type worker struct {
	opts   Options
	tracer trace.Tracer
	parent uint64
}

func (w worker) file(res *FileResult, f *source.File) {
	started := time.Now()
	span := trace.Begin(w.tracer, trace.ScopeFile, "file:"+res.Path, w.parent)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})

	var key Digest
	if w.opts.Cache != nil {
		key = CacheKey(f.Hash, w.opts.Module, w.opts.Lint)
		if w.fromCache(res, key) {
			span.WithExtra("cached", "true").End("")
			emit(w.opts.Sink, Event{File: res.Path, Stage: StageSerialize, Status: StatusCached, Elapsed: time.Since(started)})
			return
		}
	}

	emit(w.opts.Sink, Event{File: res.Path, Stage: StageParse, Status: StatusWorking})
	stop := res.Timing.Measure("parse")
	scripts := jsparse.ParseFile(f, jsparse.Options{Module: w.opts.Module, Reporter: reporter})
	stop()

	for n, script := range scripts {
		if sr, ok := w.script(res, script, reporter, span.ID(), n); ok {
			res.Scripts = append(res.Scripts, sr)
		}
	}
	res.Bag.Sort()

	if w.opts.Cache != nil && cacheable(res.Bag) {
		if err := w.opts.Cache.Put(key, payloadFor(res, f, w.opts.Module)); err != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: f.ID}, "cache write failed: "+err.Error()).Emit()
		}
	}

	span.WithExtra("scripts", strconv.Itoa(len(res.Scripts))).End("")
	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(w.opts.Sink, Event{File: res.Path, Stage: StageSerialize, Status: status, Elapsed: time.Since(started)})
}

func (w worker) script(res *FileResult, script jsparse.Script, r diag.Reporter, parent uint64, n int) (ScriptResult, bool) {
	span := trace.Begin(w.tracer, trace.ScopeNode, "script", parent).WithExtra("index", strconv.Itoa(n))
	defer span.End("")

	emit(w.opts.Sink, Event{File: res.Path, Stage: StageAnalyze, Status: StatusWorking})
	start := time.Now()
	global, err := scope.AnalyzeWith(script.Program, scope.Options{Module: script.Module})
	res.Timing.Add("analyze", time.Since(start))
	at := source.Span{File: script.File, Start: script.Offset, End: script.Offset}
	if err != nil {
		code := diag.ScoUnsupportedNode
		if !errors.Is(err, scope.ErrUnsupportedNode) {
			code = diag.ScoInfo
		}
		diag.ReportError(r, code, at, err.Error()).Emit()
		return ScriptResult{}, false
	}

	if w.opts.Validate {
		start = time.Now()
		err = global.Validate()
		res.Timing.Add("validate", time.Since(start))
		if err != nil {
			diag.ReportError(r, diag.ScoInvalidTree, at, err.Error()).Emit()
		}
	}

	emit(w.opts.Sink, Event{File: res.Path, Stage: StageLint, Status: StatusWorking})
	start = time.Now()
	lint.Run(global, script.Span, w.opts.Lint, r)
	res.Timing.Add("lint", time.Since(start))

	emit(w.opts.Sink, Event{File: res.Path, Stage: StageSerialize, Status: StatusWorking})
	start = time.Now()
	out := scope.Serialize(global)
	res.Timing.Add("serialize", time.Since(start))

	return ScriptResult{
		File:    script.File,
		Offset:  script.Offset,
		Module:  script.Module,
		Program: script.Program,
		Global:  global,
		JSON:    out,
	}, true
}

func (w worker) fromCache(res *FileResult, key Digest) bool {
	defer res.Timing.Measure("cache")()

	var payload CachePayload
	hit, err := w.opts.Cache.Get(key, &payload)
	if err != nil {
		diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheError, source.Span{File: res.FileID},
			"cache read failed: "+err.Error()).Emit()
		return false
	}
	if !hit || len(payload.Offsets) != len(payload.JSON) || len(payload.Modules) != len(payload.JSON) {
		return false
	}
	res.Cached = true
	for i, js := range payload.JSON {
		res.Scripts = append(res.Scripts, ScriptResult{
			File:   res.FileID,
			Offset: payload.Offsets[i],
			Module: payload.Modules[i],
			JSON:   js,
		})
	}
	restoreDiagnostics(res.Bag, res.FileID, payload.Diagnostics)
	return true
}

// cacheable rejects results that depend on analyzer failures or settings the
// cache key does not cover.
func cacheable(bag *diag.Bag) bool {
	if bag.Len() >= bag.Cap() {
		return false
	}
	for _, d := range bag.Items() {
		switch d.Code {
		case diag.ScoUnsupportedNode, diag.ScoInvalidTree, diag.ScoInfo, diag.IOCacheError:
			return false
		}
	}
	return true
}

func payloadFor(res *FileResult, f *source.File, module bool) *CachePayload {
	p := &CachePayload{
		Schema:      cacheSchemaVersion,
		Path:        f.Path,
		Module:      module,
		Offsets:     make([]uint32, 0, len(res.Scripts)),
		Modules:     make([]bool, 0, len(res.Scripts)),
		JSON:        make([]string, 0, len(res.Scripts)),
		Diagnostics: cacheDiagnostics(res.Bag.Items()),
	}
	for _, s := range res.Scripts {
		p.Modules = append(p.Modules, s.Module)
		p.Offsets = append(p.Offsets, s.Offset)
		p.JSON = append(p.JSON, s.JSON)
	}
	return p
}
