package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"jsscope/internal/driver"
	"jsscope/internal/source"
	"jsscope/internal/ui"
)

type pipelineOutcome struct {
	results []driver.FileResult
	err     error
}

// runPipeline expands args into input files and analyzes them. useCache
// allows results without trees; commands that walk trees pass false.
func runPipeline(cmd *cobra.Command, st settings, args []string, useCache bool) (*source.FileSet, []driver.FileResult, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	paths, err := driver.ExpandInputs(args, st.include, st.exclude)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, errors.New("no input files")
	}

	fs := source.NewFileSet()
	opts := driver.Options{
		Jobs:           st.jobs,
		MaxDiagnostics: st.maxDiagnostics,
		Module:         st.module,
		Validate:       st.validate,
		Lint:           st.lint,
		FileSet:        fs,
	}
	if useCache && st.cache {
		cache, err := openCache(st)
		if err != nil {
			if !st.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
			}
		} else {
			opts.Cache = cache
		}
	}

	var results []driver.FileResult
	if shouldUseTUI(st.ui, len(paths), st.quiet) {
		results, err = runWithUI(cmd.Context(), cmd.ErrOrStderr(), "analyzing", paths, opts)
	} else {
		results, err = driver.AnalyzeFiles(cmd.Context(), paths, opts)
	}
	if err != nil {
		return fs, results, err
	}
	if st.timings {
		fmt.Fprint(cmd.ErrOrStderr(), driver.MergeTimings(results).Summary())
	}
	return fs, results, nil
}

func openCache(st settings) (*driver.DiskCache, error) {
	dir := st.cacheDir
	if dir == "" {
		return driver.OpenDiskCache("jsscope")
	}
	if !filepath.IsAbs(dir) && st.project != nil {
		dir = filepath.Join(st.project.Root, dir)
	}
	return driver.OpenDiskCacheAt(dir)
}

func runWithUI(ctx context.Context, out io.Writer, title string, files []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan pipelineOutcome, 1)

	go func() {
		opts.Sink = driver.ChannelSink{Ch: events}
		res, err := driver.AnalyzeFiles(ctx, files, opts)
		outcomeCh <- pipelineOutcome{results: res, err: err}
		close(events)
	}()

	uiErr := ui.Run(out, title, files, events)
	if uiErr != nil {
		// keep the pipeline from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
