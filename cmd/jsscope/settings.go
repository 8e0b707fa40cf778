package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsscope/internal/config"
	"jsscope/internal/lint"
)

// settings is the effective configuration of one command: jsscope.toml
// values overridden by explicitly set flags.
type settings struct {
	project        *config.Project
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	module         bool
	jobs           int
	cache          bool
	cacheDir       string
	validate       bool
	ui             uiMode
	include        []string
	exclude        []string
	lint           lint.Config
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	flags := cmd.Root().PersistentFlags()
	var st settings

	wd, err := os.Getwd()
	if err != nil {
		return st, err
	}
	project, _, err := config.Discover(wd)
	if err != nil {
		return st, err
	}
	st.project = project
	cfg := project.Config

	colorStr, err := flags.GetString("color")
	if err != nil {
		return st, fmt.Errorf("failed to get color flag: %w", err)
	}
	if st.color, err = readColorMode(colorStr); err != nil {
		return st, err
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return st, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if st.ui, err = readUIMode(uiStr); err != nil {
		return st, err
	}
	if st.quiet, err = flags.GetBool("quiet"); err != nil {
		return st, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if st.timings, err = flags.GetBool("timings"); err != nil {
		return st, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if st.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return st, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	st.module = cfg.Analyze.Module
	if flags.Changed("module") {
		if st.module, err = flags.GetBool("module"); err != nil {
			return st, fmt.Errorf("failed to get module flag: %w", err)
		}
	}
	st.jobs = cfg.Analyze.Jobs
	if flags.Changed("jobs") {
		if st.jobs, err = flags.GetInt("jobs"); err != nil {
			return st, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	st.validate = cfg.Analyze.Validate
	if flags.Changed("validate") {
		if st.validate, err = flags.GetBool("validate"); err != nil {
			return st, fmt.Errorf("failed to get validate flag: %w", err)
		}
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return st, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	st.cache = cfg.Cache.Enabled && !noCache
	st.cacheDir = cfg.Cache.Dir
	st.include = cfg.Analyze.Include
	st.exclude = cfg.Analyze.Exclude

	disabled, err := cfg.Lint.DisabledCodes()
	if err != nil {
		return st, err
	}
	st.lint = lint.Config{Globals: cfg.Lint.Globals, Disable: disabled, Unused: cfg.Lint.Unused}
	return st, nil
}
