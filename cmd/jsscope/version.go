package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jsscope/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show jsscope version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("hash", false, "include git commit hash")
	cmd.Flags().Bool("message", false, "include git commit message")
	cmd.Flags().Bool("date", false, "include build date")
	cmd.Flags().Bool("full", false, "show all available build metadata")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	full, err := flags.GetBool("full")
	if err != nil {
		return err
	}
	showHash, err := flags.GetBool("hash")
	if err != nil {
		return err
	}
	showMessage, err := flags.GetBool("message")
	if err != nil {
		return err
	}
	showDate, err := flags.GetBool("date")
	if err != nil {
		return err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}

	opts := version.Options{
		ShowHash:    showHash || full,
		ShowMessage: showMessage || full,
		ShowDate:    showDate || full,
	}
	info := version.Collect()

	switch strings.ToLower(format) {
	case "pretty":
		colorMode, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		if opts.Color, err = readColorMode(colorMode); err != nil {
			return err
		}
		version.RenderPretty(cmd.OutOrStdout(), info, opts)
		return nil
	case "json":
		return version.RenderJSON(cmd.OutOrStdout(), info, opts)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
