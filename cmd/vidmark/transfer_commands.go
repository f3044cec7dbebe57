package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/vidmark/internal/options"
	"github.com/MrSnakeDoc/vidmark/internal/sources/backup"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var output string
	var withOptions bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every video bookmark as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := backup.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			a, err := ctx.ensureApp(cmd, true)
			if err != nil {
				return err
			}

			videos := a.Registry.Export()
			var opts map[string]any
			if withOptions {
				opts = a.Options.Export()
			}
			data, err := backup.Encode(videos, opts, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			success(cmd, "Exported %d video bookmarks to %s", len(videos), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&withOptions, "with-options", false, "Write a full backup including option values")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var appendMode bool
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import video bookmarks from a JSON or YAML export",
		Long: "Import video bookmarks. Existing bookmarks are replaced unless --append is given.\n" +
			"Option values found in a full backup are applied with --options-mode.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := options.ParseImportMode(modeFlag)
			if err != nil {
				return err
			}

			doc, err := backup.NewLoader(args[0]).Load()
			if err != nil {
				return err
			}
			videos, skipped := backup.Clean(doc.Videos)
			for _, s := range skipped {
				warn(cmd, "Skipping entry %d: %s", s.Index, s.Reason)
			}

			a, err := ctx.ensureApp(cmd, true)
			if err != nil {
				return err
			}
			if doc.Options != nil {
				perms, err := a.Options.Import(cmd.Context(), doc.Options, mode)
				if err != nil {
					return err
				}
				for _, p := range perms {
					warn(cmd, "Imported options need the %q permission", p)
				}
			}
			if err := a.Registry.Import(cmd.Context(), videos, !appendMode); err != nil {
				return err
			}

			success(cmd, "Imported %d video bookmarks (%d stored)", len(videos), a.Registry.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendMode, "append", false, "Keep existing bookmarks instead of replacing them")
	cmd.Flags().StringVar(&modeFlag, "options-mode", "ignore", "Options missing from a backup: ignore, reset or false")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every video bookmark and its saved snapshot",
		Long:  "Delete every video bookmark and its saved snapshot. Browser bookmarks are left alone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				warn(cmd, "Refusing to clear without --yes")
				return fmt.Errorf("clear aborted")
			}

			a, err := ctx.ensureApp(cmd, true)
			if err != nil {
				return err
			}
			count := a.Registry.Len()
			if err := a.Registry.Clear(cmd.Context()); err != nil {
				return err
			}

			success(cmd, "Cleared %d video bookmarks", count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting everything")
	return cmd
}
