package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/vidmark/internal/options"
)

func newOptionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Read and change user options",
	}
	cmd.AddCommand(newOptionsGetCommand(ctx), newOptionsSetCommand(ctx))
	return cmd
}

func newOptionsGetCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get [ID]",
		Short: "Show one option, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, true)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				value, ok := a.Options.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", options.ErrUnknownOption, args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]any{args[0]: value})
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			values := a.Options.Export()
			if jsonOutput {
				return writeJSON(cmd, values)
			}

			ids := make([]string, 0, len(values))
			for id := range values {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				def, _ := options.Lookup(id)
				rows = append(rows, []string{id, fmt.Sprint(values[id]), fmt.Sprint(def.Default)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Option", "Value", "Default"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}

func newOptionsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set ID VALUE",
		Short: "Change one option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, true)
			if err != nil {
				return err
			}
			if err := a.Options.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			value, _ := a.Options.Get(args[0])
			success(cmd, "%s = %v", args[0], value)
			if def, ok := options.Lookup(args[0]); ok && len(def.PermissionsToRequest) > 0 {
				if enabled, _ := value.(bool); enabled {
					warn(cmd, "%s needs the %v permission; grant it with PUT /api/permissions/{capability} or VIDMARK_GRANT_BOOKMARKS=true",
						args[0], def.PermissionsToRequest)
				}
			}
			return nil
		},
	}
}
