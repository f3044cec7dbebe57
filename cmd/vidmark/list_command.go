package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/vidmark/internal/domain"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var baseURL string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List video bookmarks, most recently seen first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, true)
			if err != nil {
				return err
			}

			var q domain.VideoQuery
			if baseURL != "" {
				q.BaseURL = &baseURL
			}
			videos := a.Registry.Query(q)

			if jsonOutput {
				out := make([]domain.VideoData, 0, len(videos))
				for _, v := range videos {
					out = append(out, v.Export())
				}
				return writeJSON(cmd, out)
			}

			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No video bookmarks")
				return nil
			}

			rows := make([][]string, 0, len(videos))
			for _, v := range videos {
				rows = append(rows, []string{
					v.Title(),
					formatSeconds(v.Timestamp()) + " / " + formatSeconds(v.Duration()),
					v.BaseURL(),
					formatLastSeen(v.LastSeen()),
					v.Src(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Title", "Position", "Page", "Last seen", "Src"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVar(&baseURL, "page", "", "Only list bookmarks observed on this page URL")
	return cmd
}

// formatSeconds renders whole seconds as h:mm:ss or m:ss.
func formatSeconds(total int) string {
	if total < 0 {
		return "-" + formatSeconds(-total)
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatLastSeen(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Local().Format("2006-01-02 15:04")
}
