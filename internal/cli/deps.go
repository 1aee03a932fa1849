package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/silencecut/internal/deps"
)

func newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that ffmpeg and ffprobe are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.MediaTools(settings.Tools.FFmpeg, settings.Tools.FFprobe))
			fmt.Fprintln(cmd.OutOrStdout(), renderDeps(statuses))
			return deps.Missing(statuses)
		},
	}
}

func renderDeps(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "ok"
		where := s.Path
		if !s.Available {
			state = "missing"
			where = s.Detail
		}
		rows = append(rows, []string{s.Name, s.Command, state, where, s.Description})
	}
	return renderTable([]string{"Name", "Command", "Status", "Path", "Purpose"}, rows, nil)
}
