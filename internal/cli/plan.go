package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/silencecut/internal/pipeline"
	"github.com/forPelevin/silencecut/internal/types"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <input>",
		Short: "Show the intervals that would be kept, without encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipelineConfig(cmd, args[0])
			if err != nil {
				return err
			}
			p, err := pipeline.BuildPlan(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			writePlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
	addDetectFlags(cmd)
	return cmd
}

func writePlan(w io.Writer, p types.Plan) {
	rows := make([][]string, 0, len(p.Intervals))
	for i, iv := range p.Intervals {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seconds(iv.Start),
			seconds(iv.End),
			seconds(iv.Length()),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Start", "End", "Length"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(w, "duration %s, kept %s, removed %s, silences %d\n",
		seconds(p.Duration), seconds(p.Kept()), seconds(p.Removed()), (len(p.Silences)+1)/2)
	fmt.Fprintf(w, "video filter: %s\n", p.VideoFilter)
	fmt.Fprintf(w, "audio filter: %s\n", p.AudioFilter)
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + "s"
}
