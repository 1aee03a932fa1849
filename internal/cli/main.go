package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "silencecut [flags] <input>",
		Short: "Remove silent stretches from a video",
		Long: "silencecut finds silent intervals with ffmpeg's silencedetect filter and\n" +
			"re-encodes the input keeping only the audible parts.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.String(flagConfig, "", "TOML settings file (default ~/.config/silencecut/config.toml)")
	pf.String(flagLogLevel, "", "Log level: debug, info, warn, error")
	pf.String(flagLogFormat, "", "Log format: auto, text, json")

	addDetectFlags(root)
	f := root.Flags()
	f.StringP(flagOutput, "o", "", "Output file (default <input>_cut<ext>)")
	f.Int(flagFPS, 60, "Output frame rate")
	f.Int(flagCRF, 23, "Constant rate factor passed to the encoder")
	f.String(flagCodec, "libx264", "Output video codec")
	f.Bool(flagOverwrite, false, "Replace the output file if it exists")
	f.String(flagManifest, "", "Write a JSON description of the cut to this path")
	f.Bool(flagPublish, false, "Upload the output to the configured S3 bucket")

	root.AddCommand(newPlanCmd(), newDepsCmd())
	return root
}

func addDetectFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP(flagNoise, "n", "0.03", "Noise tolerance: amplitude ratio (0.03) or decibels (-30dB)")
	f.Float64P(flagMinDuration, "d", 0.1, "Minimum silence duration in seconds")
	f.Float64P(flagMargin, "m", 0.0, "Seconds of silence kept around every cut (at most half the min duration)")
}
