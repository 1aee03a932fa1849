package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/forPelevin/silencecut/internal/config"
	"github.com/forPelevin/silencecut/internal/logging"
	"github.com/forPelevin/silencecut/internal/pipeline"
	"github.com/forPelevin/silencecut/internal/ports"
	"github.com/forPelevin/silencecut/internal/storage"
)

const (
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagOutput      = "output"
	flagNoise       = "noise-tolerance"
	flagMinDuration = "min-duration"
	flagMargin      = "margin"
	flagFPS         = "fps"
	flagCRF         = "crf"
	flagCodec       = "codec"
	flagOverwrite   = "overwrite"
	flagManifest    = "manifest"
	flagPublish     = "publish"
)

func run(cmd *cobra.Command, input string) error {
	cfg, err := pipelineConfig(cmd, input)
	if err != nil {
		return err
	}
	cfg.OutputPath, _ = cmd.Flags().GetString(flagOutput)
	cfg.ManifestPath, _ = cmd.Flags().GetString(flagManifest)
	cfg.Publish, _ = cmd.Flags().GetBool(flagPublish)

	m, err := pipeline.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if m.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), m.URL)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), m.Output)
	}
	return nil
}

// pipelineConfig resolves settings (defaults, file, env, flags) into a
// pipeline.Config for input.
func pipelineConfig(cmd *cobra.Command, input string) (pipeline.Config, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return pipeline.Config{}, err
	}
	logger, err := logging.New(logging.Options{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}

	absIn := input
	if abs, err := filepath.Abs(input); err == nil {
		absIn = abs
	}

	return pipeline.Config{
		InputPath:      absIn,
		NoiseTolerance: settings.Detect.NoiseTolerance,
		MinDuration:    settings.Detect.MinDuration,
		Margin:         settings.Detect.Margin,
		Encode: ports.EncodeParams{
			FrameRate: settings.Encode.FPS,
			Quality:   settings.Encode.CRF,
			Codec:     settings.Encode.Codec,
		},
		Overwrite:   settings.Encode.Overwrite,
		FFmpegPath:  settings.Tools.FFmpeg,
		FFprobePath: settings.Tools.FFprobe,
		TempDir:     settings.Tools.TempDir,
		S3: storage.S3Config{
			Bucket:          settings.S3.Bucket,
			Region:          settings.S3.Region,
			Endpoint:        settings.S3.Endpoint,
			Prefix:          settings.S3.Prefix,
			AccessKeyID:     settings.S3.AccessKeyID,
			SecretAccessKey: settings.S3.SecretAccessKey,
			AllowedHosts:    settings.S3.AllowedHosts,
		},
		Logger: logger.With(slog.String("cmd", cmd.Name())),
	}, nil
}

func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	path, _ := cmd.Flags().GetString(flagConfig)
	settings, _, _, err := config.Load(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd.Flags(), settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyFlagOverrides copies flags the user set explicitly over the loaded
// settings. Flag defaults never mask file or environment values.
func applyFlagOverrides(fs *pflag.FlagSet, s *config.Settings) {
	if fs.Changed(flagNoise) {
		s.Detect.NoiseTolerance, _ = fs.GetString(flagNoise)
	}
	if fs.Changed(flagMinDuration) {
		s.Detect.MinDuration, _ = fs.GetFloat64(flagMinDuration)
	}
	if fs.Changed(flagMargin) {
		s.Detect.Margin, _ = fs.GetFloat64(flagMargin)
	}
	if fs.Changed(flagFPS) {
		s.Encode.FPS, _ = fs.GetInt(flagFPS)
	}
	if fs.Changed(flagCRF) {
		s.Encode.CRF, _ = fs.GetInt(flagCRF)
	}
	if fs.Changed(flagCodec) {
		s.Encode.Codec, _ = fs.GetString(flagCodec)
	}
	if fs.Changed(flagOverwrite) {
		s.Encode.Overwrite, _ = fs.GetBool(flagOverwrite)
	}
	if fs.Changed(flagLogLevel) {
		s.Logging.Level, _ = fs.GetString(flagLogLevel)
	}
	if fs.Changed(flagLogFormat) {
		s.Logging.Format, _ = fs.GetString(flagLogFormat)
	}
}
