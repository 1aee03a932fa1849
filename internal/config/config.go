// Package config loads silencecut settings from defaults, an optional TOML
// file and SILENCECUT_* environment variables, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/sethvargo/go-envconfig"
)

const EnvPrefix = "SILENCECUT_"

// Detect holds silencedetect tuning.
type Detect struct {
	NoiseTolerance string  `toml:"noise_tolerance" env:"NOISE_TOLERANCE, overwrite" validate:"required"`
	MinDuration    float64 `toml:"min_duration" env:"MIN_DURATION, overwrite" validate:"gt=0"`
	Margin         float64 `toml:"margin" env:"MARGIN, overwrite"`
}

// Encode holds the output encoder parameters.
type Encode struct {
	FPS       int    `toml:"fps" env:"FPS, overwrite" validate:"gt=0,lte=1000"`
	CRF       int    `toml:"crf" env:"CRF, overwrite" validate:"gte=0,lte=63"`
	Codec     string `toml:"codec" env:"CODEC, overwrite" validate:"required"`
	Overwrite bool   `toml:"overwrite" env:"OVERWRITE, overwrite"`
}

// Tools locates external binaries and scratch space.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg" env:"FFMPEG, overwrite" validate:"required"`
	FFprobe string `toml:"ffprobe" env:"FFPROBE, overwrite" validate:"required"`
	TempDir string `toml:"temp_dir" env:"TEMP_DIR, overwrite"`
}

type Logging struct {
	Level  string `toml:"level" env:"LOG_LEVEL, overwrite" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `toml:"format" env:"LOG_FORMAT, overwrite" validate:"omitempty,oneof=auto text console json"`
}

// S3 configures optional publishing of the finished cut.
type S3 struct {
	Bucket          string   `toml:"bucket" env:"S3_BUCKET, overwrite"`
	Region          string   `toml:"region" env:"S3_REGION, overwrite"`
	Endpoint        string   `toml:"endpoint" env:"S3_ENDPOINT, overwrite"`
	Prefix          string   `toml:"prefix" env:"S3_PREFIX, overwrite"`
	AllowedHosts    []string `toml:"allowed_hosts" env:"S3_ALLOWED_HOSTS, overwrite"`
	AccessKeyID     string   `toml:"access_key_id" env:"S3_ACCESS_KEY_ID, overwrite" json:"-"`
	SecretAccessKey string   `toml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY, overwrite" json:"-"`
}

func (s S3) Enabled() bool {
	return strings.TrimSpace(s.Bucket) != ""
}

type Settings struct {
	Detect  Detect  `toml:"detect"`
	Encode  Encode  `toml:"encode"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
	S3      S3      `toml:"s3"`
}

func Default() Settings {
	return Settings{
		Detect: Detect{
			NoiseTolerance: "0.03",
			MinDuration:    0.1,
			Margin:         0,
		},
		Encode: Encode{
			FPS:   60,
			CRF:   23,
			Codec: "libx264",
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads settings from path (or the default locations when empty) and the
// process environment. It returns the resolved file path and whether it existed.
func Load(ctx context.Context, path string) (*Settings, string, bool, error) {
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment source.
func LoadWith(ctx context.Context, path string, env envconfig.Lookuper) (*Settings, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, env),
	}); err != nil {
		return nil, "", false, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field-level constraints. Cross-field rules such as the
// margin bound are enforced by the pipeline.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func decodeFile(path string, cfg *Settings) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/silencecut/config.toml")
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("silencecut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	}
	return p, nil
}
