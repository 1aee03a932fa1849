package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/silencecut/internal/deps"
	"github.com/forPelevin/silencecut/internal/domain/silencedetect"
	"github.com/forPelevin/silencecut/internal/logging"
	"github.com/forPelevin/silencecut/internal/ports"
	"github.com/forPelevin/silencecut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/silencecut/internal/storage"
	"github.com/forPelevin/silencecut/internal/types"
	"github.com/forPelevin/silencecut/internal/usecase"
)

var (
	ErrInputNotFound = errors.New("the input file could not be found")
	ErrInvalidMargin = errors.New("the margin is greater than half of the minimum duration")
	ErrOutputBusy    = errors.New("output is locked by another silencecut run")
)

type Config struct {
	InputPath  string
	OutputPath string
	// ManifestPath, when set, receives a JSON description of the cut.
	ManifestPath string

	NoiseTolerance string
	MinDuration    float64
	Margin         float64
	Encode         ports.EncodeParams
	Overwrite      bool

	FFmpegPath  string
	FFprobePath string
	// TempDir holds the filter scripts handed to ffmpeg. Empty means os.TempDir().
	TempDir string

	Publish bool
	S3      storage.S3Config

	Logger *slog.Logger
}

var validate = validator.New()

// Validate runs every check that does not need an external tool. It never
// spawns a process or creates a file.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input is empty", ErrInputNotFound)
	}
	info, err := os.Stat(c.InputPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputNotFound, c.InputPath)
	}
	if c.MinDuration <= 0 {
		return fmt.Errorf("min duration must be > 0")
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative", ErrInvalidMargin)
	}
	if c.Margin > c.MinDuration/2 {
		return fmt.Errorf("%w (margin %gs, min duration %gs)", ErrInvalidMargin, c.Margin, c.MinDuration)
	}
	if _, err := silencedetect.NoiseTolerance(c.NoiseTolerance); err != nil {
		return err
	}
	if err := validate.Struct(c.Encode); err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if out := c.outputPath(); sameFile(out, c.InputPath) {
		return fmt.Errorf("output %s would overwrite the input", out)
	}
	if c.Publish {
		if strings.TrimSpace(c.S3.Bucket) == "" {
			return storage.ErrBucketRequired
		}
		if err := storage.ValidateEndpoint(c.S3.Endpoint, c.S3.AllowedHosts); err != nil {
			return err
		}
	}
	return nil
}

// DefaultOutputPath inserts "_cut" before the extension: talk.mp4 -> talk_cut.mp4.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_cut" + ext
}

func (c Config) outputPath() string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	return DefaultOutputPath(c.InputPath)
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

func (c Config) usecaseInput() usecase.Input {
	noise, _ := silencedetect.NoiseTolerance(c.NoiseTolerance)
	return usecase.Input{
		InPath:  c.InputPath,
		OutPath: c.outputPath(),
		Detect: ports.DetectOpts{
			NoiseTolerance: noise,
			MinDuration:    c.MinDuration,
		},
		Margin:    c.Margin,
		Encode:    c.Encode,
		Overwrite: c.Overwrite,
	}
}

// runDeps are the collaborators Run wires from Config; tests substitute fakes.
type runDeps struct {
	video     ports.VideoTool
	publisher func(ctx context.Context) (ports.Publisher, error)
	preflight func() error
}

func defaultDeps(cfg Config) runDeps {
	return runDeps{
		video: ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, ffmpeg.Options{
			TempDir: cfg.TempDir,
			Logger:  cfg.logger(),
		}),
		publisher: func(ctx context.Context) (ports.Publisher, error) {
			return storage.NewS3Publisher(ctx, cfg.S3)
		},
		preflight: func() error {
			statuses := deps.CheckBinaries(deps.MediaTools(toolName(cfg.FFmpegPath, "ffmpeg"), toolName(cfg.FFprobePath, "ffprobe")))
			if err := deps.Missing(statuses); err != nil {
				return &ports.ExternalToolError{Tool: "preflight", Err: err}
			}
			return nil
		},
	}
}

// Run validates cfg, cuts the silences out of the input and returns the
// manifest describing the result. Validation failures are prefixed "config: ".
func Run(ctx context.Context, cfg Config) (types.Manifest, error) {
	return run(ctx, cfg, defaultDeps(cfg))
}

// BuildPlan validates cfg and computes the cut without transcoding.
func BuildPlan(ctx context.Context, cfg Config) (types.Plan, error) {
	return buildPlan(ctx, cfg, defaultDeps(cfg))
}

func buildPlan(ctx context.Context, cfg Config, d runDeps) (types.Plan, error) {
	if err := cfg.Validate(); err != nil {
		return types.Plan{}, fmt.Errorf("config: %w", err)
	}
	if err := d.preflight(); err != nil {
		return types.Plan{}, err
	}
	uc := usecase.New(usecase.Deps{Video: d.video, Log: cfg.logger()})
	return uc.Plan(ctx, cfg.usecaseInput())
}

func run(ctx context.Context, cfg Config, d runDeps) (types.Manifest, error) {
	logger := cfg.logger()
	if err := cfg.Validate(); err != nil {
		return types.Manifest{}, fmt.Errorf("config: %w", err)
	}
	if err := d.preflight(); err != nil {
		return types.Manifest{}, err
	}

	out := cfg.outputPath()
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return types.Manifest{}, err
	}
	unlock, err := lockOutput(out)
	if err != nil {
		return types.Manifest{}, err
	}
	defer unlock()

	uc := usecase.New(usecase.Deps{Video: d.video, Log: logger})
	res, err := uc.Run(ctx, cfg.usecaseInput())
	if err != nil {
		return types.Manifest{}, err
	}

	m := types.NewManifest(cfg.InputPath, out, res.Plan)
	logger.Info("video written",
		slog.String("output", out),
		slog.Float64("kept_sec", m.KeptSec),
		slog.Float64("removed_sec", m.RemovedSec),
	)

	if cfg.Publish {
		pub, err := d.publisher(ctx)
		if err != nil {
			return m, fmt.Errorf("publish: %w", err)
		}
		url, err := pub.Publish(ctx, out)
		if err != nil {
			return m, fmt.Errorf("publish: %w", err)
		}
		m.URL = url
		logger.Info("published", slog.String("url", url))
	}

	if cfg.ManifestPath != "" {
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return m, fmt.Errorf("marshal manifest: %w", err)
		}
		if err := os.WriteFile(cfg.ManifestPath, b, 0o644); err != nil {
			return m, err
		}
		logger.Info("manifest written", slog.String("path", cfg.ManifestPath))
	}
	return m, nil
}

// lockOutput serializes runs that target the same output file. The lock file
// is left in place after Unlock; removing it would let a waiting run and a new
// run lock different inodes for the same output.
func lockOutput(out string) (func(), error) {
	fl := flock.New(outputLockPath(out))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputBusy, out)
	}
	return func() { _ = fl.Unlock() }, nil
}

// outputLockPath names the lock after the absolute output path so the output
// directory stays clean.
func outputLockPath(out string) string {
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(out)))
	return filepath.Join(os.TempDir(), "silencecut-"+id.String()+".lock")
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	if absA == absB {
		return true
	}
	ia, errA := os.Stat(absA)
	ib, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(ia, ib)
}

func toolName(configured, fallback string) string {
	if strings.TrimSpace(configured) == "" {
		return fallback
	}
	return configured
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Publisher = (*storage.S3Publisher)(nil)
