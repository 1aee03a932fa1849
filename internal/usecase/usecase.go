package usecase

import (
	"context"
	"log/slog"

	"github.com/forPelevin/silencecut/internal/domain/filter"
	"github.com/forPelevin/silencecut/internal/domain/timeline"
	"github.com/forPelevin/silencecut/internal/logging"
	"github.com/forPelevin/silencecut/internal/ports"
	"github.com/forPelevin/silencecut/internal/types"
)

// Files shorter than this may legitimately contain no silence.
const nonTrivialSeconds = 1.0

type Deps struct {
	Video ports.VideoTool
	Log   *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	return Usecase{d: d}
}

type Input struct {
	InPath    string
	OutPath   string
	Detect    ports.DetectOpts
	Margin    float64
	Encode    ports.EncodeParams
	Overwrite bool
}

type Result struct {
	Plan types.Plan
}

// Plan detects silences, probes the duration and compiles both stream filters.
func (u Usecase) Plan(ctx context.Context, in Input) (types.Plan, error) {
	log := u.d.Log.With(slog.String("input", in.InPath))

	log.Info("detecting silences, this may take a while depending on the length of the video")
	silences, err := u.d.Video.DetectSilences(ctx, in.InPath, in.Detect)
	if err != nil {
		return types.Plan{}, err
	}

	duration, err := u.d.Video.ProbeDuration(ctx, in.InPath)
	if err != nil {
		return types.Plan{}, err
	}

	if len(silences) == 0 && duration > nonTrivialSeconds {
		log.Warn("no silences detected; check the noise tolerance or the ffmpeg log format",
			slog.Float64("duration_sec", duration),
			slog.String("noise_tolerance", in.Detect.NoiseTolerance),
		)
	}
	if len(silences)%2 != 0 {
		log.Debug("silence runs to end of media", slog.Float64("start_sec", silences[len(silences)-1]))
	}

	segs := timeline.BuildKeepSegments(silences, duration)
	p := types.Plan{
		Silences:    silences,
		Duration:    duration,
		Margin:      in.Margin,
		Segments:    segs,
		Intervals:   filter.Intervals(segs, in.Margin),
		VideoFilter: filter.Video(segs, in.Margin),
		AudioFilter: filter.Audio(segs, in.Margin),
	}
	log.Info("plan ready",
		slog.Int("silences", len(silences)/2),
		slog.Int("keep_intervals", len(p.Intervals)),
		slog.Float64("duration_sec", duration),
		slog.Float64("removed_sec", p.Removed()),
	)
	return p, nil
}

// Run plans the cut and transcodes the input into OutPath.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	p, err := u.Plan(ctx, in)
	if err != nil {
		return Result{}, err
	}

	u.d.Log.Info("creating new video", slog.String("output", in.OutPath))
	if err := u.d.Video.Transcode(ctx, ports.TranscodeJob{
		InPath:      in.InPath,
		OutPath:     in.OutPath,
		VideoFilter: p.VideoFilter,
		AudioFilter: p.AudioFilter,
		Encode:      in.Encode,
		Overwrite:   in.Overwrite,
	}); err != nil {
		return Result{}, err
	}
	return Result{Plan: p}, nil
}
