package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/silencecut/internal/domain/silencedetect"
	"github.com/forPelevin/silencecut/internal/ports"
	"github.com/forPelevin/silencecut/internal/types"
)

const (
	detectTailBytes    = 8 << 10
	transcodeTailBytes = 16 << 10
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	tempDir string
	parser  silencedetect.Parser
	log     *slog.Logger
}

type Options struct {
	// TempDir receives the filter scripts. Empty means os.TempDir().
	TempDir string
	Parser  silencedetect.Parser
	Logger  *slog.Logger
}

func New(ffmpegPath, ffprobePath string, opts Options) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if opts.Parser == nil {
		opts.Parser = silencedetect.LineParser{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		tempDir: opts.TempDir,
		parser:  opts.Parser,
		log:     opts.Logger,
	}
}

// DetectSilences runs the silencedetect filter and parses its log while ffmpeg
// is still writing it, so stderr never backs up.
func (a *Adapter) DetectSilences(ctx context.Context, inPath string, opts ports.DetectOpts) (types.SilenceBoundaries, error) {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-nostats",
		"-i", inPath,
		"-af", silencedetect.FilterSpec(opts.NoiseTolerance, opts.MinDuration),
		"-f", "null",
		"-",
	}
	const tool = "ffmpeg silencedetect"
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ports.ExternalToolError{Tool: tool, Args: args, Err: err}
	}
	a.log.Debug("running ffmpeg", slog.String("step", "detect"), slog.Any("args", args))
	if err := cmd.Start(); err != nil {
		return nil, &ports.ExternalToolError{Tool: tool, Args: args, Err: err}
	}

	tail := newTailBuffer(detectTailBytes)
	silences, parseErr := a.parser.Parse(io.TeeReader(stderr, tail))
	// parser may stop early on a read error; keep draining so ffmpeg can exit
	_, _ = io.Copy(tail, stderr)

	if err := cmd.Wait(); err != nil {
		return nil, &ports.ExternalToolError{Tool: tool, Args: args, Err: err, Output: tail.String()}
	}
	if parseErr != nil {
		return nil, &ports.ExternalToolError{Tool: tool, Args: args, Err: fmt.Errorf("read output: %w", parseErr), Output: tail.String()}
	}
	return silences, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inPath string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inPath,
	}
	const tool = "ffprobe duration"
	cmd := exec.CommandContext(ctx, a.ffprobe, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, &ports.ExternalToolError{Tool: tool, Args: args, Err: err, Output: string(b)}
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ports.ExternalToolError{Tool: tool, Args: args, Err: fmt.Errorf("parse duration %q: %w", s, err)}
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return 0, &ports.ExternalToolError{Tool: tool, Args: args, Err: fmt.Errorf("invalid duration %q", s)}
	}
	return sec, nil
}

// Transcode hands both filters to ffmpeg through script files. The scripts are
// removed on every return path.
func (a *Adapter) Transcode(ctx context.Context, job ports.TranscodeJob) error {
	scripts, err := writeFilterScripts(a.tempDir, job.VideoFilter, job.AudioFilter)
	if err != nil {
		return err
	}
	defer func() {
		if err := scripts.Remove(); err != nil {
			a.log.Warn("remove filter scripts", slog.Any("error", err))
		}
	}()

	args := transcodeArgs(job, scripts.Video, scripts.Audio)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	out := newTailBuffer(transcodeTailBytes)
	cmd.Stdout = out
	cmd.Stderr = out

	a.log.Debug("running ffmpeg", slog.String("step", "transcode"), slog.Any("args", args))
	if err := cmd.Run(); err != nil {
		return &ports.ExternalToolError{Tool: "ffmpeg transcode", Args: args, Err: err, Output: out.String()}
	}
	return nil
}

func transcodeArgs(job ports.TranscodeJob, videoScript, audioScript string) []string {
	overwrite := "-n"
	if job.Overwrite {
		overwrite = "-y"
	}
	return []string{
		"-hide_banner",
		"-nostdin",
		overwrite,
		"-i", job.InPath,
		"-filter_script:v", videoScript,
		"-filter_script:a", audioScript,
		"-r", strconv.Itoa(job.Encode.FrameRate),
		"-crf", strconv.Itoa(job.Encode.Quality),
		"-c:v", job.Encode.Codec,
		job.OutPath,
	}
}
