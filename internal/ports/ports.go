package ports

import (
	"context"
	"fmt"
	"strings"

	"github.com/forPelevin/silencecut/internal/types"
)

type VideoTool interface {
	DetectSilences(ctx context.Context, inPath string, opts DetectOpts) (types.SilenceBoundaries, error)
	ProbeDuration(ctx context.Context, inPath string) (float64, error)
	Transcode(ctx context.Context, job TranscodeJob) error
}

type Publisher interface {
	Publish(ctx context.Context, localPath string) (url string, err error)
}

type DetectOpts struct {
	// NoiseTolerance is an amplitude ratio ("0.03") or a dB value ("-30dB").
	NoiseTolerance string
	// MinDuration is the shortest silence, in seconds, that is reported.
	MinDuration float64
}

type EncodeParams struct {
	FrameRate int    `validate:"gt=0,lte=1000"`
	Quality   int    `validate:"gte=0,lte=63"`
	Codec     string `validate:"required"`
}

func DefaultEncodeParams() EncodeParams {
	return EncodeParams{FrameRate: 60, Quality: 23, Codec: "libx264"}
}

type TranscodeJob struct {
	InPath      string
	OutPath     string
	VideoFilter string
	AudioFilter string
	Encode      EncodeParams
	Overwrite   bool
}

// ExternalToolError reports a failed ffmpeg/ffprobe invocation: a missing
// binary, a non-zero exit, or output that could not be interpreted.
type ExternalToolError struct {
	Tool   string
	Args   []string
	Err    error
	Output string
}

func (e *ExternalToolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Tool, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

func (e *ExternalToolError) Unwrap() error { return e.Err }
