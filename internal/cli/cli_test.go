package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/silencecut/internal/config"
	"github.com/forPelevin/silencecut/internal/deps"
	"github.com/forPelevin/silencecut/internal/pipeline"
	"github.com/forPelevin/silencecut/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "talk.mp4")
	require.NoError(t, os.WriteFile(in, []byte("x"), 0o644))
	return in, filepath.Join(dir, "missing.toml")
}

func TestApplyFlagOverrides_OnlyChangedFlags(t *testing.T) {
	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"-m", "0.02", "--crf", "30", "--log-format", "json"}))

	s := config.Default()
	s.Detect.NoiseTolerance = "-40dB"
	s.Encode.Codec = "libx265"
	applyFlagOverrides(root.Flags(), &s)

	assert.Equal(t, 0.02, s.Detect.Margin)
	assert.Equal(t, 30, s.Encode.CRF)
	assert.Equal(t, "json", s.Logging.Format)
	assert.Equal(t, "-40dB", s.Detect.NoiseTolerance, "unset flag must not reset file value")
	assert.Equal(t, "libx265", s.Encode.Codec)
	assert.Equal(t, 60, s.Encode.FPS)
}

func TestRoot_MarginTooLargeFailsValidation(t *testing.T) {
	in, cfgPath := writeInput(t)

	_, err := execute(t, "--config", cfgPath, "-d", "0.1", "-m", "0.06", in)
	require.ErrorIs(t, err, pipeline.ErrInvalidMargin)
	assert.Contains(t, err.Error(), "config: ")
}

func TestRoot_NegativeMarginIsInvalidMargin(t *testing.T) {
	in, cfgPath := writeInput(t)

	_, err := execute(t, "--config", cfgPath, "--margin=-0.01", in)
	require.ErrorIs(t, err, pipeline.ErrInvalidMargin)
	assert.Equal(t, 1, strings.Count(err.Error(), "config: "), err.Error())
}

func TestPlan_ValidationErrorPrefixedOnce(t *testing.T) {
	in, cfgPath := writeInput(t)

	_, err := execute(t, "plan", "--config", cfgPath, "-d", "0.1", "-m", "0.06", in)
	require.ErrorIs(t, err, pipeline.ErrInvalidMargin)
	assert.Equal(t, 1, strings.Count(err.Error(), "config: "), err.Error())
}

func TestRoot_MissingInput(t *testing.T) {
	_, cfgPath := writeInput(t)

	_, err := execute(t, "--config", cfgPath, filepath.Join(t.TempDir(), "nope.mp4"))
	require.ErrorIs(t, err, pipeline.ErrInputNotFound)
	assert.Contains(t, err.Error(), "the input file could not be found")
}

func TestRoot_RequiresOneArg(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s), received 0")
}

func TestPlan_RejectsEncodeFlags(t *testing.T) {
	in, cfgPath := writeInput(t)

	_, err := execute(t, "plan", "--config", cfgPath, "--fps", "30", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --fps")
}

func TestDeps_ReportsMissingBinary(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`[tools]
ffmpeg = "silencecut-no-such-ffmpeg"
ffprobe = "silencecut-no-such-ffprobe"
`), 0o644))

	out, err := execute(t, "deps", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing dependencies")
	assert.Contains(t, out, "silencecut-no-such-ffmpeg")
	assert.Contains(t, out, "missing")
}

func TestRenderDeps(t *testing.T) {
	out := renderDeps([]deps.Status{
		{Name: "FFmpeg", Command: "ffmpeg", Available: true, Path: "/usr/bin/ffmpeg"},
		{Name: "FFprobe", Command: "ffprobe", Detail: `binary "ffprobe" not found`},
	})
	assert.Contains(t, out, "/usr/bin/ffmpeg")
	assert.Contains(t, out, `binary "ffprobe" not found`)
}

func TestWritePlan(t *testing.T) {
	p := types.Plan{
		Silences:    types.SilenceBoundaries{2, 3},
		Duration:    10,
		Intervals:   []types.Interval{{Start: 0, End: 2}, {Start: 3, End: 10}},
		VideoFilter: "select='between(t,0.0,2.0)+between(t,3.0,10.0)', setpts=N/FRAME_RATE/TB",
		AudioFilter: "aselect='between(t,0.0,2.0)+between(t,3.0,10.0)', asetpts=N/SR/TB",
	}
	var buf bytes.Buffer
	writePlan(&buf, p)

	out := buf.String()
	assert.Contains(t, out, "7.000s")
	assert.Contains(t, out, "kept 9.000s, removed 1.000s, silences 1")
	assert.Contains(t, out, "video filter: "+p.VideoFilter)
	assert.Contains(t, out, "audio filter: "+p.AudioFilter)
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "only")
	assert.Empty(t, renderTable(nil, nil, nil))
}
