package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silencecut.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func noEnv() envconfig.Lookuper {
	return envconfig.MapLookuper(map[string]string{})
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, path, exists, err := LoadWith(context.Background(), missing, noEnv())
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, missing, path)
	assert.Equal(t, "0.03", cfg.Detect.NoiseTolerance)
	assert.Equal(t, 0.1, cfg.Detect.MinDuration)
	assert.Equal(t, 60, cfg.Encode.FPS)
	assert.Equal(t, 23, cfg.Encode.CRF)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[detect]
noise_tolerance = "-35dB"
min_duration = 0.4
margin = 0.1

[encode]
codec = "libx265"
crf = 28

[s3]
bucket = "cuts"
allowed_hosts = ["minio.internal"]
`)

	cfg, _, exists, err := LoadWith(context.Background(), path, noEnv())
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "-35dB", cfg.Detect.NoiseTolerance)
	assert.Equal(t, 0.4, cfg.Detect.MinDuration)
	assert.Equal(t, 0.1, cfg.Detect.Margin)
	assert.Equal(t, "libx265", cfg.Encode.Codec)
	assert.Equal(t, 28, cfg.Encode.CRF)
	assert.Equal(t, 60, cfg.Encode.FPS, "unset keys keep defaults")
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, []string{"minio.internal"}, cfg.S3.AllowedHosts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[encode]
fps = 30
`)
	env := envconfig.MapLookuper(map[string]string{
		"SILENCECUT_FPS":              "24",
		"SILENCECUT_MARGIN":           "0.02",
		"SILENCECUT_FFMPEG":           "/opt/ffmpeg/bin/ffmpeg",
		"SILENCECUT_S3_ALLOWED_HOSTS": "a.internal,b.internal",
		"FPS":                         "999",
	})

	cfg, _, _, err := LoadWith(context.Background(), path, env)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Encode.FPS)
	assert.Equal(t, 0.02, cfg.Detect.Margin)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Tools.FFmpeg)
	assert.Equal(t, []string{"a.internal", "b.internal"}, cfg.S3.AllowedHosts)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[detect]
noise = "0.1"
`)
	_, _, _, err := LoadWith(context.Background(), path, noEnv())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "zero fps", env: map[string]string{"SILENCECUT_FPS": "0"}, want: "FPS"},
		{name: "crf out of range", env: map[string]string{"SILENCECUT_CRF": "99"}, want: "CRF"},
		{name: "unknown log format", env: map[string]string{"SILENCECUT_LOG_FORMAT": "xml"}, want: "Format"},
		{name: "unparsable number", env: map[string]string{"SILENCECUT_MIN_DURATION": "abc"}, want: "config:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := filepath.Join(t.TempDir(), "nope.toml")
			_, _, _, err := LoadWith(context.Background(), missing, envconfig.MapLookuper(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_NegativeMarginLeftToPipeline(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, _, err := LoadWith(context.Background(), missing, envconfig.MapLookuper(map[string]string{
		"SILENCECUT_MARGIN": "-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, -1.0, cfg.Detect.Margin)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/.config/silencecut/config.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/silencecut/config.toml"), got)

	got, err = expandPath("/etc/silencecut.toml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/silencecut.toml", got)
}
