package silencedetect

import (
	"fmt"
	"strconv"
	"strings"
)

// NoiseTolerance normalizes a silence threshold given either as an amplitude
// ratio ("0.03") or in decibels ("-30dB").
func NoiseTolerance(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("noise tolerance is empty")
	}
	if num, ok := cutSuffixFold(v, "db"); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(num), 64); err != nil {
			return "", fmt.Errorf("noise tolerance %q: invalid dB value", s)
		}
		return strings.TrimSpace(num) + "dB", nil
	}
	ratio, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", fmt.Errorf("noise tolerance %q: expected amplitude ratio or <value>dB", s)
	}
	if ratio < 0 {
		return "", fmt.Errorf("noise tolerance %q: amplitude ratio must not be negative", s)
	}
	return v, nil
}

// FilterSpec renders the ffmpeg silencedetect filter for the given threshold
// and minimum silence duration in seconds.
func FilterSpec(noise string, minDuration float64) string {
	return "silencedetect=n=" + noise + ":d=" + strconv.FormatFloat(minDuration, 'f', -1, 64)
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}
