package filter

import (
	"strconv"
	"strings"

	"github.com/forPelevin/silencecut/internal/types"
)

// Intervals expands every keep pair by margin on both sides. Each boundary is
// clamped against the first and last timeline values only, so neighbouring
// intervals may touch or overlap.
func Intervals(segments types.KeepSegments, margin float64) []types.Interval {
	pairs := segments.Pairs()
	first, last := segments.Start(), segments.End()
	out := make([]types.Interval, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, types.Interval{
			Start: max(p.Start-margin, first),
			End:   min(p.End+margin, last),
		})
	}
	return out
}

// KeepPredicate returns a '+'-joined (logical OR) list of between(t,a,b) tests.
func KeepPredicate(segments types.KeepSegments, margin float64) string {
	ivs := Intervals(segments, margin)
	preds := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		preds = append(preds, "between(t,"+formatSeconds(iv.Start)+","+formatSeconds(iv.End)+")")
	}
	return strings.Join(preds, "+")
}

// Video selects frames inside the keep intervals and renumbers timestamps by frame rate.
func Video(segments types.KeepSegments, margin float64) string {
	return "select='" + KeepPredicate(segments, margin) + "', setpts=N/FRAME_RATE/TB"
}

// Audio selects samples inside the keep intervals and renumbers timestamps by sample rate.
func Audio(segments types.KeepSegments, margin float64) string {
	return "aselect='" + KeepPredicate(segments, margin) + "', asetpts=N/SR/TB"
}

// formatSeconds prints the shortest decimal that parses back to v exactly.
// Integral values keep a ".0" so cut points read as seconds, not frame counts.
func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
