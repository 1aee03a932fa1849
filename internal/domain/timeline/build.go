package timeline

import "github.com/forPelevin/silencecut/internal/types"

// BuildKeepSegments turns detected silence boundaries into keep-interval
// boundaries: every stretch between silences, including before the first and
// after the last, is kept.
//
// An odd-length list means the detector stopped inside a silence. That silence
// runs to the end of the media and is closed at duration, which leaves an
// empty trailing keep pair (duration, duration). The result is then identical
// to a detector that reported the closing boundary itself, and the last value
// is always duration.
func BuildKeepSegments(silences types.SilenceBoundaries, duration float64) types.KeepSegments {
	out := make(types.KeepSegments, 0, len(silences)+3)
	out = append(out, 0.0)
	out = append(out, silences...)
	if len(silences)%2 != 0 {
		out = append(out, duration)
	}
	return append(out, duration)
}
