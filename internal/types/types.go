package types

// SilenceBoundaries alternates silence starts (even indexes) and silence ends
// (odd indexes), in seconds, in the order the detector reported them.
type SilenceBoundaries []float64

// KeepSegments holds boundaries of the intervals to retain. Each pair
// (2i, 2i+1) is one interval.
type KeepSegments []float64

type Interval struct {
	Start float64 `json:"start_sec"`
	End   float64 `json:"end_sec"`
}

func (iv Interval) Length() float64 {
	if iv.End < iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// Start returns the first boundary, or 0 for an empty list.
func (k KeepSegments) Start() float64 {
	if len(k) == 0 {
		return 0
	}
	return k[0]
}

// End returns the last boundary, or 0 for an empty list.
func (k KeepSegments) End() float64 {
	if len(k) == 0 {
		return 0
	}
	return k[len(k)-1]
}

// Pairs returns the unexpanded keep intervals. A trailing unpaired boundary is ignored.
func (k KeepSegments) Pairs() []Interval {
	out := make([]Interval, 0, len(k)/2)
	for i := 0; i+1 < len(k); i += 2 {
		out = append(out, Interval{Start: k[i], End: k[i+1]})
	}
	return out
}

type Plan struct {
	Silences    SilenceBoundaries
	Duration    float64
	Margin      float64
	Segments    KeepSegments
	Intervals   []Interval
	VideoFilter string
	AudioFilter string
}

// Kept sums the lengths of the margin-expanded intervals, counting overlaps once.
func (p Plan) Kept() float64 {
	var total, reach float64
	first := true
	for _, iv := range p.Intervals {
		start := iv.Start
		if !first && start < reach {
			start = reach
		}
		if iv.End > start {
			total += iv.End - start
		}
		if first || iv.End > reach {
			reach = iv.End
		}
		first = false
	}
	return total
}

func (p Plan) Removed() float64 {
	r := p.Duration - p.Kept()
	if r < 0 {
		return 0
	}
	return r
}

type Manifest struct {
	Input       string     `json:"input"`
	Output      string     `json:"output"`
	DurationSec float64    `json:"duration_sec"`
	MarginSec   float64    `json:"margin_sec"`
	Silences    []float64  `json:"silences"`
	Intervals   []Interval `json:"intervals"`
	KeptSec     float64    `json:"kept_sec"`
	RemovedSec  float64    `json:"removed_sec"`
	VideoFilter string     `json:"video_filter"`
	AudioFilter string     `json:"audio_filter"`
	URL         string     `json:"url,omitempty"`
}

func NewManifest(input, output string, p Plan) Manifest {
	silences := p.Silences
	if silences == nil {
		silences = SilenceBoundaries{}
	}
	return Manifest{
		Input:       input,
		Output:      output,
		DurationSec: p.Duration,
		MarginSec:   p.Margin,
		Silences:    silences,
		Intervals:   p.Intervals,
		KeptSec:     p.Kept(),
		RemovedSec:  p.Removed(),
		VideoFilter: p.VideoFilter,
		AudioFilter: p.AudioFilter,
	}
}
