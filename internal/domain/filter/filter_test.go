package filter

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/forPelevin/silencecut/internal/domain/timeline"
	"github.com/forPelevin/silencecut/internal/types"
)

func TestKeepPredicate_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		silences types.SilenceBoundaries
		duration float64
		margin   float64
		want     string
	}{
		{"no silence", nil, 7.25, 0, "between(t,0.0,7.25)"},
		{"single cut", types.SilenceBoundaries{2, 3}, 10, 0, "between(t,0.0,2.0)+between(t,3.0,10.0)"},
		{"margin touches", types.SilenceBoundaries{2, 3}, 10, 0.5, "between(t,0.0,2.5)+between(t,2.5,10.0)"},
		{"margin clamped at edges", types.SilenceBoundaries{0.25, 1}, 2, 0.125, "between(t,0.0,0.375)+between(t,0.875,2.0)"},
		{
			"unterminated trailing silence keeps margin",
			types.SilenceBoundaries{2, 3, 8}, 10, 0.125,
			"between(t,0.0,2.125)+between(t,2.875,8.125)+between(t,9.875,10.0)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := timeline.BuildKeepSegments(tt.silences, tt.duration)
			got := KeepPredicate(segs, tt.margin)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestKeepPredicate_Shape(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		var s types.SilenceBoundaries
		cur := 0.0
		silences := r.Intn(12)
		for i := 0; i < silences; i++ {
			cur += r.Float64() * 3
			start := cur
			cur += 0.1 + r.Float64()
			s = append(s, start, cur)
		}
		duration := cur + r.Float64()*5
		margin := r.Float64() * 0.05
		segs := timeline.BuildKeepSegments(s, duration)

		got := KeepPredicate(segs, margin)
		if !strings.HasPrefix(got, "between(t,") {
			t.Fatalf("predicate does not start with between: %q", got)
		}
		if strings.HasSuffix(got, "+") {
			t.Fatalf("predicate has trailing join: %q", got)
		}
		if c := strings.Count(got, "between("); c != len(segs)/2 {
			t.Fatalf("expected %d predicates, got %d", len(segs)/2, c)
		}
		if again := KeepPredicate(segs, margin); again != got {
			t.Fatalf("compilation not deterministic:\n%s\n%s", got, again)
		}
		for _, iv := range Intervals(segs, margin) {
			if iv.Start < segs[0] || iv.End > segs[len(segs)-1] {
				t.Fatalf("interval %+v escapes [%v, %v]", iv, segs[0], segs[len(segs)-1])
			}
		}
	}
}

func TestKeepPredicate_UnterminatedSilenceMatchesClosed(t *testing.T) {
	for _, margin := range []float64{0, 0.05, 0.125} {
		open := KeepPredicate(timeline.BuildKeepSegments(types.SilenceBoundaries{2, 3, 8}, 10), margin)
		closed := KeepPredicate(timeline.BuildKeepSegments(types.SilenceBoundaries{2, 3, 8, 10}, 10), margin)
		if open != closed {
			t.Fatalf("margin %v: unterminated %q, closed %q", margin, open, closed)
		}
	}
}

func TestVideoAndAudioWrappers(t *testing.T) {
	segs := types.KeepSegments{0, 2, 3, 10}
	if got, want := Video(segs, 0), "select='between(t,0.0,2.0)+between(t,3.0,10.0)', setpts=N/FRAME_RATE/TB"; got != want {
		t.Fatalf("video: expected %q, got %q", want, got)
	}
	if got, want := Audio(segs, 0), "aselect='between(t,0.0,2.0)+between(t,3.0,10.0)', asetpts=N/SR/TB"; got != want {
		t.Fatalf("audio: expected %q, got %q", want, got)
	}
}

func TestFormatSeconds_RoundTrips(t *testing.T) {
	for _, v := range []float64{0, 1, 0.1, 2.5, 12.345678901234, 3599.999999, 1e-7, 86400} {
		s := formatSeconds(v)
		got, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got != v {
			t.Fatalf("round trip %v -> %q -> %v", v, s, got)
		}
		if strings.ContainsAny(s, "eE") {
			t.Fatalf("unexpected exponent in %q", s)
		}
	}
	if got := formatSeconds(10); got != "10.0" {
		t.Fatalf("expected 10.0, got %s", got)
	}
}
