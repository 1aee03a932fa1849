package silencedetect

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/forPelevin/silencecut/internal/types"
)

const maxLineBytes = 1 << 20

// Parser extracts silence boundaries from a detector's diagnostic stream.
type Parser interface {
	Parse(r io.Reader) (types.SilenceBoundaries, error)
}

// LineParser reads ffmpeg silencedetect logs such as
//
//	[silencedetect @ 0x55d1c8] silence_start: 2.0045
//	[silencedetect @ 0x55d1c8] silence_end: 3.1 | silence_duration: 1.0955
//
// Lines that do not carry a parsable marker are skipped.
type LineParser struct{}

func (LineParser) Parse(r io.Reader) (types.SilenceBoundaries, error) {
	var out types.SilenceBoundaries
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	sc.Split(scanLogLines)
	for sc.Scan() {
		out = append(out, parseLine(sc.Text())...)
	}
	return out, sc.Err()
}

func parseLine(line string) []float64 {
	if !strings.Contains(line, "silencedetect") {
		return nil
	}
	var out []float64
	words := strings.Fields(line)
	for i := 0; i+1 < len(words); i++ {
		w := words[i]
		if !strings.Contains(w, "silence_start") && !strings.Contains(w, "silence_end") {
			continue
		}
		v, err := strconv.ParseFloat(words[i+1], 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// scanLogLines splits on '\n' and '\r'; ffmpeg rewrites its progress line with
// bare carriage returns.
func scanLogLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
