package encoder

import (
	"strconv"
	"strings"

	"github.com/brianmathews/PPTcrunch/internal/progress"
)

// ProgressState accumulates values across ffmpeg -progress key=value lines
// until a "progress" marker flushes an update.
type ProgressState struct {
	OutTimeUs int64
	SpeedStr  string
}

// UpdateFromLine consumes one line of ffmpeg -progress output. It returns an
// update (and ok=true) only on the "progress" marker lines.
func (ps *ProgressState) UpdateFromLine(line string, jobID string, durationSec float64) (progress.Update, bool) {
	kv := strings.SplitN(line, "=", 2)
	if len(kv) != 2 {
		return progress.Update{}, false
	}

	key := strings.TrimSpace(kv[0])
	val := strings.TrimSpace(kv[1])

	switch key {
	case "out_time_ms":
		// Despite the name, ffmpeg reports microseconds here.
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "speed":
		ps.SpeedStr = val
	case "progress":
		percent := -1.0
		if durationSec > 0 {
			den := durationSec * 1_000_000
			percent = (float64(ps.OutTimeUs) / den) * 100.0
			if percent > 100 {
				percent = 100
			}
		}
		return progress.Update{
			JobID:   jobID,
			Stage:   progress.StageEncoding,
			Percent: percent,
			Speed:   ps.SpeedStr,
			Message: "Encoding",
		}, true
	}

	return progress.Update{}, false
}
