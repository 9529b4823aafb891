package format

import (
	"fmt"
	"strconv"
)

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	var buf [20]byte
	frac := float64(b) / float64(div)
	s := strconv.AppendFloat(buf[:0], frac, 'f', 1, 64)
	suffix := []string{"KB", "MB", "GB", "TB"}[exp]
	return string(s) + " " + suffix
}

// Reduction renders the size change from original to final as a percentage
// string, e.g. "-37.2%". Returns "0.0%" when the original size is unknown.
func Reduction(original, final int64) string {
	if original <= 0 {
		return "0.0%"
	}
	pct := (float64(final) - float64(original)) / float64(original) * 100
	return fmt.Sprintf("%+.1f%%", pct)
}
