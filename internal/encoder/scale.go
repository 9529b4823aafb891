package encoder

import "math"

// FitWidth computes output dimensions under a maximum-width constraint.
// Aspect ratio is preserved, the video is never upscaled, and both
// dimensions are rounded down to the nearest even integer — the target
// encoders reject odd dimensions. Pure and total for inputs >= 1.
func FitWidth(origW, origH, maxW int) (int, int) {
	outW, outH := origW, origH
	if maxW > 0 && origW > maxW {
		outW = maxW
		outH = int(math.Round(float64(origH) * float64(maxW) / float64(origW)))
	}
	return evenDown(outW), evenDown(outH)
}

func evenDown(v int) int {
	return v &^ 1
}
