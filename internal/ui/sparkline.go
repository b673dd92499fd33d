package ui

import "slices"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders samples as exactly width block characters, scaled to the
// largest visible sample. Short input is padded on the left with zeros and
// long input keeps only the most recent width samples.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}

	samples := make([]float64, width)
	if len(data) >= width {
		copy(samples, data[len(data)-width:])
	} else {
		copy(samples[width-len(data):], data)
	}

	peak := slices.Max(samples)
	top := len(sparkBlocks) - 1

	out := make([]rune, width)
	for i, v := range samples {
		idx := 0
		if peak > 0 && v > 0 {
			idx = min(int(v/peak*float64(top)), top)
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}
