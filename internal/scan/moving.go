package scan

// MovingAverage computes a centered moving average over the sample
// values. Positions where the window would reach past either end get
// nil, mirroring how rolling means leave edges blank. Even windows lean
// one sample toward the start.
func MovingAverage(samples []Sample, window int) []*float64 {
	out := make([]*float64, len(samples))
	if window <= 0 || window > len(samples) {
		return out
	}
	for i := range samples {
		lo := i - (window-1)/2
		hi := lo + window
		if lo < 0 || hi > len(samples) {
			continue
		}
		sum := 0.0
		for _, s := range samples[lo:hi] {
			sum += s.Value
		}
		v := sum / float64(window)
		out[i] = &v
	}
	return out
}
