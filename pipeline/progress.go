package pipeline

// ProgressFunc receives pipeline progress as a fraction in [0, 1].
// It is called from the goroutine running Process, in monotonically
// non-decreasing order. A nil ProgressFunc is permitted everywhere.
type ProgressFunc func(fraction float64)

// Progress milestones. Chunk processing occupies the sub-range between
// progressChunksBegin and progressChunksEnd, scaled by completed chunks.
const (
	progressValidated   = 0.05
	progressSanitized   = 0.15
	progressChunksBegin = 0.30
	progressChunksEnd   = 0.80
	progressMerged      = 0.90
	progressDone        = 1.0
)

// report invokes fn if non-nil, clamping the fraction to [0, 1].
func report(fn ProgressFunc, fraction float64) {
	if fn == nil {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	fn(fraction)
}

// chunkProgress maps completed-of-total chunks into the chunk sub-range.
func chunkProgress(completed, total int) float64 {
	if total <= 0 {
		return progressChunksEnd
	}
	frac := float64(completed) / float64(total)
	return progressChunksBegin + frac*(progressChunksEnd-progressChunksBegin)
}
