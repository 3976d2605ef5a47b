package logic

// DebounceCounter latches a predicate once it has held for a number of
// consecutive cycles. A single failing cycle resets the streak and, because
// the latch is recomputed every cycle, drops the latch immediately.
type DebounceCounter struct {
	threshold int
	streak    int
	latched   bool
}

// NewDebounceCounter creates a counter that latches after threshold
// consecutive matching cycles. A threshold below 1 is treated as 1.
func NewDebounceCounter(threshold int) *DebounceCounter {
	if threshold < 1 {
		threshold = 1
	}
	return &DebounceCounter{threshold: threshold}
}

// Update feeds the predicate result for one cycle and returns the latch.
func (c *DebounceCounter) Update(match bool) bool {
	if match {
		// Saturate: only the comparison with threshold is observable.
		if c.streak < c.threshold {
			c.streak++
		}
	} else {
		c.streak = 0
	}
	c.latched = c.streak >= c.threshold
	return c.latched
}

// Latched returns the result of the last Update.
func (c *DebounceCounter) Latched() bool { return c.latched }

// Streak returns the current number of consecutive matching cycles.
func (c *DebounceCounter) Streak() int { return c.streak }

// Threshold returns the configured streak length.
func (c *DebounceCounter) Threshold() int { return c.threshold }

// between reports whether v lies in [min, max].
func between(v, min, max uint16) bool {
	return v >= min && v <= max
}

// ShutdownMatch reports whether a sample looks like a powered-down host
// board: supply line high and the three other lines dead.
func ShutdownMatch(s Sample) bool {
	return s.A2 > HighThreshold &&
		between(s.A3, 0, ShutdownRangeMax) &&
		between(s.A1, 0, ShutdownRangeMax) &&
		between(s.A0, 0, ShutdownRangeMax)
}

// SearchingMatch reports whether a sample looks like the robot is driving
// around looking for its charging contact.
func SearchingMatch(s Sample) bool {
	return s.A1 < SearchingLowMax && s.A2 < SearchingLowMax
}
