package relax

// Monitor is the stopping rule: a solve is done once the sweep's max
// change falls below Delta or the epoch count reaches MaxIters. It holds
// no state of its own, so re-asking about a terminal solve re-confirms
// termination.
type Monitor struct {
	Delta    float64
	MaxIters int
}

func (m Monitor) Done(epochs int, maxChange float64) bool {
	return maxChange < m.Delta || epochs >= m.MaxIters
}
