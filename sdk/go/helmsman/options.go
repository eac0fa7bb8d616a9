package helmsman

import "time"

// Option configures an Arbiter at creation time.
type Option func(*arbiterConfig)

type arbiterConfig struct {
	criticalLow     float64
	low             float64
	high            float64
	minModeDuration time.Duration
	initialMode     Mode
	clock           func() time.Time
}

// WithThresholds sets the three reliability boundaries. Ordering
// criticalLow <= low <= high is required.
func WithThresholds(criticalLow, low, high float64) Option {
	return func(c *arbiterConfig) {
		c.criticalLow = criticalLow
		c.low = low
		c.high = high
	}
}

// WithMinModeDuration sets the anti-oscillation dwell time after a
// committed mode change.
func WithMinModeDuration(d time.Duration) Option {
	return func(c *arbiterConfig) { c.minModeDuration = d }
}

// WithInitialMode sets the mode held at creation. Defaults to human.
func WithInitialMode(m Mode) Option {
	return func(c *arbiterConfig) { c.initialMode = m }
}

// WithClock injects a clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *arbiterConfig) { c.clock = clock }
}
