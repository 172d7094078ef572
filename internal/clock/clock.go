package clock

import "time"

// Clock abstracts time lookups so end-date rules stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Real is a Clock backed by the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Mock is a Clock that always returns a fixed time.
type Mock struct {
	T time.Time
}

func (m Mock) Now() time.Time { return m.T }
