package clock

import "time"

// Clock abstracts time to keep the engine deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the device wall clock in its local zone.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}
