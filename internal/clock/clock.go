package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock time so guide numbers and cache expiry are
// testable.
type Clock interface {
	Now() time.Time
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)

type SystemClock struct{}

func NewSystemClock() Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
