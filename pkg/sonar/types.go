// Package sonar implements the ultrasonic ranging pipeline.
//
// Four activities cooperate:
//
//	TriggerEmitter      pulses the trigger pin every period
//	EdgeTimer           times the echo pin between rising and falling edge (ISR)
//	DistanceConverter   turns echo widths into centimeters
//	DisplayPresenter    renders the latest distance on the 128x32 panel
//
// They exchange data through two bounded queues that drop on overflow and,
// in the semaphore coupling, a binary "measurement ready" signal.
package sonar

import (
	"fmt"
)

// PulseDuration is an echo pulse width in microseconds.
type PulseDuration uint32

// Distance is in centimeters.
type Distance float64

const (
	// SpeedOfSound in centimeters per microsecond.
	SpeedOfSound = 0.0343

	// MaxRange is the farthest distance displayed as a reading.
	MaxRange Distance = 400
	// BarFullScale is the distance of a full width progress bar.
	BarFullScale Distance = 200
)

// Convert computes the one way distance of an echo.
func Convert(d PulseDuration) Distance {
	return Distance((float64(d) * SpeedOfSound) / 2)
}

// PulseFor is the inverse of Convert rounded to the nearest microsecond.
func PulseFor(d Distance) PulseDuration {
	if d <= 0 {
		return 0
	}
	return PulseDuration(float64(d)*2/SpeedOfSound + 0.5)
}

// String implements fmt.Stringer.
func (d Distance) String() string {
	return fmt.Sprintf("%.2f cm", float64(d))
}

// String implements fmt.Stringer.
func (d PulseDuration) String() string {
	return fmt.Sprintf("%dus", uint32(d))
}
