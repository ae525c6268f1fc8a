package viewer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default view angles (deg)
const (
	DefaultAzimuth   = -60.0
	DefaultElevation = 30.0
	RotateStep       = 15.0
)

// State is everything the viewer shows besides the history itself
type State struct {
	Iteration int
	Azimuth   float64 // deg, wrapped to [-180, 180)
	Elevation float64 // deg, clamped to [-90, 90]
}

// Initial returns the starting state for a history of n iterations
func Initial(iteration, n int) State {
	return State{
		Iteration: wrap(iteration, n),
		Azimuth:   DefaultAzimuth,
		Elevation: DefaultElevation,
	}
}

// Event is a viewer input
type Event interface {
	isEvent()
}

// Goto jumps to an iteration; out-of-range values wrap around
type Goto struct{ Iteration int }

// Step moves by Delta iterations, wrapping at either end
type Step struct{ Delta int }

// Rotate changes the view angles by the given amounts (deg)
type Rotate struct{ Azimuth, Elevation float64 }

// Quit ends the viewer loop
type Quit struct{}

func (Goto) isEvent()   {}
func (Step) isEvent()   {}
func (Rotate) isEvent() {}
func (Quit) isEvent()   {}

// Apply returns the state after event e for a history of n iterations. The
// second result is true when the event ends the session.
func Apply(s State, e Event, n int) (State, bool) {
	switch e := e.(type) {
	case Goto:
		s.Iteration = wrap(e.Iteration, n)
	case Step:
		s.Iteration = wrap(s.Iteration+e.Delta, n)
	case Rotate:
		s.Azimuth = wrapAngle(s.Azimuth + e.Azimuth)
		s.Elevation = math.Max(-90, math.Min(90, s.Elevation+e.Elevation))
	case Quit:
		return s, true
	}
	return s, false
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}

// ParseCommand turns one line of viewer input into an event:
//
//	n        next iteration
//	p        previous iteration
//	g N      go to iteration N
//	l, r     rotate left or right
//	u, d     tilt up or down
//	q        quit
func ParseCommand(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "n":
		return Step{Delta: 1}, nil
	case "p":
		return Step{Delta: -1}, nil
	case "g":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: g N")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid iteration %q", fields[1])
		}
		return Goto{Iteration: i}, nil
	case "l":
		return Rotate{Azimuth: -RotateStep}, nil
	case "r":
		return Rotate{Azimuth: RotateStep}, nil
	case "u":
		return Rotate{Elevation: RotateStep}, nil
	case "d":
		return Rotate{Elevation: -RotateStep}, nil
	case "q":
		return Quit{}, nil
	}
	return nil, fmt.Errorf("unknown command %q", fields[0])
}
