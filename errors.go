package orbital

import (
	"errors"
	"fmt"
	"time"
)

// Domain failures returned by the core. Invalid solver or integrator
// configuration is a programmer error and panics instead of returning one
// of these.
var (
	// ErrNegativeEccentricity is returned when constructing an eccentricity below zero.
	ErrNegativeEccentricity = errors.New("eccentricity must be non-negative")
	// ErrUnsupportedConic is returned when solving Kepler's equation for a
	// parabolic or hyperbolic orbit, which uses a different equation altogether.
	ErrUnsupportedConic = errors.New("kepler solver only supports closed orbits (e < 1)")
	// ErrNonPositiveμ is returned for a zero or negative gravitational parameter.
	ErrNonPositiveμ = errors.New("gravitational parameter must be strictly positive")
	// ErrNonPositiveRadius is returned for a zero or negative radius or distance.
	ErrNonPositiveRadius = errors.New("radius must be strictly positive")
	// ErrUndefinedSemiMajorAxis is returned where a formula is undefined for
	// the given semi-major axis, e.g. the period of a non-elliptical orbit.
	ErrUndefinedSemiMajorAxis = errors.New("semi-major axis out of the formula's domain")
	// ErrNonPositiveVe is returned for a zero or negative specific impulse or
	// exhaust velocity.
	ErrNonPositiveVe = errors.New("exhaust velocity must be strictly positive")
	// ErrMassRatioOverflow is returned when exp(Δv/ve) exceeds the float64 range.
	ErrMassRatioOverflow = errors.New("mass ratio overflows, Δv too large for this exhaust velocity")
	// ErrBallisticOnly is returned when handing a thrusting profile to an
	// integrator which only supports coasting arcs.
	ErrBallisticOnly = errors.New("integrator only supports ballistic arcs")
	// ErrNegativeDuration is returned when propagating backwards.
	ErrNegativeDuration = errors.New("propagation duration must not be negative")
	// ErrStepUnderflow is returned when the adaptive controller shrinks the
	// step below the resolution of the time variable.
	ErrStepUnderflow = errors.New("step size underflow")
	// ErrDegenerateGeometry is returned when a flyby plane cannot be built
	// from the provided vectors.
	ErrDegenerateGeometry = errors.New("flyby plane normal is parallel to the approach asymptote")
	// ErrNonPositiveVinf is returned for a zero or negative hyperbolic excess
	// speed.
	ErrNonPositiveVinf = errors.New("hyperbolic excess speed must be strictly positive")
	// ErrBurnExceedsSpeed is returned when a retrograde periapsis burn is
	// larger than the periapsis speed itself.
	ErrBurnExceedsSpeed = errors.New("burn exceeds the periapsis speed")
	// ErrNotHyperbolic is returned when computing B-plane parameters of a
	// closed orbit.
	ErrNotHyperbolic = errors.New("B-plane requires a hyperbolic orbit")
	// ErrNoEphemeris is returned for bodies without mean orbital elements.
	ErrNoEphemeris = errors.New("no ephemeris for this body")
	// ErrEphemerisRange is returned for dates outside the fit interval of the
	// mean elements.
	ErrEphemerisRange = errors.New("date outside the 1800 to 2050 ephemeris window")
)

// ConvergenceError reports an iterative solver which hit its iteration cap
// before the correction fell under tolerance. The residual is the value of
// the defining equation at the last iterate.
type ConvergenceError struct {
	Iterations int
	Residual   float64
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d iterations (residual %.3e)", e.Iterations, e.Residual)
}

// BudgetError reports an adaptive integration which exhausted its step
// budget before covering the requested duration. LastStep is the last
// accepted step size in seconds.
type BudgetError struct {
	Steps    int
	LastStep float64
	Elapsed  time.Duration
}

func (e BudgetError) Error() string {
	return fmt.Sprintf("step budget exhausted after %d steps (covered %s, last step %.3e s)", e.Steps, e.Elapsed, e.LastStep)
}
