// Package orbital is a deterministic two-body astrodynamics core: orbital
// elements and state vectors, Kepler's equation, trajectory integrators
// under gravity and thrust, and patched-conic gravity assist geometry.
// All distances are in kilometers, speeds in km/s, gravitational
// parameters in km³/s² and angles in radians via unit.Angle.
package orbital

import "math"

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// EarthStdGravity is g₀ in km/s², used by the rocket equation.
	EarthStdGravity = 9.80665e-3
	// J2000 is the Julian date of the J2000.0 reference epoch.
	J2000 = 2451545.0
)

// Distance is a length in kilometers.
type Distance float64

// Km returns the distance as a raw float64 in kilometers.
func (d Distance) Km() float64 { return float64(d) }

// Velocity is a speed in kilometers per second.
type Velocity float64

// KmS returns the speed as a raw float64 in km/s.
func (v Velocity) KmS() float64 { return float64(v) }

// GM is a gravitational parameter μ in km³/s².
type GM float64

// Mass is a mass in kilograms.
type Mass float64

// Eccentricity is a validated non-negative orbit eccentricity.
type Eccentricity float64

// NewEccentricity checks the domain of e and returns it typed. Negative
// and NaN values fail.
func NewEccentricity(e float64) (Eccentricity, error) {
	if e < 0 || math.IsNaN(e) {
		return 0, ErrNegativeEccentricity
	}
	return Eccentricity(e), nil
}

// Circular returns whether this orbit is circular within the tolerance
// used for the degenerate-regime handling of element conversions.
func (e Eccentricity) Circular() bool { return float64(e) < eccentricityε }

// Elliptic returns whether this orbit is closed.
func (e Eccentricity) Elliptic() bool { return float64(e) < 1 }

// Parabolic returns whether this orbit is exactly parabolic. In floating
// point this is a boundary case: prefer Elliptic and Hyperbolic checks.
func (e Eccentricity) Parabolic() bool { return float64(e) == 1 }

// Hyperbolic returns whether this orbit is open.
func (e Eccentricity) Hyperbolic() bool { return float64(e) > 1 }
