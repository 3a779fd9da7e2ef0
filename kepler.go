package orbital

import (
	"math"

	"github.com/soniakeys/unit"
)

const (
	// keplerε is the convergence tolerance on the Newton correction, in radians.
	keplerε = 1e-12
	// keplerMaxIt caps the Newton iterations before reporting non-convergence.
	keplerMaxIt = 50
)

// checkClosed rejects the conic regimes the elliptical Kepler equation
// does not cover. The hyperbolic equation M = e sinh H − H is a separate
// problem and is reported as unsupported rather than approximated.
func checkClosed(e Eccentricity) error {
	if e < 0 {
		return ErrNegativeEccentricity
	}
	if !e.Elliptic() {
		return ErrUnsupportedConic
	}
	return nil
}

// MeanToEccentricAnomaly solves Kepler's equation M = E − e sin E for E by
// Newton iteration, seeded with the Danby starter E₀ = M + e sin M. It
// converges when the correction falls below keplerε; hitting the iteration
// cap returns the last iterate along with a ConvergenceError carrying the
// equation residual. The circular case needs no special path: the first
// correction is already zero.
func MeanToEccentricAnomaly(M unit.Angle, e Eccentricity) (unit.Angle, error) {
	if err := checkClosed(e); err != nil {
		return 0, err
	}
	ε := float64(e)
	m := M.Mod1().Rad()
	E := m + ε*math.Sin(m)
	for it := 0; it < keplerMaxIt; it++ {
		ΔE := (E - ε*math.Sin(E) - m) / (1 - ε*math.Cos(E))
		E -= ΔE
		if math.Abs(ΔE) < keplerε {
			return unit.Angle(E), nil
		}
	}
	return unit.Angle(E), ConvergenceError{keplerMaxIt, math.Abs(E - ε*math.Sin(E) - m)}
}

// EccentricToMeanAnomaly applies Kepler's equation in its closed form.
func EccentricToMeanAnomaly(E unit.Angle, e Eccentricity) (unit.Angle, error) {
	if err := checkClosed(e); err != nil {
		return 0, err
	}
	return (E - unit.Angle(float64(e)*E.Sin())).Mod1(), nil
}

// EccentricToTrueAnomaly converts via the half-angle tangent identity,
// which is quadrant-safe through atan2.
func EccentricToTrueAnomaly(E unit.Angle, e Eccentricity) (unit.Angle, error) {
	if err := checkClosed(e); err != nil {
		return 0, err
	}
	sE2, cE2 := E.Div(2).Sincos()
	ν := 2 * math.Atan2(math.Sqrt(1+float64(e))*sE2, math.Sqrt(1-float64(e))*cE2)
	return unit.Angle(ν).Mod1(), nil
}

// TrueToEccentricAnomaly is the inverse half-angle identity.
func TrueToEccentricAnomaly(ν unit.Angle, e Eccentricity) (unit.Angle, error) {
	if err := checkClosed(e); err != nil {
		return 0, err
	}
	sν2, cν2 := ν.Div(2).Sincos()
	E := 2 * math.Atan2(math.Sqrt(1-float64(e))*sν2, math.Sqrt(1+float64(e))*cν2)
	return unit.Angle(E).Mod1(), nil
}

// MeanToTrueAnomaly chains the Kepler solve with the half-angle identity.
func MeanToTrueAnomaly(M unit.Angle, e Eccentricity) (unit.Angle, error) {
	E, err := MeanToEccentricAnomaly(M, e)
	if err != nil {
		return 0, err
	}
	return EccentricToTrueAnomaly(E, e)
}

// TrueToMeanAnomaly is the closed-form inverse of MeanToTrueAnomaly.
func TrueToMeanAnomaly(ν unit.Angle, e Eccentricity) (unit.Angle, error) {
	E, err := TrueToEccentricAnomaly(ν, e)
	if err != nil {
		return 0, err
	}
	return EccentricToMeanAnomaly(E, e)
}

// MeanMotion returns n = √(μ/a³) in rad/s.
// Panics on a non-elliptical semi-major axis, for which n is undefined.
func MeanMotion(μ GM, a Distance) float64 {
	if a <= 0 {
		panic("mean motion is only defined for elliptical orbits (a > 0)")
	}
	return math.Sqrt(float64(μ) / math.Pow(float64(a), 3))
}

// PropagateMeanAnomaly advances M₀ by Δt seconds at constant mean motion
// n in rad/s, wrapped into [0, 2π).
func PropagateMeanAnomaly(M0 unit.Angle, n, Δt float64) unit.Angle {
	return (M0 + unit.Angle(n*Δt)).Mod1()
}
