package orbital

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// Mean ecliptic orbital elements of the major planets and their per-century
// rates, from E. M. Standish, "Keplerian Elements for Approximate Positions
// of the Major Planets" (JPL, Table 1). Valid for 1800 to 2050; positions
// are good to tens of arcseconds for the inner planets.
type meanElements struct {
	a, aDot float64 // au, au/century
	e, eDot float64
	i, iDot float64 // deg, deg/century
	L, LDot float64 // mean longitude, deg, deg/century
	ϖ, ϖDot float64 // longitude of perihelion, deg, deg/century
	Ω, ΩDot float64 // deg, deg/century
}

// Julian date bounds of the fit interval (1800 to 2050).
const (
	ephemJDMin = 2378496.5
	ephemJDMax = 2469807.5
)

// Earth uses the Earth-Moon barycenter elements.
var planetElements = map[string]meanElements{
	"Mercury": {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	"Venus": {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	"Earth": {1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
		100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0},
	"Mars": {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	"Jupiter": {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	"Saturn": {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	"Uranus": {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	"Neptune": {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	"Pluto": {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// HelioOrbit returns the heliocentric osculating orbit of this planet at a
// given time, in the J2000 ecliptic frame.
func (c CelestialObject) HelioOrbit(dt time.Time) (Orbit, error) {
	el, found := planetElements[c.Name]
	if !found {
		return Orbit{}, ErrNoEphemeris
	}
	jd := julian.TimeToJD(dt)
	if jd < ephemJDMin || jd > ephemJDMax {
		return Orbit{}, ErrEphemerisRange
	}
	t := (jd - J2000) / 36525
	a := (el.a + el.aDot*t) * AU
	e := el.e + el.eDot*t
	i := el.i + el.iDot*t
	L := el.L + el.LDot*t
	ϖ := el.ϖ + el.ϖDot*t
	Ω := el.Ω + el.ΩDot*t
	ν, err := MeanToTrueAnomaly(unit.AngleFromDeg(L-ϖ), Eccentricity(e))
	if err != nil {
		return Orbit{}, err
	}
	return *NewOrbitFromOE(a, e, i, Ω, ϖ-Ω, ν.Deg(), Sun), nil
}

// HelioState returns the heliocentric position and velocity of this planet
// at a given time, in the J2000 ecliptic frame.
func (c CelestialObject) HelioState(dt time.Time) (StateVector, error) {
	o, err := c.HelioOrbit(dt)
	if err != nil {
		return StateVector{}, err
	}
	return o.StateVector(), nil
}

// obliquity of the ecliptic at J2000
const eclObliquity = 23.43928 * deg2rad

// Ecl2Equ rotates a vector from the J2000 ecliptic frame to the J2000
// equatorial frame.
func Ecl2Equ(v []float64) []float64 {
	return MxV33(R1(-eclObliquity), v)
}

// Equ2Ecl rotates a vector from the J2000 equatorial frame to the J2000
// ecliptic frame.
func Equ2Ecl(v []float64) []float64 {
	return MxV33(R1(eclObliquity), v)
}
