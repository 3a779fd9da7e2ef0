package orbital

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gonum/floats"
	"github.com/soniakeys/unit"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e1                          // 20 km
	velocityε     = 1e-6                         // in km/s
)

// Orbit defines an orbit via its orbital elements. The zero anomaly
// convention, the degenerate-regime substitutions and the textbook
// references follow Vallado, 4th edition.
type Orbit struct {
	a      Distance
	e      Eccentricity
	i      unit.Angle
	Ω      unit.Angle
	ω      unit.Angle
	ν      unit.Angle
	Origin CelestialObject // Orbit origin
}

// Energyξ returns the specific mechanical energy ξ in km²/s².
func (o Orbit) Energyξ() float64 {
	return -o.Origin.μ / (2 * float64(o.a))
}

// Tildeω returns the longitude of periapsis.
func (o Orbit) Tildeω() unit.Angle {
	return (o.ω + o.Ω).Mod1()
}

// TrueLongλ returns the *approximate* true longitude (cf. Vallado page 103).
// NOTE: One should only need this for equatorial orbits.
func (o Orbit) TrueLongλ() unit.Angle {
	return (o.ω + o.Ω + o.ν).Mod1()
}

// ArgLatitudeU returns the argument of latitude.
func (o Orbit) ArgLatitudeU() unit.Angle {
	return (o.ν + o.ω).Mod1()
}

// H returns the orbital angular momentum vector in km²/s.
func (o Orbit) H() Vec3[float64] {
	R, V := o.RV()
	return Cross(R, V)
}

// HNorm returns the norm of the orbital angular momentum.
func (o Orbit) HNorm() float64 {
	return float64(o.RNorm()) * float64(o.VNorm()) * o.CosΦfpa()
}

// CosΦfpa returns the cosine of the flight path angle.
// WARNING: As per Vallado page 105, *do not* use math.Acos(o.CosΦfpa())
// to get the flight path angle as you'll have a quadrant problem. Instead
// use math.Atan2(o.SinΦfpa(), o.CosΦfpa()).
func (o Orbit) CosΦfpa() float64 {
	e := float64(o.e)
	ecosν := e * o.ν.Cos()
	return (1 + ecosν) / math.Sqrt(1+2*ecosν+e*e)
}

// SinΦfpa returns the sine of the flight path angle, same warning as CosΦfpa.
func (o Orbit) SinΦfpa() float64 {
	e := float64(o.e)
	sinν, cosν := o.ν.Sincos()
	return (e * sinν) / math.Sqrt(1+2*e*cosν+e*e)
}

// SemiParameter returns the semi-parameter p = a(1−e²).
func (o Orbit) SemiParameter() Distance {
	return o.a * Distance(1-float64(o.e)*float64(o.e))
}

// Apoapsis returns the apoapsis radius.
func (o Orbit) Apoapsis() Distance {
	return o.a * Distance(1+float64(o.e))
}

// Periapsis returns the periapsis radius.
func (o Orbit) Periapsis() Distance {
	return o.a * Distance(1-float64(o.e))
}

// SinCosE returns the eccentric anomaly trig functions (sin and cos).
func (o Orbit) SinCosE() (sinE, cosE float64) {
	e := float64(o.e)
	sinν, cosν := o.ν.Sincos()
	denom := 1 + e*cosν
	sinE = math.Sqrt(1-e*e) * sinν / denom
	cosE = (e + cosν) / denom
	return
}

// EccentricAnomaly returns E for a closed orbit.
func (o Orbit) EccentricAnomaly() (unit.Angle, error) {
	return TrueToEccentricAnomaly(o.ν, o.e)
}

// MeanAnomaly returns M for a closed orbit.
func (o Orbit) MeanAnomaly() (unit.Angle, error) {
	return TrueToMeanAnomaly(o.ν, o.e)
}

// Period returns the period of this orbit. Only meaningful for closed orbits.
func (o Orbit) Period() time.Duration {
	// The time package does not trivially handle fractions of a second, so let's
	// compute this in a convoluted way...
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(float64(o.a), 3)/o.Origin.μ)
	duration, _ := time.ParseDuration(fmt.Sprintf("%.6fs", seconds))
	return duration
}

// RV returns the inertial position and velocity of this orbit, applying
// the circular and equatorial substitutions of Vallado algorithm 10.
func (o Orbit) RV() (Vec3[Distance], Vec3[Velocity]) {
	ν := o.ν
	ω := o.ω
	Ω := o.Ω
	if o.e.Circular() {
		ω = 0
		if o.i.Rad() < angleε {
			// Circular equatorial
			Ω = 0
			ν = o.TrueLongλ()
		} else {
			// Circular inclined
			ν = o.ArgLatitudeU()
		}
	} else if o.i.Rad() < angleε {
		Ω = 0
		ω = o.Tildeω()
	}
	return coe2rv(float64(o.a), float64(o.e), o.i.Rad(), Ω.Rad(), ω.Rad(), ν.Rad(), o.Origin.μ)
}

// R returns the radius vector.
func (o Orbit) R() Vec3[Distance] {
	R, _ := o.RV()
	return R
}

// RNorm returns the norm of the radius vector directly from the elements,
// which is cheaper than norm(R) when only the norm is needed.
func (o Orbit) RNorm() Distance {
	return o.SemiParameter() / Distance(1+float64(o.e)*o.ν.Cos())
}

// V returns the velocity vector.
func (o Orbit) V() Vec3[Velocity] {
	_, V := o.RV()
	return V
}

// VNorm returns the norm of the velocity vector directly from the energy,
// special-casing the circular and parabolic regimes.
func (o Orbit) VNorm() Velocity {
	if floats.EqualWithinAbs(float64(o.e), 0, eccentricityε) {
		return Velocity(math.Sqrt(o.Origin.μ / float64(o.RNorm())))
	}
	if floats.EqualWithinAbs(float64(o.e), 1, eccentricityε) {
		return Velocity(math.Sqrt(2 * o.Origin.μ / float64(o.RNorm())))
	}
	return Velocity(math.Sqrt(2 * (o.Origin.μ/float64(o.RNorm()) + o.Energyξ())))
}

// Elements returns the nine orbital elements which work in all types of orbits.
func (o Orbit) Elements() (a Distance, e Eccentricity, i, Ω, ω, ν, λ, tildeω, u unit.Angle) {
	return o.a, o.e, o.i, o.Ω, o.ω, o.ν, o.TrueLongλ(), o.Tildeω(), o.ArgLatitudeU()
}

// StateVector returns this orbit as a Cartesian state.
func (o Orbit) StateVector() StateVector {
	R, V := o.RV()
	return StateVector{R, V, GM(o.Origin.μ)}
}

// String implements the stringer interface (hence the value receiver).
func (o Orbit) String() string {
	if o.e.Circular() {
		if o.i.Rad() > angleε {
			return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f u=%.3f", float64(o.a), float64(o.e), o.i.Deg(), o.Ω.Deg(), o.ArgLatitudeU().Deg())
		}
		// Equatorial
		return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f λ=%.3f", float64(o.a), float64(o.e), o.i.Deg(), o.Ω.Deg(), o.TrueLongλ().Deg())
	}
	return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", float64(o.a), float64(o.e), o.i.Deg(), o.Ω.Deg(), o.ω.Deg(), o.ν.Deg())
}

// Equals returns whether two orbits are identical with free true anomaly.
// Use StrictlyEquals to also check true anomaly.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !floats.EqualWithinAbs(float64(o.a), float64(o1.a), distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !floats.EqualWithinAbs(float64(o.e), float64(o1.e), eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !floats.EqualWithinAbs(o.i.Rad(), o1.i.Rad(), angleε) {
		return false, errors.New("inclination invalid")
	}
	if !floats.EqualWithinAbs(o.Ω.Rad(), o1.Ω.Rad(), angleε) {
		return false, errors.New("RAAN invalid")
	}
	if o.e.Circular() {
		if o.i.Rad() > angleε {
			// Inclined
			if !floats.EqualWithinAbs(o.ArgLatitudeU().Rad(), o1.ArgLatitudeU().Rad(), angleε) {
				return false, errors.New("argument of latitude invalid")
			}
		} else if !floats.EqualWithinAbs(o.TrueLongλ().Rad(), o1.TrueLongλ().Rad(), angleε) {
			return false, errors.New("true longitude invalid")
		}
	} else if !floats.EqualWithinAbs(o.ω.Rad(), o1.ω.Rad(), angleε) {
		return false, errors.New("argument of perigee invalid")
	}
	return true, nil
}

// StrictlyEquals returns whether two orbits are identical.
func (o Orbit) StrictlyEquals(o1 Orbit) (bool, error) {
	// Only check the anomaly for non-circular orbits
	if float64(o.e) > eccentricityε && !floats.EqualWithinAbs(o.ν.Rad(), o1.ν.Rad(), angleε) {
		return false, errors.New("true anomaly invalid")
	}
	return o.Equals(o1)
}

// NewOrbitFromOE creates an orbit from the orbital elements.
// WARNING: Angles must be in degrees not radians.
func NewOrbitFromOE(a, e, i, Ω, ω, ν float64, c CelestialObject) *Orbit {
	// Making an approximation for circular and equatorial orbits.
	if e < eccentricityε {
		e = eccentricityε
	}
	if i < Rad2deg(angleε) {
		i = Rad2deg(angleε)
	}
	return &Orbit{Distance(a), Eccentricity(e), unit.Angle(Deg2rad(i)),
		unit.Angle(Deg2rad(Ω)), unit.Angle(Deg2rad(ω)), unit.Angle(Deg2rad(ν)), c}
}

// NewOrbitFromRV returns the orbital elements from the R and V vectors in km
// and km/s. Hyperbolic states yield e>1 and a<0, which every element formula
// here supports; only the closed-form Kepler solving does not.
func NewOrbitFromRV(R Vec3[Distance], V Vec3[Velocity], c CelestialObject) *Orbit {
	a, e, i, Ω, ω, ν := RV2COE(R, V, GM(c.μ))
	return &Orbit{a, e, i, Ω, ω, ν, c}
}

// COE2RV rotates the perifocal-frame state of the given classical elements
// through the 3-1-3 Euler sequence (ω, i, Ω) into the inertial frame.
func COE2RV(a Distance, e Eccentricity, i, Ω, ω, ν unit.Angle, μ GM) (Vec3[Distance], Vec3[Velocity]) {
	return coe2rv(float64(a), float64(e), i.Rad(), Ω.Rad(), ω.Rad(), ν.Rad(), float64(μ))
}

func coe2rv(a, e, i, Ω, ω, ν, μ float64) (Vec3[Distance], Vec3[Velocity]) {
	p := a * (1 - e*e)
	sinν, cosν := math.Sincos(ν)
	R := []float64{p * cosν / (1 + e*cosν), p * sinν / (1 + e*cosν), 0}
	V := []float64{-math.Sqrt(μ/p) * sinν, math.Sqrt(μ/p) * (e + cosν), 0}
	R = PQW2ECI(i, ω, Ω, R)
	V = PQW2ECI(i, ω, Ω, V)
	return Vec3FromSlice[Distance](R), Vec3FromSlice[Velocity](V)
}

// quadrantAcos returns acos(x/y) with rounding spill clamped: a ratio which
// lands just outside [−1, 1] would otherwise answer NaN.
func quadrantAcos(x, y float64) float64 {
	c := x / y
	if absc := math.Abs(c); absc > 1 && floats.EqualWithinAbs(absc, 1, 1e-9) {
		c = sign(c)
	}
	return math.Acos(c)
}

// RV2COE computes the classical orbital elements from a Cartesian state.
// From Vallado's RV2COE, page 113, including the circular and equatorial
// special cases: a circular orbit stores its argument of latitude (or true
// longitude when also equatorial) in ν, an equatorial elliptical orbit
// stores its longitude of periapsis in ω. Orbit.RV applies the matching
// substitutions on the way back, so the round trip is consistent.
func RV2COE(Rv Vec3[Distance], Vv Vec3[Velocity], μgm GM) (Distance, Eccentricity, unit.Angle, unit.Angle, unit.Angle, unit.Angle) {
	μ := float64(μgm)
	R := Rv.Slice()
	V := Vv.Slice()
	hVec := cross(R, V)
	n := cross([]float64{0, 0, 1}, hVec)
	v := norm(V)
	r := norm(R)
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - dot(R, V)*V[i]) / μ
	}
	e := norm(eVec)
	i := quadrantAcos(hVec[2], norm(hVec))
	equatorial := i < angleε || i > math.Pi-angleε
	circular := e < eccentricityε

	var Ω, ω, ν float64
	if !equatorial {
		Ω = quadrantAcos(n[0], norm(n))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
	}
	switch {
	case circular && equatorial:
		// True longitude λ in ν; reconstructed through TrueLongλ.
		ν = quadrantAcos(R[0], r)
		if R[1] < 0 {
			ν = 2*math.Pi - ν
		}
	case circular:
		// Argument of latitude u in ν; reconstructed through ArgLatitudeU.
		ν = quadrantAcos(dot(n, R), norm(n)*r)
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	case equatorial:
		// Longitude of periapsis in ω; reconstructed through Tildeω.
		ω = quadrantAcos(eVec[0], e)
		if eVec[1] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = trueAnomalyFromEVec(eVec, R, V, e, r)
	default:
		ω = quadrantAcos(dot(n, eVec), norm(n)*e)
		if math.IsNaN(ω) {
			ω = 0
		}
		if eVec[2] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = trueAnomalyFromEVec(eVec, R, V, e, r)
	}
	// Fix rounding errors.
	i = math.Mod(i, 2*math.Pi)
	Ω = math.Mod(Ω, 2*math.Pi)
	ω = math.Mod(ω, 2*math.Pi)
	ν = math.Mod(ν, 2*math.Pi)
	return Distance(a), Eccentricity(e), unit.Angle(i), unit.Angle(Ω), unit.Angle(ω), unit.Angle(ν)
}

func trueAnomalyFromEVec(eVec, R, V []float64, e, r float64) float64 {
	ν := quadrantAcos(dot(eVec, R), e*r)
	if dot(R, V) < 0 {
		ν = 2*math.Pi - ν
	}
	return ν
}

// StateVector is the Cartesian currency between element space and the
// propagation and flyby layers: a position, a velocity and the central
// body's gravitational parameter.
type StateVector struct {
	R Vec3[Distance]
	V Vec3[Velocity]
	μ GM
}

// NewStateVector assembles a state around a point mass μ.
func NewStateVector(R Vec3[Distance], V Vec3[Velocity], μ GM) StateVector {
	return StateVector{R, V, μ}
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (s StateVector) GM() GM { return s.μ }

// Energyξ returns the specific mechanical energy v²/2 − μ/r in km²/s².
func (s StateVector) Energyξ() float64 {
	v := float64(s.V.Norm())
	r := float64(s.R.Norm())
	return v*v/2 - float64(s.μ)/r
}

// HVec returns the specific angular momentum vector R×V in km²/s.
func (s StateVector) HVec() Vec3[float64] {
	return Cross(s.R, s.V)
}

// ToOrbit expresses this state as osculating elements about the given body.
// The body's gravitational parameter overrides the state's μ.
func (s StateVector) ToOrbit(c CelestialObject) *Orbit {
	return NewOrbitFromRV(s.R, s.V, c)
}

// Helper functions go here.

// Radii2ae returns the semi major axis and the eccentricity from the radii.
func Radii2ae(rA, rP Distance) (a Distance, e Eccentricity) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = Eccentricity(float64(rA-rP) / float64(rA+rP))
	return
}

// VisViva returns the orbital speed at radius r on an orbit of semi-major
// axis a: v = √(μ(2/r − 1/a)). Valid for any sign of a; the parabolic
// limit a→±∞ degenerates to the escape velocity √(2μ/r). A radius beyond
// the apoapsis of a closed orbit has no real speed and errors out.
func VisViva(μ GM, r, a Distance) (Velocity, error) {
	if μ <= 0 {
		return 0, ErrNonPositiveμ
	}
	if r <= 0 {
		return 0, ErrNonPositiveRadius
	}
	v2 := float64(μ) * (2/float64(r) - 1/float64(a))
	if v2 < 0 {
		return 0, ErrUndefinedSemiMajorAxis
	}
	return Velocity(math.Sqrt(v2)), nil
}

// EscapeVelocity is the parabolic limit of VisViva at radius r.
func EscapeVelocity(μ GM, r Distance) (Velocity, error) {
	if μ <= 0 {
		return 0, ErrNonPositiveμ
	}
	if r <= 0 {
		return 0, ErrNonPositiveRadius
	}
	return Velocity(math.Sqrt(2 * float64(μ) / float64(r))), nil
}

// OrbitalPeriod returns T = 2π√(a³/μ), defined for elliptical orbits only.
func OrbitalPeriod(μ GM, a Distance) (time.Duration, error) {
	if μ <= 0 {
		return 0, ErrNonPositiveμ
	}
	if a <= 0 {
		return 0, ErrUndefinedSemiMajorAxis
	}
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(float64(a), 3)/float64(μ))
	duration, _ := time.ParseDuration(fmt.Sprintf("%.6fs", seconds))
	return duration, nil
}

// SpecificEnergy returns ξ = −μ/(2a) in km²/s².
func SpecificEnergy(μ GM, a Distance) (float64, error) {
	if μ <= 0 {
		return 0, ErrNonPositiveμ
	}
	if a == 0 {
		return 0, ErrUndefinedSemiMajorAxis
	}
	return -float64(μ) / (2 * float64(a)), nil
}

// SpecificAngularMomentum returns h = √(μ a (1−e²)) in km²/s. The sign
// pairing of a and e must match the orbit type, otherwise the radicand
// goes negative and the pairing is rejected.
func SpecificAngularMomentum(μ GM, a Distance, e Eccentricity) (float64, error) {
	if μ <= 0 {
		return 0, ErrNonPositiveμ
	}
	if e < 0 {
		return 0, ErrNegativeEccentricity
	}
	h2 := float64(μ) * float64(a) * (1 - float64(e)*float64(e))
	if h2 < 0 {
		return 0, ErrUndefinedSemiMajorAxis
	}
	return math.Sqrt(h2), nil
}

// Hohmann computes a Hohmann transfer between circular radii rI and rF
// about the body with parameter μ. It returns the velocities on the
// transfer ellipse at departure and arrival, and the time of flight.
func Hohmann(rI, rF Distance, μ GM) (vDeparture, vArrival Velocity, tof time.Duration) {
	aTransfer := 0.5 * (rI + rF)
	vDeparture = Velocity(math.Sqrt((2 * float64(μ) / float64(rI)) - (float64(μ) / float64(aTransfer))))
	vArrival = Velocity(math.Sqrt((2 * float64(μ) / float64(rF)) - (float64(μ) / float64(aTransfer))))
	tof = time.Duration(math.Pi*math.Sqrt(math.Pow(float64(aTransfer), 3)/float64(μ))) * time.Second
	return
}

// HohmannTransferΔv returns the two signed impulses of the minimum-energy
// two-burn transfer between circular orbits of radii r1 and r2: Δv1 injects
// onto the transfer ellipse at r1, Δv2 circularizes at r2. Positive means
// prograde; an inward transfer (r2 < r1) yields two retrograde burns. The
// propellant budget is |Δv1|+|Δv2|.
func HohmannTransferΔv(μ GM, r1, r2 Distance) (Δv1, Δv2 Velocity, err error) {
	if μ <= 0 {
		return 0, 0, ErrNonPositiveμ
	}
	if r1 <= 0 || r2 <= 0 {
		return 0, 0, ErrNonPositiveRadius
	}
	vDeparture, vArrival, _ := Hohmann(r1, r2, μ)
	vC1 := Velocity(math.Sqrt(float64(μ) / float64(r1)))
	vC2 := Velocity(math.Sqrt(float64(μ) / float64(r2)))
	return vDeparture - vC1, vC2 - vArrival, nil
}
