// Package binding exposes the orbital core through a flat, value-only call
// surface: scalars and fixed-shape arrays in, plain records and errors out.
// Nothing with identity or shared mutable state crosses this boundary, and
// no call panics: inputs outside a function's domain are rejected here,
// before the core is reached.
package binding

import (
	"errors"
	"math"
	"time"

	"github.com/soniakeys/unit"

	orbital "github.com/sksat/solar-line-sub004"
)

var (
	// ErrNotFinite is returned when any input is NaN or infinite.
	ErrNotFinite = errors.New("input is NaN or infinite")
	// ErrNonPositiveStep is returned for a zero or negative step size.
	ErrNonPositiveStep = errors.New("step size must be strictly positive")
	// ErrUnknownThrustKind is returned for a thrust kind this surface does
	// not define.
	ErrUnknownThrustKind = errors.New(`thrust kind must be "ballistic", "constant-prograde" or "brachistochrone"`)
	// ErrInvalidThrust is returned for thrust parameters out of domain.
	ErrInvalidThrust = errors.New("thrust profile parameters out of domain")
)

func finite(vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
	}
	return nil
}

func finiteVec(vecs ...[3]float64) error {
	for _, v := range vecs {
		if err := finite(v[0], v[1], v[2]); err != nil {
			return err
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

/* Two-body formulas */

// VisViva returns the orbital speed in km/s at radius rKm on an orbit of
// semi-major axis aKm.
func VisViva(muKm3S2, rKm, aKm float64) (float64, error) {
	if err := finite(muKm3S2, rKm, aKm); err != nil {
		return 0, err
	}
	v, err := orbital.VisViva(orbital.GM(muKm3S2), orbital.Distance(rKm), orbital.Distance(aKm))
	return float64(v), err
}

// HohmannTransferDV returns the two signed impulses in km/s of the
// minimum-energy transfer between circular radii r1Km and r2Km. Positive
// means prograde; the propellant budget is |dv1|+|dv2|.
func HohmannTransferDV(muKm3S2, r1Km, r2Km float64) (dv1, dv2 float64, err error) {
	if err = finite(muKm3S2, r1Km, r2Km); err != nil {
		return 0, 0, err
	}
	Δv1, Δv2, err := orbital.HohmannTransferΔv(orbital.GM(muKm3S2), orbital.Distance(r1Km), orbital.Distance(r2Km))
	return float64(Δv1), float64(Δv2), err
}

// OrbitalPeriod returns the period in seconds of an elliptical orbit.
func OrbitalPeriod(muKm3S2, aKm float64) (float64, error) {
	if err := finite(muKm3S2, aKm); err != nil {
		return 0, err
	}
	T, err := orbital.OrbitalPeriod(orbital.GM(muKm3S2), orbital.Distance(aKm))
	return T.Seconds(), err
}

// SpecificEnergy returns ξ = −μ/(2a) in km²/s².
func SpecificEnergy(muKm3S2, aKm float64) (float64, error) {
	if err := finite(muKm3S2, aKm); err != nil {
		return 0, err
	}
	return orbital.SpecificEnergy(orbital.GM(muKm3S2), orbital.Distance(aKm))
}

// SpecificAngularMomentum returns h = √(μ a (1−e²)) in km²/s.
func SpecificAngularMomentum(muKm3S2, aKm, ecc float64) (float64, error) {
	if err := finite(muKm3S2, aKm, ecc); err != nil {
		return 0, err
	}
	return orbital.SpecificAngularMomentum(orbital.GM(muKm3S2), orbital.Distance(aKm), orbital.Eccentricity(ecc))
}

// SOIRadius returns the sphere-of-influence radius in km of a body with
// parameter muBody orbiting at aKm around a primary with muPrimary.
func SOIRadius(aKm, muBody, muPrimary float64) (float64, error) {
	if err := finite(aKm, muBody, muPrimary); err != nil {
		return 0, err
	}
	r, err := orbital.SOIRadius(orbital.Distance(aKm), orbital.GM(muBody), orbital.GM(muPrimary))
	return float64(r), err
}

/* Anomaly conversions, all in radians */

// MeanToEccentricAnomaly solves Kepler's equation M = E − e·sin E for E.
func MeanToEccentricAnomaly(mRad, ecc float64) (float64, error) {
	if err := finite(mRad, ecc); err != nil {
		return 0, err
	}
	E, err := orbital.MeanToEccentricAnomaly(unit.Angle(mRad), orbital.Eccentricity(ecc))
	return E.Rad(), err
}

// EccentricToMeanAnomaly evaluates M = E − e·sin E.
func EccentricToMeanAnomaly(eRad, ecc float64) (float64, error) {
	if err := finite(eRad, ecc); err != nil {
		return 0, err
	}
	M, err := orbital.EccentricToMeanAnomaly(unit.Angle(eRad), orbital.Eccentricity(ecc))
	return M.Rad(), err
}

// EccentricToTrueAnomaly converts E to ν.
func EccentricToTrueAnomaly(eRad, ecc float64) (float64, error) {
	if err := finite(eRad, ecc); err != nil {
		return 0, err
	}
	ν, err := orbital.EccentricToTrueAnomaly(unit.Angle(eRad), orbital.Eccentricity(ecc))
	return ν.Rad(), err
}

// TrueToEccentricAnomaly converts ν to E.
func TrueToEccentricAnomaly(nuRad, ecc float64) (float64, error) {
	if err := finite(nuRad, ecc); err != nil {
		return 0, err
	}
	E, err := orbital.TrueToEccentricAnomaly(unit.Angle(nuRad), orbital.Eccentricity(ecc))
	return E.Rad(), err
}

// MeanToTrueAnomaly converts M to ν through Kepler's equation.
func MeanToTrueAnomaly(mRad, ecc float64) (float64, error) {
	if err := finite(mRad, ecc); err != nil {
		return 0, err
	}
	ν, err := orbital.MeanToTrueAnomaly(unit.Angle(mRad), orbital.Eccentricity(ecc))
	return ν.Rad(), err
}

// TrueToMeanAnomaly converts ν to M.
func TrueToMeanAnomaly(nuRad, ecc float64) (float64, error) {
	if err := finite(nuRad, ecc); err != nil {
		return 0, err
	}
	M, err := orbital.TrueToMeanAnomaly(unit.Angle(nuRad), orbital.Eccentricity(ecc))
	return M.Rad(), err
}

// MeanMotion returns n = √(μ/a³) in rad/s.
func MeanMotion(muKm3S2, aKm float64) (float64, error) {
	if err := finite(muKm3S2, aKm); err != nil {
		return 0, err
	}
	if muKm3S2 <= 0 {
		return 0, orbital.ErrNonPositiveμ
	}
	if aKm <= 0 {
		return 0, orbital.ErrUndefinedSemiMajorAxis
	}
	return orbital.MeanMotion(orbital.GM(muKm3S2), orbital.Distance(aKm)), nil
}

// PropagateMeanAnomaly advances a mean anomaly by n·dt, wrapped to one
// revolution.
func PropagateMeanAnomaly(m0Rad, nRadS, dtS float64) (float64, error) {
	if err := finite(m0Rad, nRadS, dtS); err != nil {
		return 0, err
	}
	return orbital.PropagateMeanAnomaly(unit.Angle(m0Rad), nRadS, dtS).Rad(), nil
}

/* Element conversions */

// Elements is the flat record of classical orbital elements.
type Elements struct {
	AKm         float64
	Ecc         float64
	IncDeg      float64
	RAANDeg     float64
	ArgPeriDeg  float64
	TrueAnomDeg float64
}

// ElementsToStateVector converts classical elements to a Cartesian state.
func ElementsToStateVector(el Elements, muKm3S2 float64) (r, v [3]float64, err error) {
	if err = finite(el.AKm, el.Ecc, el.IncDeg, el.RAANDeg, el.ArgPeriDeg, el.TrueAnomDeg, muKm3S2); err != nil {
		return
	}
	if muKm3S2 <= 0 {
		err = orbital.ErrNonPositiveμ
		return
	}
	if _, err = orbital.NewEccentricity(el.Ecc); err != nil {
		return
	}
	R, V := orbital.COE2RV(orbital.Distance(el.AKm), orbital.Eccentricity(el.Ecc),
		unit.AngleFromDeg(el.IncDeg), unit.AngleFromDeg(el.RAANDeg),
		unit.AngleFromDeg(el.ArgPeriDeg), unit.AngleFromDeg(el.TrueAnomDeg),
		orbital.GM(muKm3S2))
	return R.Array(), V.Array(), nil
}

// StateVectorToElements converts a Cartesian state to classical elements.
func StateVectorToElements(r, v [3]float64, muKm3S2 float64) (Elements, error) {
	if err := finiteVec(r, v); err != nil {
		return Elements{}, err
	}
	if err := finite(muKm3S2); err != nil {
		return Elements{}, err
	}
	if muKm3S2 <= 0 {
		return Elements{}, orbital.ErrNonPositiveμ
	}
	if r[0] == 0 && r[1] == 0 && r[2] == 0 {
		return Elements{}, orbital.ErrNonPositiveRadius
	}
	a, e, i, Ω, ω, ν := orbital.RV2COE(orbital.Vec3FromArray[orbital.Distance](r),
		orbital.Vec3FromArray[orbital.Velocity](v), orbital.GM(muKm3S2))
	return Elements{float64(a), float64(e), i.Deg(), Ω.Deg(), ω.Deg(), ν.Deg()}, nil
}

/* Rocket equation */

// ExhaustVelocity returns vₑ = Isp·g₀ in km/s.
func ExhaustVelocity(ispS float64) (float64, error) {
	if err := finite(ispS); err != nil {
		return 0, err
	}
	ve, err := orbital.ExhaustVelocity(ispS)
	return float64(ve), err
}

// MassRatio returns m₀/m₁ = exp(Δv/vₑ).
func MassRatio(dvKmS, veKmS float64) (float64, error) {
	if err := finite(dvKmS, veKmS); err != nil {
		return 0, err
	}
	return orbital.MassRatio(orbital.Velocity(dvKmS), orbital.Velocity(veKmS))
}

// PropellantFraction returns the propellant share of the initial mass.
func PropellantFraction(dvKmS, veKmS float64) (float64, error) {
	if err := finite(dvKmS, veKmS); err != nil {
		return 0, err
	}
	return orbital.PropellantFraction(orbital.Velocity(dvKmS), orbital.Velocity(veKmS))
}

// RequiredPropellantMass returns the propellant in kg needed to give the
// final mass finalKg a velocity change of dvKmS.
func RequiredPropellantMass(finalKg, dvKmS, veKmS float64) (float64, error) {
	if err := finite(finalKg, dvKmS, veKmS); err != nil {
		return 0, err
	}
	m, err := orbital.RequiredPropellantMass(orbital.Mass(finalKg), orbital.Velocity(dvKmS), orbital.Velocity(veKmS))
	return float64(m), err
}

// MassFlowRate returns ṁ = F/vₑ in kg/s.
func MassFlowRate(thrustN, veKmS float64) (float64, error) {
	if err := finite(thrustN, veKmS); err != nil {
		return 0, err
	}
	return orbital.MassFlowRate(thrustN, orbital.Velocity(veKmS))
}

// JetPower returns P = ½·F·vₑ in watts.
func JetPower(thrustN, veKmS float64) (float64, error) {
	if err := finite(thrustN, veKmS); err != nil {
		return 0, err
	}
	return orbital.JetPower(thrustN, orbital.Velocity(veKmS)), nil
}

/* Propagation */

// ThrustSpec selects a thrust profile by kind: "ballistic" (or empty),
// "constant-prograde" with ThrustN and MassKg set, or "brachistochrone"
// with AccelMS2 and FlipTimeS set.
type ThrustSpec struct {
	Kind      string
	ThrustN   float64
	MassKg    float64
	AccelMS2  float64
	FlipTimeS float64
}

func (t ThrustSpec) profile() (orbital.ThrustProfile, error) {
	if err := finite(t.ThrustN, t.MassKg, t.AccelMS2, t.FlipTimeS); err != nil {
		return nil, err
	}
	switch t.Kind {
	case "", "ballistic":
		return orbital.Ballistic{}, nil
	case "constant-prograde":
		if t.ThrustN <= 0 || t.MassKg <= 0 {
			return nil, ErrInvalidThrust
		}
		return orbital.NewConstantPrograde(t.ThrustN, t.MassKg), nil
	case "brachistochrone":
		if t.AccelMS2 <= 0 || t.FlipTimeS < 0 {
			return nil, ErrInvalidThrust
		}
		return orbital.NewBrachistochrone(t.AccelMS2, t.FlipTimeS), nil
	default:
		return nil, ErrUnknownThrustKind
	}
}

// PropagationInput is the flat description of one propagation arc.
type PropagationInput struct {
	R                [3]float64 // km
	V                [3]float64 // km/s
	MuKm3S2          float64
	DurationS        float64
	Thrust           ThrustSpec
	DiscontinuitiesS []float64 // seconds from the start of the arc
	SaveTrajectory   bool
}

func (in PropagationInput) validate() (orbital.StateVector, orbital.PropConfig, time.Duration, error) {
	var sv orbital.StateVector
	var cfg orbital.PropConfig
	if err := finiteVec(in.R, in.V); err != nil {
		return sv, cfg, 0, err
	}
	if err := finite(append([]float64{in.MuKm3S2, in.DurationS}, in.DiscontinuitiesS...)...); err != nil {
		return sv, cfg, 0, err
	}
	if in.MuKm3S2 <= 0 {
		return sv, cfg, 0, orbital.ErrNonPositiveμ
	}
	if in.R[0] == 0 && in.R[1] == 0 && in.R[2] == 0 {
		return sv, cfg, 0, orbital.ErrNonPositiveRadius
	}
	if in.DurationS < 0 {
		return sv, cfg, 0, orbital.ErrNegativeDuration
	}
	prof, err := in.Thrust.profile()
	if err != nil {
		return sv, cfg, 0, err
	}
	sv = orbital.NewStateVector(orbital.Vec3FromArray[orbital.Distance](in.R),
		orbital.Vec3FromArray[orbital.Velocity](in.V), orbital.GM(in.MuKm3S2))
	cfg = orbital.PropConfig{Profile: prof, Discontinuities: in.DiscontinuitiesS, SaveTrajectory: in.SaveTrajectory}
	return sv, cfg, seconds(in.DurationS), nil
}

// StateRecord is one sample of a returned trajectory.
type StateRecord struct {
	T float64
	R [3]float64
	V [3]float64
}

// PropagationOutput is the flat outcome of one propagation arc.
type PropagationOutput struct {
	FinalT      float64
	FinalR      [3]float64
	FinalV      [3]float64
	NEval       int
	NAccept     int
	NReject     int
	EnergyDrift float64
	Trajectory  []StateRecord // nil unless SaveTrajectory was set
}

func outputOf(res orbital.PropagationResult) PropagationOutput {
	out := PropagationOutput{
		FinalT:      res.Final.T,
		FinalR:      res.Final.SV.R.Array(),
		FinalV:      res.Final.SV.V.Array(),
		NEval:       res.Diag.NEval,
		NAccept:     res.Diag.NAccept,
		NReject:     res.Diag.NReject,
		EnergyDrift: res.Diag.EnergyDrift,
	}
	if res.Trajectory != nil {
		out.Trajectory = make([]StateRecord, len(res.Trajectory))
		for i, ts := range res.Trajectory {
			out.Trajectory[i] = StateRecord{ts.T, ts.SV.R.Array(), ts.SV.V.Array()}
		}
	}
	return out
}

// PropagateRK4 integrates the arc with the fixed-step RK4 scheme.
func PropagateRK4(in PropagationInput, stepS float64) (PropagationOutput, error) {
	sv, cfg, dur, err := in.validate()
	if err != nil {
		return PropagationOutput{}, err
	}
	if err := finite(stepS); err != nil {
		return PropagationOutput{}, err
	}
	if stepS <= 0 {
		return PropagationOutput{}, ErrNonPositiveStep
	}
	res, err := orbital.NewRK4(seconds(stepS)).Propagate(sv, dur, cfg)
	if err != nil {
		return PropagationOutput{}, err
	}
	return outputOf(res), nil
}

// PropagateRK45 integrates the arc with the adaptive Dormand-Prince 5(4)
// scheme. maxSteps of zero keeps the default budget.
func PropagateRK45(in PropagationInput, relTol, absTol float64, maxSteps int) (PropagationOutput, error) {
	sv, cfg, dur, err := in.validate()
	if err != nil {
		return PropagationOutput{}, err
	}
	if err := finite(relTol, absTol); err != nil {
		return PropagationOutput{}, err
	}
	if relTol <= 0 || absTol <= 0 {
		return PropagationOutput{}, ErrNonPositiveStep
	}
	if maxSteps < 0 {
		return PropagationOutput{}, ErrNonPositiveStep
	}
	integ := orbital.NewRK45(relTol, absTol)
	integ.MaxSteps = maxSteps
	res, err := integ.Propagate(sv, dur, cfg)
	if err != nil {
		return PropagationOutput{}, err
	}
	return outputOf(res), nil
}

// PropagateVerlet integrates a ballistic arc with the symplectic
// Störmer-Verlet scheme.
func PropagateVerlet(in PropagationInput, stepS float64) (PropagationOutput, error) {
	sv, cfg, dur, err := in.validate()
	if err != nil {
		return PropagationOutput{}, err
	}
	if err := finite(stepS); err != nil {
		return PropagationOutput{}, err
	}
	if stepS <= 0 {
		return PropagationOutput{}, ErrNonPositiveStep
	}
	res, err := orbital.NewVerlet(seconds(stepS)).Propagate(sv, dur, cfg)
	if err != nil {
		return PropagationOutput{}, err
	}
	return outputOf(res), nil
}

/* Flybys */

// FlybyOutput is the flat outcome of one patched-conic flyby.
type FlybyOutput struct {
	TurnAngleRad         float64
	PeriapsisVelocityKmS float64
	ExitVInf             [3]float64
	DeltaVAppliedKmS     float64
	OberthGainKmS        float64
	Captured             bool
}

func flybyOutputOf(res orbital.FlybyResult) FlybyOutput {
	return FlybyOutput{
		TurnAngleRad:         res.TurnAngle.Rad(),
		PeriapsisVelocityKmS: float64(res.VPeriapsis),
		ExitVInf:             res.VInfOut.Array(),
		DeltaVAppliedKmS:     float64(res.Δv),
		OberthGainKmS:        float64(res.OberthGain),
		Captured:             res.Captured,
	}
}

// UnpoweredFlyby bends the approach asymptote vInfIn about planeNormal at
// a periapsis of rpKm, conserving |v∞|.
func UnpoweredFlyby(vInfIn [3]float64, rpKm float64, planeNormal [3]float64, muKm3S2 float64) (FlybyOutput, error) {
	if err := finiteVec(vInfIn, planeNormal); err != nil {
		return FlybyOutput{}, err
	}
	if err := finite(rpKm, muKm3S2); err != nil {
		return FlybyOutput{}, err
	}
	res, err := orbital.Flyby(orbital.Vec3FromArray[orbital.Velocity](vInfIn),
		orbital.Distance(rpKm), orbital.Vec3FromArray[float64](planeNormal), orbital.GM(muKm3S2))
	if err != nil {
		return FlybyOutput{}, err
	}
	return flybyOutputOf(res), nil
}

// PoweredFlyby is UnpoweredFlyby with a tangential burn of dvKmS applied
// exactly at periapsis.
func PoweredFlyby(vInfIn [3]float64, rpKm float64, planeNormal [3]float64, dvKmS, muKm3S2 float64) (FlybyOutput, error) {
	if err := finiteVec(vInfIn, planeNormal); err != nil {
		return FlybyOutput{}, err
	}
	if err := finite(rpKm, dvKmS, muKm3S2); err != nil {
		return FlybyOutput{}, err
	}
	res, err := orbital.PoweredFlyby(orbital.Vec3FromArray[orbital.Velocity](vInfIn),
		orbital.Distance(rpKm), orbital.Vec3FromArray[float64](planeNormal),
		orbital.Velocity(dvKmS), orbital.GM(muKm3S2))
	if err != nil {
		return FlybyOutput{}, err
	}
	return flybyOutputOf(res), nil
}

// HeliocentricExitVelocity composes the planet's heliocentric velocity with
// the planetocentric departure asymptote.
func HeliocentricExitVelocity(vPlanet, vInfOut [3]float64) ([3]float64, error) {
	if err := finiteVec(vPlanet, vInfOut); err != nil {
		return [3]float64{}, err
	}
	out := orbital.HeliocentricExitVelocity(orbital.Vec3FromArray[orbital.Velocity](vPlanet),
		orbital.Vec3FromArray[orbital.Velocity](vInfOut))
	return out.Array(), nil
}
