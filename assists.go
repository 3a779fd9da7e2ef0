package orbital

import (
	"fmt"
	"math"

	"github.com/soniakeys/unit"
)

// TurnAngle returns the hyperbolic turn angle δ of a flyby with approach
// speed vInf and periapsis radius rP, from sin(δ/2) = 1/(1 + rP·v∞²/μ).
// Lower periapses and slower approaches bend the asymptote more.
func TurnAngle(vInf Velocity, rP Distance, μ GM) (unit.Angle, error) {
	if vInf <= 0 {
		return 0, ErrNonPositiveVinf
	}
	if rP <= 0 {
		return 0, ErrNonPositiveRadius
	}
	if μ <= 0 {
		return 0, ErrNonPositiveμ
	}
	return unit.Angle(2 * math.Asin(1/(1+float64(rP)*float64(vInf)*float64(vInf)/float64(μ)))), nil
}

// FlybyResult is the outcome of one patched-conic flyby.
type FlybyResult struct {
	TurnAngle  unit.Angle
	VPeriapsis Velocity       // speed at periapsis, after the burn on powered flybys
	VInfOut    Vec3[Velocity] // planetocentric departure asymptote, zero when captured
	Δv         Velocity       // applied at periapsis, zero on unpowered flybys
	// OberthGain is the change of the asymptotic speed in excess of the burn
	// itself: positive for prograde burns, negative for retrograde ones.
	OberthGain Velocity
	Captured   bool // a retrograde burn dropped the vehicle below escape speed
}

func (f FlybyResult) String() string {
	if f.Captured {
		return fmt.Sprintf("captured (vP=%.6f km/s, Δv=%.3f km/s)", f.VPeriapsis, f.Δv)
	}
	return fmt.Sprintf("δ=%.6f° vP=%.6f km/s |v∞out|=%.6f km/s", f.TurnAngle.Deg(), f.VPeriapsis, f.VInfOut.Norm())
}

// flybyAxis orthogonalizes the requested flyby-plane normal against the
// approach asymptote, so the rotation preserves |v∞| exactly.
func flybyAxis(vInfIn Vec3[Velocity], normal Vec3[float64]) (Vec3[float64], error) {
	sHat := vInfIn.Unit()
	k := normal.Sub(sHat.Scale(Dot(normal, sHat)))
	if k.Norm() < 1e-9 {
		return Vec3[float64]{}, ErrDegenerateGeometry
	}
	return k.Unit(), nil
}

// Flyby computes an unpowered flyby: the departure asymptote is the approach
// asymptote rotated by the turn angle about the plane normal, right-handed,
// with its magnitude untouched.
func Flyby(vInfIn Vec3[Velocity], rP Distance, normal Vec3[float64], μ GM) (FlybyResult, error) {
	vInf := vInfIn.Norm()
	δ, err := TurnAngle(vInf, rP, μ)
	if err != nil {
		return FlybyResult{}, err
	}
	axis, err := flybyAxis(vInfIn, normal)
	if err != nil {
		return FlybyResult{}, err
	}
	// Vis-viva on the hyperbola.
	vP := Velocity(math.Sqrt(float64(vInf*vInf) + 2*float64(μ)/float64(rP)))
	out := Rodrigues(vInfIn.Slice(), axis.Slice(), δ.Rad())
	return FlybyResult{TurnAngle: δ, VPeriapsis: vP, VInfOut: Vec3FromSlice[Velocity](out)}, nil
}

// PoweredFlyby computes a flyby with a tangential burn applied exactly at
// periapsis, where the Oberth effect amplifies it most. The departure
// asymptote keeps the unpowered direction; its magnitude comes from the
// post-burn energy. A burn below escape speed captures the vehicle instead
// of releasing it on an outbound asymptote.
func PoweredFlyby(vInfIn Vec3[Velocity], rP Distance, normal Vec3[float64], Δv Velocity, μ GM) (FlybyResult, error) {
	res, err := Flyby(vInfIn, rP, normal, μ)
	if err != nil {
		return FlybyResult{}, err
	}
	vP := res.VPeriapsis + Δv
	if vP <= 0 {
		return FlybyResult{}, ErrBurnExceedsSpeed
	}
	res.Δv = Δv
	res.VPeriapsis = vP
	vEsc := Velocity(math.Sqrt(2 * float64(μ) / float64(rP)))
	if vP < vEsc {
		res.Captured = true
		res.VInfOut = Vec3[Velocity]{}
		res.OberthGain = 0
		return res, nil
	}
	vInfOut := Velocity(math.Sqrt(float64(vP*vP - vEsc*vEsc)))
	res.VInfOut = Vec3FromArray[Velocity](res.VInfOut.Unit().Scale(float64(vInfOut)).Array())
	res.OberthGain = vInfOut - vInfIn.Norm() - Δv
	return res, nil
}

// HeliocentricExitVelocity composes the planet's own heliocentric velocity
// with the planetocentric departure asymptote. This is the hand-off from a
// flyby back into the heliocentric two-body layer.
func HeliocentricExitVelocity(vPlanet, vInfOut Vec3[Velocity]) Vec3[Velocity] {
	return vPlanet.Add(vInfOut)
}

// HeliocentricExitState is HeliocentricExitVelocity applied to the planet's
// full heliocentric state: the patched-conic approximation collapses the
// whole encounter to the planet's position.
func HeliocentricExitState(planet StateVector, vInfOut Vec3[Velocity]) StateVector {
	return StateVector{planet.R, planet.V.Add(vInfOut), planet.μ}
}

// BPlane stores the B-plane parameters of a hyperbolic approach: the aim
// point components along T̂ and R̂ and the linearized time of flight to
// periapsis.
type BPlane struct {
	BR, BT, LTOF float64
}

func (b BPlane) String() string {
	return fmt.Sprintf("BR=%.8f\tBT=%.8f", b.BR, b.BT)
}

// NewBPlane returns the B-plane of a given hyperbolic orbit.
func NewBPlane(o Orbit) (BPlane, error) {
	if !o.e.Hyperbolic() {
		return BPlane{}, ErrNotHyperbolic
	}
	// Some of this is quite similar to RV2COE.
	Rv, Vv := o.RV()
	R, V := Rv.Slice(), Vv.Slice()
	μ := o.Origin.μ
	hHat := unitVector(cross(R, V))
	k := []float64{0, 0, 1}
	v := norm(V)
	r := norm(R)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - dot(R, V)*V[i]) / μ
	}
	e := norm(eVec)
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	c := a * e
	b := math.Sqrt(c*c - a*a)

	// Compute the B plane frame.
	heVec := unitVector(cross(hHat, eVec))
	β := math.Acos(1 / e)
	sinβ, cosβ := math.Sincos(β)
	sHat := make([]float64, 3)
	for i := 0; i < 3; i++ {
		sHat[i] = cosβ*eVec[i]/e + sinβ*heVec[i]
	}
	tHat := unitVector(cross(sHat, k))
	rHat := unitVector(cross(sHat, tHat))
	bVec := cross(sHat, hHat)
	for i := 0; i < 3; i++ {
		bVec[i] *= b
	}
	bT := dot(bVec, tHat)
	bR := dot(bVec, rHat)
	νB := math.Pi/2 - β
	sinνB, cosνB := math.Sincos(νB)
	νR := math.Acos((-a*(e*e-1))/(r*e) - 1/e)
	sinνR, cosνR := math.Sincos(νR)

	fB := math.Asinh(sinνB * math.Sqrt(e*e-1) / (1 + e*cosνB))
	fR := math.Asinh(sinνR * math.Sqrt(e*e-1) / (1 + e*cosνR))
	n := math.Sqrt(μ / math.Pow(-a, 3))
	ltof := ((e*math.Sinh(fB) - fB) - (e*math.Sinh(fR) - fR)) / n
	return BPlane{BR: bR, BT: bT, LTOF: ltof}, nil
}
