package orbital

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestOrbitRV2COE(t *testing.T) {
	// From Vallado, 4th edition, example 2-5.
	R := Vec3[Distance]{6524.834, 6862.875, 6448.296}
	V := Vec3[Velocity]{4.901327, 5.533756, -1.976341}
	o := NewOrbitFromRV(R, V, Earth)
	oT := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157, Earth)
	if ok, err := o.StrictlyEquals(*oT); !ok {
		t.Logf("\no0: %s\no1: %s", o, oT)
		t.Fatalf("orbits differ: %s", err)
	}
	if ok, err := anglesEqual(Deg2rad(281.283201), o.Tildeω().Rad()); !ok {
		t.Fatalf("longitude of periapsis invalid: %s (%f)", err, o.Tildeω().Deg())
	}
	if ok, err := anglesEqual(Deg2rad(145.720695), o.ArgLatitudeU().Rad()); !ok {
		t.Fatalf("argument of latitude invalid: %s (%f)", err, o.ArgLatitudeU().Deg())
	}
	valladoε := 1e-6
	if !floats.EqualWithinAbs(o.Energyξ(), -5.516604, valladoε) {
		t.Fatalf("incorrect energy ξ=%f", o.Energyξ())
	}
	if !floats.EqualWithinAbs(float64(o.R().Norm()), float64(o.RNorm()), valladoε) {
		t.Fatalf("incorrect r norm |R|=%f\tr=%f", o.R().Norm(), o.RNorm())
	}
	if !floats.EqualWithinAbs(float64(o.V().Norm()), float64(o.VNorm()), valladoε) {
		t.Fatalf("incorrect v norm |V|=%f\tv=%f", o.V().Norm(), o.VNorm())
	}
	if !floats.EqualWithinAbs(o.H().Norm(), o.HNorm(), valladoε) {
		t.Fatalf("incorrect h norm |h|=%f\th=%f", o.H().Norm(), o.HNorm())
	}
}

func TestOrbitCOE2RV(t *testing.T) {
	a0 := 36126.64283
	e0 := 0.83280
	i0 := 87.874925
	ω0 := 53.378089
	Ω0 := 227.891253
	ν0 := 92.335027
	R := []float64{6524.344, 6861.535, 6449.125}
	V := []float64{4.902276, 5.533124, -1.975709}

	o0 := NewOrbitFromOE(a0, e0, i0, Ω0, ω0, ν0, Earth)
	if !vectorsEqual(R, o0.R().Slice()) {
		t.Fatalf("R vector incorrectly computed:\n%+v\n%+v", R, o0.R())
	}
	if !vectorsEqual(V, o0.V().Slice()) {
		t.Fatal("V vector incorrectly computed")
	}

	o1 := NewOrbitFromRV(Vec3FromSlice[Distance](R), Vec3FromSlice[Velocity](V), Earth)
	if ok, err := o0.Equals(*o1); !ok {
		t.Logf("\no0: %s\no1: %s", o0, o1)
		t.Fatal(err)
	}
	if ok, err := anglesEqual(Deg2rad(ν0), o1.ν.Rad()); !ok {
		t.Fatalf("true anomaly invalid: %s", err)
	}
}

func TestOrbitElementsRoundTrip(t *testing.T) {
	for _, oe := range [][]float64{
		{36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157},
		{7000, 0.001, 28.5, 10, 5, 0},
		{42164, 0.0002, 0.01, 0, 0, 45},
		{26600, 0.74, 63.4, 100, 270, 180},
		{9500, 0.2, 98.6, 200, 90, 310},
	} {
		o0 := NewOrbitFromOE(oe[0], oe[1], oe[2], oe[3], oe[4], oe[5], Earth)
		o1 := o0.StateVector().ToOrbit(Earth)
		if ok, err := o0.Equals(*o1); !ok {
			t.Logf("\no0: %s\no1: %s", o0, o1)
			t.Fatalf("round trip failed for %+v: %s", oe, err)
		}
	}
}

func TestOrbitAccessors(t *testing.T) {
	o := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157, Earth)
	a, e, _, _, _, _, _, _, _ := o.Elements()
	if !floats.EqualWithinRel(float64(o.SemiParameter()), float64(a)*(1-float64(e)*float64(e)), 1e-12) {
		t.Fatal("semi parameter incorrect")
	}
	if !floats.EqualWithinRel(float64(o.Apoapsis()+o.Periapsis()), 2*float64(a), 1e-12) {
		t.Fatal("apsides do not sum to 2a")
	}
	T, err := OrbitalPeriod(Earth.GM(), a)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(o.Period().Seconds()-T.Seconds()) > 1e-3 {
		t.Fatalf("Period()=%s but OrbitalPeriod=%s", o.Period(), T)
	}
	// At periapsis the flight path angle is zero.
	oP := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 0, Earth)
	if !floats.EqualWithinAbs(oP.CosΦfpa(), 1, 1e-12) || !floats.EqualWithinAbs(oP.SinΦfpa(), 0, 1e-12) {
		t.Fatal("flight path angle not zero at periapsis")
	}
}

func TestRadii2ae(t *testing.T) {
	a, e := Radii2ae(4, 2)
	if a != 3 {
		t.Fatalf("a=%f", a)
	}
	if !floats.EqualWithinAbs(float64(e), 1/3., 1e-12) {
		t.Fatalf("e=%f", e)
	}
	assertPanic(t, func() {
		Radii2ae(1, 2)
	})
}

func TestVisViva(t *testing.T) {
	μ := Earth.GM()
	a := Distance(26600)
	e := Eccentricity(0.74)
	rP := a * Distance(1-float64(e))
	rA := a * Distance(1+float64(e))
	for _, r := range []Distance{rP, rA, a} {
		v, err := VisViva(μ, r, a)
		if err != nil {
			t.Fatal(err)
		}
		// The defining identity: v²/2 − μ/r = −μ/(2a).
		ξ := float64(v)*float64(v)/2 - float64(μ)/float64(r)
		if !floats.EqualWithinRel(ξ, -float64(μ)/(2*float64(a)), 1e-12) {
			t.Fatalf("vis-viva identity broken at r=%f: ξ=%f", r, ξ)
		}
	}
	if _, err := VisViva(0, 7000, 7000); !errors.Is(err, ErrNonPositiveμ) {
		t.Fatal("expected ErrNonPositiveμ")
	}
	if _, err := VisViva(μ, -1, 7000); !errors.Is(err, ErrNonPositiveRadius) {
		t.Fatal("expected ErrNonPositiveRadius")
	}
	// Beyond the apoapsis of a closed orbit there is no real speed.
	if _, err := VisViva(μ, rA*2, a); !errors.Is(err, ErrUndefinedSemiMajorAxis) {
		t.Fatal("expected ErrUndefinedSemiMajorAxis")
	}
}

func TestEscapeVelocity(t *testing.T) {
	vEsc, err := EscapeVelocity(Earth.GM(), Distance(Earth.Radius))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(float64(vEsc), 11.18, 0.01) {
		t.Fatalf("surface escape velocity %f km/s", vEsc)
	}
	vCirc, _ := VisViva(Earth.GM(), Distance(Earth.Radius), Distance(Earth.Radius))
	if !floats.EqualWithinRel(float64(vEsc), math.Sqrt2*float64(vCirc), 1e-12) {
		t.Fatal("escape velocity is not √2 times the circular velocity")
	}
	if _, err := EscapeVelocity(Earth.GM(), 0); !errors.Is(err, ErrNonPositiveRadius) {
		t.Fatal("expected ErrNonPositiveRadius")
	}
}

func TestOrbitalPeriodGEO(t *testing.T) {
	T, err := OrbitalPeriod(Earth.GM(), 42164)
	if err != nil {
		t.Fatal(err)
	}
	// One sidereal day.
	if math.Abs(T.Seconds()-86164) > 5 {
		t.Fatalf("GEO period %s", T)
	}
	if _, err := OrbitalPeriod(Earth.GM(), -42164); !errors.Is(err, ErrUndefinedSemiMajorAxis) {
		t.Fatal("expected ErrUndefinedSemiMajorAxis")
	}
	if _, err := OrbitalPeriod(0, 42164); !errors.Is(err, ErrNonPositiveμ) {
		t.Fatal("expected ErrNonPositiveμ")
	}
}

func TestSpecificEnergyAndMomentum(t *testing.T) {
	ξ, err := SpecificEnergy(Earth.GM(), 36127.343)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(ξ, -5.516604, 1e-5) {
		t.Fatalf("ξ=%f", ξ)
	}
	h, err := SpecificAngularMomentum(Earth.GM(), 36127.343, 0.832853)
	if err != nil {
		t.Fatal(err)
	}
	// Cross-checked against |R×V| of the same Vallado orbit.
	if !floats.EqualWithinRel(h, 66420.2, 1e-3) {
		t.Fatalf("h=%f", h)
	}
	if _, err := SpecificEnergy(Earth.GM(), 0); !errors.Is(err, ErrUndefinedSemiMajorAxis) {
		t.Fatal("expected ErrUndefinedSemiMajorAxis")
	}
	// A closed orbit with e > 1 is geometrically impossible.
	if _, err := SpecificAngularMomentum(Earth.GM(), 36127.343, 1.2); !errors.Is(err, ErrUndefinedSemiMajorAxis) {
		t.Fatal("expected ErrUndefinedSemiMajorAxis")
	}
	if _, err := SpecificAngularMomentum(Earth.GM(), 36127.343, -0.2); !errors.Is(err, ErrNegativeEccentricity) {
		t.Fatal("expected ErrNegativeEccentricity")
	}
}

func TestHohmannLEO2GEO(t *testing.T) {
	Δv1, Δv2, err := HohmannTransferΔv(Earth.GM(), 6578, 42164)
	if err != nil {
		t.Fatal(err)
	}
	if Δv1 <= 0 || Δv2 <= 0 {
		t.Fatalf("outward transfer burns should be prograde: %f, %f", Δv1, Δv2)
	}
	total := math.Abs(float64(Δv1)) + math.Abs(float64(Δv2))
	if !floats.EqualWithinRel(total, 3.935, 1e-3) {
		t.Fatalf("LEO to GEO budget %f km/s", total)
	}
	// The inverse transfer costs the same, burned retrograde.
	Δv1i, Δv2i, err := HohmannTransferΔv(Earth.GM(), 42164, 6578)
	if err != nil {
		t.Fatal(err)
	}
	if Δv1i >= 0 || Δv2i >= 0 {
		t.Fatalf("inward transfer burns should be retrograde: %f, %f", Δv1i, Δv2i)
	}
	totalInv := math.Abs(float64(Δv1i)) + math.Abs(float64(Δv2i))
	if !floats.EqualWithinRel(total, totalInv, 1e-12) {
		t.Fatalf("asymmetric budgets: %f vs %f", total, totalInv)
	}
	// Transfer time is half the period of the transfer ellipse.
	_, _, tof := Hohmann(6578, 42164, Earth.GM())
	if !floats.EqualWithinRel(tof.Seconds(), 18933, 1e-2) {
		t.Fatalf("transfer time %s", tof)
	}
}

func TestHohmannEarth2Mars(t *testing.T) {
	Δv1, Δv2, err := HohmannTransferΔv(Sun.GM(), Earth.SMA(), Mars.SMA())
	if err != nil {
		t.Fatal(err)
	}
	total := math.Abs(float64(Δv1)) + math.Abs(float64(Δv2))
	if !floats.EqualWithinRel(total, 5.6, 1e-2) {
		t.Fatalf("Earth to Mars budget %f km/s", total)
	}
	if _, _, err := HohmannTransferΔv(Sun.GM(), 0, Mars.SMA()); !errors.Is(err, ErrNonPositiveRadius) {
		t.Fatal("expected ErrNonPositiveRadius")
	}
	if _, _, err := HohmannTransferΔv(-1, Earth.SMA(), Mars.SMA()); !errors.Is(err, ErrNonPositiveμ) {
		t.Fatal("expected ErrNonPositiveμ")
	}
}

func TestStateVectorEnergy(t *testing.T) {
	o := NewOrbitFromOE(26600, 0.74, 63.4, 100, 270, 17, Earth)
	sv := o.StateVector()
	if !floats.EqualWithinRel(sv.Energyξ(), o.Energyξ(), 1e-9) {
		t.Fatalf("energies differ: %f vs %f", sv.Energyξ(), o.Energyξ())
	}
	h := sv.HVec()
	if !floats.EqualWithinRel(h.Norm(), o.HNorm(), 1e-9) {
		t.Fatalf("angular momenta differ: %f vs %f", h.Norm(), o.HNorm())
	}
	if sv.GM() != Earth.GM() {
		t.Fatal("state μ differs from the body μ")
	}
}

func TestOrbitEquality(t *testing.T) {
	o0 := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157, Earth)
	o1 := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 180, Earth)
	if ok, _ := o0.Equals(*o1); !ok {
		t.Fatal("Equals must ignore the anomaly")
	}
	if ok, _ := o0.StrictlyEquals(*o1); ok {
		t.Fatal("StrictlyEquals must compare the anomaly")
	}
	o2 := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157, Mars)
	if ok, _ := o0.Equals(*o2); ok {
		t.Fatal("orbits about different bodies cannot be equal")
	}
}
