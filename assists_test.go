package orbital

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gonum/floats"
)

func TestTurnAngle(t *testing.T) {
	// The returned δ must satisfy its defining relation sin(δ/2)·(1+rP·v∞²/μ)=1.
	for _, rP := range []Distance{1.1 * 71492, 1.5 * 71492, 3 * 71492, 10 * 71492} {
		for _, vInf := range []Velocity{3, 6, 12, 20} {
			δ, err := TurnAngle(vInf, rP, Jupiter.GM())
			if err != nil {
				t.Fatal(err)
			}
			lhs := math.Sin(δ.Rad()/2) * (1 + float64(rP)*float64(vInf*vInf)/float64(Jupiter.GM()))
			if !floats.EqualWithinAbs(lhs, 1, 1e-12) {
				t.Fatalf("rP=%f vInf=%f: sin(δ/2)·(1+rP·v∞²/μ) = %.15f", rP, vInf, lhs)
			}
		}
	}
	// Lower periapses bend more, faster approaches bend less.
	prev := math.Inf(1)
	for _, rP := range []Distance{80000, 120000, 250000, 700000} {
		δ, err := TurnAngle(12, rP, Jupiter.GM())
		if err != nil {
			t.Fatal(err)
		}
		if δ.Rad() >= prev {
			t.Fatalf("δ grew to %f rad at rP=%f km", δ.Rad(), rP)
		}
		prev = δ.Rad()
	}
	prev = math.Inf(1)
	for _, vInf := range []Velocity{2, 5, 11, 19} {
		δ, err := TurnAngle(vInf, 120000, Jupiter.GM())
		if err != nil {
			t.Fatal(err)
		}
		if δ.Rad() >= prev {
			t.Fatalf("δ grew to %f rad at vInf=%f km/s", δ.Rad(), vInf)
		}
		prev = δ.Rad()
	}
	if _, err := TurnAngle(0, 120000, Jupiter.GM()); !errors.Is(err, ErrNonPositiveVinf) {
		t.Fatalf("got %v", err)
	}
	if _, err := TurnAngle(12, 0, Jupiter.GM()); !errors.Is(err, ErrNonPositiveRadius) {
		t.Fatalf("got %v", err)
	}
	if _, err := TurnAngle(12, 120000, 0); !errors.Is(err, ErrNonPositiveμ) {
		t.Fatalf("got %v", err)
	}
}

func TestFlyby(t *testing.T) {
	vIn := Vec3[Velocity]{7.2, -6.4, 6.8}
	normal := Vec3[float64]{0, 0, 1}
	for _, rP := range []Distance{1.1 * 71492, 1.5 * 71492, 3 * 71492, 10 * 71492} {
		res, err := Flyby(vIn, rP, normal, Jupiter.GM())
		if err != nil {
			t.Fatal(err)
		}
		// The asymptotic speed survives an unpowered flyby untouched.
		if !floats.EqualWithinRel(float64(res.VInfOut.Norm()), float64(vIn.Norm()), 1e-9) {
			t.Fatalf("rP=%f: |v∞| %f -> %f", rP, vIn.Norm(), res.VInfOut.Norm())
		}
		// The asymptote is bent by exactly the turn angle.
		cosδ := math.Cos(res.TurnAngle.Rad())
		got := Dot(vIn, res.VInfOut) / (float64(vIn.Norm()) * float64(res.VInfOut.Norm()))
		if !floats.EqualWithinAbs(got, cosδ, 1e-12) {
			t.Fatalf("rP=%f: bent by acos(%f), want acos(%f)", rP, got, cosδ)
		}
		// Vis-viva on the hyperbola, always above escape speed.
		vP2 := float64(vIn.Norm()*vIn.Norm()) + 2*float64(Jupiter.GM())/float64(rP)
		if !floats.EqualWithinRel(float64(res.VPeriapsis*res.VPeriapsis), vP2, 1e-12) {
			t.Fatalf("rP=%f: vP² = %f, want %f", rP, res.VPeriapsis*res.VPeriapsis, vP2)
		}
		vEsc, err := EscapeVelocity(Jupiter.GM(), rP)
		if err != nil {
			t.Fatal(err)
		}
		if res.VPeriapsis <= vEsc {
			t.Fatalf("rP=%f: hyperbolic periapsis below escape speed", rP)
		}
		if res.Captured || res.Δv != 0 {
			t.Fatalf("unpowered flyby: %s", res)
		}
	}
	// A normal parallel to the approach asymptote spans no plane.
	if _, err := Flyby(vIn, 120000, vIn.Unit(), Jupiter.GM()); !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("got %v", err)
	}
	if _, err := Flyby(Vec3[Velocity]{}, 120000, normal, Jupiter.GM()); !errors.Is(err, ErrNonPositiveVinf) {
		t.Fatalf("got %v", err)
	}
}

func TestPoweredFlyby(t *testing.T) {
	vIn := Vec3[Velocity]{12, 0, 0}
	normal := Vec3[float64]{0, 0, 1}
	rP := Distance(1.5 * 71492)
	coast, err := Flyby(vIn, rP, normal, Jupiter.GM())
	if err != nil {
		t.Fatal(err)
	}
	res, err := PoweredFlyby(vIn, rP, normal, 1.0, Jupiter.GM())
	if err != nil {
		t.Fatal(err)
	}
	// The departure asymptote keeps the unpowered direction, with the speed
	// of the post-burn energy.
	if !vectorsEqual(res.VInfOut.Unit().Slice(), coast.VInfOut.Unit().Slice()) {
		t.Fatalf("burn bent the asymptote: %+v vs %+v", res.VInfOut, coast.VInfOut)
	}
	vEsc2 := 2 * float64(Jupiter.GM()) / float64(rP)
	wantOut := math.Sqrt(float64((coast.VPeriapsis+1)*(coast.VPeriapsis+1)) - vEsc2)
	if !floats.EqualWithinRel(float64(res.VInfOut.Norm()), wantOut, 1e-12) {
		t.Fatalf("|v∞out| = %f, want %f", res.VInfOut.Norm(), wantOut)
	}
	// Burning at periapsis beats burning at infinity. The gain grows as the
	// periapsis drops deeper into the well.
	if res.OberthGain <= 0 {
		t.Fatalf("no Oberth gain: %f km/s", res.OberthGain)
	}
	if !floats.EqualWithinAbs(float64(res.VInfOut.Norm()), float64(12+1+res.OberthGain), 1e-12) {
		t.Fatalf("gain %f inconsistent with |v∞out| %f", res.OberthGain, res.VInfOut.Norm())
	}
	prev := Velocity(math.Inf(1))
	for _, rp := range []Distance{1.2 * 71492, 2 * 71492, 5 * 71492} {
		deep, err := PoweredFlyby(vIn, rp, normal, 1.0, Jupiter.GM())
		if err != nil {
			t.Fatal(err)
		}
		if deep.OberthGain >= prev {
			t.Fatalf("gain %f did not shrink at rP=%f", deep.OberthGain, rp)
		}
		prev = deep.OberthGain
	}
	// A retrograde burn beyond the periapsis speed is not a flyby anymore.
	if _, err := PoweredFlyby(vIn, rP, normal, -51, Jupiter.GM()); !errors.Is(err, ErrBurnExceedsSpeed) {
		t.Fatalf("got %v", err)
	}
}

func TestJupiterCapture(t *testing.T) {
	// Arrival at Jupiter: v∞=12 km/s, periapsis at 1.5 Jupiter radii, 2.3 km/s
	// retrograde burn at periapsis. The burn must drop the vehicle below the
	// local escape speed.
	μ := GM(1.26686534e8)
	rP := Distance(1.5 * 71492)
	res, err := PoweredFlyby(Vec3[Velocity]{12, 0, 0}, rP, Vec3[float64]{0, 0, 1}, -2.3, μ)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Captured {
		t.Fatalf("not captured: %s", res)
	}
	vEsc, err := EscapeVelocity(μ, rP)
	if err != nil {
		t.Fatal(err)
	}
	if res.VPeriapsis >= vEsc {
		t.Fatalf("periapsis speed %f above escape speed %f", res.VPeriapsis, vEsc)
	}
	if res.VInfOut.Norm() != 0 || res.OberthGain != 0 {
		t.Fatalf("captured vehicle still has an asymptote: %s", res)
	}
	if !strings.Contains(res.String(), "captured") {
		t.Fatalf("String()=%q", res.String())
	}
	// A milder burn does not capture.
	free, err := PoweredFlyby(Vec3[Velocity]{12, 0, 0}, rP, Vec3[float64]{0, 0, 1}, -1.0, μ)
	if err != nil {
		t.Fatal(err)
	}
	if free.Captured {
		t.Fatalf("1 km/s burn should not capture: %s", free)
	}
}

func TestHeliocentricExit(t *testing.T) {
	vPlanet := Vec3[Velocity]{-10, 25, 0}
	vInfOut := Vec3[Velocity]{3, 4, -1}
	got := HeliocentricExitVelocity(vPlanet, vInfOut)
	if got != (Vec3[Velocity]{-7, 29, -1}) {
		t.Fatalf("got %+v", got)
	}
	planet := NewStateVector(Vec3[Distance]{7.78e8, 0, 0}, vPlanet, Sun.GM())
	sv := HeliocentricExitState(planet, vInfOut)
	if sv.R != planet.R {
		t.Fatal("flyby moved the planet")
	}
	if sv.V != got {
		t.Fatalf("exit velocity %+v", sv.V)
	}
	if sv.GM() != Sun.GM() {
		t.Fatal("exit state left the heliocentric frame")
	}
}

func TestBPlane(t *testing.T) {
	R := Vec3[Distance]{546507.344255845, -527978.380486028, 531109.066836708}
	V := Vec3[Velocity]{-4.9220589268733, 5.36316523097915, -5.22166308425181}
	bp, err := NewBPlane(*NewOrbitFromRV(R, V, Earth))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(bp.BR, 10606.21042874, 1e-6) {
		t.Fatalf("BR = %.8f", bp.BR)
	}
	if !floats.EqualWithinAbs(bp.BT, 45892.32379544, 1e-6) {
		t.Fatalf("BT = %.8f", bp.BT)
	}
	if math.IsNaN(bp.LTOF) || bp.LTOF == 0 {
		t.Fatalf("LTOF = %f", bp.LTOF)
	}
	if !strings.Contains(bp.String(), "BT=") {
		t.Fatalf("String()=%q", bp.String())
	}
	if _, err := NewBPlane(*NewOrbitFromOE(42164, 0.01, 1, 1, 1, 0, Earth)); !errors.Is(err, ErrNotHyperbolic) {
		t.Fatalf("closed orbit: %v", err)
	}
}
