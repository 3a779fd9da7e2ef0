package orbital

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
	"github.com/soniakeys/meeus/v3/julian"
)

func TestLambertVallado(t *testing.T) {
	// From Vallado 4th edition, page 497
	Ri := mat64.NewVector(3, []float64{15945.34, 0, 0})
	Rf := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	ViExp := mat64.NewVector(3, []float64{2.058913, 2.915965, 0})
	VfExp := mat64.NewVector(3, []float64{-3.451565, 0.910315, 0})
	for _, dm := range []TransferType{TTypeAuto, TType1} {
		Vi, Vf, φ, err := Lambert(Ri, Rf, 76.0*time.Minute, dm, Earth.GM())
		if err != nil {
			t.Fatalf("err %s", err)
		}
		if !mat64.EqualApprox(Vi, ViExp, 1e-6) {
			t.Logf("φ=%f", φ)
			t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vi.T()), mat64.Formatted(ViExp.T()))
			t.Fatalf("[%s] incorrect Vi computed", dm)
		}
		if !mat64.EqualApprox(Vf, VfExp, 1e-6) {
			t.Logf("φ=%f", φ)
			t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vf.T()), mat64.Formatted(VfExp.T()))
			t.Fatalf("[%s] incorrect Vf computed", dm)
		}
	}
	// Long way
	ViExp = mat64.NewVector(3, []float64{-3.811158, -2.003854, 0})
	VfExp = mat64.NewVector(3, []float64{4.207569, 0.914724, 0})
	Vi, Vf, φ, err := Lambert(Ri, Rf, 76.0*time.Minute, TType2, Earth.GM())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !mat64.EqualApprox(Vi, ViExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vi.T()), mat64.Formatted(ViExp.T()))
		t.Fatalf("[%s] incorrect Vi computed", TType2)
	}
	if !mat64.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vf.T()), mat64.Formatted(VfExp.T()))
		t.Fatalf("[%s] incorrect Vf computed", TType2)
	}
}

func TestLambertErrors(t *testing.T) {
	Rf := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	_, _, _, err := Lambert(mat64.NewVector(2, []float64{15945.34, 0}), Rf, 76.0*time.Minute, TType1, Earth.GM())
	if err == nil {
		t.Fatal("err should not be nil if the R vectors are of different dimensions")
	}
	_, _, _, err = Lambert(mat64.NewVector(2, []float64{15945.34, 0}), mat64.NewVector(2, []float64{12214.83899, 10249.46731}), 76.0*time.Minute, TType1, Earth.GM())
	if err == nil {
		t.Fatal("err should not be nil if the R vectors are not of dimension 3x1")
	}
	Ri := mat64.NewVector(3, []float64{15945.34, 0, 0})
	if _, _, _, err = Lambert(Ri, Rf, 76.0*time.Minute, TType1, 0); !errors.Is(err, ErrNonPositiveμ) {
		t.Fatalf("got %v", err)
	}
}

func TestLambertMars2Jupiter(t *testing.T) {
	// Transfer geometry from Dr. Davis' ASEN 6008 IMD course at CU.
	dtDep := julian.JDToTime(2456300)
	dtArr := julian.JDToTime(2457500)
	Ri := mat64.NewVector(3, []float64{170145121.3, -117637192.8, -6642044.272})
	Rf := mat64.NewVector(3, []float64{-803451694.7, 121525767.1, 17465211.78})
	Vi, Vf, φ, err := Lambert(Ri, Rf, dtArr.Sub(dtDep), TTypeAuto, Sun.GM())
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	ViExp := mat64.NewVector(3, []float64{13.74077736, 28.83099312, 0.691285008})
	VfExp := mat64.NewVector(3, []float64{-0.883933069, -7.983627014, -0.2407705978})
	if !mat64.EqualApprox(Vi, ViExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vi.T()), mat64.Formatted(ViExp.T()))
		t.Fatal("incorrect Vi computed")
	}
	if !mat64.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("φ=%f", φ)
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vf.T()), mat64.Formatted(VfExp.T()))
		t.Fatal("incorrect Vf computed")
	}
	mars, err := Mars.HelioState(dtDep)
	if err != nil {
		t.Fatal(err)
	}
	jupiter, err := Jupiter.HelioState(dtArr)
	if err != nil {
		t.Fatal(err)
	}
	vInfDep := mat64.NewVector(3, nil)
	vInfArr := mat64.NewVector(3, nil)
	vInfDep.SubVec(Vi, mat64.NewVector(3, mars.V.Slice()))
	vInfArr.SubVec(Vf, mat64.NewVector(3, jupiter.V.Slice()))
	c3 := math.Pow(mat64.Norm(vInfDep, 2), 2)
	vInf := mat64.Norm(vInfArr, 2)
	// The mean-element ephemeris is good to a few m/s here, hence the looser
	// tolerances than the course spreadsheet's.
	if !floats.EqualWithinAbs(c3, 51.97, 2e-1) {
		t.Fatalf("c3=%f expected ~51.97 km^2/s^2", c3)
	}
	if !floats.EqualWithinAbs(vInf, 4.479, 2e-2) {
		t.Fatalf("vInf=%f expected ~4.479 km/s", vInf)
	}
}

func TestLambertTransferConnects(t *testing.T) {
	// The conic the solver returns must actually fly from Ri to Rf in Δt0:
	// integrate the departure state and watch it arrive.
	dtDep := julian.JDToTime(2455450)
	dtArr := julian.JDToTime(2455610)
	earth, err := Earth.HelioState(dtDep)
	if err != nil {
		t.Fatal(err)
	}
	venus, err := Venus.HelioState(dtArr)
	if err != nil {
		t.Fatal(err)
	}
	Δt := dtArr.Sub(dtDep)
	Vi, Vf, _, err := Lambert(mat64.NewVector(3, earth.R.Slice()), mat64.NewVector(3, venus.R.Slice()), Δt, TType2, Sun.GM())
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	vec3 := func(v *mat64.Vector) Vec3[Velocity] {
		return Vec3[Velocity]{Velocity(v.At(0, 0)), Velocity(v.At(1, 0)), Velocity(v.At(2, 0))}
	}
	sv := NewStateVector(earth.R, vec3(Vi), Sun.GM())
	res, err := NewRK45(1e-11, 1e-9).Propagate(sv, Δt, PropConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if miss := res.Final.SV.R.Sub(venus.R).Norm(); float64(miss) > 50 {
		t.Fatalf("transfer misses Venus by %f km", miss)
	}
	if miss := res.Final.SV.V.Sub(vec3(Vf)).Norm(); float64(miss) > 1e-5 {
		t.Fatalf("arrival velocity off by %f km/s", miss)
	}
}
