package orbital

import (
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// DefaultMaxSteps caps the number of step attempts of one adaptive arc.
const DefaultMaxSteps = 1000000

// Step controller constants, Hairer, Nørsett & Wanner vol. II.
const (
	rk45Safety    = 0.9
	rk45MinFactor = 0.2
	rk45MaxFactor = 5.0
	rk45Alpha     = 0.20 // exponent on the fresh scaled error
	rk45Beta      = 0.08 // exponent on the previous scaled error
)

// Dormand-Prince 5(4) tableau. The last stage of an accepted step doubles
// as the first stage of the next one (FSAL), so only six fresh evaluations
// are needed per step.
var (
	dpC = [7]float64{0, 1. / 5, 3. / 10, 4. / 5, 8. / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1. / 5},
		{3. / 40, 9. / 40},
		{44. / 45, -56. / 15, 32. / 9},
		{19372. / 6561, -25360. / 2187, 64448. / 6561, -212. / 729},
		{9017. / 3168, -355. / 33, 46732. / 5247, 49. / 176, -5103. / 18656},
		{35. / 384, 0, 500. / 1113, 125. / 192, -2187. / 6784, 11. / 84},
	}
	// dpE is the fifth order weights minus the embedded fourth order ones,
	// so the local error estimate is h·Σ dpE[m]·k[m].
	dpE = [7]float64{71. / 57600, 0, -71. / 16695, 71. / 1920, -17253. / 339200, 22. / 525, -1. / 40}
)

// RK45 is the adaptive Dormand-Prince 5(4) scheme with a PI step size
// controller. It is the integrator of choice for long arcs and for thrust
// profiles whose acceleration varies along the orbit.
type RK45 struct {
	RelTol, AbsTol float64
	InitialStep    time.Duration // zero picks a starting step automatically
	MaxSteps       int           // zero means DefaultMaxSteps
}

// NewRK45 returns an adaptive integrator with the given tolerances.
func NewRK45(rtol, atol float64) RK45 {
	if rtol <= 0 || atol <= 0 {
		panic(fmt.Errorf("invalid tolerances rtol=%g atol=%g", rtol, atol))
	}
	return RK45{RelTol: rtol, AbsTol: atol}
}

func (i RK45) String() string {
	return fmt.Sprintf("RK45(rtol=%g atol=%g)", i.RelTol, i.AbsTol)
}

// Propagate implements the Propagator interface. The controller never
// steps across a forced boundary: the step is clamped to land exactly on
// it, and the first stage is re-evaluated on the far side.
func (i RK45) Propagate(sv StateVector, duration time.Duration, cfg PropConfig) (PropagationResult, error) {
	if i.RelTol <= 0 || i.AbsTol <= 0 {
		panic(fmt.Errorf("invalid tolerances rtol=%g atol=%g", i.RelTol, i.AbsTol))
	}
	if err := checkArc(sv, duration); err != nil {
		return PropagationResult{}, err
	}
	maxSteps := i.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	klog := kitlog.With(cfg.logger(), "subsys", "astro", "integ", i.String())
	klog.Log("level", "info", "status", "starting", "duration", duration)

	end := duration.Seconds()
	dyn := &dynamics{float64(sv.μ), cfg.profile(), 0}
	s := packState(sv)
	ξ0 := sv.Energyξ()
	var diag Diagnostics
	var traj []TimedState
	if cfg.SaveTrajectory {
		traj = append(traj, unpackState(0, s, sv.μ))
	}
	if end == 0 {
		return PropagationResult{traj, unpackState(0, s, sv.μ), diag}, nil
	}

	bs := boundaries(cfg.Discontinuities, end)
	bIdx := 0
	k1 := dyn.eval(0, s)
	h := i.InitialStep.Seconds()
	if h <= 0 {
		h = i.initialStep(dyn, s, k1)
	}
	errPrev := 1e-4
	t := 0.0
	for t < end {
		if diag.NAccept+diag.NReject >= maxSteps {
			budget := BudgetError{diag.NAccept + diag.NReject, h, time.Duration(t * float64(time.Second))}
			klog.Log("level", "critical", "status", "killed", "err", budget)
			return PropagationResult{}, budget
		}
		tb := bs[bIdx]
		hFull := h
		hitsBoundary := t+h >= tb
		if hitsBoundary {
			h = tb - t
		}
		if t+h == t {
			return PropagationResult{}, ErrStepUnderflow
		}

		var k [7][6]float64
		k[0] = k1
		var newS [6]float64
		for st := 1; st < 7; st++ {
			var y [6]float64
			for j := 0; j < 6; j++ {
				acc := s[j]
				for m := 0; m < st; m++ {
					if dpA[st][m] != 0 {
						acc += h * dpA[st][m] * k[m][j]
					}
				}
				y[j] = acc
			}
			if st == 6 {
				// The seventh stage input is the fifth order solution.
				newS = y
			}
			τ := t + dpC[st]*h
			if dpC[st] == 1 {
				// A stage at the right end of the step samples the dynamics
				// one ulp inside it, so a step ending on a discontinuity
				// stays on its own side of it.
				τ = math.Nextafter(t+h, t)
			}
			k[st] = dyn.eval(τ, y)
		}

		var sumsq float64
		for j := 0; j < 6; j++ {
			var e float64
			for m := 0; m < 7; m++ {
				if dpE[m] != 0 {
					e += dpE[m] * k[m][j]
				}
			}
			esc := h * e / (i.AbsTol + i.RelTol*math.Max(math.Abs(s[j]), math.Abs(newS[j])))
			sumsq += esc * esc
		}
		errN := math.Sqrt(sumsq / 6)

		if errN <= 1 {
			factor := piFactor(errN, errPrev)
			errPrev = math.Max(errN, 1e-4)
			diag.NAccept++
			s = newS
			if hitsBoundary {
				t = tb
				bIdx++
				if t < end {
					// The dynamics may be discontinuous here, so the FSAL
					// stage cannot be reused.
					k1 = dyn.eval(t, s)
				}
				h = hFull * factor
			} else {
				t += h
				k1 = k[6]
				h = h * factor
			}
			if cfg.SaveTrajectory {
				traj = append(traj, unpackState(t, s, sv.μ))
			}
		} else {
			diag.NReject++
			// Shrink only: no growth right after a rejection.
			h = h * math.Max(rk45MinFactor, math.Min(1, rk45Safety*math.Pow(errN, -rk45Alpha)))
		}
	}
	diag.NEval = dyn.nEval
	final := unpackState(t, s, sv.μ)
	diag.EnergyDrift = energyDrift(ξ0, final.SV.Energyξ())
	klog.Log("level", "notice", "status", "finished", "accepted", diag.NAccept, "rejected", diag.NReject, "drift", diag.EnergyDrift)
	return PropagationResult{traj, final, diag}, nil
}

// piFactor is the PI step factor: grow or shrink from the fresh scaled
// error, damped by the previous one, clamped to [0.2, 5].
func piFactor(err, errPrev float64) float64 {
	f := rk45Safety * math.Pow(err, -rk45Alpha) * math.Pow(errPrev, rk45Beta)
	return math.Max(rk45MinFactor, math.Min(rk45MaxFactor, f))
}

// initialStep picks a starting step from the scaled norms of the state,
// its derivative and a one step estimate of the second derivative, after
// Hairer's DOPRI5.
func (i RK45) initialStep(dyn *dynamics, s, k1 [6]float64) float64 {
	var d0, d1 float64
	for j := 0; j < 6; j++ {
		sc := i.AbsTol + i.RelTol*math.Abs(s[j])
		d0 += (s[j] / sc) * (s[j] / sc)
		d1 += (k1[j] / sc) * (k1[j] / sc)
	}
	d0, d1 = math.Sqrt(d0/6), math.Sqrt(d1/6)
	var h0 float64
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	} else {
		h0 = 0.01 * d0 / d1
	}
	k2 := dyn.eval(h0, stepped(s, k1, h0))
	var d2 float64
	for j := 0; j < 6; j++ {
		sc := i.AbsTol + i.RelTol*math.Abs(s[j])
		d := (k2[j] - k1[j]) / sc
		d2 += d * d
	}
	d2 = math.Sqrt(d2/6) / h0
	var h1 float64
	if m := math.Max(d1, d2); m <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/m, 1./5)
	}
	return math.Min(100*h0, h1)
}
