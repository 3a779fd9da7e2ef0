package orbital

import (
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// RK4 is the classic fixed-step fourth order Runge-Kutta scheme. Its cost
// is exactly four dynamics evaluations per step, which makes the work per
// arc known ahead of time.
type RK4 struct {
	Step time.Duration
}

// NewRK4 returns a fixed-step integrator with the given step size.
func NewRK4(step time.Duration) RK4 {
	if step <= 0 {
		panic(fmt.Errorf("invalid step size %s", step))
	}
	return RK4{step}
}

func (i RK4) String() string {
	return fmt.Sprintf("RK4(h=%s)", i.Step)
}

// Propagate implements the Propagator interface. Steps are shortened to
// land exactly on each forced boundary and on the arc end.
func (i RK4) Propagate(sv StateVector, duration time.Duration, cfg PropConfig) (PropagationResult, error) {
	if i.Step <= 0 {
		panic(fmt.Errorf("invalid step size %s", i.Step))
	}
	if err := checkArc(sv, duration); err != nil {
		return PropagationResult{}, err
	}
	klog := kitlog.With(cfg.logger(), "subsys", "astro", "integ", i.String())
	klog.Log("level", "info", "status", "starting", "duration", duration)

	step := i.Step.Seconds()
	end := duration.Seconds()
	dyn := &dynamics{float64(sv.μ), cfg.profile(), 0}
	s := packState(sv)
	ξ0 := sv.Energyξ()
	var diag Diagnostics
	var traj []TimedState
	if cfg.SaveTrajectory {
		traj = make([]TimedState, 0, int(end/step)+len(cfg.Discontinuities)+2)
		traj = append(traj, unpackState(0, s, sv.μ))
	}
	t := 0.0
	for _, tb := range boundaries(cfg.Discontinuities, end) {
		for t < tb {
			h := step
			hitsBoundary := t+h >= tb
			if hitsBoundary {
				h = tb - t
			}
			s = rk4Step(dyn, t, s, h)
			if hitsBoundary {
				t = tb
			} else {
				t += h
			}
			diag.NAccept++
			if cfg.SaveTrajectory {
				traj = append(traj, unpackState(t, s, sv.μ))
			}
		}
	}
	diag.NEval = dyn.nEval
	final := unpackState(t, s, sv.μ)
	diag.EnergyDrift = energyDrift(ξ0, final.SV.Energyξ())
	klog.Log("level", "notice", "status", "finished", "steps", diag.NAccept, "drift", diag.EnergyDrift)
	return PropagationResult{traj, final, diag}, nil
}

// rk4Step advances one classic Runge-Kutta step of size h from t. The last
// stage samples the dynamics one ulp inside the step, so a step ending on
// a discontinuity stays on its own side of it.
func rk4Step(dyn *dynamics, t float64, s [6]float64, h float64) [6]float64 {
	k1 := dyn.eval(t, s)
	k2 := dyn.eval(t+h/2, stepped(s, k1, h/2))
	k3 := dyn.eval(t+h/2, stepped(s, k2, h/2))
	k4 := dyn.eval(math.Nextafter(t+h, t), stepped(s, k3, h))
	var out [6]float64
	for j := 0; j < 6; j++ {
		out[j] = s[j] + h/6*(k1[j]+2*k2[j]+2*k3[j]+k4[j])
	}
	return out
}

// stepped returns s + h·k.
func stepped(s, k [6]float64, h float64) (o [6]float64) {
	for j := 0; j < 6; j++ {
		o[j] = s[j] + h*k[j]
	}
	return
}
