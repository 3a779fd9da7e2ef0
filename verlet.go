package orbital

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Verlet is the kick-drift-kick Störmer-Verlet scheme. It is symplectic:
// over arbitrarily long ballistic arcs its energy error stays bounded
// instead of drifting, at the price of second order accuracy. It refuses
// thrust profiles, since the splitting requires the acceleration to depend
// on position only.
type Verlet struct {
	Step time.Duration
}

// NewVerlet returns a symplectic fixed-step integrator with the given step
// size.
func NewVerlet(step time.Duration) Verlet {
	if step <= 0 {
		panic(fmt.Errorf("invalid step size %s", step))
	}
	return Verlet{step}
}

func (i Verlet) String() string {
	return fmt.Sprintf("Verlet(h=%s)", i.Step)
}

// Propagate implements the Propagator interface for ballistic arcs. The
// second kick of a step is reused as the first kick of the next, so each
// step costs a single dynamics evaluation.
func (i Verlet) Propagate(sv StateVector, duration time.Duration, cfg PropConfig) (PropagationResult, error) {
	if i.Step <= 0 {
		panic(fmt.Errorf("invalid step size %s", i.Step))
	}
	if err := checkArc(sv, duration); err != nil {
		return PropagationResult{}, err
	}
	if !cfg.profile().ballistic() {
		return PropagationResult{}, ErrBallisticOnly
	}
	klog := kitlog.With(cfg.logger(), "subsys", "astro", "integ", i.String())
	klog.Log("level", "info", "status", "starting", "duration", duration)

	step := i.Step.Seconds()
	end := duration.Seconds()
	dyn := &dynamics{float64(sv.μ), Ballistic{}, 0}
	s := packState(sv)
	r := [3]float64{s[0], s[1], s[2]}
	v := [3]float64{s[3], s[4], s[5]}
	ξ0 := sv.Energyξ()
	var diag Diagnostics
	var traj []TimedState
	if cfg.SaveTrajectory {
		traj = make([]TimedState, 0, int(end/step)+len(cfg.Discontinuities)+2)
		traj = append(traj, unpackState(0, s, sv.μ))
	}
	a := dyn.gravity(r)
	t := 0.0
	for _, tb := range boundaries(cfg.Discontinuities, end) {
		for t < tb {
			h := step
			hitsBoundary := t+h >= tb
			if hitsBoundary {
				h = tb - t
			}
			var vHalf [3]float64
			for j := 0; j < 3; j++ {
				vHalf[j] = v[j] + h/2*a[j]
				r[j] += h * vHalf[j]
			}
			a = dyn.gravity(r)
			for j := 0; j < 3; j++ {
				v[j] = vHalf[j] + h/2*a[j]
			}
			if hitsBoundary {
				t = tb
			} else {
				t += h
			}
			diag.NAccept++
			if cfg.SaveTrajectory {
				traj = append(traj, unpackState(t, [6]float64{r[0], r[1], r[2], v[0], v[1], v[2]}, sv.μ))
			}
		}
	}
	diag.NEval = dyn.nEval
	final := unpackState(t, [6]float64{r[0], r[1], r[2], v[0], v[1], v[2]}, sv.μ)
	diag.EnergyDrift = energyDrift(ξ0, final.SV.Energyξ())
	klog.Log("level", "notice", "status", "finished", "steps", diag.NAccept, "drift", diag.EnergyDrift)
	return PropagationResult{traj, final, diag}, nil
}
