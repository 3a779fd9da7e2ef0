package orbital

import (
	"fmt"
	"math"
	"sort"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

/* Handles the astrodynamical propagations. */

// DefaultStep is the default step size of fixed-step propagation.
const DefaultStep = 10 * time.Second

// TimedState ties a Cartesian state to its offset from the start of the arc.
type TimedState struct {
	T  float64 // seconds from the start of the arc
	SV StateVector
}

// Diagnostics counts the work done by an integrator over one arc.
type Diagnostics struct {
	NEval   int // evaluations of the dynamics
	NAccept int // accepted steps
	NReject int // rejected attempts, always zero for fixed-step schemes
	// EnergyDrift is the relative change of the specific mechanical energy
	// over the arc. Only meaningful on ballistic arcs, where it measures the
	// integration error.
	EnergyDrift float64
}

// PropagationResult is the outcome of one propagation arc.
type PropagationResult struct {
	Trajectory []TimedState // every accepted state, nil unless requested
	Final      TimedState
	Diag       Diagnostics
}

// PropConfig carries the options shared by all integrators. The zero value
// coasts, forces no extra step boundaries, keeps only the final state and
// does not log.
type PropConfig struct {
	Profile ThrustProfile // nil coasts
	// Discontinuities lists the times, in seconds from the start of the arc,
	// where the dynamics change abruptly (e.g. a thrust sign flip). Every
	// integrator lands a step exactly on each of them; none of them detects
	// such events on its own.
	Discontinuities []float64
	SaveTrajectory  bool // record every accepted state, not just the final one
	Logger          kitlog.Logger
}

func (c PropConfig) profile() ThrustProfile {
	if c.Profile == nil {
		return Ballistic{}
	}
	return c.Profile
}

func (c PropConfig) logger() kitlog.Logger {
	if c.Logger == nil {
		return kitlog.NewNopLogger()
	}
	return c.Logger
}

// Propagator propagates a Cartesian state for a duration under a config.
type Propagator interface {
	Propagate(sv StateVector, duration time.Duration, cfg PropConfig) (PropagationResult, error)
	fmt.Stringer
}

// checkArc validates what all integrators require of an arc.
func checkArc(sv StateVector, duration time.Duration) error {
	if sv.μ <= 0 {
		return ErrNonPositiveμ
	}
	if sv.R.Norm() <= 0 {
		return ErrNonPositiveRadius
	}
	if duration < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// boundaries returns the forced step boundaries of an arc of the given
// length in seconds: the discontinuities strictly inside the arc, sorted
// and deduplicated, with the arc end appended. The input is not modified.
func boundaries(disc []float64, end float64) []float64 {
	bs := make([]float64, 0, len(disc)+1)
	for _, t := range disc {
		if t > 0 && t < end {
			bs = append(bs, t)
		}
	}
	sort.Float64s(bs)
	out := bs[:0]
	last := math.NaN()
	for _, t := range bs {
		if t != last {
			out = append(out, t)
			last = t
		}
	}
	return append(out, end)
}

// dynamics evaluates the two-body equations of motion with thrust. It
// counts its own evaluations for the Diagnostics.
type dynamics struct {
	μ       float64
	profile ThrustProfile
	nEval   int
}

// eval returns d/dt of the state (R km, V km/s) at t seconds into the arc.
func (d *dynamics) eval(t float64, s [6]float64) [6]float64 {
	d.nEval++
	r := math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])
	bodyAcc := -d.μ / (r * r * r)
	thrust := d.profile.Accel(t, s[0:3], s[3:6])
	var f [6]float64
	f[0], f[1], f[2] = s[3], s[4], s[5]
	f[3] = bodyAcc*s[0] + thrust[0]
	f[4] = bodyAcc*s[1] + thrust[1]
	f[5] = bodyAcc*s[2] + thrust[2]
	for i := 0; i < 6; i++ {
		if math.IsNaN(f[i]) {
			panic(fmt.Errorf("fDot[%d]=NaN @ t=%f s\nR=%+v\tV=%+v", i, t, s[0:3], s[3:6]))
		}
	}
	return f
}

// gravity returns the gravitational acceleration at position r, for the
// schemes which split the dynamics into kicks and drifts.
func (d *dynamics) gravity(r [3]float64) [3]float64 {
	d.nEval++
	rn := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	k := -d.μ / (rn * rn * rn)
	return [3]float64{k * r[0], k * r[1], k * r[2]}
}

func packState(sv StateVector) [6]float64 {
	return [6]float64{
		float64(sv.R.X), float64(sv.R.Y), float64(sv.R.Z),
		float64(sv.V.X), float64(sv.V.Y), float64(sv.V.Z),
	}
}

func unpackState(t float64, s [6]float64, μ GM) TimedState {
	return TimedState{t, StateVector{
		Vec3[Distance]{Distance(s[0]), Distance(s[1]), Distance(s[2])},
		Vec3[Velocity]{Velocity(s[3]), Velocity(s[4]), Velocity(s[5])},
		μ,
	}}
}

// energyDrift returns the relative drift between two specific energies, or
// the absolute drift when the initial energy is zero.
func energyDrift(ξ0, ξ1 float64) float64 {
	if ξ0 == 0 {
		return math.Abs(ξ1 - ξ0)
	}
	return math.Abs((ξ1 - ξ0) / ξ0)
}
