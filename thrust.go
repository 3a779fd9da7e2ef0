package orbital

import "fmt"

// ThrustProfile defines the thrust acceleration added to gravity during
// propagation. The set of profiles is closed: the unexported method keeps
// outside packages from adding their own, so integrators can reason about
// every case.
type ThrustProfile interface {
	// Accel returns the thrust acceleration in km/s² at time t (seconds from
	// the start of the arc) for the position R (km) and velocity V (km/s).
	Accel(t float64, R, V []float64) []float64
	fmt.Stringer
	ballistic() bool
}

// Ballistic is the absence of thrust.
type Ballistic struct{}

// Accel implements the ThrustProfile interface.
func (Ballistic) Accel(t float64, R, V []float64) []float64 {
	return []float64{0, 0, 0}
}

func (Ballistic) String() string { return "ballistic" }

func (Ballistic) ballistic() bool { return true }

// ConstantPrograde thrusts along the velocity at a fixed force and mass.
// The mass stays constant for the whole arc.
type ConstantPrograde struct {
	thrust float64 // N
	mass   float64 // kg
}

// NewConstantPrograde returns a constant prograde thrust profile for the
// given thrust in newtons and spacecraft mass in kg.
func NewConstantPrograde(thrustN, massKg float64) ConstantPrograde {
	if thrustN <= 0 {
		panic(fmt.Errorf("invalid thrust %f N", thrustN))
	}
	if massKg <= 0 {
		panic(fmt.Errorf("invalid mass %f kg", massKg))
	}
	return ConstantPrograde{thrustN, massKg}
}

// Accel implements the ThrustProfile interface. The thrust direction is
// undefined at zero velocity, so the profile coasts there.
func (cl ConstantPrograde) Accel(t float64, R, V []float64) []float64 {
	a := cl.thrust / cl.mass * 1e-3 // N/kg is m/s²
	vDir := unitVector(V)
	return []float64{a * vDir[0], a * vDir[1], a * vDir[2]}
}

func (cl ConstantPrograde) String() string {
	return fmt.Sprintf("prograde %.3g N / %.5g kg", cl.thrust, cl.mass)
}

func (cl ConstantPrograde) ballistic() bool { return false }

// Brachistochrone thrusts prograde at a fixed acceleration until the flip
// time, then retrograde with the same magnitude. The flip itself is a
// discontinuity of the dynamics and must be given to the propagation config
// as one.
type Brachistochrone struct {
	accel    float64 // m/s²
	flipTime float64 // s
}

// NewBrachistochrone returns an accelerate-flip-decelerate profile for the
// given acceleration in m/s², flipping at flipTimeS seconds into the arc.
func NewBrachistochrone(accelMS2, flipTimeS float64) Brachistochrone {
	if accelMS2 <= 0 {
		panic(fmt.Errorf("invalid acceleration %f m/s²", accelMS2))
	}
	if flipTimeS < 0 {
		panic(fmt.Errorf("invalid flip time %f s", flipTimeS))
	}
	return Brachistochrone{accelMS2, flipTimeS}
}

// Accel implements the ThrustProfile interface.
func (cl Brachistochrone) Accel(t float64, R, V []float64) []float64 {
	a := cl.accel * 1e-3
	if t >= cl.flipTime {
		a = -a
	}
	vDir := unitVector(V)
	return []float64{a * vDir[0], a * vDir[1], a * vDir[2]}
}

func (cl Brachistochrone) String() string {
	return fmt.Sprintf("brachistochrone %.3g m/s² flip at %.5g s", cl.accel, cl.flipTime)
}

func (cl Brachistochrone) ballistic() bool { return false }

// FlipTime returns the sign flip time in seconds, to hand to the propagation
// config as a discontinuity.
func (cl Brachistochrone) FlipTime() float64 { return cl.flipTime }
