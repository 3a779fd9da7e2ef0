package main

import (
	"log"
	"time"

	"github.com/spf13/viper"

	orbital "github.com/sksat/solar-line-sub004"
)

// readState builds the initial state from either an [orbit] section of
// classical elements or a [state] section of Cartesian components. Elements
// need a named central body for μ; a Cartesian state accepts a raw arc.mu.
func readState() (orbital.StateVector, orbital.CelestialObject, bool) {
	var body orbital.CelestialObject
	bodyKnown := false
	if name := viper.GetString("arc.body"); name != "" {
		var err error
		body, err = orbital.CelestialObjectFromString(name)
		if err != nil {
			log.Fatalf("could not understand body `%s`: %s", name, err)
		}
		bodyKnown = true
	}
	if viper.IsSet("orbit.sma") {
		if !bodyKnown {
			log.Fatal("orbital elements need a named central body (set arc.body)")
		}
		a := viper.GetFloat64("orbit.sma")
		e := viper.GetFloat64("orbit.ecc")
		i := viper.GetFloat64("orbit.inc")
		Ω := viper.GetFloat64("orbit.RAAN")
		ω := viper.GetFloat64("orbit.argPeri")
		ν := viper.GetFloat64("orbit.tAnomaly")
		return orbital.NewOrbitFromOE(a, e, i, Ω, ω, ν, body).StateVector(), body, true
	}
	if viper.IsSet("state.rx") {
		μ := viper.GetFloat64("arc.mu")
		if bodyKnown {
			μ = float64(body.GM())
		}
		if μ <= 0 {
			log.Fatal("a Cartesian state needs arc.body or a positive arc.mu")
		}
		R := orbital.Vec3FromArray[orbital.Distance]([3]float64{
			viper.GetFloat64("state.rx"), viper.GetFloat64("state.ry"), viper.GetFloat64("state.rz")})
		V := orbital.Vec3FromArray[orbital.Velocity]([3]float64{
			viper.GetFloat64("state.vx"), viper.GetFloat64("state.vy"), viper.GetFloat64("state.vz")})
		return orbital.NewStateVector(R, V, orbital.GM(μ)), body, bodyKnown
	}
	log.Fatal("scenario defines neither [orbit] elements nor a [state] vector")
	panic("unreachable")
}

func readIntegrator() orbital.Propagator {
	switch kind := viper.GetString("integrator.kind"); kind {
	case "", "rk45":
		rtol := viper.GetFloat64("integrator.rtol")
		if rtol == 0 {
			rtol = 1e-8
		}
		atol := viper.GetFloat64("integrator.atol")
		if atol == 0 {
			atol = rtol
		}
		integ := orbital.NewRK45(rtol, atol)
		integ.MaxSteps = viper.GetInt("integrator.maxsteps")
		integ.InitialStep = viper.GetDuration("integrator.step")
		return integ
	case "rk4":
		step := viper.GetDuration("integrator.step")
		if step == 0 {
			step = orbital.DefaultStep
		}
		return orbital.NewRK4(step)
	case "verlet":
		step := viper.GetDuration("integrator.step")
		if step == 0 {
			step = orbital.DefaultStep
		}
		return orbital.NewVerlet(step)
	default:
		log.Fatalf("unknown integrator `%s` (want rk4, rk45 or verlet)", kind)
		panic("unreachable")
	}
}

// readThrust returns the thrust profile and any step boundary the profile
// itself imposes, like the brachistochrone flip.
func readThrust() (orbital.ThrustProfile, []float64) {
	switch kind := viper.GetString("thrust.kind"); kind {
	case "", "ballistic":
		return orbital.Ballistic{}, nil
	case "constant-prograde":
		thrust := viper.GetFloat64("thrust.thrust")
		mass := viper.GetFloat64("thrust.mass")
		if thrust <= 0 || mass <= 0 {
			log.Fatalf("constant-prograde needs positive thrust.thrust (N) and thrust.mass (kg)")
		}
		return orbital.NewConstantPrograde(thrust, mass), nil
	case "brachistochrone":
		accel := viper.GetFloat64("thrust.accel")
		flip := viper.GetFloat64("thrust.flip")
		if accel <= 0 || flip < 0 {
			log.Fatalf("brachistochrone needs positive thrust.accel (m/s^2) and a non-negative thrust.flip (s)")
		}
		cl := orbital.NewBrachistochrone(accel, flip)
		return cl, []float64{cl.FlipTime()}
	default:
		log.Fatalf("unknown thrust profile `%s` (want ballistic, constant-prograde or brachistochrone)", kind)
		panic("unreachable")
	}
}

// confReadFloats reads a TOML array of numbers, accepting both integer and
// float literals.
func confReadFloats(key string) []float64 {
	raw, ok := viper.Get(key).([]interface{})
	if !ok {
		return nil
	}
	vals := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			vals = append(vals, v)
		case int64:
			vals = append(vals, float64(v))
		case int:
			vals = append(vals, float64(v))
		default:
			log.Fatalf("`%s` must be an array of numbers", key)
		}
	}
	return vals
}

func readDuration() time.Duration {
	if secs := viper.GetFloat64("arc.seconds"); secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	dur := viper.GetDuration("arc.duration")
	if dur <= 0 {
		log.Fatal("arc.duration (or arc.seconds) must be positive")
	}
	return dur
}
