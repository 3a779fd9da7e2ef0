package orbital

import (
	"fmt"
	"math"
	"strings"
)

// CelestialObject defines a celestial object.
// Does not support satellites yet.
type CelestialObject struct {
	Name   string
	Radius float64
	a      float64
	μ      float64
	SOI    float64 // With respect to the Sun
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (c CelestialObject) GM() GM {
	return GM(c.μ)
}

// SMA returns the mean heliocentric semi-major axis of this object.
func (c CelestialObject) SMA() Distance {
	return Distance(c.a)
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c *CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.a == b.a && c.μ == b.μ && c.SOI == b.SOI
}

// SOIRadius returns the radius of the sphere of influence of a body orbiting
// at semi-major axis a around a primary, rSOI = a·(μ/μprimary)^(2/5). The
// gravitational constant cancels, so μ ratios stand in for mass ratios.
func SOIRadius(a Distance, μBody, μPrimary GM) (Distance, error) {
	if a <= 0 {
		return 0, ErrNonPositiveRadius
	}
	if μBody <= 0 || μPrimary <= 0 {
		return 0, ErrNonPositiveμ
	}
	return a * Distance(math.Pow(float64(μBody)/float64(μPrimary), 0.4)), nil
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined planet '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 695700, -1, 1.32712440017987e11, -1}

// Mercury is the smallest one.
var Mercury = CelestialObject{"Mercury", 2439.7, 57909083, 2.2032080e4, 0.112e6}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 6051.8, 108208601, 3.24858599e5, 0.616e6}

// Earth is home.
var Earth = CelestialObject{"Earth", 6378.1363, 149598023, 3.98600433e5, 924645.0}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 3396.19, 227939282.5616, 4.28283100e4, 576000}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 71492.0, 778298361, 1.266865361e8, 48.2e6}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"Saturn", 60268.0, 1429394133, 3.7931208e7, 54.5e6}

// Uranus is no joke.
var Uranus = CelestialObject{"Uranus", 25559.0, 2875038615, 5.7939513e6, 51.8e6}

// Neptune is windy.
var Neptune = CelestialObject{"Neptune", 24764.0, 4504449769, 6.836529e6, 86.8e6}

// Pluto is not a planet and had that down ranking coming. It should have stayed in its lane.
var Pluto = CelestialObject{"Pluto", 1151.0, 5915799000, 9. * 1e2, 3.1e6}
