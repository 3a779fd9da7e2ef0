package orbital

import "math"

// Tsiolkovsky rocket equation helpers. Thrust is in newtons and mass flow
// in kg/s (SI, as engine datasheets quote them); speeds stay in km/s like
// the rest of the package.

// ExhaustVelocity returns vₑ = Isp·g₀ in km/s for a specific impulse in seconds.
func ExhaustVelocity(isp float64) (Velocity, error) {
	if isp <= 0 {
		return 0, ErrNonPositiveVe
	}
	return Velocity(isp * EarthStdGravity), nil
}

// MassRatio returns m₀/m₁ = exp(Δv/vₑ). An exponent large enough to
// overflow float64 is reported instead of answering +Inf.
func MassRatio(Δv, ve Velocity) (float64, error) {
	if ve <= 0 {
		return 0, ErrNonPositiveVe
	}
	ratio := math.Exp(float64(Δv) / float64(ve))
	if math.IsInf(ratio, 1) {
		return 0, ErrMassRatioOverflow
	}
	return ratio, nil
}

// PropellantFraction returns the propellant share of the initial mass,
// 1 − 1/massRatio.
func PropellantFraction(Δv, ve Velocity) (float64, error) {
	ratio, err := MassRatio(Δv, ve)
	if err != nil {
		return 0, err
	}
	return 1 - 1/ratio, nil
}

// RequiredPropellantMass returns the propellant needed to give the final
// (dry) mass mFinal a velocity change of Δv: mFinal·(exp(Δv/vₑ) − 1).
func RequiredPropellantMass(mFinal Mass, Δv, ve Velocity) (Mass, error) {
	ratio, err := MassRatio(Δv, ve)
	if err != nil {
		return 0, err
	}
	return mFinal * Mass(ratio-1), nil
}

// MassFlowRate returns ṁ = F/vₑ in kg/s for a thrust in newtons.
func MassFlowRate(thrustN float64, ve Velocity) (float64, error) {
	if ve <= 0 {
		return 0, ErrNonPositiveVe
	}
	return thrustN / (float64(ve) * 1e3), nil
}

// JetPower returns P = ½·F·vₑ in watts for a thrust in newtons.
func JetPower(thrustN float64, ve Velocity) float64 {
	return 0.5 * thrustN * float64(ve) * 1e3
}
