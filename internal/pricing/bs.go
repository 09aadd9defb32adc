// Package pricing evaluates the closed-form Black-Scholes model for European
// options.
//
// All functions are pure and safe for concurrent use.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidInput is returned when a pricing parameter lies outside the
// domain of the formula.
var ErrInvalidInput = errors.New("invalid pricing input")

// OptionType selects the side of a European option.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

const daysPerYear = 365.0

// ParseOptionType accepts "call", "c", "put" or "p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, s)
}

// NormCDF returns P(Z <= x) for a standard normal variable Z, computed as
// 0.5 * (1 + erf(x / sqrt(2))).
//
// NormCDF(+Inf) is 1, NormCDF(-Inf) is 0 and NaN propagates.
func NormCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Validate reports whether the five inputs are inside the domain of the
// formula. Spot, strike, time to expiry and volatility must be strictly
// positive; the rate may be any number except NaN.
func Validate(S, K, T, r, sigma float64) error {
	// !(x > 0) also catches NaN
	switch {
	case !(S > 0):
		return fmt.Errorf("%w: spot must be positive, got %g", ErrInvalidInput, S)
	case !(K > 0):
		return fmt.Errorf("%w: strike must be positive, got %g", ErrInvalidInput, K)
	case !(T > 0):
		return fmt.Errorf("%w: time to expiry must be positive, got %g", ErrInvalidInput, T)
	case !(sigma > 0):
		return fmt.Errorf("%w: volatility must be positive, got %g", ErrInvalidInput, sigma)
	case math.IsNaN(r):
		return fmt.Errorf("%w: rate is NaN", ErrInvalidInput)
	}
	return nil
}

// CallPrice calculates the price of a European call option.
//
// Parameters:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	S*N(d1) - K*exp(-r*T)*N(d2), or an error wrapping ErrInvalidInput when
//	the inputs are outside the domain of the formula.
func CallPrice(S, K, T, r, sigma float64) (float64, error) {
	call, _, err := Quote(S, K, T, r, sigma)
	return call, err
}

// PutPrice calculates the price of a European put option as
// K*exp(-r*T)*N(-d2) - S*N(-d1). Parameters are the same as CallPrice.
func PutPrice(S, K, T, r, sigma float64) (float64, error) {
	_, put, err := Quote(S, K, T, r, sigma)
	return put, err
}

// Quote prices the call and the put from a single evaluation of d1 and d2.
func Quote(S, K, T, r, sigma float64) (call, put float64, err error) {
	if err := Validate(S, K, T, r, sigma); err != nil {
		return 0, 0, err
	}

	d1, d2 := d1d2(S, K, T, r, sigma)
	discountedStrike := K * math.Exp(-r*T)

	call = S*NormCDF(d1) - discountedStrike*NormCDF(d2)
	put = discountedStrike*NormCDF(-d2) - S*NormCDF(-d1)
	return call, put, nil
}

// Price dispatches to CallPrice or PutPrice.
func Price(kind OptionType, S, K, T, r, sigma float64) (float64, error) {
	switch kind {
	case Call:
		return CallPrice(S, K, T, r, sigma)
	case Put:
		return PutPrice(S, K, T, r, sigma)
	}
	return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, kind)
}

// YearsBetween returns the ACT/365 year fraction from one instant to another.
// The result is negative when to is before from.
func YearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}

// d1d2 assumes validated inputs.
func d1d2(S, K, T, r, sigma float64) (d1, d2 float64) {
	volSqrtT := sigma * math.Sqrt(T)
	d1 = (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}
