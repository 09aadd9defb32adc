package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNormCDF_KnownValues(t *testing.T) {
	if got := NormCDF(0); !almostEqual(got, 0.5, 1e-12) {
		t.Fatalf("N(0) = %v, want 0.5", got)
	}
	if got := NormCDF(1.959964); !almostEqual(got, 0.975, 1e-6) {
		t.Fatalf("N(1.959964) = %v, want 0.975", got)
	}
}

func TestNormCDF_MatchesReferenceDistribution(t *testing.T) {
	for x := -10.0; x <= 10.0; x += 0.125 {
		want := distuv.UnitNormal.CDF(x)
		if got := NormCDF(x); !almostEqual(got, want, 1e-9) {
			t.Fatalf("N(%v) = %v, reference %v", x, got, want)
		}
	}
}

func TestNormCDF_Symmetry(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1, 2.33, 3.7, 6, 9.5} {
		if lhs, rhs := NormCDF(-x), 1-NormCDF(x); !almostEqual(lhs, rhs, 1e-12) {
			t.Fatalf("N(-%v)=%v, 1-N(%v)=%v", x, lhs, x, rhs)
		}
	}
}

func TestNormCDF_NonFinite(t *testing.T) {
	if got := NormCDF(math.Inf(1)); got != 1 {
		t.Fatalf("N(+Inf) = %v, want 1", got)
	}
	if got := NormCDF(math.Inf(-1)); got != 0 {
		t.Fatalf("N(-Inf) = %v, want 0", got)
	}
	if got := NormCDF(math.NaN()); !math.IsNaN(got) {
		t.Fatalf("N(NaN) = %v, want NaN", got)
	}
}

func TestQuote_ReferenceCases(t *testing.T) {
	tests := []struct {
		name              string
		S, K, T, r, sigma float64
		call, put         float64
		tol               float64
	}{
		{"otm call", 100, 110, 0.5, 0.02, 0.25, 3.741672, 12.647153, 1e-3},
		{"atm zero rate", 100, 100, 1, 0, 0.2, 7.9656, 7.9656, 1e-2},
		{"textbook", 100, 100, 1, 0.05, 0.2, 10.450583572185565, 5.573526022256971, 1e-9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			call, put, err := Quote(tc.S, tc.K, tc.T, tc.r, tc.sigma)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(call, tc.call, tc.tol) {
				t.Fatalf("call = %v, want %v", call, tc.call)
			}
			if !almostEqual(put, tc.put, tc.tol) {
				t.Fatalf("put = %v, want %v", put, tc.put)
			}
		})
	}
}

func TestCallPutPrice_AgreeWithQuote(t *testing.T) {
	S, K, T, r, sigma := 100.0, 110.0, 0.5, 0.02, 0.25

	call, err := CallPrice(S, K, T, r, sigma)
	if err != nil {
		t.Fatalf("call err: %v", err)
	}
	put, err := PutPrice(S, K, T, r, sigma)
	if err != nil {
		t.Fatalf("put err: %v", err)
	}
	qc, qp, _ := Quote(S, K, T, r, sigma)
	if call != qc || put != qp {
		t.Fatalf("CallPrice/PutPrice (%v, %v) differ from Quote (%v, %v)", call, put, qc, qp)
	}
}

func TestAtTheMoneyZeroRateSymmetry(t *testing.T) {
	call, put, err := Quote(100, 100, 1, 0, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(call, put, 1e-12) {
		t.Fatalf("expected call == put, got %v vs %v", call, put)
	}
}

func TestPutCallParity(t *testing.T) {
	for _, S := range []float64{50, 90, 100, 110, 250} {
		for _, K := range []float64{60, 100, 140} {
			for _, T := range []float64{0.01, 0.25, 1, 5} {
				for _, r := range []float64{-0.01, 0, 0.03, 0.1} {
					for _, sigma := range []float64{0.05, 0.2, 0.8} {
						call, put, err := Quote(S, K, T, r, sigma)
						if err != nil {
							t.Fatalf("unexpected error: %v", err)
						}
						lhs := call - put
						rhs := S - K*math.Exp(-r*T)
						scale := math.Max(1, math.Max(S, K))
						if math.Abs(lhs-rhs)/scale > 1e-9 {
							t.Fatalf("parity violated S=%v K=%v T=%v r=%v sigma=%v: %v vs %v",
								S, K, T, r, sigma, lhs, rhs)
						}
					}
				}
			}
		}
	}
}

func TestMonotonicInSpot(t *testing.T) {
	K, T, r, sigma := 100.0, 0.75, 0.03, 0.3
	prevCall, prevPut := math.Inf(-1), math.Inf(1)

	for S := 40.0; S <= 200.0; S += 2.5 {
		call, put, err := Quote(S, K, T, r, sigma)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if call < prevCall {
			t.Fatalf("call decreased at S=%v: %v < %v", S, call, prevCall)
		}
		if put > prevPut {
			t.Fatalf("put increased at S=%v: %v > %v", S, put, prevPut)
		}
		prevCall, prevPut = call, put
	}
}

func TestVolatilityBoundaries(t *testing.T) {
	S, K, T, r := 100.0, 90.0, 1.0, 0.05

	call, err := CallPrice(S, K, T, r, 1e-6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	intrinsic := math.Max(S-K*math.Exp(-r*T), 0)
	if !almostEqual(call, intrinsic, 1e-6) {
		t.Fatalf("low vol call = %v, want intrinsic %v", call, intrinsic)
	}

	call, err = CallPrice(S, K, T, r, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(call, S, 1e-6) {
		t.Fatalf("high vol call = %v, want spot %v", call, S)
	}
}

func TestValidate_RejectsOutOfDomain(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name              string
		S, K, T, r, sigma float64
	}{
		{"zero spot", 0, 100, 1, 0.01, 0.2},
		{"negative spot", -5, 100, 1, 0.01, 0.2},
		{"zero strike", 100, 0, 1, 0.01, 0.2},
		{"zero expiry", 100, 100, 0, 0.01, 0.2},
		{"negative expiry", 100, 100, -1, 0.01, 0.2},
		{"zero vol", 100, 100, 1, 0.01, 0},
		{"nan spot", nan, 100, 1, 0.01, 0.2},
		{"nan vol", 100, 100, 1, 0.01, nan},
		{"nan rate", 100, 100, 1, nan, 0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CallPrice(tc.S, tc.K, tc.T, tc.r, tc.sigma); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("CallPrice: expected ErrInvalidInput, got %v", err)
			}
			if _, err := PutPrice(tc.S, tc.K, tc.T, tc.r, tc.sigma); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("PutPrice: expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestQuote_OverflowPropagates(t *testing.T) {
	inf := math.Inf(1)
	isNaN := func(x float64) bool { return math.IsNaN(x) }
	isPosInf := func(x float64) bool { return math.IsInf(x, 1) }

	tests := []struct {
		name              string
		S, K, T, r, sigma float64
		call, put         func(float64) bool
	}{
		{"discount overflow", 100, 100, 10, -1000, 0.2, isNaN, isPosInf},
		{"infinite spot", inf, 100, 1, 0.05, 0.2, isPosInf, isNaN},
		{"infinite strike", 100, inf, 1, 0.05, 0.2, isNaN, isPosInf},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.S, tc.K, tc.T, tc.r, tc.sigma); err != nil {
				t.Fatalf("Validate: unexpected error %v", err)
			}
			call, put, err := Quote(tc.S, tc.K, tc.T, tc.r, tc.sigma)
			if err != nil {
				t.Fatalf("Quote: unexpected error %v", err)
			}
			if !tc.call(call) || !tc.put(put) {
				t.Fatalf("call=%v put=%v", call, put)
			}
		})
	}
}

func TestD1D2Invariant(t *testing.T) {
	S, K, T, r, sigma := 120.0, 100.0, 2.0, 0.04, 0.35
	d1, d2 := d1d2(S, K, T, r, sigma)
	if !almostEqual(d1-d2, sigma*math.Sqrt(T), 1e-15) {
		t.Fatalf("d1-d2 = %v, want %v", d1-d2, sigma*math.Sqrt(T))
	}
}

func TestPriceAndParseOptionType(t *testing.T) {
	for _, in := range []string{"call", "C", " Call "} {
		kind, err := ParseOptionType(in)
		if err != nil || kind != Call {
			t.Fatalf("ParseOptionType(%q) = %v, %v", in, kind, err)
		}
	}
	for _, in := range []string{"put", "P"} {
		kind, err := ParseOptionType(in)
		if err != nil || kind != Put {
			t.Fatalf("ParseOptionType(%q) = %v, %v", in, kind, err)
		}
	}
	if _, err := ParseOptionType("straddle"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	put, err := Price(Put, 100, 100, 1, 0.05, 0.2)
	if err != nil || !almostEqual(put, 5.573526022256971, 1e-9) {
		t.Fatalf("Price(Put) = %v, %v", put, err)
	}
	if _, err := Price(OptionType("x"), 100, 100, 1, 0.05, 0.2); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestYearsBetween(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 73)
	if got := YearsBetween(from, to); !almostEqual(got, 0.2, 1e-12) {
		t.Fatalf("YearsBetween = %v, want 0.2", got)
	}
	if got := YearsBetween(to, from); got >= 0 {
		t.Fatalf("expected negative year fraction, got %v", got)
	}
}
