// Package engine resolves a pricing request into the five Black-Scholes
// inputs and prices the call and the put.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Both wrap pricing.ErrInvalidInput so callers can treat them as bad input.
var (
	ErrMissingSpot   = fmt.Errorf("%w: spot or underlying is required", pricing.ErrInvalidInput)
	ErrMissingExpiry = fmt.Errorf("%w: years or expiry date is required", pricing.ErrInvalidInput)
)

// SpotFromRequest marks a spot price supplied directly by the caller.
const SpotFromRequest = "request"

// Config holds defaults applied to requests.
type Config struct {
	Rate float64 // used when Request.Rate is nil
}

// Request describes one option pair to price.
type Request struct {
	Underlying string    `json:"underlying,omitempty"` // looked up when Spot is zero
	Spot       float64   `json:"spot,omitempty"`
	Strike     float64   `json:"strike"`
	Years      float64   `json:"years,omitempty"`  // time to expiry; wins over Expiry
	Expiry     time.Time `json:"expiry,omitempty"` // converted with ACT/365 from AsOf
	Rate       *float64  `json:"rate,omitempty"`   // nil means Config.Rate
	Vol        float64   `json:"vol"`
	AsOf       time.Time `json:"as_of,omitempty"` // zero means now
}

// Result is a priced request with its resolved inputs.
type Result struct {
	Underlying string    `json:"underlying,omitempty"`
	Spot       float64   `json:"spot"`
	SpotSource string    `json:"spot_source"`
	Strike     float64   `json:"strike"`
	Years      float64   `json:"years"`
	Rate       float64   `json:"rate"`
	Vol        float64   `json:"vol"`
	Call       float64   `json:"call"`
	Put        float64   `json:"put"`
	PricedAt   time.Time `json:"priced_at"`
}

// Engine prices requests against a default rate and an optional provider.
type Engine struct {
	cfg  Config
	prov data.Provider
	now  func() time.Time
}

// Finite reports whether every number in r is neither NaN nor infinite.
// Extreme inputs overflow the formula without an error.
func (r *Result) Finite() bool {
	for _, v := range []float64{r.Spot, r.Strike, r.Years, r.Rate, r.Vol, r.Call, r.Put} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NewEngine returns an engine. prov may be nil, in which case requests must
// carry a spot price.
func NewEngine(cfg Config, prov data.Provider) *Engine {
	return &Engine{cfg: cfg, prov: prov, now: time.Now}
}

// Run prices req. Input errors wrap pricing.ErrInvalidInput; market data
// errors are returned wrapped with the underlying symbol.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	now := e.now().UTC()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = now
	}

	rate := e.cfg.Rate
	if req.Rate != nil {
		rate = *req.Rate
	}

	years, err := resolveYears(req, asOf)
	if err != nil {
		return nil, err
	}

	spot, source, err := e.resolveSpot(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Debugf("pricing %s S=%.4f K=%.4f T=%.6f r=%.4f sigma=%.4f",
		displayName(req.Underlying), spot, req.Strike, years, rate, req.Vol)

	call, put, err := pricing.Quote(spot, req.Strike, years, rate, req.Vol)
	if err != nil {
		return nil, err
	}

	logger.Infof("priced %s K=%.2f T=%.4f call=%.4f put=%.4f",
		displayName(req.Underlying), req.Strike, years, call, put)

	return &Result{
		Underlying: strings.ToUpper(strings.TrimSpace(req.Underlying)),
		Spot:       spot,
		SpotSource: source,
		Strike:     req.Strike,
		Years:      years,
		Rate:       rate,
		Vol:        req.Vol,
		Call:       call,
		Put:        put,
		PricedAt:   now,
	}, nil
}

func resolveYears(req Request, asOf time.Time) (float64, error) {
	switch {
	case req.Years != 0:
		return req.Years, nil
	case !req.Expiry.IsZero():
		return pricing.YearsBetween(asOf, req.Expiry), nil
	}
	return 0, ErrMissingExpiry
}

func (e *Engine) resolveSpot(ctx context.Context, req Request) (float64, string, error) {
	if req.Spot != 0 {
		return req.Spot, SpotFromRequest, nil
	}
	if strings.TrimSpace(req.Underlying) == "" {
		return 0, "", ErrMissingSpot
	}
	if e.prov == nil {
		return 0, "", fmt.Errorf("%w: no market data provider configured for %s", ErrMissingSpot, req.Underlying)
	}

	// A zero AsOf asks the provider for its latest close.
	spot, err := e.prov.SpotPrice(ctx, req.Underlying, req.AsOf)
	if err != nil {
		logger.Errorf("spot lookup failed for %s: %v", req.Underlying, err)
		return 0, "", fmt.Errorf("spot lookup %s: %w", req.Underlying, err)
	}
	logger.Debugf("spot %s=%.4f from %s", req.Underlying, spot, e.prov.Name())
	return spot, e.prov.Name(), nil
}

func displayName(underlying string) string {
	if underlying == "" {
		return "option"
	}
	return strings.ToUpper(underlying)
}
