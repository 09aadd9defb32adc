// Package data supplies the spot price of an underlying for pricing requests.
package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/contactkeval/option-pricer/internal/config"
)

// ErrNoSpot is returned when a provider has no price for the requested
// underlying and date.
var ErrNoSpot = errors.New("no spot price available")

type DateMatchType string

const (
	MatchExact   DateMatchType = "exact"   // must match exactly
	MatchHigher  DateMatchType = "higher"  // next available date after target
	MatchLower   DateMatchType = "lower"   // last available date before target
	MatchNearest DateMatchType = "nearest" // closest available date (default)
)

// Provider supplies market data.
type Provider interface {
	// Name identifies the provider in results and logs.
	Name() string
	// Secondary is the fallback consulted when this provider has no answer.
	Secondary() Provider
	// SpotPrice returns the close of underlying on asOf, or the last close
	// before it. A zero asOf means the latest available close.
	SpotPrice(ctx context.Context, underlying string, asOf time.Time) (float64, error)
}

// Bar is a dated close.
type Bar struct {
	Date  time.Time
	Close float64
}

// FromConfig builds the provider chain named by cfg.Provider.
//
//   - "synthetic": seeded random walk, no network
//   - "massive":   Massive REST API, requires an API key
//   - "csv":       local file, with Massive as secondary when a key is set
func FromConfig(cfg config.MarketConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "synthetic":
		return NewSyntheticProvider(cfg.Seed), nil
	case "massive", "polygon":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("market provider %q requires an API key", cfg.Provider)
		}
		return NewMassiveDataProvider(cfg.APIKey, nil), nil
	case "csv":
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("market provider csv requires csv_path")
		}
		var secondary Provider
		if cfg.APIKey != "" {
			secondary = NewMassiveDataProvider(cfg.APIKey, nil)
		}
		p, err := NewLocalCSVDataProvider(cfg.CSVPath, secondary)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
}

// fallback delegates to p's secondary, or returns cause when there is none.
func fallback(ctx context.Context, p Provider, underlying string, asOf time.Time, cause error) (float64, error) {
	if p.Secondary() == nil {
		return 0, fmt.Errorf("%s: %w", p.Name(), cause)
	}
	return p.Secondary().SpotPrice(ctx, underlying, asOf)
}

// spotAsOf picks the close on asOf, else the last close before it.
func spotAsOf(bars []Bar, asOf time.Time) (Bar, bool) {
	if len(bars) == 0 {
		return Bar{}, false
	}

	byDate := make(map[time.Time]Bar, len(bars))
	dates := make([]time.Time, 0, len(bars))
	for _, b := range bars {
		d := truncateDay(b.Date)
		byDate[d] = b
		dates = append(dates, d)
	}

	if asOf.IsZero() {
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		return byDate[dates[len(dates)-1]], true
	}

	target := truncateDay(asOf)
	d := MatchBarDate(target, dates, MatchExact)
	if d.IsZero() {
		d = MatchBarDate(target, dates, MatchLower)
	}
	if d.IsZero() {
		return Bar{}, false
	}
	return byDate[d], true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MatchBarDate returns the date in dates that matches d under mode, or the
// zero time when nothing matches. dates is sorted in place.
func MatchBarDate(d time.Time, dates []time.Time, mode DateMatchType) time.Time {
	var (
		exact  time.Time
		lower  time.Time
		higher time.Time
	)

	switch mode {
	case MatchExact, MatchHigher, MatchLower, MatchNearest:
	default:
		mode = MatchNearest
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, dt := range dates {
		if dt.Equal(d) {
			exact = dt
		}
		if dt.Before(d) {
			lower = dt // keeps last < d
		}
		if dt.After(d) && higher.IsZero() {
			higher = dt
		}
	}

	switch mode {
	case MatchExact:
		return exact
	case MatchLower:
		return lower
	case MatchHigher:
		return higher
	}

	if !exact.IsZero() {
		return exact
	}
	switch {
	case !lower.IsZero() && !higher.IsZero():
		if d.Sub(lower) <= higher.Sub(d) {
			return lower
		}
		return higher
	case !lower.IsZero():
		return lower
	case !higher.IsZero():
		return higher
	}
	return time.Time{}
}
