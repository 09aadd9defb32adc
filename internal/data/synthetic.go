package data

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"
)

// synthEpoch anchors every synthetic series so that a given seed, underlying
// and date always produce the same close.
var synthEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// synthDataProvider implements Provider by generating a random-walk series of
// weekday closes per underlying.
type synthDataProvider struct {
	seed      int64
	secondary Provider
	now       func() time.Time
}

func NewSyntheticProvider(seed int64) Provider {
	return &synthDataProvider{seed: seed, now: time.Now}
}

func (p *synthDataProvider) Name() string { return "synthetic" }

func (p *synthDataProvider) Secondary() Provider { return p.secondary }

func (p *synthDataProvider) SpotPrice(ctx context.Context, underlying string, asOf time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	today := truncateDay(p.now())
	if asOf.IsZero() {
		asOf = today
	}
	// the walk is generated day by day, so it stops at the provider clock
	if truncateDay(asOf).After(today) {
		return fallback(ctx, p, underlying, asOf,
			fmt.Errorf("%w: %s is after %s", ErrNoSpot, asOf.Format("2006-01-02"), today.Format("2006-01-02")))
	}

	bars := p.bars(underlying, synthEpoch, truncateDay(asOf))
	bar, ok := spotAsOf(bars, asOf)
	if !ok {
		// asOf before the epoch
		return fallback(ctx, p, underlying, asOf, ErrNoSpot)
	}
	return bar.Close, nil
}

// bars walks from fromDate to toDate, one step per weekday.
func (p *synthDataProvider) bars(underlying string, fromDate, toDate time.Time) []Bar {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(strings.TrimSpace(underlying))))
	rng := rand.New(rand.NewSource(p.seed ^ int64(h.Sum64())))

	price := 100.0 + float64(rng.Intn(200))
	var out []Bar
	for cur := fromDate; !cur.After(toDate); cur = cur.AddDate(0, 0, 1) {
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}
		price = math.Max(0.01, price+rng.NormFloat64()*0.01*price)
		out = append(out, Bar{Date: cur, Close: price})
	}
	return out
}
