package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// lookback bounds the daily-aggregate window used for dated lookups so that
// weekends and holidays still resolve to the previous session.
const lookback = 10 * 24 * time.Hour

// massiveDataProvider implements Provider on top of the Massive REST SDK.
type massiveDataProvider struct {
	client    *massive.Client
	secondary Provider

	// previousClose and dailyBars default to SDK calls; tests replace them.
	previousClose func(ctx context.Context, ticker string) (Bar, error)
	dailyBars     func(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error)
}

// NewMassiveDataProvider constructs a Massive-backed provider. secondary may
// be nil.
func NewMassiveDataProvider(apiKey string, secondary Provider) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	p := &massiveDataProvider{
		client:    massive.New(apiKey),
		secondary: secondary,
	}
	p.previousClose = p.sdkPreviousClose
	p.dailyBars = p.sdkDailyBars
	return p
}

func (p *massiveDataProvider) Name() string { return "massive" }

func (p *massiveDataProvider) Secondary() Provider { return p.secondary }

// SpotPrice uses the previous-close endpoint for undated lookups and daily
// aggregates ending at asOf otherwise.
func (p *massiveDataProvider) SpotPrice(ctx context.Context, underlying string, asOf time.Time) (float64, error) {
	ticker := strings.ToUpper(strings.TrimSpace(underlying))

	if asOf.IsZero() {
		logger.Debugf("massive previous close request: %s", ticker)
		bar, err := p.previousClose(ctx, ticker)
		if err != nil {
			logger.Warnf("massive previous close failed for %s: %v", ticker, err)
			return fallback(ctx, p, underlying, asOf, err)
		}
		logger.Tracef("massive previous close %s=%.4f on %s", ticker, bar.Close, bar.Date.Format("2006-01-02"))
		return bar.Close, nil
	}

	from := truncateDay(asOf).Add(-lookback)
	to := truncateDay(asOf)
	logger.Debugf("massive daily bars request: %s from=%s to=%s",
		ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))

	bars, err := p.dailyBars(ctx, ticker, from, to)
	if err != nil {
		logger.Warnf("massive daily bars failed for %s: %v", ticker, err)
		return fallback(ctx, p, underlying, asOf, err)
	}

	bar, ok := spotAsOf(bars, asOf)
	if !ok {
		return fallback(ctx, p, underlying, asOf,
			fmt.Errorf("%w: %s on %s", ErrNoSpot, ticker, asOf.Format("2006-01-02")))
	}
	logger.Tracef("massive close %s=%.4f on %s", ticker, bar.Close, bar.Date.Format("2006-01-02"))
	return bar.Close, nil
}

func (p *massiveDataProvider) sdkPreviousClose(ctx context.Context, ticker string) (Bar, error) {
	adjusted := true
	res, err := p.client.GetPreviousCloseAgg(ctx, &models.GetPreviousCloseAggParams{
		Ticker:   ticker,
		Adjusted: &adjusted,
	})
	if err != nil {
		return Bar{}, fmt.Errorf("previous close %s: %w", ticker, err)
	}
	if len(res.Results) == 0 {
		return Bar{}, fmt.Errorf("%w: no previous close for %s", ErrNoSpot, ticker)
	}

	agg := res.Results[0]
	return Bar{Date: time.Time(agg.Timestamp).UTC(), Close: agg.Close}, nil
}

func (p *massiveDataProvider) sdkDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	adjusted := true
	iter := p.client.ListAggs(ctx, &models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
		Adjusted:   &adjusted,
	})

	var out []Bar
	for iter.Next() {
		agg := iter.Item()
		out = append(out, Bar{Date: time.Time(agg.Timestamp).UTC(), Close: agg.Close})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("daily aggs %s: %w", ticker, err)
	}

	logger.Tracef("bars received: %d records", len(out))
	return out, nil
}
