package data

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// spotRecord is one row of the spot file: underlying,date,close.
type spotRecord struct {
	Underlying string  `csv:"underlying"`
	Date       string  `csv:"date"`
	Close      float64 `csv:"close"`
}

// localCSVDataProvider implements Provider from a local CSV file of daily
// closes. The file is read once at construction.
type localCSVDataProvider struct {
	path      string
	bars      map[string][]Bar
	secondary Provider
}

// NewLocalCSVDataProvider reads path and returns a provider serving its
// closes. secondary may be nil.
func NewLocalCSVDataProvider(path string, secondary Provider) (*localCSVDataProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spot file: %w", err)
	}
	defer f.Close()

	var records []spotRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("read spot file %s: %w", path, err)
	}

	bars := make(map[string][]Bar)
	for i, rec := range records {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(rec.Date))
		if err != nil {
			logger.Warnf("spot file %s row %d: skipping malformed date %q", path, i+2, rec.Date)
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(rec.Underlying))
		bars[key] = append(bars[key], Bar{Date: d, Close: rec.Close})
	}

	logger.Infof("loaded %d spot rows for %d underlyings from %s", len(records), len(bars), path)
	return &localCSVDataProvider{path: path, bars: bars, secondary: secondary}, nil
}

func (p *localCSVDataProvider) Name() string { return "csv" }

func (p *localCSVDataProvider) Secondary() Provider { return p.secondary }

func (p *localCSVDataProvider) SpotPrice(ctx context.Context, underlying string, asOf time.Time) (float64, error) {
	key := strings.ToUpper(strings.TrimSpace(underlying))

	bar, ok := spotAsOf(p.bars[key], asOf)
	if !ok {
		logger.Debugf("no local close for %s as of %s", key, asOf.Format("2006-01-02"))
		return fallback(ctx, p, underlying, asOf, fmt.Errorf("%w: %s not in %s", ErrNoSpot, key, p.path))
	}

	logger.Tracef("local close %s=%.4f on %s", key, bar.Close, bar.Date.Format("2006-01-02"))
	return bar.Close, nil
}
