// Package report renders priced results as text, JSON or CSV.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/engine"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Quote is a Result rendered for output. Prices are fixed to a number of
// decimal places, inputs are carried at full precision. Values that
// overflowed are rendered as NaN, +Inf or -Inf.
type Quote struct {
	Underlying string    `json:"underlying,omitempty"`
	Spot       string    `json:"spot"`
	SpotSource string    `json:"spot_source"`
	Strike     string    `json:"strike"`
	Years      string    `json:"years"`
	Rate       string    `json:"rate"`
	Vol        string    `json:"vol"`
	Call       string    `json:"call"`
	Put        string    `json:"put"`
	PricedAt   time.Time `json:"priced_at"`
}

// quoteRow is the CSV layout of a Quote.
type quoteRow struct {
	Underlying string `csv:"underlying"`
	Spot       string `csv:"spot"`
	SpotSource string `csv:"spot_source"`
	Strike     string `csv:"strike"`
	Years      string `csv:"years"`
	Rate       string `csv:"rate"`
	Vol        string `csv:"vol"`
	Call       string `csv:"call"`
	Put        string `csv:"put"`
	PricedAt   string `csv:"priced_at"`
}

// NewQuote rounds the call and put of res to precision decimal places.
func NewQuote(res *engine.Result, precision int32) Quote {
	return Quote{
		Underlying: res.Underlying,
		Spot:       number(res.Spot),
		SpotSource: res.SpotSource,
		Strike:     number(res.Strike),
		Years:      number(res.Years),
		Rate:       number(res.Rate),
		Vol:        number(res.Vol),
		Call:       price(res.Call, precision),
		Put:        price(res.Put, precision),
		PricedAt:   res.PricedAt.UTC(),
	}
}

// decimal.NewFromFloat panics on NaN and infinities.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func number(x float64) string {
	if !finite(x) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).String()
}

func price(x float64, precision int32) string {
	if !finite(x) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).StringFixed(precision)
}

// Write renders res to w in the named format.
func Write(w io.Writer, format string, res *engine.Result, precision int32) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return WriteText(w, res, precision)
	case FormatJSON:
		return WriteJSON(w, res, precision)
	case FormatCSV:
		return WriteCSV(w, res, precision)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteText prints the two prices, one per line.
func WriteText(w io.Writer, res *engine.Result, precision int32) error {
	q := NewQuote(res, precision)
	_, err := fmt.Fprintf(w, "Call option price: %s\nPut option price: %s\n", q.Call, q.Put)
	return err
}

func WriteJSON(w io.Writer, res *engine.Result, precision int32) error {
	b, err := json.MarshalIndent(NewQuote(res, precision), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func WriteCSV(w io.Writer, res *engine.Result, precision int32) error {
	q := NewQuote(res, precision)
	rows := []quoteRow{{
		Underlying: q.Underlying,
		Spot:       q.Spot,
		SpotSource: q.SpotSource,
		Strike:     q.Strike,
		Years:      q.Years,
		Rate:       q.Rate,
		Vol:        q.Vol,
		Call:       q.Call,
		Put:        q.Put,
		PricedAt:   q.PricedAt.Format(time.RFC3339),
	}}
	return gocsv.Marshal(rows, w)
}

// WriteFiles writes quote.json and quote.csv into outdir, creating it when
// needed.
func WriteFiles(res *engine.Result, outdir string, precision int32) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outdir, err)
	}

	for name, write := range map[string]func(io.Writer, *engine.Result, int32) error{
		"quote.json": WriteJSON,
		"quote.csv":  WriteCSV,
	} {
		if err := writeFile(filepath.Join(outdir, name), res, precision, write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, res *engine.Result, precision int32, write func(io.Writer, *engine.Result, int32) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, res, precision); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
