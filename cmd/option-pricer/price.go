package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/report"
)

// Reference example priced when no inputs are given.
const (
	exampleSpot   = 100.0
	exampleStrike = 110.0
	exampleYears  = 0.5
	exampleVol    = 0.25
)

func newPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a European call and put",
		Long: `Price a European call and put with the Black-Scholes formula.

Without flags the reference example is priced:
  S=100 K=110 T=0.5 r=<pricing.rate> sigma=0.25`,
		Example: `  option-pricer price --spot 100 --strike 110 --years 0.5 --rate 0.02 --vol 0.25
  option-pricer price --underlying SPY --strike 600 --expiry 2025-12-19 --vol 0.18
  option-pricer price --format json --out ./out`,
		Args: cobra.NoArgs,
		RunE: runPrice,
	}

	f := cmd.Flags()
	f.Float64("spot", 0, "underlying spot price (default 100 unless --underlying is set)")
	f.Float64("strike", exampleStrike, "strike price")
	f.Float64("years", exampleYears, "time to expiry in years")
	f.Float64("rate", 0, "risk-free annual rate as a decimal (default pricing.rate)")
	f.Float64("vol", exampleVol, "annualized volatility as a decimal")
	f.String("underlying", "", "look up the spot price of this symbol")
	f.String("expiry", "", "expiry date YYYY-MM-DD, used instead of --years")
	f.String("as-of", "", "pricing date YYYY-MM-DD (default today)")
	f.String("format", "", "output format: text, json or csv (default output.format)")
	f.String("out", "", "write quote.json and quote.csv into this directory")
	return cmd
}

func runPrice(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	var prov data.Provider
	if req.Underlying != "" {
		if prov, err = data.FromConfig(cfg.Market); err != nil {
			return err
		}
	}

	eng := engine.NewEngine(engine.Config{Rate: cfg.Pricing.Rate}, prov)
	res, err := eng.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	outdir := cfg.Output.Dir
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		outdir = v
	}
	if outdir != "" {
		if err := report.WriteFiles(res, outdir, cfg.Pricing.Precision); err != nil {
			return err
		}
		logger.Infof("wrote quote to %s", outdir)
		return nil
	}

	format := cfg.Output.Format
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		format = v
	}
	return report.Write(cmd.OutOrStdout(), format, res, cfg.Pricing.Precision)
}

func requestFromFlags(cmd *cobra.Command) (engine.Request, error) {
	f := cmd.Flags()

	var req engine.Request
	req.Spot, _ = f.GetFloat64("spot")
	req.Strike, _ = f.GetFloat64("strike")
	req.Years, _ = f.GetFloat64("years")
	req.Vol, _ = f.GetFloat64("vol")
	req.Underlying, _ = f.GetString("underlying")
	req.Underlying = strings.TrimSpace(req.Underlying)

	// an explicit --spot 0 is left for validation to reject
	if !f.Changed("spot") && req.Underlying == "" {
		req.Spot = exampleSpot
	}
	if f.Changed("rate") {
		rate, _ := f.GetFloat64("rate")
		req.Rate = &rate
	}

	expiry, err := flagDate(cmd, "expiry")
	if err != nil {
		return req, err
	}
	if !expiry.IsZero() {
		req.Expiry = expiry
		if !f.Changed("years") {
			req.Years = 0
		}
	}

	if req.AsOf, err = flagDate(cmd, "as-of"); err != nil {
		return req, err
	}
	return req, nil
}

func flagDate(cmd *cobra.Command, name string) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, want YYYY-MM-DD", name, s)
	}
	return t, nil
}
