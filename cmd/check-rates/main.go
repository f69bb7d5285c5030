// Command check-rates prints the BRL rate of every supported currency as the
// server would resolve it, marking the ones that fell back to the static table.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Provider.HTTPTimeout*time.Duration(2*len(currency.Supported)))
	defer cancel()

	conv := currency.NewConverter(currency.NewAwesomeClient(cfg.Provider.QuoteBaseURL, cfg.Provider.HTTPTimeout))
	cache := currency.NewRateCache(conv)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tRATE\tSOURCE")
	for _, code := range currency.Supported {
		rate := cache.Rate(ctx, code)
		source := "live"
		switch {
		case code == currency.BaseCurrency:
			source = "base"
		case rate.Equal(currency.FallbackRate(code)):
			source = "fallback"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", code, rate.StringFixed(4), source)
	}
	tw.Flush()
}

