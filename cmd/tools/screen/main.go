// Command screen runs a one-shot valuation from the command line. The
// snapshot payload is JSON or Hjson, same schema the API accepts.
//
//	screen -mode implied -wacc 0.10 -tg 0.025 -horizon 5 -data '{...}'
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/joho/godotenv"

	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/market"
	"reverse_dcf/pkg/core/sensitivity"
	"reverse_dcf/pkg/core/solver"
	"reverse_dcf/pkg/core/utils"
)

func main() {
	mode := flag.String("mode", "implied", "Mode: value, implied or grid")
	dataStr := flag.String("data", "", "Snapshot payload (JSON or Hjson); @file reads from disk")
	growth := flag.Float64("growth", 0.10, "Growth rate for value/grid modes")
	wacc := flag.Float64("wacc", 0.10, "Discount rate")
	capmStr := flag.String("capm", "", "Discount-rate inputs (JSON or Hjson); overrides -wacc via CAPM")
	tg := flag.Float64("tg", 0.025, "Terminal growth")
	horizon := flag.Int("horizon", 5, "Projection years")
	target := flag.Float64("target", 0, "Target price (implied mode; 0 uses snapshot price)")
	flag.Parse()

	godotenv.Load()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}
	payload := *dataStr
	if payload[0] == '@' {
		raw, err := os.ReadFile(payload[1:])
		if err != nil {
			fmt.Printf("Error reading data file: %v\n", err)
			os.Exit(1)
		}
		payload = string(raw)
	}

	snap, err := market.ParseManualSnapshot(payload)
	if err != nil {
		fmt.Printf("Error parsing snapshot: %v\n", err)
		os.Exit(1)
	}

	if *capmStr != "" {
		var drin dcf.DiscountRateInputs
		if _, err := utils.SmartParse(*capmStr, &drin); err != nil {
			fmt.Printf("Error parsing CAPM inputs: %v\n", err)
			os.Exit(1)
		}
		rate := dcf.DeriveWACC(drin)
		fmt.Printf("[SCREEN] derived WACC %.4f (levered beta %.3f, Ke %.4f, Kd %.4f)\n",
			rate.WACC, rate.LeveredBeta, rate.CostOfEquity, rate.CostOfDebt)
		*wacc = rate.WACC
	}

	inputs := dcf.ValuationInputs{
		BaseFCF:           snap.FreeCashFlow,
		WACC:              *wacc,
		TerminalGrowth:    *tg,
		HorizonYears:      *horizon,
		SharesOutstanding: snap.SharesOutstanding,
		NetDebt:           snap.NetDebt(),
	}

	switch *mode {
	case "value":
		res, err := dcf.ValueEquity(inputs, *growth)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		printJSON(res)

	case "implied":
		price := *target
		if price == 0 {
			price = snap.CurrentPrice
		}
		res, err := solver.SolveImpliedGrowth(inputs, price, solver.DefaultOptions())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Implied growth for %s at %.2f: %.2f%% (%s, %d iterations)\n",
			snap.Ticker, price, res.ImpliedGrowthRate*100, res.Method, res.IterationsUsed)
		printJSON(res)

	case "grid":
		waccs := []float64{*wacc - 0.02, *wacc - 0.01, *wacc, *wacc + 0.01, *wacc + 0.02}
		tgs := []float64{*tg - 0.01, *tg - 0.005, *tg, *tg + 0.005, *tg + 0.01}
		grid := sensitivity.BuildGrid(inputs, *growth, waccs, tgs)

		// Text table; undefined cells (WACC <= terminal growth) print as "-"
		fmt.Printf("%8s", "wacc\\tg")
		for _, t := range grid.TerminalGrowthValues {
			fmt.Printf("%10.2f%%", t*100)
		}
		fmt.Println()
		for i, w := range grid.WACCValues {
			fmt.Printf("%7.2f%%", w*100)
			for _, v := range grid.ValuePerShare[i] {
				if math.IsNaN(v) {
					fmt.Printf("%11s", "-")
				} else {
					fmt.Printf("%11.2f", v)
				}
			}
			fmt.Println()
		}

	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
