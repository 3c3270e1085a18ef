// Package sensitivity evaluates the forward DCF across a WACC x terminal
// growth grid, the standard two-way sensitivity table shown next to a
// valuation.
package sensitivity

import (
	"math"

	"reverse_dcf/pkg/core/dcf"
)

// Grid holds per-share values for every (WACC, terminal growth) pair.
// Rows follow WACCValues, columns follow TerminalGrowthValues. Cells where
// the model is undefined (WACC <= terminal growth) hold NaN; the grid never
// aborts on them.
type Grid struct {
	WACCValues           []float64   `json:"wacc_values"`
	TerminalGrowthValues []float64   `json:"terminal_growth_values"`
	ValuePerShare        [][]float64 `json:"value_per_share"`
}

// BuildGrid runs one forward valuation per cell, holding growth and all
// other inputs fixed while WACC and terminal growth sweep their axes.
func BuildGrid(in dcf.ValuationInputs, growth float64, waccValues, terminalGrowthValues []float64) Grid {
	rows := make([][]float64, len(waccValues))
	for i, wacc := range waccValues {
		row := make([]float64, len(terminalGrowthValues))
		for j, tg := range terminalGrowthValues {
			cell := in
			cell.WACC = wacc
			cell.TerminalGrowth = tg

			res, err := dcf.ValueEquity(cell, growth)
			if err != nil {
				row[j] = math.NaN()
				continue
			}
			row[j] = res.ValuePerShare
		}
		rows[i] = row
	}
	return Grid{
		WACCValues:           waccValues,
		TerminalGrowthValues: terminalGrowthValues,
		ValuePerShare:        rows,
	}
}
