package sensitivity

import (
	"math"
	"testing"

	"reverse_dcf/pkg/core/dcf"
)

func TestBuildGrid(t *testing.T) {
	in := dcf.ValuationInputs{
		BaseFCF:           100,
		WACC:              0.09, // overridden per cell
		TerminalGrowth:    0.02, // overridden per cell
		HorizonYears:      5,
		SharesOutstanding: 10,
		NetDebt:           0,
	}

	waccs := []float64{0.02, 0.08, 0.10, 0.12}
	tgs := []float64{0.01, 0.02, 0.03}

	grid := BuildGrid(in, 0.05, waccs, tgs)

	if len(grid.ValuePerShare) != len(waccs) {
		t.Fatalf("Expected %d rows, got %d", len(waccs), len(grid.ValuePerShare))
	}
	for i, row := range grid.ValuePerShare {
		if len(row) != len(tgs) {
			t.Fatalf("Row %d: expected %d columns, got %d", i, len(tgs), len(row))
		}
	}

	// WACC 2% row: invariant violated for tg 2% and 3% (and for 1% the
	// spread is positive, so it stays defined).
	if math.IsNaN(grid.ValuePerShare[0][0]) {
		t.Error("Cell (0.02, 0.01): expected defined value, got NaN")
	}
	if !math.IsNaN(grid.ValuePerShare[0][1]) {
		t.Error("Cell (0.02, 0.02): expected NaN for WACC == terminal growth")
	}
	if !math.IsNaN(grid.ValuePerShare[0][2]) {
		t.Error("Cell (0.02, 0.03): expected NaN for WACC < terminal growth")
	}

	// All remaining cells are finite, and value falls as WACC rises.
	for i := 1; i < len(waccs); i++ {
		for j := range tgs {
			v := grid.ValuePerShare[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Cell (%f, %f): expected finite value, got %f", waccs[i], tgs[j], v)
			}
		}
	}
	for j := range tgs {
		if grid.ValuePerShare[2][j] <= grid.ValuePerShare[3][j] {
			t.Errorf("Column %d: value should fall as WACC rises (%f vs %f)",
				j, grid.ValuePerShare[2][j], grid.ValuePerShare[3][j])
		}
	}

	// Higher terminal growth raises value within a row.
	if grid.ValuePerShare[2][0] >= grid.ValuePerShare[2][2] {
		t.Errorf("Value should rise with terminal growth: %f vs %f",
			grid.ValuePerShare[2][0], grid.ValuePerShare[2][2])
	}
}
