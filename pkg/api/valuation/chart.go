package valuation

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"reverse_dcf/pkg/core/dcf"
)

// RenderProjectionChart renders the per-year projected FCF as a PNG bar
// chart. Pure presentation: every number comes straight out of the
// ValuationResult.
func RenderProjectionChart(in dcf.ValuationInputs, growth float64, res dcf.ValuationResult) ([]byte, error) {
	if len(res.ProjectedFCF) == 0 {
		return nil, fmt.Errorf("no projected cash flows to chart")
	}

	bars := make([]chart.Value, len(res.ProjectedFCF))
	for i, v := range res.ProjectedFCF {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("Y%d", i+1),
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		}
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Projected FCF @ %.1f%% growth", growth*100),
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1fB", f/1e9)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
