// Package insight turns solver output into a short plain-language note an
// investor can read next to the numbers. Entirely optional: without a
// GEMINI_API_KEY the rest of the system is unaffected.
package insight

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/solver"
	"reverse_dcf/pkg/core/utils"
)

const defaultModel = "gemini-2.0-flash-exp"

const systemPrompt = `You are an equity analyst. Given the DCF assumptions and the
growth rate the market price implies, write 3-5 sentences of markdown assessing
whether that implied growth looks demanding or conservative for a mature public
company. Mention the spread between implied growth and the terminal growth
assumption. No headers, no bullet lists, no investment advice disclaimer.`

// Generator produces narratives via the Gemini API.
type Generator struct {
	Model string // empty means defaultModel
}

// Available reports whether narrative generation is configured.
func (g *Generator) Available() bool {
	return os.Getenv("GEMINI_API_KEY") != ""
}

// Narrative describes what a solve result means in prose. The returned text
// is cleaned markdown.
func (g *Generator) Narrative(ctx context.Context, in dcf.ValuationInputs, targetPrice float64, res solver.SolverResult) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := g.Model
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	prompt := fmt.Sprintf(
		`Base FCF: %.0f
WACC: %.2f%%
Terminal growth: %.2f%%
Projection horizon: %d years
Shares outstanding: %.0f
Net debt: %.0f
Observed price: %.2f
Implied annual FCF growth: %.2f%% (solver: %s, %d iterations, residual %.4g)`,
		in.BaseFCF, in.WACC*100, in.TerminalGrowth*100, in.HorizonYears,
		in.SharesOutstanding, in.NetDebt, targetPrice,
		res.ImpliedGrowthRate*100, res.Method, res.IterationsUsed, res.ResidualAtSolution,
	)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}

	text := utils.CleanMarkdown(result.Text())
	if !utils.ValidateMarkdown(text) {
		return "", fmt.Errorf("narrative generation produced unusable output")
	}
	return text, nil
}
