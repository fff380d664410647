package report

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/sagealpha/backend/generator"
)

const systemPromptFormat = `You are a Senior Equity Research Analyst.
Generate a high-end investment research report for %s in professional JSON format.
Use these sections: Executive Summary, Financial Performance, Valuation analysis, Risks, and Recommendation.
Use the following context if relevant:
%s

The output must be ONLY a valid JSON object matching this structure:
{
  "companyName": "Company Name",
  "ticker": "TICKER",
  "subtitle": "Brief catchy subtitle",
  "sector": "Sector Name",
  "region": "Region Name",
  "rating": "OVERWEIGHT/NEUTRAL/UNDERWEIGHT",
  "targetPrice": "INRPrice",
  "targetPeriod": "12-18M",
  "currentPrice": "INRPrice",
  "upside": "+X%%",
  "marketCap": "INRX",
  "entValue": "INRX",
  "evEbitda": "X.x",
  "pe": "X.x",
  "investmentThesis": [
    { "title": "Headline", "content": "Detailed analysis" }
  ],
  "highlights": [
    { "title": "Headline", "content": "Recent results analysis" }
  ],
  "valuationMethodology": [
    { "method": "DCF / PE Relative", "details": "Explanation of model and assumptions" }
  ],
  "catalysts": [
    { "title": "Upcoming product launch", "impact": "Expected revenue uplift" }
  ],
  "risks": [
    { "title": "Competitive pressure", "impact": "Margin compression" }
  ],
  "financialSummary": [
    { "year": "2024A", "rev": "0", "ebitda": "0", "mrg": "0%%", "eps": "0", "fcf": "0" },
    { "year": "2025E", "rev": "0", "ebitda": "0", "mrg": "0%%", "eps": "0", "fcf": "0" },
    { "year": "2026E", "rev": "0", "ebitda": "0", "mrg": "0%%", "eps": "0", "fcf": "0" }
  ],
  "analyst": "SageAlpha Research Team",
  "analystEmail": "research@sagealpha.ai",
  "ratingHistory": [
    { "event": "Init", "date": "Month Year @ $Price" }
  ]
}
Do not include any other text or markdown formatting.`

// Synthesizer produces a rendered research report document from a company
// name and retrieved context.
type Synthesizer struct {
	generator generator.Generator
}

// Synthesize invokes the completion backend and renders the structured
// report. A response that fails to parse as JSON degrades to a fallback
// document wrapping the raw output; the request never hard-fails on a
// misbehaving model.
func (s *Synthesizer) Synthesize(ctx context.Context, companyName, userMessage, contextText string) (string, error) {
	messages := []generator.Message{
		{Role: generator.RoleSystem, Content: fmt.Sprintf(systemPromptFormat, companyName, contextText)},
		{Role: generator.RoleUser, Content: userMessage},
	}

	raw, err := s.generator.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	data, err := Parse(raw)
	if err != nil {
		slog.ErrorContext(ctx, "report JSON parse failed, using fallback", "error", err, "raw", raw)
		return Fallback(raw), nil
	}

	return Render(data)
}

// Parse strips any markdown code fences the model may have wrapped the
// payload in, then decodes it.
func Parse(raw string) (Data, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var data Data
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Data{}, err
	}

	return data, nil
}

// Fallback surfaces the raw model output verbatim inside a basic wrapper.
func Fallback(raw string) string {
	return fmt.Sprintf("<html><body><h1>Error generating structured report</h1><pre>%s</pre></body></html>", html.EscapeString(raw))
}

func NewSynthesizer(g generator.Generator) *Synthesizer {
	return &Synthesizer{
		generator: g,
	}
}
