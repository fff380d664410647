package report

import (
	"context"
	"strings"
	"testing"

	"github.com/sagealpha/backend/generator"
)

type stubGenerator struct {
	response string
	err      error
	got      []generator.Message
}

func (s *stubGenerator) Complete(ctx context.Context, messages []generator.Message) (string, error) {
	s.got = messages
	return s.response, s.err
}

const sampleJSON = `{
	"companyName": "Acme Corp",
	"ticker": "ACME",
	"subtitle": "Built to last",
	"sector": "Industrials",
	"region": "India",
	"rating": "OVERWEIGHT",
	"targetPrice": "INR450",
	"currentPrice": "INR390",
	"upside": "+15%",
	"investmentThesis": [{"title": "Market leader", "content": "Dominant share."}],
	"risks": [{"title": "Input costs", "impact": "Margin pressure"}],
	"financialSummary": [{"year": "2024A", "rev": "100", "ebitda": "20", "mrg": "20%", "eps": "5", "fcf": "12"}]
}`

func TestParseStripsFences(t *testing.T) {
	fenced := "```json\n" + sampleJSON + "\n```"

	data, err := Parse(fenced)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if data.CompanyName != "Acme Corp" {
		t.Fatalf("companyName = %q, want Acme Corp", data.CompanyName)
	}
	if data.Rating != "OVERWEIGHT" {
		t.Fatalf("rating = %q, want OVERWEIGHT", data.Rating)
	}
	if len(data.InvestmentThesis) != 1 || data.InvestmentThesis[0].Title != "Market leader" {
		t.Fatalf("thesis parsed wrong: %+v", data.InvestmentThesis)
	}
}

func TestParseRejectsProse(t *testing.T) {
	if _, err := Parse("Sorry, I cannot produce that report."); err == nil {
		t.Fatal("expected parse error for non-JSON output")
	}
}

func TestSynthesizeRendersReport(t *testing.T) {
	gen := &stubGenerator{response: sampleJSON}
	s := NewSynthesizer(gen)

	doc, err := s.Synthesize(context.Background(), "Acme Corp", "Generate a report.", "Source: 10-K\nRevenue grew 10%.")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !strings.Contains(doc, "Acme Corp") {
		t.Fatal("rendered report missing company name")
	}
	if !strings.Contains(doc, "OVERWEIGHT") {
		t.Fatal("rendered report missing rating")
	}
	if strings.Contains(doc, "Error generating structured report") {
		t.Fatal("valid JSON must not fall back")
	}

	if len(gen.got) != 2 {
		t.Fatalf("got %d messages, want system + user", len(gen.got))
	}
	if gen.got[0].Role != generator.RoleSystem || !strings.Contains(gen.got[0].Content, "Acme Corp") {
		t.Fatalf("system prompt missing company: %q", gen.got[0].Content[:60])
	}
	if !strings.Contains(gen.got[0].Content, "Revenue grew 10%.") {
		t.Fatal("system prompt missing retrieved context")
	}
}

func TestSynthesizeFallbackOnBadJSON(t *testing.T) {
	gen := &stubGenerator{response: "not json at all"}
	s := NewSynthesizer(gen)

	doc, err := s.Synthesize(context.Background(), "Acme Corp", "Generate a report.", "")
	if err != nil {
		t.Fatalf("parse failure must not error: %v", err)
	}

	if !strings.Contains(doc, "Error generating structured report") {
		t.Fatal("expected fallback document")
	}
	if !strings.Contains(doc, "not json at all") {
		t.Fatal("fallback must include the raw output")
	}
}

func TestFallbackEscapesHTML(t *testing.T) {
	doc := Fallback(`<script>alert("x")</script>`)

	if strings.Contains(doc, "<script>") {
		t.Fatal("raw output must be escaped")
	}
	if !strings.Contains(doc, "&lt;script&gt;") {
		t.Fatal("expected escaped markup in fallback")
	}
}
