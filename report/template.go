package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>SageAlpha Capital | {{.Data.CompanyName}}</title>
<style>
@page { size: A4; margin: 0; }
html, body { margin: 0; padding: 0; width: 100%; background: #fff; font-family: 'Segoe UI', Roboto, sans-serif; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
.report-wrapper { width: 770px; margin: 0 auto; padding: 28px; box-sizing: border-box; }
.header { width: 100%; border-bottom: 3px solid #083154; padding-bottom: 10px; margin-bottom: 12px; }
.header-row { display: flex; justify-content: space-between; }
.logo-text { font-size: 26px; font-weight: 800; font-family: Georgia, serif; color: #083154; margin: 0; }
.logo-text span { color: #2e8b57; }
.sub-title { font-size: 12px; font-weight: 700; color: #083154; text-transform: uppercase; }
.date-info { font-size: 11px; text-align: right; }
.company-name { font-size: 22px; font-weight: 700; color: #083154; margin: 6px 0 2px; }
.subtitle { font-size: 12px; color: #444; margin-bottom: 10px; }
.rating-box { background: #083154; color: #fff; padding: 10px 14px; display: inline-block; margin-bottom: 12px; }
.rating-box .rating { font-size: 18px; font-weight: 800; }
.rating-box .target { font-size: 11px; }
.metrics-table { width: 100%; border-collapse: collapse; font-size: 11px; margin-bottom: 14px; }
.metrics-table td { border: 1px solid #d7dde3; padding: 5px 8px; }
.metrics-table td.k { background: #f0f4f8; font-weight: 700; color: #083154; width: 18%; }
.section-title { font-size: 13px; font-weight: 800; color: #083154; text-transform: uppercase; border-bottom: 2px solid #2e8b57; padding-bottom: 3px; margin: 14px 0 8px; }
.entry { margin-bottom: 8px; font-size: 11.5px; line-height: 1.5; }
.entry b { color: #083154; }
.fin-table { width: 100%; border-collapse: collapse; font-size: 11px; margin-bottom: 14px; }
.fin-table th { background: #083154; color: #fff; padding: 5px 8px; text-align: left; }
.fin-table td { border: 1px solid #d7dde3; padding: 5px 8px; }
.footer { border-top: 2px solid #083154; margin-top: 18px; padding-top: 8px; font-size: 10.5px; color: #444; }
.disclaimer { font-size: 9px; color: #888; margin-top: 6px; }
</style>
</head>
<body>
<div class="report-wrapper">
  <div class="header">
    <div class="header-row">
      <div>
        <p class="logo-text">Sage<span>Alpha</span> Capital</p>
        <div class="sub-title">Equity Research</div>
      </div>
      <div class="date-info">{{.Date}}<br>{{.Data.Sector}} | {{.Data.Region}}</div>
    </div>
  </div>

  <div class="company-name">{{.Data.CompanyName}}{{if .Data.Ticker}} ({{.Data.Ticker}}){{end}}</div>
  <div class="subtitle">{{.Data.Subtitle}}</div>

  <div class="rating-box">
    <div class="rating">{{.Data.Rating}}</div>
    <div class="target">Target {{.Data.TargetPrice}} ({{.Data.TargetPeriod}}) | Current {{.Data.CurrentPrice}} | Upside {{.Data.Upside}}</div>
  </div>

  <table class="metrics-table">
    <tr>
      <td class="k">Market Cap</td><td>{{.Data.MarketCap}}</td>
      <td class="k">Ent. Value</td><td>{{.Data.EntValue}}</td>
      <td class="k">EV/EBITDA</td><td>{{.Data.EvEbitda}}</td>
      <td class="k">P/E</td><td>{{.Data.PE}}</td>
    </tr>
  </table>

  <div class="section-title">Investment Thesis</div>
  {{range .Data.InvestmentThesis}}<div class="entry"><b>{{.Title}}.</b> {{.Content}}</div>{{end}}

  <div class="section-title">Highlights</div>
  {{range .Data.Highlights}}<div class="entry"><b>{{.Title}}.</b> {{.Content}}</div>{{end}}

  <div class="section-title">Financial Summary</div>
  <table class="fin-table">
    <tr><th>Year</th><th>Revenue</th><th>EBITDA</th><th>Margin</th><th>EPS</th><th>FCF</th></tr>
    {{range .Data.FinancialSummary}}
    <tr><td>{{.Year}}</td><td>{{.Rev}}</td><td>{{.EBITDA}}</td><td>{{.Mrg}}</td><td>{{.EPS}}</td><td>{{.FCF}}</td></tr>
    {{end}}
  </table>

  <div class="section-title">Valuation Methodology</div>
  {{range .Data.ValuationMethodology}}<div class="entry"><b>{{.Method}}.</b> {{.Details}}</div>{{end}}

  <div class="section-title">Catalysts</div>
  {{range .Data.Catalysts}}<div class="entry"><b>{{.Title}}.</b> {{.Impact}}</div>{{end}}

  <div class="section-title">Risks</div>
  {{range .Data.Risks}}<div class="entry"><b>{{.Title}}.</b> {{.Impact}}</div>{{end}}

  <div class="footer">
    {{.Data.Analyst}} | {{.Data.AnalystEmail}}
    {{if .Data.RatingHistory}}<br>Rating history: {{range $i, $e := .Data.RatingHistory}}{{if $i}}; {{end}}{{$e.Event}} {{$e.Date}}{{end}}{{end}}
    <div class="disclaimer">This document is for informational purposes only and does not constitute investment advice.</div>
  </div>
</div>
</body>
</html>`

var docTmpl = template.Must(template.New("report").Parse(documentTemplate))

// Render produces the branded report document from structured data.
func Render(data Data) (string, error) {
	if data.Analyst == "" {
		data.Analyst = "SageAlpha Research Team"
	}
	if data.AnalystEmail == "" {
		data.AnalystEmail = "research@sagealpha.ai"
	}

	var b strings.Builder
	err := docTmpl.Execute(&b, struct {
		Data Data
		Date string
	}{
		Data: data,
		Date: time.Now().Format("January 2, 2006"),
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	return b.String(), nil
}
