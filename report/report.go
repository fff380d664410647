package report

// Data is the structured research report the model is contracted to return.
type Data struct {
	CompanyName          string          `json:"companyName"`
	Ticker               string          `json:"ticker"`
	Subtitle             string          `json:"subtitle"`
	Sector               string          `json:"sector"`
	Region               string          `json:"region"`
	Rating               string          `json:"rating"`
	TargetPrice          string          `json:"targetPrice"`
	TargetPeriod         string          `json:"targetPeriod"`
	CurrentPrice         string          `json:"currentPrice"`
	Upside               string          `json:"upside"`
	MarketCap            string          `json:"marketCap"`
	EntValue             string          `json:"entValue"`
	EvEbitda             string          `json:"evEbitda"`
	PE                   string          `json:"pe"`
	InvestmentThesis     []Entry         `json:"investmentThesis"`
	Highlights           []Entry         `json:"highlights"`
	ValuationMethodology []Method        `json:"valuationMethodology"`
	Catalysts            []Entry         `json:"catalysts"`
	Risks                []Entry         `json:"risks"`
	FinancialSummary     []FinancialYear `json:"financialSummary"`
	Analyst              string          `json:"analyst"`
	AnalystEmail         string          `json:"analystEmail"`
	RatingHistory        []RatingEvent   `json:"ratingHistory"`
}

type Entry struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Impact  string `json:"impact,omitempty"`
}

type Method struct {
	Method  string `json:"method"`
	Details string `json:"details"`
}

type FinancialYear struct {
	Year   string `json:"year"`
	Rev    string `json:"rev"`
	EBITDA string `json:"ebitda"`
	Mrg    string `json:"mrg"`
	EPS    string `json:"eps"`
	FCF    string `json:"fcf"`
}

type RatingEvent struct {
	Event string `json:"event"`
	Date  string `json:"date"`
}
