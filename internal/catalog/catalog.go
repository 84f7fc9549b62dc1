// Package catalog serves the curated list of popular symbols. The list is
// static; no upstream call is involved.
package catalog

// Stock is one entry of the curated list
type Stock struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

var popular = []Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology"},
	{Symbol: "ADBE", Name: "Adobe Inc.", Sector: "Technology"},
	{Symbol: "CRM", Name: "Salesforce Inc.", Sector: "Technology"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Cyclical"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Consumer Cyclical"},
	{Symbol: "HD", Name: "Home Depot Inc.", Sector: "Consumer Cyclical"},
	{Symbol: "NKE", Name: "Nike Inc.", Sector: "Consumer Cyclical"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Communication Services"},
	{Symbol: "DIS", Name: "Walt Disney Co.", Sector: "Communication Services"},
	{Symbol: "NFLX", Name: "Netflix Inc.", Sector: "Communication Services"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services"},
	{Symbol: "V", Name: "Visa Inc.", Sector: "Financial Services"},
	{Symbol: "MA", Name: "Mastercard Inc.", Sector: "Financial Services"},
	{Symbol: "PYPL", Name: "PayPal Holdings Inc.", Sector: "Financial Services"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare"},
	{Symbol: "UNH", Name: "UnitedHealth Group Inc.", Sector: "Healthcare"},
	{Symbol: "PG", Name: "Procter & Gamble Co.", Sector: "Consumer Defensive"},
	{Symbol: "KO", Name: "Coca-Cola Co.", Sector: "Consumer Defensive"},
	{Symbol: "PEP", Name: "PepsiCo Inc.", Sector: "Consumer Defensive"},
	{Symbol: "WMT", Name: "Walmart Inc.", Sector: "Consumer Defensive"},
	{Symbol: "COST", Name: "Costco Wholesale Corp.", Sector: "Consumer Defensive"},
	{Symbol: "BA", Name: "Boeing Co.", Sector: "Industrials"},
	{Symbol: "CAT", Name: "Caterpillar Inc.", Sector: "Industrials"},
	{Symbol: "XOM", Name: "Exxon Mobil Corp.", Sector: "Energy"},
	{Symbol: "CVX", Name: "Chevron Corp.", Sector: "Energy"},
}

// Popular returns the curated stock list. The returned slice is a copy.
func Popular() []Stock {
	out := make([]Stock, len(popular))
	copy(out, popular)
	return out
}
