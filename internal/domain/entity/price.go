package entity

// TokenPrice is the resolved valuation and display metadata for one mint.
// PriceUSD is zero (never absent) when the provider had no price.
type TokenPrice struct {
	PriceUSD float64 `json:"price"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	LogoURI  string  `json:"logoURI,omitempty"`
}
