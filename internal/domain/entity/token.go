package entity

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000

// Placeholder display metadata for mints absent from the token registry.
const (
	UnknownSymbol    = "Unknown"
	UnknownTokenName = "Unknown Token"
)

// TokenAccountRecord is one token-holding account owned by a wallet, as
// returned by the chain in jsonParsed form. RawAmount keeps the chain's
// decimal string representation; UIAmount is already adjusted for decimals.
type TokenAccountRecord struct {
	Mint         string  `json:"mint"`
	Owner        string  `json:"owner"`
	TokenAccount string  `json:"tokenAccount"`
	RawAmount    string  `json:"amount"`
	Decimals     uint8   `json:"decimals"`
	UIAmount     float64 `json:"uiAmount"`
}

// IsNFTCandidate reports whether the account looks like an uncompressed NFT
// holding: a zero-decimal mint with exactly one unit in the account.
func (r TokenAccountRecord) IsNFTCandidate() bool {
	return r.Decimals == 0 && r.UIAmount == 1
}

// FungibleBalance is a TokenAccountRecord enriched with registry metadata
// and a USD valuation.
type FungibleBalance struct {
	TokenAccountRecord

	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	LogoURI  string  `json:"logoURI,omitempty"`
	PriceUSD float64 `json:"priceUSD"`
	ValueUSD float64 `json:"valueUSD"`
}

// Merge folds another balance of the same mint into b. Amounts and values
// are additive; display metadata is kept from whichever side resolved it.
func (b *FungibleBalance) Merge(other FungibleBalance) {
	b.UIAmount += other.UIAmount
	b.ValueUSD += other.ValueUSD
	if b.Symbol == "" || b.Symbol == UnknownSymbol {
		b.Symbol = other.Symbol
	}
	if b.Name == "" || b.Name == UnknownTokenName {
		b.Name = other.Name
	}
	if b.LogoURI == "" {
		b.LogoURI = other.LogoURI
	}
}
