package entity

// CollectionStat is a per-collection aggregate used in the summary ranking.
type CollectionStat struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	ValueUSD float64 `json:"valueUSD"`
}

// PortfolioSummary is derived fresh from a set of portfolio snapshots plus
// an optional authoritative NFT list. It is never persisted.
type PortfolioSummary struct {
	TotalValueUSD      float64 `json:"totalValueUSD"`
	TotalSol           float64 `json:"totalSol"`
	TotalSolValueUSD   float64 `json:"totalSolValueUSD"`
	TotalTokenValueUSD float64 `json:"totalTokenValueUSD"`
	TotalNFTValueUSD   float64 `json:"totalNFTValueUSD"`

	TokenCount  int `json:"tokenCount"`
	NFTCount    int `json:"nftCount"`
	WalletCount int `json:"walletCount"`

	TopTokens      []FungibleBalance `json:"topTokens"`
	TopCollections []CollectionStat  `json:"topNFTCollections"`
}
