package entity

import "time"

// WalletPortfolio is an immutable snapshot of one wallet's holdings. A new
// snapshot is produced on every refresh; snapshots are never mutated.
//
// TotalValueUSD intentionally excludes NFT value: NFT valuation is a
// cross-wallet concern handled by the portfolio summary.
type WalletPortfolio struct {
	Address string `json:"address"`

	SolBalance  float64 `json:"solBalance"`
	SolPriceUSD float64 `json:"solPriceUSD"`
	SolValueUSD float64 `json:"solValueUSD"`

	Tokens []FungibleBalance `json:"tokens"`
	NFTs   []NFTAsset        `json:"nfts"`

	TokenValueUSD float64 `json:"tokenValueUSD"`
	TotalValueUSD float64 `json:"totalValueUSD"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// ZeroPortfolio is the degraded placeholder substituted when a wallet scan
// fails: the batch result always carries one entry per requested address.
func ZeroPortfolio(address string) WalletPortfolio {
	return WalletPortfolio{
		Address:     address,
		Tokens:      []FungibleBalance{},
		NFTs:        []NFTAsset{},
		LastUpdated: time.Now().UTC(),
	}
}
