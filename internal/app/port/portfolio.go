package port

import (
	"context"

	"solfolio/internal/domain/entity"
)

// ScanResult is one wallet's classified account inventory.
type ScanResult struct {
	Address       string
	SolBalance    float64
	Fungible      []entity.TokenAccountRecord
	NFTCandidates []entity.TokenAccountRecord
}

// AccountScanner enumerates and classifies one wallet's token accounts.
type AccountScanner interface {
	Scan(ctx context.Context, walletAddress string) (*ScanResult, error)
}

// PortfolioService builds portfolio snapshots for a batch of wallets.
// The result always has exactly one entry per input address, in input
// order; a failed address yields a zero-valued placeholder.
type PortfolioService interface {
	BuildPortfolios(ctx context.Context, addresses []string) []entity.WalletPortfolio
}

// NFTService resolves NFT-candidate token accounts into display-ready
// assets with rent and floor valuations attached.
type NFTService interface {
	// CollectNFTs scans a batch of wallets and returns their resolved NFTs
	// as one flat list, each asset tagged with its owning wallet. Failed
	// wallets contribute nothing.
	CollectNFTs(ctx context.Context, addresses []string) []entity.NFTAsset

	// ResolveNFTs resolves already-scanned candidate accounts without
	// re-scanning the owning wallets.
	ResolveNFTs(ctx context.Context, candidates []entity.TokenAccountRecord) []entity.NFTAsset
}

// SummaryService derives aggregate totals and rankings from portfolio
// snapshots plus an optional authoritative NFT list. Pure and
// deterministic given its inputs.
type SummaryService interface {
	Summarize(portfolios []entity.WalletPortfolio, nfts []entity.NFTAsset) entity.PortfolioSummary
}

// BurnService builds the unsigned burn-and-close transaction for a set of
// NFTs.
type BurnService interface {
	BuildBurnTransaction(ctx context.Context, req entity.BurnRequest) (*entity.BurnTransaction, error)
}

// RentSource computes reclaimable rent figures for NFT-related accounts.
type RentSource interface {
	// TokenAccountRent returns the token account's own rent reserve in SOL.
	TokenAccountRent(ctx context.Context) (float64, error)
	// AccountsRent returns the informational total across the token,
	// metadata and edition accounts in SOL.
	AccountsRent(ctx context.Context) (float64, error)
}
