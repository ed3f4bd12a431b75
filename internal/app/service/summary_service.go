package service

import (
	"math"
	"sort"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
)

// TopListSize caps the token and collection rankings in the summary.
const TopListSize = 10

// summaryServiceImpl implements port.SummaryService.
type summaryServiceImpl struct {
	logger port.Logger
}

// NewSummaryService creates a new instance of summaryServiceImpl.
func NewSummaryService(l port.Logger) port.SummaryService {
	return &summaryServiceImpl{logger: l}
}

// Summarize implements port.SummaryService. It is pure: the same inputs
// always produce the same summary, and no value in the output is ever NaN
// or infinite regardless of what the snapshots carry.
func (s *summaryServiceImpl) Summarize(portfolios []entity.WalletPortfolio, nfts []entity.NFTAsset) entity.PortfolioSummary {
	summary := entity.PortfolioSummary{
		WalletCount:    len(portfolios),
		NFTCount:       len(nfts),
		TopTokens:      []entity.FungibleBalance{},
		TopCollections: []entity.CollectionStat{},
	}

	solPriceUSD := s.referenceSolPrice(portfolios)

	byMint := make(map[string]int)
	var merged []entity.FungibleBalance

	for _, portfolio := range portfolios {
		summary.TotalSol += finite(portfolio.SolBalance)
		summary.TotalSolValueUSD += finite(portfolio.SolValueUSD)
		summary.TotalTokenValueUSD += finite(portfolio.TokenValueUSD)

		for _, token := range portfolio.Tokens {
			token.UIAmount = finite(token.UIAmount)
			token.ValueUSD = finite(token.ValueUSD)
			token.PriceUSD = finite(token.PriceUSD)

			if idx, ok := byMint[token.Mint]; ok {
				merged[idx].Merge(token)
				continue
			}
			byMint[token.Mint] = len(merged)
			merged = append(merged, token)
		}
	}
	summary.TokenCount = len(merged)

	collections := make(map[string]*entity.CollectionStat)
	for _, nft := range nfts {
		valueUSD := finite(nft.MarketValueSol()) * solPriceUSD
		summary.TotalNFTValueUSD += valueUSD

		name := nft.CollectionName()
		stat, ok := collections[name]
		if !ok {
			stat = &entity.CollectionStat{Name: name}
			collections[name] = stat
		}
		stat.Count++
		stat.ValueUSD += valueUSD
	}

	summary.TotalValueUSD = summary.TotalSolValueUSD + summary.TotalTokenValueUSD + summary.TotalNFTValueUSD

	summary.TopTokens = topTokens(merged)
	summary.TopCollections = topCollections(collections)

	s.logger.Debug("Summarized portfolios",
		"walletCount", summary.WalletCount,
		"tokenCount", summary.TokenCount,
		"nftCount", summary.NFTCount,
		"totalValueUSD", summary.TotalValueUSD)
	return summary
}

// referenceSolPrice picks the SOL/USD rate used to convert NFT valuations:
// the first positive rate any snapshot carries, else the fixed fallback.
func (s *summaryServiceImpl) referenceSolPrice(portfolios []entity.WalletPortfolio) float64 {
	for _, portfolio := range portfolios {
		if price := finite(portfolio.SolPriceUSD); price > 0 {
			return price
		}
	}
	return FallbackSOLPriceUSD
}

func topTokens(merged []entity.FungibleBalance) []entity.FungibleBalance {
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ValueUSD > merged[j].ValueUSD
	})
	if len(merged) > TopListSize {
		merged = merged[:TopListSize]
	}
	out := make([]entity.FungibleBalance, len(merged))
	copy(out, merged)
	return out
}

func topCollections(collections map[string]*entity.CollectionStat) []entity.CollectionStat {
	stats := make([]entity.CollectionStat, 0, len(collections))
	for _, stat := range collections {
		stats = append(stats, *stat)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].ValueUSD != stats[j].ValueUSD {
			return stats[i].ValueUSD > stats[j].ValueUSD
		}
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	if len(stats) > TopListSize {
		stats = stats[:TopListSize]
	}
	return stats
}

// finite clamps NaN and infinities to zero so one corrupt upstream number
// cannot poison every aggregate.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
