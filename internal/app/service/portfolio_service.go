package service

import (
	"context"
	"sync"
	"time"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	"solfolio/internal/pkg/metrics"
	"solfolio/internal/pkg/utils"
)

// portfolioServiceImpl implements port.PortfolioService.
type portfolioServiceImpl struct {
	scanner port.AccountScanner
	prices  port.PriceService
	nfts    port.NFTService
	logger  port.Logger

	maxConcurrentRoutines int
	interWalletDelay      time.Duration

	failedWallets map[string]bool
	mu            sync.Mutex
}

// NewPortfolioService creates a new instance of portfolioServiceImpl.
func NewPortfolioService(
	scanner port.AccountScanner,
	prices port.PriceService,
	nfts port.NFTService,
	l port.Logger,
	maxRoutines int,
	interWalletDelay time.Duration,
) port.PortfolioService {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &portfolioServiceImpl{
		scanner:               scanner,
		prices:                prices,
		nfts:                  nfts,
		logger:                l,
		maxConcurrentRoutines: maxRoutines,
		interWalletDelay:      interWalletDelay,
		failedWallets:         make(map[string]bool),
	}
}

// BuildPortfolios implements port.PortfolioService. The result has exactly
// one entry per input address in input order; wallets that fail to scan
// degrade to zero-valued placeholders instead of failing the batch.
//
// Prices are resolved in one amortized pass over the union of all scanned
// mints, so a batch of wallets holding the same tokens costs one provider
// round-trip, not one per wallet.
func (s *portfolioServiceImpl) BuildPortfolios(ctx context.Context, addresses []string) []entity.WalletPortfolio {
	s.logger.Debug("Building portfolios", "walletCount", len(addresses))

	scans := make([]*port.ScanResult, len(addresses))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxConcurrentRoutines)

	for i, address := range addresses {
		if i > 0 && s.interWalletDelay > 0 {
			select {
			case <-time.After(s.interWalletDelay):
			case <-ctx.Done():
			}
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, addr string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := s.scanner.Scan(ctx, addr)
			if err != nil {
				s.logger.Warn("Wallet scan failed, degrading to zero portfolio",
					"address", addr, "error", err)
				metrics.WalletScanFailures.Inc()
				s.markFailed(addr)
				return
			}
			scans[idx] = result
		}(i, address)
	}
	wg.Wait()

	var allMints []string
	for _, scan := range scans {
		if scan == nil {
			continue
		}
		for _, record := range scan.Fungible {
			allMints = append(allMints, record.Mint)
		}
	}

	prices := s.prices.GetPrices(ctx, utils.UniqueStrings(allMints))
	nativePrice := s.prices.GetNativePrice(ctx)

	portfolios := make([]entity.WalletPortfolio, len(addresses))
	for i, address := range addresses {
		scan := scans[i]
		if scan == nil {
			portfolios[i] = entity.ZeroPortfolio(address)
			continue
		}
		portfolios[i] = s.assemblePortfolio(ctx, scan, prices, nativePrice)
	}

	s.logger.Info("Built portfolios", "walletCount", len(portfolios))
	return portfolios
}

// assemblePortfolio turns one scan result into a priced snapshot.
func (s *portfolioServiceImpl) assemblePortfolio(
	ctx context.Context,
	scan *port.ScanResult,
	prices map[string]entity.TokenPrice,
	nativePrice float64,
) entity.WalletPortfolio {
	byMint := make(map[string]int)
	tokens := make([]entity.FungibleBalance, 0, len(scan.Fungible))

	for _, record := range scan.Fungible {
		price := prices[record.Mint]
		balance := entity.FungibleBalance{
			TokenAccountRecord: record,
			Symbol:             price.Symbol,
			Name:               price.Name,
			LogoURI:            price.LogoURI,
			PriceUSD:           price.PriceUSD,
			ValueUSD:           record.UIAmount * price.PriceUSD,
		}

		if idx, ok := byMint[record.Mint]; ok {
			tokens[idx].Merge(balance)
			continue
		}
		byMint[record.Mint] = len(tokens)
		tokens = append(tokens, balance)
	}

	var tokenValueUSD float64
	for _, token := range tokens {
		tokenValueUSD += token.ValueUSD
	}

	portfolio := entity.WalletPortfolio{
		Address:       scan.Address,
		SolBalance:    scan.SolBalance,
		SolPriceUSD:   nativePrice,
		SolValueUSD:   scan.SolBalance * nativePrice,
		Tokens:        tokens,
		NFTs:          s.nfts.ResolveNFTs(ctx, scan.NFTCandidates),
		TokenValueUSD: tokenValueUSD,
		LastUpdated:   time.Now().UTC(),
	}
	portfolio.TotalValueUSD = portfolio.SolValueUSD + portfolio.TokenValueUSD
	return portfolio
}

func (s *portfolioServiceImpl) markFailed(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedWallets[address] = true
}

// FailedWallets returns the addresses whose last scan degraded to a zero
// portfolio.
func (s *portfolioServiceImpl) FailedWallets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := make([]string, 0, len(s.failedWallets))
	for address, isFailed := range s.failedWallets {
		if isFailed {
			failed = append(failed, address)
		}
	}
	return failed
}
