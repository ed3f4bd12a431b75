package service

import (
	"context"
	"fmt"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	solanainfra "solfolio/internal/infrastructure/solana"
)

// scannerServiceImpl implements port.AccountScanner.
type scannerServiceImpl struct {
	chain  port.ChainClient
	logger port.Logger
}

// NewScannerService creates a new instance of scannerServiceImpl.
func NewScannerService(chain port.ChainClient, l port.Logger) port.AccountScanner {
	return &scannerServiceImpl{chain: chain, logger: l}
}

// Scan implements port.AccountScanner. It enumerates the wallet's token
// accounts across both token programs and splits them into NFT candidates
// and fungible holdings. Classification is a pure function of decimals and
// amount, so re-scanning an unchanged wallet yields the same split.
func (s *scannerServiceImpl) Scan(ctx context.Context, walletAddress string) (*port.ScanResult, error) {
	if err := solanainfra.ValidateAddress(walletAddress); err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}

	lamports, err := s.chain.GetNativeBalance(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Failed to fetch native balance", "address", walletAddress, "error", err)
		return nil, fmt.Errorf("failed to fetch native balance for %s: %w", walletAddress, err)
	}

	records, err := s.chain.GetTokenAccounts(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Failed to fetch token accounts", "address", walletAddress, "error", err)
		return nil, fmt.Errorf("failed to fetch token accounts for %s: %w", walletAddress, err)
	}

	result := &port.ScanResult{
		Address:       walletAddress,
		SolBalance:    float64(lamports) / entity.LamportsPerSol,
		Fungible:      make([]entity.TokenAccountRecord, 0, len(records)),
		NFTCandidates: make([]entity.TokenAccountRecord, 0),
	}

	for _, record := range records {
		switch {
		case record.IsNFTCandidate():
			result.NFTCandidates = append(result.NFTCandidates, record)
		case record.UIAmount > 0:
			result.Fungible = append(result.Fungible, record)
		default:
			// empty token accounts carry no value either way
		}
	}

	s.logger.Debug("Scanned wallet",
		"address", walletAddress,
		"solBalance", result.SolBalance,
		"fungibleCount", len(result.Fungible),
		"nftCandidateCount", len(result.NFTCandidates))
	return result, nil
}
