package service

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
)

// burnServiceImpl implements port.BurnService.
type burnServiceImpl struct {
	chain  port.ChainClient
	rent   port.RentSource
	logger port.Logger
}

// NewBurnService creates a new instance of burnServiceImpl.
func NewBurnService(chain port.ChainClient, rent port.RentSource, l port.Logger) port.BurnService {
	return &burnServiceImpl{chain: chain, rent: rent, logger: l}
}

// BuildBurnTransaction implements port.BurnService. For each NFT it emits a
// burnChecked of the single unit followed by a closeAccount returning the
// token account's rent to the payer. Malformed entries are skipped with a
// warning; a request where nothing survives fails outright so the caller
// never signs an empty transaction.
func (s *burnServiceImpl) BuildBurnTransaction(ctx context.Context, req entity.BurnRequest) (*entity.BurnTransaction, error) {
	if len(req.NFTs) == 0 {
		return nil, fmt.Errorf("burn request contains no NFTs")
	}

	payer, err := solana.PublicKeyFromBase58(req.Payer)
	if err != nil {
		return nil, fmt.Errorf("invalid payer address %q: %w", req.Payer, err)
	}

	var instructions []solana.Instruction
	skipped := 0

	for _, item := range req.NFTs {
		burnIx, closeIx, err := s.buildBurnPair(item, payer)
		if err != nil {
			s.logger.Warn("Skipping malformed NFT in burn request",
				"mint", item.Mint, "tokenAccount", item.TokenAccount, "error", err)
			skipped++
			continue
		}
		instructions = append(instructions, burnIx, closeIx)
	}

	if len(instructions) == 0 {
		return nil, fmt.Errorf("no valid NFTs in burn request: all %d entries were malformed", len(req.NFTs))
	}

	blockhash, lastValidBlockHeight, err := s.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch blockhash: %v", port.ErrChainUnavailable, err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	encoded, err := tx.ToBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	burnedCount := len(instructions) / 2
	recoverable := 0.0
	if tokenRent, err := s.rent.TokenAccountRent(ctx); err != nil {
		s.logger.Warn("Failed to resolve token account rent for estimate", "error", err)
	} else {
		recoverable = tokenRent * float64(burnedCount)
	}

	s.logger.Info("Built burn transaction",
		"payer", req.Payer,
		"nftCount", burnedCount,
		"skipped", skipped,
		"estimatedRecoverableSol", recoverable)

	return &entity.BurnTransaction{
		Transaction:             encoded,
		Blockhash:               blockhash.String(),
		LastValidBlockHeight:    lastValidBlockHeight,
		EstimatedRecoverableSol: recoverable,
		InstructionCount:        len(instructions),
		SkippedNFTs:             skipped,
	}, nil
}

// buildBurnPair builds the burnChecked and closeAccount instructions for
// one NFT.
func (s *burnServiceImpl) buildBurnPair(item entity.BurnItem, payer solana.PublicKey) (solana.Instruction, solana.Instruction, error) {
	mint, err := solana.PublicKeyFromBase58(item.Mint)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mint: %w", err)
	}
	tokenAccount, err := solana.PublicKeyFromBase58(item.TokenAccount)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token account: %w", err)
	}

	// amount 1 at 0 decimals: exactly the single NFT unit.
	burnIx, err := token.NewBurnCheckedInstruction(
		1, 0, tokenAccount, mint, payer, nil,
	).ValidateAndBuild()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build burn instruction: %w", err)
	}

	closeIx, err := token.NewCloseAccountInstruction(
		tokenAccount, payer, payer, nil,
	).ValidateAndBuild()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build close instruction: %w", err)
	}

	return burnIx, closeIx, nil
}
