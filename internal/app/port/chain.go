package port

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"solfolio/internal/domain/entity"
)

// ErrChainUnavailable marks an operation that failed because the chain RPC
// could not be reached or answered with an error, as opposed to bad input.
var ErrChainUnavailable = errors.New("chain unavailable")

// ChainClient defines the interface for interacting with the Solana chain.
type ChainClient interface {
	// GetNativeBalance fetches the wallet's SOL balance in lamports.
	GetNativeBalance(ctx context.Context, walletAddress string) (uint64, error)

	// GetTokenAccounts enumerates the wallet's token accounts across both
	// token-program variants, merged without regard to arrival order.
	GetTokenAccounts(ctx context.Context, walletAddress string) ([]entity.TokenAccountRecord, error)

	// GetMetadataAccounts fetches the raw metadata account data for up to
	// MetadataBatchLimit mints in one round-trip. Mints without a metadata
	// account are absent from the returned map; that is not an error.
	GetMetadataAccounts(ctx context.Context, mints []string) (map[string][]byte, error)

	// MinimumBalanceForRentExemption returns the lamports an account of the
	// given byte size must hold to persist on-chain.
	MinimumBalanceForRentExemption(ctx context.Context, accountSize uint64) (uint64, error)

	// LatestBlockhash returns a recent blockhash and the last block height
	// at which a transaction using it stays valid.
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

// MetadataBatchLimit is the upstream cap on accounts per batch read.
const MetadataBatchLimit = 100
