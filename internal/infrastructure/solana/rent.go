package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
)

// On-chain account sizes in bytes for the accounts an NFT occupies.
const (
	TokenAccountSize    = 165
	MetadataAccountSize = 679
	EditionAccountSize  = 241
)

// RentCalculator resolves rent-exemption reserves via the chain and memoizes
// them. Rent parameters change only with cluster configuration, so a long
// cache TTL is safe.
type RentCalculator struct {
	chain port.ChainClient
	cache *cache.Cache
}

var _ port.RentSource = (*RentCalculator)(nil)

// NewRentCalculator builds a rent source over the given chain client with
// its own injected memoization cache.
func NewRentCalculator(chain port.ChainClient, rentCache *cache.Cache) *RentCalculator {
	if rentCache == nil {
		rentCache = cache.New(24*time.Hour, time.Hour)
	}
	return &RentCalculator{chain: chain, cache: rentCache}
}

func (r *RentCalculator) rentFor(ctx context.Context, size uint64) (float64, error) {
	key := fmt.Sprintf("rent:%d", size)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(float64), nil
	}

	lamports, err := r.chain.MinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return 0, err
	}

	sol := float64(lamports) / entity.LamportsPerSol
	r.cache.Set(key, sol, cache.DefaultExpiration)
	return sol, nil
}

// TokenAccountRent returns the token account's own rent reserve in SOL. This
// is the only amount closing the token account actually returns to the
// wallet, so it alone backs an NFT's burn value.
func (r *RentCalculator) TokenAccountRent(ctx context.Context) (float64, error) {
	return r.rentFor(ctx, TokenAccountSize)
}

// AccountsRent returns the combined rent reserve across the token, metadata
// and edition accounts in SOL. Informational only: the metadata and edition
// reserves are not recoverable by the token holder.
func (r *RentCalculator) AccountsRent(ctx context.Context) (float64, error) {
	var total float64
	for _, size := range []uint64{TokenAccountSize, MetadataAccountSize, EditionAccountSize} {
		sol, err := r.rentFor(ctx, size)
		if err != nil {
			return 0, err
		}
		total += sol
	}
	return total, nil
}
