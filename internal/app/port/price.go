package port

import (
	"context"

	"solfolio/internal/domain/entity"
)

// PriceService resolves mint identifiers to USD valuations.
//
// GetPrices always returns an entry for every requested mint, with a price
// of zero when no price could be resolved; provider failures degrade, they
// do not propagate.
type PriceService interface {
	GetPrices(ctx context.Context, mints []string) map[string]entity.TokenPrice
	GetNativePrice(ctx context.Context) float64
}

// NativePriceSource is a single upstream quote for the native currency's
// USD price, used by the price service's fallback chain.
type NativePriceSource interface {
	NativePriceUSD(ctx context.Context) (float64, error)
}

// FloorPriceSource resolves collection display names to floor prices in
// SOL. It is a pluggable collaborator; implementations may be backed by a
// live marketplace API or a static table. Unresolvable collections are
// simply absent from the result.
type FloorPriceSource interface {
	FloorPrices(ctx context.Context, collections []string) map[string]float64
}
