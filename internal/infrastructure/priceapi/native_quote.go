package priceapi

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/ilkamo/jupiter-go/jupiter"
	"go.uber.org/zap"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
)

// Well-known mainnet mints used for the native quote.
const (
	wrappedSOLMint = "So11111111111111111111111111111111111111112"
	usdcMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdcDecimals   = 6
)

// quoteSource derives the native SOL/USD price from a swap quote of one SOL
// into USDC. Used when the price API has no entry for wrapped SOL.
type quoteSource struct {
	jupClient *jupiter.ClientWithResponses
	logger    *zap.Logger
}

var _ port.NativePriceSource = (*quoteSource)(nil)

// NewQuoteSource creates a NativePriceSource backed by the swap aggregator's
// quote endpoint.
func NewQuoteSource(logger *zap.Logger) (port.NativePriceSource, error) {
	jupClient, err := jupiter.NewClientWithResponses(jupiter.DefaultAPIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote client: %w", err)
	}
	return &quoteSource{
		jupClient: jupClient,
		logger:    logger.Named("QuoteSource"),
	}, nil
}

// NativePriceUSD quotes 1 SOL into USDC and converts the out-amount to a
// USD price.
func (s *quoteSource) NativePriceUSD(ctx context.Context) (float64, error) {
	slippageBps := 50
	response, err := s.jupClient.GetQuoteWithResponse(ctx, &jupiter.GetQuoteParams{
		InputMint:   wrappedSOLMint,
		OutputMint:  usdcMint,
		Amount:      entity.LamportsPerSol,
		SlippageBps: &slippageBps,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get native quote: %w", err)
	}
	if response.JSON200 == nil {
		return 0, fmt.Errorf("no valid quote response received")
	}

	price, err := quoteOutToPrice(response.JSON200.OutAmount)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Derived native price from swap quote", zap.Float64("priceUSD", price))
	return price, nil
}

// quoteOutToPrice converts the quote's raw USDC out-amount into a USD price.
func quoteOutToPrice(outAmount string) (float64, error) {
	raw, err := strconv.ParseFloat(outAmount, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable quote out amount %q: %w", outAmount, err)
	}

	price := raw / math.Pow10(usdcDecimals)
	if price <= 0 {
		return 0, fmt.Errorf("quote produced non-positive price %f", price)
	}
	return price, nil
}
