package priceapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"solfolio/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Upstream endpoints and limits.
const (
	DefaultPriceBaseURL     = "https://api.jup.ag/price/v2"
	DefaultTokenListURL     = "https://token.jup.ag/all"
	MaxMintsPerPriceRequest = 100
)

// RegistryToken is one entry of the public token registry.
type RegistryToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI"`
}

// PriceClient defines the interface for fetching token prices and the token
// registry from the price provider.
type PriceClient interface {
	// GetPrices fetches USD prices for up to MaxMintsPerPriceRequest mints.
	// Mints the provider cannot price are absent from the result.
	GetPrices(ctx context.Context, mints []string) (map[string]float64, error)

	// GetTokenRegistry fetches the full token registry keyed by mint.
	GetTokenRegistry(ctx context.Context) (map[string]entity.TokenPrice, error)
}

type jupiterClientImpl struct {
	client       *fasthttp.Client
	priceBaseURL string
	tokenListURL string
	timeout      time.Duration
	logger       *zap.Logger
}

// NewJupiterClient creates a new price provider client. Empty URLs select
// the public endpoints.
func NewJupiterClient(priceBaseURL, tokenListURL string, timeout time.Duration, logger *zap.Logger) PriceClient {
	if priceBaseURL == "" {
		priceBaseURL = DefaultPriceBaseURL
	}
	if tokenListURL == "" {
		tokenListURL = DefaultTokenListURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &jupiterClientImpl{
		client:       &fasthttp.Client{},
		priceBaseURL: strings.TrimRight(priceBaseURL, "/"),
		tokenListURL: tokenListURL,
		timeout:      timeout,
		logger:       logger.Named("JupiterClient"),
	}
}

func (c *jupiterClientImpl) get(ctx context.Context, requestURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d: %s",
			requestURL, resp.StatusCode(), string(resp.Body()))
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// priceEnvelope is the provider's response wrapper. Per-mint payloads are
// kept raw because the provider has shipped them as bare numbers, numeric
// strings and nested objects at different times.
type priceEnvelope struct {
	Data map[string]jsoniter.RawMessage `json:"data"`
}

// GetPrices implements PriceClient.
func (c *jupiterClientImpl) GetPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	if len(mints) == 0 {
		return map[string]float64{}, nil
	}
	if len(mints) > MaxMintsPerPriceRequest {
		c.logger.Warn("Number of mints exceeds provider batch limit",
			zap.Int("requestedCount", len(mints)),
			zap.Int("maxAllowed", MaxMintsPerPriceRequest))
		return nil, fmt.Errorf("number of mints (%d) exceeds max mints per request (%d)",
			len(mints), MaxMintsPerPriceRequest)
	}

	requestURL := fmt.Sprintf("%s?ids=%s", c.priceBaseURL, strings.Join(mints, ","))
	c.logger.Debug("Requesting token prices", zap.String("url", requestURL))

	rawBody, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var envelope priceEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price response: %w", err)
	}

	prices := make(map[string]float64, len(envelope.Data))
	for mint, raw := range envelope.Data {
		price, ok := parsePriceValue(raw)
		if !ok {
			c.logger.Debug("Unparseable price payload for mint",
				zap.String("mint", mint), zap.ByteString("payload", raw))
			continue
		}
		prices[mint] = price
	}
	return prices, nil
}

// parsePriceValue extracts a price from a payload that may be a bare number,
// a numeric string, or an object carrying a "price" field of either shape.
func parsePriceValue(raw jsoniter.RawMessage) (float64, bool) {
	// null unmarshals into a float64 as a no-op, so it needs its own check
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		price, err := strconv.ParseFloat(asString, 64)
		return price, err == nil
	}

	var asObject struct {
		Price jsoniter.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Price != nil {
		return parsePriceValue(asObject.Price)
	}
	return 0, false
}

// GetTokenRegistry implements PriceClient.
func (c *jupiterClientImpl) GetTokenRegistry(ctx context.Context) (map[string]entity.TokenPrice, error) {
	c.logger.Debug("Requesting token registry", zap.String("url", c.tokenListURL))

	rawBody, err := c.get(ctx, c.tokenListURL)
	if err != nil {
		return nil, err
	}

	var tokens []RegistryToken
	if err := json.Unmarshal(rawBody, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token registry: %w", err)
	}

	registry := make(map[string]entity.TokenPrice, len(tokens))
	for _, token := range tokens {
		if token.Address == "" {
			continue
		}
		registry[token.Address] = entity.TokenPrice{
			Symbol:  token.Symbol,
			Name:    token.Name,
			LogoURI: token.LogoURI,
		}
	}

	c.logger.Debug("Loaded token registry", zap.Int("tokenCount", len(registry)))
	return registry, nil
}
