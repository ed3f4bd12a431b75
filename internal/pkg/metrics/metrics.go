package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RPCRequests counts outbound chain RPC calls by method.
	RPCRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solfolio_rpc_requests_total",
		Help: "Outbound Solana RPC calls by method.",
	}, []string{"method"})

	// RPCRetries counts rate-limit retries against the chain RPC.
	RPCRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solfolio_rpc_retries_total",
		Help: "Chain RPC retries triggered by rate limiting.",
	})

	// WalletScanFailures counts wallet scans degraded to zero portfolios.
	WalletScanFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solfolio_wallet_scan_failures_total",
		Help: "Wallet scans that degraded to a zero-valued portfolio.",
	})

	// GatewayFallbacks counts mirror advances during content fetches.
	GatewayFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solfolio_gateway_fallbacks_total",
		Help: "Gateway mirror fallbacks during off-chain metadata fetches.",
	})

	// PriceCacheHits and PriceCacheMisses track price cache effectiveness.
	PriceCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solfolio_price_cache_hits_total",
		Help: "Price lookups served from the in-process cache.",
	})
	PriceCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solfolio_price_cache_misses_total",
		Help: "Price lookups that required a provider fetch.",
	})
)

// MustRegister registers all collectors with the default registry.
func MustRegister() {
	prometheus.MustRegister(
		RPCRequests,
		RPCRetries,
		WalletScanFailures,
		GatewayFallbacks,
		PriceCacheHits,
		PriceCacheMisses,
	)
}
