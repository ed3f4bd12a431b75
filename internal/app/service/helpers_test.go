package service

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
)

// Base58 fixtures shared across the service tests. Real, well-formed keys:
// the chain layer rejects anything else before a service ever sees it.
const (
	walletA      = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	walletB      = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	mintA        = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintB        = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	testTokenAcc = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

type noplog struct{}

func (noplog) Info(msg string, args ...any)  {}
func (noplog) Debug(msg string, args ...any) {}
func (noplog) Warn(msg string, args ...any)  {}
func (noplog) Error(msg string, args ...any) {}

type fakeChain struct {
	balances    map[string]uint64
	balanceErr  error
	accounts    map[string][]entity.TokenAccountRecord
	accountsErr error

	metadata    map[string][]byte
	metadataErr error

	rentBySize map[uint64]uint64
	rentErr    error

	blockhash    solana.Hash
	lastValid    uint64
	blockhashErr error
}

func (f *fakeChain) GetNativeBalance(ctx context.Context, walletAddress string) (uint64, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[walletAddress], nil
}

func (f *fakeChain) GetTokenAccounts(ctx context.Context, walletAddress string) ([]entity.TokenAccountRecord, error) {
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	return f.accounts[walletAddress], nil
}

func (f *fakeChain) GetMetadataAccounts(ctx context.Context, mints []string) (map[string][]byte, error) {
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	out := make(map[string][]byte)
	for _, mint := range mints {
		if data, ok := f.metadata[mint]; ok {
			out[mint] = data
		}
	}
	return out, nil
}

func (f *fakeChain) MinimumBalanceForRentExemption(ctx context.Context, accountSize uint64) (uint64, error) {
	if f.rentErr != nil {
		return 0, f.rentErr
	}
	return f.rentBySize[accountSize], nil
}

func (f *fakeChain) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	if f.blockhashErr != nil {
		return solana.Hash{}, 0, f.blockhashErr
	}
	return f.blockhash, f.lastValid, nil
}

type fakeRent struct {
	tokenRent    float64
	accountsRent float64
	tokenErr     error
	accountsErr  error
}

func (f *fakeRent) TokenAccountRent(ctx context.Context) (float64, error) {
	return f.tokenRent, f.tokenErr
}

func (f *fakeRent) AccountsRent(ctx context.Context) (float64, error) {
	return f.accountsRent, f.accountsErr
}

type fakeScanner struct {
	results map[string]*port.ScanResult
	errs    map[string]error
}

func (f *fakeScanner) Scan(ctx context.Context, walletAddress string) (*port.ScanResult, error) {
	if err := f.errs[walletAddress]; err != nil {
		return nil, err
	}
	if result, ok := f.results[walletAddress]; ok {
		return result, nil
	}
	return &port.ScanResult{Address: walletAddress}, nil
}

type fakePriceService struct {
	prices      map[string]entity.TokenPrice
	nativePrice float64

	getPricesCalls int
	requested      [][]string
}

func (f *fakePriceService) GetPrices(ctx context.Context, mints []string) map[string]entity.TokenPrice {
	f.getPricesCalls++
	f.requested = append(f.requested, mints)
	out := make(map[string]entity.TokenPrice, len(mints))
	for _, mint := range mints {
		out[mint] = f.prices[mint]
	}
	return out
}

func (f *fakePriceService) GetNativePrice(ctx context.Context) float64 {
	return f.nativePrice
}

type fakeNFTService struct{}

func (fakeNFTService) CollectNFTs(ctx context.Context, addresses []string) []entity.NFTAsset {
	return []entity.NFTAsset{}
}

func (fakeNFTService) ResolveNFTs(ctx context.Context, candidates []entity.TokenAccountRecord) []entity.NFTAsset {
	assets := make([]entity.NFTAsset, 0, len(candidates))
	for _, candidate := range candidates {
		assets = append(assets, entity.NFTAsset{
			Mint:         candidate.Mint,
			TokenAccount: candidate.TokenAccount,
			Owner:        candidate.Owner,
		})
	}
	return assets
}

type fakePriceClient struct {
	prices    map[string]float64
	pricesErr error

	registry    map[string]entity.TokenPrice
	registryErr error

	priceCalls    int
	registryCalls int
}

func (f *fakePriceClient) GetPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	f.priceCalls++
	if f.pricesErr != nil {
		return nil, f.pricesErr
	}
	out := make(map[string]float64)
	for _, mint := range mints {
		if price, ok := f.prices[mint]; ok {
			out[mint] = price
		}
	}
	return out, nil
}

func (f *fakePriceClient) GetTokenRegistry(ctx context.Context) (map[string]entity.TokenPrice, error) {
	f.registryCalls++
	if f.registryErr != nil {
		return nil, f.registryErr
	}
	return f.registry, nil
}

type fakeNativeSource struct {
	price float64
	err   error
	calls int
}

func (f *fakeNativeSource) NativePriceUSD(ctx context.Context) (float64, error) {
	f.calls++
	return f.price, f.err
}

type fakeGateway struct {
	docs map[string][]byte
	err  error
}

func (f *fakeGateway) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if body, ok := f.docs[uri]; ok {
		return body, nil
	}
	return nil, context.DeadlineExceeded
}

type fakeFloorSource struct {
	floors map[string]float64
}

func (f *fakeFloorSource) FloorPrices(ctx context.Context, collections []string) map[string]float64 {
	out := make(map[string]float64)
	for _, name := range collections {
		if floor, ok := f.floors[name]; ok {
			out[name] = floor
		}
	}
	return out
}
