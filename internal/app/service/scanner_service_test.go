package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solfolio/internal/domain/entity"
)

func TestScanClassifiesAccounts(t *testing.T) {
	chain := &fakeChain{
		balances: map[string]uint64{walletA: 1_500_000_000},
		accounts: map[string][]entity.TokenAccountRecord{
			walletA: {
				{Mint: "nftMint", Decimals: 0, UIAmount: 1},
				{Mint: "fungibleMint", Decimals: 6, UIAmount: 42},
				{Mint: "wholeNumberMint", Decimals: 0, UIAmount: 2},
				{Mint: "emptyMint", Decimals: 6, UIAmount: 0},
			},
		},
	}
	svc := NewScannerService(chain, noplog{})

	result, err := svc.Scan(context.Background(), walletA)
	require.NoError(t, err)

	assert.Equal(t, walletA, result.Address)
	assert.Equal(t, 1.5, result.SolBalance)

	require.Len(t, result.NFTCandidates, 1, "only decimals=0 amount=1 is an NFT candidate")
	assert.Equal(t, "nftMint", result.NFTCandidates[0].Mint)

	require.Len(t, result.Fungible, 2, "empty accounts are dropped")
	mints := []string{result.Fungible[0].Mint, result.Fungible[1].Mint}
	assert.Contains(t, mints, "fungibleMint")
	assert.Contains(t, mints, "wholeNumberMint", "a multi-unit zero-decimal holding is fungible")
}

func TestScanRejectsInvalidAddress(t *testing.T) {
	svc := NewScannerService(&fakeChain{}, noplog{})

	_, err := svc.Scan(context.Background(), "not-a-valid-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid wallet address")
}

func TestScanPropagatesChainErrors(t *testing.T) {
	chain := &fakeChain{balanceErr: errors.New("rpc down")}
	svc := NewScannerService(chain, noplog{})

	_, err := svc.Scan(context.Background(), walletA)
	require.Error(t, err)

	chain = &fakeChain{
		balances:    map[string]uint64{walletA: 1},
		accountsErr: errors.New("rpc down"),
	}
	svc = NewScannerService(chain, noplog{})

	_, err = svc.Scan(context.Background(), walletA)
	require.Error(t, err)
}
