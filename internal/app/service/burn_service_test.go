package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
)

func newBurnTestChain() *fakeChain {
	return &fakeChain{
		blockhash: solana.MustHashFromBase58(walletA),
		lastValid: 250_000_000,
	}
}

func TestBuildBurnTransactionSkipsMalformedEntries(t *testing.T) {
	chain := newBurnTestChain()
	rent := &fakeRent{tokenRent: 0.00203928}
	svc := NewBurnService(chain, rent, noplog{})

	req := entity.BurnRequest{
		Payer: walletA,
		NFTs: []entity.BurnItem{
			{Mint: mintA, TokenAccount: testTokenAcc},
			{Mint: mintB, TokenAccount: walletB},
			{Mint: "not-base58", TokenAccount: testTokenAcc},
		},
	}

	tx, err := svc.BuildBurnTransaction(context.Background(), req)
	require.NoError(t, err)

	// burnChecked + closeAccount per surviving NFT
	assert.Equal(t, 4, tx.InstructionCount)
	assert.Equal(t, 1, tx.SkippedNFTs)
	assert.InDelta(t, 2*0.00203928, tx.EstimatedRecoverableSol, 1e-12)
	assert.Equal(t, chain.blockhash.String(), tx.Blockhash)
	assert.Equal(t, uint64(250_000_000), tx.LastValidBlockHeight)
	assert.NotEmpty(t, tx.Transaction)
}

func TestBuildBurnTransactionAllMalformed(t *testing.T) {
	svc := NewBurnService(newBurnTestChain(), &fakeRent{}, noplog{})

	req := entity.BurnRequest{
		Payer: walletA,
		NFTs: []entity.BurnItem{
			{Mint: "bad", TokenAccount: "bad"},
			{Mint: "also-bad", TokenAccount: "also-bad"},
		},
	}

	_, err := svc.BuildBurnTransaction(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid NFTs")
}

func TestBuildBurnTransactionEmptyRequest(t *testing.T) {
	svc := NewBurnService(newBurnTestChain(), &fakeRent{}, noplog{})

	_, err := svc.BuildBurnTransaction(context.Background(), entity.BurnRequest{Payer: walletA})
	require.Error(t, err)
}

func TestBuildBurnTransactionInvalidPayer(t *testing.T) {
	svc := NewBurnService(newBurnTestChain(), &fakeRent{}, noplog{})

	req := entity.BurnRequest{
		Payer: "not-a-key",
		NFTs:  []entity.BurnItem{{Mint: mintA, TokenAccount: testTokenAcc}},
	}
	_, err := svc.BuildBurnTransaction(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payer")
}

func TestBuildBurnTransactionBlockhashFailure(t *testing.T) {
	chain := newBurnTestChain()
	chain.blockhashErr = errors.New("rpc down")
	svc := NewBurnService(chain, &fakeRent{}, noplog{})

	req := entity.BurnRequest{
		Payer: walletA,
		NFTs:  []entity.BurnItem{{Mint: mintA, TokenAccount: testTokenAcc}},
	}
	_, err := svc.BuildBurnTransaction(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrChainUnavailable, "RPC failures must be distinguishable from bad requests")
}

func TestBuildBurnTransactionRentFailureZeroesEstimate(t *testing.T) {
	rent := &fakeRent{tokenErr: errors.New("rent lookup failed")}
	svc := NewBurnService(newBurnTestChain(), rent, noplog{})

	req := entity.BurnRequest{
		Payer: walletA,
		NFTs:  []entity.BurnItem{{Mint: mintA, TokenAccount: testTokenAcc}},
	}

	tx, err := svc.BuildBurnTransaction(context.Background(), req)
	require.NoError(t, err, "a failed estimate must not block the burn")
	assert.Zero(t, tx.EstimatedRecoverableSol)
	assert.Equal(t, 2, tx.InstructionCount)
}
