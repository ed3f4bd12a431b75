package service

import (
	"context"
	"errors"
	"testing"

	bin "github.com/gagliardetto/binary"
	tokenmetadata "github.com/gagliardetto/metaplex-go/clients/token-metadata"
	"github.com/gagliardetto/solana-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	"solfolio/internal/infrastructure/gateway"
)

func encodeMetadata(t *testing.T, meta tokenmetadata.Metadata) []byte {
	t.Helper()
	data, err := bin.MarshalBorsh(&meta)
	require.NoError(t, err)
	return data
}

func TestResolveNFTsLayersMetadata(t *testing.T) {
	collectionKey := solana.MustPublicKeyFromBase58(walletB)
	chain := &fakeChain{
		metadata: map[string][]byte{
			mintA: encodeMetadata(t, tokenmetadata.Metadata{
				UpdateAuthority: solana.MustPublicKeyFromBase58(walletA),
				Mint:            solana.MustPublicKeyFromBase58(mintA),
				Data: tokenmetadata.Data{
					Name:                 "Mad Lad #42\x00\x00",
					Symbol:               "MAD\x00",
					Uri:                  "ipfs://QmDoc\x00\x00",
					SellerFeeBasisPoints: 500,
				},
				Collection: &tokenmetadata.Collection{Verified: true, Key: collectionKey},
			}),
		},
	}
	gw := &fakeGateway{docs: map[string][]byte{
		"ipfs://QmDoc": []byte(`{
			"name": "Mad Lad #42",
			"image": "ipfs://QmImg",
			"description": "A very mad lad",
			"attributes": [{"trait_type": "Hat", "value": "Crown"}],
			"collection": {"name": "Mad Lads", "family": "Lads"}
		}`),
	}}
	floors := &fakeFloorSource{floors: map[string]float64{"Mad Lads": 5}}
	rent := &fakeRent{tokenRent: 0.002, accountsRent: 0.01}

	svc := NewNFTService(chain, gw, floors, rent, &fakeScanner{}, noplog{})

	assets := svc.ResolveNFTs(context.Background(), []entity.TokenAccountRecord{
		{Mint: mintA, TokenAccount: testTokenAcc, Owner: walletA, Decimals: 0, UIAmount: 1},
	})
	require.Len(t, assets, 1)
	asset := assets[0]

	assert.Equal(t, "Mad Lad #42", asset.Name)
	assert.Equal(t, "MAD", asset.Symbol)
	assert.Equal(t, "ipfs://QmDoc", asset.URI)
	assert.Equal(t, "A very mad lad", asset.Description)
	require.Len(t, asset.Attributes, 1)
	assert.Equal(t, "Crown", asset.Attributes[0].Value)
	assert.Equal(t, gateway.DefaultIPFSGateways[0]+"QmImg", asset.Image)

	require.NotNil(t, asset.Collection)
	assert.Equal(t, "Mad Lads", asset.Collection.Name)
	assert.Equal(t, "Lads", asset.Collection.Family)
	assert.True(t, asset.Collection.Verified)
	assert.Equal(t, collectionKey.String(), asset.Collection.Address)

	assert.Equal(t, 0.002, asset.BurnValue)
	assert.Equal(t, 0.002, asset.RentExempt)
	assert.Equal(t, 0.01, asset.AccountsRent)
	assert.Equal(t, 5.0, asset.FloorPrice)
	assert.True(t, asset.HasMarketValue)
	assert.True(t, asset.WorthMoreOnMarket)
}

func TestResolveNFTsFallsBackToMinimalRecord(t *testing.T) {
	chain := &fakeChain{metadata: map[string][]byte{}}
	rent := &fakeRent{tokenRent: 0.002, accountsRent: 0.01}
	svc := NewNFTService(chain, &fakeGateway{}, &fakeFloorSource{}, rent, &fakeScanner{}, noplog{})

	assets := svc.ResolveNFTs(context.Background(), []entity.TokenAccountRecord{
		{Mint: mintA, TokenAccount: testTokenAcc, Owner: walletA},
	})
	require.Len(t, assets, 1)

	assert.Equal(t, "NFT "+mintA[:8], assets[0].Name)
	assert.Empty(t, assets[0].URI)
	assert.Nil(t, assets[0].Collection)
	assert.Equal(t, entity.UnknownCollectionName, assets[0].CollectionName())
	assert.Equal(t, 0.002, assets[0].BurnValue, "rent applies even without metadata")
	assert.False(t, assets[0].WorthMoreOnMarket)
}

func TestResolveNFTsEmptyInput(t *testing.T) {
	svc := NewNFTService(&fakeChain{}, &fakeGateway{}, &fakeFloorSource{}, &fakeRent{}, &fakeScanner{}, noplog{})

	assets := svc.ResolveNFTs(context.Background(), nil)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestCollectNFTsSkipsFailingWallets(t *testing.T) {
	scanner := &fakeScanner{
		results: map[string]*port.ScanResult{
			walletA: {
				Address: walletA,
				NFTCandidates: []entity.TokenAccountRecord{
					{Mint: mintA, TokenAccount: testTokenAcc, Owner: walletA},
				},
			},
		},
		errs: map[string]error{walletB: errors.New("rpc timeout")},
	}
	rent := &fakeRent{tokenRent: 0.002, accountsRent: 0.01}
	svc := NewNFTService(&fakeChain{}, &fakeGateway{}, &fakeFloorSource{}, rent, scanner, noplog{})

	assets := svc.CollectNFTs(context.Background(), []string{walletA, walletB})
	require.Len(t, assets, 1)
	assert.Equal(t, mintA, assets[0].Mint)
}

func TestParseCollectionField(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantName   string
		wantFamily string
	}{
		{"object", `{"name":"Mad Lads","family":"Lads"}`, "Mad Lads", "Lads"},
		{"object without family", `{"name":"Mad Lads"}`, "Mad Lads", ""},
		{"bare string", `"Mad Lads"`, "Mad Lads", ""},
		{"empty object", `{}`, "", ""},
		{"absent", ``, "", ""},
		{"number", `42`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, family := parseCollectionField(jsoniter.RawMessage(tt.raw))
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantFamily, family)
		})
	}
}

func TestInferCollection(t *testing.T) {
	svc := &nftServiceImpl{logger: noplog{}}

	tests := []struct {
		name     string
		asset    entity.NFTAsset
		expected string
	}{
		{"hash separator", entity.NFTAsset{Name: "Mad Lads #42"}, "Mad Lads"},
		{"colon separator", entity.NFTAsset{Name: "Okay Bears: 17"}, "Okay Bears"},
		{"no separator", entity.NFTAsset{Name: "Solitary"}, ""},
		{"leading separator", entity.NFTAsset{Name: "#42"}, ""},
		{
			"resolved collection wins",
			entity.NFTAsset{Name: "Mad Lads #42", Collection: &entity.Collection{Name: "Resolved"}},
			"Resolved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := tt.asset
			svc.inferCollection(&asset)
			if tt.expected == "" {
				assert.Nil(t, asset.Collection)
				return
			}
			require.NotNil(t, asset.Collection)
			assert.Equal(t, tt.expected, asset.Collection.Name)
		})
	}
}

func TestTrimNull(t *testing.T) {
	assert.Equal(t, "Mad Lad", trimNull("Mad Lad\x00\x00\x00"))
	assert.Equal(t, "Mad Lad", trimNull("  Mad Lad \x00"))
	assert.Empty(t, trimNull("\x00\x00"))
}

func TestMinimalName(t *testing.T) {
	assert.Equal(t, "NFT EPjFWdd5", minimalName(mintA))
	assert.Equal(t, "NFT short", minimalName("short"))
}

func TestRewriteImageURI(t *testing.T) {
	assert.Equal(t, gateway.DefaultIPFSGateways[0]+"QmImg", rewriteImageURI("ipfs://QmImg"))
	assert.Equal(t, gateway.DefaultIPFSGateways[0]+"QmImg", rewriteImageURI("ipfs://ipfs/QmImg"))
	assert.Equal(t, "https://arweave.net/abc", rewriteImageURI("ar://abc"))
	assert.Equal(t, "https://example.com/x.png", rewriteImageURI("https://example.com/x.png"))
	assert.Empty(t, rewriteImageURI(""))
}
