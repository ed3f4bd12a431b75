package service

import (
	"context"
	"strings"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	tokenmetadata "github.com/gagliardetto/metaplex-go/clients/token-metadata"
	jsoniter "github.com/json-iterator/go"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	"solfolio/internal/infrastructure/gateway"
	"solfolio/internal/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// nftServiceImpl implements port.NFTService.
type nftServiceImpl struct {
	chain    port.ChainClient
	gateway  port.GatewayClient
	floors   port.FloorPriceSource
	rent     port.RentSource
	scanner  port.AccountScanner
	logger   port.Logger

	offchainTimeout time.Duration
	offchainWorkers int
}

// NewNFTService creates a new instance of nftServiceImpl.
func NewNFTService(
	chain port.ChainClient,
	gatewayClient port.GatewayClient,
	floors port.FloorPriceSource,
	rent port.RentSource,
	scanner port.AccountScanner,
	l port.Logger,
) port.NFTService {
	return &nftServiceImpl{
		chain:           chain,
		gateway:         gatewayClient,
		floors:          floors,
		rent:            rent,
		scanner:         scanner,
		logger:          l,
		offchainTimeout: 5 * time.Second,
		offchainWorkers: 5,
	}
}

// CollectNFTs implements port.NFTService. Wallets that fail to scan are
// logged and contribute nothing; the rest of the batch proceeds.
func (s *nftServiceImpl) CollectNFTs(ctx context.Context, addresses []string) []entity.NFTAsset {
	var candidates []entity.TokenAccountRecord
	for _, address := range addresses {
		result, err := s.scanner.Scan(ctx, address)
		if err != nil {
			s.logger.Warn("Skipping wallet in NFT collection", "address", address, "error", err)
			continue
		}
		candidates = append(candidates, result.NFTCandidates...)
	}
	return s.ResolveNFTs(ctx, candidates)
}

// ResolveNFTs implements port.NFTService. Resolution is layered: on-chain
// metadata in batched reads, then best-effort off-chain documents, then
// rent figures and floor prices. Any layer failing for an asset leaves
// that asset with what the earlier layers produced.
func (s *nftServiceImpl) ResolveNFTs(ctx context.Context, candidates []entity.TokenAccountRecord) []entity.NFTAsset {
	if len(candidates) == 0 {
		return []entity.NFTAsset{}
	}

	assets := s.resolveOnChain(ctx, candidates)
	s.resolveOffChain(ctx, assets)
	s.applyRent(ctx, assets)
	s.applyFloors(ctx, assets)
	return assets
}

// resolveOnChain builds the base asset list from batched metadata account
// reads. Assets whose metadata account is missing or undecodable keep a
// minimal record derived from the mint.
func (s *nftServiceImpl) resolveOnChain(ctx context.Context, candidates []entity.TokenAccountRecord) []entity.NFTAsset {
	mints := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		mints = append(mints, candidate.Mint)
	}

	metadataByMint := make(map[string][]byte)
	for _, batch := range utils.BatchStrings(utils.UniqueStrings(mints), port.MetadataBatchLimit) {
		accounts, err := s.chain.GetMetadataAccounts(ctx, batch)
		if err != nil {
			s.logger.Warn("Metadata batch read failed, assets fall back to minimal records",
				"batchSize", len(batch), "error", err)
			continue
		}
		for mint, data := range accounts {
			metadataByMint[mint] = data
		}
	}

	assets := make([]entity.NFTAsset, 0, len(candidates))
	for _, candidate := range candidates {
		asset := entity.NFTAsset{
			Mint:         candidate.Mint,
			TokenAccount: candidate.TokenAccount,
			Owner:        candidate.Owner,
			Name:         minimalName(candidate.Mint),
		}

		if data, ok := metadataByMint[candidate.Mint]; ok {
			var meta tokenmetadata.Metadata
			decoder := bin.NewBorshDecoder(data)
			if err := decoder.Decode(&meta); err != nil {
				s.logger.Debug("Failed to decode on-chain metadata",
					"mint", candidate.Mint, "error", err)
			} else {
				if name := trimNull(meta.Data.Name); name != "" {
					asset.Name = name
				}
				asset.Symbol = trimNull(meta.Data.Symbol)
				asset.URI = trimNull(meta.Data.Uri)
				if meta.Collection != nil {
					asset.Collection = &entity.Collection{
						Verified: meta.Collection.Verified,
						Address:  meta.Collection.Key.String(),
					}
				}
			}
		}

		assets = append(assets, asset)
	}
	return assets
}

// offchainDocument is the commonly seen shape of NFT off-chain metadata.
// The collection field is kept raw because real documents carry it as an
// object, a bare string, or not at all.
type offchainDocument struct {
	Name        string              `json:"name"`
	Symbol      string              `json:"symbol"`
	Image       string              `json:"image"`
	Description string              `json:"description"`
	Attributes  []entity.Attribute  `json:"attributes"`
	Collection  jsoniter.RawMessage `json:"collection"`
}

// resolveOffChain fetches each asset's off-chain document concurrently and
// folds successful responses into the assets in place. Every failure is
// best-effort: the asset keeps its on-chain fields.
func (s *nftServiceImpl) resolveOffChain(ctx context.Context, assets []entity.NFTAsset) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.offchainWorkers)

	for i := range assets {
		if assets[i].URI == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(asset *entity.NFTAsset) {
			defer wg.Done()
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, s.offchainTimeout)
			defer cancel()

			body, err := s.gateway.Fetch(fetchCtx, asset.URI)
			if err != nil {
				s.logger.Debug("Off-chain metadata fetch failed",
					"mint", asset.Mint, "uri", asset.URI, "error", err)
				return
			}

			var doc offchainDocument
			if err := json.Unmarshal(body, &doc); err != nil {
				s.logger.Debug("Off-chain metadata is not valid JSON",
					"mint", asset.Mint, "uri", asset.URI, "error", err)
				return
			}

			if doc.Name != "" {
				asset.Name = doc.Name
			}
			if doc.Symbol != "" && asset.Symbol == "" {
				asset.Symbol = doc.Symbol
			}
			asset.Image = rewriteImageURI(doc.Image)
			asset.Description = doc.Description
			asset.Attributes = doc.Attributes

			if name, family := parseCollectionField(doc.Collection); name != "" {
				if asset.Collection == nil {
					asset.Collection = &entity.Collection{}
				}
				asset.Collection.Name = name
				asset.Collection.Family = family
			}
		}(&assets[i])
	}
	wg.Wait()

	for i := range assets {
		s.inferCollection(&assets[i])
	}
}

// parseCollectionField extracts a collection name (and family, when
// present) from the raw collection field of an off-chain document.
func parseCollectionField(raw jsoniter.RawMessage) (name, family string) {
	if len(raw) == 0 {
		return "", ""
	}

	var asObject struct {
		Name   string `json:"name"`
		Family string `json:"family"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Name != "" {
		return asObject.Name, asObject.Family
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, ""
	}
	return "", ""
}

// inferCollection fills in a collection name for assets that resolved
// without one, so the summary can still bucket them. A "Name #123" pattern
// implies the collection "Name"; anything else lands in the unknown bucket.
func (s *nftServiceImpl) inferCollection(asset *entity.NFTAsset) {
	if asset.Collection != nil && asset.Collection.Name != "" {
		return
	}

	inferred := ""
	for _, sep := range []string{"#", ":"} {
		if idx := strings.Index(asset.Name, sep); idx > 0 {
			inferred = strings.TrimSpace(asset.Name[:idx])
			break
		}
	}
	if inferred == "" {
		return
	}

	if asset.Collection == nil {
		asset.Collection = &entity.Collection{}
	}
	asset.Collection.Name = inferred
}

// applyRent attaches the rent figures shared by all assets in the batch.
// BurnValue is the token account reserve only; AccountsRent adds the
// metadata and edition reserves for display.
func (s *nftServiceImpl) applyRent(ctx context.Context, assets []entity.NFTAsset) {
	if len(assets) == 0 {
		return
	}

	tokenRent, err := s.rent.TokenAccountRent(ctx)
	if err != nil {
		s.logger.Warn("Failed to resolve token account rent, burn values stay zero", "error", err)
		return
	}
	accountsRent, err := s.rent.AccountsRent(ctx)
	if err != nil {
		s.logger.Warn("Failed to resolve combined accounts rent", "error", err)
		accountsRent = tokenRent
	}

	for i := range assets {
		assets[i].RentExempt = tokenRent
		assets[i].BurnValue = tokenRent
		assets[i].AccountsRent = accountsRent
	}
}

// applyFloors resolves floor prices for the collections in the batch and
// derives the per-asset market flags.
func (s *nftServiceImpl) applyFloors(ctx context.Context, assets []entity.NFTAsset) {
	if len(assets) == 0 || s.floors == nil {
		return
	}

	names := make([]string, 0, len(assets))
	for i := range assets {
		names = append(names, assets[i].CollectionName())
	}

	floors := s.floors.FloorPrices(ctx, utils.UniqueStrings(names))
	for i := range assets {
		floor := floors[assets[i].CollectionName()]
		assets[i].FloorPrice = floor
		assets[i].HasMarketValue = floor > 0
		assets[i].WorthMoreOnMarket = floor > assets[i].BurnValue
	}
}

// trimNull strips the fixed-width null padding of on-chain metadata strings.
func trimNull(value string) string {
	return strings.TrimSpace(strings.TrimRight(value, "\x00"))
}

// minimalName is the display name for assets whose metadata never resolved.
func minimalName(mint string) string {
	if len(mint) > 8 {
		return "NFT " + mint[:8]
	}
	return "NFT " + mint
}

// rewriteImageURI maps content-addressed image references onto a public
// gateway so clients can render them directly.
func rewriteImageURI(image string) string {
	if strings.HasPrefix(image, "ipfs://") {
		path := strings.TrimPrefix(image, "ipfs://")
		path = strings.TrimPrefix(path, "ipfs/")
		return gateway.DefaultIPFSGateways[0] + path
	}
	if strings.HasPrefix(image, "ar://") {
		return "https://arweave.net/" + strings.TrimPrefix(image, "ar://")
	}
	return image
}
