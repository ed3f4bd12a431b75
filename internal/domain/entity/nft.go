package entity

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// UnknownCollectionName is the bucket for NFTs whose collection could not
// be resolved from on-chain or off-chain metadata.
const UnknownCollectionName = "Unknown Collection"

// Attribute is a single trait of an NFT from its off-chain metadata.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// UnmarshalJSON coerces attribute values to strings. Off-chain documents
// put numbers, booleans and nulls in the value field interchangeably.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	var aux struct {
		TraitType string      `json:"trait_type"`
		Value     interface{} `json:"value"`
	}
	if err := jsoniter.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to unmarshal attribute: %w", err)
	}
	a.TraitType = aux.TraitType
	switch v := aux.Value.(type) {
	case string:
		a.Value = v
	case float64:
		a.Value = fmt.Sprintf("%g", v)
	case bool:
		a.Value = fmt.Sprintf("%t", v)
	case nil:
		a.Value = ""
	default:
		a.Value = fmt.Sprintf("%v", v)
	}
	return nil
}

// Collection describes the collection an NFT belongs to.
type Collection struct {
	Name     string `json:"name"`
	Family   string `json:"family,omitempty"`
	Verified bool   `json:"verified"`
	Address  string `json:"address,omitempty"`
}

// NFTAsset is one uncompressed NFT held through a token account.
//
// RentExempt, AccountsRent, BurnValue and FloorPrice are SOL amounts.
// BurnValue is what a burn-and-close actually returns to the payer: the
// token account's own rent reserve. AccountsRent additionally counts the
// metadata and edition accounts for display, but those accounts are not
// closed by the burn flow, so BurnValue never includes them.
type NFTAsset struct {
	Mint         string `json:"mint"`
	TokenAccount string `json:"tokenAccount"`
	Owner        string `json:"owner"`

	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`

	Image       string      `json:"image,omitempty"`
	Description string      `json:"description,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Collection  *Collection `json:"collection,omitempty"`

	FloorPrice float64 `json:"floorPrice,omitempty"`

	RentExempt   float64 `json:"rentExempt"`
	AccountsRent float64 `json:"accountsRent"`
	BurnValue    float64 `json:"burnValue"`

	HasMarketValue    bool `json:"hasMarketValue"`
	WorthMoreOnMarket bool `json:"worthMoreOnMarket"`
}

// CollectionName returns the resolved collection name or the unknown bucket.
func (n NFTAsset) CollectionName() string {
	if n.Collection != nil && n.Collection.Name != "" {
		return n.Collection.Name
	}
	return UnknownCollectionName
}

// MarketValueSol is the per-asset valuation used by the summary: the floor
// price when one is known, otherwise what burning would recover.
func (n NFTAsset) MarketValueSol() float64 {
	if n.FloorPrice > 0 {
		return n.FloorPrice
	}
	return n.BurnValue
}
