package entity

// BurnItem identifies one NFT in a burn request.
type BurnItem struct {
	Mint         string `json:"mint"`
	TokenAccount string `json:"tokenAccount"`
}

// BurnRequest asks for an unsigned transaction that burns the listed NFTs
// and closes their token accounts, returning the rent to the payer.
type BurnRequest struct {
	NFTs  []BurnItem `json:"nfts"`
	Payer string     `json:"payer"`
}

// BurnTransaction is the opaque, unsigned transaction payload plus the
// blockhash context a wallet needs to sign and confirm it.
type BurnTransaction struct {
	Transaction             string  `json:"transaction"`
	Blockhash               string  `json:"blockhash"`
	LastValidBlockHeight    uint64  `json:"lastValidBlockHeight"`
	EstimatedRecoverableSol float64 `json:"estimatedRecoverableSol"`
	InstructionCount        int     `json:"instructionCount"`
	SkippedNFTs             int     `json:"skippedNFTs,omitempty"`
}
