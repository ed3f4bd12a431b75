package port

import "solfolio/internal/domain/entity"

// WalletProvider supplies the tracked wallet set.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
	GetWalletByAddress(address string) (*entity.Wallet, error)
}
