package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	solanainfra "solfolio/internal/infrastructure/solana"
)

// WalletFileLoader implements port.WalletProvider by loading wallet
// addresses from a plain text file, one per line. Blank lines and lines
// starting with '#' are ignored; a line may carry an optional nickname
// after the address, separated by whitespace.
type WalletFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, loggerInfo, loggerWarn func(msg string, args ...any)) port.WalletProvider {
	return &WalletFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// GetWallets reads wallet addresses from the configured file path. Rows
// failing address validation are skipped with a warning, never fatal.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	seen := make(map[string]struct{})
	var wallets []entity.Wallet
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		address := fields[0]
		nickname := ""
		if len(fields) > 1 {
			nickname = strings.Join(fields[1:], " ")
		}

		if err := solanainfra.ValidateAddress(address); err != nil {
			if l.loggerWarn != nil {
				l.loggerWarn("Skipping invalid wallet address",
					"file", l.filePath, "line_number", lineNum, "address", address, "reason", err.Error())
			}
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}

		wallets = append(wallets, entity.Wallet{
			Address:  address,
			Nickname: nickname,
			AddedAt:  time.Now().UTC(),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	}
	return wallets, nil
}

// GetWalletByAddress searches for a wallet by its address in the file.
func (l *WalletFileLoader) GetWalletByAddress(address string) (*entity.Wallet, error) {
	wallets, err := l.GetWallets()
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets when searching by address '%s': %w", address, err)
	}

	for _, wallet := range wallets {
		if wallet.Address == address {
			return &wallet, nil
		}
	}
	return nil, fmt.Errorf("wallet with address %s not found in %s", address, l.filePath)
}
