package solana

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Textual base58 length band for a 32-byte public key.
const (
	minAddressLength = 32
	maxAddressLength = 44
)

// ValidateAddress checks that input is a well-formed, on-curve wallet
// address. It is a pure check with no I/O.
func ValidateAddress(input string) error {
	address := strings.TrimSpace(input)
	if address == "" {
		return fmt.Errorf("address is empty")
	}
	if l := len(address); l < minAddressLength || l > maxAddressLength {
		return fmt.Errorf("address %q has invalid length %d, expected %d-%d characters",
			address, l, minAddressLength, maxAddressLength)
	}

	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return fmt.Errorf("address %q is not valid base58: %w", address, err)
	}
	if !pk.IsOnCurve() {
		return fmt.Errorf("address %q is not an on-curve public key", address)
	}
	return nil
}

// SanitizeAddresses trims, validates and de-duplicates a batch of raw
// address strings, preserving first-occurrence order. Invalid entries are
// returned separately with their rejection reasons keyed by the raw input.
func SanitizeAddresses(inputs []string) (valid []string, rejected map[string]string) {
	rejected = make(map[string]string)
	seen := make(map[string]struct{}, len(inputs))

	for _, raw := range inputs {
		address := strings.TrimSpace(raw)
		if err := ValidateAddress(address); err != nil {
			rejected[raw] = err.Error()
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		valid = append(valid, address)
	}
	return valid, rejected
}
