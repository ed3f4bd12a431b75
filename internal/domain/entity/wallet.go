package entity

import "time"

// Wallet represents a tracked wallet address. The address is validated once
// at import time and treated as read-only afterwards.
type Wallet struct {
	Address  string    `json:"address" yaml:"address"`
	Nickname string    `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	AddedAt  time.Time `json:"addedAt,omitempty" yaml:"-"`
}
