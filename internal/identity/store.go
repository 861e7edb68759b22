// Package identity persists the display name chosen for each wallet address.
package identity

import "context"

// Store is the per-address name store. Get never fails hard: storage trouble
// reads as "no identity". Set validates and persists the trimmed name.
type Store interface {
	// Get returns the stored display name for the address, or "" when no
	// identity exists or the underlying storage is unavailable.
	Get(ctx context.Context, address string) (string, error)

	// Set persists the trimmed name keyed by address. It rejects names that
	// are empty after trimming or longer than the on-chain limit.
	Set(ctx context.Context, address, name string) error
}
