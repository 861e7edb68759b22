// Package chain abstracts the kindness-pool and user-registry contracts.
// Two implementations exist: a simulated in-memory backend for development
// and an ethclient-backed one for production. The implementation is chosen
// at composition time in cmd/*.
package chain

import (
	"context"
	"math/big"

	"github.com/kindness-pool/backend/internal/models"
)

// Reader covers the read-only contract surface. Reads degrade gracefully:
// Constants falls back to the compiled-in defaults when the RPC is down.
type Reader interface {
	PoolStats(ctx context.Context) (models.PoolStats, error)
	UserDailyStats(ctx context.Context, address string) (models.UserDailyStats, error)
	UserStats(ctx context.Context, address string) (models.UserStats, error)
	IsInReceiverPool(ctx context.Context, address string) (bool, error)
	Constants(ctx context.Context) models.Constants
}

// Writer submits contract writes on behalf of the given address and awaits
// their confirmation. Every write returns a transaction handle.
type Writer interface {
	SetName(ctx context.Context, address, name string) (string, error)
	GiveKindness(ctx context.Context, address string, amountWei *big.Int) (string, error)
	EnterReceiverPool(ctx context.Context, address string) (string, error)
	LeaveReceiverPool(ctx context.Context, address string) (string, error)
	WithdrawContribution(ctx context.Context, address string, amountWei *big.Int) (string, error)

	// WaitConfirmed blocks until the transaction reaches a terminal state.
	// A nil return means confirmed; an error means reverted or dropped.
	WaitConfirmed(ctx context.Context, txHash string) error
}

// Backend is the full contract capability.
type Backend interface {
	Reader
	Writer
}
