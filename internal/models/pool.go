package models

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// PoolStats is the public snapshot of the daily pool.
type PoolStats struct {
	DailyPoolWei       *big.Int `json:"daily_pool_wei"`
	ReceiverCount      int64    `json:"receiver_count"`
	UnclaimedFundsWei  *big.Int `json:"unclaimed_funds_wei"`
	WithinDistribution bool     `json:"within_distribution_window"`
	DistributedToday   bool     `json:"distributed_today"`
}

// UserDailyStats carries the per-user daily accounting the contract exposes.
// The eligibility flags gate the receiver-pool actions client-side and in the
// gateway preconditions.
type UserDailyStats struct {
	ContributionWei      *big.Int `json:"contribution_wei"`
	RemainingDailyWei    *big.Int `json:"remaining_daily_wei"`
	ReceiverEntries      int64    `json:"receiver_entries"`
	ReceiverExits        int64    `json:"receiver_exits"`
	CanContribute        bool     `json:"can_contribute"`
	CanEnterReceiverPool bool     `json:"can_enter_receiver_pool"`
	CanLeaveReceiverPool bool     `json:"can_leave_receiver_pool"`
}

// UserStats mirrors the user registry's lifetime record.
type UserStats struct {
	TotalGivenWei    *big.Int `json:"total_given_wei"`
	TotalReceivedWei *big.Int `json:"total_received_wei"`
	TimesReceived    int64    `json:"times_received"`
	Name             string   `json:"name"`
	IsInReceiverPool bool     `json:"is_in_receiver_pool"`
}

// Constants are the contract-level limits. Reads fall back to these defaults
// when the chain is unreachable.
type Constants struct {
	MinKindnessWei      *big.Int `json:"min_kindness_wei"`
	MaxKindnessWei      *big.Int `json:"max_kindness_wei"`
	MaxDailyWei         *big.Int `json:"max_daily_wei"`
	MaxReceivers        int64    `json:"max_receivers"`
	ActionCooldownSec   int64    `json:"action_cooldown_sec"`
	ReceiverCooldownSec int64    `json:"receiver_cooldown_sec"`
	WithdrawCooldownSec int64    `json:"withdraw_cooldown_sec"`
	MinWithdrawWei      *big.Int `json:"min_withdraw_wei"`
	MaxDailyWithdrawals int64    `json:"max_daily_withdrawals"`
}

// DefaultConstants match the deployed contract's values.
func DefaultConstants() Constants {
	return Constants{
		MinKindnessWei:      EtherToWei(big.NewFloat(0.001)),
		MaxKindnessWei:      EtherToWei(big.NewFloat(1)),
		MaxDailyWei:         EtherToWei(big.NewFloat(5)),
		MaxReceivers:        100,
		ActionCooldownSec:   3600,
		ReceiverCooldownSec: 1800,
		WithdrawCooldownSec: 7200,
		MinWithdrawWei:      EtherToWei(big.NewFloat(0.001)),
		MaxDailyWithdrawals: 3,
	}
}

// EtherToWei converts a decimal ether amount to wei.
func EtherToWei(eth *big.Float) *big.Int {
	wei, _ := new(big.Float).Mul(eth, big.NewFloat(params.Ether)).Int(nil)
	return wei
}

// ParseEther parses a decimal ether string (e.g. "0.01") into wei.
func ParseEther(s string) (*big.Int, error) {
	f, ok := new(big.Float).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", s)
	}
	if f.Sign() < 0 {
		return nil, fmt.Errorf("ether amount must not be negative")
	}
	return EtherToWei(f), nil
}

// FormatEther renders wei as a decimal ether string.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return f.Text('f', -1)
}
