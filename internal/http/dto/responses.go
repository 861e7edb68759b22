package dto

import (
	"github.com/kindness-pool/backend/internal/models"
	"github.com/kindness-pool/backend/internal/session"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type AuthResponse struct {
	Token   string           `json:"token"`
	Session session.Snapshot `json:"session"`
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

type PoolStatsResponse struct {
	DailyPoolEth       string `json:"daily_pool_eth"`
	ReceiverCount      int64  `json:"receiver_count"`
	UnclaimedEth       string `json:"unclaimed_eth"`
	WithinDistribution bool   `json:"within_distribution_window"`
	DistributedToday   bool   `json:"distributed_today"`
}

func NewPoolStatsResponse(s models.PoolStats) PoolStatsResponse {
	return PoolStatsResponse{
		DailyPoolEth:       models.FormatEther(s.DailyPoolWei),
		ReceiverCount:      s.ReceiverCount,
		UnclaimedEth:       models.FormatEther(s.UnclaimedFundsWei),
		WithinDistribution: s.WithinDistribution,
		DistributedToday:   s.DistributedToday,
	}
}

type ConstantsResponse struct {
	MinKindnessEth      string `json:"min_kindness_eth"`
	MaxKindnessEth      string `json:"max_kindness_eth"`
	MaxDailyEth         string `json:"max_daily_eth"`
	MaxReceivers        int64  `json:"max_receivers"`
	ActionCooldownSec   int64  `json:"action_cooldown_sec"`
	ReceiverCooldownSec int64  `json:"receiver_cooldown_sec"`
}

func NewConstantsResponse(c models.Constants) ConstantsResponse {
	return ConstantsResponse{
		MinKindnessEth:      models.FormatEther(c.MinKindnessWei),
		MaxKindnessEth:      models.FormatEther(c.MaxKindnessWei),
		MaxDailyEth:         models.FormatEther(c.MaxDailyWei),
		MaxReceivers:        c.MaxReceivers,
		ActionCooldownSec:   c.ActionCooldownSec,
		ReceiverCooldownSec: c.ReceiverCooldownSec,
	}
}

type DailyStatsResponse struct {
	ContributionEth      string `json:"contribution_eth"`
	RemainingDailyEth    string `json:"remaining_daily_eth"`
	ReceiverEntries      int64  `json:"receiver_entries"`
	ReceiverExits        int64  `json:"receiver_exits"`
	CanContribute        bool   `json:"can_contribute"`
	CanEnterReceiverPool bool   `json:"can_enter_receiver_pool"`
	CanLeaveReceiverPool bool   `json:"can_leave_receiver_pool"`
}

func NewDailyStatsResponse(s models.UserDailyStats) DailyStatsResponse {
	return DailyStatsResponse{
		ContributionEth:      models.FormatEther(s.ContributionWei),
		RemainingDailyEth:    models.FormatEther(s.RemainingDailyWei),
		ReceiverEntries:      s.ReceiverEntries,
		ReceiverExits:        s.ReceiverExits,
		CanContribute:        s.CanContribute,
		CanEnterReceiverPool: s.CanEnterReceiverPool,
		CanLeaveReceiverPool: s.CanLeaveReceiverPool,
	}
}

type UserStatsResponse struct {
	TotalGivenEth    string `json:"total_given_eth"`
	TotalReceivedEth string `json:"total_received_eth"`
	TimesReceived    int64  `json:"times_received"`
	Name             string `json:"name"`
	IsInReceiverPool bool   `json:"is_in_receiver_pool"`
}

func NewUserStatsResponse(s models.UserStats) UserStatsResponse {
	return UserStatsResponse{
		TotalGivenEth:    models.FormatEther(s.TotalGivenWei),
		TotalReceivedEth: models.FormatEther(s.TotalReceivedWei),
		TimesReceived:    s.TimesReceived,
		Name:             s.Name,
		IsInReceiverPool: s.IsInReceiverPool,
	}
}
