package models

import (
	"time"

	"github.com/google/uuid"
)

// Action kinds. One write operation per kind.
const (
	ActionSetName           = "set_name"
	ActionContribute        = "contribute"
	ActionEnterReceiverPool = "enter_receiver_pool"
	ActionLeaveReceiverPool = "leave_receiver_pool"
	ActionWithdraw          = "withdraw"
)

// Action lifecycle statuses.
const (
	ActionStatusIdle      = "idle"
	ActionStatusSubmitted = "submitted"
	ActionStatusConfirmed = "confirmed"
	ActionStatusFailed    = "failed"
)

var actionTransitions = map[string][]string{
	ActionStatusIdle:      {ActionStatusSubmitted},
	ActionStatusSubmitted: {ActionStatusConfirmed, ActionStatusFailed},
	// confirmed/failed are terminal; a retry is a fresh idle -> submitted cycle
	ActionStatusConfirmed: {},
	ActionStatusFailed:    {},
}

func IsValidActionTransition(from, to string) bool {
	allowed, ok := actionTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsValidActionKind(kind string) bool {
	switch kind {
	case ActionSetName, ActionContribute, ActionEnterReceiverPool, ActionLeaveReceiverPool, ActionWithdraw:
		return true
	}
	return false
}

// PendingAction tracks one in-flight write operation. At most one exists per
// (address, kind) while the status is submitted.
type PendingAction struct {
	ID            uuid.UUID  `json:"id"`
	Address       string     `json:"address"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	TxHash        string     `json:"tx_hash,omitempty"`
	AmountWei     string     `json:"amount_wei,omitempty"`
	Name          string     `json:"name,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}
