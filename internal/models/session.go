package models

import "strings"

// Session classification. Exactly one holds at any instant.
const (
	StateDisconnected = "disconnected"
	StateOnboarding   = "onboarding" // connected, no display name yet
	StateActive       = "active"     // connected, display name set
)

// Classify derives the session state from the wallet connection flag and the
// stored display name. Pure and total: whitespace-only names count as unset,
// and a stored name without a connection still classifies as disconnected.
func Classify(connected bool, displayName string) string {
	if !connected {
		return StateDisconnected
	}
	if strings.TrimSpace(displayName) == "" {
		return StateOnboarding
	}
	return StateActive
}

// UI regions. The client asserts on these test ids; which ones are visible is
// a 1:1 mapping from the session state.
const (
	RegionWalletConnection = "wallet-connection-flow"
	RegionOnboarding       = "onboarding-flow"
	RegionMainActions      = "main-actions"
	RegionWelcomeMessage   = "welcome-message"
)

func RegionsFor(state string) []string {
	switch state {
	case StateOnboarding:
		return []string{RegionOnboarding}
	case StateActive:
		return []string{RegionMainActions, RegionWelcomeMessage}
	default:
		return []string{RegionWalletConnection}
	}
}

// Modals.
const (
	ModalNameInput       = "name-input"
	ModalGiveKindness    = "give-kindness"
	ModalReceiveKindness = "receive-kindness"
)

// ModalAllowed reports whether a modal may be opened in the given state.
// The name-input modal is the onboarding blocker; give/receive are only
// reachable from the main actions screen.
func ModalAllowed(state, modal string) bool {
	switch modal {
	case ModalNameInput:
		return state == StateOnboarding
	case ModalGiveKindness, ModalReceiveKindness:
		return state == StateActive
	default:
		return false
	}
}
