package models

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		display   string
		expected  string
	}{
		{"disconnected without name", false, "", StateDisconnected},
		{"disconnected with stored name", false, "Alice", StateDisconnected},
		{"connected without name", true, "", StateOnboarding},
		{"connected with whitespace name", true, "   ", StateOnboarding},
		{"connected with name", true, "Alice", StateActive},
		{"connected with padded name", true, "  Alice  ", StateActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.connected, tt.display)
			if result != tt.expected {
				t.Errorf("Classify(%v, %q) = %q, want %q", tt.connected, tt.display, result, tt.expected)
			}
		})
	}
}

func TestRegionsFor(t *testing.T) {
	tests := []struct {
		state    string
		expected []string
	}{
		{StateDisconnected, []string{RegionWalletConnection}},
		{StateOnboarding, []string{RegionOnboarding}},
		{StateActive, []string{RegionMainActions, RegionWelcomeMessage}},
		{"nonexistent", []string{RegionWalletConnection}},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			regions := RegionsFor(tt.state)
			if len(regions) != len(tt.expected) {
				t.Fatalf("RegionsFor(%q) = %v, want %v", tt.state, regions, tt.expected)
			}
			for i := range regions {
				if regions[i] != tt.expected[i] {
					t.Errorf("RegionsFor(%q)[%d] = %q, want %q", tt.state, i, regions[i], tt.expected[i])
				}
			}
		})
	}
}

func TestRegionsDisjointAcrossStates(t *testing.T) {
	states := []string{StateDisconnected, StateOnboarding, StateActive}
	seen := make(map[string]string)
	for _, state := range states {
		for _, region := range RegionsFor(state) {
			if prev, ok := seen[region]; ok {
				t.Errorf("region %q visible in both %q and %q", region, prev, state)
			}
			seen[region] = state
		}
	}
}

func TestModalAllowed(t *testing.T) {
	tests := []struct {
		state    string
		modal    string
		expected bool
	}{
		{StateOnboarding, ModalNameInput, true},
		{StateActive, ModalNameInput, false},
		{StateDisconnected, ModalNameInput, false},

		{StateActive, ModalGiveKindness, true},
		{StateActive, ModalReceiveKindness, true},
		{StateOnboarding, ModalGiveKindness, false},
		{StateOnboarding, ModalReceiveKindness, false},
		{StateDisconnected, ModalGiveKindness, false},

		{StateActive, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.state+"/"+tt.modal, func(t *testing.T) {
			result := ModalAllowed(tt.state, tt.modal)
			if result != tt.expected {
				t.Errorf("ModalAllowed(%q, %q) = %v, want %v", tt.state, tt.modal, result, tt.expected)
			}
		})
	}
}
