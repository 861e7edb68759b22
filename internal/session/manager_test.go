package session

import (
	"context"
	"testing"
	"time"

	"github.com/kindness-pool/backend/internal/events"
	"github.com/kindness-pool/backend/internal/identity"
	"github.com/kindness-pool/backend/internal/models"
	"go.uber.org/zap"
)

const testAddr = "0xabc0000000000000000000000000000000000001"

func newTestManager() (*Manager, *identity.MemoryStore) {
	store := identity.NewMemoryStore()
	m := NewManager(store, events.NopPublisher{}, zap.NewNop())
	m.SetCloseDelay(10 * time.Millisecond)
	return m, store
}

func TestConnectWithoutNameIsOnboarding(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	snap := m.Connect(ctx, testAddr)
	if snap.State != models.StateOnboarding {
		t.Fatalf("state = %q, want %q", snap.State, models.StateOnboarding)
	}
	if len(snap.VisibleRegions) != 1 || snap.VisibleRegions[0] != models.RegionOnboarding {
		t.Errorf("visible regions = %v, want [%s]", snap.VisibleRegions, models.RegionOnboarding)
	}
}

func TestConnectWithStoredNameIsActive(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	_ = store.Set(ctx, testAddr, "Alice")

	snap := m.Connect(ctx, testAddr)
	if snap.State != models.StateActive {
		t.Fatalf("state = %q, want %q", snap.State, models.StateActive)
	}
	if snap.DisplayName != "Alice" {
		t.Errorf("display name = %q, want %q", snap.DisplayName, "Alice")
	}
}

func TestCurrentIsIdempotent(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	_ = store.Set(ctx, testAddr, "Alice")
	m.Connect(ctx, testAddr)

	// A reload is just another derivation from the same inputs.
	first := m.Current(ctx, testAddr)
	second := m.Current(ctx, testAddr)
	if first.State != second.State || first.DisplayName != second.DisplayName {
		t.Errorf("repeated derivation diverged: %+v vs %+v", first, second)
	}
	if first.State != models.StateActive {
		t.Errorf("state = %q, want %q", first.State, models.StateActive)
	}
}

func TestDisconnectedWithStoredNameStaysDisconnected(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	_ = store.Set(ctx, testAddr, "Alice")

	snap := m.Current(ctx, testAddr)
	if snap.State != models.StateDisconnected {
		t.Errorf("state = %q, want %q", snap.State, models.StateDisconnected)
	}
	if snap.DisplayName != "" {
		t.Errorf("display name leaked for disconnected session: %q", snap.DisplayName)
	}
}

func TestNameAppearsAfterStoreWrite(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	m.Connect(ctx, testAddr)
	if snap := m.Current(ctx, testAddr); snap.State != models.StateOnboarding {
		t.Fatalf("state = %q, want %q", snap.State, models.StateOnboarding)
	}

	_ = store.Set(ctx, testAddr, "Alice")
	if snap := m.Current(ctx, testAddr); snap.State != models.StateActive {
		t.Errorf("state after name write = %q, want %q", snap.State, models.StateActive)
	}
}

func TestOpenModalRespectsState(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	m.Connect(ctx, testAddr)

	// Onboarding: name input opens, give does not.
	if _, err := m.OpenModal(ctx, testAddr, models.ModalNameInput); err != nil {
		t.Fatalf("open name-input while onboarding: %v", err)
	}
	if _, err := m.OpenModal(ctx, testAddr, models.ModalGiveKindness); err == nil {
		t.Error("give-kindness opened while onboarding, want error")
	}

	// Active: give opens, name input does not.
	_ = store.Set(ctx, testAddr, "Alice")
	m.CloseModal(ctx, testAddr, models.ModalNameInput)
	if _, err := m.OpenModal(ctx, testAddr, models.ModalGiveKindness); err != nil {
		t.Fatalf("open give-kindness while active: %v", err)
	}
	if _, err := m.OpenModal(ctx, testAddr, models.ModalNameInput); err == nil {
		t.Error("name-input opened while active, want error")
	}
}

func TestOpenModalTwiceRendersSingleInstance(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.Connect(ctx, testAddr)
	_, _ = m.OpenModal(ctx, testAddr, models.ModalNameInput)
	snap, err := m.OpenModal(ctx, testAddr, models.ModalNameInput)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if len(snap.OpenModals) != 1 {
		t.Errorf("open modals = %v, want exactly one", snap.OpenModals)
	}
}

func TestDisconnectForceClosesModals(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.Connect(ctx, testAddr)
	_, _ = m.OpenModal(ctx, testAddr, models.ModalNameInput)

	snap := m.Disconnect(ctx, testAddr)
	if snap.State != models.StateDisconnected {
		t.Errorf("state = %q, want %q", snap.State, models.StateDisconnected)
	}
	if len(snap.OpenModals) != 0 {
		t.Errorf("open modals after disconnect = %v, want none", snap.OpenModals)
	}
}

func TestNameConfirmedAutoClosesNameInput(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	m.Connect(ctx, testAddr)
	_, _ = m.OpenModal(ctx, testAddr, models.ModalNameInput)

	_ = store.Set(ctx, testAddr, "Alice")
	snap := m.NameConfirmed(ctx, testAddr)
	if snap.State != models.StateActive {
		t.Fatalf("state after confirm = %q, want %q", snap.State, models.StateActive)
	}

	// The modal stays open for the acknowledgment window, then closes.
	if !containsModal(m.Current(ctx, testAddr).OpenModals, models.ModalNameInput) {
		t.Fatal("name-input closed before the acknowledgment window elapsed")
	}
	waitFor(t, time.Second, func() bool {
		return !containsModal(m.Current(ctx, testAddr).OpenModals, models.ModalNameInput)
	})
}

func TestDisconnectInsideCloseWindowCancelsAutoClose(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	m.Connect(ctx, testAddr)
	_, _ = m.OpenModal(ctx, testAddr, models.ModalNameInput)
	_ = store.Set(ctx, testAddr, "Alice")
	m.NameConfirmed(ctx, testAddr)

	// Disconnect wins: the epoch moves on and the scheduled close is dropped.
	m.Disconnect(ctx, testAddr)
	m.Connect(ctx, testAddr)

	time.Sleep(50 * time.Millisecond)
	snap := m.Current(ctx, testAddr)
	if snap.State != models.StateActive {
		t.Errorf("state after reconnect = %q, want %q", snap.State, models.StateActive)
	}
}

func TestEpochAdvancesOnConnectAndDisconnect(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	e0 := m.Epoch(testAddr)
	m.Connect(ctx, testAddr)
	e1 := m.Epoch(testAddr)
	m.Disconnect(ctx, testAddr)
	e2 := m.Epoch(testAddr)

	if e1 <= e0 || e2 <= e1 {
		t.Errorf("epoch did not advance: %d, %d, %d", e0, e1, e2)
	}
}

// gatedStore blocks reads until released, to model a slow identity lookup.
type gatedStore struct {
	inner   *identity.MemoryStore
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, address string) (string, error) {
	s.entered <- struct{}{}
	<-s.gate
	return s.inner.Get(ctx, address)
}

func (s *gatedStore) Set(ctx context.Context, address, name string) error {
	return s.inner.Set(ctx, address, name)
}

func TestSlowIdentityReadDoesNotBlockOtherSessions(t *testing.T) {
	store := &gatedStore{
		inner:   identity.NewMemoryStore(),
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	m := NewManager(store, events.NopPublisher{}, zap.NewNop())
	ctx := context.Background()

	go m.Connect(ctx, testAddr)
	<-store.entered // the identity read for testAddr is now in flight

	other := "0xabc0000000000000000000000000000000000002"
	done := make(chan struct{})
	go func() {
		m.Epoch(other)
		m.Connected(other)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unrelated session blocked behind a slow identity read")
	}
	close(store.gate)
}

func containsModal(modals []string, modal string) bool {
	for _, m := range modals {
		if m == modal {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
