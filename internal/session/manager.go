// Package session tracks the per-address onboarding state machine and the
// modal choreography on top of it. Classification is always re-derived from
// the live wallet-connection flag and the identity store, never cached
// across a change to either input.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/kindness-pool/backend/internal/events"
	"github.com/kindness-pool/backend/internal/identity"
	"github.com/kindness-pool/backend/internal/models"
	"go.uber.org/zap"
)

// NameConfirmCloseDelay is how long the name-input modal stays open after a
// confirmed name set, so the client can show its success acknowledgment.
const NameConfirmCloseDelay = 1500 * time.Millisecond

// Snapshot is the externally observable session state. The visible regions
// are a 1:1 mapping from the classification.
type Snapshot struct {
	Address        string   `json:"address"`
	State          string   `json:"state"`
	DisplayName    string   `json:"display_name,omitempty"`
	VisibleRegions []string `json:"visible_regions"`
	OpenModals     []string `json:"open_modals"`
	Epoch          uint64   `json:"-"`
}

type session struct {
	connected bool
	modals    []string
	epoch     uint64
}

// view is a copy of one session's fields, safe to use after the lock is
// released.
type view struct {
	connected bool
	modals    []string
	epoch     uint64
}

type Manager struct {
	store      identity.Store
	publisher  events.Publisher
	log        *zap.Logger
	closeDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(store identity.Store, publisher events.Publisher, log *zap.Logger) *Manager {
	return &Manager{
		store:      store,
		publisher:  publisher,
		log:        log,
		closeDelay: NameConfirmCloseDelay,
		sessions:   make(map[string]*session),
	}
}

// SetCloseDelay overrides the name-input auto-close delay. Test hook.
func (m *Manager) SetCloseDelay(d time.Duration) { m.closeDelay = d }

func (m *Manager) get(address string) *session {
	s, ok := m.sessions[models.NormalizeAddress(address)]
	if !ok {
		s = &session{}
		m.sessions[models.NormalizeAddress(address)] = s
	}
	return s
}

func (s *session) view() view {
	modals := make([]string, len(s.modals))
	copy(modals, s.modals)
	return view{connected: s.connected, modals: modals, epoch: s.epoch}
}

func (m *Manager) viewOf(address string) view {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(address).view()
}

// snapshot derives the classification from a session view. The store read
// happens here, outside the manager lock, so one slow identity lookup never
// stalls unrelated sessions.
func (m *Manager) snapshot(ctx context.Context, address string, v view) Snapshot {
	name := ""
	if v.connected {
		// Store failures read as "no identity": a connected wallet whose
		// lookup fails classifies as onboarding, not as an error.
		name, _ = m.store.Get(ctx, address)
	}
	state := models.Classify(v.connected, name)

	return Snapshot{
		Address:        models.NormalizeAddress(address),
		State:          state,
		DisplayName:    name,
		VisibleRegions: models.RegionsFor(state),
		OpenModals:     v.modals,
		Epoch:          v.epoch,
	}
}

// Connect marks the wallet as connected and re-derives the classification.
func (m *Manager) Connect(ctx context.Context, address string) Snapshot {
	m.mu.Lock()
	s := m.get(address)
	s.connected = true
	s.epoch++
	v := s.view()
	m.mu.Unlock()

	snap := m.snapshot(ctx, address, v)
	m.publishState(ctx, snap)
	return snap
}

// Disconnect force-closes every open modal and reclassifies immediately.
// Any completion that arrives for the old epoch is stale and gets dropped
// by the gateway.
func (m *Manager) Disconnect(ctx context.Context, address string) Snapshot {
	m.mu.Lock()
	s := m.get(address)
	closed := s.modals
	s.connected = false
	s.modals = nil
	s.epoch++
	v := s.view()
	m.mu.Unlock()

	snap := m.snapshot(ctx, address, v)
	for _, modal := range closed {
		m.publishModal(ctx, events.EventModalClosed, address, modal)
	}
	m.publishState(ctx, snap)
	return snap
}

// Current re-derives the session from the live inputs.
func (m *Manager) Current(ctx context.Context, address string) Snapshot {
	return m.snapshot(ctx, address, m.viewOf(address))
}

// Epoch returns the current session epoch for staleness checks.
func (m *Manager) Epoch(address string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(address).epoch
}

// Connected reports the wallet-connection flag.
func (m *Manager) Connected(address string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(address).connected
}

// OpenModal opens a modal if the current classification allows it. Opening
// an already-open modal is a no-op, so rapid repeated triggers render a
// single instance.
func (m *Manager) OpenModal(ctx context.Context, address, modal string) (Snapshot, error) {
	snap := m.snapshot(ctx, address, m.viewOf(address))
	if !models.ModalAllowed(snap.State, modal) {
		return snap, &ModalError{Modal: modal, State: snap.State}
	}

	m.mu.Lock()
	s := m.get(address)
	opened := false
	if !contains(s.modals, modal) {
		s.modals = append(s.modals, modal)
		opened = true
	}
	snap.OpenModals = s.view().modals
	m.mu.Unlock()

	if opened {
		m.publishModal(ctx, events.EventModalOpened, address, modal)
	}
	return snap, nil
}

// CloseModal closes a modal by explicit user action. It never touches an
// in-flight action submitted through that modal; the action keeps resolving
// in the background and its terminal state lands in the action history.
func (m *Manager) CloseModal(ctx context.Context, address, modal string) Snapshot {
	m.mu.Lock()
	s := m.get(address)
	closed := contains(s.modals, modal)
	s.modals = remove(s.modals, modal)
	v := s.view()
	m.mu.Unlock()

	snap := m.snapshot(ctx, address, v)
	if closed {
		m.publishModal(ctx, events.EventModalClosed, address, modal)
	}
	return snap
}

// NameConfirmed is invoked by the gateway once a set-name write confirms.
// The session reclassifies to active and the name-input modal auto-closes
// after a short delay. A disconnect inside the window wins: the epoch guard
// drops the scheduled close.
func (m *Manager) NameConfirmed(ctx context.Context, address string) Snapshot {
	v := m.viewOf(address)
	snap := m.snapshot(ctx, address, v)

	m.publishState(ctx, snap)

	time.AfterFunc(m.closeDelay, func() {
		m.mu.Lock()
		s := m.get(address)
		if s.epoch != v.epoch || !contains(s.modals, models.ModalNameInput) {
			m.mu.Unlock()
			return
		}
		s.modals = remove(s.modals, models.ModalNameInput)
		m.mu.Unlock()
		m.publishModal(context.Background(), events.EventModalClosed, address, models.ModalNameInput)
	})

	return snap
}

func (m *Manager) publishState(ctx context.Context, snap Snapshot) {
	err := m.publisher.Publish(ctx, events.StreamSession, events.Event{
		Type: events.EventSessionStateChanged,
		Payload: map[string]any{
			"address":         snap.Address,
			"state":           snap.State,
			"visible_regions": snap.VisibleRegions,
		},
	})
	if err != nil {
		m.log.Warn("failed to publish session event", zap.Error(err))
	}
}

func (m *Manager) publishModal(ctx context.Context, eventType, address, modal string) {
	err := m.publisher.Publish(ctx, events.StreamSession, events.Event{
		Type: eventType,
		Payload: map[string]any{
			"address": models.NormalizeAddress(address),
			"modal":   modal,
		},
	})
	if err != nil {
		m.log.Warn("failed to publish modal event", zap.Error(err))
	}
}

// ModalError reports a modal open attempt outside its allowed state.
type ModalError struct {
	Modal string
	State string
}

func (e *ModalError) Error() string {
	return "modal " + e.Modal + " is not available in state " + e.State
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
