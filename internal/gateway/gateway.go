// Package gateway is the single boundary for contract writes. It checks
// preconditions locally, enforces one in-flight action per (address, kind),
// and converts every remote failure into a typed result. Nothing throws
// past this boundary into the session machine.
package gateway

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kindness-pool/backend/internal/chain"
	"github.com/kindness-pool/backend/internal/events"
	"github.com/kindness-pool/backend/internal/identity"
	"github.com/kindness-pool/backend/internal/models"
	"github.com/kindness-pool/backend/internal/session"
	"go.uber.org/zap"
)

// History records terminal actions. The Postgres implementation lives in
// internal/repositories.
type History interface {
	Record(ctx context.Context, action models.PendingAction) error
}

// NopHistory drops records. Used in tests.
type NopHistory struct{}

func (NopHistory) Record(context.Context, models.PendingAction) error { return nil }

type Gateway struct {
	reader    chain.Reader
	writer    chain.Writer
	store     identity.Store
	sessions  *session.Manager
	history   History
	publisher events.Publisher
	log       *zap.Logger

	mu       sync.Mutex
	inflight map[string]*models.PendingAction
	resolved map[string]*models.PendingAction
}

func NewGateway(
	reader chain.Reader,
	writer chain.Writer,
	store identity.Store,
	sessions *session.Manager,
	history History,
	publisher events.Publisher,
	log *zap.Logger,
) *Gateway {
	return &Gateway{
		reader:    reader,
		writer:    writer,
		store:     store,
		sessions:  sessions,
		history:   history,
		publisher: publisher,
		log:       log,
		inflight:  make(map[string]*models.PendingAction),
		resolved:  make(map[string]*models.PendingAction),
	}
}

func key(address, kind string) string {
	return models.NormalizeAddress(address) + "|" + kind
}

// SubmitSetName registers the display name on chain. Allowed while
// onboarding (first name) and while active (rename).
func (g *Gateway) SubmitSetName(ctx context.Context, address, name string) (models.PendingAction, error) {
	if !g.sessions.Connected(address) {
		return models.PendingAction{}, validationErrorf("wallet is not connected")
	}
	trimmed, err := models.NormalizeName(name)
	if err != nil {
		return models.PendingAction{}, &ValidationError{Reason: err.Error()}
	}

	action, epoch, err := g.begin(ctx, address, models.ActionSetName)
	if err != nil {
		return action, err
	}
	g.setName(action.ID, trimmed)

	go g.run(action, epoch, func(ctx context.Context) (string, error) {
		return g.writer.SetName(ctx, address, trimmed)
	})
	return g.lookup(address, models.ActionSetName), nil
}

// SubmitContribution sends ETH into the daily pool.
func (g *Gateway) SubmitContribution(ctx context.Context, address, amountEth string) (models.PendingAction, error) {
	if err := g.requireActive(ctx, address); err != nil {
		return models.PendingAction{}, err
	}
	amountWei, err := models.ParseEther(amountEth)
	if err != nil {
		return models.PendingAction{}, &ValidationError{Reason: err.Error()}
	}

	c := g.reader.Constants(ctx)
	if amountWei.Cmp(c.MinKindnessWei) < 0 || amountWei.Cmp(c.MaxKindnessWei) > 0 {
		return models.PendingAction{}, validationErrorf("amount must be between %s and %s ETH",
			models.FormatEther(c.MinKindnessWei), models.FormatEther(c.MaxKindnessWei))
	}

	// Allowance check is best-effort: when the read is unavailable the
	// contract still enforces the limit at execution time.
	if daily, err := g.reader.UserDailyStats(ctx, address); err == nil {
		if !daily.CanContribute {
			return models.PendingAction{}, validationErrorf("daily contribution limit reached")
		}
		if amountWei.Cmp(daily.RemainingDailyWei) > 0 {
			return models.PendingAction{}, validationErrorf("amount exceeds remaining daily allowance of %s ETH",
				models.FormatEther(daily.RemainingDailyWei))
		}
	} else {
		g.log.Warn("daily stats unavailable, skipping allowance precondition", zap.Error(err))
	}

	action, epoch, err := g.begin(ctx, address, models.ActionContribute)
	if err != nil {
		return action, err
	}
	g.setAmount(action.ID, amountWei)

	go g.run(action, epoch, func(ctx context.Context) (string, error) {
		return g.writer.GiveKindness(ctx, address, amountWei)
	})
	return g.lookup(address, models.ActionContribute), nil
}

// SubmitEnterReceiverPool opts the address into today's receiver pool.
func (g *Gateway) SubmitEnterReceiverPool(ctx context.Context, address string) (models.PendingAction, error) {
	if err := g.requireActive(ctx, address); err != nil {
		return models.PendingAction{}, err
	}
	if daily, err := g.reader.UserDailyStats(ctx, address); err == nil && !daily.CanEnterReceiverPool {
		return models.PendingAction{}, validationErrorf("not eligible to enter the receiver pool today")
	}

	action, epoch, err := g.begin(ctx, address, models.ActionEnterReceiverPool)
	if err != nil {
		return action, err
	}
	go g.run(action, epoch, func(ctx context.Context) (string, error) {
		return g.writer.EnterReceiverPool(ctx, address)
	})
	return g.lookup(address, models.ActionEnterReceiverPool), nil
}

// SubmitLeaveReceiverPool opts the address out of the receiver pool.
func (g *Gateway) SubmitLeaveReceiverPool(ctx context.Context, address string) (models.PendingAction, error) {
	if err := g.requireActive(ctx, address); err != nil {
		return models.PendingAction{}, err
	}
	if daily, err := g.reader.UserDailyStats(ctx, address); err == nil && !daily.CanLeaveReceiverPool {
		return models.PendingAction{}, validationErrorf("not eligible to leave the receiver pool right now")
	}

	action, epoch, err := g.begin(ctx, address, models.ActionLeaveReceiverPool)
	if err != nil {
		return action, err
	}
	go g.run(action, epoch, func(ctx context.Context) (string, error) {
		return g.writer.LeaveReceiverPool(ctx, address)
	})
	return g.lookup(address, models.ActionLeaveReceiverPool), nil
}

// SubmitWithdraw pulls back part of today's contribution.
func (g *Gateway) SubmitWithdraw(ctx context.Context, address, amountEth string) (models.PendingAction, error) {
	if err := g.requireActive(ctx, address); err != nil {
		return models.PendingAction{}, err
	}
	amountWei, err := models.ParseEther(amountEth)
	if err != nil {
		return models.PendingAction{}, &ValidationError{Reason: err.Error()}
	}
	c := g.reader.Constants(ctx)
	if amountWei.Cmp(c.MinWithdrawWei) < 0 {
		return models.PendingAction{}, validationErrorf("minimum withdrawal is %s ETH",
			models.FormatEther(c.MinWithdrawWei))
	}

	action, epoch, err := g.begin(ctx, address, models.ActionWithdraw)
	if err != nil {
		return action, err
	}
	g.setAmount(action.ID, amountWei)

	go g.run(action, epoch, func(ctx context.Context) (string, error) {
		return g.writer.WithdrawContribution(ctx, address, amountWei)
	})
	return g.lookup(address, models.ActionWithdraw), nil
}

// Pending returns the live and recently resolved actions for the address.
func (g *Gateway) Pending(address string) []models.PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []models.PendingAction
	prefix := models.NormalizeAddress(address) + "|"
	for k, a := range g.inflight {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, *a)
		}
	}
	for k, a := range g.resolved {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, *a)
		}
	}
	return out
}

// SweepResolved drops terminal actions older than the retention window.
// The worker calls this on a ticker.
func (g *Gateway) SweepResolved(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for k, a := range g.resolved {
		if a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			delete(g.resolved, k)
			n++
		}
	}
	return n
}

func (g *Gateway) requireActive(ctx context.Context, address string) error {
	snap := g.sessions.Current(ctx, address)
	if snap.State != models.StateActive {
		return validationErrorf("action requires an active session, current state is %s", snap.State)
	}
	return nil
}

// begin registers a new submitted action, or reports the one already in
// flight. The registration is synchronous, so rapid repeated triggers of
// the same action collapse to exactly one submission. The session epoch is
// captured here, before the caller's goroutine starts, so a disconnect that
// lands between submission and resolution always reads as stale.
func (g *Gateway) begin(ctx context.Context, address, kind string) (models.PendingAction, uint64, error) {
	g.mu.Lock()

	k := key(address, kind)
	if a, ok := g.inflight[k]; ok && a.Status == models.ActionStatusSubmitted {
		existing := *a
		g.mu.Unlock()
		return existing, 0, ErrActionInFlight
	}

	epoch := g.sessions.Epoch(address)
	action := &models.PendingAction{
		ID:          uuid.New(),
		Address:     models.NormalizeAddress(address),
		Kind:        kind,
		Status:      models.ActionStatusSubmitted,
		SubmittedAt: time.Now(),
	}
	g.inflight[k] = action
	registered := *action
	g.mu.Unlock()

	err := g.publisher.Publish(ctx, events.StreamAction, events.Event{
		Type: events.EventActionSubmitted,
		Payload: map[string]any{
			"address":   registered.Address,
			"kind":      registered.Kind,
			"action_id": registered.ID.String(),
		},
	})
	if err != nil {
		g.log.Warn("failed to publish action event", zap.Error(err))
	}
	return registered, epoch, nil
}

func (g *Gateway) setName(id uuid.UUID, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.inflight {
		if a.ID == id {
			a.Name = name
			return
		}
	}
}

func (g *Gateway) setAmount(id uuid.UUID, amountWei *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.inflight {
		if a.ID == id {
			a.AmountWei = amountWei.String()
			return
		}
	}
}

func (g *Gateway) lookup(address, kind string) models.PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a, ok := g.inflight[key(address, kind)]; ok {
		return *a
	}
	if a, ok := g.resolved[key(address, kind)]; ok {
		return *a
	}
	return models.PendingAction{}
}

// run resolves a submitted action in the background. The epoch captured at
// submit time guards against stale completions: a disconnect while the write
// is in flight makes the result irrelevant, and it is discarded rather than
// surfaced.
func (g *Gateway) run(action models.PendingAction, epoch uint64, write func(context.Context) (string, error)) {
	ctx := context.Background()

	txHash, err := write(ctx)
	if err == nil {
		g.mu.Lock()
		if a, ok := g.inflight[key(action.Address, action.Kind)]; ok && a.ID == action.ID {
			a.TxHash = txHash
		}
		g.mu.Unlock()
		err = g.writer.WaitConfirmed(ctx, txHash)
	}

	g.finish(ctx, action.ID, action.Address, action.Kind, epoch, err)
}

func (g *Gateway) finish(ctx context.Context, id uuid.UUID, address, kind string, epoch uint64, execErr error) {
	k := key(address, kind)

	g.mu.Lock()
	action, ok := g.inflight[k]
	if !ok || action.ID != id {
		g.mu.Unlock()
		return
	}
	delete(g.inflight, k)

	// Stale completion: the session moved on (disconnect, reconnect) while
	// the write was in flight. Discard, do not surface, do not retry.
	if !g.sessions.Connected(address) || g.sessions.Epoch(address) != epoch {
		g.mu.Unlock()
		g.log.Debug("discarding stale action completion",
			zap.String("address", address),
			zap.String("kind", kind),
			zap.String("action_id", id.String()),
		)
		return
	}

	now := time.Now()
	action.ResolvedAt = &now
	if execErr != nil {
		action.Status = models.ActionStatusFailed
		// The reason reaches the client verbatim.
		action.FailureReason = execErr.Error()
		g.log.Warn("action failed",
			zap.String("address", address),
			zap.Error(&TransactionError{Kind: kind, Reason: execErr.Error()}),
		)
	} else {
		action.Status = models.ActionStatusConfirmed
	}
	g.resolved[k] = action
	done := *action
	g.mu.Unlock()

	if err := g.history.Record(ctx, done); err != nil {
		g.log.Warn("failed to record action history", zap.Error(err))
	}

	eventType := events.EventActionConfirmed
	payload := map[string]any{
		"address":   done.Address,
		"kind":      done.Kind,
		"action_id": done.ID.String(),
		"tx_hash":   done.TxHash,
	}
	if done.Status == models.ActionStatusFailed {
		eventType = events.EventActionFailed
		payload["reason"] = done.FailureReason
	}
	if err := g.publisher.Publish(ctx, events.StreamAction, events.Event{Type: eventType, Payload: payload}); err != nil {
		g.log.Warn("failed to publish action event", zap.Error(err))
	}

	if done.Kind == models.ActionSetName && done.Status == models.ActionStatusConfirmed {
		if err := g.store.Set(ctx, done.Address, done.Name); err != nil {
			g.log.Error("failed to mirror confirmed name into identity store",
				zap.Error(&StorageError{Op: "set", Err: err}))
		}
		g.sessions.NameConfirmed(ctx, done.Address)
	}

	g.log.Info("action resolved",
		zap.String("address", done.Address),
		zap.String("kind", done.Kind),
		zap.String("status", done.Status),
	)
}
