package chain

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/kindness-pool/backend/internal/models"
	"go.uber.org/zap"
)

const testAddr = "0xabc0000000000000000000000000000000000001"

func newTestChain() *Simulated {
	return NewSimulated(time.Millisecond, zap.NewNop())
}

func confirm(t *testing.T, s *Simulated, hash string) {
	t.Helper()
	if err := s.WaitConfirmed(context.Background(), hash); err != nil {
		t.Fatalf("confirm %s: %v", hash, err)
	}
}

func eth(v float64) *big.Int {
	return models.EtherToWei(big.NewFloat(v))
}

func TestGiveKindnessAccumulates(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	hash, err := s.GiveKindness(ctx, testAddr, eth(0.5))
	if err != nil {
		t.Fatalf("give: %v", err)
	}

	// Nothing is observable until the transaction confirms.
	stats, _ := s.PoolStats(ctx)
	if stats.DailyPoolWei.Sign() != 0 {
		t.Errorf("pool changed before confirmation: %s", stats.DailyPoolWei)
	}

	confirm(t, s, hash)

	stats, _ = s.PoolStats(ctx)
	if stats.DailyPoolWei.Cmp(eth(0.5)) != 0 {
		t.Errorf("daily pool = %s, want %s", stats.DailyPoolWei, eth(0.5))
	}

	daily, _ := s.UserDailyStats(ctx, testAddr)
	if daily.ContributionWei.Cmp(eth(0.5)) != 0 {
		t.Errorf("contribution = %s, want %s", daily.ContributionWei, eth(0.5))
	}

	user, _ := s.UserStats(ctx, testAddr)
	if user.TotalGivenWei.Cmp(eth(0.5)) != 0 {
		t.Errorf("total given = %s, want %s", user.TotalGivenWei, eth(0.5))
	}
}

func TestGiveKindnessAmountRange(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	if _, err := s.GiveKindness(ctx, testAddr, eth(0.0001)); err == nil {
		t.Error("amount below minimum accepted")
	}
	if _, err := s.GiveKindness(ctx, testAddr, eth(2)); err == nil {
		t.Error("amount above maximum accepted")
	}
	if _, err := s.GiveKindness(ctx, testAddr, new(big.Int)); err == nil {
		t.Error("zero amount accepted")
	}
}

func TestGiveKindnessDailyLimit(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	// The daily cap is 5 ETH at 1 ETH per transaction.
	for i := 0; i < 5; i++ {
		hash, err := s.GiveKindness(ctx, testAddr, eth(1))
		if err != nil {
			t.Fatalf("give %d: %v", i, err)
		}
		confirm(t, s, hash)
	}

	if _, err := s.GiveKindness(ctx, testAddr, eth(1)); err == nil {
		t.Error("contribution above the daily limit accepted")
	}

	daily, _ := s.UserDailyStats(ctx, testAddr)
	if daily.CanContribute {
		t.Error("CanContribute = true at the daily limit")
	}
	if daily.RemainingDailyWei.Sign() != 0 {
		t.Errorf("remaining allowance = %s, want 0", daily.RemainingDailyWei)
	}
}

func TestDailyLimitResetsNextDay(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		hash, err := s.GiveKindness(ctx, testAddr, eth(1))
		if err != nil {
			t.Fatalf("give %d: %v", i, err)
		}
		confirm(t, s, hash)
	}
	if _, err := s.GiveKindness(ctx, testAddr, eth(1)); err == nil {
		t.Fatal("contribution above the daily limit accepted")
	}

	now = now.Add(24 * time.Hour)

	hash, err := s.GiveKindness(ctx, testAddr, eth(1))
	if err != nil {
		t.Fatalf("give after reset: %v", err)
	}
	confirm(t, s, hash)

	stats, _ := s.PoolStats(ctx)
	if stats.DailyPoolWei.Cmp(eth(1)) != 0 {
		t.Errorf("daily pool after reset = %s, want %s", stats.DailyPoolWei, eth(1))
	}
}

func TestReceiverPoolEntryAndExit(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	hash, err := s.EnterReceiverPool(ctx, testAddr)
	if err != nil {
		t.Fatalf("enter: %v", err)
	}

	// Not a member until confirmed.
	if in, _ := s.IsInReceiverPool(ctx, testAddr); in {
		t.Error("in receiver pool before confirmation")
	}
	confirm(t, s, hash)
	if in, _ := s.IsInReceiverPool(ctx, testAddr); !in {
		t.Fatal("not in receiver pool after confirmed entry")
	}

	if _, err := s.EnterReceiverPool(ctx, testAddr); err == nil {
		t.Error("double entry accepted")
	}

	daily, _ := s.UserDailyStats(ctx, testAddr)
	if daily.CanEnterReceiverPool {
		t.Error("CanEnterReceiverPool = true while already a member")
	}
	if !daily.CanLeaveReceiverPool {
		t.Error("CanLeaveReceiverPool = false for a member")
	}

	hash, err = s.LeaveReceiverPool(ctx, testAddr)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	confirm(t, s, hash)
	if in, _ := s.IsInReceiverPool(ctx, testAddr); in {
		t.Error("still in receiver pool after confirmed exit")
	}

	// One entry per day: leaving does not refund the entry allowance.
	if _, err := s.EnterReceiverPool(ctx, testAddr); err == nil {
		t.Error("re-entry accepted after using the daily entry")
	}
}

func TestLeaveWithoutEntry(t *testing.T) {
	s := newTestChain()
	if _, err := s.LeaveReceiverPool(context.Background(), testAddr); err == nil {
		t.Error("leave accepted for a non-member")
	}
}

func TestWithdrawContribution(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	hash, err := s.GiveKindness(ctx, testAddr, eth(1))
	if err != nil {
		t.Fatal(err)
	}
	confirm(t, s, hash)

	// Cannot withdraw more than was contributed today.
	if _, err := s.WithdrawContribution(ctx, testAddr, eth(2)); err == nil {
		t.Error("withdrawal above contribution accepted")
	}
	if _, err := s.WithdrawContribution(ctx, testAddr, eth(0.0001)); err == nil {
		t.Error("withdrawal below minimum accepted")
	}

	hash, err = s.WithdrawContribution(ctx, testAddr, eth(0.4))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	confirm(t, s, hash)

	stats, _ := s.PoolStats(ctx)
	if stats.DailyPoolWei.Cmp(eth(0.6)) != 0 {
		t.Errorf("daily pool after withdrawal = %s, want %s", stats.DailyPoolWei, eth(0.6))
	}
}

func TestSetNameVisibleInUserStats(t *testing.T) {
	s := newTestChain()
	ctx := context.Background()

	hash, err := s.SetName(ctx, testAddr, "  Alice  ")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}

	user, _ := s.UserStats(ctx, testAddr)
	if user.Name != "" {
		t.Errorf("name visible before confirmation: %q", user.Name)
	}

	confirm(t, s, hash)
	user, _ = s.UserStats(ctx, testAddr)
	if user.Name != "Alice" {
		t.Errorf("name = %q, want trimmed %q", user.Name, "Alice")
	}
}

func TestWaitConfirmedUnknownTransaction(t *testing.T) {
	s := newTestChain()
	if err := s.WaitConfirmed(context.Background(), "0xmissing"); err == nil {
		t.Error("unknown transaction confirmed")
	}
}

func TestWaitConfirmedHonorsContext(t *testing.T) {
	s := NewSimulated(time.Hour, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	hash, err := s.SetName(context.Background(), testAddr, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WaitConfirmed(ctx, hash); err == nil {
		t.Error("confirmation did not respect context cancellation")
	}
}
