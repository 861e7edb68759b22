package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/kindness-pool/backend/internal/models"
	"go.uber.org/zap"
)

const (
	maxDailyReceiverEntries = 1
	maxDailyReceiverExits   = 1
)

// Simulated is the development-mode backend: contract state lives in memory
// and confirmations land after a fixed latency, modelling the wallet
// confirmation delay the web client simulated locally.
type Simulated struct {
	latency   time.Duration
	constants models.Constants
	log       *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	dailyPool *big.Int
	unclaimed *big.Int
	receivers map[string]bool
	names     map[string]string
	totals    map[string]*simTotals
	days      map[string]*simDay
	pending   map[string]func() error
	dayStamp  string
}

type simTotals struct {
	given    *big.Int
	received *big.Int
	times    int64
}

type simDay struct {
	contributed *big.Int
	withdrawn   *big.Int
	entries     int64
	exits       int64
	withdrawals int64
}

func NewSimulated(latency time.Duration, log *zap.Logger) *Simulated {
	return &Simulated{
		latency:   latency,
		constants: models.DefaultConstants(),
		log:       log,
		now:       time.Now,
		dailyPool: new(big.Int),
		unclaimed: new(big.Int),
		receivers: make(map[string]bool),
		names:     make(map[string]string),
		totals:    make(map[string]*simTotals),
		days:      make(map[string]*simDay),
		pending:   make(map[string]func() error),
	}
}

// rollDay resets the daily accounting at UTC midnight. Callers hold s.mu.
func (s *Simulated) rollDay() {
	stamp := s.now().UTC().Format("2006-01-02")
	if stamp == s.dayStamp {
		return
	}
	s.dayStamp = stamp
	s.days = make(map[string]*simDay)
	s.dailyPool = new(big.Int)
}

func (s *Simulated) day(address string) *simDay {
	d, ok := s.days[models.NormalizeAddress(address)]
	if !ok {
		d = &simDay{contributed: new(big.Int), withdrawn: new(big.Int)}
		s.days[models.NormalizeAddress(address)] = d
	}
	return d
}

func (s *Simulated) total(address string) *simTotals {
	t, ok := s.totals[models.NormalizeAddress(address)]
	if !ok {
		t = &simTotals{given: new(big.Int), received: new(big.Int)}
		s.totals[models.NormalizeAddress(address)] = t
	}
	return t
}

// enqueue registers a state mutation that lands when the transaction
// confirms, so an unconfirmed write is never observable.
func (s *Simulated) enqueue(apply func() error) string {
	hash := newTxHash()
	s.mu.Lock()
	s.pending[hash] = apply
	s.mu.Unlock()
	return hash
}

func newTxHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}

// --- Writer ---

func (s *Simulated) SetName(_ context.Context, address, name string) (string, error) {
	trimmed, err := models.NormalizeName(name)
	if err != nil {
		return "", err
	}
	addr := models.NormalizeAddress(address)
	return s.enqueue(func() error {
		s.names[addr] = trimmed
		return nil
	}), nil
}

func (s *Simulated) GiveKindness(_ context.Context, address string, amountWei *big.Int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay()

	if amountWei == nil || amountWei.Sign() <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	if amountWei.Cmp(s.constants.MinKindnessWei) < 0 || amountWei.Cmp(s.constants.MaxKindnessWei) > 0 {
		return "", fmt.Errorf("amount out of range [%s, %s] ETH",
			models.FormatEther(s.constants.MinKindnessWei), models.FormatEther(s.constants.MaxKindnessWei))
	}
	d := s.day(address)
	next := new(big.Int).Add(d.contributed, amountWei)
	if next.Cmp(s.constants.MaxDailyWei) > 0 {
		return "", fmt.Errorf("daily contribution limit exceeded")
	}

	addr := models.NormalizeAddress(address)
	amount := new(big.Int).Set(amountWei)
	hash := newTxHash()
	s.pending[hash] = func() error {
		s.rollDay()
		d := s.day(addr)
		d.contributed.Add(d.contributed, amount)
		s.dailyPool.Add(s.dailyPool, amount)
		t := s.total(addr)
		t.given.Add(t.given, amount)
		return nil
	}
	return hash, nil
}

func (s *Simulated) EnterReceiverPool(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay()

	addr := models.NormalizeAddress(address)
	if s.receivers[addr] {
		return "", fmt.Errorf("already in receiver pool")
	}
	if int64(len(s.receivers)) >= s.constants.MaxReceivers {
		return "", fmt.Errorf("receiver pool is full")
	}
	d := s.day(addr)
	if d.entries >= maxDailyReceiverEntries {
		return "", fmt.Errorf("daily receiver entry limit reached")
	}

	hash := newTxHash()
	s.pending[hash] = func() error {
		if s.receivers[addr] {
			return fmt.Errorf("already in receiver pool")
		}
		s.receivers[addr] = true
		s.rollDay()
		s.day(addr).entries++
		return nil
	}
	return hash, nil
}

func (s *Simulated) LeaveReceiverPool(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay()

	addr := models.NormalizeAddress(address)
	if !s.receivers[addr] {
		return "", fmt.Errorf("not in receiver pool")
	}
	d := s.day(addr)
	if d.exits >= maxDailyReceiverExits {
		return "", fmt.Errorf("daily receiver exit limit reached")
	}

	hash := newTxHash()
	s.pending[hash] = func() error {
		delete(s.receivers, addr)
		s.rollDay()
		s.day(addr).exits++
		return nil
	}
	return hash, nil
}

func (s *Simulated) WithdrawContribution(_ context.Context, address string, amountWei *big.Int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay()

	if amountWei == nil || amountWei.Cmp(s.constants.MinWithdrawWei) < 0 {
		return "", fmt.Errorf("amount below minimum withdrawal of %s ETH",
			models.FormatEther(s.constants.MinWithdrawWei))
	}
	addr := models.NormalizeAddress(address)
	d := s.day(addr)
	withdrawable := new(big.Int).Sub(d.contributed, d.withdrawn)
	if amountWei.Cmp(withdrawable) > 0 {
		return "", fmt.Errorf("amount exceeds withdrawable balance of %s ETH",
			models.FormatEther(withdrawable))
	}
	if d.withdrawals >= s.constants.MaxDailyWithdrawals {
		return "", fmt.Errorf("daily withdrawal limit reached")
	}

	amount := new(big.Int).Set(amountWei)
	hash := newTxHash()
	s.pending[hash] = func() error {
		s.rollDay()
		d := s.day(addr)
		d.withdrawn.Add(d.withdrawn, amount)
		d.withdrawals++
		s.dailyPool.Sub(s.dailyPool, amount)
		return nil
	}
	return hash, nil
}

func (s *Simulated) WaitConfirmed(ctx context.Context, txHash string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
	}

	s.mu.Lock()
	apply, ok := s.pending[txHash]
	delete(s.pending, txHash)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown transaction %s", txHash)
	}
	err := apply()
	s.mu.Unlock()
	return err
}

// --- Reader ---

func (s *Simulated) PoolStats(_ context.Context) (models.PoolStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay()
	return models.PoolStats{
		DailyPoolWei:      new(big.Int).Set(s.dailyPool),
		ReceiverCount:     int64(len(s.receivers)),
		UnclaimedFundsWei: new(big.Int).Set(s.unclaimed),
	}, nil
}

func (s *Simulated) UserDailyStats(_ context.Context, address string) (models.UserDailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay()

	addr := models.NormalizeAddress(address)
	d := s.day(addr)
	remaining := new(big.Int).Sub(s.constants.MaxDailyWei, d.contributed)
	if remaining.Sign() < 0 {
		remaining = new(big.Int)
	}
	return models.UserDailyStats{
		ContributionWei:      new(big.Int).Set(d.contributed),
		RemainingDailyWei:    remaining,
		ReceiverEntries:      d.entries,
		ReceiverExits:        d.exits,
		CanContribute:        remaining.Sign() > 0,
		CanEnterReceiverPool: !s.receivers[addr] && d.entries < maxDailyReceiverEntries,
		CanLeaveReceiverPool: s.receivers[addr] && d.exits < maxDailyReceiverExits,
	}, nil
}

func (s *Simulated) UserStats(_ context.Context, address string) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := models.NormalizeAddress(address)
	t := s.total(addr)
	return models.UserStats{
		TotalGivenWei:    new(big.Int).Set(t.given),
		TotalReceivedWei: new(big.Int).Set(t.received),
		TimesReceived:    t.times,
		Name:             s.names[addr],
		IsInReceiverPool: s.receivers[addr],
	}, nil
}

func (s *Simulated) IsInReceiverPool(_ context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivers[models.NormalizeAddress(address)], nil
}

func (s *Simulated) Constants(_ context.Context) models.Constants {
	return s.constants
}
