package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kindness-pool/backend/internal/models"
	"go.uber.org/zap"
)

const receiptPollInterval = 2 * time.Second

// EthBackend talks to the deployed pool and registry contracts over JSON-RPC.
// Writes are submitted with the service operator key.
type EthBackend struct {
	client         *ethclient.Client
	pool           *bind.BoundContract
	registry       *bind.BoundContract
	opts           *bind.TransactOpts
	confirmTimeout time.Duration
	defaults       models.Constants
	log            *zap.Logger
}

func NewEthBackend(rpcURL string, chainID int64, poolAddr, registryAddr, operatorKeyHex string, confirmTimeout time.Duration, log *zap.Logger) (*EthBackend, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}

	poolParsed, err := abi.JSON(strings.NewReader(poolABI))
	if err != nil {
		return nil, fmt.Errorf("invalid pool abi: %w", err)
	}
	registryParsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("invalid registry abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid operator key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(chainID))
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}

	b := &EthBackend{
		client:         client,
		pool:           bind.NewBoundContract(common.HexToAddress(poolAddr), poolParsed, client, client, client),
		registry:       bind.NewBoundContract(common.HexToAddress(registryAddr), registryParsed, client, client, client),
		opts:           opts,
		confirmTimeout: confirmTimeout,
		defaults:       models.DefaultConstants(),
		log:            log,
	}

	log.Info("eth backend connected",
		zap.String("rpc", rpcURL),
		zap.Int64("chain_id", chainID),
		zap.String("operator", opts.From.Hex()),
	)
	return b, nil
}

func (b *EthBackend) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (b *EthBackend) transactOpts(ctx context.Context, value *big.Int) *bind.TransactOpts {
	opts := *b.opts
	opts.Context = ctx
	opts.Value = value
	return &opts
}

func (b *EthBackend) readUint(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := contract.Call(b.callOpts(ctx), &out, method, params...); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (b *EthBackend) readBool(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (bool, error) {
	var out []interface{}
	if err := contract.Call(b.callOpts(ctx), &out, method, params...); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// --- Reader ---

func (b *EthBackend) PoolStats(ctx context.Context) (models.PoolStats, error) {
	daily, err := b.readUint(ctx, b.pool, "dailyPool")
	if err != nil {
		return models.PoolStats{}, fmt.Errorf("dailyPool read failed: %w", err)
	}
	receivers, err := b.readUint(ctx, b.pool, "getReceiverCount")
	if err != nil {
		return models.PoolStats{}, fmt.Errorf("getReceiverCount read failed: %w", err)
	}
	unclaimed, err := b.readUint(ctx, b.pool, "getUnclaimedFunds")
	if err != nil {
		return models.PoolStats{}, fmt.Errorf("getUnclaimedFunds read failed: %w", err)
	}
	within, err := b.readBool(ctx, b.pool, "isWithinDistributionWindow")
	if err != nil {
		return models.PoolStats{}, fmt.Errorf("isWithinDistributionWindow read failed: %w", err)
	}
	distributed, err := b.readBool(ctx, b.pool, "hasDistributedToday")
	if err != nil {
		return models.PoolStats{}, fmt.Errorf("hasDistributedToday read failed: %w", err)
	}

	return models.PoolStats{
		DailyPoolWei:       daily,
		ReceiverCount:      receivers.Int64(),
		UnclaimedFundsWei:  unclaimed,
		WithinDistribution: within,
		DistributedToday:   distributed,
	}, nil
}

func (b *EthBackend) UserDailyStats(ctx context.Context, address string) (models.UserDailyStats, error) {
	user := common.HexToAddress(address)

	var out []interface{}
	if err := b.pool.Call(b.callOpts(ctx), &out, "getUserDailyStats", user); err != nil {
		return models.UserDailyStats{}, fmt.Errorf("getUserDailyStats read failed: %w", err)
	}
	remaining, err := b.readUint(ctx, b.pool, "getRemainingDailyContribution", user)
	if err != nil {
		return models.UserDailyStats{}, fmt.Errorf("getRemainingDailyContribution read failed: %w", err)
	}

	return models.UserDailyStats{
		ContributionWei:      *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		RemainingDailyWei:    remaining,
		ReceiverEntries:      (*abi.ConvertType(out[1], new(*big.Int)).(**big.Int)).Int64(),
		ReceiverExits:        (*abi.ConvertType(out[2], new(*big.Int)).(**big.Int)).Int64(),
		CanContribute:        *abi.ConvertType(out[4], new(bool)).(*bool),
		CanEnterReceiverPool: *abi.ConvertType(out[5], new(bool)).(*bool),
		CanLeaveReceiverPool: *abi.ConvertType(out[6], new(bool)).(*bool),
	}, nil
}

type registryUserStats struct {
	TotalGiven       *big.Int
	TotalReceived    *big.Int
	TimesReceived    *big.Int
	LastActionTime   *big.Int
	Name             string
	IsInReceiverPool bool
}

func (b *EthBackend) UserStats(ctx context.Context, address string) (models.UserStats, error) {
	var out []interface{}
	if err := b.registry.Call(b.callOpts(ctx), &out, "getUserStats", common.HexToAddress(address)); err != nil {
		return models.UserStats{}, fmt.Errorf("getUserStats read failed: %w", err)
	}
	stats := *abi.ConvertType(out[0], new(registryUserStats)).(*registryUserStats)

	return models.UserStats{
		TotalGivenWei:    stats.TotalGiven,
		TotalReceivedWei: stats.TotalReceived,
		TimesReceived:    stats.TimesReceived.Int64(),
		Name:             stats.Name,
		IsInReceiverPool: stats.IsInReceiverPool,
	}, nil
}

func (b *EthBackend) IsInReceiverPool(ctx context.Context, address string) (bool, error) {
	return b.readBool(ctx, b.registry, "isInReceiverPool", common.HexToAddress(address))
}

// Constants reads the contract limits, falling back to the compiled-in
// defaults per value when the RPC is unavailable.
func (b *EthBackend) Constants(ctx context.Context) models.Constants {
	c := b.defaults

	if v, err := b.readUint(ctx, b.pool, "MIN_KINDNESS_AMOUNT"); err == nil {
		c.MinKindnessWei = v
	}
	if v, err := b.readUint(ctx, b.pool, "MAX_KINDNESS_AMOUNT"); err == nil {
		c.MaxKindnessWei = v
	}
	if v, err := b.readUint(ctx, b.pool, "MAX_DAILY_CONTRIBUTION"); err == nil {
		c.MaxDailyWei = v
	}
	if v, err := b.readUint(ctx, b.pool, "MAX_RECEIVERS"); err == nil {
		c.MaxReceivers = v.Int64()
	}
	if v, err := b.readUint(ctx, b.pool, "ACTION_COOLDOWN"); err == nil {
		c.ActionCooldownSec = v.Int64()
	}
	if v, err := b.readUint(ctx, b.pool, "RECEIVER_POOL_COOLDOWN"); err == nil {
		c.ReceiverCooldownSec = v.Int64()
	}
	return c
}

// --- Writer ---

func (b *EthBackend) SetName(ctx context.Context, _ string, name string) (string, error) {
	trimmed, err := models.NormalizeName(name)
	if err != nil {
		return "", err
	}
	tx, err := b.registry.Transact(b.transactOpts(ctx, nil), "setName", trimmed)
	if err != nil {
		return "", fmt.Errorf("setName failed: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (b *EthBackend) GiveKindness(ctx context.Context, _ string, amountWei *big.Int) (string, error) {
	tx, err := b.pool.Transact(b.transactOpts(ctx, amountWei), "giveKindness", amountWei)
	if err != nil {
		return "", fmt.Errorf("giveKindness failed: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (b *EthBackend) EnterReceiverPool(ctx context.Context, _ string) (string, error) {
	tx, err := b.pool.Transact(b.transactOpts(ctx, nil), "enterReceiverPool")
	if err != nil {
		return "", fmt.Errorf("enterReceiverPool failed: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (b *EthBackend) LeaveReceiverPool(ctx context.Context, _ string) (string, error) {
	tx, err := b.pool.Transact(b.transactOpts(ctx, nil), "leaveReceiverPool")
	if err != nil {
		return "", fmt.Errorf("leaveReceiverPool failed: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (b *EthBackend) WithdrawContribution(ctx context.Context, _ string, amountWei *big.Int) (string, error) {
	tx, err := b.pool.Transact(b.transactOpts(ctx, nil), "withdrawContribution", amountWei)
	if err != nil {
		return "", fmt.Errorf("withdrawContribution failed: %w", err)
	}
	return tx.Hash().Hex(), nil
}

// WaitConfirmed polls for the receipt until the transaction lands.
func (b *EthBackend) WaitConfirmed(ctx context.Context, txHash string) error {
	ctx, cancel := context.WithTimeout(ctx, b.confirmTimeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := b.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", txHash)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation timed out for %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}
