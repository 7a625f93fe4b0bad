package chain

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"chainapi/internal/domain"
	"chainapi/internal/infrastructure/artifacts"
	"chainapi/internal/infrastructure/signer"
	"chainapi/internal/infrastructure/telemetry"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultReceiptTimeout = 2 * time.Minute

// Backend is the node surface the client needs. *ethrpc.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	FetchLogs(ctx context.Context, address common.Address, fromBlock, toBlock *uint64) ([]types.Log, error)
}

type ArtifactSource interface {
	Load(name string) (*artifacts.Artifact, error)
}

type SignerSource interface {
	Signer(seed string) (*signer.Signer, error)
}

// Observer is told about every transaction the client sends.
type Observer interface {
	OnTransaction(method string, err error, elapsed time.Duration)
}

type Config struct {
	ReceiptTimeout time.Duration
}

// Client sends contract transactions and waits for them to be mined.
type Client struct {
	backend   Backend
	artifacts ArtifactSource
	signers   SignerSource
	observer  Observer
	cfg       Config
	tracer    trace.Tracer

	mu      sync.Mutex
	chainID *big.Int
}

func NewClient(backend Backend, registry ArtifactSource, signers SignerSource, observer Observer, cfg Config) (*Client, error) {
	if backend == nil || registry == nil || signers == nil {
		return nil, errors.New("chain client dependencies must not be nil")
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = defaultReceiptTimeout
	}
	return &Client{
		backend:   backend,
		artifacts: registry,
		signers:   signers,
		observer:  observer,
		cfg:       cfg,
		tracer:    otel.Tracer("chainapi/chain"),
	}, nil
}

// ChainID returns the node's chain id. The first successful answer is kept;
// the lock is not held across the RPC call.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	cached := c.chainID
	c.mu.Unlock()
	if cached != nil {
		return new(big.Int).Set(cached), nil
	}

	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, domain.Upstream("eth_chainId", err)
	}
	c.mu.Lock()
	if c.chainID == nil {
		c.chainID = id
	}
	id = c.chainID
	c.mu.Unlock()
	return new(big.Int).Set(id), nil
}

// ABI returns the parsed ABI of the named artifact.
func (c *Client) ABI(artifact string) (abi.ABI, error) {
	a, err := c.artifacts.Load(artifact)
	if err != nil {
		return abi.ABI{}, err
	}
	return a.ABI, nil
}

// Transact calls method on contract signed by seed and waits for the receipt.
func (c *Client) Transact(ctx context.Context, seed, artifact string, contract common.Address, method string, args ...any) (*Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "chain.transact", trace.WithAttributes(
		attribute.String("contract.address", contract.Hex()),
		attribute.String("contract.method", method),
	))
	defer span.End()

	start := time.Now()
	outcome, err := c.transact(ctx, seed, artifact, contract, method, args)
	c.observe(method, err, start)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("tx.hash", outcome.TxHash()))
	return outcome, nil
}

func (c *Client) transact(ctx context.Context, seed, artifact string, contract common.Address, method string, args []any) (*Outcome, error) {
	a, err := c.artifacts.Load(artifact)
	if err != nil {
		return nil, err
	}
	opts, sender, err := c.transactOpts(ctx, seed)
	if err != nil {
		return nil, err
	}
	bound := bind.NewBoundContract(contract, a.ABI, c.backend, c.backend, c.backend)
	tx, err := bound.Transact(opts, method, args...)
	if err != nil {
		return nil, domain.Upstream(method, err)
	}
	slog.Debug("transaction sent", "method", method, "contract", contract.Hex(), "tx", tx.Hash().Hex())

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	return NewOutcome(receipt, a.ABI, contract, sender, method), nil
}

// Transfer sends value wei to the contract's receive function.
func (c *Client) Transfer(ctx context.Context, seed, artifact string, contract common.Address, value *big.Int) (*Outcome, error) {
	const method = "transfer"
	ctx, span := c.tracer.Start(ctx, "chain.transfer", trace.WithAttributes(
		attribute.String("contract.address", contract.Hex()),
		attribute.String("tx.value", value.String()),
	))
	defer span.End()

	start := time.Now()
	outcome, err := c.transfer(ctx, seed, artifact, contract, value)
	c.observe(method, err, start)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("tx.hash", outcome.TxHash()))
	return outcome, nil
}

func (c *Client) transfer(ctx context.Context, seed, artifact string, contract common.Address, value *big.Int) (*Outcome, error) {
	a, err := c.artifacts.Load(artifact)
	if err != nil {
		return nil, err
	}
	opts, sender, err := c.transactOpts(ctx, seed)
	if err != nil {
		return nil, err
	}
	opts.Value = value
	bound := bind.NewBoundContract(contract, a.ABI, c.backend, c.backend, c.backend)
	tx, err := bound.Transfer(opts)
	if err != nil {
		return nil, domain.Upstream("transfer", err)
	}
	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	return NewOutcome(receipt, a.ABI, contract, sender, "transfer"), nil
}

// Deploy creates a new instance of artifact and waits for its code to appear.
// The outcome's Contract is the new address.
func (c *Client) Deploy(ctx context.Context, seed, artifact string, args ...any) (*Outcome, error) {
	const method = "deploy"
	ctx, span := c.tracer.Start(ctx, "chain.deploy", trace.WithAttributes(attribute.String("contract.artifact", artifact)))
	defer span.End()

	start := time.Now()
	outcome, err := c.deploy(ctx, seed, artifact, args)
	c.observe(method, err, start)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tx.hash", outcome.TxHash()),
		attribute.String("contract.address", outcome.Contract.Hex()),
	)
	return outcome, nil
}

func (c *Client) deploy(ctx context.Context, seed, artifact string, args []any) (*Outcome, error) {
	a, err := c.artifacts.Load(artifact)
	if err != nil {
		return nil, err
	}
	if len(a.Bytecode) == 0 {
		return nil, errors.Errorf("artifact %s has no bytecode", artifact)
	}
	opts, sender, err := c.transactOpts(ctx, seed)
	if err != nil {
		return nil, err
	}
	address, tx, _, err := bind.DeployContract(opts, a.ABI, a.Bytecode, c.backend, args...)
	if err != nil {
		return nil, domain.Upstream("deploy "+artifact, err)
	}
	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	code, err := c.backend.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, domain.Upstream("eth_getCode", err)
	}
	if len(code) == 0 {
		return nil, domain.Upstream("deploy "+artifact, bind.ErrNoCodeAfterDeploy)
	}
	return NewOutcome(receipt, a.ABI, address, sender, "deploy"), nil
}

// Call performs a read-only contract call and returns the unpacked outputs.
func (c *Client) Call(ctx context.Context, artifact string, contract common.Address, method string, args ...any) ([]any, error) {
	a, err := c.artifacts.Load(artifact)
	if err != nil {
		return nil, err
	}
	bound := bind.NewBoundContract(contract, a.ABI, c.backend, c.backend, c.backend)
	var out []any
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, domain.Upstream(method, err)
	}
	return out, nil
}

func (c *Client) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.backend.NonceAt(ctx, account, nil)
	if err != nil {
		return 0, domain.Upstream("eth_getTransactionCount", err)
	}
	return nonce, nil
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, domain.Upstream("eth_getBalance", err)
	}
	return balance, nil
}

// Events returns the decoded logs emitted by contract in [fromBlock, toBlock].
// Logs that match no event of the artifact's ABI are skipped.
func (c *Client) Events(ctx context.Context, artifact string, contract common.Address, fromBlock, toBlock *uint64) ([]domain.ContractEvent, error) {
	a, err := c.artifacts.Load(artifact)
	if err != nil {
		return nil, err
	}
	logs, err := c.backend.FetchLogs(ctx, contract, fromBlock, toBlock)
	if err != nil {
		return nil, domain.Upstream("eth_getLogs", err)
	}
	events := make([]domain.ContractEvent, 0, len(logs))
	for i := range logs {
		event, err := DecodeLog(a.ABI, &logs[i])
		if err != nil {
			slog.Debug("skip undecodable log", "tx", logs[i].TxHash.Hex(), "index", logs[i].Index, "err", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) transactOpts(ctx context.Context, seed string) (*bind.TransactOpts, common.Address, error) {
	s, err := c.signers.Signer(seed)
	if err != nil {
		return nil, common.Address{}, err
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, common.Address{}, err
	}
	opts, err := s.TransactOpts(ctx, chainID)
	if err != nil {
		return nil, common.Address{}, err
	}
	return opts, s.Address, nil
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		return nil, domain.Upstream("wait for "+tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, domain.Upstream("receipt", errors.Errorf("transaction %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber))
	}
	return receipt, nil
}

func (c *Client) observe(method string, err error, start time.Time) {
	if c.observer != nil {
		c.observer.OnTransaction(method, err, time.Since(start))
	}
}
