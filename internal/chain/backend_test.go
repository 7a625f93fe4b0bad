package chain

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"chainapi/internal/contracts"
	"chainapi/internal/infrastructure/artifacts"
	"chainapi/internal/infrastructure/signer"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const testSeed = "000102030405060708090a0b0c0d0e0f"

// fakeBackend answers just enough of the node API for bind to sign, send and
// wait for transactions without a network.
type fakeBackend struct {
	mu       sync.Mutex
	sent     []*types.Transaction
	receipt  func(tx *types.Transaction) *types.Receipt
	call     func(msg ethereum.CallMsg) ([]byte, error)
	logs     []types.Log
	balance  *big.Int
	nonce    uint64
	code     []byte
	sendErr  error
	chainIDs int

	// chainIDErr fails ChainID; chainIDGate, when set, holds it until closed.
	chainIDErr  error
	chainIDGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{code: []byte{0x60, 0x80}, balance: big.NewInt(0)}
}

func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return f.code, nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.call == nil {
		return nil, nil
	}
	return f.call(msg)
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(10)}, nil
}

func (f *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return f.code, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return f.logs, nil
}

func (f *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, ethereum.NotFound
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.sent {
		if tx.Hash() != hash {
			continue
		}
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}
		if f.receipt != nil {
			receipt = f.receipt(tx)
		}
		receipt.TxHash = hash
		if receipt.BlockNumber == nil {
			receipt.BlockNumber = big.NewInt(11)
		}
		for _, lg := range receipt.Logs {
			lg.TxHash = hash
		}
		return receipt, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	f.mu.Lock()
	f.chainIDs++
	err, gate := f.chainIDErr, f.chainIDGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return big.NewInt(31337), nil
}

func (f *fakeBackend) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) FetchLogs(ctx context.Context, _ common.Address, _, _ *uint64) ([]types.Log, error) {
	return f.FilterLogs(ctx, ethereum.FilterQuery{})
}

type recordingObserver struct {
	methods []string
	errs    []error
}

func (r *recordingObserver) OnTransaction(method string, err error, _ time.Duration) {
	r.methods = append(r.methods, method)
	r.errs = append(r.errs, err)
}

func testRegistry(t *testing.T) *artifacts.Registry {
	t.Helper()
	doc := `{"contractName":"MultiSigWallet","abi":` + contracts.MultiSigWalletABI + `,"bytecode":"0x6080604052"}`
	return artifacts.NewRegistryFS(fstest.MapFS{
		"MultiSigWallet.json": {Data: []byte(doc)},
	})
}

func newTestClient(t *testing.T, backend *fakeBackend, observer Observer) *Client {
	t.Helper()
	provider, err := signer.NewProvider("")
	require.NoError(t, err)
	client, err := NewClient(backend, testRegistry(t), provider, observer, Config{ReceiptTimeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func testSender(t *testing.T) common.Address {
	t.Helper()
	provider, err := signer.NewProvider("")
	require.NoError(t, err)
	address, err := provider.Address(testSeed)
	require.NoError(t, err)
	return address
}
