package application

import (
	"context"
	"encoding/binary"
	"math/big"
	"strings"
	"testing"

	"chainapi/internal/chain"
	"chainapi/internal/contracts"
	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const licenseArtifact = "StreamingRightsManagement"

var (
	walletAddr  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	licenseAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	senderAddr  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	ownerB      = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

type walletTx struct {
	to            common.Address
	value         *big.Int
	data          []byte
	executed      bool
	confirmations int64
}

type mockCall struct {
	contract common.Address
	method   string
	args     []any
}

// mockGateway behaves like a single multi-sig wallet and license contract.
type mockGateway struct {
	t       *testing.T
	wallet  abi.ABI
	license abi.ABI

	txs           []walletTx
	transacts     []mockCall
	transfers     []*big.Int
	deploys       [][]any
	omitEvents    bool
	err           error
	deployed      common.Address
	nonce         uint64
	balance       *big.Int
	owners        []common.Address
	licenseOwners []common.Address
	shares        map[common.Address]*big.Int
	payroll       common.Address
}

func newMockGateway(t *testing.T) *mockGateway {
	t.Helper()
	wallet, err := abi.JSON(strings.NewReader(contracts.MultiSigWalletABI))
	require.NoError(t, err)
	license, err := abi.JSON(strings.NewReader(contracts.LicenseABI))
	require.NoError(t, err)
	return &mockGateway{
		t:             t,
		wallet:        wallet,
		license:       license,
		deployed:      common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"),
		balance:       big.NewInt(0),
		owners:        []common.Address{senderAddr, ownerB},
		licenseOwners: []common.Address{senderAddr, ownerB},
		shares:        map[common.Address]*big.Int{senderAddr: big.NewInt(60), ownerB: big.NewInt(40)},
		payroll:       common.HexToAddress("0x0000000000000000000000000000000000000099"),
	}
}

func (m *mockGateway) receipt(logs ...*types.Log) *types.Receipt {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(len(m.transacts)+len(m.transfers)))
	hash := common.BytesToHash(crypto.Keccak256(seq[:]))
	if m.omitEvents {
		logs = nil
	}
	for _, lg := range logs {
		lg.TxHash = hash
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(7), Logs: logs}
}

func (m *mockGateway) log(name string, topics []common.Hash, data ...any) *types.Log {
	m.t.Helper()
	event := m.wallet.Events[name]
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	require.NoError(m.t, err)
	return &types.Log{Address: walletAddr, Topics: append([]common.Hash{event.ID}, topics...), Data: packed}
}

func addressTopic(a common.Address) common.Hash { return common.BytesToHash(a.Bytes()) }

func (m *mockGateway) Transact(_ context.Context, _, _ string, contract common.Address, method string, args ...any) (*chain.Outcome, error) {
	m.transacts = append(m.transacts, mockCall{contract: contract, method: method, args: args})
	if m.err != nil {
		return nil, m.err
	}
	var logs []*types.Log
	switch method {
	case contracts.MethodSubmitTransaction:
		to, value, data := args[0].(common.Address), args[1].(*big.Int), args[2].([]byte)
		index := int64(len(m.txs))
		m.txs = append(m.txs, walletTx{to: to, value: value, data: data})
		logs = append(logs, m.log(contracts.EventSubmitTransaction,
			[]common.Hash{addressTopic(senderAddr), common.BigToHash(big.NewInt(index)), addressTopic(to)}, value, data))
	case contracts.MethodConfirmTransaction:
		logs = append(logs, m.log(contracts.EventConfirmTransaction, m.indexTopics(args[0])))
	case contracts.MethodRevokeConfirmation:
		logs = append(logs, m.log(contracts.EventRevokeConfirmation, m.indexTopics(args[0])))
	case contracts.MethodExecuteTransaction:
		logs = append(logs, m.log(contracts.EventExecuteTransaction, m.indexTopics(args[0])))
	case contracts.MethodExecuteDeployTransaction:
		logs = append(logs,
			m.log(contracts.EventExecuteTransaction, m.indexTopics(args[0])),
			m.log(contracts.EventContractDeployed, nil, m.deployed))
	}
	return chain.NewOutcome(m.receipt(logs...), m.wallet, contract, senderAddr, method), nil
}

func (m *mockGateway) indexTopics(index any) []common.Hash {
	return []common.Hash{addressTopic(senderAddr), common.BigToHash(index.(*big.Int))}
}

func (m *mockGateway) Transfer(_ context.Context, _, _ string, contract common.Address, value *big.Int) (*chain.Outcome, error) {
	m.transfers = append(m.transfers, value)
	if m.err != nil {
		return nil, m.err
	}
	m.balance = new(big.Int).Add(m.balance, value)
	lg := m.log(contracts.EventDeposit, []common.Hash{addressTopic(senderAddr)}, value, m.balance)
	return chain.NewOutcome(m.receipt(lg), m.wallet, contract, senderAddr, "transfer"), nil
}

func (m *mockGateway) Deploy(_ context.Context, _, artifact string, args ...any) (*chain.Outcome, error) {
	m.deploys = append(m.deploys, args)
	if m.err != nil {
		return nil, m.err
	}
	contractABI := m.wallet
	if artifact == licenseArtifact {
		contractABI = m.license
	}
	return chain.NewOutcome(m.receipt(), contractABI, m.deployed, senderAddr, "deploy"), nil
}

func (m *mockGateway) Call(_ context.Context, artifact string, _ common.Address, method string, args ...any) ([]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	switch method {
	case contracts.MethodGetOwners:
		if artifact == licenseArtifact {
			return []any{m.licenseOwners}, nil
		}
		return []any{m.owners}, nil
	case contracts.MethodGetTransactionCount:
		return []any{big.NewInt(int64(len(m.txs)))}, nil
	case contracts.MethodGetTransaction:
		tx := m.txs[args[0].(*big.Int).Int64()]
		return []any{tx.to, tx.value, tx.data, tx.executed, big.NewInt(tx.confirmations)}, nil
	case contracts.MethodMultisig:
		return []any{walletAddr}, nil
	case contracts.MethodPayoutContract:
		return []any{m.payroll}, nil
	case contracts.MethodGetShare:
		share, ok := m.shares[args[0].(common.Address)]
		if !ok {
			share = big.NewInt(0)
		}
		return []any{share}, nil
	}
	m.t.Fatalf("unexpected call %s", method)
	return nil, nil
}

func (m *mockGateway) ABI(artifact string) (abi.ABI, error) {
	if artifact == licenseArtifact {
		return m.license, nil
	}
	return m.wallet, nil
}

func (m *mockGateway) NonceAt(context.Context, common.Address) (uint64, error) {
	return m.nonce, m.err
}

func (m *mockGateway) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	return m.balance, m.err
}

func (m *mockGateway) Events(context.Context, string, common.Address, *uint64, *uint64) ([]domain.ContractEvent, error) {
	return []domain.ContractEvent{{Event: contracts.EventDeposit}}, m.err
}

func (m *mockGateway) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(31337), nil
}

type mockRecorder struct {
	outcomes []*chain.Outcome
	events   []domain.ContractEvent
	err      error
}

func (m *mockRecorder) Record(_ context.Context, outcome *chain.Outcome, event domain.ContractEvent) error {
	m.outcomes = append(m.outcomes, outcome)
	m.events = append(m.events, event)
	return m.err
}
