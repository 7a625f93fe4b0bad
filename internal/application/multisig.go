package application

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"chainapi/internal/chain"
	"chainapi/internal/contracts"
	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// MultiSigService drives a MultiSigWallet contract.
type MultiSigService struct {
	gateway  Gateway
	recorder Recorder
	artifact string
	now      func() time.Time
}

func NewMultiSigService(gateway Gateway, recorder Recorder, artifact string) (*MultiSigService, error) {
	if gateway == nil {
		return nil, errors.New("multisig service requires a gateway")
	}
	if strings.TrimSpace(artifact) == "" {
		artifact = "MultiSigWallet"
	}
	return &MultiSigService{gateway: gateway, recorder: recorder, artifact: artifact, now: time.Now}, nil
}

// Deploy creates a wallet owned by owners that needs confirmations approvals
// per transaction. It returns the wallet address.
func (s *MultiSigService) Deploy(ctx context.Context, seed string, owners []string, confirmations uint64) (string, error) {
	addresses, err := parseAddresses("owners", owners)
	if err != nil {
		return "", err
	}
	if confirmations == 0 || confirmations > uint64(len(addresses)) {
		return "", domain.Invalid("confirmations must be between 1 and %d", len(addresses))
	}
	outcome, err := s.gateway.Deploy(ctx, seed, s.artifact, addresses, new(big.Int).SetUint64(confirmations))
	if err != nil {
		return "", err
	}
	return outcome.Contract.Hex(), nil
}

func (s *MultiSigService) Owners(ctx context.Context, address string) ([]string, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return nil, err
	}
	out, err := s.gateway.Call(ctx, s.artifact, contract, contracts.MethodGetOwners)
	if err != nil {
		return nil, err
	}
	return addressList(contracts.MethodGetOwners, out)
}

// Submit proposes a transaction to the wallet. The returned txIndex is the
// wallet's transaction count before submission.
func (s *MultiSigService) Submit(ctx context.Context, ref domain.WalletRef, req domain.TransactionRequest) (domain.SubmitResult, error) {
	contract, err := parseAddress("contractAddress", ref.Address)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	var destination common.Address
	if strings.TrimSpace(req.Destination) != "" {
		if destination, err = parseAddress("destination", req.Destination); err != nil {
			return domain.SubmitResult{}, err
		}
	}
	value, err := chain.ParseAmount(req.Value)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	data, err := parseData(req.Data)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	outcome, err := s.gateway.Transact(ctx, ref.Seed, s.artifact, contract, contracts.MethodSubmitTransaction, destination, value, data)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	event, err := outcome.Event(contracts.EventSubmitTransaction)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	s.record(ctx, outcome, event)

	return domain.SubmitResult{
		TxHash:  outcome.TxHash(),
		Sender:  event.Arg(0),
		TxIndex: event.Arg(1),
		To:      event.Arg(2),
		Value:   event.Arg(3),
		Data:    event.Arg(4),
	}, nil
}

func (s *MultiSigService) Confirm(ctx context.Context, ref domain.WalletRef, index uint64) (domain.ConfirmResult, error) {
	return s.indexed(ctx, ref, index, contracts.MethodConfirmTransaction, contracts.EventConfirmTransaction)
}

func (s *MultiSigService) Revoke(ctx context.Context, ref domain.WalletRef, index uint64) (domain.ConfirmResult, error) {
	return s.indexed(ctx, ref, index, contracts.MethodRevokeConfirmation, contracts.EventRevokeConfirmation)
}

func (s *MultiSigService) indexed(ctx context.Context, ref domain.WalletRef, index uint64, method, eventName string) (domain.ConfirmResult, error) {
	contract, err := parseAddress("contractAddress", ref.Address)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	outcome, err := s.gateway.Transact(ctx, ref.Seed, s.artifact, contract, method, new(big.Int).SetUint64(index))
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	event, err := outcome.Event(eventName)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	s.record(ctx, outcome, event)

	return domain.ConfirmResult{TxHash: outcome.TxHash(), Sender: event.Arg(0), TxIndex: event.Arg(1)}, nil
}

// Execute runs a confirmed transaction. With isDeploy the wallet deploys the
// transaction data as contract code using a fresh salt and the result carries
// the deployed address.
func (s *MultiSigService) Execute(ctx context.Context, ref domain.WalletRef, index uint64, isDeploy bool) (domain.ExecuteResult, error) {
	contract, err := parseAddress("contractAddress", ref.Address)
	if err != nil {
		return domain.ExecuteResult{}, err
	}

	txIndex := new(big.Int).SetUint64(index)
	var outcome *chain.Outcome
	if isDeploy {
		salt := chain.DeploySalt(index, s.now())
		outcome, err = s.gateway.Transact(ctx, ref.Seed, s.artifact, contract, contracts.MethodExecuteDeployTransaction, txIndex, salt)
	} else {
		outcome, err = s.gateway.Transact(ctx, ref.Seed, s.artifact, contract, contracts.MethodExecuteTransaction, txIndex)
	}
	if err != nil {
		return domain.ExecuteResult{}, err
	}

	event, err := outcome.Event(contracts.EventExecuteTransaction)
	if err != nil {
		return domain.ExecuteResult{}, err
	}
	result := domain.ExecuteResult{TxHash: outcome.TxHash(), Sender: event.Arg(0), TxIndex: event.Arg(1)}
	if isDeploy {
		deployed, err := outcome.Event(contracts.EventContractDeployed)
		if err != nil {
			return domain.ExecuteResult{}, err
		}
		result.DeployedAddress = deployed.Arg(0)
	}
	s.record(ctx, outcome, event)
	return result, nil
}

func (s *MultiSigService) TransactionCount(ctx context.Context, address string) (string, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return "", err
	}
	out, err := s.gateway.Call(ctx, s.artifact, contract, contracts.MethodGetTransactionCount)
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", errors.Errorf("%s returned %d values", contracts.MethodGetTransactionCount, len(out))
	}
	return chain.FormatValue(out[0]), nil
}

func (s *MultiSigService) Transaction(ctx context.Context, address string, index uint64) (domain.WalletTransaction, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	out, err := s.gateway.Call(ctx, s.artifact, contract, contracts.MethodGetTransaction, new(big.Int).SetUint64(index))
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	if len(out) != 5 {
		return domain.WalletTransaction{}, errors.Errorf("%s returned %d values", contracts.MethodGetTransaction, len(out))
	}
	executed, ok := out[3].(bool)
	if !ok {
		return domain.WalletTransaction{}, errors.Errorf("%s: executed is %T", contracts.MethodGetTransaction, out[3])
	}
	return domain.WalletTransaction{
		Index:            new(big.Int).SetUint64(index).String(),
		To:               chain.FormatValue(out[0]),
		Value:            chain.FormatValue(out[1]),
		Data:             chain.FormatValue(out[2]),
		Executed:         executed,
		NumConfirmations: chain.FormatValue(out[4]),
	}, nil
}

// Deposit sends value ether to the wallet.
func (s *MultiSigService) Deposit(ctx context.Context, ref domain.WalletRef, value string) (domain.DepositResult, error) {
	contract, err := parseAddress("contractAddress", ref.Address)
	if err != nil {
		return domain.DepositResult{}, err
	}
	wei, err := chain.ParseEther(value)
	if err != nil {
		return domain.DepositResult{}, err
	}
	if wei.Sign() == 0 {
		return domain.DepositResult{}, domain.Invalid("deposit value must be positive")
	}

	outcome, err := s.gateway.Transfer(ctx, ref.Seed, s.artifact, contract, wei)
	if err != nil {
		return domain.DepositResult{}, err
	}
	outcome.Method = contracts.MethodDeposit
	event, err := outcome.Event(contracts.EventDeposit)
	if err != nil {
		return domain.DepositResult{}, err
	}
	s.record(ctx, outcome, event)

	return domain.DepositResult{
		TxHash:          outcome.TxHash(),
		Sender:          event.Arg(0),
		Value:           event.Arg(1),
		ContractBalance: event.Arg(2),
	}, nil
}

// FutureAddress predicts the address of the next contract created by address.
func (s *MultiSigService) FutureAddress(ctx context.Context, address string) (string, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return "", err
	}
	nonce, err := s.gateway.NonceAt(ctx, contract)
	if err != nil {
		return "", err
	}
	return crypto.CreateAddress(contract, nonce).Hex(), nil
}

func (s *MultiSigService) Balance(ctx context.Context, address string) (string, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return "", err
	}
	balance, err := s.gateway.BalanceAt(ctx, contract)
	if err != nil {
		return "", err
	}
	return balance.String(), nil
}

// Events returns the wallet's decoded logs between fromBlock and toBlock.
func (s *MultiSigService) Events(ctx context.Context, address string, fromBlock, toBlock *uint64) ([]domain.ContractEvent, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return nil, err
	}
	if fromBlock != nil && toBlock != nil && *fromBlock > *toBlock {
		return nil, domain.Invalid("from_block %d is after to_block %d", *fromBlock, *toBlock)
	}
	return s.gateway.Events(ctx, s.artifact, contract, fromBlock, toBlock)
}

func (s *MultiSigService) record(ctx context.Context, outcome *chain.Outcome, event domain.ContractEvent) {
	record(ctx, s.recorder, outcome, event)
}

// record journals a mined mutation. The transaction is already on chain, so a
// failure here is logged rather than returned.
func record(ctx context.Context, recorder Recorder, outcome *chain.Outcome, event domain.ContractEvent) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, outcome, event); err != nil {
		slog.Warn("journal record failed", "tx", outcome.TxHash(), "method", outcome.Method, "err", err)
	}
}

func addressList(method string, out []any) ([]string, error) {
	if len(out) != 1 {
		return nil, errors.Errorf("%s returned %d values", method, len(out))
	}
	addresses, ok := out[0].([]common.Address)
	if !ok {
		return nil, errors.Errorf("%s returned %T", method, out[0])
	}
	result := make([]string, len(addresses))
	for i, address := range addresses {
		result[i] = address.Hex()
	}
	return result, nil
}
