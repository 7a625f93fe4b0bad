package application

import (
	"context"
	"math/big"
	"strings"

	"chainapi/internal/chain"
	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Gateway sends transactions and reads contract state. *chain.Client satisfies it.
type Gateway interface {
	Transact(ctx context.Context, seed, artifact string, contract common.Address, method string, args ...any) (*chain.Outcome, error)
	Transfer(ctx context.Context, seed, artifact string, contract common.Address, value *big.Int) (*chain.Outcome, error)
	Deploy(ctx context.Context, seed, artifact string, args ...any) (*chain.Outcome, error)
	Call(ctx context.Context, artifact string, contract common.Address, method string, args ...any) ([]any, error)
	ABI(artifact string) (abi.ABI, error)
	NonceAt(ctx context.Context, account common.Address) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	Events(ctx context.Context, artifact string, contract common.Address, fromBlock, toBlock *uint64) ([]domain.ContractEvent, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Recorder keeps track of mined mutations. event is the decoded event the
// operation was waiting for.
type Recorder interface {
	Record(ctx context.Context, outcome *chain.Outcome, event domain.ContractEvent) error
}

type JournalRepository interface {
	StoreEntries(ctx context.Context, entries []domain.JournalEntry) error
	QueryEntries(ctx context.Context, filter JournalQueryFilter) ([]domain.JournalEntry, error)
}

type EventPublisher interface {
	PublishEvents(ctx context.Context, chainID uint64, events []domain.ContractEvent) error
}

func parseAddress(field, value string) (common.Address, error) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "0x") && !strings.HasPrefix(v, "0X") {
		return common.Address{}, domain.Invalid("%s %q is not a 0x hex address", field, value)
	}
	if !common.IsHexAddress(v) {
		return common.Address{}, domain.Invalid("%s %q is not a hex address", field, value)
	}
	return common.HexToAddress(v), nil
}

func parseAddresses(field string, values []string) ([]common.Address, error) {
	if len(values) == 0 {
		return nil, domain.Invalid("%s must not be empty", field)
	}
	seen := make(map[common.Address]struct{}, len(values))
	addresses := make([]common.Address, 0, len(values))
	for _, value := range values {
		address, err := parseAddress(field, value)
		if err != nil {
			return nil, err
		}
		if address == (common.Address{}) {
			return nil, domain.Invalid("%s must not contain the zero address", field)
		}
		if _, ok := seen[address]; ok {
			return nil, domain.Invalid("%s contains %s twice", field, address.Hex())
		}
		seen[address] = struct{}{}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// parseData decodes call data. Empty input and "0x" both mean no data.
func parseData(value string) ([]byte, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == "0x" {
		return []byte{}, nil
	}
	data, err := hexutil.Decode(v)
	if err != nil {
		return nil, domain.Invalid("data %q: %v", value, err)
	}
	return data, nil
}
