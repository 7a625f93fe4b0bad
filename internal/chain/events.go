package chain

import (
	"fmt"
	"strconv"

	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// DecodeEvent finds the first log in receipt emitted by contract whose topic0
// is the signature of the named event and decodes it. A zero contract address
// matches any emitter.
func DecodeEvent(contractABI abi.ABI, receipt *types.Receipt, contract common.Address, name string) (domain.ContractEvent, error) {
	event, ok := contractABI.Events[name]
	if !ok {
		return domain.ContractEvent{}, errors.Errorf("abi has no event %s", name)
	}
	if receipt == nil {
		return domain.ContractEvent{}, &domain.EventNotFoundError{Event: name}
	}
	for _, lg := range receipt.Logs {
		if lg == nil || len(lg.Topics) == 0 || lg.Topics[0] != event.ID {
			continue
		}
		if contract != (common.Address{}) && lg.Address != contract {
			continue
		}
		return decode(event, lg)
	}
	return domain.ContractEvent{}, &domain.EventNotFoundError{Event: name, TxHash: receipt.TxHash.Hex()}
}

// DecodeLog decodes lg with whichever event of contractABI matches its topic0.
func DecodeLog(contractABI abi.ABI, lg *types.Log) (domain.ContractEvent, error) {
	if lg == nil || len(lg.Topics) == 0 {
		return domain.ContractEvent{}, errors.New("log has no topics")
	}
	event, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return domain.ContractEvent{}, errors.Wrapf(err, "log %d of %s", lg.Index, lg.TxHash.Hex())
	}
	return decode(*event, lg)
}

func decode(event abi.Event, lg *types.Log) (domain.ContractEvent, error) {
	var indexed abi.Arguments
	for i, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if input.Name == "" {
			input.Name = argName(i)
		}
		indexed = append(indexed, input)
	}
	if len(lg.Topics)-1 != len(indexed) {
		return domain.ContractEvent{}, errors.Errorf("event %s expects %d indexed topics, log has %d", event.Name, len(indexed), len(lg.Topics)-1)
	}

	topics := make(map[string]any, len(indexed))
	if err := abi.ParseTopicsIntoMap(topics, indexed, lg.Topics[1:]); err != nil {
		return domain.ContractEvent{}, errors.Wrapf(err, "parse topics of %s", event.Name)
	}
	values, err := event.Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil {
		return domain.ContractEvent{}, errors.Wrapf(err, "unpack data of %s", event.Name)
	}

	args := make([]domain.EventArg, 0, len(event.Inputs))
	next := 0
	for i, input := range event.Inputs {
		name := input.Name
		if name == "" {
			name = argName(i)
		}
		var value any
		if input.Indexed {
			value = topics[name]
		} else {
			value = values[next]
			next++
		}
		args = append(args, domain.EventArg{
			Name:    name,
			Type:    input.Type.String(),
			Indexed: input.Indexed,
			Value:   FormatValue(value),
		})
	}

	return domain.ContractEvent{
		Contract:    lg.Address.Hex(),
		Event:       event.Name,
		TxHash:      lg.TxHash.Hex(),
		BlockNumber: lg.BlockNumber,
		LogIndex:    uint64(lg.Index),
		Args:        args,
	}, nil
}

func argName(i int) string {
	return "arg" + strconv.Itoa(i)
}

// FormatValue renders a decoded ABI value the way it is returned to callers:
// checksummed addresses, decimal integers and 0x-prefixed bytes.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case common.Address:
		return value.Hex()
	case common.Hash:
		return value.Hex()
	case [32]byte:
		return common.Hash(value).Hex()
	case []byte:
		return hexutil.Encode(value)
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case interface{ String() string }:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
