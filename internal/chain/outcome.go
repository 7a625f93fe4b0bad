package chain

import (
	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Outcome is a mined, successful transaction together with what is needed to
// decode its logs.
type Outcome struct {
	Receipt  *types.Receipt
	Contract common.Address
	Sender   common.Address
	Method   string

	abi abi.ABI
}

func NewOutcome(receipt *types.Receipt, contractABI abi.ABI, contract, sender common.Address, method string) *Outcome {
	return &Outcome{Receipt: receipt, Contract: contract, Sender: sender, Method: method, abi: contractABI}
}

func (o *Outcome) TxHash() string {
	if o.Receipt == nil {
		return ""
	}
	return o.Receipt.TxHash.Hex()
}

func (o *Outcome) BlockNumber() uint64 {
	if o.Receipt == nil || o.Receipt.BlockNumber == nil {
		return 0
	}
	return o.Receipt.BlockNumber.Uint64()
}

// Event decodes the first occurrence of the named event emitted by the contract.
func (o *Outcome) Event(name string) (domain.ContractEvent, error) {
	return DecodeEvent(o.abi, o.Receipt, o.Contract, name)
}

// Events decodes every log of the receipt the contract ABI knows about.
func (o *Outcome) Events() []domain.ContractEvent {
	if o.Receipt == nil {
		return nil
	}
	var events []domain.ContractEvent
	for _, lg := range o.Receipt.Logs {
		if lg == nil || lg.Address != o.Contract {
			continue
		}
		event, err := DecodeLog(o.abi, lg)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events
}
