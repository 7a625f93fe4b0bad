package streaming

import (
	"encoding/json"
	"errors"

	"chainapi/internal/domain"
)

type MessageType string

const (
	MessageTypeEvent MessageType = "contract_event"
)

type Arg struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
	Value   string `json:"value"`
}

// Message is a decoded contract event emitted by a transaction sent through
// the service.
type Message struct {
	Type        MessageType `json:"type"`
	ChainID     uint64      `json:"chain_id"`
	TraceID     string      `json:"trace_id,omitempty"`
	Contract    string      `json:"contract"`
	Event       string      `json:"event"`
	TxHash      string      `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number,omitempty"`
	LogIndex    uint64      `json:"log_index"`
	Args        []Arg       `json:"args,omitempty"`
}

// FromEvent builds the stream message of a decoded event.
func FromEvent(chainID uint64, traceID string, event domain.ContractEvent) Message {
	args := make([]Arg, len(event.Args))
	for i, arg := range event.Args {
		args[i] = Arg{Name: arg.Name, Type: arg.Type, Indexed: arg.Indexed, Value: arg.Value}
	}
	return Message{
		Type:        MessageTypeEvent,
		ChainID:     chainID,
		TraceID:     traceID,
		Contract:    event.Contract,
		Event:       event.Event,
		TxHash:      event.TxHash,
		BlockNumber: event.BlockNumber,
		LogIndex:    event.LogIndex,
		Args:        args,
	}
}

// ContractEvent converts the message back into a decoded event.
func (m Message) ContractEvent() domain.ContractEvent {
	args := make([]domain.EventArg, len(m.Args))
	for i, arg := range m.Args {
		args[i] = domain.EventArg{Name: arg.Name, Type: arg.Type, Indexed: arg.Indexed, Value: arg.Value}
	}
	return domain.ContractEvent{
		Contract:    m.Contract,
		Event:       m.Event,
		TxHash:      m.TxHash,
		BlockNumber: m.BlockNumber,
		LogIndex:    m.LogIndex,
		Args:        args,
	}
}

func Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, errors.New("message type is required")
	}
	if msg.ChainID == 0 {
		return nil, errors.New("chain_id is required")
	}
	if msg.TxHash == "" {
		return nil, errors.New("tx_hash is required")
	}
	return json.Marshal(msg)
}

func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, errors.New("message type is missing")
	}
	if msg.ChainID == 0 {
		return Message{}, errors.New("chain_id is missing")
	}
	return msg, nil
}
