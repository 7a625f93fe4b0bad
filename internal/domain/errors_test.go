package domain

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Invalid("bad address %q", "0x1"), ErrValidation},
		{"upstream", Upstream("eth_call", errors.New("connection refused")), ErrUpstream},
		{"wrapped upstream", fmt.Errorf("submit: %w", Upstream("send", errors.New("nonce too low"))), ErrUpstream},
		{"event not found", &EventNotFoundError{Event: "SubmitTransaction", TxHash: "0x01"}, ErrEventNotFound},
	}
	kinds := []error{ErrValidation, ErrUpstream, ErrEventNotFound}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, kind := range kinds {
				assert.Equal(t, kind == tc.kind, errors.Is(tc.err, kind), "kind %v", kind)
			}
		})
	}
}

func TestUpstreamNil(t *testing.T) {
	assert.NoError(t, Upstream("op", nil))
}

func TestUpstreamUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Upstream("eth_sendRawTransaction", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "eth_sendRawTransaction: boom", err.Error())
}

func TestContractEventArg(t *testing.T) {
	ev := ContractEvent{Args: []EventArg{{Name: "owner", Value: "0xabc"}}}
	assert.Equal(t, "0xabc", ev.Arg(0))
	assert.Equal(t, "", ev.Arg(1))
	assert.Equal(t, "", ev.Arg(-1))
}
