package contracts

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// Check reports every method, event and constructor input of iface that loaded
// lacks or declares with a different signature.
func Check(iface string, loaded abi.ABI) error {
	expected, err := abi.JSON(strings.NewReader(iface))
	if err != nil {
		return errors.Wrap(err, "parse contract interface")
	}

	var mismatched []string
	for name, method := range expected.Methods {
		if got, ok := loaded.Methods[name]; !ok || got.Sig != method.Sig {
			mismatched = append(mismatched, "function "+method.Sig)
		}
	}
	for name, event := range expected.Events {
		if got, ok := loaded.Events[name]; !ok || got.Sig != event.Sig {
			mismatched = append(mismatched, "event "+event.Sig)
		}
	}
	if want, got := argTypes(expected.Constructor.Inputs), argTypes(loaded.Constructor.Inputs); want != got {
		mismatched = append(mismatched, "constructor("+want+")")
	}

	if len(mismatched) > 0 {
		sort.Strings(mismatched)
		return errors.Errorf("missing or mismatched: %s", strings.Join(mismatched, ", "))
	}
	return nil
}

func argTypes(args abi.Arguments) string {
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = arg.Type.String()
	}
	return strings.Join(types, ",")
}
