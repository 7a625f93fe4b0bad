package chain

import (
	"math/big"
	"strings"

	"chainapi/internal/domain"
)

const etherDecimals = 18

// ParseEther converts a decimal ether amount such as "1.5" into wei.
func ParseEther(value string) (*big.Int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, domain.Invalid("ether amount is required")
	}
	whole, frac, _ := strings.Cut(v, ".")
	if whole == "" && frac == "" {
		return nil, domain.Invalid("ether amount %q is not a number", value)
	}
	if !digits(whole) || !digits(frac) {
		return nil, domain.Invalid("ether amount %q is not a non-negative decimal", value)
	}
	if len(frac) > etherDecimals {
		return nil, domain.Invalid("ether amount %q has more than %d decimals", value, etherDecimals)
	}
	wei, ok := new(big.Int).SetString("0"+whole+frac+strings.Repeat("0", etherDecimals-len(frac)), 10)
	if !ok {
		return nil, domain.Invalid("ether amount %q is not a number", value)
	}
	return wei, nil
}

// ParseAmount parses a non-negative decimal integer such as a wei value or
// a transaction index. An empty string is zero.
func ParseAmount(value string) (*big.Int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return new(big.Int), nil
	}
	if !digits(v) {
		return nil, domain.Invalid("%q is not a non-negative integer", value)
	}
	amount, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, domain.Invalid("%q is not a non-negative integer", value)
	}
	return amount, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
