package signer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"chainapi/internal/domain"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// Signer is a key resolved from a seed, ready to authorise transactions.
type Signer struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// TransactOpts returns options signing for chainID and bound to ctx.
func (s *Signer) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "build transactor")
	}
	opts.Context = ctx
	return opts, nil
}

// Provider derives signers from seeds along a fixed BIP-32 path.
type Provider struct {
	path accounts.DerivationPath
}

func NewProvider(derivationPath string) (*Provider, error) {
	if strings.TrimSpace(derivationPath) == "" {
		derivationPath = accounts.DefaultBaseDerivationPath.String()
	}
	path, err := accounts.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, errors.Wrapf(err, "parse derivation path %q", derivationPath)
	}
	return &Provider{path: path}, nil
}

// Signer resolves seed into a signer. The seed is either a hex encoded BIP-32
// seed or a BIP-39 mnemonic.
func (p *Provider) Signer(seed string) (*Signer, error) {
	raw, err := SeedBytes(seed)
	if err != nil {
		return nil, err
	}
	key, err := p.derive(raw)
	if err != nil {
		return nil, err
	}
	return &Signer{Address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// Address returns the address derived from seed.
func (p *Provider) Address(seed string) (common.Address, error) {
	s, err := p.Signer(seed)
	if err != nil {
		return common.Address{}, err
	}
	return s.Address, nil
}

func (p *Provider) derive(seed []byte) (*ecdsa.PrivateKey, error) {
	// chain params only select the extended key version bytes, not the curve
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, domain.Invalid("seed: %v", err)
	}
	for _, index := range p.path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, errors.Wrapf(err, "derive %s", p.path)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "extract private key")
	}
	return priv.ToECDSA(), nil
}

// SeedBytes decodes a seed given as hex or as a mnemonic phrase.
func SeedBytes(seed string) ([]byte, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, domain.Invalid("seed is required")
	}
	if strings.Contains(seed, " ") {
		phrase := strings.Join(strings.Fields(seed), " ")
		if !bip39.IsMnemonicValid(phrase) {
			return nil, domain.Invalid("seed phrase is not a valid mnemonic")
		}
		return bip39.NewSeed(phrase, ""), nil
	}
	if !strings.HasPrefix(seed, "0x") && !strings.HasPrefix(seed, "0X") {
		seed = "0x" + seed
	}
	raw, err := hexutil.Decode(strings.ToLower(seed))
	if err != nil {
		return nil, domain.Invalid("seed is neither hex nor a mnemonic")
	}
	if len(raw) < hdkeychain.MinSeedBytes || len(raw) > hdkeychain.MaxSeedBytes {
		return nil, domain.Invalid("seed must be %d to %d bytes", hdkeychain.MinSeedBytes, hdkeychain.MaxSeedBytes)
	}
	return raw, nil
}
