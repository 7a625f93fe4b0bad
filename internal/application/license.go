package application

import (
	"context"
	"math/big"
	"strings"

	"chainapi/internal/chain"
	"chainapi/internal/contracts"
	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// LicenseService drives StreamingRightsManagement license contracts. Payout
// requests go through the owning multi-sig wallet.
type LicenseService struct {
	gateway  Gateway
	wallets  *MultiSigService
	artifact string
}

func NewLicenseService(gateway Gateway, wallets *MultiSigService, artifact string) (*LicenseService, error) {
	if gateway == nil || wallets == nil {
		return nil, errors.New("license service dependencies must not be nil")
	}
	if strings.TrimSpace(artifact) == "" {
		artifact = "StreamingRightsManagement"
	}
	return &LicenseService{gateway: gateway, wallets: wallets, artifact: artifact}, nil
}

func (s *LicenseService) Deploy(ctx context.Context, seed string, req domain.LicenseDeployment) (string, error) {
	wallet, err := parseAddress("multiSigWallet", req.MultiSigWallet)
	if err != nil {
		return "", err
	}
	payroll, err := parseAddress("payrollAddress", req.PayrollAddress)
	if err != nil {
		return "", err
	}
	owners, err := parseAddresses("owners", req.Owners)
	if err != nil {
		return "", err
	}
	if len(req.Shares) != len(owners) {
		return "", domain.Invalid("got %d shares for %d owners", len(req.Shares), len(owners))
	}
	shares := make([]*big.Int, len(req.Shares))
	for i, share := range req.Shares {
		if share == 0 {
			return "", domain.Invalid("share of %s must be positive", owners[i].Hex())
		}
		shares[i] = new(big.Int).SetUint64(share)
	}

	outcome, err := s.gateway.Deploy(ctx, seed, s.artifact, wallet, owners, shares, payroll)
	if err != nil {
		return "", err
	}
	return outcome.Contract.Hex(), nil
}

// Info reads the license configuration and every owner's share.
func (s *LicenseService) Info(ctx context.Context, address string) (domain.LicenseInfo, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return domain.LicenseInfo{}, err
	}
	wallet, err := s.singleAddress(ctx, contract, contracts.MethodMultisig)
	if err != nil {
		return domain.LicenseInfo{}, err
	}
	payroll, err := s.singleAddress(ctx, contract, contracts.MethodPayoutContract)
	if err != nil {
		return domain.LicenseInfo{}, err
	}
	owners, err := s.owners(ctx, contract)
	if err != nil {
		return domain.LicenseInfo{}, err
	}

	shares := make([]string, len(owners))
	g, gctx := errgroup.WithContext(ctx)
	for i, owner := range owners {
		g.Go(func() error {
			share, err := s.share(gctx, contract, common.HexToAddress(owner))
			if err != nil {
				return err
			}
			shares[i] = share
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.LicenseInfo{}, err
	}

	return domain.LicenseInfo{
		ContractAddress: contract.Hex(),
		MultiSigWallet:  wallet,
		PayrollAddress:  payroll,
		Owners:          owners,
		Shares:          shares,
	}, nil
}

func (s *LicenseService) Share(ctx context.Context, address, owner string) (string, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return "", err
	}
	ownerAddress, err := parseAddress("ownerAddress", owner)
	if err != nil {
		return "", err
	}
	return s.share(ctx, contract, ownerAddress)
}

func (s *LicenseService) Owners(ctx context.Context, address string) ([]string, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return nil, err
	}
	return s.owners(ctx, contract)
}

// Request submits a payout() call on the license to the multi-sig wallet.
// It still has to be confirmed and executed by the wallet owners.
func (s *LicenseService) Request(ctx context.Context, seed, address, multiSigWallet string) (domain.SubmitResult, error) {
	contract, err := parseAddress("contractAddress", address)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if _, err := parseAddress("multiSigWallet", multiSigWallet); err != nil {
		return domain.SubmitResult{}, err
	}
	licenseABI, err := s.gateway.ABI(s.artifact)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	data, err := licenseABI.Pack(contracts.MethodPayout)
	if err != nil {
		return domain.SubmitResult{}, errors.Wrap(err, "pack payout")
	}
	return s.wallets.Submit(ctx, domain.WalletRef{Address: multiSigWallet, Seed: seed}, domain.TransactionRequest{
		Destination: contract.Hex(),
		Value:       "0",
		Data:        hexutil.Encode(data),
	})
}

func (s *LicenseService) owners(ctx context.Context, contract common.Address) ([]string, error) {
	out, err := s.gateway.Call(ctx, s.artifact, contract, contracts.MethodGetOwners)
	if err != nil {
		return nil, err
	}
	return addressList(contracts.MethodGetOwners, out)
}

func (s *LicenseService) share(ctx context.Context, contract, owner common.Address) (string, error) {
	out, err := s.gateway.Call(ctx, s.artifact, contract, contracts.MethodGetShare, owner)
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", errors.Errorf("%s returned %d values", contracts.MethodGetShare, len(out))
	}
	return chain.FormatValue(out[0]), nil
}

func (s *LicenseService) singleAddress(ctx context.Context, contract common.Address, method string) (string, error) {
	out, err := s.gateway.Call(ctx, s.artifact, contract, method)
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", errors.Errorf("%s returned %d values", method, len(out))
	}
	address, ok := out[0].(common.Address)
	if !ok {
		return "", errors.Errorf("%s returned %T", method, out[0])
	}
	return address.Hex(), nil
}
