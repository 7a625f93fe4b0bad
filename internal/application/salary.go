package application

import (
	"context"
	"strings"

	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// SalaryService deploys payroll contracts. A license pays out to the payroll
// address it was deployed with.
type SalaryService struct {
	gateway  Gateway
	artifact string
}

func NewSalaryService(gateway Gateway, artifact string) (*SalaryService, error) {
	if gateway == nil {
		return nil, errors.New("salary service requires a gateway")
	}
	if strings.TrimSpace(artifact) == "" {
		artifact = "Salaries"
	}
	return &SalaryService{gateway: gateway, artifact: artifact}, nil
}

// Deploy creates a payroll contract that authorizedWallet may pay out from.
func (s *SalaryService) Deploy(ctx context.Context, seed, authorizedWallet string) (string, error) {
	wallet, err := parseAddress("authorizedWallet", authorizedWallet)
	if err != nil {
		return "", err
	}
	if wallet == (common.Address{}) {
		return "", domain.Invalid("authorizedWallet must not be the zero address")
	}
	outcome, err := s.gateway.Deploy(ctx, seed, s.artifact, wallet)
	if err != nil {
		return "", err
	}
	return outcome.Contract.Hex(), nil
}
