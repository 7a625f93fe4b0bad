package contracts

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiSigWalletABI(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(MultiSigWalletABI))
	require.NoError(t, err)

	for _, method := range []string{
		MethodSubmitTransaction,
		MethodConfirmTransaction,
		MethodExecuteTransaction,
		MethodExecuteDeployTransaction,
		MethodRevokeConfirmation,
		MethodGetOwners,
		MethodGetTransactionCount,
		MethodGetTransaction,
	} {
		assert.Contains(t, parsed.Methods, method)
	}
	for _, event := range []string{
		EventDeposit,
		EventSubmitTransaction,
		EventConfirmTransaction,
		EventRevokeConfirmation,
		EventExecuteTransaction,
		EventContractDeployed,
	} {
		assert.Contains(t, parsed.Events, event)
	}
	assert.Len(t, parsed.Constructor.Inputs, 2)
	assert.Equal(t, "SubmitTransaction(address,uint256,address,uint256,bytes)", parsed.Events[EventSubmitTransaction].Sig)
}

func TestLicenseABI(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(LicenseABI))
	require.NoError(t, err)

	for _, method := range []string{MethodMultisig, MethodPayoutContract, MethodGetOwners, MethodGetShare, MethodPayout} {
		assert.Contains(t, parsed.Methods, method)
	}
	assert.Len(t, parsed.Constructor.Inputs, 4)
}

func TestSalaryABI(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(SalaryABI))
	require.NoError(t, err)
	require.Len(t, parsed.Constructor.Inputs, 1)
	assert.Equal(t, "address", parsed.Constructor.Inputs[0].Type.String())
}

func TestCheckAcceptsSuperset(t *testing.T) {
	extended := strings.Replace(MultiSigWalletABI, `[`, `[
  {"type":"function","name":"isOwner","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},`, 1)
	loaded, err := abi.JSON(strings.NewReader(extended))
	require.NoError(t, err)

	assert.NoError(t, Check(MultiSigWalletABI, loaded))
}

func TestCheckReportsMismatches(t *testing.T) {
	loaded, err := abi.JSON(strings.NewReader(LicenseABI))
	require.NoError(t, err)

	err = Check(MultiSigWalletABI, loaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function submitTransaction(address,uint256,bytes)")
	assert.Contains(t, err.Error(), "event Deposit(address,uint256,uint256)")
	assert.Contains(t, err.Error(), "constructor(address[],uint256)")

	err = Check(SalaryABI, loaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constructor(address)")
}

func TestCheckRejectsBadInterface(t *testing.T) {
	assert.Error(t, Check("not json", abi.ABI{}))
}
