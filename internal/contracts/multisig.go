// Package contracts describes the contract interfaces the service talks to.
package contracts

// Multi-sig wallet methods.
const (
	MethodSubmitTransaction        = "submitTransaction"
	MethodConfirmTransaction       = "confirmTransaction"
	MethodExecuteTransaction       = "executeTransaction"
	MethodExecuteDeployTransaction = "executeDeployTransaction"
	MethodRevokeConfirmation       = "revokeConfirmation"
	MethodGetOwners                = "getOwners"
	MethodGetTransactionCount      = "getTransactionCount"
	MethodGetTransaction           = "getTransaction"
	// MethodDeposit labels plain value transfers to the wallet; it is not an ABI method.
	MethodDeposit = "deposit"
)

// Multi-sig wallet events.
const (
	EventDeposit            = "Deposit"
	EventSubmitTransaction  = "SubmitTransaction"
	EventConfirmTransaction = "ConfirmTransaction"
	EventRevokeConfirmation = "RevokeConfirmation"
	EventExecuteTransaction = "ExecuteTransaction"
	EventContractDeployed   = "ContractDeployed"
)

// MultiSigWalletABI is the interface expected from the MultiSigWallet artifact.
const MultiSigWalletABI = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"_owners","type":"address[]"},
    {"name":"_numConfirmationsRequired","type":"uint256"}]},
  {"type":"receive","stateMutability":"payable"},
  {"type":"event","name":"Deposit","anonymous":false,"inputs":[
    {"name":"sender","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false},
    {"name":"balance","type":"uint256","indexed":false}]},
  {"type":"event","name":"SubmitTransaction","anonymous":false,"inputs":[
    {"name":"owner","type":"address","indexed":true},
    {"name":"txIndex","type":"uint256","indexed":true},
    {"name":"to","type":"address","indexed":true},
    {"name":"value","type":"uint256","indexed":false},
    {"name":"data","type":"bytes","indexed":false}]},
  {"type":"event","name":"ConfirmTransaction","anonymous":false,"inputs":[
    {"name":"owner","type":"address","indexed":true},
    {"name":"txIndex","type":"uint256","indexed":true}]},
  {"type":"event","name":"RevokeConfirmation","anonymous":false,"inputs":[
    {"name":"owner","type":"address","indexed":true},
    {"name":"txIndex","type":"uint256","indexed":true}]},
  {"type":"event","name":"ExecuteTransaction","anonymous":false,"inputs":[
    {"name":"owner","type":"address","indexed":true},
    {"name":"txIndex","type":"uint256","indexed":true}]},
  {"type":"event","name":"ContractDeployed","anonymous":false,"inputs":[
    {"name":"deployedAddress","type":"address","indexed":false}]},
  {"type":"function","name":"submitTransaction","stateMutability":"nonpayable","inputs":[
    {"name":"_to","type":"address"},
    {"name":"_value","type":"uint256"},
    {"name":"_data","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"confirmTransaction","stateMutability":"nonpayable","inputs":[
    {"name":"_txIndex","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"executeTransaction","stateMutability":"nonpayable","inputs":[
    {"name":"_txIndex","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"executeDeployTransaction","stateMutability":"nonpayable","inputs":[
    {"name":"_txIndex","type":"uint256"},
    {"name":"_salt","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"revokeConfirmation","stateMutability":"nonpayable","inputs":[
    {"name":"_txIndex","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getOwners","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"address[]"}]},
  {"type":"function","name":"getTransactionCount","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"uint256"}]},
  {"type":"function","name":"getTransaction","stateMutability":"view","inputs":[
    {"name":"_txIndex","type":"uint256"}],"outputs":[
    {"name":"to","type":"address"},
    {"name":"value","type":"uint256"},
    {"name":"data","type":"bytes"},
    {"name":"executed","type":"bool"},
    {"name":"numConfirmations","type":"uint256"}]}
]`
