package domain

// WalletRef identifies a deployed multi-sig wallet and the identity acting on it.
type WalletRef struct {
	Address string
	Seed    string
}

// TransactionRequest describes a wallet transaction to submit, confirm, execute or revoke.
type TransactionRequest struct {
	Destination string
	Value       string
	Data        string
	IsDeploy    bool
	Index       uint64
}

// SubmitResult is returned after a SubmitTransaction event is decoded.
type SubmitResult struct {
	TxHash  string `json:"txHash"`
	Sender  string `json:"sender"`
	TxIndex string `json:"txIndex"`
	To      string `json:"to"`
	Value   string `json:"value"`
	Data    string `json:"data"`
}

// ConfirmResult is returned for confirm and revoke calls.
type ConfirmResult struct {
	TxHash  string `json:"txHash"`
	Sender  string `json:"sender"`
	TxIndex string `json:"txIndex"`
}

// ExecuteResult is returned after ExecuteTransaction (and ContractDeployed) events are decoded.
type ExecuteResult struct {
	TxHash          string `json:"txHash"`
	Sender          string `json:"sender"`
	TxIndex         string `json:"txIndex"`
	DeployedAddress string `json:"deployedAddress,omitempty"`
}

// DepositResult is returned after a Deposit event is decoded.
type DepositResult struct {
	TxHash          string `json:"txHash"`
	Sender          string `json:"sender"`
	Value           string `json:"value"`
	ContractBalance string `json:"contractBalance"`
}

// WalletTransaction is a transaction stored in the wallet contract.
type WalletTransaction struct {
	Index            string `json:"index"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Data             string `json:"data"`
	Executed         bool   `json:"executed"`
	NumConfirmations string `json:"numConfirmations"`
}
