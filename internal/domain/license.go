package domain

// LicenseDeployment holds the constructor arguments of a license contract.
type LicenseDeployment struct {
	MultiSigWallet string
	Owners         []string
	Shares         []uint64
	PayrollAddress string
}

// LicenseInfo is the on-chain state of a license contract.
type LicenseInfo struct {
	ContractAddress string   `json:"contractAddress"`
	MultiSigWallet  string   `json:"multiSigWallet"`
	PayrollAddress  string   `json:"payrollAddress"`
	Owners          []string `json:"owners"`
	Shares          []string `json:"shares"`
}
