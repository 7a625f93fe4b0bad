package contracts

// License contract methods.
const (
	MethodMultisig       = "multisig"
	MethodPayoutContract = "payoutContract"
	MethodGetShare       = "getShare"
	MethodPayout         = "payout"
)

// LicenseABI is the interface expected from the license artifact.
const LicenseABI = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"_multisig","type":"address"},
    {"name":"_owners","type":"address[]"},
    {"name":"_shares","type":"uint256[]"},
    {"name":"_payoutContract","type":"address"}]},
  {"type":"function","name":"multisig","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"address"}]},
  {"type":"function","name":"payoutContract","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"address"}]},
  {"type":"function","name":"getOwners","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"address[]"}]},
  {"type":"function","name":"getShare","stateMutability":"view","inputs":[
    {"name":"owner","type":"address"}],"outputs":[
    {"name":"","type":"uint256"}]},
  {"type":"function","name":"payout","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`
