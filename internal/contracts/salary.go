package contracts

// SalaryABI is the interface expected from the payroll artifact. The deployed
// address is the payroll a license pays out to.
const SalaryABI = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"_authorizedWallet","type":"address"}]}
]`
