package main

import (
	"strconv"

	"chainapi/pkg/chainclient"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type clientFactory func() *chainclient.Client

func newAddressCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "address <seed phrase>",
		Short: "Resolve the address the service derives from a seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := newClient().AddressFromSeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			pterm.Println(address)
			return nil
		},
	}
}

func newWalletCmd(newClient clientFactory) *cobra.Command {
	wallet := &cobra.Command{
		Use:   "wallet",
		Short: "Multi-sig wallet operations",
	}

	var (
		owners        []string
		confirmations uint64
	)
	deploy := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a new wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			spinner, _ := pterm.DefaultSpinner.Start("deploying wallet")
			address, err := newClient().DeployWallet(cmd.Context(), owners, confirmations)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success("wallet deployed at " + address)
			return nil
		},
	}
	deploy.Flags().StringSliceVar(&owners, "owner", nil, "owner address, repeatable")
	deploy.Flags().Uint64Var(&confirmations, "confirmations", 1, "confirmations required per transaction")
	_ = deploy.MarkFlagRequired("owner")

	info := &cobra.Command{
		Use:   "info <wallet>",
		Short: "Show owners, balance and transaction count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			owners, err := c.Owners(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			balance, err := c.Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			count, err := c.TransactionCount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := pterm.TableData{{"field", "value"}, {"balance (wei)", balance}, {"transactions", count}}
			for i, owner := range owners {
				rows = append(rows, []string{"owner " + strconv.Itoa(i), owner})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	var (
		destination string
		value       string
		data        string
		idemKey     string
	)
	submit := &cobra.Command{
		Use:   "submit <wallet>",
		Short: "Submit a transaction to the wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().Submit(cmd.Context(), chainclient.SubmitRequest{
				Wallet:         args[0],
				Destination:    destination,
				Value:          value,
				Data:           data,
				IdempotencyKey: idemKey,
			})
			if err != nil {
				return err
			}
			pterm.Success.Printfln("submitted transaction %s in %s", result.TxIndex, result.TxHash)
			return nil
		},
	}
	submit.Flags().StringVar(&destination, "to", "", "destination address")
	submit.Flags().StringVar(&value, "value", "0", "value in wei")
	submit.Flags().StringVar(&data, "data", "0x", "hex call data")
	submit.Flags().StringVar(&idemKey, "idempotency-key", "", "replay key for safe retries")

	confirm := indexCmd("confirm", "Confirm a pending transaction", func(cmd *cobra.Command, w string, index uint64) error {
		result, err := newClient().Confirm(cmd.Context(), w, index)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("confirmed transaction %s in %s", result.TxIndex, result.TxHash)
		return nil
	})
	revoke := indexCmd("revoke", "Revoke a confirmation", func(cmd *cobra.Command, w string, index uint64) error {
		result, err := newClient().Revoke(cmd.Context(), w, index)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("revoked confirmation of %s in %s", result.TxIndex, result.TxHash)
		return nil
	})

	var isDeploy bool
	execute := indexCmd("execute", "Execute a confirmed transaction", func(cmd *cobra.Command, w string, index uint64) error {
		result, err := newClient().Execute(cmd.Context(), w, index, isDeploy)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("executed transaction %s in %s", result.TxIndex, result.TxHash)
		if result.DeployedAddress != "" {
			pterm.Info.Printfln("contract deployed at %s", result.DeployedAddress)
		}
		return nil
	})
	execute.Flags().BoolVar(&isDeploy, "deploy", false, "deploy the transaction data as a contract")

	deposit := &cobra.Command{
		Use:   "deposit <wallet> <ether>",
		Short: "Send ether to the wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().Deposit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			pterm.Success.Printfln("deposited %s wei in %s, wallet balance %s", result.Value, result.TxHash, result.ContractBalance)
			return nil
		},
	}

	wallet.AddCommand(deploy, info, submit, confirm, revoke, execute, deposit)
	return wallet
}

func newSalaryCmd(newClient clientFactory) *cobra.Command {
	salary := &cobra.Command{
		Use:   "salary",
		Short: "Payroll contract operations",
	}
	deploy := &cobra.Command{
		Use:   "deploy <authorized wallet>",
		Short: "Deploy a payroll contract to use as a license payrollAddress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner, _ := pterm.DefaultSpinner.Start("deploying payroll contract")
			address, err := newClient().DeploySalary(cmd.Context(), args[0])
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success("payroll contract deployed at " + address)
			return nil
		},
	}
	salary.AddCommand(deploy)
	return salary
}

func indexCmd(use, short string, run func(cmd *cobra.Command, wallet string, index uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <wallet> <index>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			return run(cmd, args[0], index)
		},
	}
}
