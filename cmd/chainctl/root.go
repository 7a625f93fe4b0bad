package main

import (
	"strings"
	"time"

	"chainapi/pkg/chainclient"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagURL     = "url"
	flagSeed    = "seed"
	flagTimeout = "timeout"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "chainctl",
		Short:         "Command line client for chainapi",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd)
		},
	}
	root.PersistentFlags().String("config", "", "config file (default $HOME/.chainctl.yaml)")
	root.PersistentFlags().String(flagURL, "http://localhost:8080", "chainapi base URL")
	root.PersistentFlags().String(flagSeed, "", "signer seed, hex or mnemonic")
	root.PersistentFlags().Duration(flagTimeout, 3*time.Minute, "request timeout")

	newClient := func() *chainclient.Client {
		return chainclient.New(v.GetString(flagURL),
			chainclient.WithSeed(v.GetString(flagSeed)),
			chainclient.WithTimeout(v.GetDuration(flagTimeout)),
			chainclient.WithRetries(2),
		)
	}
	root.AddCommand(newAddressCmd(newClient), newWalletCmd(newClient), newSalaryCmd(newClient))
	return root
}

// loadConfig layers flags over CHAINCTL_* variables over the config file.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("chainctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".chainctl")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}
