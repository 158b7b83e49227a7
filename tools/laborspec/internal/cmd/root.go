// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/config"
	"github.com/labornetwork/labor-node/pkg/log"
)

var (
	_configPaths []string
	_cfg         = config.Default
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "laborspec [command] [flags]",
	Short: "Command-line interface for Labor chain specs",
	Long:  "laborspec is a command-line interface to compose, inspect and check the genesis of Labor networks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(_configPaths)
		if err != nil {
			return err
		}
		if err := log.InitLoggers(cfg.Log, cfg.SubLogs); err != nil {
			return err
		}
		_cfg = cfg
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&_configPaths, "config-path", nil, "config files applied over the defaults")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.L().Fatal("failed to run command", zap.Error(err))
	}
}
