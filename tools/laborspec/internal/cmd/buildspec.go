// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/chainspec"
	"github.com/labornetwork/labor-node/db"
	"github.com/labornetwork/labor-node/pkg/lifecycle"
	"github.com/labornetwork/labor-node/pkg/log"
)

var buildSpecCmd = &cobra.Command{
	Use:   "build-spec [--chain id] [-o output-file]",
	Short: "Composes the chain spec of a network.",
	Long: `Composes the chain spec of a network. The chain is a built-in profile (` +
		`dev, local, staging, integration-test, integration-test-two), a yaml parameter file or a json snapshot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chain := _cfg.Chain.Spec
		if _chain != "" {
			chain = _chain
		}
		spec, err := buildSpec(cmd.Context(), chain)
		if err != nil {
			return err
		}
		b, err := spec.JSON()
		if err != nil {
			return err
		}
		if _specOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if err := os.WriteFile(_specOutput, b, 0644); err != nil {
			return err
		}
		log.S().Infof("Wrote chain spec %s to %s", spec.ID, _specOutput)
		return nil
	},
}

var (
	_chain      string
	_specOutput string
	_store      bool
)

func buildSpec(ctx context.Context, chain string) (*chainspec.Spec, error) {
	spec, err := chainspec.Load(chain)
	if err != nil {
		return nil, err
	}
	spec.ForkID = _cfg.Chain.ForkID
	if !_store {
		return spec, nil
	}

	kv, err := db.CreateKVStore(_cfg.DB, _cfg.DB.DbPath)
	if err != nil {
		return nil, err
	}
	store, err := chainspec.NewStore(kv, _cfg.DB.Compressor)
	if err != nil {
		return nil, err
	}
	var lc lifecycle.Lifecycle
	lc.Add(store)
	if err := lc.OnStart(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := lc.OnStop(ctx); err != nil {
			log.L().Error("failed to stop chain spec store", zap.Error(err))
		}
	}()
	if err := store.Put(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func init() {
	buildSpecCmd.Flags().StringVar(&_chain, "chain", "", "chain to build, overrides the configured spec")
	buildSpecCmd.Flags().StringVarP(&_specOutput, "output-file", "o", "", "chain spec output file")
	buildSpecCmd.Flags().BoolVar(&_store, "store", false, "persist the chain spec into the configured db")
	rootCmd.AddCommand(buildSpecCmd)
}
