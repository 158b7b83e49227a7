// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/labornetwork/labor-node/chainspec"
)

var checkSpecCmd = &cobra.Command{
	Use:   "check-spec [spec-file]",
	Short: "Validates a chain spec snapshot and prints its genesis hash.",
	Long:  `Validates a chain spec snapshot and prints its genesis hash. With --peek, prints one field of the snapshot instead.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkSpec(cmd.OutOrStdout(), args[0], _peek)
	},
}

var _peek string

func checkSpec(w io.Writer, path, peek string) error {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "failed to read chain spec %s", path)
	}
	if peek != "" {
		v, err := chainspec.Peek(b, peek)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
		return nil
	}
	spec, err := chainspec.FromJSON(b)
	if err != nil {
		return err
	}
	h := spec.Hash()
	g := spec.Runtime()
	fmt.Fprintf(w, "name: %s\n", spec.Name)
	fmt.Fprintf(w, "id: %s\n", spec.ID)
	fmt.Fprintf(w, "chainType: %s\n", spec.ChainType)
	fmt.Fprintf(w, "participants: %d\n", len(g.Balances.Balances))
	fmt.Fprintf(w, "validators: %d\n", g.Staking.MinimumValidatorCount)
	fmt.Fprintf(w, "genesisHash: 0x%s\n", hex.EncodeToString(h[:]))
	return nil
}

func init() {
	checkSpecCmd.Flags().StringVar(&_peek, "peek", "", "gjson path of a field to print, such as genesis.runtime.palletSudo.key")
	rootCmd.AddCommand(checkSpecCmd)
}
