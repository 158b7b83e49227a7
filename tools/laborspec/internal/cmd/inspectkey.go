// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"io"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/labornetwork/labor-node/pkg/identity"
)

var inspectKeyCmd = &cobra.Command{
	Use:   "inspect-key [seed...]",
	Short: "Shows the accounts and session keys derived from development seeds.",
	Long:  `Shows the stash, controller and the four session keys derived from each development seed, such as Alice.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectKey(cmd.OutOrStdout(), args)
	},
}

func inspectKey(w io.Writer, seeds []string) error {
	tb := table.New("Seed", "Role", "Key").WithWriter(w)
	for _, seed := range seeds {
		b, err := identity.Derive(seed)
		if err != nil {
			return err
		}
		tb.AddRow(seed, "stash", b.Stash)
		tb.AddRow(seed, "controller", b.Controller)
		for _, role := range identity.Roles() {
			tb.AddRow(seed, string(role), b.Key(role))
		}
	}
	tb.Print()
	return nil
}

func init() {
	rootCmd.AddCommand(inspectKeyCmd)
}
