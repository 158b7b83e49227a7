// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package chainspec

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/labornetwork/labor-node/blockchain/genesis"
	"github.com/labornetwork/labor-node/pkg/identity"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	for id, expected := range map[string]string{
		"dev":                  "labor-dev",
		"local":                "local-labor-testnet",
		"":                     "labor-testnet",
		"staging":              "labor-testnet",
		"integration-test":     "labor-test",
		"integration-test-two": "labor-test",
	} {
		spec, err := Load(id)
		require.NoError(err, id)
		require.Equal(expected, spec.ID, id)
	}
	require.Len(ProfileIDs(), 5)

	_, err := Load("mainnet")
	require.Equal(ErrUnknownChain, errors.Cause(err))

	dev, err := DevelopmentConfig()
	require.NoError(err)
	b, err := dev.JSON()
	require.NoError(err)
	spec, err := Load(writeFile(t, "dev.json", string(b)))
	require.NoError(err)
	require.Equal(dev.Hash(), spec.Hash())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(err)
}

func TestFromJSON(t *testing.T) {
	require := require.New(t)

	_, err := FromJSON([]byte(`{"name":"x","id":"x","genesis":{"raw":{"top":{}}}}`))
	require.Equal(ErrRawGenesis, err)
	_, err = FromJSON([]byte(`{"name":`))
	require.Error(err)
	_, err = FromJSON([]byte(`{"name":"x","id":"x","chainType":"Local","genesis":{}}`))
	require.Equal(ErrInvalidSpec, errors.Cause(err))
}

func TestPeek(t *testing.T) {
	require := require.New(t)

	dev, err := DevelopmentConfig()
	require.NoError(err)
	b, err := dev.JSON()
	require.NoError(err)

	id, err := Peek(b, "id")
	require.NoError(err)
	require.Equal("labor-dev", id)
	sudo, err := Peek(b, "genesis.runtime.palletSudo.key")
	require.NoError(err)
	require.Equal(identity.MustDerive("Alice").Controller.String(), sudo)
	count, err := Peek(b, "genesis.runtime.palletBalances.balances.#")
	require.NoError(err)
	require.Equal("12", count)

	_, err = Peek(b, "genesis.runtime.palletFoo")
	require.Equal(ErrNotExist, errors.Cause(err))
	_, err = Peek([]byte("{"), "id")
	require.Equal(ErrInvalidSpec, errors.Cause(err))
}

func TestFromParamsFile(t *testing.T) {
	require := require.New(t)

	custom := identity.MustDerive("Custom")
	nominators := []identity.AccountID{identity.MustDerive("N1").Controller, identity.MustDerive("N2").Controller}
	content := fmt.Sprintf(`name: Labor Custom
id: labor-custom
validators:
  - seed: Alice
  - bundle:
      stash: "%s"
      controller: "%s"
      grandpa: "%s"
      babe: "%s"
      imOnline: "%s"
      authorityDiscovery: "%s"
nominators:
  - "%s"
  - "%s"
rootSeed: Alice
endowedAccounts: []
bootNodes:
  - %s
telemetryEndpoints:
  - url: wss://telemetry.example.com/submit/
    verbosity: 2
protocolId: lbc
properties:
  tokenSymbol: LBC
  tokenDecimals: 12
forkBlocks:
  - height: 42
    hash: "0x22cd0c2d1f7d65298cec7599e2d0e3c650dd8b4ed2b1c816d909026c60d785b2"
badBlocks:
  - "0x22cd0c2d1f7d65298cec7599e2d0e3c650dd8b4ed2b1c816d909026c60d785b2"
nominationSeed: 7
`,
		custom.Stash, custom.Controller,
		custom.Grandpa, custom.Babe, custom.ImOnline, custom.AuthorityDiscovery,
		nominators[0], nominators[1], _peer,
	)
	path := writeFile(t, "custom.yaml", content)

	spec, err := Load(path)
	require.NoError(err)
	require.Equal("Labor Custom", spec.Name)
	require.Equal("labor-custom", spec.ID)
	require.Equal(Local, spec.ChainType)
	require.Equal([]string{_peer}, spec.BootNodes)
	require.Equal(TelemetryEndpoints{{URL: "wss://telemetry.example.com/submit/", Verbosity: 2}}, spec.TelemetryEndpoints)
	require.Equal("lbc", spec.ProtocolID)
	require.Equal("LBC", spec.Properties["tokenSymbol"])
	require.Len(spec.ForkBlocks, 1)
	require.Equal(uint64(42), spec.ForkBlocks[0].Height)
	require.Equal(spec.ForkBlocks[0].Hash, spec.BadBlocks[0])

	alice := identity.MustDerive("Alice")
	g := spec.Runtime()
	require.Equal(alice.Controller, g.Sudo.Key)
	require.Equal([]identity.AccountID{alice.Stash, custom.Stash}, g.Staking.Invulnerables)
	require.Len(g.Staking.Stakers, 4)
	// root, two stashes, custom controller (Alice is root), two nominators
	require.Len(g.Balances.Balances, 6)
	for _, s := range g.Staking.Stakers[2:] {
		require.Less(len(s.Targets()), 2)
	}

	// a fixed nomination seed reproduces the genesis
	again, err := FromParamsFile(path)
	require.NoError(err)
	require.Equal(spec.Hash(), again.Hash())
}

func TestFromParamsErrors(t *testing.T) {
	require := require.New(t)

	bothRoots := writeFile(t, "both.yaml", `name: x
id: x
validators:
  - seed: Alice
rootSeed: Alice
rootKey: "0x1c80c67c191e9e6b29d3f2efb102ca0e2b53c558"
`)
	_, err := FromParamsFile(bothRoots)
	require.Equal(genesis.ErrInvalidParams, errors.Cause(err))

	noRoot := writeFile(t, "noroot.yaml", "name: x\nid: x\nvalidators:\n  - seed: Alice\n")
	_, err = FromParamsFile(noRoot)
	require.Equal(genesis.ErrInvalidParams, errors.Cause(err))

	noValidators := writeFile(t, "novalidators.yaml", "name: x\nid: x\nrootSeed: Alice\n")
	_, err = FromParamsFile(noValidators)
	require.Equal(genesis.ErrNoValidators, errors.Cause(err))

	badTelemetry := writeFile(t, "telemetry.yaml", `name: x
id: x
rootSeed: Alice
validators:
  - seed: Alice
telemetryEndpoints:
  - url: telemetry.example.com
`)
	_, err = FromParamsFile(badTelemetry)
	require.Equal(ErrInvalidTelemetry, errors.Cause(err))

	badChainType := writeFile(t, "type.yaml", "name: x\nid: x\nchainType: Mainnet\nrootSeed: Alice\nvalidators:\n  - seed: Alice\n")
	_, err = FromParamsFile(badChainType)
	require.Equal(ErrInvalidSpec, errors.Cause(err))

	_, err = FromParamsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(err)
}
