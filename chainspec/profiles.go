// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package chainspec

import (
	_ "embed"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/labornetwork/labor-node/blockchain/genesis"
	"github.com/labornetwork/labor-node/pkg/identity"
	"github.com/labornetwork/labor-node/pkg/log"
)

const (
	// StagingTelemetryURL is the telemetry target of the staging testnet
	StagingTelemetryURL = "wss://telemetry.polkadot.io/submit/"
	// StagingProtocolID is the network protocol id of the staging testnet
	StagingProtocolID = "lbr"
	// TokenSymbol is the symbol of the native token
	TokenSymbol = "LBR"
	// TokenDecimals is the number of decimals of the native token
	TokenDecimals = 6
)

var (
	//go:embed res/staging.yaml
	_stagingYAML []byte
)

type (
	stagingValidator struct {
		Name            string `yaml:"name"`
		identity.Bundle `yaml:",inline"`
	}

	stagingArtifact struct {
		Version    int                `yaml:"version"`
		RootKey    identity.AccountID `yaml:"rootKey"`
		Validators []stagingValidator `yaml:"validators"`
	}
)

func loadStaging(b []byte) (*stagingArtifact, error) {
	var artifact stagingArtifact
	if err := yaml.UnmarshalStrict(b, &artifact); err != nil {
		return nil, errors.Wrap(err, "failed to decode staging validators")
	}
	if len(artifact.Validators) == 0 {
		return nil, genesis.ErrNoValidators
	}
	for _, v := range artifact.Validators {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrapf(err, "staging validator %s", v.Name)
		}
	}
	return &artifact, nil
}

func newSpec(name, id string, chainType ChainType, p genesis.Params) (*Spec, error) {
	g, err := genesis.Assemble(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compose genesis of %s", id)
	}
	return &Spec{
		Name:      name,
		ID:        id,
		ChainType: chainType,
		BootNodes: []string{},
		Genesis:   GenesisSource{Runtime: g},
	}, nil
}

func seedRoot(seed string) (identity.AccountID, error) {
	root, err := identity.AccountFromSeed(seed)
	if err != nil {
		return identity.ZeroAccount, errors.Wrapf(err, "failed to derive root account of %s", seed)
	}
	return root, nil
}

// DevelopmentConfig is the single validator development network, with diagnostic contract logging
func DevelopmentConfig() (*Spec, error) {
	root, err := seedRoot("Alice")
	if err != nil {
		return nil, err
	}
	return newSpec("Labor Development", "labor-dev", Development, genesis.Params{
		Authorities:          genesis.SeedAuthorities("Alice"),
		RootKey:              root,
		EnableDebugExecution: true,
	})
}

// LocalTestnetConfig is the two validator local network
func LocalTestnetConfig() (*Spec, error) {
	root, err := seedRoot("Alice")
	if err != nil {
		return nil, err
	}
	return newSpec("Local Labor Testnet", "local-labor-testnet", Local, genesis.Params{
		Authorities: genesis.SeedAuthorities("Alice", "Bob"),
		RootKey:     root,
	})
}

// StagingTestnetConfig is the public testnet, composed from the embedded validator table
func StagingTestnetConfig() (*Spec, error) {
	artifact, err := loadStaging(_stagingYAML)
	if err != nil {
		log.L().Error("Error when loading staging validators", zap.Error(err))
		return nil, err
	}
	authorities := make([]genesis.Authority, 0, len(artifact.Validators))
	for i := range artifact.Validators {
		authorities = append(authorities, genesis.Authority{Bundle: &artifact.Validators[i].Bundle})
	}
	telemetry, err := NewTelemetryEndpoints(TelemetryEndpoint{URL: StagingTelemetryURL, Verbosity: 0})
	if err != nil {
		return nil, err
	}
	spec, err := newSpec("Labor Testnet", "labor-testnet", Live, genesis.Params{
		Authorities:     authorities,
		RootKey:         artifact.RootKey,
		EndowedAccounts: []identity.AccountID{artifact.RootKey},
	})
	if err != nil {
		return nil, err
	}
	spec.TelemetryEndpoints = telemetry
	spec.ProtocolID = StagingProtocolID
	spec.Properties = map[string]interface{}{
		"tokenSymbol":   TokenSymbol,
		"tokenDecimals": TokenDecimals,
	}
	return spec, nil
}

// IntegrationTestSingleAuthorityConfig is the development network of the integration tests with Alice only
func IntegrationTestSingleAuthorityConfig() (*Spec, error) {
	return integrationTest("Alice")
}

// IntegrationTestTwoAuthoritiesConfig is the development network of the integration tests with Alice and Bob
func IntegrationTestTwoAuthoritiesConfig() (*Spec, error) {
	return integrationTest("Alice", "Bob")
}

func integrationTest(seeds ...string) (*Spec, error) {
	root, err := seedRoot("Alice")
	if err != nil {
		return nil, err
	}
	return newSpec("Labor Integration Test", "labor-test", Development, genesis.Params{
		Authorities: genesis.SeedAuthorities(seeds...),
		RootKey:     root,
	})
}
