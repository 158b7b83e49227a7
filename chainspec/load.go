// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package chainspec

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/config"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/blockchain/genesis"
	"github.com/labornetwork/labor-node/pkg/identity"
	"github.com/labornetwork/labor-node/pkg/log"
)

var (
	// ErrUnknownChain indicates a chain id that is neither a profile nor a file
	ErrUnknownChain = errors.New("unknown chain")
	// ErrRawGenesis indicates a snapshot carrying raw storage instead of the runtime genesis
	ErrRawGenesis = errors.New("raw genesis is not supported")
	// ErrNotExist indicates a field missing from a snapshot
	ErrNotExist = errors.New("field does not exist")
)

// ProfileIDs returns the names accepted by Load for the built-in profiles
func ProfileIDs() []string {
	return []string{"dev", "local", "staging", "integration-test", "integration-test-two"}
}

// Load returns the spec of a built-in profile, a custom parameter file (.yaml/.yml) or a JSON snapshot file.
// The empty id is the staging testnet.
func Load(id string) (*Spec, error) {
	switch id {
	case "dev":
		return DevelopmentConfig()
	case "local":
		return LocalTestnetConfig()
	case "", "staging":
		return StagingTestnetConfig()
	case "integration-test":
		return IntegrationTestSingleAuthorityConfig()
	case "integration-test-two":
		return IntegrationTestTwoAuthoritiesConfig()
	}
	switch strings.ToLower(filepath.Ext(id)) {
	case ".yaml", ".yml":
		return FromParamsFile(id)
	case ".json":
		return FromFile(id)
	}
	return nil, errors.Wrapf(ErrUnknownChain, "chain %s", id)
}

// FromJSON decodes a snapshot, bypassing composition
func FromJSON(b []byte) (*Spec, error) {
	if gjson.GetBytes(b, "genesis.raw").Exists() {
		return nil, ErrRawGenesis
	}
	var spec Spec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal chain spec")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// FromFile decodes a snapshot file
func FromFile(path string) (*Spec, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read chain spec %s", path)
	}
	return FromJSON(b)
}

// Peek returns a field of a snapshot without decoding it, path is in gjson syntax such as "genesis.runtime.palletSudo.key"
func Peek(b []byte, path string) (string, error) {
	if !gjson.ValidBytes(b) {
		return "", errors.Wrap(ErrInvalidSpec, "malformed json")
	}
	r := gjson.GetBytes(b, path)
	if !r.Exists() {
		return "", errors.Wrapf(ErrNotExist, "path %s", path)
	}
	return r.String(), nil
}

type (
	// Params is the yaml document of a custom network
	Params struct {
		Name                 string                 `yaml:"name"`
		ID                   string                 `yaml:"id"`
		ChainType            ChainType              `yaml:"chainType"`
		Validators           []genesis.Authority    `yaml:"validators"`
		Nominators           []identity.AccountID   `yaml:"nominators"`
		RootKey              *identity.AccountID    `yaml:"rootKey"`
		RootSeed             string                 `yaml:"rootSeed"`
		EndowedAccounts      []identity.AccountID   `yaml:"endowedAccounts"`
		EnableDebugExecution bool                   `yaml:"enableDebugExecution"`
		BootNodes            []string               `yaml:"bootNodes"`
		TelemetryEndpoints   []TelemetryEndpoint    `yaml:"telemetryEndpoints"`
		ProtocolID           string                 `yaml:"protocolId"`
		Properties           map[string]interface{} `yaml:"properties"`
		ForkBlocks           []ForkBlock            `yaml:"forkBlocks"`
		BadBlocks            []BlockHash            `yaml:"badBlocks"`
		// NominationSeed fixes the nomination draw so the snapshot can be reproduced
		NominationSeed *int64 `yaml:"nominationSeed"`
	}
)

// DefaultParams are the values a parameter file is applied over
var DefaultParams = map[string]interface{}{
	"chainType": string(Local),
}

// FromParamsFile composes the spec of a custom network
func FromParamsFile(path string) (*Spec, error) {
	yaml, err := config.NewYAML(config.Static(DefaultParams), config.File(path))
	if err != nil {
		return nil, errors.Wrap(err, "error when constructing chain params in yaml")
	}
	var p Params
	if err := yaml.Get(config.Root).Populate(&p); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml chain params to struct")
	}
	return FromParams(&p)
}

// FromParams composes the spec of a custom network
func FromParams(p *Params) (*Spec, error) {
	root, err := p.root()
	if err != nil {
		return nil, err
	}
	gp := genesis.Params{
		Authorities:          p.Validators,
		Nominators:           p.Nominators,
		RootKey:              root,
		EndowedAccounts:      p.EndowedAccounts,
		EnableDebugExecution: p.EnableDebugExecution,
	}
	if p.NominationSeed != nil {
		gp.Rand = rand.New(rand.NewSource(*p.NominationSeed))
	} else if len(p.Nominators) > 0 {
		log.Logger("chainspec").Warn("Nominations are drawn from an unseeded source, the genesis cannot be reproduced",
			zap.String("chain", p.ID))
	}

	spec, err := newSpec(p.Name, p.ID, p.ChainType, gp)
	if err != nil {
		return nil, err
	}
	spec.TelemetryEndpoints, err = NewTelemetryEndpoints(p.TelemetryEndpoints...)
	if err != nil {
		return nil, err
	}
	if p.BootNodes != nil {
		spec.BootNodes = p.BootNodes
	}
	spec.ProtocolID = p.ProtocolID
	spec.Properties = p.Properties
	spec.ForkBlocks = p.ForkBlocks
	spec.BadBlocks = p.BadBlocks
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *Params) root() (identity.AccountID, error) {
	switch {
	case p.RootKey != nil && p.RootSeed != "":
		return identity.ZeroAccount, errors.Wrap(genesis.ErrInvalidParams, "both rootKey and rootSeed are set")
	case p.RootKey != nil:
		return *p.RootKey, nil
	case p.RootSeed != "":
		return seedRoot(p.RootSeed)
	}
	return identity.ZeroAccount, errors.Wrap(genesis.ErrInvalidParams, "missing rootKey or rootSeed")
}
