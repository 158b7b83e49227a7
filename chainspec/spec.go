// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

// Package chainspec packages a composed genesis state with the metadata a node needs to join the network.
package chainspec

import (
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/mohae/deepcopy"
	"github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"

	"github.com/labornetwork/labor-node/blockchain/genesis"
)

// ChainType tags the kind of network
type ChainType string

// chain types
const (
	Development ChainType = "Development"
	Local       ChainType = "Local"
	Live        ChainType = "Live"
)

// MaxVerbosity is the highest telemetry verbosity level
const MaxVerbosity = 9

var (
	// ErrInvalidTelemetry indicates a malformed telemetry endpoint
	ErrInvalidTelemetry = errors.New("invalid telemetry endpoint")
	// ErrInvalidBootNode indicates a malformed boot node address
	ErrInvalidBootNode = errors.New("invalid boot node")
	// ErrInvalidSpec indicates malformed chain spec metadata
	ErrInvalidSpec = errors.New("invalid chain spec")
	// ErrInvalidBlockHash indicates a malformed block hash
	ErrInvalidBlockHash = errors.New("invalid block hash")
)

type (
	// TelemetryEndpoint is a telemetry target and the verbosity of what is sent to it
	TelemetryEndpoint struct {
		URL       string `yaml:"url"`
		Verbosity uint8  `yaml:"verbosity"`
	}

	// TelemetryEndpoints is the list of validated telemetry targets
	TelemetryEndpoints []TelemetryEndpoint

	// BlockHash is a block hash rendered as 0x prefixed hex
	BlockHash hash.Hash256

	// ForkBlock pins the expected hash of the block at a height
	ForkBlock struct {
		Height uint64    `yaml:"height"`
		Hash   BlockHash `yaml:"hash"`
	}

	// Extensions are operational overrides carried by the spec
	Extensions struct {
		// ForkBlocks are (height, hash) pins
		ForkBlocks []ForkBlock `json:"forkBlocks"`
		// BadBlocks are hashes to reject
		BadBlocks []BlockHash `json:"badBlocks"`
	}

	// GenesisSource is the genesis of the spec
	GenesisSource struct {
		Runtime *genesis.Genesis `json:"runtime"`
	}

	// Spec is the genesis state paired with the network metadata
	Spec struct {
		Name               string                 `json:"name"`
		ID                 string                 `json:"id"`
		ChainType          ChainType              `json:"chainType"`
		BootNodes          []string               `json:"bootNodes"`
		TelemetryEndpoints TelemetryEndpoints     `json:"telemetryEndpoints"`
		ProtocolID         string                 `json:"protocolId,omitempty"`
		Properties         map[string]interface{} `json:"properties"`
		Extensions
		Genesis GenesisSource `json:"genesis"`
		// ForkID disambiguates forks sharing the genesis, it is handed to the network bootstrap as is
		ForkID string `json:"-"`
	}
)

// NewTelemetryEndpoints validates the endpoints. A target is either a ws(s)/http(s) url or a multiaddr.
func NewTelemetryEndpoints(endpoints ...TelemetryEndpoint) (TelemetryEndpoints, error) {
	for _, e := range endpoints {
		if e.Verbosity > MaxVerbosity {
			return nil, errors.Wrapf(ErrInvalidTelemetry, "verbosity %d of %s exceeds %d", e.Verbosity, e.URL, MaxVerbosity)
		}
		if strings.HasPrefix(e.URL, "/") {
			if _, err := multiaddr.NewMultiaddr(e.URL); err != nil {
				return nil, errors.Wrap(ErrInvalidTelemetry, err.Error())
			}
			continue
		}
		u, err := url.Parse(e.URL)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidTelemetry, err.Error())
		}
		switch u.Scheme {
		case "ws", "wss", "http", "https":
		default:
			return nil, errors.Wrapf(ErrInvalidTelemetry, "unsupported scheme of %s", e.URL)
		}
		if u.Host == "" {
			return nil, errors.Wrapf(ErrInvalidTelemetry, "missing host in %s", e.URL)
		}
	}
	return TelemetryEndpoints(endpoints), nil
}

// MarshalJSON encodes the endpoint as [url, verbosity]
func (e TelemetryEndpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.URL, e.Verbosity})
}

// UnmarshalJSON decodes [url, verbosity]
func (e *TelemetryEndpoint) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return errors.Wrapf(ErrInvalidTelemetry, "expect [url, verbosity], got %s", string(b))
	}
	if err := json.Unmarshal(raw[0], &e.URL); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Verbosity)
}

// ValidateBootNode checks the address is a multiaddr carrying the peer id
func ValidateBootNode(addr string) error {
	ma, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return errors.Wrap(ErrInvalidBootNode, err.Error())
	}
	if _, err := ma.ValueForProtocol(multiaddr.P_P2P); err != nil {
		return errors.Wrapf(ErrInvalidBootNode, "%s has no peer id", addr)
	}
	return nil
}

// HexToBlockHash decodes a 32-byte hash, with or without 0x prefix
func HexToBlockHash(s string) (BlockHash, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 2*len(hash.ZeroHash256) {
		return BlockHash{}, errors.Wrapf(ErrInvalidBlockHash, "hash %s has wrong length", s)
	}
	h, err := hash.HexStringToHash256(s)
	if err != nil {
		return BlockHash{}, errors.Wrap(ErrInvalidBlockHash, err.Error())
	}
	return BlockHash(h), nil
}

// String returns the 0x prefixed hex of the hash
func (h BlockHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler
func (h BlockHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *BlockHash) UnmarshalText(text []byte) error {
	v, err := HexToBlockHash(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// UnmarshalYAML decodes block hashes in yaml documents
func (h *BlockHash) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return h.UnmarshalText([]byte(s))
}

// MarshalJSON encodes the pin as [height, hash]
func (f ForkBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.Height, f.Hash})
}

// UnmarshalJSON decodes [height, hash]
func (f *ForkBlock) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return errors.Wrapf(ErrInvalidSpec, "expect [height, hash], got %s", string(b))
	}
	if err := json.Unmarshal(raw[0], &f.Height); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &f.Hash)
}

// Runtime returns the genesis state
func (s *Spec) Runtime() *genesis.Genesis {
	return s.Genesis.Runtime
}

// Hash returns the genesis hash of the network
func (s *Spec) Hash() hash.Hash256 {
	return s.Genesis.Runtime.Hash()
}

// JSON returns the canonical encoding of the spec
func (s *Spec) JSON() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal chain spec %s", s.ID)
	}
	return b, nil
}

// Validate checks the metadata and the genesis state
func (s *Spec) Validate() error {
	if s.Name == "" || s.ID == "" {
		return errors.Wrap(ErrInvalidSpec, "empty name or id")
	}
	switch s.ChainType {
	case Development, Local, Live:
	default:
		return errors.Wrapf(ErrInvalidSpec, "unknown chain type %s", s.ChainType)
	}
	for _, addr := range s.BootNodes {
		if err := ValidateBootNode(addr); err != nil {
			return err
		}
	}
	if _, err := NewTelemetryEndpoints(s.TelemetryEndpoints...); err != nil {
		return err
	}
	if _, err := json.Marshal(s.Properties); err != nil {
		return errors.Wrap(ErrInvalidSpec, err.Error())
	}
	if s.Genesis.Runtime == nil {
		return errors.Wrap(ErrInvalidSpec, "missing genesis state")
	}
	return s.Genesis.Runtime.Validate()
}

// Copy returns a deep copy of the spec
func (s *Spec) Copy() (*Spec, error) {
	cpy := deepcopy.Copy(*s).(Spec)
	if s.Genesis.Runtime != nil {
		runtime, err := s.Genesis.Runtime.Copy()
		if err != nil {
			return nil, err
		}
		cpy.Genesis.Runtime = runtime
	}
	return &cpy, nil
}
