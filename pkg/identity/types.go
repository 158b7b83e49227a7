// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package identity

import (
	"encoding/hex"
	"strings"

	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
)

const (
	// AccountIDLength is the length of the public key hash identifying an account
	AccountIDLength = 20
	// SessionKeyLength is the length of a role public key
	SessionKeyLength = 32
)

var (
	// ZeroAccount is the account of all zeros
	ZeroAccount AccountID
	// ZeroSessionKey is the session key of all zeros
	ZeroSessionKey SessionKey
	// ErrInvalidAccount indicates the account string or bytes cannot be decoded
	ErrInvalidAccount = errors.New("invalid account")
	// ErrInvalidSessionKey indicates the session key cannot be decoded
	ErrInvalidSessionKey = errors.New("invalid session key")
	// ErrInvalidBundle indicates a malformed validator identity bundle
	ErrInvalidBundle = errors.New("invalid identity bundle")
)

type (
	// AccountID is the public key hash of an account, rendered as an io address
	AccountID [AccountIDLength]byte

	// SessionKey is a 32-byte role public key. Keys supplied as raw hex are not checked to be on the curve.
	SessionKey [SessionKeyLength]byte
)

// BytesToAccountID converts a 20-byte public key hash to AccountID
func BytesToAccountID(b []byte) (AccountID, error) {
	if len(b) != AccountIDLength {
		return ZeroAccount, errors.Wrapf(ErrInvalidAccount, "account length %d", len(b))
	}
	var id AccountID
	copy(id[:], b)
	return id, nil
}

// HexToAccountID decodes a hex encoded public key hash, with or without 0x prefix
func HexToAccountID(s string) (AccountID, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ZeroAccount, errors.Wrap(ErrInvalidAccount, err.Error())
	}
	return BytesToAccountID(b)
}

// ParseAccountID decodes an io address or a hex public key hash
func ParseAccountID(s string) (AccountID, error) {
	if strings.HasPrefix(s, address.MainnetPrefix) || strings.HasPrefix(s, address.TestnetPrefix) {
		addr, err := address.FromString(s)
		if err != nil {
			return ZeroAccount, errors.Wrap(ErrInvalidAccount, err.Error())
		}
		return BytesToAccountID(addr.Bytes())
	}
	return HexToAccountID(s)
}

// Address returns the account as address
func (id AccountID) Address() address.Address {
	addr, err := address.FromBytes(id[:])
	if err != nil {
		// every 20-byte hash is a valid address payload
		panic(errors.Wrapf(err, "failed to convert account %x", id[:]))
	}
	return addr
}

// String returns the io address of the account
func (id AccountID) String() string {
	return id.Address().String()
}

// MarshalText implements encoding.TextMarshaler
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *AccountID) UnmarshalText(text []byte) error {
	v, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// UnmarshalYAML decodes accounts in yaml documents
func (id *AccountID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return id.UnmarshalText([]byte(s))
}

// HexToSessionKey decodes a hex encoded role key, with or without 0x prefix
func HexToSessionKey(s string) (SessionKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ZeroSessionKey, errors.Wrap(ErrInvalidSessionKey, err.Error())
	}
	if len(b) != SessionKeyLength {
		return ZeroSessionKey, errors.Wrapf(ErrInvalidSessionKey, "key length %d", len(b))
	}
	var k SessionKey
	copy(k[:], b)
	return k, nil
}

// String returns the 0x prefixed hex of the key
func (k SessionKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// MarshalText implements encoding.TextMarshaler
func (k SessionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *SessionKey) UnmarshalText(text []byte) error {
	v, err := HexToSessionKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// UnmarshalYAML decodes session keys in yaml documents
func (k *SessionKey) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}
