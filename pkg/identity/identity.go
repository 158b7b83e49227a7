// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

// Package identity derives accounts and validator session keys from secret URIs.
package identity

import (
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// StashJunction is appended to a seed to derive its economically separate stash account
const StashJunction = "stash"

// Key type ids of the four session roles, also used as the role junction
const (
	Finality           KeyType = "gran"
	BlockProduction    KeyType = "babe"
	Liveness           KeyType = "imon"
	AuthorityDiscovery KeyType = "audi"
)

type (
	// KeyType names a session key role
	KeyType string

	// SessionKeys are the four role keys a validator registers for a session
	SessionKeys struct {
		Grandpa            SessionKey `json:"grandpa" yaml:"grandpa"`
		Babe               SessionKey `json:"babe" yaml:"babe"`
		ImOnline           SessionKey `json:"im_online" yaml:"imOnline"`
		AuthorityDiscovery SessionKey `json:"authority_discovery" yaml:"authorityDiscovery"`
	}

	// Bundle is the full consensus identity of one validator
	Bundle struct {
		Stash      AccountID `json:"stash" yaml:"stash"`
		Controller AccountID `json:"controller" yaml:"controller"`
		SessionKeys `yaml:",inline"`
	}
)

// Roles returns the key types in registration order
func Roles() []KeyType {
	return []KeyType{Finality, BlockProduction, Liveness, AuthorityDiscovery}
}

// Derive returns the validator identity of a development seed such as "Alice". The controller is derived
// from "//<seed>", the stash from "//<seed>//stash", and each role key from "//<seed>//<key type>".
func Derive(seed string) (Bundle, error) {
	if seed == "" {
		return Bundle{}, errors.Wrap(ErrInvalidSeed, "empty seed")
	}
	controller, err := AccountFromSeed(seed)
	if err != nil {
		return Bundle{}, err
	}
	stash, err := AccountFromSeed(seed + _hardSeparator + StashJunction)
	if err != nil {
		return Bundle{}, err
	}
	keys, err := SessionKeysFromSeed(seed)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Stash:       stash,
		Controller:  controller,
		SessionKeys: keys,
	}, nil
}

// MustDerive is Derive for compile-time constant seeds
func MustDerive(seed string) Bundle {
	b, err := Derive(seed)
	if err != nil {
		panic(errors.Wrapf(err, "failed to derive identity of seed %s", seed))
	}
	return b
}

// AccountFromSeed returns the account of the development seed
func AccountFromSeed(seed string) (AccountID, error) {
	return AccountFromURI(_hardSeparator + seed)
}

// AccountFromURI returns the account of a full secret URI
func AccountFromURI(uri string) (AccountID, error) {
	s, err := parseSecretURI(uri)
	if err != nil {
		return ZeroAccount, err
	}
	sk, err := crypto.BytesToPrivateKey(s.derive(_secp256k1HDKD))
	if err != nil {
		return ZeroAccount, errors.Wrapf(err, "failed to construct account key of %s", uri)
	}
	defer sk.Zero()
	return BytesToAccountID(sk.PublicKey().Hash())
}

// SessionKeysFromSeed returns the four role keys of the development seed
func SessionKeysFromSeed(seed string) (SessionKeys, error) {
	s, err := parseSecretURI(_hardSeparator + seed)
	if err != nil {
		return SessionKeys{}, err
	}
	var keys [4]SessionKey
	for i, role := range Roles() {
		secret := s.derive(_ed25519HDKD, junctionID(string(role)))
		pk := ed25519.NewKeyFromSeed(secret).Public().(ed25519.PublicKey)
		copy(keys[i][:], pk)
	}
	return SessionKeys{
		Grandpa:            keys[0],
		Babe:               keys[1],
		ImOnline:           keys[2],
		AuthorityDiscovery: keys[3],
	}, nil
}

// Key returns the role key of the given type
func (k SessionKeys) Key(t KeyType) SessionKey {
	switch t {
	case Finality:
		return k.Grandpa
	case BlockProduction:
		return k.Babe
	case Liveness:
		return k.ImOnline
	case AuthorityDiscovery:
		return k.AuthorityDiscovery
	}
	return ZeroSessionKey
}

// Distinct checks that no role key is zero or shared with another role
func (k SessionKeys) Distinct() bool {
	seen := make(map[SessionKey]struct{}, 4)
	for _, role := range Roles() {
		key := k.Key(role)
		if key == ZeroSessionKey {
			return false
		}
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// Validate checks the bundle carries non-zero accounts and four distinct role keys
func (b Bundle) Validate() error {
	if b.Stash == ZeroAccount || b.Controller == ZeroAccount {
		return errors.Wrap(ErrInvalidBundle, "zero stash or controller account")
	}
	if !b.Distinct() {
		return errors.Wrapf(ErrInvalidBundle, "session keys of %s are not distinct", b.Stash)
	}
	return nil
}
