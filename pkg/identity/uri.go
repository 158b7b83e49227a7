// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package identity

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

// DevPhrase is the well-known mnemonic all development seeds are derived from
const DevPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

const (
	_junctionIDLen = 32
	_hardSeparator = "//"
)

// hdkd tags keep the derivation of the two key schemes apart
const (
	_secp256k1HDKD = "Secp256k1HDKD"
	_ed25519HDKD   = "Ed25519HDKD"
)

var (
	// ErrInvalidSeed indicates the seed string cannot be turned into a secret URI
	ErrInvalidSeed = errors.New("invalid seed")
	// ErrInvalidPhrase indicates the phrase part of a secret URI is not a valid mnemonic
	ErrInvalidPhrase = errors.New("invalid mnemonic phrase")
	// ErrSoftJunction indicates a soft junction was used, only hard derivation is supported
	ErrSoftJunction = errors.New("soft junctions are not supported")
)

// secretURI is a parsed "<phrase>//junction//junction" string
type secretURI struct {
	phrase    string
	junctions [][_junctionIDLen]byte
}

func parseSecretURI(uri string) (*secretURI, error) {
	phrase := uri
	path := ""
	if idx := strings.Index(uri, "/"); idx >= 0 {
		phrase, path = uri[:idx], uri[idx:]
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		phrase = DevPhrase
	}
	if !bip39.IsMnemonicValid(phrase) {
		return nil, errors.Wrapf(ErrInvalidPhrase, "uri = %s", uri)
	}
	s := &secretURI{phrase: phrase}
	if path == "" {
		return s, nil
	}
	if !strings.HasPrefix(path, _hardSeparator) {
		return nil, errors.Wrapf(ErrSoftJunction, "uri = %s", uri)
	}
	for _, j := range strings.Split(path[len(_hardSeparator):], _hardSeparator) {
		if j == "" {
			return nil, errors.Wrapf(ErrInvalidSeed, "empty junction in uri %s", uri)
		}
		if strings.Contains(j, "/") {
			return nil, errors.Wrapf(ErrSoftJunction, "junction %s in uri %s", j, uri)
		}
		s.junctions = append(s.junctions, junctionID(j))
	}
	return s, nil
}

// junctionID is the chain code of a hard junction. Numeric junctions are little-endian u64, anything
// else is the compact-encoded string; codes longer than 32 bytes are replaced by their blake2b-256.
func junctionID(j string) [_junctionIDLen]byte {
	var (
		id      [_junctionIDLen]byte
		encoded []byte
	)
	if n, err := strconv.ParseUint(j, 10, 64); err == nil {
		encoded = make([]byte, 8)
		binary.LittleEndian.PutUint64(encoded, n)
	} else {
		encoded = encodeString(j)
	}
	if len(encoded) > _junctionIDLen {
		return blake2b.Sum256(encoded)
	}
	copy(id[:], encoded)
	return id
}

// rootSecret returns the 32-byte mini secret of the phrase
func (s *secretURI) rootSecret() []byte {
	seed := bip39.NewSeed(s.phrase, "")
	return seed[:32]
}

// derive walks the hard junctions starting from the phrase secret
func (s *secretURI) derive(tag string, extra ...[_junctionIDLen]byte) []byte {
	secret := s.rootSecret()
	for _, cc := range append(append([][_junctionIDLen]byte{}, s.junctions...), extra...) {
		secret = hardDerive(tag, secret, cc)
	}
	return secret
}

func hardDerive(tag string, secret []byte, cc [_junctionIDLen]byte) []byte {
	buf := encodeString(tag)
	buf = append(buf, secret...)
	buf = append(buf, cc[:]...)
	h := blake2b.Sum256(buf)
	return h[:]
}

// encodeString is the compact length prefixed encoding of s
func encodeString(s string) []byte {
	n := len(s)
	var prefix []byte
	switch {
	case n < 1<<6:
		prefix = []byte{byte(n << 2)}
	case n < 1<<14:
		prefix = make([]byte, 2)
		binary.LittleEndian.PutUint16(prefix, uint16(n<<2|0b01))
	default:
		prefix = make([]byte, 4)
		binary.LittleEndian.PutUint32(prefix, uint32(n<<2|0b10))
	}
	return append(prefix, s...)
}
