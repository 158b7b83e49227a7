// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package genesis

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/labornetwork/labor-node/pkg/identity"
)

// PerbillAccuracy is the denominator of a Perbill
const PerbillAccuracy = 1_000_000_000

// Perbill is a fraction in parts per billion
type Perbill uint32

// PerbillFromPercent returns the Perbill of a whole percentage, saturating at 100%
func PerbillFromPercent(p uint32) Perbill {
	if p > 100 {
		p = 100
	}
	return Perbill(p * (PerbillAccuracy / 100))
}

// Mul returns the fraction of v, rounded down
func (p Perbill) Mul(v *big.Int) *big.Int {
	r := new(big.Int).Mul(v, big.NewInt(int64(p)))
	return r.Quo(r, big.NewInt(PerbillAccuracy))
}

// tuples are encoded as fixed length json arrays
func decodeTuple(b []byte, fields ...interface{}) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != len(fields) {
		return errors.Errorf("expect tuple of %d elements, got %d", len(fields), len(raw))
	}
	for i := range raw {
		if err := json.Unmarshal(raw[i], fields[i]); err != nil {
			return errors.Wrapf(err, "failed to decode tuple element %d", i)
		}
	}
	return nil
}

// MarshalJSON encodes the balance as [account, amount]
func (ab AccountBalance) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{ab.Account, ab.Amount})
}

// UnmarshalJSON decodes [account, amount]
func (ab *AccountBalance) UnmarshalJSON(b []byte) error {
	var (
		id     identity.AccountID
		amount big.Int
	)
	if err := decodeTuple(b, &id, &amount); err != nil {
		return errors.Wrap(err, "failed to decode balance")
	}
	ab.Account, ab.Amount = id, &amount
	return nil
}

// MarshalJSON encodes the registration as [account, validator, keys]
func (r SessionKeyRegistration) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.Account, r.Validator, r.Keys})
}

// UnmarshalJSON decodes [account, validator, keys]
func (r *SessionKeyRegistration) UnmarshalJSON(b []byte) error {
	var v SessionKeyRegistration
	if err := decodeTuple(b, &v.Account, &v.Validator, &v.Keys); err != nil {
		return errors.Wrap(err, "failed to decode session keys")
	}
	*r = v
	return nil
}

// MarshalJSON encodes the member as [account, bond]
func (m ElectionMember) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{m.Account, m.Bond})
}

// UnmarshalJSON decodes [account, bond]
func (m *ElectionMember) UnmarshalJSON(b []byte) error {
	var (
		id   identity.AccountID
		bond big.Int
	)
	if err := decodeTuple(b, &id, &bond); err != nil {
		return errors.Wrap(err, "failed to decode elections member")
	}
	m.Account, m.Bond = id, &bond
	return nil
}

// MarshalJSON encodes the authority as [key, weight]
func (a BabeAuthority) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Key, a.Weight})
}

// UnmarshalJSON decodes [key, weight]
func (a *BabeAuthority) UnmarshalJSON(b []byte) error {
	return decodeTuple(b, &a.Key, &a.Weight)
}

// MarshalJSON encodes the authority as [key, weight]
func (a GrandpaAuthority) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Key, a.Weight})
}

// UnmarshalJSON decodes [key, weight]
func (a *GrandpaAuthority) UnmarshalJSON(b []byte) error {
	return decodeTuple(b, &a.Key, &a.Weight)
}
