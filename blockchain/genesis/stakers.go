// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package genesis

import (
	"encoding/json"
	"math/big"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/labornetwork/labor-node/pkg/identity"
)

const (
	_validatorStatus = "Validator"
	_nominatorStatus = "Nominator"
	_idleStatus      = "Idle"
)

type (
	// StakerStatus is the role of a staker, either Validator, Nominator or Idle
	StakerStatus interface {
		stakerStatus() string
	}

	// Validator marks a staker that produces blocks
	Validator struct{}

	// Nominator marks a staker backing the listed validator stashes
	Nominator struct {
		Targets []identity.AccountID
	}

	// Idle marks a bonded staker with no role
	Idle struct{}

	// Staker is a bonded genesis staker
	Staker struct {
		Stash      identity.AccountID
		Controller identity.AccountID
		Value      *big.Int
		Status     StakerStatus
	}
)

func (Validator) stakerStatus() string { return _validatorStatus }

func (Nominator) stakerStatus() string { return _nominatorStatus }

func (Idle) stakerStatus() string { return _idleStatus }

// IsValidator returns true if the staker is a validator
func (s *Staker) IsValidator() bool {
	_, ok := s.Status.(Validator)
	return ok
}

// Targets returns the nominated stashes, nil for non-nominators
func (s *Staker) Targets() []identity.AccountID {
	if n, ok := s.Status.(Nominator); ok {
		return n.Targets
	}
	return nil
}

// MarshalJSON encodes the staker as [stash, controller, value, status]. Unit statuses are encoded as their name,
// a nominator as {"Nominator": [targets]}.
func (s Staker) MarshalJSON() ([]byte, error) {
	var status interface{}
	switch st := s.Status.(type) {
	case Validator, Idle:
		status = st.stakerStatus()
	case Nominator:
		targets := st.Targets
		if targets == nil {
			targets = []identity.AccountID{}
		}
		status = map[string][]identity.AccountID{_nominatorStatus: targets}
	default:
		return nil, errors.Errorf("unknown staker status %T", s.Status)
	}
	return json.Marshal([]interface{}{s.Stash, s.Controller, s.Value, status})
}

// UnmarshalJSON decodes [stash, controller, value, status]
func (s *Staker) UnmarshalJSON(b []byte) error {
	var (
		v      Staker
		value  big.Int
		status json.RawMessage
	)
	if err := decodeTuple(b, &v.Stash, &v.Controller, &value, &status); err != nil {
		return errors.Wrap(err, "failed to decode staker")
	}
	v.Value = &value

	var name string
	if err := json.Unmarshal(status, &name); err == nil {
		switch name {
		case _validatorStatus:
			v.Status = Validator{}
		case _idleStatus:
			v.Status = Idle{}
		default:
			return errors.Errorf("unknown staker status %s", name)
		}
		*s = v
		return nil
	}
	var nominator map[string][]identity.AccountID
	if err := json.Unmarshal(status, &nominator); err != nil {
		return errors.Wrap(err, "failed to decode staker status")
	}
	targets, ok := nominator[_nominatorStatus]
	if !ok || len(nominator) != 1 {
		return errors.Errorf("unknown staker status %s", string(status))
	}
	if targets == nil {
		targets = []identity.AccountID{}
	}
	v.Status = Nominator{Targets: targets}
	*s = v
	return nil
}

// AssignStakers bonds every validator stash as a Validator, then gives every nominator a Nominator status
// targeting a random subset of the validator stashes. Each nominator draws a count in [0, min(MaxNominations,
// len(validators))) followed by that many distinct stashes, all from r. Every staker bonds a fresh copy of stash.
func AssignStakers(
	validators []identity.Bundle,
	nominators []identity.AccountID,
	stash *big.Int,
	r *rand.Rand,
) []Staker {
	stakers := make([]Staker, 0, len(validators)+len(nominators))
	for _, v := range validators {
		stakers = append(stakers, Staker{
			Stash:      v.Stash,
			Controller: v.Controller,
			Value:      new(big.Int).Set(stash),
			Status:     Validator{},
		})
	}

	limit := len(validators)
	if limit > MaxNominations {
		limit = MaxNominations
	}
	for _, n := range nominators {
		targets := []identity.AccountID{}
		if limit > 0 {
			count := r.Intn(limit)
			// distinct indices are distinct stashes, Assemble rejects a repeated validator stash
			for _, i := range r.Perm(len(validators))[:count] {
				targets = append(targets, validators[i].Stash)
			}
		}
		stakers = append(stakers, Staker{
			Stash:      n,
			Controller: n,
			Value:      new(big.Int).Set(stash),
			Status:     Nominator{Targets: targets},
		})
	}
	return stakers
}
