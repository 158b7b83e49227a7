// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package genesis

import (
	"encoding/hex"
	"math/big"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/pkg/identity"
	"github.com/labornetwork/labor-node/pkg/log"
)

var (
	// ErrNoValidators indicates a genesis without any validator
	ErrNoValidators = errors.New("no validators")
	// ErrInvalidParams indicates malformed composition parameters
	ErrInvalidParams = errors.New("invalid genesis parameters")
)

type (
	// Authority is a validator given either as a development seed or as an explicit identity bundle
	Authority struct {
		Seed   string           `yaml:"seed"`
		Bundle *identity.Bundle `yaml:"bundle"`
	}

	// Params are the human-chosen inputs of a genesis composition
	Params struct {
		Authorities []Authority
		Nominators  []identity.AccountID
		RootKey     identity.AccountID
		// EndowedAccounts defaults to DefaultEndowedAccounts when nil
		EndowedAccounts      []identity.AccountID
		EnableDebugExecution bool
		// Rand draws the nominations, a time seeded source is used when nil
		Rand *rand.Rand
	}
)

// SeedAuthorities returns the authorities of the development seeds
func SeedAuthorities(seeds ...string) []Authority {
	ret := make([]Authority, 0, len(seeds))
	for _, s := range seeds {
		ret = append(ret, Authority{Seed: s})
	}
	return ret
}

// Resolve returns the identity bundle of the authority
func (a Authority) Resolve() (identity.Bundle, error) {
	switch {
	case a.Seed != "" && a.Bundle != nil:
		return identity.Bundle{}, errors.Wrap(ErrInvalidParams, "authority has both seed and bundle")
	case a.Seed != "":
		return identity.Derive(a.Seed)
	case a.Bundle != nil:
		if err := a.Bundle.Validate(); err != nil {
			return identity.Bundle{}, err
		}
		return *a.Bundle, nil
	}
	return identity.Bundle{}, errors.Wrap(ErrInvalidParams, "authority has neither seed nor bundle")
}

// Assemble derives the validator identities, builds the participant set, assigns the stakers and composes the
// genesis state
func Assemble(p Params) (*Genesis, error) {
	if len(p.Authorities) == 0 {
		return nil, ErrNoValidators
	}
	validators := make([]identity.Bundle, 0, len(p.Authorities))
	for i, a := range p.Authorities {
		b, err := a.Resolve()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve authority %d", i)
		}
		validators = append(validators, b)
	}
	stashes := make([]identity.AccountID, 0, len(validators))
	controllers := make([]identity.AccountID, 0, len(validators))
	for _, v := range validators {
		stashes = append(stashes, v.Stash)
		controllers = append(controllers, v.Controller)
	}
	// nominators bond themselves as stash and controller
	if dup, ok := firstDuplicate(stashes, p.Nominators); ok {
		return nil, errors.Wrapf(ErrInvalidParams, "stash %s is bonded twice", dup)
	}
	if dup, ok := firstDuplicate(controllers, p.Nominators); ok {
		return nil, errors.Wrapf(ErrInvalidParams, "controller %s is bonded twice", dup)
	}

	accounts, err := BuildAccountSet(p.RootKey, p.EndowedAccounts, stashes, controllers, p.Nominators)
	if err != nil {
		return nil, err
	}
	r := p.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := log.Logger("genesis")
	stakers := AssignStakers(validators, p.Nominators, Stash, r)
	for _, s := range stakers[len(validators):] {
		logger.Debug("Drew nominations", zap.Stringer("nominator", s.Stash), zap.Int("targets", len(s.Targets())))
	}

	g, err := Compose(validators, stakers, accounts, p.RootKey, p.EnableDebugExecution)
	if err != nil {
		return nil, err
	}
	h := g.Hash()
	logger.Info("Composed genesis state",
		zap.Int("accounts", accounts.Len()),
		zap.Int("validators", len(validators)),
		zap.Int("nominators", len(p.Nominators)),
		zap.String("hash", hex.EncodeToString(h[:])))
	return g, nil
}

// Compose builds the composite genesis state out of the resolved validators, stakers and participants, in one
// pass. The state is validated before it is returned.
func Compose(
	validators []identity.Bundle,
	stakers []Staker,
	accounts *AccountSet,
	root identity.AccountID,
	enableDebugExecution bool,
) (*Genesis, error) {
	if len(validators) == 0 {
		return nil, ErrNoValidators
	}
	if accounts == nil || !accounts.Contains(root) {
		return nil, errors.Wrapf(ErrInvalidParams, "root account %s is not a participant", root)
	}

	participants := accounts.Accounts()
	balances := make([]AccountBalance, 0, len(participants))
	for _, id := range participants {
		balances = append(balances, AccountBalance{Account: id, Amount: new(big.Int).Set(Endowment)})
	}

	invulnerables := make([]identity.AccountID, 0, len(validators))
	sessions := make([]SessionKeyRegistration, 0, len(validators))
	for _, v := range validators {
		invulnerables = append(invulnerables, v.Stash)
		sessions = append(sessions, SessionKeyRegistration{
			Account:   v.Stash,
			Validator: v.Stash,
			Keys:      v.SessionKeys,
		})
	}
	if stakers == nil {
		stakers = []Staker{}
	}

	half := accounts.FirstHalf()
	members := make([]ElectionMember, 0, len(half))
	for _, id := range half {
		members = append(members, ElectionMember{Account: id, Bond: new(big.Int).Set(Stash)})
	}
	schedule := DefaultSchedule()
	schedule.EnablePrintln = enableDebugExecution

	g := &Genesis{
		Balances: Balances{Balances: balances},
		Indices:  Indices{Indices: []IndexAssignment{}},
		Session:  Session{Keys: sessions},
		Staking: Staking{
			ValidatorCount:        uint32(2 * len(validators)),
			MinimumValidatorCount: uint32(len(validators)),
			Invulnerables:         invulnerables,
			ForceEra:              "NotForcing",
			SlashRewardFraction:   PerbillFromPercent(SlashRewardPercent),
			CanceledPayout:        big.NewInt(0),
			HistoryDepth:          HistoryDepth,
			Stakers:               stakers,
		},
		Elections:           Elections{Members: members},
		Council:             Collective{Members: []identity.AccountID{}},
		TechnicalCommittee:  Collective{Members: accounts.FirstHalf()},
		Contracts:           Contracts{CurrentSchedule: schedule},
		Sudo:                Sudo{Key: root},
		Babe:                Babe{Authorities: []BabeAuthority{}, EpochConfig: GenesisEpochConfig()},
		ImOnline:            ImOnline{Keys: []identity.SessionKey{}},
		AuthorityDiscovery:  AuthorityDiscovery{Keys: []identity.SessionKey{}},
		Grandpa:             Grandpa{Authorities: []GrandpaAuthority{}},
		TechnicalMembership: Collective{Members: []identity.AccountID{}},
		Society: Society{
			Members:    accounts.FirstHalf(),
			Pot:        big.NewInt(0),
			MaxMembers: SocietyMaxMembers,
		},
		Vesting: Vesting{Vesting: []VestingSchedule{}},
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
