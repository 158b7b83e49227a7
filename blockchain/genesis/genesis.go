// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package genesis

import (
	"encoding/json"
	"math/big"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/pkg/identity"
	"github.com/labornetwork/labor-node/pkg/log"
	"github.com/labornetwork/labor-node/pkg/unit"
)

const (
	// MaxNominations is the maximum number of validators a nominator may target
	MaxNominations = 16
	// SlashRewardPercent is the share of a slash paid to the reporters
	SlashRewardPercent = 10
	// SocietyMaxMembers caps the society membership
	SocietyMaxMembers = 999
	// HistoryDepth is the number of eras kept in staking history
	HistoryDepth = 84
	// ScheduleVersion is the version of the default contracts schedule
	ScheduleVersion = 0
)

var (
	// Endowment is the genesis balance of every participant
	Endowment = unit.ConvertDollarsToBalance(10_000_000)
	// Stash is the amount bonded by every staker and every elections member
	Stash = new(big.Int).Div(Endowment, big.NewInt(1000))

	// ErrInvalidGenesis indicates a composed state violating a cross-subsystem invariant
	ErrInvalidGenesis = errors.New("invalid genesis state")
)

type (
	// Genesis is the composite genesis state of the runtime. All the nodes participating into the same network
	// should start from EXACTLY SAME genesis state.
	Genesis struct {
		System              System             `json:"frameSystem"`
		Balances            Balances           `json:"palletBalances"`
		Indices             Indices            `json:"palletIndices"`
		Session             Session            `json:"palletSession"`
		Staking             Staking            `json:"palletStaking"`
		Democracy           Democracy          `json:"palletDemocracy"`
		Elections           Elections          `json:"palletElectionsPhragmen"`
		Council             Collective         `json:"palletCollectiveInstance1"`
		TechnicalCommittee  Collective         `json:"palletCollectiveInstance2"`
		Contracts           Contracts          `json:"palletContracts"`
		Sudo                Sudo               `json:"palletSudo"`
		Babe                Babe               `json:"palletBabe"`
		ImOnline            ImOnline           `json:"palletImOnline"`
		AuthorityDiscovery  AuthorityDiscovery `json:"palletAuthorityDiscovery"`
		Grandpa             Grandpa            `json:"palletGrandpa"`
		TechnicalMembership Collective         `json:"palletMembershipInstance1"`
		Treasury            Treasury           `json:"palletTreasury"`
		Society             Society            `json:"palletSociety"`
		Vesting             Vesting            `json:"palletVesting"`
		Gilt                Gilt               `json:"palletGilt"`
	}
	// System contains the system level configs
	System struct {
		// ChangesTrieConfig is left unset at genesis
		ChangesTrieConfig *ChangesTrieConfig `json:"changesTrieConfig"`
	}
	// ChangesTrieConfig configures the changes trie
	ChangesTrieConfig struct {
		DigestInterval uint32 `json:"digestInterval"`
		DigestLevels   uint32 `json:"digestLevels"`
	}
	// Balances contains the initial balance of every participant, in participant order
	Balances struct {
		Balances []AccountBalance `json:"balances"`
	}
	// AccountBalance is an account and its genesis balance
	AccountBalance struct {
		Account identity.AccountID
		Amount  *big.Int
	}
	// Indices contains the pre-claimed account indices
	Indices struct {
		Indices []IndexAssignment `json:"indices"`
	}
	// IndexAssignment binds an account index to an account
	IndexAssignment struct {
		Index   uint32             `json:"index"`
		Account identity.AccountID `json:"account"`
	}
	// Session contains the session keys registered at genesis
	Session struct {
		Keys []SessionKeyRegistration `json:"keys"`
	}
	// SessionKeyRegistration registers the role keys of a validator. Account and Validator are the same stash in
	// every profile.
	SessionKeyRegistration struct {
		Account   identity.AccountID
		Validator identity.AccountID
		Keys      identity.SessionKeys
	}
	// Staking contains the configs for the staking protocol
	Staking struct {
		// ValidatorCount is the ideal number of validators
		ValidatorCount uint32 `json:"validatorCount"`
		// MinimumValidatorCount is the minimum number of validators
		MinimumValidatorCount uint32 `json:"minimumValidatorCount"`
		// Invulnerables are exempt from forced rotation and slashing
		Invulnerables []identity.AccountID `json:"invulnerables"`
		// ForceEra is the era forcing mode
		ForceEra string `json:"forceEra"`
		// SlashRewardFraction is the part of a slash paid to the reporters
		SlashRewardFraction Perbill `json:"slashRewardFraction"`
		// CanceledPayout is the amount of canceled slash payouts
		CanceledPayout *big.Int `json:"canceledPayout"`
		// HistoryDepth is the number of eras kept in history
		HistoryDepth uint32 `json:"historyDepth"`
		// Stakers are the validators and nominators bonded at genesis
		Stakers []Staker `json:"stakers"`
	}
	// Democracy contains the democracy configs, empty at genesis
	Democracy struct{}
	// Elections contains the initial elections members and their bonds
	Elections struct {
		Members []ElectionMember `json:"members"`
	}
	// ElectionMember is an elected member and its bond
	ElectionMember struct {
		Account identity.AccountID
		Bond    *big.Int
	}
	// Collective contains the members of a governance body
	Collective struct {
		Members []identity.AccountID `json:"members"`
	}
	// Contracts contains the execution schedule of the contracts protocol
	Contracts struct {
		CurrentSchedule Schedule `json:"currentSchedule"`
	}
	// Schedule is the execution fee/weight schedule
	Schedule struct {
		Version uint32 `json:"version"`
		// EnablePrintln enables diagnostic logging from contracts, for development networks only
		EnablePrintln bool   `json:"enablePrintln"`
		Limits        Limits `json:"limits"`
	}
	// Limits are the execution limits of a contract
	Limits struct {
		EventTopics uint32 `json:"eventTopics"`
		StackHeight uint32 `json:"stackHeight"`
		Globals     uint32 `json:"globals"`
		Parameters  uint32 `json:"parameters"`
		MemoryPages uint32 `json:"memoryPages"`
		TableSize   uint32 `json:"tableSize"`
		BrTableSize uint32 `json:"brTableSize"`
		SubjectLen  uint32 `json:"subjectLen"`
		CodeSize    uint32 `json:"codeSize"`
	}
	// Sudo contains the single account with override authority
	Sudo struct {
		Key identity.AccountID `json:"key"`
	}
	// Babe contains the block production configs
	Babe struct {
		// Authorities is empty at genesis, filled by the first session rotation
		Authorities []BabeAuthority         `json:"authorities"`
		EpochConfig *BabeEpochConfiguration `json:"epochConfig"`
	}
	// BabeAuthority is a block production key and its weight
	BabeAuthority struct {
		Key    identity.SessionKey
		Weight uint64
	}
	// BabeEpochConfiguration is the epoch config of block production
	BabeEpochConfiguration struct {
		C            [2]uint64 `json:"c"`
		AllowedSlots string    `json:"allowed_slots"`
	}
	// ImOnline contains the liveness attestation keys, empty at genesis
	ImOnline struct {
		Keys []identity.SessionKey `json:"keys"`
	}
	// AuthorityDiscovery contains the discovery keys, empty at genesis
	AuthorityDiscovery struct {
		Keys []identity.SessionKey `json:"keys"`
	}
	// Grandpa contains the finality authorities, empty at genesis
	Grandpa struct {
		Authorities []GrandpaAuthority `json:"authorities"`
	}
	// GrandpaAuthority is a finality key and its weight
	GrandpaAuthority struct {
		Key    identity.SessionKey
		Weight uint64
	}
	// Treasury contains the treasury configs, empty at genesis
	Treasury struct{}
	// Society contains the initial society membership
	Society struct {
		Members    []identity.AccountID `json:"members"`
		Pot        *big.Int             `json:"pot"`
		MaxMembers uint32               `json:"maxMembers"`
	}
	// Vesting contains the vesting schedules
	Vesting struct {
		Vesting []VestingSchedule `json:"vesting"`
	}
	// VestingSchedule locks part of a genesis balance
	VestingSchedule struct {
		Account identity.AccountID `json:"account"`
		Begin   uint32             `json:"begin"`
		Length  uint32             `json:"length"`
		Liquid  *big.Int           `json:"liquid"`
	}
	// Gilt contains the gilt configs, empty at genesis
	Gilt struct{}
)

// DefaultSchedule is the default execution schedule with diagnostic logging disabled
func DefaultSchedule() Schedule {
	return Schedule{
		Version:       ScheduleVersion,
		EnablePrintln: false,
		Limits: Limits{
			EventTopics: 4,
			StackHeight: 512,
			Globals:     256,
			Parameters:  128,
			MemoryPages: 16,
			TableSize:   4096,
			BrTableSize: 256,
			SubjectLen:  32,
			CodeSize:    512 * 1024,
		},
	}
}

// GenesisEpochConfig is the block production epoch config applied at genesis
func GenesisEpochConfig() *BabeEpochConfiguration {
	return &BabeEpochConfiguration{
		C:            [2]uint64{1, 4},
		AllowedSlots: "PrimaryAndSecondaryPlainSlots",
	}
}

// JSON returns the canonical encoding of the genesis state
func (g *Genesis) JSON() ([]byte, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal genesis")
	}
	return b, nil
}

// Copy returns a deep copy of the genesis state
func (g *Genesis) Copy() (*Genesis, error) {
	b, err := g.JSON()
	if err != nil {
		return nil, err
	}
	var cpy Genesis
	if err := json.Unmarshal(b, &cpy); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal genesis")
	}
	return &cpy, nil
}

// Hash is the hash of the canonical encoding of the genesis state
func (g *Genesis) Hash() hash.Hash256 {
	b, err := g.JSON()
	if err != nil {
		log.L().Panic("Error when marshaling genesis", zap.Error(err))
	}
	return hash.Hash256b(b)
}

// TotalStake returns the sum of the stake bonded by all stakers
func (s *Staking) TotalStake() *big.Int {
	total := big.NewInt(0)
	for _, staker := range s.Stakers {
		total.Add(total, staker.Value)
	}
	return total
}

// BalanceOf returns the genesis balance of the account, nil if it is not endowed
func (b *Balances) BalanceOf(id identity.AccountID) *big.Int {
	for _, ab := range b.Balances {
		if ab.Account == id {
			return ab.Amount
		}
	}
	return nil
}

// Validate checks the cross-subsystem invariants of the state: every referenced account is endowed, stashes,
// controllers and nomination targets are bonded once, the counts are consistent and the authority lists are left
// for the first session rotation.
func (g *Genesis) Validate() error {
	endowed := make(map[identity.AccountID]struct{}, len(g.Balances.Balances))
	for _, ab := range g.Balances.Balances {
		if _, ok := endowed[ab.Account]; ok {
			return errors.Wrapf(ErrInvalidGenesis, "account %s is endowed twice", ab.Account)
		}
		if ab.Amount == nil || ab.Amount.Sign() < 0 {
			return errors.Wrapf(ErrInvalidGenesis, "account %s has a negative balance", ab.Account)
		}
		endowed[ab.Account] = struct{}{}
	}
	check := func(section string, ids ...identity.AccountID) error {
		for _, id := range ids {
			if _, ok := endowed[id]; !ok {
				return errors.Wrapf(ErrInvalidGenesis, "%s references account %s without balance", section, id)
			}
		}
		return nil
	}

	if err := check("sudo", g.Sudo.Key); err != nil {
		return err
	}
	for _, reg := range g.Session.Keys {
		if err := check("session", reg.Account, reg.Validator); err != nil {
			return err
		}
	}
	if err := check("staking invulnerables", g.Staking.Invulnerables...); err != nil {
		return err
	}
	stakerStashes := make([]identity.AccountID, 0, len(g.Staking.Stakers))
	stakerControllers := make([]identity.AccountID, 0, len(g.Staking.Stakers))
	for _, staker := range g.Staking.Stakers {
		if err := check("staking", staker.Stash, staker.Controller); err != nil {
			return err
		}
		if n, ok := staker.Status.(Nominator); ok {
			if err := check("nominations", n.Targets...); err != nil {
				return err
			}
			if dup, ok := firstDuplicate(n.Targets); ok {
				return errors.Wrapf(ErrInvalidGenesis, "nominator %s targets %s twice", staker.Stash, dup)
			}
		}
		stakerStashes = append(stakerStashes, staker.Stash)
		stakerControllers = append(stakerControllers, staker.Controller)
	}
	if dup, ok := firstDuplicate(stakerStashes); ok {
		return errors.Wrapf(ErrInvalidGenesis, "stash %s is bonded twice", dup)
	}
	if dup, ok := firstDuplicate(stakerControllers); ok {
		return errors.Wrapf(ErrInvalidGenesis, "controller %s is bonded twice", dup)
	}
	if dup, ok := firstDuplicate(g.Staking.Invulnerables); ok {
		return errors.Wrapf(ErrInvalidGenesis, "invulnerable %s is listed twice", dup)
	}
	sessionAccounts := make([]identity.AccountID, 0, len(g.Session.Keys))
	for _, reg := range g.Session.Keys {
		sessionAccounts = append(sessionAccounts, reg.Account)
	}
	if dup, ok := firstDuplicate(sessionAccounts); ok {
		return errors.Wrapf(ErrInvalidGenesis, "session keys of %s are registered twice", dup)
	}
	for _, m := range g.Elections.Members {
		if err := check("elections", m.Account); err != nil {
			return err
		}
	}
	if err := check("technical committee", g.TechnicalCommittee.Members...); err != nil {
		return err
	}
	if err := check("council", g.Council.Members...); err != nil {
		return err
	}
	if err := check("society", g.Society.Members...); err != nil {
		return err
	}

	if g.Staking.ValidatorCount < g.Staking.MinimumValidatorCount {
		return errors.Wrapf(
			ErrInvalidGenesis,
			"validator count %d is less than minimum %d",
			g.Staking.ValidatorCount,
			g.Staking.MinimumValidatorCount,
		)
	}
	if len(g.Babe.Authorities) != 0 || len(g.Grandpa.Authorities) != 0 ||
		len(g.ImOnline.Keys) != 0 || len(g.AuthorityDiscovery.Keys) != 0 {
		return errors.Wrap(ErrInvalidGenesis, "authority lists must be empty at genesis")
	}
	return nil
}
