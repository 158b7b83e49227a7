// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labornetwork/labor-node/pkg/identity"
)

func seedAccounts(t *testing.T, seeds ...string) []identity.AccountID {
	ret := make([]identity.AccountID, 0, len(seeds))
	for _, s := range seeds {
		id, err := identity.AccountFromSeed(s)
		require.NoError(t, err)
		ret = append(ret, id)
	}
	return ret
}

func seedBundles(seeds ...string) []identity.Bundle {
	ret := make([]identity.Bundle, 0, len(seeds))
	for _, s := range seeds {
		ret = append(ret, identity.MustDerive(s))
	}
	return ret
}

func TestDefaultEndowedAccounts(t *testing.T) {
	require := require.New(t)

	accounts := DefaultEndowedAccounts()
	require.Len(accounts, 12)
	alice := identity.MustDerive("Alice")
	ferdie := identity.MustDerive("Ferdie")
	require.Equal(alice.Controller, accounts[0])
	require.Equal(ferdie.Controller, accounts[5])
	require.Equal(alice.Stash, accounts[6])
	require.Equal(ferdie.Stash, accounts[11])

	// returned slice is a copy
	accounts[0] = identity.ZeroAccount
	require.Equal(alice.Controller, DefaultEndowedAccounts()[0])
}

func TestBuildAccountSet(t *testing.T) {
	require := require.New(t)

	alice := identity.MustDerive("Alice")
	set, err := BuildAccountSet(alice.Controller, nil, []identity.AccountID{alice.Stash})
	require.NoError(err)
	require.Equal(12, set.Len())
	require.Equal(alice.Controller, set.Accounts()[0])
	require.Equal(6, len(set.FirstHalf()))

	root := seedAccounts(t, "Root")[0]
	extra := seedAccounts(t, "Extra1", "Extra2")
	set, err = BuildAccountSet(
		root,
		[]identity.AccountID{extra[0], root, extra[0]},
		[]identity.AccountID{extra[1], extra[0]},
		[]identity.AccountID{extra[1], root},
	)
	require.NoError(err)
	require.Equal([]identity.AccountID{root, extra[0], extra[1]}, set.Accounts())
	require.True(set.Contains(extra[1]))
	require.False(set.Contains(alice.Stash))
	require.Equal([]identity.AccountID{root, extra[0]}, set.FirstHalf())

	// an explicit empty list is not replaced by the defaults
	set, err = BuildAccountSet(root, []identity.AccountID{})
	require.NoError(err)
	require.Equal([]identity.AccountID{root}, set.Accounts())
	require.Equal([]identity.AccountID{root}, set.FirstHalf())

	_, err = BuildAccountSet(identity.ZeroAccount, nil)
	require.Equal(ErrInvalidParams, errors.Cause(err))
}

func TestAccountSetNoDuplicates(t *testing.T) {
	require := require.New(t)

	r := rand.New(rand.NewSource(7))
	pool := seedAccounts(t, "A", "B", "C", "D", "E", "F", "G", "H")
	for i := 0; i < 50; i++ {
		picks := make([]identity.AccountID, 20)
		for j := range picks {
			picks[j] = pool[r.Intn(len(pool))]
		}
		set, err := BuildAccountSet(pool[r.Intn(len(pool))], picks[:10], picks[10:])
		require.NoError(err)
		seen := make(map[identity.AccountID]struct{})
		for _, id := range set.Accounts() {
			_, ok := seen[id]
			require.False(ok)
			seen[id] = struct{}{}
		}
		require.Equal(len(seen), set.Len())
	}
}

func TestAssignStakers(t *testing.T) {
	require := require.New(t)

	validators := seedBundles("Alice", "Bob", "Charlie")
	nominators := seedAccounts(t, "N1", "N2", "N3", "N4", "N5", "N6", "N7", "N8")
	stash := big.NewInt(1000)

	stakers := AssignStakers(validators, nominators, stash, rand.New(rand.NewSource(42)))
	require.Len(stakers, len(validators)+len(nominators))

	stashes := make(map[identity.AccountID]struct{})
	for i, v := range validators {
		s := stakers[i]
		require.True(s.IsValidator())
		require.Nil(s.Targets())
		require.Equal(v.Stash, s.Stash)
		require.Equal(v.Controller, s.Controller)
		stashes[v.Stash] = struct{}{}
	}
	for i, n := range nominators {
		s := stakers[len(validators)+i]
		require.False(s.IsValidator())
		require.Equal(n, s.Stash)
		require.Equal(n, s.Controller)
		targets := s.Targets()
		require.NotNil(targets)
		require.Less(len(targets), len(validators))
		seen := make(map[identity.AccountID]struct{})
		for _, target := range targets {
			_, ok := stashes[target]
			require.True(ok)
			_, dup := seen[target]
			require.False(dup)
			seen[target] = struct{}{}
		}
	}

	total := big.NewInt(0)
	for _, s := range stakers {
		total.Add(total, s.Value)
	}
	require.Equal(0, total.Cmp(big.NewInt(int64(1000*(len(validators)+len(nominators))))))

	// every staker owns its stake
	stakers[0].Value.SetInt64(0)
	require.Equal(0, stash.Cmp(big.NewInt(1000)))
	require.Equal(0, stakers[1].Value.Cmp(stash))

	// a fixed source reproduces the nominations
	again := AssignStakers(validators, nominators, big.NewInt(1000), rand.New(rand.NewSource(42)))
	for i := len(validators); i < len(again); i++ {
		require.Equal(stakers[i].Targets(), again[i].Targets())
	}
}

func TestAssignStakersNominationBound(t *testing.T) {
	require := require.New(t)

	seeds := make([]string, 20)
	for i := range seeds {
		seeds[i] = fmt.Sprintf("Validator%d", i)
	}
	validators := seedBundles(seeds...)
	nominators := seedAccounts(t, "N1", "N2", "N3", "N4", "N5", "N6", "N7", "N8", "N9", "N10")

	r := rand.New(rand.NewSource(1))
	for round := 0; round < 20; round++ {
		for _, s := range AssignStakers(validators, nominators, Stash, r)[len(validators):] {
			require.Less(len(s.Targets()), MaxNominations)
			_, repeated := firstDuplicate(s.Targets())
			require.False(repeated)
		}
	}

	// no validators, no targets
	stakers := AssignStakers(nil, nominators, Stash, r)
	require.Len(stakers, len(nominators))
	for _, s := range stakers {
		require.Empty(s.Targets())
		require.NotNil(s.Targets())
	}
}

func TestAssembleDevelopment(t *testing.T) {
	require := require.New(t)

	alice := identity.MustDerive("Alice")
	g, err := Assemble(Params{
		Authorities:          SeedAuthorities("Alice"),
		RootKey:              alice.Controller,
		EnableDebugExecution: true,
	})
	require.NoError(err)
	require.NoError(g.Validate())

	require.Len(g.Balances.Balances, 12)
	require.Equal(alice.Controller, g.Balances.Balances[0].Account)
	for _, ab := range g.Balances.Balances {
		require.Equal(0, ab.Amount.Cmp(Endowment))
	}
	require.Equal(uint32(2), g.Staking.ValidatorCount)
	require.Equal(uint32(1), g.Staking.MinimumValidatorCount)
	require.Equal([]identity.AccountID{alice.Stash}, g.Staking.Invulnerables)
	require.Equal(Perbill(100_000_000), g.Staking.SlashRewardFraction)
	require.Len(g.Staking.Stakers, 1)
	require.True(g.Staking.Stakers[0].IsValidator())
	require.Equal(0, g.Staking.TotalStake().Cmp(Stash))

	require.Len(g.Elections.Members, 6)
	require.Len(g.TechnicalCommittee.Members, 6)
	require.Len(g.Society.Members, 6)
	require.Empty(g.Council.Members)
	for i, m := range g.Elections.Members {
		require.Equal(g.Balances.Balances[i].Account, m.Account)
		require.Equal(g.Balances.Balances[i].Account, g.TechnicalCommittee.Members[i])
		require.Equal(g.Balances.Balances[i].Account, g.Society.Members[i])
		require.Equal(0, m.Bond.Cmp(Stash))
	}
	require.Equal(0, g.Society.Pot.Sign())
	require.Equal(uint32(SocietyMaxMembers), g.Society.MaxMembers)

	require.Equal(alice.Controller, g.Sudo.Key)
	require.True(g.Contracts.CurrentSchedule.EnablePrintln)
	require.Empty(g.Babe.Authorities)
	require.Empty(g.Grandpa.Authorities)
	require.Empty(g.ImOnline.Keys)
	require.Empty(g.AuthorityDiscovery.Keys)
	require.Equal([2]uint64{1, 4}, g.Babe.EpochConfig.C)
}

func TestAssembleTwoValidators(t *testing.T) {
	require := require.New(t)

	alice, bob := identity.MustDerive("Alice"), identity.MustDerive("Bob")
	g, err := Assemble(Params{
		Authorities: SeedAuthorities("Alice", "Bob"),
		RootKey:     alice.Controller,
	})
	require.NoError(err)
	require.Equal(uint32(4), g.Staking.ValidatorCount)
	require.Equal(uint32(2), g.Staking.MinimumValidatorCount)
	require.Equal([]identity.AccountID{alice.Stash, bob.Stash}, g.Staking.Invulnerables)
	require.False(g.Contracts.CurrentSchedule.EnablePrintln)

	require.Len(g.Session.Keys, 2)
	for i, v := range []identity.Bundle{alice, bob} {
		reg := g.Session.Keys[i]
		require.Equal(v.Stash, reg.Account)
		require.Equal(v.Stash, reg.Validator)
		require.Equal(v.SessionKeys, reg.Keys)
		require.True(reg.Keys.Distinct())
	}
}

func TestAssembleWithNominators(t *testing.T) {
	require := require.New(t)

	root := seedAccounts(t, "Root")[0]
	nominators := seedAccounts(t, "N1", "N2", "N3")
	bundle := identity.MustDerive("Custom")
	p := Params{
		Authorities:     []Authority{{Seed: "Alice"}, {Bundle: &bundle}},
		Nominators:      nominators,
		RootKey:         root,
		EndowedAccounts: []identity.AccountID{},
		Rand:            rand.New(rand.NewSource(3)),
	}
	g, err := Assemble(p)
	require.NoError(err)

	alice := identity.MustDerive("Alice")
	expected := []identity.AccountID{root, alice.Stash, bundle.Stash, alice.Controller, bundle.Controller}
	expected = append(expected, nominators...)
	participants := make([]identity.AccountID, 0, len(g.Balances.Balances))
	for _, ab := range g.Balances.Balances {
		participants = append(participants, ab.Account)
	}
	require.Equal(expected, participants)
	require.NotNil(g.Balances.BalanceOf(root))
	require.Nil(g.Balances.BalanceOf(seedAccounts(t, "Nobody")[0]))
	require.Len(g.Staking.Stakers, 5)
	require.Equal(0, g.Staking.TotalStake().Cmp(new(big.Int).Mul(Stash, big.NewInt(5))))
	require.Len(g.Society.Members, 4)

	p.Rand = rand.New(rand.NewSource(3))
	again, err := Assemble(p)
	require.NoError(err)
	require.Equal(g.Hash(), again.Hash())
}

func TestAssembleDeterminism(t *testing.T) {
	require := require.New(t)

	root := identity.MustDerive("Alice").Controller
	var encodings [][]byte
	for i := 0; i < 2; i++ {
		g, err := Assemble(Params{Authorities: SeedAuthorities("Alice", "Bob"), RootKey: root})
		require.NoError(err)
		b, err := g.JSON()
		require.NoError(err)
		encodings = append(encodings, b)
	}
	require.Equal(encodings[0], encodings[1])

	var decoded Genesis
	require.NoError(json.Unmarshal(encodings[0], &decoded))
	b, err := decoded.JSON()
	require.NoError(err)
	require.Equal(encodings[0], b)
}

func TestAssembleErrors(t *testing.T) {
	require := require.New(t)

	alice := identity.MustDerive("Alice")
	root := alice.Controller
	nominator := seedAccounts(t, "N1")[0]
	bundle := identity.MustDerive("Bob")
	dup := bundle
	dup.Babe = dup.Grandpa

	tests := []struct {
		name  string
		p     Params
		cause error
	}{
		{"no authorities", Params{RootKey: root}, ErrNoValidators},
		{"zero root", Params{Authorities: SeedAuthorities("Alice")}, ErrInvalidParams},
		{"empty authority", Params{Authorities: []Authority{{}}, RootKey: root}, ErrInvalidParams},
		{"seed and bundle", Params{Authorities: []Authority{{Seed: "Bob", Bundle: &bundle}}, RootKey: root}, ErrInvalidParams},
		{"bad bundle", Params{Authorities: []Authority{{Bundle: &dup}}, RootKey: root}, identity.ErrInvalidBundle},
		{"bad seed", Params{Authorities: SeedAuthorities("Alice/soft"), RootKey: root}, identity.ErrSoftJunction},
		{"repeated authority", Params{
			Authorities: SeedAuthorities("Alice", "Alice", "Alice"),
			Nominators:  []identity.AccountID{nominator},
			RootKey:     root,
			Rand:        rand.New(rand.NewSource(1)),
		}, ErrInvalidParams},
		{"repeated bundle", Params{Authorities: []Authority{{Seed: "Bob"}, {Bundle: &bundle}}, RootKey: root}, ErrInvalidParams},
		{"nominator is validator stash", Params{
			Authorities: SeedAuthorities("Alice"),
			Nominators:  []identity.AccountID{alice.Stash},
			RootKey:     root,
		}, ErrInvalidParams},
		{"nominator is validator controller", Params{
			Authorities: SeedAuthorities("Alice"),
			Nominators:  []identity.AccountID{alice.Controller},
			RootKey:     root,
		}, ErrInvalidParams},
		{"repeated nominator", Params{
			Authorities: SeedAuthorities("Alice"),
			Nominators:  []identity.AccountID{nominator, nominator},
			RootKey:     root,
		}, ErrInvalidParams},
	}
	for _, test := range tests {
		_, err := Assemble(test.p)
		require.Equal(test.cause, errors.Cause(err), test.name)
	}

	_, err := Compose(seedBundles("Alice"), nil, NewAccountSet(0), root, false)
	require.Equal(ErrInvalidParams, errors.Cause(err))
}

func TestGenesisValidate(t *testing.T) {
	require := require.New(t)

	alice, bob := identity.MustDerive("Alice"), identity.MustDerive("Bob")
	build := func() *Genesis {
		g, err := Assemble(Params{Authorities: SeedAuthorities("Alice"), RootKey: alice.Controller})
		require.NoError(err)
		return g
	}
	stranger := seedAccounts(t, "Stranger")[0]

	tests := []struct {
		name   string
		mutate func(*Genesis)
	}{
		{"sudo", func(g *Genesis) { g.Sudo.Key = stranger }},
		{"duplicate balance", func(g *Genesis) {
			g.Balances.Balances = append(g.Balances.Balances, g.Balances.Balances[0])
		}},
		{"negative balance", func(g *Genesis) { g.Balances.Balances[1].Amount = big.NewInt(-1) }},
		{"staker", func(g *Genesis) { g.Staking.Stakers[0].Controller = stranger }},
		{"target", func(g *Genesis) {
			g.Staking.Stakers = append(g.Staking.Stakers, Staker{
				Stash:      bob.Controller,
				Controller: bob.Controller,
				Value:      Stash,
				Status:     Nominator{Targets: []identity.AccountID{stranger}},
			})
		}},
		{"repeated target", func(g *Genesis) {
			g.Staking.Stakers = append(g.Staking.Stakers, Staker{
				Stash:      bob.Controller,
				Controller: bob.Controller,
				Value:      Stash,
				Status:     Nominator{Targets: []identity.AccountID{alice.Stash, alice.Stash}},
			})
		}},
		{"repeated stash", func(g *Genesis) {
			s := g.Staking.Stakers[0]
			s.Controller = bob.Controller
			g.Staking.Stakers = append(g.Staking.Stakers, s)
		}},
		{"repeated controller", func(g *Genesis) {
			g.Staking.Stakers = append(g.Staking.Stakers, Staker{
				Stash:      bob.Stash,
				Controller: alice.Controller,
				Value:      Stash,
				Status:     Validator{},
			})
		}},
		{"repeated invulnerable", func(g *Genesis) {
			g.Staking.Invulnerables = append(g.Staking.Invulnerables, alice.Stash)
		}},
		{"repeated session", func(g *Genesis) {
			g.Session.Keys = append(g.Session.Keys, g.Session.Keys[0])
		}},
		{"committee", func(g *Genesis) { g.TechnicalCommittee.Members[0] = stranger }},
		{"counts", func(g *Genesis) { g.Staking.MinimumValidatorCount = 3 }},
		{"authorities", func(g *Genesis) {
			g.Grandpa.Authorities = append(g.Grandpa.Authorities, GrandpaAuthority{Key: alice.Grandpa, Weight: 1})
		}},
	}
	for _, test := range tests {
		g := build()
		test.mutate(g)
		assert.Equal(t, ErrInvalidGenesis, errors.Cause(g.Validate()), test.name)
	}
}

func TestStakerJSON(t *testing.T) {
	require := require.New(t)

	alice, bob := identity.MustDerive("Alice"), identity.MustDerive("Bob")
	validator := Staker{Stash: alice.Stash, Controller: alice.Controller, Value: big.NewInt(5), Status: Validator{}}
	b, err := json.Marshal(validator)
	require.NoError(err)
	require.Equal(
		fmt.Sprintf(`["%s","%s",5,"Validator"]`, alice.Stash, alice.Controller),
		string(b),
	)

	nominator := Staker{
		Stash:      bob.Controller,
		Controller: bob.Controller,
		Value:      big.NewInt(7),
		Status:     Nominator{Targets: []identity.AccountID{alice.Stash}},
	}
	b, err = json.Marshal(nominator)
	require.NoError(err)
	require.Equal(
		fmt.Sprintf(`["%s","%s",7,{"Nominator":["%s"]}]`, bob.Controller, bob.Controller, alice.Stash),
		string(b),
	)
	var decoded Staker
	require.NoError(json.Unmarshal(b, &decoded))
	require.Equal([]identity.AccountID{alice.Stash}, decoded.Targets())
	require.Equal(0, decoded.Value.Cmp(big.NewInt(7)))

	require.Error(json.Unmarshal([]byte(`["a","b",1,"Chilling"]`), &decoded))
	require.Error(json.Unmarshal([]byte(`[1,2]`), &decoded))
	_, err = json.Marshal(Staker{Value: big.NewInt(1)})
	require.Error(err)
}

func TestPerbill(t *testing.T) {
	require := require.New(t)

	require.Equal(Perbill(100_000_000), PerbillFromPercent(10))
	require.Equal(Perbill(PerbillAccuracy), PerbillFromPercent(150))
	require.Equal(0, PerbillFromPercent(10).Mul(big.NewInt(1005)).Cmp(big.NewInt(100)))
}
