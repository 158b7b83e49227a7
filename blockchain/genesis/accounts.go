// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package genesis

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/labornetwork/labor-node/pkg/identity"
	"github.com/labornetwork/labor-node/pkg/log"
)

var (
	_defaultEndowedSeeds = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Ferdie"}

	_defaultEndowedOnce     sync.Once
	_defaultEndowedAccounts []identity.AccountID
)

// AccountSet is an insertion ordered set of accounts
type AccountSet struct {
	accounts []identity.AccountID
	index    map[identity.AccountID]int
}

// NewAccountSet creates an empty account set
func NewAccountSet(capacity int) *AccountSet {
	return &AccountSet{
		accounts: make([]identity.AccountID, 0, capacity),
		index:    make(map[identity.AccountID]int, capacity),
	}
}

// Add appends the account if it is not in the set yet, and returns whether it was added
func (s *AccountSet) Add(id identity.AccountID) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.accounts)
	s.accounts = append(s.accounts, id)
	return true
}

// Contains returns true if the account is in the set
func (s *AccountSet) Contains(id identity.AccountID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of accounts
func (s *AccountSet) Len() int {
	return len(s.accounts)
}

// Accounts returns the accounts in insertion order
func (s *AccountSet) Accounts() []identity.AccountID {
	ret := make([]identity.AccountID, len(s.accounts))
	copy(ret, s.accounts)
	return ret
}

// FirstHalf returns the first ⌈n/2⌉ accounts
func (s *AccountSet) FirstHalf() []identity.AccountID {
	return s.Accounts()[:(len(s.accounts)+1)/2]
}

// firstDuplicate returns the first account that occurs more than once across the lists
func firstDuplicate(lists ...[]identity.AccountID) (identity.AccountID, bool) {
	set := NewAccountSet(0)
	for _, ids := range lists {
		for _, id := range ids {
			if !set.Add(id) {
				return id, true
			}
		}
	}
	return identity.ZeroAccount, false
}

// DefaultEndowedAccounts returns the controller accounts of the six well-known development seeds followed by
// their stash accounts
func DefaultEndowedAccounts() []identity.AccountID {
	_defaultEndowedOnce.Do(func() {
		controllers := make([]identity.AccountID, 0, len(_defaultEndowedSeeds))
		stashes := make([]identity.AccountID, 0, len(_defaultEndowedSeeds))
		for _, seed := range _defaultEndowedSeeds {
			b, err := identity.Derive(seed)
			if err != nil {
				log.L().Panic("Error when deriving development account", zap.String("seed", seed), zap.Error(err))
			}
			controllers = append(controllers, b.Controller)
			stashes = append(stashes, b.Stash)
		}
		_defaultEndowedAccounts = append(controllers, stashes...)
	})
	ret := make([]identity.AccountID, len(_defaultEndowedAccounts))
	copy(ret, _defaultEndowedAccounts)
	return ret
}

// BuildAccountSet returns the participants of the genesis: the root account, the endowed accounts (the default
// development accounts when endowed is nil), then the implied accounts. Each account appears once, at its first
// occurrence.
func BuildAccountSet(
	root identity.AccountID,
	endowed []identity.AccountID,
	implied ...[]identity.AccountID,
) (*AccountSet, error) {
	if root == identity.ZeroAccount {
		return nil, errors.Wrap(ErrInvalidParams, "zero root account")
	}
	if endowed == nil {
		endowed = DefaultEndowedAccounts()
	}
	set := NewAccountSet(1 + len(endowed))
	set.Add(root)
	for _, id := range endowed {
		set.Add(id)
	}
	for _, ids := range implied {
		for _, id := range ids {
			set.Add(id)
		}
	}
	return set, nil
}
