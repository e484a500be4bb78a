package chain

import (
	"fmt"
	"sort"
	"sync"
)

// ActiveAuthorityLookup resolves an account's active authority record.
type ActiveAuthorityLookup func(account AccountID) (*Authority, error)

// OwnerAuthorityLookup resolves an account's owner authority record.
type OwnerAuthorityLookup func(account AccountID) (*Authority, error)

// CustomAuthorityLookup returns the predicate authorities applicable to
// (account, op) -- custom authorities satisfied by this specific operation
// -- and appends any predicate it evaluated but rejected into rejected, for
// diagnostic reporting.
type CustomAuthorityLookup func(account AccountID, op Operation, rejected *[]Authority) ([]Authority, error)

type accountRecord struct {
	active  Authority
	owner   Authority
	customs []Authority
}

// AccountBook is a minimal in-memory implementation of the three
// chain-state accessors above. It is not a persistence layer (on-chain
// storage is out of scope); it exists to give the interfaces a concrete,
// swappable implementation for tests and the demo CLI, playing the role
// database.Database plays for the teacher's genuinely persistent block and
// transaction storage. Reads and writes are guarded by a mutex because,
// unlike a transaction's own memoization fields, this map is routinely read
// from multiple goroutines while the chain advances.
type AccountBook struct {
	mu       sync.RWMutex
	accounts map[AccountID]*accountRecord
}

func NewAccountBook() *AccountBook {
	return &AccountBook{accounts: make(map[AccountID]*accountRecord)}
}

func (b *AccountBook) record(id AccountID) *accountRecord {
	r, ok := b.accounts[id]
	if !ok {
		r = &accountRecord{}
		b.accounts[id] = r
	}
	return r
}

// SetActive installs account's active authority.
func (b *AccountBook) SetActive(account AccountID, auth Authority) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(account).active = auth
}

// SetOwner installs account's owner authority.
func (b *AccountBook) SetOwner(account AccountID, auth Authority) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(account).owner = auth
}

// AddCustomAuthority registers a predicate authority for account. This
// minimal book has no operation-type-scoped predicates: it applies every
// registered custom authority to every operation the account is active-
// required for, leaving predicate matching itself to the authority's normal
// weighted evaluation.
func (b *AccountBook) AddCustomAuthority(account AccountID, auth Authority) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.record(account)
	r.customs = append(r.customs, auth)
}

// GetActive implements ActiveAuthorityLookup.
func (b *AccountBook) GetActive(account AccountID) (*Authority, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %q not found", account)
	}
	auth := r.active
	return &auth, nil
}

// GetOwner implements OwnerAuthorityLookup.
func (b *AccountBook) GetOwner(account AccountID) (*Authority, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.accounts[account]
	if !ok {
		return nil, fmt.Errorf("account %q not found", account)
	}
	auth := r.owner
	return &auth, nil
}

// GetCustom implements CustomAuthorityLookup. This minimal book has no
// per-operation-type predicate scoping, so it returns every registered
// custom authority for the account unconditionally; none are rejected.
func (b *AccountBook) GetCustom(account AccountID, op Operation, rejected *[]Authority) ([]Authority, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.accounts[account]
	if !ok {
		return nil, nil
	}
	return append([]Authority{}, r.customs...), nil
}

// Accounts returns every known account id in ascending order, useful for
// deterministic fixture dumps in the demo CLI.
func (b *AccountBook) Accounts() []AccountID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]AccountID, 0, len(b.accounts))
	for id := range b.accounts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
