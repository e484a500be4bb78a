package chain

import (
	"bytes"
	"sort"

	"github.com/simplechain-go/authcore/crypto"
)

// KeyWeight ties a public key to its vote weight within an authority.
type KeyWeight struct {
	Key    crypto.PublicKey
	Weight uint16
}

// AddressWeight ties a legacy wallet address to its vote weight.
type AddressWeight struct {
	Address crypto.Address
	Weight  uint16
}

// AccountWeight ties a sub-account identifier to its vote weight. Satisfying
// the referenced account's active (or, if allowed, owner) authority
// contributes this weight to the containing authority.
type AccountWeight struct {
	Account AccountID
	Weight  uint16
}

// Authority is a weighted, threshold-based predicate over keys, addresses
// and sub-accounts. KeyAuths, AddressAuths and AccountAuths are kept sorted
// ascending by their key at all times so that both the canonical encoding
// and the evaluator's iteration order are a property of the type, not an
// incidental effect of map iteration (Go maps have no stable order; the
// teacher's encoder.go walked rv.MapKeys() directly, which would make the
// encoding non-deterministic across runs -- these three fields replace that
// map-based representation with kept-sorted slices, the same role
// boost::flat_map/flat_set play in the original C++).
type Authority struct {
	WeightThreshold uint32
	KeyAuths        []KeyWeight
	AddressAuths    []AddressWeight
	AccountAuths    []AccountWeight
}

// NewAuthority builds an empty authority with the given threshold.
func NewAuthority(threshold uint32) Authority {
	return Authority{WeightThreshold: threshold}
}

// AddKeyAuth inserts or updates a key's weight, keeping KeyAuths sorted
// ascending by compressed public-key bytes.
func (a *Authority) AddKeyAuth(key crypto.PublicKey, weight uint16) {
	i := sort.Search(len(a.KeyAuths), func(i int) bool {
		return bytes.Compare(a.KeyAuths[i].Key.Content, key.Content) >= 0
	})
	if i < len(a.KeyAuths) && bytes.Equal(a.KeyAuths[i].Key.Content, key.Content) {
		a.KeyAuths[i].Weight = weight
		return
	}
	a.KeyAuths = append(a.KeyAuths, KeyWeight{})
	copy(a.KeyAuths[i+1:], a.KeyAuths[i:])
	a.KeyAuths[i] = KeyWeight{Key: key, Weight: weight}
}

// AddAddressAuth inserts or updates an address's weight, keeping
// AddressAuths sorted ascending by (version, hash160).
func (a *Authority) AddAddressAuth(addr crypto.Address, weight uint16) {
	less := func(x, y crypto.Address) bool {
		if x.Version != y.Version {
			return x.Version < y.Version
		}
		return bytes.Compare(x.Hash160[:], y.Hash160[:]) < 0
	}
	i := sort.Search(len(a.AddressAuths), func(i int) bool {
		return !less(a.AddressAuths[i].Address, addr)
	})
	if i < len(a.AddressAuths) && a.AddressAuths[i].Address == addr {
		a.AddressAuths[i].Weight = weight
		return
	}
	a.AddressAuths = append(a.AddressAuths, AddressWeight{})
	copy(a.AddressAuths[i+1:], a.AddressAuths[i:])
	a.AddressAuths[i] = AddressWeight{Address: addr, Weight: weight}
}

// AddAccountAuth inserts or updates a sub-account's weight, keeping
// AccountAuths sorted ascending by account id.
func (a *Authority) AddAccountAuth(account AccountID, weight uint16) {
	i := sort.Search(len(a.AccountAuths), func(i int) bool {
		return a.AccountAuths[i].Account >= account
	})
	if i < len(a.AccountAuths) && a.AccountAuths[i].Account == account {
		a.AccountAuths[i].Weight = weight
		return
	}
	a.AccountAuths = append(a.AccountAuths, AccountWeight{})
	copy(a.AccountAuths[i+1:], a.AccountAuths[i:])
	a.AccountAuths[i] = AccountWeight{Account: account, Weight: weight}
}
