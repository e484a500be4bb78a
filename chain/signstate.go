package chain

import (
	"sort"

	"github.com/simplechain-go/authcore/crypto"
)

// TempAccount is the sentinel account identifier treated as pre-approved
// universally -- it seeds approvedBy on every sign-state construction.
const TempAccount AccountID = "temp"

// SignState is the mutable working memory of one verification or
// minimization pass.
type SignState struct {
	availableKeys       []crypto.PublicKey
	providedSignatures  map[string]*signatureEntry
	approvedBy          map[AccountID]bool

	addressesBuilt         bool
	availableAddressSigs   map[crypto.Address]crypto.PublicKey
	providedAddressSigs    map[crypto.Address]crypto.PublicKey
}

type signatureEntry struct {
	key  crypto.PublicKey
	used bool
}

// NewSignState seeds provided_signatures from recoveredKeys (initially
// unused), available_keys from the minimizer's candidate pool, and
// approved_by from priorApprovals plus the temp-account sentinel.
// tempAccount is normally the TempAccount const; it is a parameter (rather
// than the const used directly) so a caller's config.Authorization.TempAccount
// actually reaches the sign state instead of being decorative.
func NewSignState(recoveredKeys []crypto.PublicKey, availableKeys []crypto.PublicKey, priorApprovals []AccountID, tempAccount AccountID) *SignState {
	s := &SignState{
		availableKeys:      append([]crypto.PublicKey{}, availableKeys...),
		providedSignatures: make(map[string]*signatureEntry, len(recoveredKeys)),
		approvedBy:         make(map[AccountID]bool, len(priorApprovals)+1),
	}
	for _, k := range recoveredKeys {
		s.providedSignatures[string(k.Content)] = &signatureEntry{key: k, used: false}
	}
	for _, a := range priorApprovals {
		s.approvedBy[a] = true
	}
	s.approvedBy[tempAccount] = true
	return s
}

// ApprovedBy reports whether account has already been deemed satisfied.
func (s *SignState) ApprovedBy(account AccountID) bool {
	return s.approvedBy[account]
}

// Approve memoizes that account's authority has been satisfied, so a later
// reference to the same account within this pass short-circuits.
func (s *SignState) Approve(account AccountID) {
	s.approvedBy[account] = true
}

// SignedByKey marks key as consumed and returns true if it is in
// provided_signatures (regardless of prior used state) or in
// available_keys (promoting it into provided_signatures as used).
func (s *SignState) SignedByKey(key crypto.PublicKey) bool {
	k := string(key.Content)
	if entry, ok := s.providedSignatures[k]; ok {
		entry.used = true
		return true
	}
	for _, avail := range s.availableKeys {
		if string(avail.Content) == k {
			s.providedSignatures[k] = &signatureEntry{key: key, used: true}
			return true
		}
	}
	return false
}

// SignedByAddress builds the lazy address indices on first call, resolves
// address to its originating key, and delegates to SignedByKey.
func (s *SignState) SignedByAddress(addr crypto.Address) bool {
	if !s.addressesBuilt {
		s.buildAddressIndices()
	}
	if key, ok := s.providedAddressSigs[addr]; ok {
		return s.SignedByKey(key)
	}
	if key, ok := s.availableAddressSigs[addr]; ok {
		return s.SignedByKey(key)
	}
	return false
}

// buildAddressIndices derives all five address aliases for every provided
// and available key and indexes them. Lazy: built on first address query.
func (s *SignState) buildAddressIndices() {
	s.availableAddressSigs = make(map[crypto.Address]crypto.PublicKey)
	s.providedAddressSigs = make(map[crypto.Address]crypto.PublicKey)

	for _, entry := range s.providedSignatures {
		indexAliases(s.providedAddressSigs, entry.key)
	}
	for _, key := range s.availableKeys {
		indexAliases(s.availableAddressSigs, key)
	}
	s.addressesBuilt = true
}

func indexAliases(into map[crypto.Address]crypto.PublicKey, key crypto.PublicKey) {
	aliases, err := key.LegacyAliases()
	if err != nil {
		return
	}
	for _, addr := range aliases {
		into[addr] = key
	}
}

// RemoveUnusedSignatures drops every provided signature still flagged
// unused and reports whether any were removed.
func (s *SignState) RemoveUnusedSignatures() bool {
	removed := false
	for k, entry := range s.providedSignatures {
		if !entry.used {
			delete(s.providedSignatures, k)
			removed = true
		}
	}
	return removed
}

// UnusedKeys returns, in canonical (lexicographic compressed-pubkey) order,
// every provided-signature key that is still flagged unused. Used by the
// verification orchestrator to build the IrrelevantSignature diagnostic.
func (s *SignState) UnusedKeys() []crypto.PublicKey {
	var out []crypto.PublicKey
	for _, entry := range s.providedSignatures {
		if !entry.used {
			out = append(out, entry.key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].Content) < string(out[j].Content)
	})
	return out
}

// UsedAvailableKeys returns, in canonical order, every key drawn from
// available_keys (as opposed to the originally recovered signature set)
// that the evaluator actually consumed. This is the minimizer's initial
// candidate set.
func (s *SignState) UsedAvailableKeys(recovered []crypto.PublicKey) []crypto.PublicKey {
	recoveredSet := make(map[string]bool, len(recovered))
	for _, k := range recovered {
		recoveredSet[string(k.Content)] = true
	}
	var out []crypto.PublicKey
	for k, entry := range s.providedSignatures {
		if entry.used && !recoveredSet[k] {
			out = append(out, entry.key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].Content) < string(out[j].Content)
	})
	return out
}
