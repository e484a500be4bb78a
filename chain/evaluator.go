package chain

// Evaluator holds the dependencies check_authority needs to recurse into
// sub-accounts: the sign-state being satisfied against, the chain-state
// accessors, and the policy knobs that shape recursion.
type Evaluator struct {
	State                  *SignState
	GetActive              ActiveAuthorityLookup
	GetOwner               OwnerAuthorityLookup
	MaxRecursion           int
	AllowNonImmediateOwner bool
}

// CheckAuthority returns true iff the weighted sum of satisfied entries in
// auth reaches its weight threshold. Evaluation order is fixed and
// observable: key_auths first, then address_auths, then account_auths;
// within each group, iteration follows the container's ascending-key
// order. Short-circuits the moment the threshold is met.
func (e *Evaluator) CheckAuthority(auth *Authority, depth int) bool {
	var total uint32

	for _, kw := range auth.KeyAuths {
		if e.State.SignedByKey(kw.Key) {
			total += uint32(kw.Weight)
			if total >= auth.WeightThreshold {
				return true
			}
		}
	}
	for _, aw := range auth.AddressAuths {
		if e.State.SignedByAddress(aw.Address) {
			total += uint32(aw.Weight)
			if total >= auth.WeightThreshold {
				return true
			}
		}
	}
	for _, acw := range auth.AccountAuths {
		if e.checkAccountAuth(acw.Account, depth) {
			total += uint32(acw.Weight)
			if total >= auth.WeightThreshold {
				return true
			}
		}
	}

	return total >= auth.WeightThreshold
}

// checkAccountAuth implements the three-way branch for one account_auths
// entry: already-approved, recursion-bound-exceeded (contributes zero
// silently), or recurse into the sub-account's active (falling back to
// owner when allowed).
func (e *Evaluator) checkAccountAuth(account AccountID, depth int) bool {
	if e.State.ApprovedBy(account) {
		return true
	}
	if depth == e.MaxRecursion {
		return false
	}

	active, err := e.GetActive(account)
	satisfied := err == nil && e.CheckAuthority(active, depth+1)
	if !satisfied && e.AllowNonImmediateOwner {
		owner, err := e.GetOwner(account)
		satisfied = err == nil && e.CheckAuthority(owner, depth+1)
	}
	if satisfied {
		e.State.Approve(account)
	}
	return satisfied
}

// CheckAccount is the entry point for the literally-required account --
// check_authority(account_id) in the original, as opposed to an
// account_auths entry reached while recursing through another authority.
// It consults approved_by, then the account's own active authority, then
// (when allowed) its owner authority, with no recursion-depth guard of its
// own: that guard only bounds how many account_auths hops away from this
// starting point the evaluation is allowed to follow, via checkAccountAuth.
func (e *Evaluator) CheckAccount(account AccountID) bool {
	if e.State.ApprovedBy(account) {
		return true
	}

	active, err := e.GetActive(account)
	satisfied := err == nil && e.CheckAuthority(active, 0)
	if !satisfied && e.AllowNonImmediateOwner {
		var owner *Authority
		owner, err = e.GetOwner(account)
		satisfied = err == nil && e.CheckAuthority(owner, 0)
	}
	if satisfied {
		e.State.Approve(account)
	}
	return satisfied
}
