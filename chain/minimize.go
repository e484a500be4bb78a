package chain

import (
	"sort"

	"github.com/simplechain-go/authcore/crypto"
)

// GetRequiredSignatures runs the evaluator non-strictly against candidates:
// it consults check_authority for every required item but neither fails on
// an unsatisfied requirement nor enforces the irrelevant-signature rule.
// The keys the evaluator actually consumed from candidates (as opposed to
// the already-recovered signer set) form the initial minimizer candidate
// set, returned in canonical order.
func GetRequiredSignatures(ops []Operation, recoveredKeys []crypto.PublicKey, candidates []crypto.PublicKey, cfg VerifyConfig) []crypto.PublicKey {
	state := NewSignState(recoveredKeys, candidates, cfg.PriorActiveApprovals, cfg.tempAccount())
	for _, a := range cfg.PriorOwnerApprovals {
		state.Approve(a)
	}
	evalr := &Evaluator{
		State:                  state,
		GetActive:              cfg.GetActive,
		GetOwner:               cfg.GetOwner,
		MaxRecursion:           cfg.MaxRecursion,
		AllowNonImmediateOwner: cfg.AllowNonImmediateOwner,
	}

	requiredActive := map[AccountID]bool{}
	requiredOwner := map[AccountID]bool{}
	var other []Authority

	for _, op := range ops {
		active, owner, loose := op.RequiredAuthorities(cfg.IgnoreCustomRequiredAuths)
		other = append(other, loose...)
		for _, a := range owner {
			requiredOwner[a] = true
		}
		for _, a := range active {
			requiredActive[a] = true
		}
	}

	for _, auth := range other {
		a := auth
		evalr.CheckAuthority(&a, 0)
	}
	for _, account := range sortedAccounts(requiredOwner) {
		if owner, err := cfg.GetOwner(account); err == nil {
			evalr.CheckAuthority(owner, 0)
		}
	}
	for _, account := range sortedAccounts(requiredActive) {
		evalr.CheckAccount(account)
	}

	return state.UsedAvailableKeys(recoveredKeys)
}

// MinimizeRequiredSignatures performs greedy elimination over candidates:
// iterate in canonical (lexicographic compressed-pubkey) order; for each
// key, tentatively remove it and re-run strict VerifyAuthority with the
// reduced set. If verification still succeeds (treating the three
// authority-missing error kinds as "keep trying", any other error as fatal
// and aborting the minimization), the removal sticks; otherwise the key is
// restored. The result is sufficient and locally minimal, not guaranteed
// globally minimal.
func MinimizeRequiredSignatures(ops []Operation, recoveredKeys []crypto.PublicKey, candidates []crypto.PublicKey, cfg VerifyConfig) ([]crypto.PublicKey, error) {
	working := GetRequiredSignatures(ops, recoveredKeys, candidates, cfg)
	sort.Slice(working, func(i, j int) bool {
		return string(working[i].Content) < string(working[j].Content)
	})

	for i := 0; i < len(working); {
		reduced := make([]crypto.PublicKey, 0, len(working)-1)
		reduced = append(reduced, working[:i]...)
		reduced = append(reduced, working[i+1:]...)

		err := VerifyAuthority(ops, append(append([]crypto.PublicKey{}, recoveredKeys...), reduced...), nil, cfg)
		switch {
		case err == nil:
			working = reduced
			// don't advance i: the next element has shifted into position i
		case IsMissingAuth(err):
			i++
		default:
			return nil, err
		}
	}

	return working, nil
}
