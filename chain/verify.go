package chain

import (
	"sort"

	"github.com/simplechain-go/authcore/crypto"
)

// CommitteeAccount is the consensus-defined distinguished account whose
// involvement in a transaction's required-active set needs explicit
// operator opt-in (AllowCommittee).
const CommitteeAccount AccountID = "committee"

// VerifyConfig carries every policy knob and chain-state accessor
// verify_authority needs. It is assembled by the caller (typically from a
// loaded config.Authorization) rather than read from global state.
type VerifyConfig struct {
	GetActive                 ActiveAuthorityLookup
	GetOwner                  OwnerAuthorityLookup
	GetCustom                 CustomAuthorityLookup
	AllowNonImmediateOwner    bool
	IgnoreCustomRequiredAuths bool
	MaxRecursion              int
	AllowCommittee            bool
	CommitteeAccount          AccountID
	TempAccount               AccountID
	PriorActiveApprovals      []AccountID
	PriorOwnerApprovals       []AccountID
}

// committeeAccount and tempAccount resolve cfg's distinguished-account
// overrides, falling back to the package consts for a zero-value VerifyConfig
// (e.g. one built directly in a test rather than via config.Authorization).
func (cfg VerifyConfig) committeeAccount() AccountID {
	if cfg.CommitteeAccount == "" {
		return CommitteeAccount
	}
	return cfg.CommitteeAccount
}

func (cfg VerifyConfig) tempAccount() AccountID {
	if cfg.TempAccount == "" {
		return TempAccount
	}
	return cfg.TempAccount
}

// VerifyAuthority checks that recoveredKeys, augmented by availableKeys,
// authorize every operation in ops. It returns nil on success and an
// *AuthError describing the failure otherwise.
func VerifyAuthority(ops []Operation, recoveredKeys []crypto.PublicKey, availableKeys []crypto.PublicKey, cfg VerifyConfig) error {
	if len(ops) == 0 {
		return NewAuthError(EmptyTransaction, ErrorContext{})
	}

	state := NewSignState(recoveredKeys, availableKeys, cfg.PriorActiveApprovals, cfg.tempAccount())
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

	rejectedCustom := map[AccountID][]Authority{}
	requiredActive := map[AccountID]bool{}
	requiredOwner := map[AccountID]bool{}
	var other []Authority

	for _, op := range ops {
		active, owner, loose := op.RequiredAuthorities(cfg.IgnoreCustomRequiredAuths)
		other = append(other, loose...)
		for _, a := range owner {
			requiredOwner[a] = true
		}

		opActive := map[AccountID]bool{}
		for _, a := range active {
			opActive[a] = true
		}

		if !cfg.IgnoreCustomRequiredAuths {
			for account := range opActive {
				var rejected []Authority
				customs, err := cfg.GetCustom(account, op, &rejected)
				if err != nil {
					continue
				}
				if len(rejected) > 0 {
					rejectedCustom[account] = append(rejectedCustom[account], rejected...)
				}
				for _, custom := range customs {
					if evalr.CheckAuthority(&custom, 0) {
						delete(opActive, account)
						break
					}
				}
			}
		}

		for a := range opActive {
			requiredActive[a] = true
		}
	}

	committee := cfg.committeeAccount()
	if !cfg.AllowCommittee && requiredActive[committee] {
		return NewAuthError(InvalidCommitteeApproval, ErrorContext{
			Account:        committee,
			OperationCount: len(ops),
			SignatureCount: len(recoveredKeys),
			RejectedCustom: rejectedCustom,
		})
	}

	for _, auth := range other {
		a := auth
		if !evalr.CheckAuthority(&a, 0) {
			return NewAuthError(MissingOtherAuth, ErrorContext{
				Authority:      &a,
				OperationCount: len(ops),
				SignatureCount: len(recoveredKeys),
				RejectedCustom: rejectedCustom,
			})
		}
	}

	priorOwner := make(map[AccountID]bool, len(cfg.PriorOwnerApprovals))
	for _, a := range cfg.PriorOwnerApprovals {
		priorOwner[a] = true
	}
	for _, account := range sortedAccounts(requiredOwner) {
		if priorOwner[account] {
			continue
		}
		owner, err := cfg.GetOwner(account)
		if err != nil || !evalr.CheckAuthority(owner, 0) {
			return NewAuthError(MissingOwnerAuth, ErrorContext{
				Account:        account,
				OperationCount: len(ops),
				SignatureCount: len(recoveredKeys),
				RejectedCustom: rejectedCustom,
			})
		}
	}

	for _, account := range sortedAccounts(requiredActive) {
		if evalr.CheckAccount(account) {
			continue
		}
		owner, err := cfg.GetOwner(account)
		if err != nil || !evalr.CheckAuthority(owner, 0) {
			return NewAuthError(MissingActiveAuth, ErrorContext{
				Account:        account,
				OperationCount: len(ops),
				SignatureCount: len(recoveredKeys),
				RejectedCustom: rejectedCustom,
			})
		}
	}

	unused := state.UnusedKeys()
	if len(unused) > 0 {
		state.RemoveUnusedSignatures()
		keys := make([]string, 0, len(unused))
		for _, k := range unused {
			keys = append(keys, k.String())
		}
		return NewAuthError(IrrelevantSignature, ErrorContext{
			OperationCount: len(ops),
			SignatureCount: len(recoveredKeys),
			IrrelevantKeys: keys,
		})
	}

	return nil
}

func sortedAccounts(m map[AccountID]bool) []AccountID {
	out := make([]AccountID, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
