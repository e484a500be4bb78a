package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplechain-go/authcore/crypto"
)

// unsatisfiableAuthority has a nonzero threshold and no entries, so
// CheckAuthority can never reach it -- used as a stand-in "no owner
// configured" authority. A threshold-zero Authority is trivially satisfied
// (0 >= 0) and would make every owner-fallback check vacuously succeed.
func unsatisfiableAuthority() Authority {
	return Authority{WeightThreshold: 1}
}

func newAccountBookWithAuth(t *testing.T, account AccountID, active Authority) *AccountBook {
	t.Helper()
	book := NewAccountBook()
	book.SetActive(account, active)
	book.SetOwner(account, unsatisfiableAuthority())
	return book
}

func transferCfg(book *AccountBook) VerifyConfig {
	return VerifyConfig{
		GetActive: book.GetActive,
		GetOwner:  book.GetOwner,
		GetCustom: book.GetCustom,
	}
}

// S1: single-key threshold-met verification succeeds.
func TestVerifyAuthoritySingleKeyMeetsThreshold(t *testing.T) {
	_, pub := newKeyPair(t)
	auth := NewAuthority(1)
	auth.AddKeyAuth(pub, 1)
	book := newAccountBookWithAuth(t, "alice", auth)

	ops := []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}}
	err := VerifyAuthority(ops, []crypto.PublicKey{pub}, nil, transferCfg(book))
	assert.NoError(t, err)
}

// S2: an unrelated second signature is reported as irrelevant.
func TestVerifyAuthorityIrrelevantSignatureFails(t *testing.T) {
	_, pub := newKeyPair(t)
	_, other := newKeyPair(t)
	auth := NewAuthority(1)
	auth.AddKeyAuth(pub, 1)
	book := newAccountBookWithAuth(t, "alice", auth)

	ops := []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}}
	err := VerifyAuthority(ops, []crypto.PublicKey{pub, other}, nil, transferCfg(book))
	require.Error(t, err)
	ae, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, IrrelevantSignature, ae.Kind)
	assert.Contains(t, ae.Context.IrrelevantKeys, other.String())
}

// S3: threshold requires both keys; minimizer keeps both when threshold=3.
func TestVerifyAuthorityTwoKeyThreshold(t *testing.T) {
	priv1, pub1 := newKeyPair(t)
	priv2, pub2 := newKeyPair(t)
	_ = priv1
	_ = priv2
	auth := NewAuthority(3)
	auth.AddKeyAuth(pub1, 2)
	auth.AddKeyAuth(pub2, 2)
	book := newAccountBookWithAuth(t, "alice", auth)

	ops := []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}}
	err := VerifyAuthority(ops, []crypto.PublicKey{pub1, pub2}, nil, transferCfg(book))
	assert.NoError(t, err)

	minimal, err := MinimizeRequiredSignatures(ops, nil, []crypto.PublicKey{pub1, pub2}, transferCfg(book))
	require.NoError(t, err)
	assert.Len(t, minimal, 2)
}

// S3 continued: dropping the threshold to 2 lets the minimizer keep one key.
func TestVerifyAuthorityMinimizeDropsToOneKeyAtLowerThreshold(t *testing.T) {
	_, pub1 := newKeyPair(t)
	_, pub2 := newKeyPair(t)
	auth := NewAuthority(2)
	auth.AddKeyAuth(pub1, 2)
	auth.AddKeyAuth(pub2, 2)
	book := newAccountBookWithAuth(t, "alice", auth)

	ops := []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}}
	minimal, err := MinimizeRequiredSignatures(ops, nil, []crypto.PublicKey{pub1, pub2}, transferCfg(book))
	require.NoError(t, err)
	assert.Len(t, minimal, 1)
}

// S4: account_auths recursion succeeds within max_recursion, fails at 0.
func TestVerifyAuthorityAccountAuthsRecursion(t *testing.T) {
	_, subKey := newKeyPair(t)
	subActive := NewAuthority(1)
	subActive.AddKeyAuth(subKey, 1)

	parentActive := NewAuthority(1)
	parentActive.AddAccountAuth("a2", 1)

	book := NewAccountBook()
	book.SetActive("a1", parentActive)
	book.SetOwner("a1", unsatisfiableAuthority())
	book.SetActive("a2", subActive)
	book.SetOwner("a2", unsatisfiableAuthority())

	ops := []Operation{TransferOperation{From: "a1", To: "bob", Amount: 1}}

	cfg := transferCfg(book)
	cfg.MaxRecursion = 2
	assert.NoError(t, VerifyAuthority(ops, []crypto.PublicKey{subKey}, nil, cfg))

	cfg.MaxRecursion = 0
	err := VerifyAuthority(ops, []crypto.PublicKey{subKey}, nil, cfg)
	require.Error(t, err)
	ae, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, MissingActiveAuth, ae.Kind)
}

// S5: owner authority covers a missing active authority.
func TestVerifyAuthorityOwnerCoversActive(t *testing.T) {
	_, activeKey := newKeyPair(t)
	_, ownerKey := newKeyPair(t)

	active := NewAuthority(1)
	active.AddKeyAuth(activeKey, 1)
	owner := NewAuthority(1)
	owner.AddKeyAuth(ownerKey, 1)

	book := NewAccountBook()
	book.SetActive("alice", active)
	book.SetOwner("alice", owner)

	ops := []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}}
	err := VerifyAuthority(ops, []crypto.PublicKey{ownerKey}, nil, transferCfg(book))
	assert.NoError(t, err)
}

// S6: a satisfied custom authority shortcuts the account out of required_active.
func TestVerifyAuthorityCustomAuthorityShortcut(t *testing.T) {
	_, activeKey := newKeyPair(t)
	_, customKey := newKeyPair(t)

	active := NewAuthority(1)
	active.AddKeyAuth(activeKey, 1)

	custom := NewAuthority(1)
	custom.AddKeyAuth(customKey, 1)

	book := NewAccountBook()
	book.SetActive("alice", active)
	book.SetOwner("alice", unsatisfiableAuthority())
	book.AddCustomAuthority("alice", custom)

	ops := []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}}
	err := VerifyAuthority(ops, []crypto.PublicKey{customKey}, nil, transferCfg(book))
	assert.NoError(t, err)
}

// S7: duplicate signature bytes are rejected before verification runs.
func TestGetSignatureKeysDetectsDuplicate(t *testing.T) {
	priv, _ := newKeyPair(t)
	tx := &Transaction{
		TransactionHeader: TransactionHeader{Expiration: 100},
		Operations:        []Operation{TransferOperation{From: "alice", To: "bob", Amount: 1}},
	}
	signed := NewSignedTransaction(tx)
	var chainID SHA256Type
	sig, err := signed.SignDigest(priv, chainID)
	require.NoError(t, err)
	signed.Signatures = []crypto.Signature{sig, sig}

	_, err = signed.GetSignatureKeys(chainID)
	require.Error(t, err)
	ae, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, DuplicateSignature, ae.Kind)
}

// An empty operation list is rejected outright.
func TestVerifyAuthorityEmptyTransactionFails(t *testing.T) {
	book := NewAccountBook()
	err := VerifyAuthority(nil, nil, nil, transferCfg(book))
	require.Error(t, err)
	ae, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, EmptyTransaction, ae.Kind)
}

// A committee-account requirement is rejected unless explicitly allowed.
func TestVerifyAuthorityCommitteeRequiresOptIn(t *testing.T) {
	_, pub := newKeyPair(t)
	auth := NewAuthority(1)
	auth.AddKeyAuth(pub, 1)
	book := newAccountBookWithAuth(t, CommitteeAccount, auth)

	ops := []Operation{TransferOperation{From: CommitteeAccount, To: "bob", Amount: 1}}
	cfg := transferCfg(book)
	err := VerifyAuthority(ops, []crypto.PublicKey{pub}, nil, cfg)
	require.Error(t, err)
	ae, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, InvalidCommitteeApproval, ae.Kind)

	cfg.AllowCommittee = true
	assert.NoError(t, VerifyAuthority(ops, []crypto.PublicKey{pub}, nil, cfg))
}
