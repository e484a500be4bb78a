package chain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplechain-go/authcore/crypto"
)

func newKeyPair(t *testing.T) (*crypto.PrivateKey, crypto.PublicKey) {
	t.Helper()
	priv, err := crypto.NewRandomPrivateKey()
	require.NoError(t, err)
	return priv, priv.PublicKey()
}

func TestCheckAuthoritySingleKeyMeetsThreshold(t *testing.T) {
	_, pub := newKeyPair(t)
	auth := NewAuthority(1)
	auth.AddKeyAuth(pub, 1)

	state := NewSignState([]crypto.PublicKey{pub}, nil, nil, TempAccount)
	evalr := &Evaluator{State: state, MaxRecursion: 2}
	assert.True(t, evalr.CheckAuthority(&auth, 0))
}

func TestCheckAuthorityBelowThresholdFails(t *testing.T) {
	_, pub1 := newKeyPair(t)
	_, pub2 := newKeyPair(t)
	auth := NewAuthority(2)
	auth.AddKeyAuth(pub1, 1)
	auth.AddKeyAuth(pub2, 1)

	state := NewSignState([]crypto.PublicKey{pub1}, nil, nil, TempAccount)
	evalr := &Evaluator{State: state, MaxRecursion: 2}
	assert.False(t, evalr.CheckAuthority(&auth, 0))
}

func TestCheckAccountAuthRecursesIntoSubAccount(t *testing.T) {
	_, childKey := newKeyPair(t)

	childActive := NewAuthority(1)
	childActive.AddKeyAuth(childKey, 1)

	parentActive := NewAuthority(1)
	parentActive.AddAccountAuth("child", 1)

	active := map[AccountID]*Authority{"child": &childActive}
	owner := map[AccountID]*Authority{}

	state := NewSignState([]crypto.PublicKey{childKey}, nil, nil, TempAccount)
	evalr := &Evaluator{
		State:        state,
		MaxRecursion: 2,
		GetActive: func(a AccountID) (*Authority, error) {
			if v, ok := active[a]; ok {
				return v, nil
			}
			return nil, fmt.Errorf("unknown account %q", a)
		},
		GetOwner: func(a AccountID) (*Authority, error) {
			if v, ok := owner[a]; ok {
				return v, nil
			}
			return nil, fmt.Errorf("unknown account %q", a)
		},
	}

	assert.True(t, evalr.CheckAuthority(&parentActive, 0))
	assert.True(t, state.ApprovedBy("child"))
}

func TestCheckAccountAuthStopsAtMaxRecursion(t *testing.T) {
	_, childKey := newKeyPair(t)
	childActive := NewAuthority(1)
	childActive.AddKeyAuth(childKey, 1)

	parentActive := NewAuthority(1)
	parentActive.AddAccountAuth("child", 1)

	active := map[AccountID]*Authority{"child": &childActive}

	state := NewSignState([]crypto.PublicKey{childKey}, nil, nil, TempAccount)
	evalr := &Evaluator{
		State:        state,
		MaxRecursion: 0, // no recursion allowed past depth 0
		GetActive: func(a AccountID) (*Authority, error) {
			return active[a], nil
		},
		GetOwner: func(a AccountID) (*Authority, error) {
			return nil, fmt.Errorf("no owner for %q", a)
		},
	}

	assert.False(t, evalr.CheckAuthority(&parentActive, 0))
}

func TestCheckAccountAuthFallsBackToOwnerWhenAllowed(t *testing.T) {
	_, ownerKey := newKeyPair(t)
	childOwner := NewAuthority(1)
	childOwner.AddKeyAuth(ownerKey, 1)
	childActive := NewAuthority(1) // empty, unsatisfiable

	parentActive := NewAuthority(1)
	parentActive.AddAccountAuth("child", 1)

	state := NewSignState([]crypto.PublicKey{ownerKey}, nil, nil, TempAccount)
	evalr := &Evaluator{
		State:                  state,
		MaxRecursion:           2,
		AllowNonImmediateOwner: true,
		GetActive: func(a AccountID) (*Authority, error) {
			return &childActive, nil
		},
		GetOwner: func(a AccountID) (*Authority, error) {
			return &childOwner, nil
		},
	}

	assert.True(t, evalr.CheckAuthority(&parentActive, 0))
}
