package main

import (
	"encoding/json"
	"io/ioutil"

	"github.com/simplechain-go/authcore/chain"
	"github.com/simplechain-go/authcore/crypto"
)

// fixtureKeyAuth and fixtureAuthority mirror the JSON shape of the demo
// account book fixture: account -> {active, owner} authority, each a
// threshold plus a list of WIF-encoded key/weight pairs.
type fixtureKeyAuth struct {
	WIF    string `json:"wif"`
	Weight uint16 `json:"weight"`
}

type fixtureAuthority struct {
	Threshold uint32           `json:"threshold"`
	Keys      []fixtureKeyAuth `json:"keys"`
}

type fixtureAccount struct {
	Active fixtureAuthority `json:"active"`
	Owner  fixtureAuthority `json:"owner"`
}

type fixtureFile struct {
	Accounts map[string]fixtureAccount `json:"accounts"`
}

// loadFixture reads path (a JSON document shaped like fixtureFile) and
// returns a populated AccountBook plus every private key it mentions,
// indexed by the text form of its public key.
func loadFixture(path string) (*chain.AccountBook, map[string]*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var f fixtureFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, nil, err
	}

	book := chain.NewAccountBook()
	keys := make(map[string]*crypto.PrivateKey)

	for accountName, acct := range f.Accounts {
		active, err := buildAuthority(acct.Active, keys)
		if err != nil {
			return nil, nil, err
		}
		owner, err := buildAuthority(acct.Owner, keys)
		if err != nil {
			return nil, nil, err
		}
		book.SetActive(chain.AccountID(accountName), active)
		book.SetOwner(chain.AccountID(accountName), owner)
	}

	return book, keys, nil
}

func buildAuthority(fa fixtureAuthority, keys map[string]*crypto.PrivateKey) (chain.Authority, error) {
	auth := chain.NewAuthority(fa.Threshold)
	for _, fk := range fa.Keys {
		priv, err := crypto.NewPrivateKey(fk.WIF)
		if err != nil {
			return chain.Authority{}, err
		}
		pub := priv.PublicKey()
		keys[pub.String()] = priv
		auth.AddKeyAuth(pub, fk.Weight)
	}
	return auth, nil
}

// demoFixture builds a single-account book in-code for when no fixture
// file is given: "alice" active (and owner) requires one key at weight 1/1.
func demoFixture() (*chain.AccountBook, map[string]*crypto.PrivateKey, error) {
	book := chain.NewAccountBook()
	keys := make(map[string]*crypto.PrivateKey)

	alice, err := crypto.NewRandomPrivateKey()
	if err != nil {
		return nil, nil, err
	}
	aliceAuth := chain.NewAuthority(1)
	aliceAuth.AddKeyAuth(alice.PublicKey(), 1)
	book.SetActive("alice", aliceAuth)
	book.SetOwner("alice", aliceAuth)
	keys[alice.PublicKey().String()] = alice

	return book, keys, nil
}
