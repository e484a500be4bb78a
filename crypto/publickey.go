package crypto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil/base58"
)

// PublicKeyPrefix is the textual prefix of the modern key encoding, chosen
// to distinguish it from the legacy addresses derived from the same key.
const PublicKeyPrefix = "EOS"

// PublicKeyLength is the size of a compressed secp256k1 public key.
const PublicKeyLength = 33

// PublicKey is a compressed secp256k1 public key together with its
// canonical text form.
type PublicKey struct {
	Content []byte // 33-byte compressed public key
}

// Key decodes Content into a usable curve point.
func (p PublicKey) Key() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(p.Content, btcec.S256())
}

func (p PublicKey) String() string {
	checksum := ripemd160checksum(p.Content)
	buf := append(append([]byte{}, p.Content...), checksum...)
	return PublicKeyPrefix + base58.Encode(buf)
}

// NewPublicKey parses the canonical "EOS..." text form produced by String.
func NewPublicKey(fromText string) (out PublicKey, err error) {
	if !strings.HasPrefix(fromText, PublicKeyPrefix) {
		return out, fmt.Errorf("public key should start with %s", PublicKeyPrefix)
	}
	raw := base58.Decode(fromText[len(PublicKeyPrefix):])
	if len(raw) <= 4 {
		return out, fmt.Errorf("invalid public key length")
	}
	content := raw[:len(raw)-4]
	checksum := raw[len(raw)-4:]
	if got := ripemd160checksum(content); !equalBytes(got, checksum) {
		return out, fmt.Errorf("public key checksum failed, found %x expected %x", checksum, got)
	}
	if _, err = btcec.ParsePubKey(content, btcec.S256()); err != nil {
		return out, fmt.Errorf("invalid public key point: %s", err)
	}
	return PublicKey{Content: content}, nil
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PublicKey) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err = json.Unmarshal(data, &s); err != nil {
		return
	}
	*p, err = NewPublicKey(s)
	return
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
