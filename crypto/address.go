package crypto

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

// Address is a legacy wallet address: a version byte followed by the
// ripemd160(sha256(pubkey)) hash, base58check-encoded (the modern alias from
// LegacyAliases holds ripemd160(sha512(pubkey)) instead). It exists so that
// older signatures tied to these addresses rather than to a raw public key
// can still be matched against a provided key during authority evaluation.
type Address struct {
	Version byte
	Hash160 [20]byte
}

// LegacyAddressVersions are the two version bytes the evaluator must derive
// and index every public key under (see sign-state's five-alias rule).
var LegacyAddressVersions = [2]byte{0, 56}

func (a Address) String() string {
	payload := append([]byte{a.Version}, a.Hash160[:]...)
	checksum := sha256Checksum(payload)
	return base58.Encode(append(payload, checksum...))
}

func sha256Checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// NewAddress derives the address for pubKeyBytes (compressed or
// uncompressed serialization, caller's choice) under the given legacy
// version byte.
func NewAddress(pubKeyBytes []byte, version byte) Address {
	return Address{Version: version, Hash160: hash160(pubKeyBytes)}
}

// LegacyAliases returns the five address aliases a public key is known by:
// the modern address derived directly from the compressed key, plus the
// four legacy forms (compressed/uncompressed crossed with the two version
// bytes). Sign-state indexes all five against the originating key.
func (p PublicKey) LegacyAliases() ([5]Address, error) {
	var out [5]Address
	compressed := p.Content
	key, err := p.Key()
	if err != nil {
		return out, err
	}
	uncompressed := key.SerializeUncompressed()

	// modern address, derived directly from the key: ripemd160(sha512(key))
	modern := sha512.Sum512(compressed)
	h := ripemd160.New()
	h.Write(modern[:])
	copy(out[0].Hash160[:], h.Sum(nil))
	out[1] = NewAddress(compressed, LegacyAddressVersions[0])
	out[2] = NewAddress(compressed, LegacyAddressVersions[1])
	out[3] = NewAddress(uncompressed, LegacyAddressVersions[0])
	out[4] = NewAddress(uncompressed, LegacyAddressVersions[1])
	return out, nil
}
