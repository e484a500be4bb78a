package crypto

import "golang.org/x/crypto/ripemd160"

// ripemd160checksum returns the leading 4 bytes of the ripemd160 digest of
// data, used as the base58check trailer for public keys and signatures.
// Legacy addresses use a double-SHA-256 trailer instead (see address.go).
func ripemd160checksum(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	sum := h.Sum(nil)
	return sum[:4]
}
