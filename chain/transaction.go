package chain

import (
	"bytes"
	"compress/zlib"
	"crypto/sha256"
	"fmt"
	"io/ioutil"

	"github.com/simplechain-go/authcore/crypto"
)

// idSize is the number of leading digest bytes kept as the transaction id;
// the remainder of the SHA-256 digest is discarded.
const idSize = 20

// TransactionHeader carries the reference-block stability tag and the
// transaction's absolute expiration.
type TransactionHeader struct {
	RefBlockNum    uint16
	RefBlockPrefix uint32
	Expiration     uint32 // seconds since epoch
}

// Transaction is the immutable, unsigned body: a reference block tag, an
// expiration, an ordered non-empty operation list, and future-compatibility
// extensions.
type Transaction struct {
	TransactionHeader
	Operations []Operation
	Extensions []Extension
}

// SetReferenceBlock sets RefBlockNum to the byte-reversed low 16 bits of
// word 0 of blockID, and RefBlockPrefix to word 1. This byte-reversal is a
// consensus quirk inherited from original_source and must be preserved
// bit-exactly.
func (tx *Transaction) SetReferenceBlock(blockID SHA256Type) {
	word0 := uint32(blockID[0])<<24 | uint32(blockID[1])<<16 | uint32(blockID[2])<<8 | uint32(blockID[3])
	lo := uint16(word0 & 0xFFFF)
	tx.RefBlockNum = lo>>8 | lo<<8 // byte-reverse the low 16 bits of word 0
	tx.RefBlockPrefix = uint32(blockID[4])<<24 | uint32(blockID[5])<<16 | uint32(blockID[6])<<8 | uint32(blockID[7])
}

// Digest hashes the transaction's canonical encoding.
func (tx *Transaction) Digest() (SHA256Type, error) {
	enc, err := MarshalBinary(*tx)
	if err != nil {
		return SHA256Type{}, err
	}
	return sha256.Sum256(enc), nil
}

// SigDigest is the chain-id-prefixed digest that signatures are produced
// over: hash(encode(chain_id) || encode(transaction)). The chain id
// precedes the transaction to prevent replay across chains.
func (tx *Transaction) SigDigest(chainID SHA256Type) (SHA256Type, error) {
	encTx, err := MarshalBinary(*tx)
	if err != nil {
		return SHA256Type{}, err
	}
	buf := make([]byte, 0, len(chainID)+len(encTx))
	buf = append(buf, chainID[:]...)
	buf = append(buf, encTx...)
	return sha256.Sum256(buf), nil
}

// ID is the truncated digest used as the transaction's public identity.
func (tx *Transaction) ID() (SHA256Type, error) {
	digest, err := tx.Digest()
	if err != nil {
		return SHA256Type{}, err
	}
	var id SHA256Type
	copy(id[:idSize], digest[:idSize])
	return id, nil
}

// SignedTransaction adds the signature sequence produced over SigDigest.
type SignedTransaction struct {
	Transaction
	Signatures      []crypto.Signature
	ContextFreeData []rawBytes
}

func NewSignedTransaction(tx *Transaction) *SignedTransaction {
	return &SignedTransaction{
		Transaction: *tx,
		Signatures:  make([]crypto.Signature, 0),
	}
}

// Sign appends a compact recoverable signature over the signing digest.
func (s *SignedTransaction) Sign(key *crypto.PrivateKey, chainID SHA256Type) error {
	sig, err := s.SignDigest(key, chainID)
	if err != nil {
		return err
	}
	s.Signatures = append(s.Signatures, sig)
	return nil
}

// SignDigest returns a signature over the signing digest without mutating
// the transaction -- useful for dry-run signing.
func (s *SignedTransaction) SignDigest(key *crypto.PrivateKey, chainID SHA256Type) (crypto.Signature, error) {
	digest, err := s.SigDigest(chainID)
	if err != nil {
		return crypto.Signature{}, err
	}
	return key.Sign(digest[:])
}

// GetSignatureKeys recovers the public key behind every signature. Two
// signatures recovering to the same key is a fatal protocol error.
func (s *SignedTransaction) GetSignatureKeys(chainID SHA256Type) ([]crypto.PublicKey, error) {
	digest, err := s.SigDigest(chainID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(s.Signatures))
	keys := make([]crypto.PublicKey, 0, len(s.Signatures))
	for _, sig := range s.Signatures {
		key, err := sig.PublicKey(digest[:])
		if err != nil {
			return nil, err
		}
		k := string(key.Content)
		if seen[k] {
			return nil, NewAuthError(DuplicateSignature, ErrorContext{})
		}
		seen[k] = true
		keys = append(keys, key)
	}
	return keys, nil
}

// ProcessedTransaction adds an opaque operation-result sequence, tagged the
// same way Operations is, so an explorer or RPC layer could eventually
// attach real results without changing this core.
type ProcessedTransaction struct {
	SignedTransaction
	OperationResults []Extension
}

// PrecomputableTransaction is a signed transaction with memoized id, packed
// size and recovered signer set. Per the documented trade-off in
// original_source, the signee cache is keyed implicitly on the chain id
// used at the first call; re-verifying under a different chain id requires
// an explicit Invalidate().
type PrecomputableTransaction struct {
	SignedTransaction

	txID       *SHA256Type
	packedSize *int
	signees    []crypto.PublicKey
	validated  bool
}

func NewPrecomputableTransaction(s *SignedTransaction) *PrecomputableTransaction {
	return &PrecomputableTransaction{SignedTransaction: *s}
}

// ID returns the memoized transaction id, computing it on first access.
func (p *PrecomputableTransaction) ID() (SHA256Type, error) {
	if p.txID != nil {
		return *p.txID, nil
	}
	id, err := p.Transaction.ID()
	if err != nil {
		return SHA256Type{}, err
	}
	p.txID = &id
	return id, nil
}

// PackedSize returns the memoized size of the canonical encoding.
func (p *PrecomputableTransaction) PackedSize() (int, error) {
	if p.packedSize != nil {
		return *p.packedSize, nil
	}
	enc, err := MarshalBinary(p.Transaction)
	if err != nil {
		return 0, err
	}
	n := len(enc)
	p.packedSize = &n
	return n, nil
}

// Signees returns the memoized recovered signer set for chainID, computing
// it on first access. Subsequent calls under a *different* chain id still
// return the cached set -- call Invalidate() first if that is not wanted.
func (p *PrecomputableTransaction) Signees(chainID SHA256Type) ([]crypto.PublicKey, error) {
	if p.signees != nil {
		return p.signees, nil
	}
	keys, err := p.SignedTransaction.GetSignatureKeys(chainID)
	if err != nil {
		return nil, err
	}
	p.signees = keys
	return keys, nil
}

// Validated reports whether this transaction has already passed
// verify_authority once in this process.
func (p *PrecomputableTransaction) Validated() bool { return p.validated }

// MarkValidated records that verify_authority has succeeded for this
// transaction, so repeat checks (e.g. at inclusion time after having
// already verified at the edge) can be skipped by the caller.
func (p *PrecomputableTransaction) MarkValidated() { p.validated = true }

// Invalidate clears every memoized field. Mutating a precomputable
// transaction's immutable fields after memoization without calling this
// first is a client-side bug the core does not defend against.
func (p *PrecomputableTransaction) Invalidate() {
	p.txID = nil
	p.packedSize = nil
	p.signees = nil
	p.validated = false
}

// PackedTransaction is the wire form of a signed transaction: the
// signature sequence alongside a possibly-compressed encoding of the body.
type PackedTransaction struct {
	Signatures             []crypto.Signature
	Compression            CompressionType
	PackedContextFreeData  []byte
	PackedTrx              []byte
	unPackedTrx            *Transaction
}

func (tx *Transaction) Pack(compression CompressionType) (*PackedTransaction, error) {
	var packedTrx []byte
	var err error
	switch compression {
	case None:
		packedTrx, err = MarshalBinary(*tx)
	case Zlib:
		packedTrx, err = tx.zlibCompress()
	default:
		return nil, fmt.Errorf("pack: unknown compression type %d", compression)
	}
	if err != nil {
		return nil, err
	}
	return &PackedTransaction{
		Signatures:            make([]crypto.Signature, 0),
		Compression:           compression,
		PackedContextFreeData: make([]byte, 0),
		PackedTrx:             packedTrx,
	}, nil
}

func (s *SignedTransaction) Pack(compression CompressionType) (*PackedTransaction, error) {
	tx := s.Transaction
	var packedTrx []byte
	var err error
	packedContextFreeData, err := MarshalBinary(s.ContextFreeData)
	if err != nil {
		return nil, err
	}
	switch compression {
	case None:
		packedTrx, err = MarshalBinary(tx)
	case Zlib:
		packedTrx, err = tx.zlibCompress()
		if err == nil {
			packedContextFreeData, err = zlibCompress(packedContextFreeData)
		}
	default:
		return nil, fmt.Errorf("pack: unknown compression type %d", compression)
	}
	if err != nil {
		return nil, err
	}
	return &PackedTransaction{
		Signatures:            s.Signatures,
		Compression:           compression,
		PackedContextFreeData: packedContextFreeData,
		PackedTrx:             packedTrx,
	}, nil
}

func (p *PackedTransaction) unpack() error {
	var raw []byte
	var err error
	switch p.Compression {
	case None:
		raw = p.PackedTrx
	case Zlib:
		raw, err = zlibDecompress(p.PackedTrx)
	default:
		return fmt.Errorf("unpack: unknown compression type %d", p.Compression)
	}
	if err != nil {
		return err
	}
	decoder := NewDecoder(raw)
	var tx Transaction
	if err := decoder.Decode(&tx); err != nil {
		return err
	}
	p.unPackedTrx = &tx
	return nil
}

func (p *PackedTransaction) GetTransaction() (*Transaction, error) {
	if p.unPackedTrx == nil {
		if err := p.unpack(); err != nil {
			return nil, err
		}
	}
	return p.unPackedTrx, nil
}

func (p *PackedTransaction) GetSignedTransaction() (*SignedTransaction, error) {
	tx, err := p.GetTransaction()
	if err != nil {
		return nil, err
	}
	s := NewSignedTransaction(tx)
	s.Signatures = p.Signatures

	var raw []byte
	switch p.Compression {
	case None:
		raw = p.PackedContextFreeData
	case Zlib:
		raw, err = zlibDecompress(p.PackedContextFreeData)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("get signed transaction: unknown compression type %d", p.Compression)
	}
	if len(raw) > 0 {
		decoder := NewDecoder(raw)
		if err := decoder.Decode(&s.ContextFreeData); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (tx *Transaction) zlibCompress() ([]byte, error) {
	in, err := MarshalBinary(*tx)
	if err != nil {
		return nil, err
	}
	return zlibCompress(in)
}

func zlibCompress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	w := zlib.NewWriter(&buffer)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func zlibDecompress(packedTrx []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(packedTrx))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return ioutil.ReadAll(reader)
}
