package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplechain-go/authcore/crypto"
)

func demoTx() *Transaction {
	return &Transaction{
		TransactionHeader: TransactionHeader{
			RefBlockNum:    1,
			RefBlockPrefix: 2,
			Expiration:     100,
		},
		Operations: []Operation{
			TransferOperation{From: "alice", To: "bob", Amount: 42, Memo: "hi"},
		},
	}
}

func TestTransactionSetReferenceBlockByteReversesLowWord(t *testing.T) {
	var blockID SHA256Type
	blockID[0], blockID[1], blockID[2], blockID[3] = 0x00, 0x00, 0x12, 0x34
	blockID[4], blockID[5], blockID[6], blockID[7] = 0xAA, 0xBB, 0xCC, 0xDD

	tx := &Transaction{}
	tx.SetReferenceBlock(blockID)

	assert.EqualValues(t, 0x3412, tx.RefBlockNum)
	assert.EqualValues(t, 0xAABBCCDD, tx.RefBlockPrefix)
}

func TestTransactionIDIsTruncatedDigest(t *testing.T) {
	tx := demoTx()
	digest, err := tx.Digest()
	require.NoError(t, err)
	id, err := tx.ID()
	require.NoError(t, err)

	assert.Equal(t, digest[:idSize], id[:idSize])
	for i := idSize; i < len(id); i++ {
		assert.Zero(t, id[i])
	}
}

func TestTransactionSigDigestVariesWithChainID(t *testing.T) {
	tx := demoTx()
	var chainA, chainB SHA256Type
	chainA[0] = 1
	chainB[0] = 2

	dA, err := tx.SigDigest(chainA)
	require.NoError(t, err)
	dB, err := tx.SigDigest(chainB)
	require.NoError(t, err)

	assert.NotEqual(t, dA, dB)
}

func TestSignedTransactionSignAndRecover(t *testing.T) {
	priv, err := crypto.NewRandomPrivateKey()
	require.NoError(t, err)

	tx := demoTx()
	signed := NewSignedTransaction(tx)
	var chainID SHA256Type
	require.NoError(t, signed.Sign(priv, chainID))
	require.Len(t, signed.Signatures, 1)

	keys, err := signed.GetSignatureKeys(chainID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, priv.PublicKey().Content, keys[0].Content)
}

func TestSignedTransactionDuplicateSignatureRejected(t *testing.T) {
	priv, err := crypto.NewRandomPrivateKey()
	require.NoError(t, err)

	tx := demoTx()
	signed := NewSignedTransaction(tx)
	var chainID SHA256Type
	sig, err := signed.SignDigest(priv, chainID)
	require.NoError(t, err)
	signed.Signatures = []crypto.Signature{sig, sig}

	_, err = signed.GetSignatureKeys(chainID)
	require.Error(t, err)
}

func TestPrecomputableTransactionMemoizesID(t *testing.T) {
	tx := demoTx()
	signed := NewSignedTransaction(tx)
	p := NewPrecomputableTransaction(signed)

	id1, err := p.ID()
	require.NoError(t, err)
	id2, err := p.ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	p.Invalidate()
	assert.False(t, p.Validated())
	p.MarkValidated()
	assert.True(t, p.Validated())
}

func TestPackedTransactionRoundTripNone(t *testing.T) {
	tx := demoTx()
	packed, err := tx.Pack(None)
	require.NoError(t, err)

	got, err := packed.GetTransaction()
	require.NoError(t, err)
	assert.Equal(t, tx.TransactionHeader, got.TransactionHeader)
	require.Len(t, got.Operations, 1)
	xfer, ok := got.Operations[0].(*TransferOperation)
	require.True(t, ok)
	assert.Equal(t, AccountID("alice"), xfer.From)
	assert.Equal(t, AccountID("bob"), xfer.To)
	assert.EqualValues(t, 42, xfer.Amount)
	assert.Equal(t, "hi", xfer.Memo)
}

func TestPackedTransactionRoundTripZlib(t *testing.T) {
	tx := demoTx()
	packed, err := tx.Pack(Zlib)
	require.NoError(t, err)

	got, err := packed.GetTransaction()
	require.NoError(t, err)
	assert.Equal(t, tx.TransactionHeader, got.TransactionHeader)
}

func TestSignedTransactionPackRoundTrip(t *testing.T) {
	priv, err := crypto.NewRandomPrivateKey()
	require.NoError(t, err)

	tx := demoTx()
	signed := NewSignedTransaction(tx)
	var chainID SHA256Type
	require.NoError(t, signed.Sign(priv, chainID))

	packed, err := signed.Pack(None)
	require.NoError(t, err)

	got, err := packed.GetSignedTransaction()
	require.NoError(t, err)
	require.Len(t, got.Signatures, 1)
	assert.Equal(t, signed.Signatures[0].Content, got.Signatures[0].Content)
}
