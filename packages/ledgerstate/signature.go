package ledgerstate

import (
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region Signature ////////////////////////////////////////////////////////////////////////////////////////////////////

// Signature represents an ED25519 signature over a Transaction together with the public key that produced it.
type Signature struct {
	publicKey ed25519.PublicKey
	signature ed25519.Signature
}

// NewSignature is the constructor for the Signature.
func NewSignature(publicKey ed25519.PublicKey, signature ed25519.Signature) *Signature {
	return &Signature{
		publicKey: publicKey,
		signature: signature,
	}
}

// SignatureFromBytes unmarshals a Signature from a sequence of bytes.
func SignatureFromBytes(bytes []byte) (signature *Signature, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if signature, err = SignatureFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Signature from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// SignatureFromMarshalUtil unmarshals a Signature using a MarshalUtil (for easier unmarshaling).
func SignatureFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (signature *Signature, err error) {
	signature = &Signature{}
	if signature.publicKey, err = ed25519.ParsePublicKey(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse public key (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if signature.signature, err = ed25519.ParseSignature(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse signature (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// PublicKey returns the public key that produced the Signature.
func (s *Signature) PublicKey() ed25519.PublicKey {
	return s.publicKey
}

// Validate returns true if the Signature is a valid signature of the given data.
func (s *Signature) Validate(data []byte) bool {
	return s.publicKey.VerifySignature(data, s.signature)
}

// Bytes returns a marshaled version of the Signature.
func (s *Signature) Bytes() []byte {
	return marshalutil.New(ed25519.PublicKeySize + ed25519.SignatureSize).
		WriteBytes(s.publicKey.Bytes()).
		WriteBytes(s.signature.Bytes()).
		Bytes()
}

// String creates a human readable version of the Signature.
func (s *Signature) String() string {
	return stringify.Struct("Signature",
		stringify.StructField("publicKey", s.publicKey),
		stringify.StructField("signature", s.signature),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
