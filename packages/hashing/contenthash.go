package hashing

import (
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// region ContentHash //////////////////////////////////////////////////////////////////////////////////////////////////

// ContentHashLength contains the amount of bytes that a marshaled version of the ContentHash contains.
const ContentHashLength = blake2b.Size256

// ContentHash is the type that represents a cryptographic digest over a sequence of bytes.
type ContentHash [ContentHashLength]byte

// EmptyContentHash represents the zero-value of a ContentHash.
var EmptyContentHash ContentHash

// Digest computes the ContentHash of the given data.
func Digest(data []byte) ContentHash {
	return blake2b.Sum256(data)
}

// Concat combines two ContentHashes into one by hashing their concatenation. The operation is order-sensitive:
// Concat(a, b) and Concat(b, a) yield different results.
func Concat(a, b ContentHash) ContentHash {
	return blake2b.Sum256(byteutils.ConcatBytes(a.Bytes(), b.Bytes()))
}

// Chain combines the given ContentHashes into a single one by left-folding them pairwise with Concat. The result for a
// single element is the element itself. Chaining is order-sensitive and forms a hash chain rather than a balanced tree.
func Chain(hashes ...ContentHash) ContentHash {
	if len(hashes) == 0 {
		panic("Chain requires at least one ContentHash")
	}

	result := hashes[0]
	for _, hash := range hashes[1:] {
		result = Concat(result, hash)
	}

	return result
}

// ContentHashFromBytes unmarshals a ContentHash from a sequence of bytes.
func ContentHashFromBytes(bytes []byte) (contentHash ContentHash, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if contentHash, err = ContentHashFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse ContentHash from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// ContentHashFromBase58 creates a ContentHash from a base58 encoded string.
func ContentHashFromBase58(base58String string) (contentHash ContentHash, err error) {
	bytes, err := base58.Decode(base58String)
	if err != nil {
		err = xerrors.Errorf("error while decoding base58 encoded ContentHash (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}

	if contentHash, _, err = ContentHashFromBytes(bytes); err != nil {
		err = xerrors.Errorf("failed to parse ContentHash from bytes: %w", err)
		return
	}

	return
}

// ContentHashFromMarshalUtil unmarshals a ContentHash using a MarshalUtil (for easier unmarshaling).
func ContentHashFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (contentHash ContentHash, err error) {
	contentHashBytes, err := marshalUtil.ReadBytes(ContentHashLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse ContentHash (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(contentHash[:], contentHashBytes)

	return
}

// Bytes returns a marshaled version of the ContentHash.
func (c ContentHash) Bytes() []byte {
	return c[:]
}

// Base58 returns a base58 encoded version of the ContentHash.
func (c ContentHash) Base58() string {
	return base58.Encode(c[:])
}

// String creates a human readable version of the ContentHash.
func (c ContentHash) String() string {
	return "ContentHash(" + c.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
