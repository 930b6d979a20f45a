package ledgerstate

import (
	"encoding/binary"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"
)

// region StateRef /////////////////////////////////////////////////////////////////////////////////////////////////////

// StateRefLength contains the amount of bytes that a marshaled version of the StateRef contains.
const StateRefLength = TransactionIDLength + marshalutil.Uint16Size

// StateRef is the data type that represents a reference to a ledger state (which consists of the TransactionID of the
// Transaction that produced the state and the index of the state among that Transaction's outputs).
type StateRef [StateRefLength]byte

// EmptyStateRef represents the zero-value of a StateRef.
var EmptyStateRef StateRef

// NewStateRef is the constructor for the StateRef.
func NewStateRef(transactionID TransactionID, index uint16) (stateRef StateRef) {
	copy(stateRef[:TransactionIDLength], transactionID.Bytes())
	binary.LittleEndian.PutUint16(stateRef[TransactionIDLength:], index)

	return
}

// StateRefFromBytes unmarshals a StateRef from a sequence of bytes.
func StateRefFromBytes(bytes []byte) (stateRef StateRef, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if stateRef, err = StateRefFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse StateRef from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// StateRefFromBase58 creates a StateRef from a base58 encoded string.
func StateRefFromBase58(base58String string) (stateRef StateRef, err error) {
	bytes, err := base58.Decode(base58String)
	if err != nil {
		err = xerrors.Errorf("error while decoding base58 encoded StateRef (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}

	if stateRef, _, err = StateRefFromBytes(bytes); err != nil {
		err = xerrors.Errorf("failed to parse StateRef from bytes: %w", err)
		return
	}

	return
}

// StateRefFromMarshalUtil unmarshals a StateRef using a MarshalUtil (for easier unmarshaling).
func StateRefFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (stateRef StateRef, err error) {
	stateRefBytes, err := marshalUtil.ReadBytes(StateRefLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse StateRef (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(stateRef[:], stateRefBytes)

	return
}

// TransactionID returns the TransactionID part of a StateRef.
func (s StateRef) TransactionID() (transactionID TransactionID) {
	copy(transactionID[:], s[:TransactionIDLength])

	return
}

// Index returns the output index part of a StateRef.
func (s StateRef) Index() uint16 {
	return binary.LittleEndian.Uint16(s[TransactionIDLength:])
}

// Bytes marshals the StateRef into a sequence of bytes.
func (s StateRef) Bytes() []byte {
	return s[:]
}

// Base58 returns a base58 encoded version of the StateRef.
func (s StateRef) Base58() string {
	return base58.Encode(s[:])
}

// String creates a human readable version of the StateRef.
func (s StateRef) String() string {
	return stringify.Struct("StateRef",
		stringify.StructField("transactionID", s.TransactionID()),
		stringify.StructField("index", s.Index()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
