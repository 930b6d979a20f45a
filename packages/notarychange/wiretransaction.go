package notarychange

import (
	"sync"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/identity"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/hashing"
	"github.com/axisledger/axis/packages/ledgerstate"
)

// region WireTransaction //////////////////////////////////////////////////////////////////////////////////////////////

// WireTransaction is the serialized, on-the-wire form of a notary-change transaction: an ordered list of opaque
// serialized components whose positions are given by ComponentIndex. The identity of a WireTransaction is a hash
// chain over its raw components, which makes it robust against re-encoding differences of the decoded values.
type WireTransaction struct {
	components [][]byte

	inputs         []ledgerstate.StateRef
	notary         *identity.Identity
	newNotary      *identity.Identity
	parametersHash *hashing.ContentHash

	id      *ledgerstate.TransactionID
	idMutex sync.RWMutex
}

// NewWireTransaction creates a new WireTransaction from the given details. It serializes the components in wire order
// and fails with ErrEmptyInputs or ErrSameNotary if the construction-time invariants are violated.
func NewWireTransaction(inputs []ledgerstate.StateRef, notary, newNotary *identity.Identity, parametersHash *hashing.ContentHash) (wireTransaction *WireTransaction, err error) {
	inputsComponent := marshalutil.New().WriteUint16(uint16(len(inputs)))
	for _, ref := range inputs {
		inputsComponent.WriteBytes(ref.Bytes())
	}

	components := [][]byte{
		inputsComponent.Bytes(),
		notary.PublicKey().Bytes(),
		newNotary.PublicKey().Bytes(),
	}
	if parametersHash != nil {
		components = append(components, parametersHash.Bytes())
	}

	return wireTransactionFromComponents(components)
}

// WireTransactionFromBytes unmarshals a WireTransaction from a sequence of bytes.
func WireTransactionFromBytes(bytes []byte) (wireTransaction *WireTransaction, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if wireTransaction, err = WireTransactionFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse WireTransaction from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// WireTransactionFromMarshalUtil unmarshals a WireTransaction using a MarshalUtil (for easier unmarshaling).
func WireTransactionFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (wireTransaction *WireTransaction, err error) {
	componentCount, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse component count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if componentCount < MandatoryComponentCount || componentCount > MaxComponentCount {
		err = xerrors.Errorf("unexpected component count %d: %w", componentCount, ErrMalformedComponents)
		return
	}

	components := make([][]byte, componentCount)
	for i := uint16(0); i < componentCount; i++ {
		componentSize, sizeErr := marshalUtil.ReadUint32()
		if sizeErr != nil {
			err = xerrors.Errorf("failed to parse size of component %d (%v): %w", i, sizeErr, cerrors.ErrParseBytesFailed)
			return
		}
		if components[i], err = marshalUtil.ReadBytes(int(componentSize)); err != nil {
			err = xerrors.Errorf("failed to parse component %d (%v): %w", i, err, cerrors.ErrParseBytesFailed)
			return
		}
	}

	return wireTransactionFromComponents(components)
}

// wireTransactionFromComponents decodes the component list and checks the construction-time invariants. It is shared
// by all constructors so that no WireTransaction can exist in an unvalidated form.
func wireTransactionFromComponents(components [][]byte) (wireTransaction *WireTransaction, err error) {
	wireTransaction = &WireTransaction{components: components}

	inputsUtil := marshalutil.New(components[ComponentInputs])
	inputCount, err := inputsUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse input count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return nil, err
	}
	if inputCount == 0 {
		return nil, xerrors.Errorf("wire transaction declares no inputs: %w", ErrEmptyInputs)
	}
	wireTransaction.inputs = make([]ledgerstate.StateRef, inputCount)
	for i := uint16(0); i < inputCount; i++ {
		if wireTransaction.inputs[i], err = ledgerstate.StateRefFromMarshalUtil(inputsUtil); err != nil {
			return nil, xerrors.Errorf("failed to parse input %d from MarshalUtil: %w", i, err)
		}
	}

	notaryPublicKey, _, err := ed25519.PublicKeyFromBytes(components[ComponentNotary])
	if err != nil {
		return nil, xerrors.Errorf("failed to parse notary public key (%v): %w", err, cerrors.ErrParseBytesFailed)
	}
	wireTransaction.notary = identity.New(notaryPublicKey)

	newNotaryPublicKey, _, err := ed25519.PublicKeyFromBytes(components[ComponentNewNotary])
	if err != nil {
		return nil, xerrors.Errorf("failed to parse new notary public key (%v): %w", err, cerrors.ErrParseBytesFailed)
	}
	wireTransaction.newNotary = identity.New(newNotaryPublicKey)

	if wireTransaction.notary.ID() == wireTransaction.newNotary.ID() {
		return nil, xerrors.Errorf("notary %s: %w", wireTransaction.notary.ID(), ErrSameNotary)
	}

	if len(components) > int(ComponentParametersHash) {
		parametersHash, _, hashErr := hashing.ContentHashFromBytes(components[ComponentParametersHash])
		if hashErr != nil {
			return nil, xerrors.Errorf("failed to parse network parameters hash: %w", hashErr)
		}
		wireTransaction.parametersHash = &parametersHash
	}

	return wireTransaction, nil
}

// ID returns the identifier of the WireTransaction: every raw component is digested independently and the digests are
// combined pairwise in component order. Since calculating the ID is a resource intensive operation we calculate this
// value lazy and use double checked locking.
func (w *WireTransaction) ID() ledgerstate.TransactionID {
	w.idMutex.RLock()
	if w.id != nil {
		defer w.idMutex.RUnlock()

		return *w.id
	}

	w.idMutex.RUnlock()
	w.idMutex.Lock()
	defer w.idMutex.Unlock()

	if w.id != nil {
		return *w.id
	}

	componentHashes := make([]hashing.ContentHash, len(w.components))
	for i, component := range w.components {
		componentHashes[i] = hashing.Digest(component)
	}
	id := ledgerstate.NewTransactionID(hashing.Chain(componentHashes...))
	w.id = &id

	return id
}

// Inputs returns the references of the states consumed by the WireTransaction.
func (w *WireTransaction) Inputs() []ledgerstate.StateRef {
	return w.inputs
}

// Notary returns the incumbent notary of the WireTransaction.
func (w *WireTransaction) Notary() *identity.Identity {
	return w.notary
}

// NewNotary returns the successor notary of the WireTransaction.
func (w *WireTransaction) NewNotary() *identity.Identity {
	return w.newNotary
}

// ParametersHash returns the explicitly declared network parameters hash. The second return value is false if the
// component is absent, in which case the transaction resolves against the default network parameters.
func (w *WireTransaction) ParametersHash() (hashing.ContentHash, bool) {
	if w.parametersHash == nil {
		return hashing.EmptyContentHash, false
	}

	return *w.parametersHash, true
}

// Component returns the raw serialized component at the given index.
func (w *WireTransaction) Component(index ComponentIndex) []byte {
	return w.components[index]
}

// ComponentCount returns the number of components the WireTransaction carries.
func (w *WireTransaction) ComponentCount() int {
	return len(w.components)
}

// Bytes returns a marshaled version of the WireTransaction.
func (w *WireTransaction) Bytes() []byte {
	marshalUtil := marshalutil.New().
		WriteUint16(uint16(len(w.components)))
	for _, component := range w.components {
		marshalUtil.WriteUint32(uint32(len(component)))
		marshalUtil.WriteBytes(component)
	}

	return marshalUtil.Bytes()
}

// String creates a human readable version of the WireTransaction.
func (w *WireTransaction) String() string {
	return stringify.Struct("WireTransaction",
		stringify.StructField("id", w.ID()),
		stringify.StructField("inputs", uint64(len(w.inputs))),
		stringify.StructField("notary", w.notary.ID()),
		stringify.StructField("newNotary", w.newNotary.ID()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
