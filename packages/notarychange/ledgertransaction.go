package notarychange

import (
	"fmt"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/identity"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/iotaledger/hive.go/types"
	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/ledgerstate"
	"github.com/axisledger/axis/packages/netparams"
)

// region LedgerTransaction ////////////////////////////////////////////////////////////////////////////////////////////

// LedgerTransaction is the fully resolved form of a notary-change transaction. It is the single source of truth for
// whether the transaction is structurally valid and who must have signed it. All structural checks run in the
// constructor; a LedgerTransaction that exists is valid. The type is immutable and freely shareable.
type LedgerTransaction struct {
	id         ledgerstate.TransactionID
	inputs     []*ledgerstate.StateAndRef
	notary     *identity.Identity
	newNotary  *identity.Identity
	signatures []*ledgerstate.Signature
	parameters *netparams.NetworkParameters
}

// NewLedgerTransaction creates a new LedgerTransaction from the given resolved details. Validation is atomic: the
// encumbrance completeness of the inputs and the whitelisting of the new notary are checked before the value escapes.
// The old notary is deliberately not required to be whitelisted, so that states of an absorbed network can be moved
// onto a notary of the surviving one.
func NewLedgerTransaction(id ledgerstate.TransactionID, inputs []*ledgerstate.StateAndRef, notary, newNotary *identity.Identity, signatures []*ledgerstate.Signature, parameters *netparams.NetworkParameters) (ledgerTransaction *LedgerTransaction, err error) {
	refs := make(map[ledgerstate.StateRef]types.Empty, len(inputs))
	for _, input := range inputs {
		refs[input.Ref()] = types.Void
	}
	for _, input := range inputs {
		encumbrance, encumbered := input.State().Encumbrance()
		if !encumbered {
			continue
		}

		// encumbrance links only ever point within the originating transaction of the encumbered state
		target := ledgerstate.NewStateRef(input.Ref().TransactionID(), encumbrance)
		if _, found := refs[target]; !found {
			return nil, &MissingEncumbranceError{
				TransactionID: id,
				MissingRef:    target,
				Direction:     DirectionInput,
			}
		}
	}

	if !parameters.IsWhitelistedNotary(newNotary) {
		return nil, xerrors.Errorf("transaction %s, notary %s: %w", id.Base58(), newNotary.ID(), ErrNotaryNotWhitelisted)
	}

	return &LedgerTransaction{
		id:         id,
		inputs:     inputs,
		notary:     notary,
		newNotary:  newNotary,
		signatures: signatures,
		parameters: parameters,
	}, nil
}

// ID returns the identifier of the LedgerTransaction. It is copied from the wire form and never recomputed.
func (l *LedgerTransaction) ID() ledgerstate.TransactionID {
	return l.id
}

// Inputs returns the resolved inputs of the LedgerTransaction in wire order.
func (l *LedgerTransaction) Inputs() []*ledgerstate.StateAndRef {
	return l.inputs
}

// Notary returns the incumbent notary.
func (l *LedgerTransaction) Notary() *identity.Identity {
	return l.notary
}

// NewNotary returns the successor notary.
func (l *LedgerTransaction) NewNotary() *identity.Identity {
	return l.newNotary
}

// Signatures returns the signatures attached to the LedgerTransaction.
func (l *LedgerTransaction) Signatures() []*ledgerstate.Signature {
	return l.signatures
}

// Parameters returns the resolved NetworkParameters the LedgerTransaction was validated against.
func (l *LedgerTransaction) Parameters() *netparams.NetworkParameters {
	return l.parameters
}

// Outputs derives the outputs of the LedgerTransaction. They are a pure function of the inputs and are recomputed on
// every call: every input state reappears with its notary swapped to the new notary, and an encumbrance link is
// rewritten from an output index within the originating transaction to the position of the encumbering state among
// this transaction's inputs.
func (l *LedgerTransaction) Outputs() []*ledgerstate.State {
	positions := make(map[ledgerstate.StateRef]uint16, len(l.inputs))
	for i, input := range l.inputs {
		positions[input.Ref()] = uint16(i)
	}

	outputs := make([]*ledgerstate.State, len(l.inputs))
	for i, input := range l.inputs {
		output := input.State().WithNotary(l.newNotary)

		if encumbrance, encumbered := input.State().Encumbrance(); encumbered {
			target := ledgerstate.NewStateRef(input.Ref().TransactionID(), encumbrance)
			position, found := positions[target]
			if !found {
				// completeness was checked in the constructor; reaching this is a broken invariant, not bad input
				panic(fmt.Sprintf("encumbrance target %s of transaction %s vanished after construction", target.Base58(), l.id.Base58()))
			}
			output = output.WithEncumbrance(position)
		}

		outputs[i] = output
	}

	return outputs
}

// RequiredSigners returns the set of keys that must have signed the LedgerTransaction: the owning keys of every
// participant of every input state, plus the key of the incumbent notary. The set is broader than that of a regular
// transaction because a notary change carries no command that could narrow down who authorizes it.
func (l *LedgerTransaction) RequiredSigners() map[ed25519.PublicKey]types.Empty {
	signers := make(map[ed25519.PublicKey]types.Empty)
	for _, input := range l.inputs {
		for _, participant := range input.State().Participants() {
			signers[participant] = types.Void
		}
	}
	signers[l.notary.PublicKey()] = types.Void

	return signers
}

// References returns the reference states of the LedgerTransaction. They are structurally disallowed for the
// notary-change kind and therefore always empty.
func (l *LedgerTransaction) References() []*ledgerstate.StateAndRef {
	return nil
}

// String creates a human readable version of the LedgerTransaction.
func (l *LedgerTransaction) String() string {
	return stringify.Struct("LedgerTransaction",
		stringify.StructField("id", l.id),
		stringify.StructField("inputs", uint64(len(l.inputs))),
		stringify.StructField("notary", l.notary.ID()),
		stringify.StructField("newNotary", l.newNotary.ID()),
		stringify.StructField("signatures", uint64(len(l.signatures))),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
