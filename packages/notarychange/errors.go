package notarychange

import (
	"errors"
	"fmt"

	"github.com/axisledger/axis/packages/hashing"
	"github.com/axisledger/axis/packages/ledgerstate"
)

var (
	// ErrEmptyInputs is returned if a notary-change transaction is constructed without inputs.
	ErrEmptyInputs = errors.New("transaction has no inputs")

	// ErrSameNotary is returned if the old and the new notary of a notary-change transaction are the same identity.
	ErrSameNotary = errors.New("old and new notary are the same identity")

	// ErrNotaryNotWhitelisted is returned if the new notary is not on the notary whitelist of the network parameters.
	ErrNotaryNotWhitelisted = errors.New("new notary is not on the network parameters whitelist")

	// ErrMalformedComponents is returned if the component list of a wire transaction has an unexpected shape.
	ErrMalformedComponents = errors.New("malformed component list")
)

// region EncumbranceDirection /////////////////////////////////////////////////////////////////////////////////////////

// EncumbranceDirection states on which side of a transaction an encumbrance link was found to be broken.
type EncumbranceDirection uint8

const (
	// DirectionInput marks an encumbrance violation among the inputs of a transaction.
	DirectionInput EncumbranceDirection = iota

	// DirectionOutput marks an encumbrance violation among the outputs of a transaction.
	DirectionOutput
)

// String returns a human readable representation of the EncumbranceDirection.
func (e EncumbranceDirection) String() string {
	if e == DirectionInput {
		return "input"
	}

	return "output"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region MissingEncumbranceError //////////////////////////////////////////////////////////////////////////////////////

// MissingEncumbranceError is returned if a state declares an encumbrance link whose target is not part of the
// transaction. It carries enough detail to audit the offending transaction.
type MissingEncumbranceError struct {
	TransactionID ledgerstate.TransactionID
	MissingRef    ledgerstate.StateRef
	Direction     EncumbranceDirection
}

// Error returns a human readable representation of the MissingEncumbranceError.
func (m *MissingEncumbranceError) Error() string {
	return fmt.Sprintf("transaction %s is missing the %s-side encumbrance target %s", m.TransactionID.Base58(), m.Direction, m.MissingRef.Base58())
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ResolutionError //////////////////////////////////////////////////////////////////////////////////////////////

// ResolutionError is returned if a referenced input state or the required network parameters record is absent from
// storage. The attempt is fatal; retrying is the caller's concern (the missing data may arrive later).
type ResolutionError struct {
	TransactionID     ledgerstate.TransactionID
	MissingState      *ledgerstate.StateRef
	MissingParameters *hashing.ContentHash
	Cause             error
}

// Error returns a human readable representation of the ResolutionError.
func (r *ResolutionError) Error() string {
	if r.MissingState != nil {
		return fmt.Sprintf("failed to resolve transaction %s: state %s not found", r.TransactionID.Base58(), r.MissingState.Base58())
	}
	if r.MissingParameters != nil {
		return fmt.Sprintf("failed to resolve transaction %s: network parameters %s not found", r.TransactionID.Base58(), r.MissingParameters.Base58())
	}
	if r.Cause != nil {
		return fmt.Sprintf("failed to resolve transaction %s: %s", r.TransactionID.Base58(), r.Cause)
	}

	return fmt.Sprintf("failed to resolve transaction %s", r.TransactionID.Base58())
}

// Unwrap returns the underlying storage error, if any.
func (r *ResolutionError) Unwrap() error {
	return r.Cause
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
