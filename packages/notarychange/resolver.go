package notarychange

import (
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/logger"
	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/hashing"
	"github.com/axisledger/axis/packages/ledgerstate"
	"github.com/axisledger/axis/packages/netparams"
)

// region StateStore ///////////////////////////////////////////////////////////////////////////////////////////////////

// StateStore is the storage collaborator the Resolver reads from. Implementations silently omit absent states from
// the LoadStates result; the Resolver detects the miss by re-associating the result with the requested references.
type StateStore interface {
	// LoadStates returns the stored states for the given references, in arbitrary order, omitting absent ones.
	LoadStates(refs []ledgerstate.StateRef) ([]*ledgerstate.StateAndRef, error)

	// NetworkParameters returns the parameters record with the given hash or an error if it is absent.
	NetworkParameters(hash hashing.ContentHash) (*netparams.NetworkParameters, error)

	// DefaultParametersHash returns the hash of the current default parameters record.
	DefaultParametersHash() (hashing.ContentHash, error)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Resolver /////////////////////////////////////////////////////////////////////////////////////////////////////

// Resolver turns a WireTransaction plus a signature set into a fully resolved LedgerTransaction by fetching the
// referenced ledger states and network parameters from backing storage. It is read-only against storage and carries
// no retry policy: a storage miss is a terminal ResolutionError for the current attempt.
type Resolver struct {
	store StateStore
	log   *logger.Logger

	Events *ResolverEvents
}

// NewResolver creates a new Resolver reading from the given StateStore.
func NewResolver(store StateStore, log *logger.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log,
		Events: &ResolverEvents{
			TransactionResolved: events.NewEvent(transactionIDCaller),
		},
	}
}

// Resolve materializes the given WireTransaction into a LedgerTransaction. Referenced states are re-associated with
// the requested references rather than trusted in storage order. Structural errors from the LedgerTransaction
// constructor pass through unwrapped.
func (r *Resolver) Resolve(wireTransaction *WireTransaction, signatures []*ledgerstate.Signature) (*LedgerTransaction, error) {
	transactionID := wireTransaction.ID()

	refs := wireTransaction.Inputs()
	loadedStates, err := r.store.LoadStates(refs)
	if err != nil {
		return nil, xerrors.Errorf("failed to load states of transaction %s: %w", transactionID.Base58(), err)
	}

	statesByRef := make(map[ledgerstate.StateRef]*ledgerstate.StateAndRef, len(loadedStates))
	for _, stateAndRef := range loadedStates {
		statesByRef[stateAndRef.Ref()] = stateAndRef
	}

	inputs := make([]*ledgerstate.StateAndRef, len(refs))
	for i, ref := range refs {
		stateAndRef, found := statesByRef[ref]
		if !found {
			missing := ref
			r.logWarn("state missing during resolution", "transactionID", transactionID.Base58(), "stateRef", missing.Base58())

			return nil, &ResolutionError{TransactionID: transactionID, MissingState: &missing}
		}
		inputs[i] = stateAndRef
	}

	parametersHash, explicit := wireTransaction.ParametersHash()
	if !explicit {
		if parametersHash, err = r.store.DefaultParametersHash(); err != nil {
			r.logWarn("default network parameters unavailable during resolution", "transactionID", transactionID.Base58(), "err", err)

			return nil, &ResolutionError{TransactionID: transactionID, Cause: err}
		}
	}
	parameters, err := r.store.NetworkParameters(parametersHash)
	if err != nil {
		missing := parametersHash
		r.logWarn("network parameters missing during resolution", "transactionID", transactionID.Base58(), "parametersHash", missing.Base58())

		return nil, &ResolutionError{TransactionID: transactionID, MissingParameters: &missing, Cause: err}
	}

	ledgerTransaction, err := NewLedgerTransaction(transactionID, inputs, wireTransaction.Notary(), wireTransaction.NewNotary(), signatures, parameters)
	if err != nil {
		return nil, err
	}

	if r.log != nil {
		r.log.Debugw("resolved notary-change transaction", "transactionID", transactionID.Base58(), "inputs", len(inputs))
	}
	r.Events.TransactionResolved.Trigger(transactionID)

	return ledgerTransaction, nil
}

func (r *Resolver) logWarn(msg string, keysAndValues ...interface{}) {
	if r.log != nil {
		r.log.Warnw(msg, keysAndValues...)
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ResolverEvents ///////////////////////////////////////////////////////////////////////////////////////////////

// ResolverEvents bundles the events a Resolver triggers.
type ResolverEvents struct {
	// TransactionResolved is triggered with the TransactionID after a transaction was successfully resolved.
	TransactionResolved *events.Event
}

func transactionIDCaller(handler interface{}, params ...interface{}) {
	handler.(func(ledgerstate.TransactionID))(params[0].(ledgerstate.TransactionID))
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
