package notarychange

import (
	"testing"
	"time"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/identity"
	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/hashing"
	"github.com/axisledger/axis/packages/ledgerstate"
	"github.com/axisledger/axis/packages/netparams"
)

var log = logger.NewExampleLogger("notarychange")

// fakeStore is an in-memory StateStore for resolver tests.
type fakeStore struct {
	states      map[ledgerstate.StateRef]*ledgerstate.StateAndRef
	parameters  map[hashing.ContentHash]*netparams.NetworkParameters
	defaultHash *hashing.ContentHash
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		states:     make(map[ledgerstate.StateRef]*ledgerstate.StateAndRef),
		parameters: make(map[hashing.ContentHash]*netparams.NetworkParameters),
	}
}

func (f *fakeStore) addState(stateAndRef *ledgerstate.StateAndRef) {
	f.states[stateAndRef.Ref()] = stateAndRef
}

func (f *fakeStore) addParameters(parameters *netparams.NetworkParameters, isDefault bool) {
	hash := parameters.Hash()
	f.parameters[hash] = parameters
	if isDefault {
		f.defaultHash = &hash
	}
}

func (f *fakeStore) LoadStates(refs []ledgerstate.StateRef) (loaded []*ledgerstate.StateAndRef, err error) {
	// deliberately iterate the map so the resolver cannot rely on request order
	for _, stateAndRef := range f.states {
		for _, ref := range refs {
			if stateAndRef.Ref() == ref {
				loaded = append(loaded, stateAndRef)
			}
		}
	}

	return
}

func (f *fakeStore) NetworkParameters(hash hashing.ContentHash) (*netparams.NetworkParameters, error) {
	parameters, found := f.parameters[hash]
	if !found {
		return nil, xerrors.Errorf("network parameters %s not found", hash.Base58())
	}

	return parameters, nil
}

func (f *fakeStore) DefaultParametersHash() (hashing.ContentHash, error) {
	if f.defaultHash == nil {
		return hashing.EmptyContentHash, xerrors.New("no default network parameters configured")
	}

	return *f.defaultHash, nil
}

type resolverFixture struct {
	store      *fakeStore
	resolver   *Resolver
	notary     *identity.Identity
	newNotary  *identity.Identity
	parameters *netparams.NetworkParameters
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	notary := identity.New(ed25519.GenerateKeyPair().PublicKey)
	newNotary := identity.New(ed25519.GenerateKeyPair().PublicKey)
	parameters := netparams.New([]ed25519.PublicKey{newNotary.PublicKey()}, 1, 1024*1024, time.Now())

	store := newFakeStore()
	store.addParameters(parameters, true)

	return &resolverFixture{
		store:      store,
		resolver:   NewResolver(store, log),
		notary:     notary,
		newNotary:  newNotary,
		parameters: parameters,
	}
}

func (f *resolverFixture) storedState(t *testing.T, participants ...ed25519.PublicKey) *ledgerstate.StateAndRef {
	t.Helper()

	originID, err := ledgerstate.TransactionIDFromRandomness()
	require.NoError(t, err)

	stateAndRef := ledgerstate.NewStateAndRef(ledgerstate.NewState(f.notary, participants...), ledgerstate.NewStateRef(originID, 0))
	f.store.addState(stateAndRef)

	return stateAndRef
}

func TestResolve(t *testing.T) {
	fixture := newResolverFixture(t)
	participant := ed25519.GenerateKeyPair().PublicKey
	first := fixture.storedState(t, participant)
	second := fixture.storedState(t, participant)

	parametersHash := fixture.parameters.Hash()
	wireTransaction, err := NewWireTransaction([]ledgerstate.StateRef{first.Ref(), second.Ref()}, fixture.notary, fixture.newNotary, &parametersHash)
	require.NoError(t, err)

	var resolvedID *ledgerstate.TransactionID
	fixture.resolver.Events.TransactionResolved.Attach(events.NewClosure(func(transactionID ledgerstate.TransactionID) {
		resolvedID = &transactionID
	}))

	ledgerTransaction, err := fixture.resolver.Resolve(wireTransaction, nil)
	require.NoError(t, err)

	assert.Equal(t, wireTransaction.ID(), ledgerTransaction.ID())
	// inputs are re-associated by reference, not storage iteration order
	require.Len(t, ledgerTransaction.Inputs(), 2)
	assert.Equal(t, first.Ref(), ledgerTransaction.Inputs()[0].Ref())
	assert.Equal(t, second.Ref(), ledgerTransaction.Inputs()[1].Ref())
	assert.Equal(t, fixture.parameters.Hash(), ledgerTransaction.Parameters().Hash())

	require.NotNil(t, resolvedID)
	assert.Equal(t, wireTransaction.ID(), *resolvedID)
}

func TestResolveMissingState(t *testing.T) {
	fixture := newResolverFixture(t)
	stored := fixture.storedState(t, ed25519.GenerateKeyPair().PublicKey)

	missingID, err := ledgerstate.TransactionIDFromRandomness()
	require.NoError(t, err)
	missingRef := ledgerstate.NewStateRef(missingID, 0)

	wireTransaction, err := NewWireTransaction([]ledgerstate.StateRef{stored.Ref(), missingRef}, fixture.notary, fixture.newNotary, nil)
	require.NoError(t, err)

	_, err = fixture.resolver.Resolve(wireTransaction, nil)

	var resolutionErr *ResolutionError
	require.True(t, xerrors.As(err, &resolutionErr))
	assert.Equal(t, wireTransaction.ID(), resolutionErr.TransactionID)
	require.NotNil(t, resolutionErr.MissingState)
	assert.Equal(t, missingRef, *resolutionErr.MissingState)
}

func TestResolveMissingParameters(t *testing.T) {
	fixture := newResolverFixture(t)
	stored := fixture.storedState(t, ed25519.GenerateKeyPair().PublicKey)

	unknownHash := hashing.Digest([]byte("unknown parameters"))
	wireTransaction, err := NewWireTransaction([]ledgerstate.StateRef{stored.Ref()}, fixture.notary, fixture.newNotary, &unknownHash)
	require.NoError(t, err)

	_, err = fixture.resolver.Resolve(wireTransaction, nil)

	var resolutionErr *ResolutionError
	require.True(t, xerrors.As(err, &resolutionErr))
	require.NotNil(t, resolutionErr.MissingParameters)
	assert.Equal(t, unknownHash, *resolutionErr.MissingParameters)
}

// TestResolveDefaultParameters pins the compatibility behavior for wire transactions that omit the parameters hash
// component: they resolve against the store's default parameters record.
func TestResolveDefaultParameters(t *testing.T) {
	fixture := newResolverFixture(t)
	stored := fixture.storedState(t, ed25519.GenerateKeyPair().PublicKey)

	wireTransaction, err := NewWireTransaction([]ledgerstate.StateRef{stored.Ref()}, fixture.notary, fixture.newNotary, nil)
	require.NoError(t, err)
	assert.Equal(t, MandatoryComponentCount, wireTransaction.ComponentCount())

	ledgerTransaction, err := fixture.resolver.Resolve(wireTransaction, nil)
	require.NoError(t, err)
	assert.Equal(t, fixture.parameters.Hash(), ledgerTransaction.Parameters().Hash())
}

func TestResolveDefaultParametersUnavailable(t *testing.T) {
	notary := identity.New(ed25519.GenerateKeyPair().PublicKey)
	newNotary := identity.New(ed25519.GenerateKeyPair().PublicKey)

	// a store without a configured default parameters record
	store := newFakeStore()
	resolver := NewResolver(store, log)

	originID, err := ledgerstate.TransactionIDFromRandomness()
	require.NoError(t, err)
	stateAndRef := ledgerstate.NewStateAndRef(ledgerstate.NewState(notary, ed25519.GenerateKeyPair().PublicKey), ledgerstate.NewStateRef(originID, 0))
	store.addState(stateAndRef)

	wireTransaction, err := NewWireTransaction([]ledgerstate.StateRef{stateAndRef.Ref()}, notary, newNotary, nil)
	require.NoError(t, err)

	_, err = resolver.Resolve(wireTransaction, nil)

	var resolutionErr *ResolutionError
	require.True(t, xerrors.As(err, &resolutionErr))
	assert.Nil(t, resolutionErr.MissingState)
	assert.Nil(t, resolutionErr.MissingParameters)

	// the storage failure stays attached for auditing
	require.NotNil(t, resolutionErr.Cause)
	assert.Contains(t, err.Error(), "no default network parameters configured")
}

func TestResolveStructuralErrorPassesThrough(t *testing.T) {
	fixture := newResolverFixture(t)

	// a stored state whose encumbrance target is never part of the transaction
	originID, err := ledgerstate.TransactionIDFromRandomness()
	require.NoError(t, err)
	encumbered := ledgerstate.NewStateAndRef(
		ledgerstate.NewEncumberedState(fixture.notary, 9, ed25519.GenerateKeyPair().PublicKey),
		ledgerstate.NewStateRef(originID, 0),
	)
	fixture.store.addState(encumbered)

	wireTransaction, err := NewWireTransaction([]ledgerstate.StateRef{encumbered.Ref()}, fixture.notary, fixture.newNotary, nil)
	require.NoError(t, err)

	_, err = fixture.resolver.Resolve(wireTransaction, nil)

	var missingEncumbranceErr *MissingEncumbranceError
	assert.True(t, xerrors.As(err, &missingEncumbranceErr))
}
