package notarychange

import (
	"testing"
	"time"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/ledgerstate"
	"github.com/axisledger/axis/packages/netparams"
)

type testSetup struct {
	notary     *identity.Identity
	newNotary  *identity.Identity
	parameters *netparams.NetworkParameters
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	notary := identity.New(ed25519.GenerateKeyPair().PublicKey)
	newNotary := identity.New(ed25519.GenerateKeyPair().PublicKey)

	// only the new notary is whitelisted - the old one may belong to an absorbed network
	parameters := netparams.New([]ed25519.PublicKey{newNotary.PublicKey()}, 1, 1024*1024, time.Now())

	return &testSetup{
		notary:     notary,
		newNotary:  newNotary,
		parameters: parameters,
	}
}

func (s *testSetup) input(t *testing.T, state *ledgerstate.State, originID ledgerstate.TransactionID, index uint16) *ledgerstate.StateAndRef {
	t.Helper()

	return ledgerstate.NewStateAndRef(state, ledgerstate.NewStateRef(originID, index))
}

func randomTransactionID(t *testing.T) ledgerstate.TransactionID {
	t.Helper()

	transactionID, err := ledgerstate.TransactionIDFromRandomness()
	require.NoError(t, err)

	return transactionID
}

func TestOutputsSwapNotary(t *testing.T) {
	setup := newTestSetup(t)
	originID := randomTransactionID(t)

	participant := ed25519.GenerateKeyPair().PublicKey
	inputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewState(setup.notary, participant), originID, 0),
		setup.input(t, ledgerstate.NewState(setup.notary, participant), originID, 1),
	}

	transaction, err := NewLedgerTransaction(randomTransactionID(t), inputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)

	outputs := transaction.Outputs()
	require.Len(t, outputs, len(inputs))
	for _, output := range outputs {
		assert.Equal(t, setup.newNotary.ID(), output.Notary().ID())
		assert.False(t, output.IsEncumbered())
	}
}

func TestOutputsRewriteEncumbrance(t *testing.T) {
	setup := newTestSetup(t)
	originID := randomTransactionID(t)
	participant := ed25519.GenerateKeyPair().PublicKey

	// state 0 encumbers state 2 of the same originating transaction; within this transaction the target sits at
	// position 1 of the input sequence
	inputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewEncumberedState(setup.notary, 2, participant), originID, 0),
		setup.input(t, ledgerstate.NewState(setup.notary, participant), originID, 2),
	}

	transaction, err := NewLedgerTransaction(randomTransactionID(t), inputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)

	outputs := transaction.Outputs()
	require.Len(t, outputs, 2)

	encumbrance, encumbered := outputs[0].Encumbrance()
	require.True(t, encumbered)
	assert.Equal(t, uint16(1), encumbrance)
	assert.False(t, outputs[1].IsEncumbered())
}

func TestMissingEncumbrance(t *testing.T) {
	setup := newTestSetup(t)
	originID := randomTransactionID(t)
	participant := ed25519.GenerateKeyPair().PublicKey

	// the encumbrance target (output 5 of the originating transaction) is not among the inputs
	inputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewEncumberedState(setup.notary, 5, participant), originID, 0),
	}

	transactionID := randomTransactionID(t)
	_, err := NewLedgerTransaction(transactionID, inputs, setup.notary, setup.newNotary, nil, setup.parameters)

	var missingEncumbranceErr *MissingEncumbranceError
	require.True(t, xerrors.As(err, &missingEncumbranceErr))
	assert.Equal(t, transactionID, missingEncumbranceErr.TransactionID)
	assert.Equal(t, ledgerstate.NewStateRef(originID, 5), missingEncumbranceErr.MissingRef)
	assert.Equal(t, DirectionInput, missingEncumbranceErr.Direction)
}

func TestNotaryWhitelist(t *testing.T) {
	setup := newTestSetup(t)
	originID := randomTransactionID(t)
	participant := ed25519.GenerateKeyPair().PublicKey
	inputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewState(setup.notary, participant), originID, 0),
	}

	// the old notary is not whitelisted, which must not matter
	_, err := NewLedgerTransaction(randomTransactionID(t), inputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)

	// a new notary outside the whitelist is rejected
	rogueNotary := identity.New(ed25519.GenerateKeyPair().PublicKey)
	_, err = NewLedgerTransaction(randomTransactionID(t), inputs, setup.notary, rogueNotary, nil, setup.parameters)
	assert.True(t, xerrors.Is(err, ErrNotaryNotWhitelisted))
}

func TestRequiredSigners(t *testing.T) {
	setup := newTestSetup(t)
	originID := randomTransactionID(t)

	alice := ed25519.GenerateKeyPair().PublicKey
	bob := ed25519.GenerateKeyPair().PublicKey

	inputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewState(setup.notary, alice), originID, 0),
	}
	transaction, err := NewLedgerTransaction(randomTransactionID(t), inputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)

	signers := transaction.RequiredSigners()
	assert.Len(t, signers, 2)
	assert.Contains(t, signers, alice)
	assert.Contains(t, signers, setup.notary.PublicKey())

	// adding a participant to an input grows the signer set
	grownInputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewState(setup.notary, alice, bob), originID, 0),
	}
	grownTransaction, err := NewLedgerTransaction(randomTransactionID(t), grownInputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)

	grownSigners := grownTransaction.RequiredSigners()
	assert.Len(t, grownSigners, 3)
	assert.Contains(t, grownSigners, bob)
	for signer := range signers {
		assert.Contains(t, grownSigners, signer)
	}

	// adding an already present participant leaves the set unchanged
	duplicateInputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewState(setup.notary, alice, alice), originID, 0),
	}
	duplicateTransaction, err := NewLedgerTransaction(randomTransactionID(t), duplicateInputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)
	assert.Equal(t, signers, duplicateTransaction.RequiredSigners())
}

func TestReferencesAlwaysEmpty(t *testing.T) {
	setup := newTestSetup(t)
	inputs := []*ledgerstate.StateAndRef{
		setup.input(t, ledgerstate.NewState(setup.notary, ed25519.GenerateKeyPair().PublicKey), randomTransactionID(t), 0),
	}

	transaction, err := NewLedgerTransaction(randomTransactionID(t), inputs, setup.notary, setup.newNotary, nil, setup.parameters)
	require.NoError(t, err)
	assert.Empty(t, transaction.References())
}
