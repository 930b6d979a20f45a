package ledgerstate

import (
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/identity"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region State ////////////////////////////////////////////////////////////////////////////////////////////////////////

// NoEncumbrance is the sentinel value of the encumbrance slot of a State that does not encumber another state.
const NoEncumbrance = -1

// State represents a piece of ledger data that is owned by a set of participants and notarized by a single notary. A
// State may declare an encumbrance: the index of another output of its originating Transaction that must be consumed
// together with it. States are immutable once constructed.
type State struct {
	participants []ed25519.PublicKey
	notary       *identity.Identity
	encumbrance  int
}

// NewState creates a new State without an encumbrance.
func NewState(notary *identity.Identity, participants ...ed25519.PublicKey) *State {
	if len(participants) == 0 {
		panic("a State requires at least one participant")
	}

	return &State{
		participants: participants,
		notary:       notary,
		encumbrance:  NoEncumbrance,
	}
}

// NewEncumberedState creates a new State that encumbers the output with the given index of its originating Transaction.
func NewEncumberedState(notary *identity.Identity, encumbrance uint16, participants ...ed25519.PublicKey) *State {
	state := NewState(notary, participants...)
	state.encumbrance = int(encumbrance)

	return state
}

// StateFromBytes unmarshals a State from a sequence of bytes.
func StateFromBytes(bytes []byte) (state *State, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if state, err = StateFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse State from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// StateFromMarshalUtil unmarshals a State using a MarshalUtil (for easier unmarshaling).
func StateFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (state *State, err error) {
	state = &State{encumbrance: NoEncumbrance}

	participantCount, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse participant count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if participantCount == 0 {
		err = xerrors.Errorf("state without participants: %w", cerrors.ErrParseBytesFailed)
		return
	}
	state.participants = make([]ed25519.PublicKey, participantCount)
	for i := uint16(0); i < participantCount; i++ {
		if state.participants[i], err = ed25519.ParsePublicKey(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse participant public key (%v): %w", err, cerrors.ErrParseBytesFailed)
			return
		}
	}

	notaryPublicKey, err := ed25519.ParsePublicKey(marshalUtil)
	if err != nil {
		err = xerrors.Errorf("failed to parse notary public key (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	state.notary = identity.New(notaryPublicKey)

	encumbered, err := marshalUtil.ReadBool()
	if err != nil {
		err = xerrors.Errorf("failed to parse encumbrance flag (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if encumbered {
		encumbrance, readErr := marshalUtil.ReadUint16()
		if readErr != nil {
			err = xerrors.Errorf("failed to parse encumbrance index (%v): %w", readErr, cerrors.ErrParseBytesFailed)
			return
		}
		state.encumbrance = int(encumbrance)
	}

	return
}

// Participants returns the public keys of the parties that own the State.
func (s *State) Participants() []ed25519.PublicKey {
	return s.participants
}

// Notary returns the identity of the notary the State is currently pinned to.
func (s *State) Notary() *identity.Identity {
	return s.notary
}

// IsEncumbered returns true if the State declares an encumbrance.
func (s *State) IsEncumbered() bool {
	return s.encumbrance != NoEncumbrance
}

// Encumbrance returns the index of the encumbering output within the originating Transaction. The second return value
// is false if the State declares no encumbrance.
func (s *State) Encumbrance() (uint16, bool) {
	if s.encumbrance == NoEncumbrance {
		return 0, false
	}

	return uint16(s.encumbrance), true
}

// WithNotary returns a copy of the State with the notary replaced by the given identity.
func (s *State) WithNotary(notary *identity.Identity) *State {
	return &State{
		participants: s.participants,
		notary:       notary,
		encumbrance:  s.encumbrance,
	}
}

// WithEncumbrance returns a copy of the State with the encumbrance slot set to the given index.
func (s *State) WithEncumbrance(encumbrance uint16) *State {
	return &State{
		participants: s.participants,
		notary:       s.notary,
		encumbrance:  int(encumbrance),
	}
}

// Bytes returns a marshaled version of the State.
func (s *State) Bytes() []byte {
	marshalUtil := marshalutil.New().
		WriteUint16(uint16(len(s.participants)))
	for _, participant := range s.participants {
		marshalUtil.WriteBytes(participant.Bytes())
	}
	marshalUtil.WriteBytes(s.notary.PublicKey().Bytes())

	if s.encumbrance == NoEncumbrance {
		marshalUtil.WriteBool(false)
	} else {
		marshalUtil.WriteBool(true)
		marshalUtil.WriteUint16(uint16(s.encumbrance))
	}

	return marshalUtil.Bytes()
}

// String creates a human readable version of the State.
func (s *State) String() string {
	return stringify.Struct("State",
		stringify.StructField("participants", uint64(len(s.participants))),
		stringify.StructField("notary", s.notary.ID()),
		stringify.StructField("encumbrance", int64(s.encumbrance)),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region StateAndRef //////////////////////////////////////////////////////////////////////////////////////////////////

// StateAndRef pairs a resolved State with the StateRef it was loaded for.
type StateAndRef struct {
	state *State
	ref   StateRef
}

// NewStateAndRef is the constructor for the StateAndRef.
func NewStateAndRef(state *State, ref StateRef) *StateAndRef {
	return &StateAndRef{
		state: state,
		ref:   ref,
	}
}

// StateAndRefFromBytes unmarshals a StateAndRef from a sequence of bytes.
func StateAndRefFromBytes(bytes []byte) (stateAndRef *StateAndRef, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if stateAndRef, err = StateAndRefFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse StateAndRef from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// StateAndRefFromMarshalUtil unmarshals a StateAndRef using a MarshalUtil (for easier unmarshaling).
func StateAndRefFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (stateAndRef *StateAndRef, err error) {
	stateAndRef = &StateAndRef{}
	if stateAndRef.ref, err = StateRefFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse StateRef from MarshalUtil: %w", err)
		return
	}
	if stateAndRef.state, err = StateFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse State from MarshalUtil: %w", err)
		return
	}

	return
}

// State returns the resolved State.
func (s *StateAndRef) State() *State {
	return s.state
}

// Ref returns the StateRef of the State.
func (s *StateAndRef) Ref() StateRef {
	return s.ref
}

// Bytes returns a marshaled version of the StateAndRef.
func (s *StateAndRef) Bytes() []byte {
	return marshalutil.New().
		WriteBytes(s.ref.Bytes()).
		WriteBytes(s.state.Bytes()).
		Bytes()
}

// String creates a human readable version of the StateAndRef.
func (s *StateAndRef) String() string {
	return stringify.Struct("StateAndRef",
		stringify.StructField("state", s.state),
		stringify.StructField("ref", s.ref),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
