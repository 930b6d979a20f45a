package storage

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/marshalutil"

	"github.com/axisledger/axis/packages/attachment"
	"github.com/axisledger/axis/packages/hashing"
	"github.com/axisledger/axis/packages/ledgerstate"
	"github.com/axisledger/axis/packages/netparams"
	"github.com/axisledger/axis/packages/notarychange"
)

// ErrNotFound is returned if a requested entry is not in the store.
var ErrNotFound = errors.New("entry not found")

// realm prefixes of the Store within its backing kvstore.
var (
	realmStates      = kvstore.Realm{0}
	realmParameters  = kvstore.Realm{1}
	realmAttachments = kvstore.Realm{2}
	realmMeta        = kvstore.Realm{3}
)

var keyDefaultParameters = []byte("defaultParametersHash")

// region Store ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Store persists ledger states, network parameter records and attachment bundles. It implements the resolver's
// StateStore collaborator. All operations are synchronous and may block on the backing DB.
type Store struct {
	states      kvstore.KVStore
	parameters  kvstore.KVStore
	attachments kvstore.KVStore
	meta        kvstore.KVStore
}

// New creates a new Store on top of the given DB.
func New(db DB) (*Store, error) {
	backing := db.NewStore()

	states, err := backing.WithRealm(realmStates)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create states realm")
	}
	parameters, err := backing.WithRealm(realmParameters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create parameters realm")
	}
	attachments, err := backing.WithRealm(realmAttachments)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create attachments realm")
	}
	meta, err := backing.WithRealm(realmMeta)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create meta realm")
	}

	return &Store{
		states:      states,
		parameters:  parameters,
		attachments: attachments,
		meta:        meta,
	}, nil
}

// PutState stores the given state under its reference.
func (s *Store) PutState(stateAndRef *ledgerstate.StateAndRef) error {
	if err := s.states.Set(stateAndRef.Ref().Bytes(), stateAndRef.State().Bytes()); err != nil {
		return errors.Wrapf(err, "failed to store state %s", stateAndRef.Ref().Base58())
	}

	return nil
}

// LoadStates returns the stored states for the given references, omitting absent ones.
func (s *Store) LoadStates(refs []ledgerstate.StateRef) (loaded []*ledgerstate.StateAndRef, err error) {
	for _, ref := range refs {
		stateBytes, getErr := s.states.Get(ref.Bytes())
		if errors.Is(getErr, kvstore.ErrKeyNotFound) {
			continue
		}
		if getErr != nil {
			return nil, errors.Wrapf(getErr, "failed to load state %s", ref.Base58())
		}

		state, _, parseErr := ledgerstate.StateFromBytes(stateBytes)
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "failed to parse stored state %s", ref.Base58())
		}
		loaded = append(loaded, ledgerstate.NewStateAndRef(state, ref))
	}

	return loaded, nil
}

// PutNetworkParameters stores the given parameters record under its hash.
func (s *Store) PutNetworkParameters(parameters *netparams.NetworkParameters) error {
	if err := s.parameters.Set(parameters.Hash().Bytes(), parameters.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to store network parameters %s", parameters.Hash().Base58())
	}

	return nil
}

// NetworkParameters returns the parameters record with the given hash, or ErrNotFound if it is absent.
func (s *Store) NetworkParameters(hash hashing.ContentHash) (*netparams.NetworkParameters, error) {
	parametersBytes, err := s.parameters.Get(hash.Bytes())
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "network parameters %s", hash.Base58())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load network parameters %s", hash.Base58())
	}

	parameters, _, err := netparams.FromBytes(parametersBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse stored network parameters %s", hash.Base58())
	}

	return parameters, nil
}

// SetDefaultParametersHash points the store at the parameters record new transactions resolve against by default.
func (s *Store) SetDefaultParametersHash(hash hashing.ContentHash) error {
	if err := s.meta.Set(keyDefaultParameters, hash.Bytes()); err != nil {
		return errors.Wrap(err, "failed to store default parameters hash")
	}

	return nil
}

// DefaultParametersHash returns the hash of the current default parameters record, or ErrNotFound if none is set.
func (s *Store) DefaultParametersHash() (hashing.ContentHash, error) {
	hashBytes, err := s.meta.Get(keyDefaultParameters)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return hashing.EmptyContentHash, errors.Wrap(ErrNotFound, "default parameters hash")
	}
	if err != nil {
		return hashing.EmptyContentHash, errors.Wrap(err, "failed to load default parameters hash")
	}

	hash, _, err := hashing.ContentHashFromBytes(hashBytes)
	if err != nil {
		return hashing.EmptyContentHash, errors.Wrap(err, "failed to parse stored default parameters hash")
	}

	return hash, nil
}

// PutAttachment stores the raw archive bytes of the given attachment together with its uploader declaration.
func (s *Store) PutAttachment(att attachment.Attachment) error {
	stream, err := att.Open()
	if err != nil {
		return errors.Wrapf(err, "failed to open attachment %s", att.ID().Base58())
	}
	defer stream.Close()

	archiveBytes, err := io.ReadAll(stream)
	if err != nil {
		return errors.Wrapf(err, "failed to read attachment %s", att.ID().Base58())
	}

	marshalUtil := marshalutil.New()
	if contractAttachment, isContract := att.(attachment.ContractAttachment); isContract {
		marshalUtil.WriteBool(true)
		uploader := []byte(contractAttachment.Uploader())
		marshalUtil.WriteUint16(uint16(len(uploader)))
		marshalUtil.WriteBytes(uploader)
	} else {
		marshalUtil.WriteBool(false)
	}
	marshalUtil.WriteBytes(archiveBytes)

	if err = s.attachments.Set(att.ID().Bytes(), marshalUtil.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to store attachment %s", att.ID().Base58())
	}

	return nil
}

// Attachment returns the stored attachment with the given id, or ErrNotFound if it is absent.
func (s *Store) Attachment(id attachment.AttachmentID) (attachment.Attachment, error) {
	storedBytes, err := s.attachments.Get(id.Bytes())
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "attachment %s", id.Base58())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load attachment %s", id.Base58())
	}

	marshalUtil := marshalutil.New(storedBytes)
	isContract, err := marshalUtil.ReadBool()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse stored attachment %s", id.Base58())
	}

	if isContract {
		uploaderSize, sizeErr := marshalUtil.ReadUint16()
		if sizeErr != nil {
			return nil, errors.Wrapf(sizeErr, "failed to parse uploader of stored attachment %s", id.Base58())
		}
		uploaderBytes, uploaderErr := marshalUtil.ReadBytes(int(uploaderSize))
		if uploaderErr != nil {
			return nil, errors.Wrapf(uploaderErr, "failed to parse uploader of stored attachment %s", id.Base58())
		}
		return attachment.NewContractZipAttachment(marshalUtil.ReadRemainingBytes(), string(uploaderBytes))
	}

	return attachment.NewZipAttachment(marshalUtil.ReadRemainingBytes())
}

// code contract (make sure the struct implements all required methods)
var _ notarychange.StateStore = &Store{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
