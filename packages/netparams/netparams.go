// Package netparams models the network-wide parameter record that governs which notaries a network recognizes as
// authoritative. The record is content-addressed: participants reference a specific parameter version by its hash.
package netparams

import (
	"sync"
	"time"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/identity"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"

	"github.com/axisledger/axis/packages/hashing"
)

// region NetworkParameters ////////////////////////////////////////////////////////////////////////////////////////////

// NetworkParameters is the version of the network configuration that a Transaction resolves against. It carries the
// whitelist of notary identities that the network recognizes as authoritative. NetworkParameters are immutable once
// constructed; a parameter change produces a new record with a new hash.
type NetworkParameters struct {
	notaryWhitelist    []ed25519.PublicKey
	minPlatformVersion uint32
	maxTransactionSize uint32
	modificationTime   time.Time

	hash      *hashing.ContentHash
	hashMutex sync.RWMutex
}

// New creates a new NetworkParameters record from the given details.
func New(notaryWhitelist []ed25519.PublicKey, minPlatformVersion uint32, maxTransactionSize uint32, modificationTime time.Time) *NetworkParameters {
	return &NetworkParameters{
		notaryWhitelist:    notaryWhitelist,
		minPlatformVersion: minPlatformVersion,
		maxTransactionSize: maxTransactionSize,
		modificationTime:   modificationTime,
	}
}

// FromBytes unmarshals a NetworkParameters record from a sequence of bytes.
func FromBytes(bytes []byte) (networkParameters *NetworkParameters, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if networkParameters, err = FromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse NetworkParameters from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// FromMarshalUtil unmarshals a NetworkParameters record using a MarshalUtil (for easier unmarshaling).
func FromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (networkParameters *NetworkParameters, err error) {
	networkParameters = &NetworkParameters{}

	whitelistSize, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse notary whitelist size (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	networkParameters.notaryWhitelist = make([]ed25519.PublicKey, whitelistSize)
	for i := uint16(0); i < whitelistSize; i++ {
		if networkParameters.notaryWhitelist[i], err = ed25519.ParsePublicKey(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse whitelisted notary public key (%v): %w", err, cerrors.ErrParseBytesFailed)
			return
		}
	}
	if networkParameters.minPlatformVersion, err = marshalUtil.ReadUint32(); err != nil {
		err = xerrors.Errorf("failed to parse min platform version (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if networkParameters.maxTransactionSize, err = marshalUtil.ReadUint32(); err != nil {
		err = xerrors.Errorf("failed to parse max transaction size (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if networkParameters.modificationTime, err = marshalUtil.ReadTime(); err != nil {
		err = xerrors.Errorf("failed to parse modification time (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// NotaryWhitelist returns the public keys of the notaries the network recognizes as authoritative.
func (n *NetworkParameters) NotaryWhitelist() []ed25519.PublicKey {
	return n.notaryWhitelist
}

// IsWhitelistedNotary returns true if the given identity is on the notary whitelist.
func (n *NetworkParameters) IsWhitelistedNotary(notary *identity.Identity) bool {
	for _, publicKey := range n.notaryWhitelist {
		if identity.New(publicKey).ID() == notary.ID() {
			return true
		}
	}

	return false
}

// MinPlatformVersion returns the minimum platform version that participants of the network must run.
func (n *NetworkParameters) MinPlatformVersion() uint32 {
	return n.minPlatformVersion
}

// MaxTransactionSize returns the maximum size of a serialized transaction accepted by the network.
func (n *NetworkParameters) MaxTransactionSize() uint32 {
	return n.maxTransactionSize
}

// ModificationTime returns the time the parameter record was issued.
func (n *NetworkParameters) ModificationTime() time.Time {
	return n.modificationTime
}

// Hash returns the content hash that identifies this version of the NetworkParameters. Since calculating the hash is
// a resource intensive operation we calculate this value lazy and use double checked locking.
func (n *NetworkParameters) Hash() hashing.ContentHash {
	n.hashMutex.RLock()
	if n.hash != nil {
		defer n.hashMutex.RUnlock()

		return *n.hash
	}

	n.hashMutex.RUnlock()
	n.hashMutex.Lock()
	defer n.hashMutex.Unlock()

	if n.hash != nil {
		return *n.hash
	}

	hash := hashing.Digest(n.Bytes())
	n.hash = &hash

	return hash
}

// Bytes returns a marshaled version of the NetworkParameters.
func (n *NetworkParameters) Bytes() []byte {
	marshalUtil := marshalutil.New().
		WriteUint16(uint16(len(n.notaryWhitelist)))
	for _, publicKey := range n.notaryWhitelist {
		marshalUtil.WriteBytes(publicKey.Bytes())
	}

	return marshalUtil.
		WriteUint32(n.minPlatformVersion).
		WriteUint32(n.maxTransactionSize).
		WriteTime(n.modificationTime).
		Bytes()
}

// String creates a human readable version of the NetworkParameters.
func (n *NetworkParameters) String() string {
	return stringify.Struct("NetworkParameters",
		stringify.StructField("hash", n.Hash()),
		stringify.StructField("notaryWhitelist", uint64(len(n.notaryWhitelist))),
		stringify.StructField("minPlatformVersion", n.minPlatformVersion),
		stringify.StructField("maxTransactionSize", n.maxTransactionSize),
		stringify.StructField("modificationTime", n.modificationTime),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
