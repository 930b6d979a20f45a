package netparams

import (
	"testing"
	"time"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshaling(t *testing.T) {
	whitelisted := ed25519.GenerateKeyPair().PublicKey
	parameters := New([]ed25519.PublicKey{whitelisted}, 4, 10*1024*1024, time.Now())

	restored, consumedBytes, err := FromBytes(parameters.Bytes())
	require.NoError(t, err)
	assert.Equal(t, len(parameters.Bytes()), consumedBytes)
	assert.Equal(t, parameters.NotaryWhitelist(), restored.NotaryWhitelist())
	assert.Equal(t, parameters.MinPlatformVersion(), restored.MinPlatformVersion())
	assert.Equal(t, parameters.MaxTransactionSize(), restored.MaxTransactionSize())
	assert.Equal(t, parameters.Hash(), restored.Hash())
}

func TestIsWhitelistedNotary(t *testing.T) {
	whitelisted := identity.New(ed25519.GenerateKeyPair().PublicKey)
	other := identity.New(ed25519.GenerateKeyPair().PublicKey)

	parameters := New([]ed25519.PublicKey{whitelisted.PublicKey()}, 1, 1024, time.Now())

	assert.True(t, parameters.IsWhitelistedNotary(whitelisted))
	assert.False(t, parameters.IsWhitelistedNotary(other))
}

func TestHashMemoized(t *testing.T) {
	parameters := New([]ed25519.PublicKey{ed25519.GenerateKeyPair().PublicKey}, 1, 1024, time.Now())

	hash := parameters.Hash()
	assert.Equal(t, hash, parameters.Hash())

	// a different record has a different hash
	other := New([]ed25519.PublicKey{ed25519.GenerateKeyPair().PublicKey}, 1, 1024, time.Now())
	assert.NotEqual(t, hash, other.Hash())
}
