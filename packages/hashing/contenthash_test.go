package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestDeterministic(t *testing.T) {
	assert.Equal(t, Digest([]byte("foo")), Digest([]byte("foo")))
	assert.NotEqual(t, Digest([]byte("foo")), Digest([]byte("bar")))
}

func TestConcatOrderSensitive(t *testing.T) {
	a := Digest([]byte("a"))
	b := Digest([]byte("b"))

	assert.Equal(t, Concat(a, b), Concat(a, b))
	assert.NotEqual(t, Concat(a, b), Concat(b, a))
}

func TestChain(t *testing.T) {
	a := Digest([]byte("a"))
	b := Digest([]byte("b"))
	c := Digest([]byte("c"))

	assert.Equal(t, a, Chain(a))
	assert.Equal(t, Concat(Concat(a, b), c), Chain(a, b, c))
	assert.NotEqual(t, Chain(a, b, c), Chain(a, c, b))

	assert.Panics(t, func() {
		Chain()
	})
}

func TestContentHashFromBytes(t *testing.T) {
	contentHash := Digest([]byte("payload"))

	restored, consumedBytes, err := ContentHashFromBytes(contentHash.Bytes())
	require.NoError(t, err)
	assert.Equal(t, ContentHashLength, consumedBytes)
	assert.Equal(t, contentHash, restored)

	_, _, err = ContentHashFromBytes(contentHash.Bytes()[:ContentHashLength-1])
	assert.Error(t, err)
}

func TestContentHashFromBase58(t *testing.T) {
	contentHash := Digest([]byte("payload"))

	restored, err := ContentHashFromBase58(contentHash.Base58())
	require.NoError(t, err)
	assert.Equal(t, contentHash, restored)

	_, err = ContentHashFromBase58("not-base58-0OIl")
	assert.Error(t, err)
}
