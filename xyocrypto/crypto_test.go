package xyocrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeccak256ProviderIsDeterministic(t *testing.T) {
	p := Keccak256Provider{}
	h1 := p.Hash([]byte("hello"))
	h2 := p.Hash([]byte("hello"))
	require.True(t, h1.Equal(h2))
	require.Equal(t, AlgorithmKeccak256, h1.Algorithm)
	require.False(t, h1.IsZero())
}

func TestKeccak256ProviderDiffersOnInput(t *testing.T) {
	p := Keccak256Provider{}
	require.False(t, p.Hash([]byte("hello")).Equal(p.Hash([]byte("world"))))
}

func TestSecp256k1SignAndVerify(t *testing.T) {
	signer, err := NewSecp256k1Signer()
	require.NoError(t, err)

	data := []byte("bound witness signing data")
	sig, err := signer.Sign(data)
	require.NoError(t, err)

	pub := signer.PublicKey()
	require.True(t, pub.Verify(data, sig))
}

func TestSecp256k1VerifyRejectsTamperedData(t *testing.T) {
	signer, err := NewSecp256k1Signer()
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("original"))
	require.NoError(t, err)

	require.False(t, signer.PublicKey().Verify([]byte("tampered"), sig))
}

func TestSecp256k1SignerFromBytesRoundTrips(t *testing.T) {
	original, err := NewSecp256k1Signer()
	require.NoError(t, err)

	raw := original.PrivateKeyBytes()
	restored, err := NewSecp256k1SignerFromBytes(raw)
	require.NoError(t, err)
	require.True(t, original.PublicKey().Equal(restored.PublicKey()))
}

func TestPublicKeyEqual(t *testing.T) {
	a, err := NewSecp256k1Signer()
	require.NoError(t, err)
	b, err := NewSecp256k1Signer()
	require.NoError(t, err)

	require.True(t, a.PublicKey().Equal(a.PublicKey()))
	require.False(t, a.PublicKey().Equal(b.PublicKey()))
}
