package tokenstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMintProducesDistinctTokens(t *testing.T) {
	t1, err := Mint(1)
	require.NoError(t, err)
	t2, err := Mint(1)
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)
	require.Len(t, t1, 32) // 16 bytes hex-encoded
}

func TestRegisterVerifyRevoke(t *testing.T) {
	s := New()
	token, err := Mint(7)
	require.NoError(t, err)

	require.False(t, s.Verify(7, token))

	s.Register(7, token)
	require.True(t, s.Verify(7, token))
	require.False(t, s.Verify(7, "wrong"))

	s.Revoke(7)
	require.False(t, s.Verify(7, token))
}

func TestLookup(t *testing.T) {
	s := New()
	_, ok := s.Lookup(3)
	require.False(t, ok)

	s.Register(3, "abc")
	got, ok := s.Lookup(3)
	require.True(t, ok)
	require.Equal(t, "abc", got)
}
