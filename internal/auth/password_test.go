package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "pw123", hash)

	require.NoError(t, ComparePassword(hash, "pw123"))
	require.Error(t, ComparePassword(hash, "pw124"))
}

func TestComparePassword_RejectsOtherUsersHash(t *testing.T) {
	aliceHash, err := HashPassword("alice-pw", bcrypt.MinCost)
	require.NoError(t, err)
	bobHash, err := HashPassword("bob-pw", bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, ComparePassword(aliceHash, "alice-pw"))
	require.Error(t, ComparePassword(bobHash, "alice-pw"))
}
