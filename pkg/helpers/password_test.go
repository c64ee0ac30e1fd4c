package helpers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/events-api/pkg/helpers"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := helpers.HashPassword("hunter2-long")
	require.NoError(t, err)
	require.NotContains(t, hash, "hunter2")
	require.True(t, strings.HasPrefix(hash, "$2"))
}

func TestCompareHashAndPassword(t *testing.T) {
	hash, err := helpers.HashPassword("hunter2-long")
	require.NoError(t, err)

	require.True(t, helpers.CompareHashAndPassword(hash, "hunter2-long"))
	require.False(t, helpers.CompareHashAndPassword(hash, "wrong"))
	require.False(t, helpers.CompareHashAndPassword("not-a-hash", "hunter2-long"))
}
