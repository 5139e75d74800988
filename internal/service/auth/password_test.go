package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()
	// MinCost keeps the test fast; production cost comes from config
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("password123")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, "password123", hashed)

	assert.NoError(t, hasher.Compare(hashed, "password123"))
	assert.Error(t, hasher.Compare(hashed, "wrongpass1"))
}

func TestNewBcryptHasherCostFallback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		cost         int
		expectedCost int
	}{
		{name: "zero falls back to default", cost: 0, expectedCost: bcrypt.DefaultCost},
		{name: "above max falls back to default", cost: bcrypt.MaxCost + 1, expectedCost: bcrypt.DefaultCost},
		{name: "valid cost kept", cost: 12, expectedCost: 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hasher := NewBcryptHasher(tc.cost)
			assert.Equal(t, tc.expectedCost, hasher.cost)
		})
	}
}
