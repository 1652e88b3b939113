package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	c, err := reg.GetByName("ethereum")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ChainID)
	assert.NotEmpty(t, c.RPCs)

	c, err = reg.GetByName("POLYGON")
	require.NoError(t, err)
	assert.Equal(t, "polygon", c.Name, "lookup is case-insensitive")

	_, err = reg.GetByName("dogecoin")
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestRegistryByChainID(t *testing.T) {
	reg := NewRegistry()

	c, err := reg.GetByChainID(42161)
	require.NoError(t, err)
	assert.Equal(t, "arbitrum", c.Name)

	_, err = reg.GetByChainID(999999)
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestRegistryComplete(t *testing.T) {
	reg := NewRegistry()
	assert.Len(t, reg.Names(), len(reg.All()))

	seen := map[int64]string{}
	for _, c := range reg.All() {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.DisplayName)
		assert.NotEmpty(t, c.NativeCurrency)
		assert.NotEmpty(t, c.RPCs, "chain %s has no RPC endpoints", c.Name)
		prev, dup := seen[c.ChainID]
		assert.False(t, dup, "chain ID %d used by both %s and %s", c.ChainID, prev, c.Name)
		seen[c.ChainID] = c.Name
	}
}
