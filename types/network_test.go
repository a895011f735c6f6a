package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullnodeURL(t *testing.T) {
	assert.Equal(t, "https://fullnode.mainnet.aptoslabs.com/v1", NetworkMainnet.FullnodeURL())
	assert.Equal(t, "https://fullnode.testnet.aptoslabs.com/v1", NetworkTestnet.FullnodeURL())
	assert.Equal(t, "https://fullnode.devnet.aptoslabs.com/v1", NetworkDevnet.FullnodeURL())
	assert.Empty(t, Network("localnet").FullnodeURL())
}

func TestIsTestnet(t *testing.T) {
	assert.False(t, NetworkMainnet.IsTestnet())
	assert.True(t, NetworkTestnet.IsTestnet())
	assert.True(t, NetworkDevnet.IsTestnet())
}
