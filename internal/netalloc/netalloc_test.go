package netalloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM(t *testing.T) {
	tests := []struct {
		id       int
		expected Subnet
	}{
		{0, Subnet{"10.60.0.0/24", "10.60.0.254", "10.60.0.250", "10.60.0.1"}},
		{3, Subnet{"10.60.3.0/24", "10.60.3.254", "10.60.3.250", "10.60.3.1"}},
		{249, Subnet{"10.60.249.0/24", "10.60.249.254", "10.60.249.250", "10.60.249.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.expected.CIDR, func(t *testing.T) {
			got, err := VM(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPlayers(t *testing.T) {
	got, err := Players(7)
	require.NoError(t, err)
	assert.Equal(t, Subnet{
		CIDR:    "10.80.7.0/24",
		Gateway: "10.80.7.254",
		Router:  "10.80.7.250",
		Host:    "10.80.7.128",
	}, got)
}

func TestGameserver(t *testing.T) {
	assert.Equal(t, Subnet{
		CIDR:    "10.10.0.0/24",
		Gateway: "10.10.0.254",
		Router:  "10.10.0.250",
		Host:    "10.10.0.1",
	}, Gameserver())
}

func TestTeamIDOutOfRange(t *testing.T) {
	for _, id := range []int{-1, 250, 1000} {
		t.Run(fmt.Sprintf("id=%d", id), func(t *testing.T) {
			_, err := VM(id)
			var aerr *AllocationError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, id, aerr.TeamID)
			assert.Equal(t, "address", aerr.Resource)

			_, err = Players(id)
			assert.ErrorAs(t, err, &aerr)
		})
	}
}

func TestVPNPort(t *testing.T) {
	for i := 0; i < 4; i++ {
		port, err := VPNPort(51000, i)
		require.NoError(t, err)
		assert.Equal(t, 51000+i, port)
	}
}

func TestVPNPortOverflow(t *testing.T) {
	_, err := VPNPort(65533, 4)
	var aerr *AllocationError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 4, aerr.TeamID)
	assert.Equal(t, "port", aerr.Resource)

	// 65533 + 2 is still in range
	port, err := VPNPort(65533, 2)
	require.NoError(t, err)
	assert.Equal(t, 65535, port)
}

// Subnets of distinct teams must be pairwise disjoint across every class.
func TestSubnetsDisjoint(t *testing.T) {
	seen := make(map[string]int)
	for id := 0; id < MaxTeamID; id++ {
		vm, err := VM(id)
		require.NoError(t, err)
		pl, err := Players(id)
		require.NoError(t, err)

		for _, cidr := range []string{vm.CIDR, pl.CIDR} {
			prev, dup := seen[cidr]
			assert.False(t, dup, "subnet %s assigned to both %d and %d", cidr, prev, id)
			seen[cidr] = id
		}
	}
	_, dup := seen[Gameserver().CIDR]
	assert.False(t, dup)
}
