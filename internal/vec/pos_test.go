package vec

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/wire"
)

func TestBlockPosPackRoundTrip(t *testing.T) {
	cases := []BlockPos{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -1, -1},
		{MaxBlockX - 1, MaxBlockY - 1, MaxBlockZ - 1},
		{-MaxBlockX, -MaxBlockY, -MaxBlockZ},
		{-MaxBlockX, MaxBlockY - 1, 12345},
	}
	for _, p := range cases {
		assert.Equal(t, p, UnpackBlockPos(p.Pack()), "pos %v", p)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		p := BlockPos{
			X: int32(rng.Intn(2*MaxBlockX)) - MaxBlockX,
			Y: int32(rng.Intn(2*MaxBlockY)) - MaxBlockY,
			Z: int32(rng.Intn(2*MaxBlockZ)) - MaxBlockZ,
		}
		require.Equal(t, p, UnpackBlockPos(p.Pack()))
	}
}

func TestBlockPosPackLayout(t *testing.T) {
	// y в младших битах, z следом, x в старших
	assert.Equal(t, uint64(1), BlockPos{Y: 1}.Pack())
	assert.Equal(t, uint64(1)<<10, BlockPos{Z: 1}.Pack())
	assert.Equal(t, uint64(1)<<37, BlockPos{X: 1}.Pack())
}

func TestBlockPosValidate(t *testing.T) {
	_, err := NewBlockPos(MaxBlockX, 0, 0)
	var ipe *InvalidPositionError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, AxisX, ipe.Axis)
	assert.Equal(t, int32(MaxBlockX), ipe.Value)

	_, err = NewBlockPos(0, -MaxBlockY-1, 0)
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, AxisY, ipe.Axis)

	_, err = NewBlockPos(0, 0, MaxBlockZ)
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, AxisZ, ipe.Axis)

	_, err = NewBlockPos(-MaxBlockX, MaxBlockY-1, 0)
	assert.NoError(t, err)

	assert.Panics(t, func() { MustBlockPos(0, MaxBlockY, 0) })
}

func TestBlockPosWire(t *testing.T) {
	p := MustBlockPos(-100, 64, 7)
	buf := p.AppendWire(nil)
	require.Len(t, buf, BlockPosWireSize)

	got, err := ReadBlockPos(wire.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = ReadBlockPos(wire.NewReader(buf[:5]))
	var nde *wire.NotEnoughDataError
	assert.True(t, errors.As(err, &nde))
}

func TestBlockPosChunkAndLocal(t *testing.T) {
	assert.Equal(t, ChunkPos{X: 0, Z: 0}, BlockPos{X: 15, Z: 15}.ChunkPos())
	assert.Equal(t, ChunkPos{X: -1, Z: -1}, BlockPos{X: -1, Z: -16}.ChunkPos())
	assert.Equal(t, ChunkPos{X: -2, Z: 1}, BlockPos{X: -17, Z: 16}.ChunkPos())

	x, y, z := BlockPos{X: -1, Y: 17, Z: 33}.Local()
	assert.Equal(t, []int{15, 1, 1}, []int{x, y, z})
}

func TestBlockPosOffset(t *testing.T) {
	p := BlockPos{X: 1, Y: 2, Z: 3}
	for _, d := range []Direction{North, South, East, West, Up, Down} {
		assert.Equal(t, p, p.Offset(d).Offset(d.Opposite()))
	}
	assert.Equal(t, BlockPos{X: 1, Y: 3, Z: 3}, p.Offset(Up))
	assert.Equal(t, BlockPos{X: 1, Y: 2, Z: 2}, p.Offset(North))
}

func TestChunkPosWireRoundTrip(t *testing.T) {
	cases := []ChunkPos{
		{0, 0}, {5, 5}, {-1, 1}, {MaxChunkCoord - 1, -MaxChunkCoord}, {-MaxChunkCoord, MaxChunkCoord - 1},
	}
	for _, p := range cases {
		require.True(t, p.InWireRange())
		buf := p.AppendWire(nil)
		require.Len(t, buf, ChunkPosWireSize)

		got, err := ReadChunkPos(wire.NewReader(buf))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	assert.Equal(t, []byte{0, 0, 1, 0xff, 0xff, 0xff}, ChunkPos{X: 1, Z: -1}.AppendWire(nil))
}

func TestChunkPosReadTruncated(t *testing.T) {
	_, err := ReadChunkPos(wire.NewReader([]byte{1, 2, 3, 4}))
	var nde *wire.NotEnoughDataError
	require.True(t, errors.As(err, &nde))
	assert.Equal(t, 6, nde.Needed)
	assert.Equal(t, 4, nde.Available)
}

func TestChunkPosKey(t *testing.T) {
	assert.Equal(t, uint64(5)<<32|5, ChunkPos{X: 5, Z: 5}.Key())
	// Известное совпадение ключей при отрицательном z
	assert.Equal(t, ChunkPos{X: 0, Z: -1}.Key(), ChunkPos{X: -1, Z: -1}.Key())
}

func TestChunkPosRegion(t *testing.T) {
	assert.Equal(t, RegionPos{0, 0}, ChunkPos{X: 31, Z: 0}.Region())
	assert.Equal(t, RegionPos{1, -1}, ChunkPos{X: 32, Z: -1}.Region())
	assert.Equal(t, RegionPos{-2, -1}, ChunkPos{X: -33, Z: -32}.Region())
}
