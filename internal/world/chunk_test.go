package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/wire"
	"github.com/annel0/voxelnet/internal/world/block"
)

var (
	stoneID = block.MakeID(block.StoneType, 0)
	grassID = block.MakeID(block.GrassType, 0)
)

// filledChunk заполняет указанные слоты узнаваемыми данными
func filledChunk(slots ...int) *Chunk {
	c := NewChunk()
	for _, slot := range slots {
		s := NewSubChunk()
		for i := 0; i < BlockCount; i += 7 {
			x, z, y := i&15, (i>>4)&15, i>>8
			s.Set(x, y, z, block.MakeID(uint8(slot%5), uint8(i%3)))
		}
		s.Set(0, 0, 0, stoneID)
		c.SetSubChunk(slot, s)
	}
	return c
}

func TestSubChunkIndexLayout(t *testing.T) {
	s := NewSubChunk()
	s.Set(1, 2, 3, stoneID)

	data := s.Encode()
	require.Len(t, data, SubChunkBytes)

	i := (2<<8 | 3<<4 | 1) * block.IDSize
	assert.Equal(t, []byte{0x00, 0x02}, data[i:i+2])
	assert.Equal(t, 1, s.NonAirCount())

	s.Set(1, 2, 3, block.AirID)
	assert.True(t, s.IsEmpty())
}

func TestChunkGetBlock(t *testing.T) {
	c := NewChunk()
	pos := vec.BlockPos{X: -3, Y: 40, Z: 17}

	assert.Equal(t, block.AirID, c.GetBlock(pos))
	require.True(t, c.SetBlock(pos, grassID))
	assert.Equal(t, grassID, c.GetBlock(pos))
	assert.Equal(t, []int{2}, c.PopulatedSlots())

	x, y, z := pos.Local()
	assert.Equal(t, grassID, c.SubChunk(2).Get(x, y, z))

	// Вне колонны - воздух, запись отклоняется
	assert.Equal(t, block.AirID, c.GetBlock(vec.BlockPos{Y: -1}))
	assert.Equal(t, block.AirID, c.GetBlock(vec.BlockPos{Y: ColumnHeight}))
	assert.False(t, c.SetBlock(vec.BlockPos{Y: ColumnHeight}, stoneID))
}

func TestChunkDropsAirSubChunks(t *testing.T) {
	c := NewChunk()
	pos := vec.BlockPos{X: 1, Y: 1, Z: 1}

	c.SetBlock(pos, stoneID)
	require.Equal(t, uint8(1), c.SizeInUnits())

	c.SetBlock(pos, block.AirID)
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.SubChunk(0))

	c.SetSubChunk(3, NewSubChunk())
	assert.True(t, c.IsEmpty())
}

func TestChunkRoundTrip(t *testing.T) {
	all := make([]int, SubChunkSlots)
	for i := range all {
		all[i] = i
	}

	cases := map[string][]int{
		"empty": nil,
		"one":   {7},
		"full":  all,
	}
	for name, slots := range cases {
		t.Run(name, func(t *testing.T) {
			c := filledChunk(slots...)
			data := c.Encode()
			require.Len(t, data, ChunkWireSize(uint8(len(slots))))
			require.Equal(t, c.EncodedSize(), len(data))

			r := wire.NewReader(data)
			got, err := DecodeChunk(r)
			require.NoError(t, err)
			assert.Equal(t, 0, r.Available())

			assert.Equal(t, c.PopulatedSlots(), got.PopulatedSlots())
			for _, slot := range c.PopulatedSlots() {
				assert.Equal(t, c.SubChunk(slot).blocks, got.SubChunk(slot).blocks, "slot %d", slot)
				assert.Equal(t, c.SubChunk(slot).NonAirCount(), got.SubChunk(slot).NonAirCount())
			}
		})
	}
}

func TestChunkMaskLayout(t *testing.T) {
	c := filledChunk(0, 9)
	data := c.Encode()
	assert.Equal(t, []byte{0x01, 0x02}, data[:2])
}

func TestDecodeChunkSkipsAirSubChunk(t *testing.T) {
	data := []byte{0x01, 0x00}
	data = append(data, make([]byte, SubChunkBytes)...)

	c, err := DecodeChunk(wire.NewReader(data))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestDecodeChunkTruncated(t *testing.T) {
	data := filledChunk(1, 2).Encode()

	_, err := DecodeChunk(wire.NewReader(data[:len(data)-1]))
	var nde *wire.NotEnoughDataError
	require.True(t, errors.As(err, &nde))
	assert.Equal(t, SubChunkBytes, nde.Needed)
	assert.Equal(t, SubChunkBytes-1, nde.Available)
}

func TestEmptyChunkIsReadOnly(t *testing.T) {
	e := EmptyChunk()
	assert.True(t, e.IsPlaceholder())
	assert.False(t, e.SetBlock(vec.BlockPos{}, stoneID))
	e.SetSubChunk(0, filledChunk(0).SubChunk(0))
	assert.True(t, e.IsEmpty())

	cp := e.Clone()
	assert.False(t, cp.IsPlaceholder())
	assert.True(t, cp.SetBlock(vec.BlockPos{}, stoneID))
}

func TestChunkCloneIsDeep(t *testing.T) {
	c := filledChunk(4)
	cp := c.Clone()

	pos := vec.BlockPos{X: 5, Y: 4 * 16, Z: 5}
	cp.SetBlock(pos, grassID)
	assert.NotEqual(t, c.GetBlock(pos), cp.GetBlock(pos))
}
