package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/wire"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

func TestMain(m *testing.M) {
	logging.SetLogDir("")
	os.Exit(m.Run())
}

func chunkWithSlots(slots ...int) *world.Chunk {
	c := world.NewChunk()
	for _, slot := range slots {
		c.SetBlock(vec.BlockPos{X: 1, Y: int32(slot*16 + 2), Z: 3}, block.MakeID(block.StoneType, 0))
	}
	return c
}

func TestRequiredBufferSize(t *testing.T) {
	n, err := RequiredBufferSize(TypePing, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = RequiredBufferSize(TypeBlockUpdate, 99)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = RequiredBufferSize(TypeChunkData, 3)
	require.NoError(t, err)
	assert.Equal(t, 6+2+3*world.SubChunkBytes, n)

	n, err = RequiredBufferSize(TypeChunkRequest, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = RequiredBufferSize(PacketType(999), 0)
	var ute *UnknownTypeError
	assert.True(t, errors.As(err, &ute))

	_, err = RequiredBufferSize(TypeChunkData, 17)
	var she *SizeHeaderError
	assert.True(t, errors.As(err, &she))

	assert.Equal(t, 2+1+6+2+16*world.SubChunkBytes, MaxFrameSize)
}

func TestChunkDataFrameLayout(t *testing.T) {
	data := ChunkData{Pos: vec.ChunkPos{X: 1, Z: -2}, Chunk: chunkWithSlots(0, 4, 9)}

	header, ok := data.SizeHeader()
	require.True(t, ok)
	assert.Equal(t, uint8(3), header)

	frame := Encode(data)
	assert.Equal(t, []byte{0x02, 0x00, 0x03}, frame[:3])

	payload := frame[3:]
	assert.Len(t, payload, vec.ChunkPosWireSize+2+3*world.SubChunkBytes)
	assert.Len(t, payload[vec.ChunkPosWireSize:], 2+3*world.SubChunkBytes)
}

func TestFixedFramesHaveNoSizeHeader(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x00}, Encode(Ping{}))

	frame := Encode(BlockUpdate{Pos: vec.BlockPos{Y: 1}, Block: 0x0201})
	assert.Equal(t, []byte{0x01, 0x00, 1, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x02}, frame)

	assert.Len(t, Encode(ChunkRequest{Pos: vec.ChunkPos{X: 5, Z: 5}}), 2+6)
}

func TestTryDecodeRoundTrip(t *testing.T) {
	packets := []PacketData{
		Ping{},
		BlockUpdate{Pos: vec.MustBlockPos(-7, 100, 300), Block: block.MakeID(block.GrassType, 1)},
		ChunkData{Pos: vec.ChunkPos{X: -3, Z: 8}, Chunk: chunkWithSlots(2, 15)},
		ChunkData{Pos: vec.ChunkPos{}, Chunk: world.NewChunk()},
		ChunkRequest{Pos: vec.ChunkPos{X: 5, Z: -5}},
	}

	var stream []byte
	for _, p := range packets {
		stream = AppendFrame(stream, p)
	}

	for _, want := range packets {
		got, n, err := TryDecode(stream)
		require.NoError(t, err)
		require.Equal(t, want.Type(), got.Type())
		stream = stream[n:]

		if cd, ok := want.(ChunkData); ok {
			gotCD := got.(ChunkData)
			assert.Equal(t, cd.Pos, gotCD.Pos)
			assert.Equal(t, cd.Chunk.Encode(), gotCD.Chunk.Encode())
			continue
		}
		assert.Equal(t, want, got)
	}
	assert.Empty(t, stream)
}

func TestTryDecodeIncomplete(t *testing.T) {
	frame := Encode(ChunkData{Pos: vec.ChunkPos{X: 1}, Chunk: chunkWithSlots(1)})

	for _, n := range []int{0, 1, 2, 3, 10, len(frame) - 1} {
		_, used, err := TryDecode(frame[:n])
		assert.ErrorIs(t, err, ErrIncomplete, "prefix %d", n)
		assert.Equal(t, 0, used)
	}

	_, used, err := TryDecode(frame)
	require.NoError(t, err)
	assert.Equal(t, len(frame), used)
}

func TestTryDecodeUnknownType(t *testing.T) {
	_, _, err := TryDecode([]byte{0xff, 0x00, 1, 2, 3})
	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, PacketType(255), ute.Type)
}

func TestTryDecodeHeaderMaskMismatch(t *testing.T) {
	frame := Encode(ChunkData{Chunk: chunkWithSlots(1, 2)})

	// Заголовок говорит 3, маска - 2 сабчанка
	frame[2] = 3
	frame = append(frame, make([]byte, world.SubChunkBytes)...)
	_, _, err := TryDecode(frame)
	var tbe *TrailingBytesError
	require.True(t, errors.As(err, &tbe))
	assert.Equal(t, world.SubChunkBytes, tbe.Remaining)

	// Заголовок говорит 1, маска - 2
	frame = Encode(ChunkData{Chunk: chunkWithSlots(1, 2)})
	frame[2] = 1
	_, _, err = TryDecode(frame[:len(frame)-world.SubChunkBytes])
	var nde *wire.NotEnoughDataError
	assert.True(t, errors.As(err, &nde))
}

func TestWriteFrame(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	n, err := WriteFrame(w, ChunkRequest{Pos: vec.ChunkPos{X: 2, Z: 3}})
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	require.NoError(t, w.Flush())
	assert.Equal(t, Encode(ChunkRequest{Pos: vec.ChunkPos{X: 2, Z: 3}}), out.Bytes())
}

func TestDirectionString(t *testing.T) {
	id := NewClientID()
	assert.NotEqual(t, id, NewClientID())
	assert.Equal(t, "to-server", ToServer().String())
	assert.Contains(t, FromClient(id).String(), id.String())
	assert.Equal(t, KindToClient, ToClient(id).Kind)
}
