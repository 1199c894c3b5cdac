package world

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
)

func TestMain(m *testing.M) {
	logging.SetLogDir("")
	os.Exit(m.Run())
}

func TestClientStorageMissThenDelivery(t *testing.T) {
	requests := make(chan vec.ChunkPos, 8)
	s := NewClientChunkStorage(requests)
	pos := vec.ChunkPos{X: 5, Z: 5}

	assert.False(t, s.IsCached(pos))
	got := s.GetChunk(pos)
	assert.Same(t, EmptyChunk(), got)
	require.Len(t, requests, 1)
	assert.Equal(t, pos, <-requests)
	assert.True(t, s.IsPending(pos))

	// Повторный промах до ответа не дублирует запрос
	assert.Same(t, EmptyChunk(), s.GetChunk(pos))
	assert.Len(t, requests, 0)

	delivered := filledChunk(3)
	s.ReceiveChunk(pos, delivered)
	assert.True(t, s.IsCached(pos))
	assert.False(t, s.IsPending(pos))

	assert.Same(t, delivered, s.GetChunk(pos))
	assert.Len(t, requests, 0)
}

func TestClientStorageFullQueueRetries(t *testing.T) {
	requests := make(chan vec.ChunkPos, 1)
	s := NewClientChunkStorage(requests)

	s.GetChunk(vec.ChunkPos{X: 1})
	s.GetChunk(vec.ChunkPos{X: 2})
	assert.False(t, s.IsPending(vec.ChunkPos{X: 2}))

	<-requests
	s.GetChunk(vec.ChunkPos{X: 2})
	assert.True(t, s.IsPending(vec.ChunkPos{X: 2}))
	assert.Equal(t, vec.ChunkPos{X: 2}, <-requests)
}

func TestClientStorageRetriesUnansweredRequest(t *testing.T) {
	requests := make(chan vec.ChunkPos, 4)
	s := NewClientChunkStorage(requests)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	s.SetRetryAfter(time.Second)

	pos := vec.ChunkPos{X: 4, Z: 4}
	s.GetChunk(pos)
	require.Len(t, requests, 1)

	now = now.Add(500 * time.Millisecond)
	s.GetChunk(pos)
	assert.Len(t, requests, 1)

	now = now.Add(time.Second)
	assert.True(t, s.GetChunk(pos).IsPlaceholder())
	assert.Len(t, requests, 2)
	assert.True(t, s.IsPending(pos))
}

func TestClientStorageCancelRequest(t *testing.T) {
	requests := make(chan vec.ChunkPos, 4)
	s := NewClientChunkStorage(requests)
	pos := vec.ChunkPos{X: -1, Z: 2}

	s.GetChunk(pos)
	require.True(t, s.IsPending(pos))
	s.CancelRequest(pos)
	assert.False(t, s.IsPending(pos))

	s.GetChunk(pos)
	assert.Len(t, requests, 2)
}

func TestClientStorageBlockUpdate(t *testing.T) {
	s := NewClientChunkStorage(make(chan vec.ChunkPos, 1))
	pos := vec.BlockPos{X: 17, Y: 70, Z: -3}

	assert.False(t, s.ApplyBlockUpdate(pos, stoneID))

	s.ReceiveChunk(pos.ChunkPos(), NewChunk())
	require.True(t, s.ApplyBlockUpdate(pos, stoneID))
	assert.Equal(t, stoneID, s.GetChunk(pos.ChunkPos()).GetBlock(pos))

	s.Unload(pos.ChunkPos())
	assert.Equal(t, 0, s.Len())
}

type countingGenerator struct {
	calls int
	chunk *Chunk
	err   error
}

func (g *countingGenerator) Generate(vec.ChunkPos) (*Chunk, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.chunk, nil
}

type mapSaver map[vec.ChunkPos]*Chunk

func (m mapSaver) SaveChunk(pos vec.ChunkPos, c *Chunk) error {
	m[pos] = c
	return nil
}

func TestServerStorageDiskWins(t *testing.T) {
	fromDisk := filledChunk(1)
	loads := 0
	loader := ChunkLoaderFunc(func(pos vec.ChunkPos) (*Chunk, bool) {
		loads++
		if pos == (vec.ChunkPos{}) {
			return fromDisk, true
		}
		return nil, false
	})
	gen := &countingGenerator{chunk: filledChunk(2)}
	s := NewServerChunkStorage(loader, gen)

	got := s.GetChunk(vec.ChunkPos{})
	assert.Same(t, fromDisk, got)
	assert.Equal(t, 0, gen.calls)
	assert.True(t, s.IsCached(vec.ChunkPos{}))

	// Повторный запрос идёт из памяти
	assert.Same(t, fromDisk, s.GetChunk(vec.ChunkPos{}))
	assert.Equal(t, 1, loads)
	assert.Equal(t, 0, s.DirtyCount())
}

func TestServerStorageGeneratesOnMiss(t *testing.T) {
	gen := &countingGenerator{chunk: filledChunk(2)}
	s := NewServerChunkStorage(nil, gen)
	pos := vec.ChunkPos{X: -4, Z: 9}

	c := s.GetChunk(pos)
	assert.Same(t, gen.chunk, c)
	assert.Same(t, c, s.GetChunk(pos))
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, s.DirtyCount())
}

func TestServerStorageGeneratorFailureNotCached(t *testing.T) {
	gen := &countingGenerator{err: errors.New("broken noise")}
	s := NewServerChunkStorage(nil, gen)
	pos := vec.ChunkPos{X: 3, Z: 3}

	assert.Same(t, EmptyChunk(), s.GetChunk(pos))
	assert.False(t, s.IsCached(pos))

	// Следующий запрос снова пробует генератор
	gen.err = nil
	gen.chunk = filledChunk(0)
	assert.Same(t, gen.chunk, s.GetChunk(pos))
	assert.Equal(t, 2, gen.calls)
}

func TestServerStorageSetBlockAndFlush(t *testing.T) {
	gen := &countingGenerator{chunk: NewChunk()}
	s := NewServerChunkStorage(nil, gen)
	pos := vec.BlockPos{X: 3, Y: 64, Z: 3}

	require.True(t, s.SetBlock(context.Background(), pos, grassID))
	assert.Equal(t, grassID, s.GetChunk(pos.ChunkPos()).GetBlock(pos))

	saved := mapSaver{}
	require.NoError(t, s.Flush(saved))
	assert.Len(t, saved, 1)
	assert.Equal(t, 0, s.DirtyCount())
}
