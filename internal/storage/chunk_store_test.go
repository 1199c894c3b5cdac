package storage

import (
	"os"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

func TestMain(m *testing.M) {
	logging.SetLogDir("")
	os.Exit(m.Run())
}

func testChunk() *world.Chunk {
	c := world.NewChunk()
	c.SetBlock(vec.BlockPos{X: 5, Y: 5, Z: 5}, block.MakeID(block.WaterType, 7))
	c.SetBlock(vec.BlockPos{X: 8, Y: 130, Z: 3}, block.MakeID(block.GrassType, 1))
	return c
}

func TestSaveAndLoadChunk(t *testing.T) {
	store, err := NewChunkStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	pos := vec.ChunkPos{X: 10, Z: -20}
	c := testChunk()
	require.NoError(t, store.SaveChunk(pos, c))

	got, ok := store.LoadChunk(pos)
	require.True(t, ok)
	assert.Equal(t, c.Encode(), got.Encode())

	_, ok = store.LoadChunk(vec.ChunkPos{X: 11, Z: -20})
	assert.False(t, ok)
}

func TestChunkPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	pos := vec.ChunkPos{X: -1, Z: 2}

	store, err := NewChunkStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveChunk(pos, testChunk()))
	require.NoError(t, store.Close())

	store, err = NewChunkStore(dir)
	require.NoError(t, err)
	defer store.Close()

	got, ok := store.LoadChunk(pos)
	require.True(t, ok)
	assert.Equal(t, testChunk().Encode(), got.Encode())
}

func TestSaveEmptyChunkDeletes(t *testing.T) {
	store, err := NewInMemoryChunkStore()
	require.NoError(t, err)
	defer store.Close()

	pos := vec.ChunkPos{X: 1, Z: 1}
	require.NoError(t, store.SaveChunk(pos, testChunk()))
	require.NoError(t, store.SaveChunk(pos, world.NewChunk()))

	c, err := store.ReadChunk(pos)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestRegionChunks(t *testing.T) {
	store, err := NewInMemoryChunkStore()
	require.NoError(t, err)
	defer store.Close()

	in := []vec.ChunkPos{{X: 0, Z: 0}, {X: 31, Z: 5}, {X: -1, Z: -1}}
	for _, pos := range in {
		require.NoError(t, store.SaveChunk(pos, testChunk()))
	}

	got, err := store.RegionChunks(vec.RegionPos{X: 0, Z: 0})
	require.NoError(t, err)
	assert.ElementsMatch(t, in[:2], got)

	got, err = store.RegionChunks(vec.RegionPos{X: -1, Z: -1})
	require.NoError(t, err)
	assert.Equal(t, []vec.ChunkPos{{X: -1, Z: -1}}, got)
}

func TestCorruptedChunkIsNotLoaded(t *testing.T) {
	store, err := NewInMemoryChunkStore()
	require.NoError(t, err)
	defer store.Close()

	pos := vec.ChunkPos{X: 4, Z: 4}
	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(pos), []byte{chunkFormatV1, 0xde, 0xad})
	}))

	_, ok := store.LoadChunk(pos)
	assert.False(t, ok)
	_, err = store.ReadChunk(pos)
	assert.Error(t, err)
}

func TestChunkKeyUsesRegion(t *testing.T) {
	assert.Equal(t, "region:-1:0:chunk:-1:31", string(chunkKey(vec.ChunkPos{X: -1, Z: 31})))
}

func TestClosedStore(t *testing.T) {
	store, err := NewInMemoryChunkStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.SaveChunk(vec.ChunkPos{}, testChunk()), ErrNotReady)
}
