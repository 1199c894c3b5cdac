package block

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
)

func TestMain(m *testing.M) {
	logging.SetLogDir("")
	os.Exit(m.Run())
}

func newTestRegistry(buf *bytes.Buffer) *Registry {
	return NewRegistry(logging.NewWriterLogger("block-test", buf, logging.DEBUG))
}

func TestBlockIDLayout(t *testing.T) {
	id := MakeID(GrassType, 1)
	assert.Equal(t, BlockID(0x0101), id)
	assert.Equal(t, GrassType, id.Type())
	assert.Equal(t, uint8(1), id.State())
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})

	id := MakeID(GrassType, 1)
	first := r.Resolve(id)
	second := r.Resolve(id)
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, id, first.ID())
	assert.True(t, first.(*GrassBlock).Snowy)
}

func TestResolveUnknownFallsBackToAir(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRegistry(&buf)

	b := r.Resolve(MakeID(255, 0))
	assert.Same(t, Air(), b)
	assert.Contains(t, buf.String(), "WARN")

	// Неизвестное состояние известного типа
	assert.Same(t, Air(), r.Resolve(MakeID(GrassType, 2)))
	assert.Same(t, Air(), r.Resolve(MakeID(WaterType, MaxWaterLevel+1)))
	assert.False(t, r.IsValid(MakeID(255, 0)))
	assert.True(t, r.IsValid(MakeID(WaterType, 3)))

	// Ошибки не интернируются
	assert.Equal(t, 1, r.Len())
}

func TestResolveConcurrent(t *testing.T) {
	r := newTestRegistry(&bytes.Buffer{})
	id := MakeID(WaterType, 3)

	const workers = 32
	results := make([]Block, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(id)
		}(i)
	}
	wg.Wait()

	for _, b := range results {
		assert.Same(t, results[0], b)
	}
}

func TestVariantProperties(t *testing.T) {
	pos := vec.BlockPos{}

	assert.True(t, Air().IsReplaceable(pos))
	assert.Equal(t, uint32(0), Air().MapColor())
	assert.Equal(t, AirID, Air().ID())

	assert.False(t, Grass(false).IsReplaceable(pos))
	assert.NotEqual(t, Grass(false).MapColor(), Grass(true).MapColor())
	assert.Same(t, Grass(true), Resolve(MakeID(GrassType, 1)))

	assert.Equal(t, MakeID(StoneType, 0), Stone().ID())
	assert.Equal(t, MakeID(DirtType, 0), Dirt().ID())

	w := Water(20)
	assert.Equal(t, MakeID(WaterType, MaxWaterLevel), w.ID())
	assert.True(t, w.IsReplaceable(pos))
	assert.Equal(t, "water", TypeName(WaterType))
}

func TestDefaultRegistryInitOnce(t *testing.T) {
	Init()
	r := Default()
	Init()
	assert.Same(t, r, Default())
}
