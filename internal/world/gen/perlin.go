// Package gen содержит процедурные генераторы ландшафта.
package gen

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

// Параметры шума Перлина
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3
)

// Options настраивает генератор
type Options struct {
	Seed       int64
	Scale      float64 // Масштаб шума высоты
	BaseHeight int32
	Amplitude  int32
	SeaLevel   int32 // Ниже уровня моря пустота заполняется водой
	SnowLine   int32 // Начиная с этой высоты трава заснежена
	DirtDepth  int32
}

// DefaultOptions возвращает параметры ландшафта по умолчанию
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:       seed,
		Scale:      0.01,
		BaseHeight: 64,
		Amplitude:  48,
		SeaLevel:   62,
		SnowLine:   100,
		DirtDepth:  3,
	}
}

// PerlinGenerator строит карту высот из шума Перлина:
// камень, слой земли, трава сверху, вода до уровня моря.
type PerlinGenerator struct {
	opts  Options
	noise *perlin.Perlin

	stone, dirt, grass, snowyGrass, water block.BlockID
}

// NewPerlinGenerator создаёт детерминированный генератор для сида
func NewPerlinGenerator(opts Options) *PerlinGenerator {
	return &PerlinGenerator{
		opts:       opts,
		noise:      perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, opts.Seed),
		stone:      block.Stone().ID(),
		dirt:       block.Dirt().ID(),
		grass:      block.Grass(false).ID(),
		snowyGrass: block.Grass(true).ID(),
		water:      block.Water(0).ID(),
	}
}

// Height возвращает высоту поверхности в колонне (x, z)
func (g *PerlinGenerator) Height(x, z int32) int32 {
	n := g.noise.Noise2D(float64(x)*g.opts.Scale, float64(z)*g.opts.Scale)
	h := g.opts.BaseHeight + int32(n*float64(g.opts.Amplitude))
	if h < 1 {
		h = 1
	}
	if h > world.ColumnHeight-1 {
		h = world.ColumnHeight - 1
	}
	return h
}

// Generate создаёт чанк. Позиции вне проводного диапазона считаются ошибкой.
func (g *PerlinGenerator) Generate(pos vec.ChunkPos) (*world.Chunk, error) {
	if !pos.InWireRange() {
		return nil, fmt.Errorf("chunk %s is outside of the generated area", pos)
	}

	c := world.NewChunk()
	origin := pos.Origin(0)
	for lx := int32(0); lx < world.SubChunkSize; lx++ {
		for lz := int32(0); lz < world.SubChunkSize; lz++ {
			x, z := origin.X+lx, origin.Z+lz
			g.fillColumn(c, x, z, g.Height(x, z))
		}
	}
	return c, nil
}

func (g *PerlinGenerator) fillColumn(c *world.Chunk, x, z, height int32) {
	for y := int32(0); y <= height; y++ {
		id := g.stone
		switch {
		case y == height && height < g.opts.SeaLevel:
			id = g.dirt // Дно под водой
		case y == height && height >= g.opts.SnowLine:
			id = g.snowyGrass
		case y == height:
			id = g.grass
		case y > height-g.opts.DirtDepth:
			id = g.dirt
		}
		c.SetBlock(vec.BlockPos{X: x, Y: y, Z: z}, id)
	}
	for y := height + 1; y <= g.opts.SeaLevel; y++ {
		c.SetBlock(vec.BlockPos{X: x, Y: y, Z: z}, g.water)
	}
}
