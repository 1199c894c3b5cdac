package world

import "github.com/annel0/voxelnet/internal/vec"

// ChunkStorage - общий контракт кеша чанков для логики мира и рендера
type ChunkStorage interface {
	// IsCached не меняет состояние кеша
	IsCached(pos vec.ChunkPos) bool
	// GetChunk всегда возвращает чанк; при промахе может вернуть EmptyChunk()
	GetChunk(pos vec.ChunkPos) *Chunk
}

// ChunkLoader загружает сохранённые чанки (диск)
type ChunkLoader interface {
	LoadChunk(pos vec.ChunkPos) (*Chunk, bool)
}

// ChunkGenerator процедурно создаёт чанк
type ChunkGenerator interface {
	Generate(pos vec.ChunkPos) (*Chunk, error)
}

// ChunkSaver сохраняет изменённые чанки
type ChunkSaver interface {
	SaveChunk(pos vec.ChunkPos, c *Chunk) error
}

// ChunkLoaderFunc позволяет использовать функцию как ChunkLoader
type ChunkLoaderFunc func(pos vec.ChunkPos) (*Chunk, bool)

func (f ChunkLoaderFunc) LoadChunk(pos vec.ChunkPos) (*Chunk, bool) { return f(pos) }

// ChunkGeneratorFunc позволяет использовать функцию как ChunkGenerator
type ChunkGeneratorFunc func(pos vec.ChunkPos) (*Chunk, error)

func (f ChunkGeneratorFunc) Generate(pos vec.ChunkPos) (*Chunk, error) { return f(pos) }

// NoLoader - загрузчик без сохранённых данных
var NoLoader ChunkLoader = ChunkLoaderFunc(func(vec.ChunkPos) (*Chunk, bool) { return nil, false })
