package world

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world/block"
)

// ServerChunkStorage разрешает чанки по уровням: память -> загрузчик -> генератор.
// Результат кешируется на уровне, где он найден. Неудача генератора не кешируется.
// Как и клиентский кеш, принадлежит одной горутине игрового цикла.
type ServerChunkStorage struct {
	chunks    map[vec.ChunkPos]*Chunk
	dirty     map[vec.ChunkPos]struct{}
	loader    ChunkLoader
	generator ChunkGenerator
	logger    *logging.Logger
	tracer    trace.Tracer
}

// NewServerChunkStorage создаёт серверный кеш. loader может быть nil.
func NewServerChunkStorage(loader ChunkLoader, generator ChunkGenerator) *ServerChunkStorage {
	if loader == nil {
		loader = NoLoader
	}
	return &ServerChunkStorage{
		chunks:    make(map[vec.ChunkPos]*Chunk),
		dirty:     make(map[vec.ChunkPos]struct{}),
		loader:    loader,
		generator: generator,
		logger:    logging.GetStorageLogger(),
		tracer:    otel.Tracer("github.com/annel0/voxelnet/internal/world"),
	}
}

func (s *ServerChunkStorage) IsCached(pos vec.ChunkPos) bool {
	_, ok := s.chunks[pos]
	return ok
}

func (s *ServerChunkStorage) GetChunk(pos vec.ChunkPos) *Chunk {
	return s.Resolve(context.Background(), pos)
}

// Resolve разрешает чанк и записывает span трассировки с уровнем, на котором он найден
func (s *ServerChunkStorage) Resolve(ctx context.Context, pos vec.ChunkPos) *Chunk {
	if c, ok := s.chunks[pos]; ok {
		chunkResolutions.WithLabelValues(tierMemory).Inc()
		return c
	}

	_, span := s.tracer.Start(ctx, "world.ResolveChunk", trace.WithAttributes(
		attribute.Int("chunk.x", int(pos.X)),
		attribute.Int("chunk.z", int(pos.Z)),
		attribute.String("chunk.region", pos.Region().String()),
	))
	defer span.End()

	if c, ok := s.loader.LoadChunk(pos); ok && c != nil {
		s.store(pos, c)
		span.SetAttributes(attribute.String("chunk.tier", tierDisk))
		chunkResolutions.WithLabelValues(tierDisk).Inc()
		return c
	}

	c, err := s.generator.Generate(pos)
	if err == nil && c == nil {
		err = fmt.Errorf("generator returned nil chunk")
	}
	if err != nil {
		s.logger.Error("Ошибка генерации чанка %s: %v", pos, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		chunkResolutions.WithLabelValues(tierFailed).Inc()
		if debugAssert {
			panic(fmt.Sprintf("chunk generation failed at %s: %v", pos, err))
		}
		return EmptyChunk()
	}

	s.store(pos, c)
	// Сгенерированный чанк ещё не сохранён на диске
	s.dirty[pos] = struct{}{}
	span.SetAttributes(attribute.String("chunk.tier", tierGenerator))
	chunkResolutions.WithLabelValues(tierGenerator).Inc()
	return c
}

func (s *ServerChunkStorage) store(pos vec.ChunkPos, c *Chunk) {
	s.chunks[pos] = c
	chunksCached.Set(float64(len(s.chunks)))
}

// SetBlock разрешает чанк позиции, меняет блок и помечает чанк для сохранения
func (s *ServerChunkStorage) SetBlock(ctx context.Context, pos vec.BlockPos, id block.BlockID) bool {
	cp := pos.ChunkPos()
	c := s.Resolve(ctx, cp)
	if !c.SetBlock(pos, id) {
		return false
	}
	s.dirty[cp] = struct{}{}
	return true
}

// DirtyCount возвращает количество несохранённых чанков
func (s *ServerChunkStorage) DirtyCount() int {
	return len(s.dirty)
}

// Flush сохраняет изменённые чанки. Чанки с ошибкой остаются помеченными.
func (s *ServerChunkStorage) Flush(saver ChunkSaver) error {
	var lastErr error
	saved := 0
	for pos := range s.dirty {
		if err := saver.SaveChunk(pos, s.chunks[pos]); err != nil {
			s.logger.Error("Ошибка сохранения чанка %s: %v", pos, err)
			lastErr = err
			continue
		}
		delete(s.dirty, pos)
		saved++
	}
	if saved > 0 {
		s.logger.Debug("Сохранено чанков: %d", saved)
	}
	return lastErr
}

// Len возвращает количество чанков в памяти
func (s *ServerChunkStorage) Len() int {
	return len(s.chunks)
}
