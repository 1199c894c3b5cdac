package world

import (
	"time"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world/block"
)

// DefaultRequestRetry - через сколько неотвеченный запрос чанка повторяется
const DefaultRequestRetry = 5 * time.Second

// ClientChunkStorage - неблокирующий кеш клиента. Промах ставит позицию
// в очередь запросов и сразу возвращает EmptyChunk().
// Используется только горутиной, которая владеет игровым циклом.
type ClientChunkStorage struct {
	chunks     map[vec.ChunkPos]*Chunk
	pending    map[vec.ChunkPos]time.Time // время отправки запроса
	requests   chan<- vec.ChunkPos
	retryAfter time.Duration
	now        func() time.Time
	logger     *logging.Logger
}

// NewClientChunkStorage создаёт кеш, отправляющий запросы в requests
func NewClientChunkStorage(requests chan<- vec.ChunkPos) *ClientChunkStorage {
	return &ClientChunkStorage{
		chunks:     make(map[vec.ChunkPos]*Chunk),
		pending:    make(map[vec.ChunkPos]time.Time),
		requests:   requests,
		retryAfter: DefaultRequestRetry,
		now:        time.Now,
		logger:     logging.GetWorldLogger(),
	}
}

// SetRetryAfter задаёт, через сколько промах повторит неотвеченный запрос.
// Сервер не отвечает на чанк, который не удалось сгенерировать.
func (s *ClientChunkStorage) SetRetryAfter(d time.Duration) {
	if d <= 0 {
		d = DefaultRequestRetry
	}
	s.retryAfter = d
}

func (s *ClientChunkStorage) IsCached(pos vec.ChunkPos) bool {
	_, ok := s.chunks[pos]
	return ok
}

// GetChunk возвращает чанк из кеша. При промахе запрос отправляется не чаще
// одного раза за retryAfter, пока чанк не будет получен.
func (s *ClientChunkStorage) GetChunk(pos vec.ChunkPos) *Chunk {
	if c, ok := s.chunks[pos]; ok {
		return c
	}
	now := s.now()
	if sent, ok := s.pending[pos]; ok && now.Sub(sent) < s.retryAfter {
		return EmptyChunk()
	}

	select {
	case s.requests <- pos:
		s.pending[pos] = now
	default:
		// Очередь полна: позиция не помечается, следующий промах повторит запрос
		s.logger.Debug("Очередь запросов чанков заполнена, %s отложен", pos)
	}
	return EmptyChunk()
}

// ReceiveChunk помещает полученный чанк в кеш
func (s *ClientChunkStorage) ReceiveChunk(pos vec.ChunkPos, c *Chunk) {
	if c == nil {
		c = NewChunk()
	}
	s.chunks[pos] = c
	delete(s.pending, pos)
}

// ApplyBlockUpdate применяет изменение блока к закешированному чанку.
// Обновления для незагруженных чанков игнорируются: сервер пришлёт чанк целиком.
func (s *ClientChunkStorage) ApplyBlockUpdate(pos vec.BlockPos, id block.BlockID) bool {
	c, ok := s.chunks[pos.ChunkPos()]
	if !ok {
		return false
	}
	return c.SetBlock(pos, id)
}

// Unload удаляет чанк из кеша
func (s *ClientChunkStorage) Unload(pos vec.ChunkPos) {
	delete(s.chunks, pos)
	delete(s.pending, pos)
}

// CancelRequest снимает отметку об отправленном запросе: следующий промах
// отправит его снова. Для запросов, которые так и не ушли серверу.
func (s *ClientChunkStorage) CancelRequest(pos vec.ChunkPos) {
	delete(s.pending, pos)
}

// IsPending сообщает, что запрос отправлен и ответ ещё не получен
func (s *ClientChunkStorage) IsPending(pos vec.ChunkPos) bool {
	_, ok := s.pending[pos]
	return ok
}

// Len возвращает количество закешированных чанков
func (s *ClientChunkStorage) Len() int {
	return len(s.chunks)
}
