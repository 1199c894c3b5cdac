package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/wire"
	"github.com/annel0/voxelnet/internal/world"
)

// chunkFormatV1 - первый байт значения: версия формата, затем zstd(кодированный чанк)
const chunkFormatV1 byte = 1

// ErrNotReady возвращается после Close
var ErrNotReady = errors.New("хранилище не готово")

// ChunkStore хранит чанки в BadgerDB. Ключ адресует регион 32x32 чанка,
// значение - сжатый проводной формат чанка.
type ChunkStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *logging.Logger
}

// NewChunkStore открывает хранилище в dataPath/world
func NewChunkStore(dataPath string) (*ChunkStore, error) {
	dbPath := filepath.Join(dataPath, "world")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB
	return openChunkStore(opts, dbPath)
}

// NewInMemoryChunkStore создаёт хранилище без диска, для тестов и временных миров
func NewInMemoryChunkStore() (*ChunkStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openChunkStore(opts, "")
}

func openChunkStore(opts badger.Options, dbPath string) (*ChunkStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &ChunkStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
		logger:  logging.GetStorageLogger(),
	}, nil
}

// Close закрывает хранилище
func (s *ChunkStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false

	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.logger.Warn("Ошибка закрытия zstd: %v", err)
	}
	return s.db.Close()
}

func regionPrefix(r vec.RegionPos) string {
	return fmt.Sprintf("region:%d:%d:chunk:", r.X, r.Z)
}

func chunkKey(pos vec.ChunkPos) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", regionPrefix(pos.Region()), pos.X, pos.Z))
}

// SaveChunk сохраняет чанк целиком. Пустой чанк удаляет запись.
func (s *ChunkStore) SaveChunk(pos vec.ChunkPos, c *world.Chunk) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return ErrNotReady
	}

	key := chunkKey(pos)
	if c == nil || c.IsEmpty() {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
	}

	value := make([]byte, 1, 1+c.EncodedSize()/4)
	value[0] = chunkFormatV1
	value = s.encoder.EncodeAll(c.Encode(), value)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения чанка %s в BadgerDB: %w", pos, err)
	}
	return nil
}

// LoadChunk возвращает сохранённый чанк. Отсутствие записи и повреждённые
// данные дают false; повреждение пишется в лог.
func (s *ChunkStore) LoadChunk(pos vec.ChunkPos) (*world.Chunk, bool) {
	c, err := s.ReadChunk(pos)
	if err != nil {
		s.logger.Error("Не удалось загрузить чанк %s: %v", pos, err)
		return nil, false
	}
	return c, c != nil
}

// ReadChunk как LoadChunk, но возвращает ошибку. (nil, nil) - чанк не сохранён.
func (s *ChunkStore) ReadChunk(pos vec.ChunkPos) (*world.Chunk, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, ErrNotReady
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(pos))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	if len(data) == 0 || data[0] != chunkFormatV1 {
		return nil, fmt.Errorf("неизвестный формат чанка %s", pos)
	}
	raw, err := s.decoder.DecodeAll(data[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки чанка %s: %w", pos, err)
	}

	r := wire.NewReader(raw)
	c, err := world.DecodeChunk(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования чанка %s: %w", pos, err)
	}
	if r.Available() != 0 {
		return nil, fmt.Errorf("лишние %d байт в чанке %s", r.Available(), pos)
	}
	return c, nil
}

// RegionChunks перечисляет сохранённые чанки региона
func (s *ChunkStore) RegionChunks(region vec.RegionPos) ([]vec.ChunkPos, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, ErrNotReady
	}

	prefix := regionPrefix(region)
	var result []vec.ChunkPos
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var pos vec.ChunkPos
			key := string(it.Item().Key()[len(prefix):])
			if _, err := fmt.Sscanf(key, "%d:%d", &pos.X, &pos.Z); err != nil {
				s.logger.Warn("Ошибка парсинга ключа '%s': %v", key, err)
				continue
			}
			result = append(result, pos)
		}
		return nil
	})
	return result, err
}
