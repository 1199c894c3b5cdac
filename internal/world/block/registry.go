package block

import (
	"sync"

	"github.com/annel0/voxelnet/internal/logging"
)

// Registry интернирует блоки: один экземпляр на каждый BlockID.
// Экземпляры неизменяемы и разделяются по указателю.
type Registry struct {
	mu     sync.RWMutex
	blocks map[BlockID]Block
	logger *logging.Logger
}

// NewRegistry создаёт реестр. Air регистрируется сразу, остальное лениво.
func NewRegistry(logger *logging.Logger) *Registry {
	r := &Registry{
		blocks: make(map[BlockID]Block, len(variants)),
		logger: logger,
	}
	r.blocks[AirID] = airInstance
	return r
}

// Resolve возвращает канонический экземпляр для id.
// Неизвестный тип или состояние заменяется на Air с предупреждением в лог.
func (r *Registry) Resolve(id BlockID) Block {
	r.mu.RLock()
	b, ok := r.blocks[id]
	r.mu.RUnlock()
	if ok {
		return b
	}

	b, ok = construct(id)
	if !ok {
		r.logger.Warn("Неизвестный блок %s, используется Air", id)
		return airInstance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Проверяем еще раз: другая горутина могла успеть вставить свой экземпляр
	if existing, exists := r.blocks[id]; exists {
		return existing
	}
	r.blocks[id] = b
	return b
}

// IsValid сообщает, описывает ли id существующий вариант блока
func (r *Registry) IsValid(id BlockID) bool {
	r.mu.RLock()
	_, ok := r.blocks[id]
	r.mu.RUnlock()
	if ok {
		return true
	}
	_, ok = construct(id)
	return ok
}

// Len возвращает количество уже интернированных блоков
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

var (
	defaultRegistry *Registry
	initOnce        sync.Once
)

// Init создаёт общий реестр процесса. Повторные вызовы ничего не делают.
func Init() {
	initOnce.Do(func() {
		defaultRegistry = NewRegistry(logging.GetWorldLogger())
	})
}

// Default возвращает общий реестр процесса, инициализируя его при необходимости
func Default() *Registry {
	Init()
	return defaultRegistry
}

// Resolve разрешает id через общий реестр
func Resolve(id BlockID) Block {
	return Default().Resolve(id)
}
