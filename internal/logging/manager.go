package logging

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Component - подсистема со своим лог-файлом
type Component string

const (
	ComponentNetwork Component = "network"
	ComponentStorage Component = "storage"
	ComponentWorld   Component = "world"
	ComponentGame    Component = "game"
)

// LoggerManager раздаёт логгеры компонентов и хранит их уровни
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[Component]*Logger
	levels  map[Component]LogLevel
}

var manager = &LoggerManager{
	loggers: make(map[Component]*Logger),
	levels:  make(map[Component]LogLevel),
}

// Manager возвращает общий менеджер процесса
func Manager() *LoggerManager {
	return manager
}

// Get возвращает логгер компонента. Если файл создать нельзя, логгер пишет
// только в консоль, ошибка не возвращается.
func (m *LoggerManager) Get(c Component) *Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loggers[c]; ok {
		return l
	}

	l, err := NewLogger(string(c))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %s: %v, файловый вывод отключён\n", c, err)
		l = NewWriterLogger(string(c), os.Stdout, INFO)
	}
	if level, ok := m.levels[c]; ok {
		l.SetLevels(level, TRACE)
	}
	m.loggers[c] = l
	return l
}

// Configure задаёт уровни консоли по именам компонентов ("network": "debug").
// Применяется к уже созданным и будущим логгерам.
func (m *LoggerManager) Configure(levels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, value := range levels {
		c, level := Component(name), ParseLevel(value)
		m.levels[c] = level
		if l, ok := m.loggers[c]; ok {
			l.SetLevels(level, TRACE)
		}
	}
}

// CloseAll закрывает файлы всех логгеров. Последующий Get создаст новые.
func (m *LoggerManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for c, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	clear(m.loggers)
	return errors.Join(errs...)
}

func GetNetworkLogger() *Logger { return manager.Get(ComponentNetwork) }
func GetStorageLogger() *Logger { return manager.Get(ComponentStorage) }
func GetWorldLogger() *Logger   { return manager.Get(ComponentWorld) }
func GetGameLogger() *Logger    { return manager.Get(ComponentGame) }
