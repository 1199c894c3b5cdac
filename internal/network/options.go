package network

import "time"

// Transport - тип транспорта соединения
type Transport string

const (
	TransportTCP Transport = "tcp"
	TransportKCP Transport = "kcp" // надёжный UDP
	TransportWS  Transport = "ws"  // бинарные сообщения WebSocket, путь WSPath
)

// DefaultAddress - адрес сервера в эталонной конфигурации
const DefaultAddress = "127.0.0.1:19354"

// Options настраивает клиент и сервер
type Options struct {
	Address   string
	Transport Transport

	// QueueSize - ёмкость очередей входящих и исходящих пакетов
	QueueSize int
	// PollInterval - сколько ждать данных в одном цикле чтения
	PollInterval time.Duration
	// WriteTimeout ограничивает сброс буфера в сокет
	WriteTimeout time.Duration

	// Только для клиента
	DialTimeout time.Duration
	DialRetries uint64
}

// DefaultOptions возвращает настройки по умолчанию
func DefaultOptions() Options {
	return Options{
		Address:      DefaultAddress,
		Transport:    TransportTCP,
		QueueSize:    256,
		PollInterval: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		DialTimeout:  5 * time.Second,
		DialRetries:  5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Address == "" {
		o.Address = d.Address
	}
	if o.Transport == "" {
		o.Transport = d.Transport
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = d.WriteTimeout
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = d.DialTimeout
	}
	return o
}
