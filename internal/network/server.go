package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/protocol"
)

// peer - сессия клиента и её исходящая очередь
type peer struct {
	session *Session
	queue   chan protocol.Packet
}

// Server принимает соединения и выдаёт каждому ClientID и отдельную сессию.
// Входящие пакеты всех сессий сливаются в Inbound(), исходящие из Outbound()
// раздаются по ClientID назначения.
type Server struct {
	opts     Options
	listener net.Listener
	logger   *logging.Logger

	inbound  chan protocol.Packet
	outbound chan protocol.Packet
	quit     chan struct{}
	quitOnce sync.Once

	shutdownOnce sync.Once

	mu             sync.RWMutex
	peers          map[protocol.ClientID]*peer
	dispatchClosed bool

	sessions     sync.WaitGroup
	acceptDone   chan struct{}
	dispatchDone chan struct{}
}

// Listen открывает слушатель и запускает циклы приёма и раздачи
func Listen(opts Options) (*Server, error) {
	opts = opts.withDefaults()

	l, err := listen(opts.Transport, opts.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.Address, err)
	}

	s := &Server{
		opts:         opts,
		listener:     l,
		logger:       logging.GetNetworkLogger(),
		inbound:      make(chan protocol.Packet, opts.QueueSize),
		outbound:     make(chan protocol.Packet, opts.QueueSize),
		quit:         make(chan struct{}),
		peers:        make(map[protocol.ClientID]*peer),
		acceptDone:   make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}

	go s.acceptLoop()
	go s.dispatchLoop()

	s.logger.Info("Сервер слушает %s (%s)", l.Addr(), opts.Transport)
	return s, nil
}

// Addr возвращает фактический адрес слушателя
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Inbound возвращает пакеты всех клиентов, помеченные FromClient(id).
// Канал закрывается после Shutdown.
func (s *Server) Inbound() <-chan protocol.Packet {
	return s.inbound
}

// Outbound принимает пакеты с направлением ToClient(id).
// Закрытие канала отправляет остатки очередей и закрывает все соединения.
func (s *Server) Outbound() chan<- protocol.Packet {
	return s.outbound
}

// Clients возвращает снимок подключённых клиентов
func (s *Server) Clients() []protocol.ClientID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]protocol.ClientID, 0, len(s.peers))
	for id := range s.peers {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) acceptLoop() {
	defer close(s.acceptDone)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.stopping() {
				return
			}
			s.logger.Error("Ошибка принятия соединения: %v", err)
			time.Sleep(s.opts.PollInterval)
			continue
		}
		s.register(conn)
	}
}

func (s *Server) register(conn net.Conn) {
	id := protocol.NewClientID()
	queue := make(chan protocol.Packet, s.opts.QueueSize)

	session := newSession(conn, sessionConfig{
		inboundDir:   protocol.FromClient(id),
		outboundKind: protocol.KindToClient,
		inbound:      s.inbound,
		outbound:     queue,
		quit:         s.quit,
		pollInterval: s.opts.PollInterval,
		writeTimeout: s.opts.WriteTimeout,
		logger:       s.logger,
	})

	s.mu.Lock()
	s.peers[id] = &peer{session: session, queue: queue}
	if s.dispatchClosed {
		// Раздача уже остановлена: сессия сразу завершится
		close(queue)
	}
	s.mu.Unlock()

	s.sessions.Add(1)
	session.start()
	s.logger.Info("Клиент %s подключился с %s", id, session.RemoteAddr())

	go func() {
		defer s.sessions.Done()
		<-session.Done()

		s.mu.Lock()
		delete(s.peers, id)
		s.mu.Unlock()
		s.logger.Info("Клиент %s отключился", id)
	}()
}

// dispatchLoop - единственный отправитель в очереди сессий
func (s *Server) dispatchLoop() {
	defer close(s.dispatchDone)

	for p := range s.outbound {
		if p.Direction.Kind != protocol.KindToClient {
			panic(fmt.Sprintf("server: outgoing packet %s has direction %s", p.Type(), p.Direction))
		}

		s.mu.RLock()
		dst, ok := s.peers[p.Direction.Client]
		s.mu.RUnlock()
		if !ok {
			s.logger.Warn("Клиент %s не найден, пакет %s отброшен", p.Direction.Client, p.Type())
			dispatchDropped.Inc()
			continue
		}

		select {
		case dst.queue <- p:
		case <-dst.session.Done():
			s.logger.Warn("Клиент %s отключился, пакет %s отброшен", p.Direction.Client, p.Type())
			dispatchDropped.Inc()
		}
	}

	// Исходящая очередь закрыта: каждая сессия дописывает остаток и закрывается
	s.mu.Lock()
	s.dispatchClosed = true
	for _, p := range s.peers {
		close(p.queue)
	}
	s.mu.Unlock()
}

func (s *Server) stopping() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// Shutdown закрывает слушатель и ждёт, пока сессии отправят свои очереди.
// Приложение должно закрыть Outbound() заранее. По истечении ctx оставшиеся
// соединения прерываются.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("Ошибка закрытия слушателя: %v", err)
	}
	<-s.acceptDone

	drained := make(chan struct{})
	go func() {
		<-s.dispatchDone
		s.sessions.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
		s.logger.Warn("Сессии не завершились вовремя, соединения прерываются")
		s.abort()
		s.sessions.Wait()
	}

	s.quitOnce.Do(func() { close(s.quit) })
	// Все циклы чтения завершены, отправителей во входящую очередь больше нет
	s.shutdownOnce.Do(func() { close(s.inbound) })
	s.logger.Info("Сервер остановлен")
	return err
}

func (s *Server) abort() {
	s.quitOnce.Do(func() { close(s.quit) })

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.peers {
		p.session.terminate(reasonAborted)
	}
}
