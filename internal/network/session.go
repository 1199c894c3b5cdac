package network

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/protocol"
)

// State - состояние сессии
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// ErrSessionClosed возвращается при обращении к закрытой сессии
var ErrSessionClosed = errors.New("session closed")

const (
	readChunkSize   = 32 * 1024
	writeBufferSize = 64 * 1024
)

// sessionConfig связывает сессию с владельцем (клиентом или сервером)
type sessionConfig struct {
	// inboundDir - направление, которым помечаются входящие пакеты
	inboundDir protocol.Direction
	// outboundKind - единственное допустимое направление исходящих пакетов
	outboundKind protocol.DirectionKind

	inbound  chan<- protocol.Packet
	outbound <-chan protocol.Packet
	// quit закрывается владельцем при остановке: доставка входящих невозможна
	quit <-chan struct{}

	pollInterval time.Duration
	writeTimeout time.Duration
	logger       *logging.Logger
}

// Session обслуживает одно соединение: цикл чтения разбирает кадры в пакеты,
// цикл записи опустошает исходящую очередь. Единственный сигнал штатного
// завершения - закрытие исходящей очереди.
type Session struct {
	conn net.Conn
	peer string
	cfg  sessionConfig

	state     atomic.Int32
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newSession(conn net.Conn, cfg sessionConfig) *Session {
	return &Session{
		conn:    conn,
		peer:    conn.RemoteAddr().String(),
		cfg:     cfg,
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start переводит сессию в StateOpen и запускает циклы чтения и записи
func (s *Session) start() {
	s.state.Store(int32(StateOpen))
	activeSessions.Inc()

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()

	go func() {
		s.wg.Wait()
		s.state.Store(int32(StateClosed))
		activeSessions.Dec()
		close(s.done)
	}()
}

// State возвращает текущее состояние
func (s *Session) State() State {
	return State(s.state.Load())
}

// RemoteAddr возвращает адрес собеседника
func (s *Session) RemoteAddr() string {
	return s.peer
}

// Done закрывается, когда оба цикла завершены и сокет закрыт
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// terminate закрывает сокет в обе стороны и останавливает циклы. Идемпотентно.
func (s *Session) terminate(reason string) {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))
		close(s.closing)
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.cfg.logger.Debug("Ошибка закрытия соединения %s: %v", s.peer, err)
		}
		sessionTerminations.WithLabelValues(reason).Inc()
		s.cfg.logger.Info("Сессия %s завершена: %s", s.peer, reason)
	})
}

func (s *Session) isClosing() bool {
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readLoop читает сокет с коротким дедлайном и разбирает накопленные байты.
// Неполный кадр остаётся в буфере до следующего чтения.
func (s *Session) readLoop() {
	defer s.wg.Done()

	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for {
		if s.isClosing() {
			return
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.pollInterval)); err != nil {
			s.fail(reasonIOError, err)
			return
		}
		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			var ok bool
			if buf, ok = s.decodeFrames(buf); !ok {
				return
			}
		}

		if err != nil {
			if isTimeout(err) {
				continue
			}
			if s.isClosing() {
				return
			}
			if errors.Is(err, io.EOF) {
				s.terminate(reasonPeerClosed)
				return
			}
			s.fail(reasonIOError, err)
			return
		}
	}
}

// decodeFrames извлекает все полные кадры и возвращает остаток буфера.
// false - сессия завершена.
func (s *Session) decodeFrames(buf []byte) ([]byte, bool) {
	off := 0
	for {
		data, used, err := protocol.TryDecode(buf[off:])
		if errors.Is(err, protocol.ErrIncomplete) {
			break
		}
		if err != nil {
			s.cfg.logger.LogProtocolError(s.peer, err, buf[off:])
			s.terminate(reasonProtocol)
			return nil, false
		}
		observePacket(dirIn, data.Type(), used)
		off += used

		if !s.push(protocol.Packet{Direction: s.cfg.inboundDir, Data: data}) {
			return nil, false
		}
	}

	// Сдвигаем неполный кадр в начало буфера
	rest := copy(buf, buf[off:])
	return buf[:rest], true
}

// push доставляет пакет владельцу. false, если владелец остановлен.
func (s *Session) push(p protocol.Packet) bool {
	select {
	case s.cfg.inbound <- p:
		return true
	case <-s.cfg.quit:
		s.terminate(reasonOwnerGone)
		return false
	case <-s.closing:
		return false
	}
}

// writeLoop ждёт пакет, забирает всё, что уже лежит в очереди, и сбрасывает
// буфер один раз на каждую такую порцию.
func (s *Session) writeLoop() {
	defer s.wg.Done()

	w := bufio.NewWriterSize(s.conn, writeBufferSize)
	for {
		select {
		case <-s.closing:
			return
		case p, ok := <-s.cfg.outbound:
			if !ok {
				s.finish(w)
				return
			}
			// Дедлайн покрывает всю порцию: крупный кадр пишется в сокет мимо буфера
			if err := s.armWrite(); err != nil {
				s.fail(reasonIOError, err)
				return
			}
			if !s.write(w, p) {
				return
			}
		}

		open := s.drain(w)
		if err := s.flush(w); err != nil {
			if !s.isClosing() {
				s.fail(reasonIOError, err)
			}
			return
		}
		if !open {
			s.terminate(reasonOutboundClosed)
			return
		}
	}
}

// drain пишет пакеты, уже находящиеся в очереди. false - очередь закрыта.
func (s *Session) drain(w *bufio.Writer) bool {
	for {
		select {
		case p, ok := <-s.cfg.outbound:
			if !ok {
				return false
			}
			if !s.write(w, p) {
				return true
			}
		default:
			return true
		}
	}
}

func (s *Session) write(w *bufio.Writer, p protocol.Packet) bool {
	if p.Direction.Kind != s.cfg.outboundKind {
		panic(fmt.Sprintf("session %s: outgoing packet %s has direction %s", s.peer, p.Type(), p.Direction))
	}
	n, err := protocol.WriteFrame(w, p.Data)
	if err != nil {
		if !s.isClosing() {
			s.fail(reasonIOError, err)
		}
		return false
	}
	observePacket(dirOut, p.Type(), n)
	return true
}

func (s *Session) armWrite() error {
	return s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout))
}

func (s *Session) flush(w *bufio.Writer) error {
	if w.Buffered() == 0 {
		return nil
	}
	return w.Flush()
}

// finish сбрасывает остаток буфера и закрывает соединение
func (s *Session) finish(w *bufio.Writer) {
	err := s.armWrite()
	if err == nil {
		err = s.flush(w)
	}
	if err != nil && !s.isClosing() {
		s.cfg.logger.Warn("Не удалось отправить остаток данных %s: %v", s.peer, err)
	}
	s.terminate(reasonOutboundClosed)
}

func (s *Session) fail(reason string, err error) {
	s.cfg.logger.Error("Ошибка соединения %s: %v", s.peer, err)
	s.terminate(reason)
}
