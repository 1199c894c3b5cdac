package network

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/protocol"
)

// Client - соединение клиента с сервером.
// Входящие пакеты помечены FromServer, исходящие должны иметь направление ToServer.
// Закрытие Outbound() отправляет остаток очереди и закрывает соединение.
type Client struct {
	session  *Session
	inbound  chan protocol.Packet
	outbound chan protocol.Packet
	quit     chan struct{}
	quitOnce sync.Once
	logger   *logging.Logger
}

// Dial подключается к серверу, повторяя попытки с экспоненциальной задержкой
func Dial(ctx context.Context, opts Options) (*Client, error) {
	opts = opts.withDefaults()
	logger := logging.GetNetworkLogger()

	var conn net.Conn
	attempt := func() error {
		dialCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()

		c, err := dial(dialCtx, opts.Transport, opts.Address)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), opts.DialRetries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Warn("Подключение к %s не удалось: %v, повтор через %s", opts.Address, err, wait)
	}
	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Address, err)
	}

	c := &Client{
		inbound:  make(chan protocol.Packet, opts.QueueSize),
		outbound: make(chan protocol.Packet, opts.QueueSize),
		quit:     make(chan struct{}),
		logger:   logger,
	}
	c.session = newSession(conn, sessionConfig{
		inboundDir:   protocol.FromServer(),
		outboundKind: protocol.KindToServer,
		inbound:      c.inbound,
		outbound:     c.outbound,
		quit:         c.quit,
		pollInterval: opts.PollInterval,
		writeTimeout: opts.WriteTimeout,
		logger:       logger,
	})
	c.session.start()

	// Цикл чтения - единственный отправитель во входящую очередь
	go func() {
		<-c.session.Done()
		close(c.inbound)
	}()

	logger.Info("Подключено к %s (%s)", opts.Address, opts.Transport)
	return c, nil
}

// Inbound возвращает пакеты от сервера. Канал закрывается вместе с сессией.
func (c *Client) Inbound() <-chan protocol.Packet {
	return c.inbound
}

// Outbound возвращает очередь на отправку. Её закрытие завершает сессию.
func (c *Client) Outbound() chan<- protocol.Packet {
	return c.outbound
}

// Send ставит пакет в очередь на отправку серверу.
// Нельзя вызывать после закрытия Outbound().
func (c *Client) Send(ctx context.Context, data protocol.PacketData) error {
	select {
	case <-c.session.Done():
		return ErrSessionClosed
	default:
	}

	select {
	case c.outbound <- protocol.Packet{Direction: protocol.ToServer(), Data: data}:
		return nil
	case <-c.session.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done закрывается после завершения сессии
func (c *Client) Done() <-chan struct{} {
	return c.session.Done()
}

// Wait блокируется до завершения сессии
func (c *Client) Wait() {
	<-c.session.Done()
}

// State возвращает состояние сессии
func (c *Client) State() State {
	return c.session.State()
}

// Close прерывает соединение без отправки очереди
func (c *Client) Close() {
	c.quitOnce.Do(func() { close(c.quit) })
	c.session.terminate(reasonAborted)
	c.Wait()
}
