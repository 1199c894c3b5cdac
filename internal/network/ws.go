package network

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSPath - путь HTTP, на котором сервер принимает WebSocket-соединения
const WSPath = "/voxel"

// wsConn представляет WebSocket-соединение как поток байт.
// Каждый Write уходит одним бинарным сообщением, границы сообщений при чтении
// не важны: кадры протокола восстанавливаются из потока.
//
// Таймаут чтения gorilla/websocket портит соединение, поэтому сообщения читает
// отдельная горутина, а дедлайн чтения проверяется здесь.
type wsConn struct {
	ws *websocket.Conn

	messages chan []byte
	readErr  error // записывается до закрытия messages
	pending  []byte

	closed    chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	readDeadline time.Time
}

func newWSConn(ws *websocket.Conn) *wsConn {
	c := &wsConn{ws: ws, messages: make(chan []byte, 16), closed: make(chan struct{})}
	go c.pump()
	return c
}

func (c *wsConn) pump() {
	defer close(c.messages)
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = io.EOF
			}
			c.readErr = err
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		select {
		case c.messages <- data:
		case <-c.closed:
			c.readErr = net.ErrClosed
			return
		}
	}
}

// wsTimeout - ошибка истёкшего дедлайна чтения
type wsTimeout struct{}

func (wsTimeout) Error() string   { return "websocket read timeout" }
func (wsTimeout) Timeout() bool   { return true }
func (wsTimeout) Temporary() bool { return true }

func (c *wsConn) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		c.mu.Lock()
		deadline := c.readDeadline
		c.mu.Unlock()

		var expired <-chan time.Time
		if !deadline.IsZero() {
			timer := time.NewTimer(time.Until(deadline))
			defer timer.Stop()
			expired = timer.C
		}

		select {
		case data, ok := <-c.messages:
			if !ok {
				return 0, c.readErr
			}
			c.pending = data
		case <-expired:
			return 0, wsTimeout{}
		}
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		deadline := time.Now().Add(time.Second)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.ws.Close()
	})
	return err
}

func (c *wsConn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *wsConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	c.readDeadline = t
	c.mu.Unlock()
	return nil
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}

// wsListener принимает WebSocket-соединения через HTTP-сервер
type wsListener struct {
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	conns    chan net.Conn

	done      chan struct{}
	closeOnce sync.Once
}

func listenWS(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	l := &wsListener{
		ln: ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(chan net.Conn),
		done:  make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(WSPath, l.handle)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Close()
		}
	}()
	return l, nil
}

func (l *wsListener) handle(rw http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	conn := newWSConn(ws)
	select {
	case l.conns <- conn:
	case <-l.done:
		conn.Close()
	}
}

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		// Соединения уже перехвачены у HTTP-сервера, Close их не трогает
		err = l.srv.Close()
	})
	return err
}

func (l *wsListener) Addr() net.Addr {
	return l.ln.Addr()
}

func dialWS(ctx context.Context, addr string) (net.Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	ws, resp, err := d.DialContext(ctx, "ws://"+addr+WSPath, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return newWSConn(ws), nil
}
