package network

import (
	"context"
	"fmt"
	"net"

	"github.com/xtaci/kcp-go/v5"
)

// listen открывает слушатель выбранного транспорта
func listen(t Transport, addr string) (net.Listener, error) {
	switch t {
	case TransportTCP:
		return net.Listen("tcp", addr)
	case TransportKCP:
		l, err := kcp.ListenWithOptions(addr, nil, 10, 3)
		if err != nil {
			return nil, err
		}
		return kcpListener{l}, nil
	case TransportWS:
		return listenWS(addr)
	default:
		return nil, fmt.Errorf("unsupported transport: %q", t)
	}
}

// dial устанавливает одно соединение без повторов
func dial(ctx context.Context, t Transport, addr string) (net.Conn, error) {
	switch t {
	case TransportTCP:
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	case TransportKCP:
		s, err := kcp.DialWithOptions(addr, nil, 10, 3)
		if err != nil {
			return nil, err
		}
		tuneKCP(s)
		return s, nil
	case TransportWS:
		return dialWS(ctx, addr)
	default:
		return nil, fmt.Errorf("unsupported transport: %q", t)
	}
}

// kcpListener настраивает каждую принятую KCP-сессию
type kcpListener struct {
	*kcp.Listener
}

func (l kcpListener) Accept() (net.Conn, error) {
	s, err := l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	tuneKCP(s)
	return s, nil
}

func tuneKCP(s *kcp.UDPSession) {
	s.SetStreamMode(true)
	s.SetNoDelay(1, 20, 2, 1) // Агрессивные настройки для игр
	s.SetWindowSize(512, 512)
	s.SetMtu(1400)
}
