package app

import "github.com/annel0/voxelnet/internal/protocol"

// ServerTransport - то, что игровой цикл сервера использует от сети
type ServerTransport interface {
	Inbound() <-chan protocol.Packet
	Outbound() chan<- protocol.Packet
	Clients() []protocol.ClientID
}

// ClientTransport - то, что игровой цикл клиента использует от сети
type ClientTransport interface {
	Inbound() <-chan protocol.Packet
	Outbound() chan<- protocol.Packet
}
