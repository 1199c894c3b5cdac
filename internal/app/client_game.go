package app

import (
	"context"
	"time"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/protocol"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world"
)

// ClientGame - игровой цикл клиента: держит загруженной область вокруг центра
// и применяет пакеты сервера к кешу.
type ClientGame struct {
	transport  ClientTransport
	storage    *world.ClientChunkStorage
	requests   chan vec.ChunkPos
	center     vec.ChunkPos
	viewRadius int32
	logger     *logging.Logger
}

// NewClientGame создаёт цикл клиента с радиусом видимости в чанках
func NewClientGame(transport ClientTransport, viewRadius int) *ClientGame {
	side := 2*viewRadius + 1
	requests := make(chan vec.ChunkPos, side*side)
	return &ClientGame{
		transport:  transport,
		storage:    world.NewClientChunkStorage(requests),
		requests:   requests,
		viewRadius: int32(viewRadius),
		logger:     logging.GetGameLogger(),
	}
}

// Storage возвращает кеш клиента
func (g *ClientGame) Storage() *world.ClientChunkStorage {
	return g.storage
}

// SetCenter перемещает центр области видимости
func (g *ClientGame) SetCenter(pos vec.ChunkPos) {
	g.center = pos
}

func (g *ClientGame) forEachVisible(fn func(pos vec.ChunkPos)) {
	for dx := -g.viewRadius; dx <= g.viewRadius; dx++ {
		for dz := -g.viewRadius; dz <= g.viewRadius; dz++ {
			fn(vec.ChunkPos{X: g.center.X + dx, Z: g.center.Z + dz})
		}
	}
}

// Complete сообщает, что вся область видимости загружена
func (g *ClientGame) Complete() bool {
	complete := true
	g.forEachVisible(func(pos vec.ChunkPos) {
		if !g.storage.IsCached(pos) {
			complete = false
		}
	})
	return complete
}

// Tick применяет полученные пакеты, запрашивает недостающие чанки и
// отправляет запросы серверу. false - соединение закрыто.
func (g *ClientGame) Tick(ctx context.Context) bool {
	if !g.drainInbound() {
		return false
	}

	g.forEachVisible(func(pos vec.ChunkPos) {
		g.storage.GetChunk(pos)
	})

	for {
		select {
		case pos := <-g.requests:
			select {
			case g.transport.Outbound() <- protocol.Packet{Direction: protocol.ToServer(), Data: protocol.ChunkRequest{Pos: pos}}:
			case <-ctx.Done():
				g.storage.CancelRequest(pos)
				return true
			}
		default:
			return true
		}
	}
}

func (g *ClientGame) drainInbound() bool {
	for {
		select {
		case p, ok := <-g.transport.Inbound():
			if !ok {
				return false
			}
			g.handle(p)
		default:
			return true
		}
	}
}

func (g *ClientGame) handle(p protocol.Packet) {
	switch data := p.Data.(type) {
	case protocol.ChunkData:
		g.storage.ReceiveChunk(data.Pos, data.Chunk)
	case protocol.BlockUpdate:
		g.storage.ApplyBlockUpdate(data.Pos, data.Block)
	case protocol.Ping:
		g.logger.Debug("Ping от сервера")
	default:
		g.logger.Warn("Неожиданный пакет от сервера: %s", p.Type())
	}
}

// Run крутит цикл до отмены ctx или закрытия соединения
func (g *ClientGame) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !g.Tick(ctx) {
				return nil
			}
		}
	}
}
