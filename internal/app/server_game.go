package app

import (
	"context"
	"time"

	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/protocol"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

// ServerGame - игровой цикл сервера. Единственный владелец серверного кеша чанков.
type ServerGame struct {
	transport ServerTransport
	storage   *world.ServerChunkStorage
	saver     world.ChunkSaver
	registry  *block.Registry
	logger    *logging.Logger

	tick       time.Duration
	flushEvery time.Duration
}

// NewServerGame создаёт цикл. saver может быть nil: изменения тогда не сохраняются.
func NewServerGame(transport ServerTransport, storage *world.ServerChunkStorage, saver world.ChunkSaver, tickRate int, flushEvery time.Duration) *ServerGame {
	if tickRate <= 0 {
		tickRate = 20
	}
	return &ServerGame{
		transport:  transport,
		storage:    storage,
		saver:      saver,
		registry:   block.Default(),
		logger:     logging.GetGameLogger(),
		tick:       time.Second / time.Duration(tickRate),
		flushEvery: flushEvery,
	}
}

// Run крутит цикл до отмены ctx или закрытия входящей очереди
func (g *ServerGame) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	var flush <-chan time.Time
	if g.saver != nil && g.flushEvery > 0 {
		t := time.NewTicker(g.flushEvery)
		defer t.Stop()
		flush = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-flush:
			g.Flush()
		case <-ticker.C:
			if !g.Tick(ctx) {
				g.logger.Info("Входящая очередь закрыта, игровой цикл остановлен")
				return nil
			}
		}
	}
}

// Tick обрабатывает все уже полученные пакеты. false - входящая очередь закрыта.
func (g *ServerGame) Tick(ctx context.Context) bool {
	for {
		select {
		case p, ok := <-g.transport.Inbound():
			if !ok {
				return false
			}
			g.handle(ctx, p)
		default:
			return true
		}
	}
}

func (g *ServerGame) handle(ctx context.Context, p protocol.Packet) {
	from := p.Direction.Client

	switch data := p.Data.(type) {
	case protocol.Ping:
		g.send(ctx, protocol.Packet{Direction: protocol.ToClient(from), Data: protocol.Ping{}})

	case protocol.ChunkRequest:
		c := g.storage.Resolve(ctx, data.Pos)
		if c.IsPlaceholder() {
			// Генерация не удалась: без ответа клиент повторит запрос позже
			g.logger.Warn("Чанк %s для клиента %s недоступен, ответ не отправлен", data.Pos, from)
			return
		}
		// Кадр кодирует горутина сессии, а кеш меняет этот цикл: отправляем копию
		g.send(ctx, protocol.Packet{
			Direction: protocol.ToClient(from),
			Data:      protocol.ChunkData{Pos: data.Pos, Chunk: c.Clone()},
		})

	case protocol.BlockUpdate:
		if err := data.Pos.Validate(); err != nil {
			g.logger.Warn("Клиент %s: некорректная позиция блока: %v", from, err)
			return
		}
		// Неизвестный блок заменяется воздухом
		id := g.registry.Resolve(data.Block).ID()
		if !g.storage.SetBlock(ctx, data.Pos, id) {
			g.logger.Debug("Клиент %s: блок %s вне мира", from, data.Pos)
			return
		}
		for _, client := range g.transport.Clients() {
			g.send(ctx, protocol.Packet{
				Direction: protocol.ToClient(client),
				Data:      protocol.BlockUpdate{Pos: data.Pos, Block: id},
			})
		}

	default:
		g.logger.Warn("Клиент %s прислал неожиданный пакет %s", from, p.Type())
	}
}

func (g *ServerGame) send(ctx context.Context, p protocol.Packet) {
	select {
	case g.transport.Outbound() <- p:
	case <-ctx.Done():
	}
}

// Flush сохраняет изменённые чанки
func (g *ServerGame) Flush() {
	if g.saver == nil {
		return
	}
	if err := g.storage.Flush(g.saver); err != nil {
		g.logger.Error("Не все чанки сохранены: %v", err)
	}
}
