// Package protocol описывает пакеты и их двоичную упаковку:
// [u16 тип][необязательный u8 заголовок размера][данные].
package protocol

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

// ClientID - непрозрачный идентификатор соединения на сервере
type ClientID uuid.UUID

// NewClientID выдаёт новый уникальный идентификатор
func NewClientID() ClientID {
	return ClientID(uuid.New())
}

func (id ClientID) String() string {
	return uuid.UUID(id).String()
}

// DirectionKind - кто отправляет и кто получает пакет
type DirectionKind uint8

const (
	KindFromClient DirectionKind = iota
	KindFromServer
	KindToClient
	KindToServer
)

// Direction - направление пакета. Client заполнен для KindFromClient и KindToClient.
type Direction struct {
	Kind   DirectionKind
	Client ClientID
}

func FromClient(id ClientID) Direction { return Direction{Kind: KindFromClient, Client: id} }
func FromServer() Direction            { return Direction{Kind: KindFromServer} }
func ToClient(id ClientID) Direction   { return Direction{Kind: KindToClient, Client: id} }
func ToServer() Direction              { return Direction{Kind: KindToServer} }

func (d Direction) String() string {
	switch d.Kind {
	case KindFromClient:
		return fmt.Sprintf("from-client(%s)", d.Client)
	case KindFromServer:
		return "from-server"
	case KindToClient:
		return fmt.Sprintf("to-client(%s)", d.Client)
	case KindToServer:
		return "to-server"
	}
	return fmt.Sprintf("direction(%d)", d.Kind)
}

// Packet - пакет вместе с направлением
type Packet struct {
	Direction Direction
	Data      PacketData
}

// Type возвращает тип данных пакета
func (p Packet) Type() PacketType {
	return p.Data.Type()
}

// PacketData - данные пакета одного типа из каталога
type PacketData interface {
	Type() PacketType
	// SizeHeader возвращает заголовок размера; false для типов фиксированного размера
	SizeHeader() (uint8, bool)
	// AppendPayload дописывает данные без типа и заголовка
	AppendPayload(dst []byte) []byte
}

// Ping не несёт данных
type Ping struct{}

func (Ping) Type() PacketType                { return TypePing }
func (Ping) SizeHeader() (uint8, bool)       { return 0, false }
func (Ping) AppendPayload(dst []byte) []byte { return dst }

// BlockUpdate сообщает о смене блока в позиции
type BlockUpdate struct {
	Pos   vec.BlockPos
	Block block.BlockID
}

func (BlockUpdate) Type() PacketType          { return TypeBlockUpdate }
func (BlockUpdate) SizeHeader() (uint8, bool) { return 0, false }

func (p BlockUpdate) AppendPayload(dst []byte) []byte {
	dst = p.Pos.AppendWire(dst)
	return append(dst, byte(p.Block), byte(p.Block>>8))
}

// ChunkData передаёт колонну целиком. Заголовок размера - число сабчанков.
type ChunkData struct {
	Pos   vec.ChunkPos
	Chunk *world.Chunk
}

func (ChunkData) Type() PacketType { return TypeChunkData }

func (p ChunkData) SizeHeader() (uint8, bool) {
	return p.chunk().SizeInUnits(), true
}

func (p ChunkData) AppendPayload(dst []byte) []byte {
	dst = p.Pos.AppendWire(dst)
	return p.chunk().AppendEncoded(dst)
}

func (p ChunkData) chunk() *world.Chunk {
	if p.Chunk == nil {
		return world.EmptyChunk()
	}
	return p.Chunk
}

// ChunkRequest - запрос клиента на чанк
type ChunkRequest struct {
	Pos vec.ChunkPos
}

func (ChunkRequest) Type() PacketType                  { return TypeChunkRequest }
func (ChunkRequest) SizeHeader() (uint8, bool)         { return 0, false }
func (p ChunkRequest) AppendPayload(dst []byte) []byte { return p.Pos.AppendWire(dst) }
