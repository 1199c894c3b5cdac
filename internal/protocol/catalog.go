package protocol

import (
	"fmt"

	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/wire"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
)

// PacketType - u16 little-endian в начале каждого кадра
type PacketType uint16

const (
	TypePing         PacketType = 0
	TypeBlockUpdate  PacketType = 1
	TypeChunkData    PacketType = 2
	TypeChunkRequest PacketType = 3
)

const (
	// TypeHeaderSize - размер поля типа
	TypeHeaderSize = 2
	// SizeHeaderSize - размер заголовка размера для типов переменной длины
	SizeHeaderSize = 1
)

// catalogEntry описывает один тип пакета.
// Новый тип добавляется одной записью с правилом размера.
type catalogEntry struct {
	name        string
	sizeCanVary bool
	// maxHeader - наибольший допустимый заголовок размера
	maxHeader uint8
	// size возвращает длину данных по заголовку размера (0 для фиксированных типов)
	size   func(header uint8) int
	decode func(r *wire.Reader, header uint8) (PacketData, error)
}

func fixed(n int) func(uint8) int {
	return func(uint8) int { return n }
}

var catalog = map[PacketType]catalogEntry{
	TypePing: {
		name:   "Ping",
		size:   fixed(0),
		decode: decodePing,
	},
	TypeBlockUpdate: {
		name:   "BlockUpdate",
		size:   fixed(vec.BlockPosWireSize + block.IDSize),
		decode: decodeBlockUpdate,
	},
	TypeChunkData: {
		name:        "ChunkData",
		sizeCanVary: true,
		maxHeader:   world.SubChunkSlots,
		size: func(units uint8) int {
			return vec.ChunkPosWireSize + world.ChunkWireSize(units)
		},
		decode: decodeChunkData,
	},
	TypeChunkRequest: {
		name:   "ChunkRequest",
		size:   fixed(vec.ChunkPosWireSize),
		decode: decodeChunkRequest,
	},
}

// MaxFrameSize - наибольший возможный кадр (ChunkData со всеми сабчанками)
var MaxFrameSize = TypeHeaderSize + SizeHeaderSize + catalog[TypeChunkData].size(world.SubChunkSlots)

// UnknownTypeError - тип пакета отсутствует в каталоге
type UnknownTypeError struct {
	Type PacketType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown packet type %d", uint16(e.Type))
}

// SizeHeaderError - заголовок размера вне допустимого диапазона
type SizeHeaderError struct {
	Type   PacketType
	Header uint8
	Max    uint8
}

func (e *SizeHeaderError) Error() string {
	return fmt.Sprintf("%s: size header %d exceeds %d", e.Type, e.Header, e.Max)
}

func (t PacketType) String() string {
	if e, ok := catalog[t]; ok {
		return e.name
	}
	return fmt.Sprintf("PacketType(%d)", uint16(t))
}

// Known сообщает, есть ли тип в каталоге
func (t PacketType) Known() bool {
	_, ok := catalog[t]
	return ok
}

// SizeCanVary сообщает, есть ли у типа заголовок размера
func (t PacketType) SizeCanVary() bool {
	return catalog[t].sizeCanVary
}

// RequiredBufferSize возвращает точную длину данных пакета по типу и заголовку
// размера. Для фиксированных типов заголовок игнорируется.
func RequiredBufferSize(t PacketType, header uint8) (int, error) {
	e, ok := catalog[t]
	if !ok {
		return 0, &UnknownTypeError{Type: t}
	}
	if e.sizeCanVary && header > e.maxHeader {
		return 0, &SizeHeaderError{Type: t, Header: header, Max: e.maxHeader}
	}
	return e.size(header), nil
}

func decodePing(*wire.Reader, uint8) (PacketData, error) {
	return Ping{}, nil
}

func decodeBlockUpdate(r *wire.Reader, _ uint8) (PacketData, error) {
	pos, err := vec.ReadBlockPos(r)
	if err != nil {
		return nil, err
	}
	id, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	return BlockUpdate{Pos: pos, Block: block.BlockID(id)}, nil
}

func decodeChunkData(r *wire.Reader, _ uint8) (PacketData, error) {
	pos, err := vec.ReadChunkPos(r)
	if err != nil {
		return nil, err
	}
	c, err := world.DecodeChunk(r)
	if err != nil {
		return nil, err
	}
	return ChunkData{Pos: pos, Chunk: c}, nil
}

func decodeChunkRequest(r *wire.Reader, _ uint8) (PacketData, error) {
	pos, err := vec.ReadChunkPos(r)
	if err != nil {
		return nil, err
	}
	return ChunkRequest{Pos: pos}, nil
}
