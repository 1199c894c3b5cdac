package world

import (
	"encoding/binary"

	"github.com/annel0/voxelnet/internal/wire"
	"github.com/annel0/voxelnet/internal/world/block"
)

const (
	// SubChunkSize - ребро сабчанка в блоках
	SubChunkSize = 16
	// BlockCount - блоков в одном сабчанке (16³)
	BlockCount = SubChunkSize * SubChunkSize * SubChunkSize
	// SubChunkBytes - размер сабчанка на проводе
	SubChunkBytes = BlockCount * block.IDSize
)

// SubChunk хранит плотный куб 16x16x16 идентификаторов блоков.
// Индекс: (y<<8)|(z<<4)|x.
type SubChunk struct {
	blocks [BlockCount]block.BlockID
	nonAir int
}

// NewSubChunk создаёт сабчанк, заполненный воздухом
func NewSubChunk() *SubChunk {
	return &SubChunk{}
}

func subIndex(x, y, z int) int {
	return y<<8 | z<<4 | x
}

// Get возвращает блок по локальным координатам 0..15
func (s *SubChunk) Get(x, y, z int) block.BlockID {
	return s.blocks[subIndex(x, y, z)]
}

// Set записывает блок по локальным координатам и обновляет счётчик непустых блоков
func (s *SubChunk) Set(x, y, z int, id block.BlockID) {
	i := subIndex(x, y, z)
	old := s.blocks[i]
	if old == id {
		return
	}
	if old == block.AirID {
		s.nonAir++
	} else if id == block.AirID {
		s.nonAir--
	}
	s.blocks[i] = id
}

// Fill заполняет весь сабчанк одним блоком
func (s *SubChunk) Fill(id block.BlockID) {
	for i := range s.blocks {
		s.blocks[i] = id
	}
	if id == block.AirID {
		s.nonAir = 0
	} else {
		s.nonAir = BlockCount
	}
}

// IsEmpty сообщает, что сабчанк целиком состоит из воздуха
func (s *SubChunk) IsEmpty() bool {
	return s.nonAir == 0
}

// NonAirCount возвращает количество непустых блоков
func (s *SubChunk) NonAirCount() int {
	return s.nonAir
}

// AppendEncoded дописывает массив блоков как little-endian u16 в порядке индексов
func (s *SubChunk) AppendEncoded(dst []byte) []byte {
	for _, id := range s.blocks {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(id))
	}
	return dst
}

// Encode возвращает сабчанк в проводном формате, ровно SubChunkBytes байт
func (s *SubChunk) Encode() []byte {
	return s.AppendEncoded(make([]byte, 0, SubChunkBytes))
}

// DecodeSubChunk читает ровно SubChunkBytes байт
func DecodeSubChunk(r *wire.Reader) (*SubChunk, error) {
	data, err := r.Bytes(SubChunkBytes)
	if err != nil {
		return nil, err
	}

	s := &SubChunk{}
	for i := range s.blocks {
		id := block.BlockID(binary.LittleEndian.Uint16(data[i*block.IDSize:]))
		s.blocks[i] = id
		if id != block.AirID {
			s.nonAir++
		}
	}
	return s, nil
}

func (s *SubChunk) clone() *SubChunk {
	cp := *s
	return &cp
}
