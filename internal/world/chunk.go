package world

import (
	"encoding/binary"
	"math/bits"

	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/wire"
	"github.com/annel0/voxelnet/internal/world/block"
)

const (
	// SubChunkSlots - число вертикальных слотов в колонне
	SubChunkSlots = 16
	// ColumnHeight - высота колонны в блоках
	ColumnHeight = SubChunkSlots * SubChunkSize
	// chunkMaskBytes - маска занятых слотов, u16 little-endian
	chunkMaskBytes = 2
)

// Chunk - разреженная вертикальная колонна сабчанков.
// Пустой слот означает сабчанк из одного воздуха; такие сабчанки не хранятся.
type Chunk struct {
	sections [SubChunkSlots]*SubChunk
	readOnly bool
}

// NewChunk создаёт пустой чанк
func NewChunk() *Chunk {
	return &Chunk{}
}

var emptyChunk = &Chunk{readOnly: true}

// EmptyChunk возвращает общий заглушечный чанк. Он только для чтения:
// SetBlock и SetSubChunk на нём ничего не меняют.
func EmptyChunk() *Chunk {
	return emptyChunk
}

// IsPlaceholder сообщает, что это общий пустой чанк
func (c *Chunk) IsPlaceholder() bool {
	return c == emptyChunk
}

func slotOf(y int32) (int, bool) {
	if y < 0 || y >= ColumnHeight {
		return 0, false
	}
	return int(y >> 4), true
}

// GetBlock возвращает блок по мировой позиции. Для отсутствующего слота
// или высоты вне колонны возвращается воздух.
func (c *Chunk) GetBlock(pos vec.BlockPos) block.BlockID {
	slot, ok := slotOf(pos.Y)
	if !ok {
		return block.AirID
	}
	s := c.sections[slot]
	if s == nil {
		return block.AirID
	}
	x, y, z := pos.Local()
	return s.Get(x, y, z)
}

// SetBlock записывает блок по мировой позиции. Возвращает false, если
// позиция вне колонны или чанк только для чтения.
func (c *Chunk) SetBlock(pos vec.BlockPos, id block.BlockID) bool {
	if c.readOnly {
		return false
	}
	slot, ok := slotOf(pos.Y)
	if !ok {
		return false
	}

	x, y, z := pos.Local()
	s := c.sections[slot]
	if s == nil {
		if id == block.AirID {
			return true
		}
		s = NewSubChunk()
		c.sections[slot] = s
	}
	s.Set(x, y, z, id)
	if s.IsEmpty() {
		c.sections[slot] = nil
	}
	return true
}

// SubChunk возвращает сабчанк слота или nil
func (c *Chunk) SubChunk(slot int) *SubChunk {
	if slot < 0 || slot >= SubChunkSlots {
		return nil
	}
	return c.sections[slot]
}

// SetSubChunk помещает сабчанк в слот. Чанк становится его владельцем.
// nil или пустой сабчанк очищает слот.
func (c *Chunk) SetSubChunk(slot int, s *SubChunk) {
	if c.readOnly || slot < 0 || slot >= SubChunkSlots {
		return
	}
	if s != nil && s.IsEmpty() {
		s = nil
	}
	c.sections[slot] = s
}

// Mask возвращает битовую маску занятых слотов
func (c *Chunk) Mask() uint16 {
	var mask uint16
	for i, s := range c.sections {
		if s != nil {
			mask |= 1 << i
		}
	}
	return mask
}

// PopulatedSlots возвращает занятые слоты по возрастанию
func (c *Chunk) PopulatedSlots() []int {
	slots := make([]int, 0, SubChunkSlots)
	for i, s := range c.sections {
		if s != nil {
			slots = append(slots, i)
		}
	}
	return slots
}

// SizeInUnits возвращает число занятых слотов, единицу заголовка размера
func (c *Chunk) SizeInUnits() uint8 {
	return uint8(bits.OnesCount16(c.Mask()))
}

// IsEmpty сообщает, что в чанке нет ни одного сабчанка
func (c *Chunk) IsEmpty() bool {
	return c.Mask() == 0
}

// ChunkWireSize возвращает размер чанка на проводе для заданного числа сабчанков
func ChunkWireSize(units uint8) int {
	return chunkMaskBytes + int(units)*SubChunkBytes
}

// EncodedSize возвращает размер Encode() без кодирования
func (c *Chunk) EncodedSize() int {
	return ChunkWireSize(c.SizeInUnits())
}

// AppendEncoded дописывает маску и занятые сабчанки по возрастанию слота
func (c *Chunk) AppendEncoded(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, c.Mask())
	for _, s := range c.sections {
		if s != nil {
			dst = s.AppendEncoded(dst)
		}
	}
	return dst
}

// Encode возвращает чанк в проводном формате
func (c *Chunk) Encode() []byte {
	return c.AppendEncoded(make([]byte, 0, c.EncodedSize()))
}

// DecodeChunk читает маску и по одному сабчанку на каждый установленный бит.
// Сабчанки из одного воздуха отбрасываются.
func DecodeChunk(r *wire.Reader) (*Chunk, error) {
	mask, err := r.Uint16()
	if err != nil {
		return nil, err
	}

	c := NewChunk()
	for slot := 0; slot < SubChunkSlots; slot++ {
		if mask&(1<<slot) == 0 {
			continue
		}
		s, err := DecodeSubChunk(r)
		if err != nil {
			return nil, err
		}
		c.SetSubChunk(slot, s)
	}
	return c, nil
}

// Clone возвращает глубокую изменяемую копию
func (c *Chunk) Clone() *Chunk {
	cp := NewChunk()
	for i, s := range c.sections {
		if s != nil {
			cp.sections[i] = s.clone()
		}
	}
	return cp
}
