package block

import (
	"fmt"

	"github.com/annel0/voxelnet/internal/vec"
)

// BlockID = индекс типа (старший байт) | индекс состояния (младший байт)
type BlockID uint16

// IDSize - размер BlockID на проводе (little-endian)
const IDSize = 2

// Индексы типов блоков. Значения фиксированы, они попадают на провод и на диск.
const (
	AirType   uint8 = 0
	GrassType uint8 = 1
	StoneType uint8 = 2
	DirtType  uint8 = 3
	WaterType uint8 = 4
)

// AirID - блок по умолчанию
const AirID BlockID = 0

// MakeID собирает идентификатор из типа и состояния
func MakeID(typ, state uint8) BlockID {
	return BlockID(typ)<<8 | BlockID(state)
}

// Type возвращает индекс типа
func (id BlockID) Type() uint8 { return uint8(id >> 8) }

// State возвращает индекс состояния
func (id BlockID) State() uint8 { return uint8(id) }

func (id BlockID) String() string {
	return fmt.Sprintf("%d:%d", id.Type(), id.State())
}

// Block - общий интерфейс всех вариантов блоков.
// Реализации неизменяемы после создания.
type Block interface {
	ID() BlockID
	Name() string
	// IsReplaceable сообщает, можно ли поставить другой блок на это место
	IsReplaceable(pos vec.BlockPos) bool
	// MapColor возвращает цвет для карты, 0xRRGGBB
	MapColor() uint32
}

// variant описывает один тип блока: имя и конструктор по индексу состояния
type variant struct {
	name string
	// new возвращает false для неизвестного состояния
	new func(state uint8) (Block, bool)
}

// variants - закрытая таблица типов: индекс типа -> конструктор
var variants = map[uint8]variant{
	AirType:   {name: "air", new: newAir},
	GrassType: {name: "grass", new: newGrass},
	StoneType: {name: "stone", new: newStone},
	DirtType:  {name: "dirt", new: newDirt},
	WaterType: {name: "water", new: newWater},
}

func construct(id BlockID) (Block, bool) {
	v, ok := variants[id.Type()]
	if !ok {
		return nil, false
	}
	return v.new(id.State())
}

// TypeName возвращает имя типа блока или пустую строку
func TypeName(typ uint8) string {
	return variants[typ].name
}
