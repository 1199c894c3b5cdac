package vec

import (
	"encoding/binary"
	"fmt"

	"github.com/annel0/voxelnet/internal/wire"
)

// Разрядность осей BlockPos в упакованном 64-битном ключе.
// Раскладка: X в старших битах, затем Z, Y в младших.
const (
	BlockPosXBits = 27
	BlockPosYBits = 10
	BlockPosZBits = 27

	blockPosYShift = 0
	blockPosZShift = BlockPosYBits
	blockPosXShift = BlockPosYBits + BlockPosZBits

	blockPosXMask = (uint64(1) << BlockPosXBits) - 1
	blockPosYMask = (uint64(1) << BlockPosYBits) - 1
	blockPosZMask = (uint64(1) << BlockPosZBits) - 1

	// BlockPosWireSize - размер BlockPos на проводе: упакованный u64, little-endian
	BlockPosWireSize = 8
)

// Полуоткрытые диапазоны [Min, Max) для каждой оси
const (
	MaxBlockX = 1 << (BlockPosXBits - 1)
	MaxBlockY = 1 << (BlockPosYBits - 1)
	MaxBlockZ = 1 << (BlockPosZBits - 1)
)

// Axis обозначает ось координат
type Axis byte

const (
	AxisX Axis = 'x'
	AxisY Axis = 'y'
	AxisZ Axis = 'z'
)

// InvalidPositionError сообщает, какая ось вышла за допустимый диапазон.
type InvalidPositionError struct {
	Axis  Axis
	Value int32
	Min   int32
	Max   int32 // исключительно
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid %c value %d: must be in range [%d, %d)", e.Axis, e.Value, e.Min, e.Max)
}

// BlockPos представляет позицию блока в мире
type BlockPos struct {
	X, Y, Z int32
}

// NewBlockPos создаёт позицию и проверяет диапазоны осей
func NewBlockPos(x, y, z int32) (BlockPos, error) {
	p := BlockPos{X: x, Y: y, Z: z}
	if err := p.Validate(); err != nil {
		return BlockPos{}, err
	}
	return p, nil
}

// MustBlockPos как NewBlockPos, но паникует на неверных координатах.
// Для констант и тестов.
func MustBlockPos(x, y, z int32) BlockPos {
	p, err := NewBlockPos(x, y, z)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate проверяет каждую ось и возвращает ошибку по первой неверной
func (p BlockPos) Validate() error {
	if p.X < -MaxBlockX || p.X >= MaxBlockX {
		return &InvalidPositionError{Axis: AxisX, Value: p.X, Min: -MaxBlockX, Max: MaxBlockX}
	}
	if p.Y < -MaxBlockY || p.Y >= MaxBlockY {
		return &InvalidPositionError{Axis: AxisY, Value: p.Y, Min: -MaxBlockY, Max: MaxBlockY}
	}
	if p.Z < -MaxBlockZ || p.Z >= MaxBlockZ {
		return &InvalidPositionError{Axis: AxisZ, Value: p.Z, Min: -MaxBlockZ, Max: MaxBlockZ}
	}
	return nil
}

// Pack упаковывает позицию в 64-битный ключ
func (p BlockPos) Pack() uint64 {
	x := uint64(int64(p.X)) & blockPosXMask
	y := uint64(int64(p.Y)) & blockPosYMask
	z := uint64(int64(p.Z)) & blockPosZMask
	return x<<blockPosXShift | z<<blockPosZShift | y<<blockPosYShift
}

// UnpackBlockPos восстанавливает позицию из ключа: сдвиг влево отбрасывает
// старшие поля, арифметический сдвиг вправо расширяет знак.
func UnpackBlockPos(v uint64) BlockPos {
	x := int64(v<<(64-blockPosXShift-BlockPosXBits)) >> (64 - BlockPosXBits)
	y := int64(v<<(64-blockPosYShift-BlockPosYBits)) >> (64 - BlockPosYBits)
	z := int64(v<<(64-blockPosZShift-BlockPosZBits)) >> (64 - BlockPosZBits)
	return BlockPos{X: int32(x), Y: int32(y), Z: int32(z)}
}

// AppendWire дописывает позицию в проводном формате
func (p BlockPos) AppendWire(dst []byte) []byte {
	return binary.LittleEndian.AppendUint64(dst, p.Pack())
}

// ReadBlockPos читает позицию в проводном формате
func ReadBlockPos(r *wire.Reader) (BlockPos, error) {
	v, err := r.Uint64()
	if err != nil {
		return BlockPos{}, err
	}
	return UnpackBlockPos(v), nil
}

// ChunkPos возвращает чанк, содержащий блок. Сдвиг корректен для отрицательных координат.
func (p BlockPos) ChunkPos() ChunkPos {
	return ChunkPos{X: p.X >> 4, Z: p.Z >> 4}
}

// Local возвращает координаты внутри сабчанка (0..15)
func (p BlockPos) Local() (x, y, z int) {
	return int(p.X & 15), int(p.Y & 15), int(p.Z & 15)
}

// Direction - одно из шести соседних направлений
type Direction uint8

const (
	North Direction = iota // -Z
	South                  // +Z
	East                   // +X
	West                   // -X
	Up                     // +Y
	Down                   // -Y
)

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	default:
		return Up
	}
}

// Offset возвращает соседнюю позицию в направлении d
func (p BlockPos) Offset(d Direction) BlockPos {
	switch d {
	case North:
		p.Z--
	case South:
		p.Z++
	case East:
		p.X++
	case West:
		p.X--
	case Up:
		p.Y++
	case Down:
		p.Y--
	}
	return p
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}
