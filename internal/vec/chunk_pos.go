package vec

import (
	"fmt"

	"github.com/annel0/voxelnet/internal/wire"
)

const (
	// ChunkPosWireSize - две оси по 24 бита, старший байт первым
	ChunkPosWireSize = 6

	// Допустимый диапазон оси на проводе: [-2^23, 2^23)
	MaxChunkCoord = 1 << 23

	// RegionSize - ширина региона в чанках (единица адресации на диске)
	RegionSize  = 32
	regionShift = 5
)

// ChunkPos представляет координаты столбца чанка
type ChunkPos struct {
	X, Z int32
}

// Key возвращает 64-битный ключ: x в старших 32 битах, z в младших.
// z не маскируется: отрицательный z заполняет старшие биты и может совпасть
// с ключом другой позиции. Поведение сохранено намеренно, ключ уже используется
// как идентификатор; кеши в памяти индексируются самой структурой.
func (p ChunkPos) Key() uint64 {
	return uint64(int64(p.X))<<32 | uint64(int64(p.Z))
}

// InWireRange проверяет, что обе оси помещаются в 24 бита
func (p ChunkPos) InWireRange() bool {
	return p.X >= -MaxChunkCoord && p.X < MaxChunkCoord &&
		p.Z >= -MaxChunkCoord && p.Z < MaxChunkCoord
}

// AppendWire дописывает позицию: младшие 24 бита каждой оси, старший байт первым
func (p ChunkPos) AppendWire(dst []byte) []byte {
	dst = wire.AppendInt24BE(dst, p.X)
	return wire.AppendInt24BE(dst, p.Z)
}

// ReadChunkPos читает позицию в проводном формате
func ReadChunkPos(r *wire.Reader) (ChunkPos, error) {
	if r.Available() < ChunkPosWireSize {
		return ChunkPos{}, &wire.NotEnoughDataError{Needed: ChunkPosWireSize, Available: r.Available()}
	}
	x, _ := r.Int24BE()
	z, _ := r.Int24BE()
	return ChunkPos{X: x, Z: z}, nil
}

// RegionPos - координаты региона 32x32 чанка
type RegionPos struct {
	X, Z int32
}

// Region возвращает регион чанка (деление с округлением вниз)
func (p ChunkPos) Region() RegionPos {
	return RegionPos{X: p.X >> regionShift, Z: p.Z >> regionShift}
}

// Origin возвращает позицию первого блока чанка на высоте y
func (p ChunkPos) Origin(y int32) BlockPos {
	return BlockPos{X: p.X << 4, Y: y, Z: p.Z << 4}
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("[%d,%d]", p.X, p.Z)
}

func (r RegionPos) String() string {
	return fmt.Sprintf("r.%d.%d", r.X, r.Z)
}
