package block

import (
	"fmt"

	"github.com/annel0/voxelnet/internal/vec"
)

// MaxWaterLevel - последний допустимый уровень воды
const MaxWaterLevel = 7

// WaterBlock - вода; Level 0 означает источник
type WaterBlock struct {
	Level uint8
}

func newWater(state uint8) (Block, bool) {
	if state > MaxWaterLevel {
		return nil, false
	}
	return &WaterBlock{Level: state}, true
}

// Water возвращает интернированный экземпляр воды. Уровень обрезается до MaxWaterLevel.
func Water(level uint8) Block {
	if level > MaxWaterLevel {
		level = MaxWaterLevel
	}
	return Resolve(MakeID(WaterType, level))
}

func (b *WaterBlock) ID() BlockID { return MakeID(WaterType, b.Level) }

func (b *WaterBlock) Name() string {
	if b.Level == 0 {
		return "Water"
	}
	return fmt.Sprintf("Water (level %d)", b.Level)
}

// Вода не мешает установке блока
func (b *WaterBlock) IsReplaceable(vec.BlockPos) bool { return true }

func (b *WaterBlock) MapColor() uint32 { return 0x4040ff }
