package block

import "github.com/annel0/voxelnet/internal/vec"

// DirtBlock - земля
type DirtBlock struct{}

func newDirt(state uint8) (Block, bool) {
	if state != 0 {
		return nil, false
	}
	return &DirtBlock{}, true
}

// Dirt возвращает интернированный экземпляр земли
func Dirt() Block { return Resolve(MakeID(DirtType, 0)) }

func (b *DirtBlock) ID() BlockID                     { return MakeID(DirtType, 0) }
func (b *DirtBlock) Name() string                    { return "Dirt" }
func (b *DirtBlock) IsReplaceable(vec.BlockPos) bool { return false }
func (b *DirtBlock) MapColor() uint32                { return 0x976d4d }
