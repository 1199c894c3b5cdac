package block

import "github.com/annel0/voxelnet/internal/vec"

// StoneBlock - камень
type StoneBlock struct{}

func newStone(state uint8) (Block, bool) {
	if state != 0 {
		return nil, false
	}
	return &StoneBlock{}, true
}

// Stone возвращает интернированный экземпляр камня
func Stone() Block { return Resolve(MakeID(StoneType, 0)) }

func (b *StoneBlock) ID() BlockID                     { return MakeID(StoneType, 0) }
func (b *StoneBlock) Name() string                    { return "Stone" }
func (b *StoneBlock) IsReplaceable(vec.BlockPos) bool { return false }
func (b *StoneBlock) MapColor() uint32                { return 0x707070 }
