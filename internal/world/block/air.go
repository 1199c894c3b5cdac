package block

import "github.com/annel0/voxelnet/internal/vec"

// AirBlock - пустота
type AirBlock struct{}

var airInstance Block = &AirBlock{}

func newAir(state uint8) (Block, bool) {
	if state != 0 {
		return nil, false
	}
	return airInstance, true
}

// Air возвращает канонический экземпляр воздуха
func Air() Block { return airInstance }

func (b *AirBlock) ID() BlockID                     { return AirID }
func (b *AirBlock) Name() string                    { return "Air" }
func (b *AirBlock) IsReplaceable(vec.BlockPos) bool { return true }
func (b *AirBlock) MapColor() uint32                { return 0 }
