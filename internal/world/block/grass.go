package block

import "github.com/annel0/voxelnet/internal/vec"

// GrassBlock - трава, состояние хранит флаг снега
type GrassBlock struct {
	Snowy bool
}

func newGrass(state uint8) (Block, bool) {
	switch state {
	case 0:
		return &GrassBlock{}, true
	case 1:
		return &GrassBlock{Snowy: true}, true
	}
	return nil, false
}

// Grass возвращает интернированный экземпляр травы
func Grass(snowy bool) Block {
	var state uint8
	if snowy {
		state = 1
	}
	return Resolve(MakeID(GrassType, state))
}

func (b *GrassBlock) ID() BlockID {
	if b.Snowy {
		return MakeID(GrassType, 1)
	}
	return MakeID(GrassType, 0)
}

func (b *GrassBlock) Name() string {
	if b.Snowy {
		return "Snowy Grass"
	}
	return "Grass"
}

func (b *GrassBlock) IsReplaceable(vec.BlockPos) bool { return false }

func (b *GrassBlock) MapColor() uint32 {
	if b.Snowy {
		return 0xfafafa
	}
	return 0x7fb238
}
